package spatial

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ductcad/snapengine/core/geometry"
	"github.com/ductcad/snapengine/core/snap"
)

// implementations runs a subtest against both index implementations so
// the shared contract stays in lockstep.
func implementations(t *testing.T, fn func(t *testing.T, idx Index)) {
	t.Helper()
	t.Run("flat", func(t *testing.T) { fn(t, NewFlatIndex()) })
	t.Run("grid", func(t *testing.T) { fn(t, NewGridIndex()) })
}

func activePoint(id string, x, y float64, priority int) snap.Point {
	return snap.Point{
		ID:       id,
		Type:     snap.TypeEndpoint,
		Position: geometry.Pt(x, y),
		Priority: priority,
		IsActive: true,
	}
}

func TestIndex_InsertReplacesByID(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		idx.Insert(activePoint("p1", 0, 0, 1))
		idx.Insert(activePoint("p1", 100, 100, 2))

		require.Equal(t, 1, idx.Len())
		p, ok := idx.Get("p1")
		require.True(t, ok)
		assert.Equal(t, geometry.Pt(100, 100), p.Position)

		// The old bucket must not resurface the stale position.
		center := geometry.Pt(0, 0)
		got := idx.Query(snap.QueryOptions{Center: &center, Radius: 10})
		assert.Empty(t, got)
	})
}

func TestIndex_Remove(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		idx.Insert(activePoint("p1", 1, 1, 1))

		assert.True(t, idx.Remove("p1"))
		assert.False(t, idx.Remove("p1"), "second remove reports absence")
		assert.Equal(t, 0, idx.Len())
	})
}

func TestIndex_QueryRadius(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		idx.Insert(activePoint("near", 3, 0, 1))
		idx.Insert(activePoint("far", 30, 0, 1))

		center := geometry.Pt(0, 0)
		got := idx.Query(snap.QueryOptions{Center: &center, Radius: 10})

		require.Len(t, got, 1)
		assert.Equal(t, "near", got[0].ID)
	})
}

func TestIndex_QueryOrdering(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		// Same distance, distinct priorities and IDs.
		idx.Insert(activePoint("c", 0, 5, 2))
		idx.Insert(activePoint("b", 5, 0, 2))
		idx.Insert(activePoint("a", -5, 0, 1))
		idx.Insert(activePoint("d", 1, 0, 3))

		center := geometry.Pt(0, 0)
		got := idx.Query(snap.QueryOptions{Center: &center, Radius: 10})

		require.Len(t, got, 4)
		assert.Equal(t, "d", got[0].ID, "closest first")
		assert.Equal(t, "a", got[1].ID, "equal distance breaks by priority")
		assert.Equal(t, "b", got[2].ID, "equal distance and priority breaks by id")
		assert.Equal(t, "c", got[3].ID)
	})
}

func TestIndex_QueryWithoutCenterOrdersByPriority(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		idx.Insert(activePoint("b", 0, 0, 5))
		idx.Insert(activePoint("a", 50, 50, 5))
		idx.Insert(activePoint("c", 99, 99, 1))

		got := idx.Query(snap.QueryOptions{})

		require.Len(t, got, 3)
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "a", got[1].ID, "priority tie breaks by id")
		assert.Equal(t, "b", got[2].ID)
	})
}

func TestIndex_QueryRegionAND(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		idx.Insert(activePoint("in-both", 5, 5, 1))
		idx.Insert(activePoint("in-circle-only", -5, -5, 1))
		idx.Insert(activePoint("in-bounds-only", 9, 9, 1))

		center := geometry.Pt(0, 0)
		bounds := geometry.NewRect(geometry.Pt(0, 0), geometry.Pt(10, 10))
		got := idx.Query(snap.QueryOptions{
			Center: &center,
			Radius: 8,
			Bounds: &bounds,
		})

		require.Len(t, got, 1, "a point must satisfy both regions")
		assert.Equal(t, "in-both", got[0].ID)
	})
}

func TestIndex_QueryFilters(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		grid := activePoint("grid", 1, 0, 6)
		grid.Type = snap.TypeGrid
		idx.Insert(grid)

		inactive := activePoint("inactive", 2, 0, 1)
		inactive.IsActive = false
		idx.Insert(inactive)

		lowPriority := activePoint("low", 3, 0, 8)
		idx.Insert(lowPriority)

		idx.Insert(activePoint("keep", 4, 0, 1))

		center := geometry.Pt(0, 0)
		got := idx.Query(snap.QueryOptions{
			Center:       &center,
			Radius:       10,
			ExcludeTypes: []snap.PointType{snap.TypeGrid},
			MinPriority:  5,
		})

		require.Len(t, got, 1)
		assert.Equal(t, "keep", got[0].ID)
	})
}

func TestIndex_QueryMaxResults(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		for i := 0; i < 10; i++ {
			idx.Insert(activePoint(fmt.Sprintf("p%02d", i), float64(i), 0, 1))
		}

		center := geometry.Pt(0, 0)
		got := idx.Query(snap.QueryOptions{Center: &center, Radius: 100, MaxResults: 3})

		require.Len(t, got, 3)
		assert.Equal(t, "p00", got[0].ID, "cap keeps the closest candidates")
		assert.Equal(t, "p01", got[1].ID)
		assert.Equal(t, "p02", got[2].ID)
	})
}

func TestIndex_AllOrderedByID(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		idx.Insert(activePoint("c", 0, 0, 1))
		idx.Insert(activePoint("a", 1, 1, 1))
		idx.Insert(activePoint("b", 2, 2, 1))

		all := idx.All()
		require.Len(t, all, 3)
		assert.Equal(t, "a", all[0].ID)
		assert.Equal(t, "b", all[1].ID)
		assert.Equal(t, "c", all[2].ID)
	})
}

func TestIndex_Clear(t *testing.T) {
	implementations(t, func(t *testing.T, idx Index) {
		idx.Insert(activePoint("p1", 0, 0, 1))
		idx.Clear()

		assert.Equal(t, 0, idx.Len())
		assert.Empty(t, idx.All())
	})
}

func TestGridIndex_CrossCellQuery(t *testing.T) {
	idx := NewGridIndexWithCellSize(10)
	idx.Insert(activePoint("left", 9.5, 5, 1))
	idx.Insert(activePoint("right", 10.5, 5, 1))

	// Query circle straddles the cell boundary at x=10.
	center := geometry.Pt(10, 5)
	got := idx.Query(snap.QueryOptions{Center: &center, Radius: 2})

	require.Len(t, got, 2)
	assert.Equal(t, "left", got[0].ID)
	assert.Equal(t, "right", got[1].ID)
}

func TestGridIndex_OptimizePreservesResults(t *testing.T) {
	idx := NewGridIndex()
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		idx.Insert(activePoint(fmt.Sprintf("p%03d", i), rng.Float64()*1000, rng.Float64()*1000, 1+rng.Intn(6)))
	}

	center := geometry.Pt(500, 500)
	opts := snap.QueryOptions{Center: &center, Radius: 150}
	before := idx.Query(opts)

	idx.Optimize()
	after := idx.Query(opts)

	assert.Equal(t, before, after, "optimize must not change query results")
}

func TestFlatAndGridEquivalence(t *testing.T) {
	flat := NewFlatIndex()
	grid := NewGridIndex()
	rng := rand.New(rand.NewSource(23))

	for i := 0; i < 300; i++ {
		p := activePoint(fmt.Sprintf("p%03d", i), rng.Float64()*500, rng.Float64()*500, 1+rng.Intn(6))
		if i%7 == 0 {
			p.IsActive = false
		}
		if i%5 == 0 {
			p.Type = snap.TypeGrid
		}
		flat.Insert(p)
		grid.Insert(p)
	}

	queries := []snap.QueryOptions{}
	for i := 0; i < 20; i++ {
		center := geometry.Pt(rng.Float64()*500, rng.Float64()*500)
		queries = append(queries, snap.QueryOptions{Center: &center, Radius: 40})
	}
	bounds := geometry.NewRect(geometry.Pt(100, 100), geometry.Pt(300, 300))
	queries = append(queries,
		snap.QueryOptions{Bounds: &bounds},
		snap.QueryOptions{ExcludeTypes: []snap.PointType{snap.TypeGrid}},
		snap.QueryOptions{MinPriority: 3},
	)

	for i, q := range queries {
		assert.Equal(t, flat.Query(q), grid.Query(q), "query %d", i)
	}
}

func TestGridIndex_Stats(t *testing.T) {
	idx := NewGridIndexWithCellSize(10)
	idx.Insert(activePoint("a", 1, 1, 1))
	idx.Insert(activePoint("b", 2, 2, 1))
	idx.Insert(activePoint("c", 100, 100, 1))

	s := idx.Stats()
	assert.Equal(t, 3, s.Points)
	assert.Equal(t, 2, s.Cells)
	assert.Equal(t, 10.0, s.CellSize)
	assert.Greater(t, s.Efficiency, 0.0)
}

func BenchmarkFlatQuery(b *testing.B) {
	benchmarkQuery(b, NewFlatIndex())
}

func BenchmarkGridQuery(b *testing.B) {
	benchmarkQuery(b, NewGridIndex())
}

func benchmarkQuery(b *testing.B, idx Index) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		idx.Insert(activePoint(fmt.Sprintf("p%04d", i), rng.Float64()*2000, rng.Float64()*2000, 1+rng.Intn(6)))
	}
	center := geometry.Pt(1000, 1000)
	opts := snap.QueryOptions{Center: &center, Radius: 10}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Query(opts)
	}
}
