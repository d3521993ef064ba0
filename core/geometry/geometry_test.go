package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint_DistanceTo(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"coincident", Pt(1, 1), Pt(1, 1), 0},
		{"horizontal", Pt(0, 0), Pt(5, 0), 5},
		{"vertical", Pt(0, 0), Pt(0, 3), 3},
		{"diagonal", Pt(0, 0), Pt(3, 4), 5},
		{"negative coords", Pt(-3, -4), Pt(0, 0), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.DistanceTo(tt.b))
			assert.Equal(t, tt.want, tt.b.DistanceTo(tt.a))
		})
	}
}

func TestPoint_IsFinite(t *testing.T) {
	assert.True(t, Pt(0, 0).IsFinite())
	assert.True(t, Pt(-1e300, 1e300).IsFinite())
	assert.False(t, Pt(math.NaN(), 0).IsFinite())
	assert.False(t, Pt(0, math.Inf(1)).IsFinite())
	assert.False(t, Pt(math.Inf(-1), 0).IsFinite())
}

func TestNewRect_NormalizesCorners(t *testing.T) {
	r := NewRect(Pt(10, 20), Pt(-5, 2))

	assert.Equal(t, Pt(-5, 2), r.Min)
	assert.Equal(t, Pt(10, 20), r.Max)
	assert.Equal(t, 15.0, r.Width())
	assert.Equal(t, 18.0, r.Height())
}

func TestRect_Contains(t *testing.T) {
	r := NewRect(Pt(0, 0), Pt(10, 10))

	assert.True(t, r.Contains(Pt(5, 5)))
	assert.True(t, r.Contains(Pt(0, 0)), "boundary is inside")
	assert.True(t, r.Contains(Pt(10, 10)), "boundary is inside")
	assert.False(t, r.Contains(Pt(10.001, 5)))
	assert.False(t, r.Contains(Pt(5, -0.001)))
}

func TestBatchDistances_MatchesScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	center := Pt(50, 50)

	// Larger than batchThreshold so the vectorized path runs.
	const n = 200
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64() * 100
		ys[i] = rng.Float64() * 100
	}

	got := BatchDistances(center, xs, ys)
	require.Len(t, got, n)
	for i := range xs {
		want := center.DistanceTo(Pt(xs[i], ys[i]))
		assert.InDelta(t, want, got[i], 1e-9, "index %d", i)
	}
}

func TestBatchDistances_SmallInputScalarPath(t *testing.T) {
	got := BatchDistances(Pt(0, 0), []float64{3, 0}, []float64{4, 0})
	require.Len(t, got, 2)
	assert.Equal(t, 5.0, got[0])
	assert.Equal(t, 0.0, got[1])
}

func TestBatchDistances_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		BatchDistances(Pt(0, 0), []float64{1}, []float64{1, 2})
	})
}
