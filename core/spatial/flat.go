package spatial

import (
	"github.com/ductcad/snapengine/core/geometry"
	"github.com/ductcad/snapengine/core/snap"
)

// FlatIndex is the linear-scan baseline: a map keyed by ID, every query
// walks the full set. Correct at any scale, fast enough into the low
// thousands; GridIndex takes over beyond that.
type FlatIndex struct {
	points map[string]snap.Point
}

// NewFlatIndex returns an empty FlatIndex.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{points: make(map[string]snap.Point)}
}

// Insert adds or replaces a point by ID.
func (idx *FlatIndex) Insert(p snap.Point) {
	idx.points[p.ID] = p
}

// Remove deletes a point by ID.
func (idx *FlatIndex) Remove(id string) bool {
	if _, ok := idx.points[id]; !ok {
		return false
	}
	delete(idx.points, id)
	return true
}

// Get looks up a point by ID.
func (idx *FlatIndex) Get(id string) (snap.Point, bool) {
	p, ok := idx.points[id]
	return p, ok
}

// Query scans the whole set, filters, and orders. The circular-region
// pre-filter runs as one batch distance pass over all candidates.
func (idx *FlatIndex) Query(opts snap.QueryOptions) []snap.Point {
	candidates := allSorted(idx.points)

	if opts.Center != nil && opts.Radius > 0 {
		candidates = filterByRadius(candidates, *opts.Center, opts.Radius)
	}

	out := candidates[:0]
	for _, p := range candidates {
		if matches(p, opts) {
			out = append(out, p)
		}
	}
	return orderResults(out, opts)
}

// filterByRadius drops points outside the circle using a vectorized
// distance pass.
func filterByRadius(points []snap.Point, center geometry.Point, radius float64) []snap.Point {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Position.X
		ys[i] = p.Position.Y
	}

	dists := geometry.BatchDistances(center, xs, ys)
	out := points[:0]
	for i, p := range points {
		if dists[i] <= radius {
			out = append(out, p)
		}
	}
	return out
}

// All returns every point ordered by ID.
func (idx *FlatIndex) All() []snap.Point {
	return allSorted(idx.points)
}

// Len returns the point count.
func (idx *FlatIndex) Len() int {
	return len(idx.points)
}

// Clear drops all points.
func (idx *FlatIndex) Clear() {
	idx.points = make(map[string]snap.Point)
}

// Optimize is a no-op: a flat map has no structure to maintain.
func (idx *FlatIndex) Optimize() {}

// Stats reports the point count. A flat index has a single implicit
// bucket, so efficiency is the inverse of the set size.
func (idx *FlatIndex) Stats() Stats {
	eff := 1.0
	if n := len(idx.points); n > 1 {
		eff = 1.0 / float64(n)
	}
	return Stats{
		Points:     len(idx.points),
		Cells:      1,
		Efficiency: eff,
	}
}
