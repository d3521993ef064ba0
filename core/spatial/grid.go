package spatial

import (
	"math"

	"github.com/ductcad/snapengine/core/snap"
)

const (
	// defaultCellSize in engine units. Sized so a typical snap-threshold
	// query touches at most four cells.
	defaultCellSize = 50.0

	// targetPointsPerCell drives Optimize's cell-size recalculation.
	targetPointsPerCell = 8

	minCellSize = 1.0
	maxCellSize = 1000.0
)

type cellKey struct {
	X int
	Y int
}

// GridIndex buckets points into uniform square cells so region queries
// only touch cells overlapping the query region. Point lookups stay
// O(1) through the ID map.
type GridIndex struct {
	points   map[string]snap.Point
	cells    map[cellKey]map[string]struct{}
	cellSize float64
}

// NewGridIndex returns an empty GridIndex with the default cell size.
func NewGridIndex() *GridIndex {
	return NewGridIndexWithCellSize(defaultCellSize)
}

// NewGridIndexWithCellSize returns an empty GridIndex with an explicit
// cell size, clamped to a sane range.
func NewGridIndexWithCellSize(size float64) *GridIndex {
	return &GridIndex{
		points:   make(map[string]snap.Point),
		cells:    make(map[cellKey]map[string]struct{}),
		cellSize: clampCellSize(size),
	}
}

func clampCellSize(size float64) float64 {
	return math.Min(maxCellSize, math.Max(minCellSize, size))
}

func (idx *GridIndex) keyFor(x, y float64) cellKey {
	return cellKey{
		X: int(math.Floor(x / idx.cellSize)),
		Y: int(math.Floor(y / idx.cellSize)),
	}
}

// Insert adds or replaces a point by ID, rebucketing on position change.
func (idx *GridIndex) Insert(p snap.Point) {
	if old, ok := idx.points[p.ID]; ok {
		idx.unbucket(old)
	}
	idx.points[p.ID] = p
	idx.bucket(p)
}

func (idx *GridIndex) bucket(p snap.Point) {
	key := idx.keyFor(p.Position.X, p.Position.Y)
	cell, ok := idx.cells[key]
	if !ok {
		cell = make(map[string]struct{})
		idx.cells[key] = cell
	}
	cell[p.ID] = struct{}{}
}

func (idx *GridIndex) unbucket(p snap.Point) {
	key := idx.keyFor(p.Position.X, p.Position.Y)
	if cell, ok := idx.cells[key]; ok {
		delete(cell, p.ID)
		if len(cell) == 0 {
			delete(idx.cells, key)
		}
	}
}

// Remove deletes a point by ID.
func (idx *GridIndex) Remove(id string) bool {
	p, ok := idx.points[id]
	if !ok {
		return false
	}
	idx.unbucket(p)
	delete(idx.points, id)
	return true
}

// Get looks up a point by ID.
func (idx *GridIndex) Get(id string) (snap.Point, bool) {
	p, ok := idx.points[id]
	return p, ok
}

// Query gathers candidates from the cells overlapping the query region,
// then filters and orders them. Without a region it degrades to a full
// scan, same as FlatIndex.
func (idx *GridIndex) Query(opts snap.QueryOptions) []snap.Point {
	var candidates []snap.Point

	switch {
	case opts.Center != nil && opts.Radius > 0:
		minKey := idx.keyFor(opts.Center.X-opts.Radius, opts.Center.Y-opts.Radius)
		maxKey := idx.keyFor(opts.Center.X+opts.Radius, opts.Center.Y+opts.Radius)
		candidates = idx.collect(minKey, maxKey)
	case opts.Bounds != nil:
		minKey := idx.keyFor(opts.Bounds.Min.X, opts.Bounds.Min.Y)
		maxKey := idx.keyFor(opts.Bounds.Max.X, opts.Bounds.Max.Y)
		candidates = idx.collect(minKey, maxKey)
	default:
		candidates = allSorted(idx.points)
	}

	out := make([]snap.Point, 0, len(candidates))
	for _, p := range candidates {
		if matches(p, opts) {
			out = append(out, p)
		}
	}
	return orderResults(out, opts)
}

func (idx *GridIndex) collect(minKey, maxKey cellKey) []snap.Point {
	var out []snap.Point
	for cx := minKey.X; cx <= maxKey.X; cx++ {
		for cy := minKey.Y; cy <= maxKey.Y; cy++ {
			for id := range idx.cells[cellKey{X: cx, Y: cy}] {
				out = append(out, idx.points[id])
			}
		}
	}
	return out
}

// All returns every point ordered by ID.
func (idx *GridIndex) All() []snap.Point {
	return allSorted(idx.points)
}

// Len returns the point count.
func (idx *GridIndex) Len() int {
	return len(idx.points)
}

// Clear drops all points and buckets.
func (idx *GridIndex) Clear() {
	idx.points = make(map[string]snap.Point)
	idx.cells = make(map[cellKey]map[string]struct{})
}

// Optimize recomputes the cell size from the current point density and
// rebuckets. Query results are unchanged; only the candidate-gathering
// cost moves.
func (idx *GridIndex) Optimize() {
	if len(idx.points) == 0 {
		return
	}

	size := idx.densityCellSize()
	if size == idx.cellSize {
		return
	}

	idx.cellSize = size
	idx.cells = make(map[cellKey]map[string]struct{})
	for _, p := range idx.points {
		idx.bucket(p)
	}
}

// densityCellSize derives a cell size that puts roughly
// targetPointsPerCell points in each occupied cell of the bounding box.
func (idx *GridIndex) densityCellSize() float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range idx.points {
		minX = math.Min(minX, p.Position.X)
		minY = math.Min(minY, p.Position.Y)
		maxX = math.Max(maxX, p.Position.X)
		maxY = math.Max(maxY, p.Position.Y)
	}

	area := (maxX - minX) * (maxY - minY)
	if area <= 0 {
		return idx.cellSize
	}

	cellArea := area * targetPointsPerCell / float64(len(idx.points))
	return clampCellSize(math.Sqrt(cellArea))
}

// Stats reports bucket occupancy. Efficiency is the fraction of points a
// single-cell lookup skips on average; 0 means every query is a full scan.
func (idx *GridIndex) Stats() Stats {
	n := len(idx.points)
	s := Stats{
		Points:   n,
		Cells:    len(idx.cells),
		CellSize: idx.cellSize,
	}
	if n > 0 && len(idx.cells) > 0 {
		avgBucket := float64(n) / float64(len(idx.cells))
		s.Efficiency = 1 - avgBucket/float64(n)
	}
	return s
}
