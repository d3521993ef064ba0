// Package spatial maintains the live set of snap points and answers
// region and attribute queries over it. Two implementations share one
// contract: FlatIndex, a linear-scan baseline, and GridIndex, a
// uniform-cell index with sub-linear region queries. Query results obey
// a total order so detection output is reproducible.
package spatial

import (
	"sort"

	"github.com/ductcad/snapengine/core/snap"
)

// Index is the storage contract the engine depends on. Implementations
// own their internal structure; Insert/Remove/Query/Clear semantics must
// not differ between them, only their cost.
type Index interface {
	// Insert adds a point, replacing any existing point with the same ID.
	Insert(p snap.Point)

	// Remove deletes a point by ID and reports whether it existed.
	Remove(id string) bool

	// Get looks up a point by ID.
	Get(id string) (snap.Point, bool)

	// Query returns all active points matching the filter, in total
	// order: ascending distance to opts.Center when set, otherwise
	// ascending priority; ties break by priority then ID.
	Query(opts snap.QueryOptions) []snap.Point

	// All returns every indexed point, active or not, ordered by ID.
	All() []snap.Point

	// Len returns the number of indexed points.
	Len() int

	// Clear removes all points.
	Clear()

	// Optimize restructures the index for the current point
	// distribution. Results are unaffected, only query cost.
	Optimize()

	// Stats reports point count and bucketing efficiency.
	Stats() Stats
}

// Stats describes an index for debug overlays and health checks.
type Stats struct {
	Points     int     `json:"points"`
	Cells      int     `json:"cells"`
	CellSize   float64 `json:"cell_size"`
	Efficiency float64 `json:"efficiency"`
}

// matches applies the attribute and region filters shared by all
// implementations. Inactive points never match.
func matches(p snap.Point, opts snap.QueryOptions) bool {
	if !p.IsActive {
		return false
	}
	if opts.Excludes(p.Type) {
		return false
	}
	if opts.MinPriority > 0 && p.Priority > opts.MinPriority {
		return false
	}
	if opts.Bounds != nil && !opts.Bounds.Contains(p.Position) {
		return false
	}
	if opts.Center != nil && opts.Radius > 0 {
		if p.Position.DistanceTo(*opts.Center) > opts.Radius {
			return false
		}
	}
	return true
}

// orderResults sorts candidates into the contract's total order and
// applies the MaxResults cap.
func orderResults(points []snap.Point, opts snap.QueryOptions) []snap.Point {
	if opts.Center != nil {
		center := *opts.Center
		sort.Slice(points, func(i, j int) bool {
			di := points[i].Position.DistanceTo(center)
			dj := points[j].Position.DistanceTo(center)
			if di != dj {
				return di < dj
			}
			if points[i].Priority != points[j].Priority {
				return points[i].Priority < points[j].Priority
			}
			return points[i].ID < points[j].ID
		})
	} else {
		sort.Slice(points, func(i, j int) bool {
			if points[i].Priority != points[j].Priority {
				return points[i].Priority < points[j].Priority
			}
			return points[i].ID < points[j].ID
		})
	}

	if opts.MaxResults > 0 && len(points) > opts.MaxResults {
		points = points[:opts.MaxResults]
	}
	return points
}

// allSorted returns every point in a map ordered by ID.
func allSorted(points map[string]snap.Point) []snap.Point {
	out := make([]snap.Point, 0, len(points))
	for _, p := range points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
