// Package snap defines the data model for the snap detection engine:
// snap points, query options, detection results, and engine configuration.
package snap

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ductcad/snapengine/core/geometry"
)

// PointType classifies the geometry feature a snap point anchors to.
type PointType int

const (
	// TypeEndpoint marks the end of a duct segment.
	TypeEndpoint PointType = iota

	// TypeCenterline marks a point along a duct centerline.
	TypeCenterline

	// TypeMidpoint marks the midpoint of a segment.
	TypeMidpoint

	// TypeIntersection marks a crossing of two segments.
	TypeIntersection

	// TypePerpendicular marks the foot of a perpendicular from the cursor.
	TypePerpendicular

	// TypeGrid marks a background grid point.
	TypeGrid
)

// pointTypeNames maps PointType values to their string representations.
var pointTypeNames = map[PointType]string{
	TypeEndpoint:      "endpoint",
	TypeCenterline:    "centerline",
	TypeMidpoint:      "midpoint",
	TypeIntersection:  "intersection",
	TypePerpendicular: "perpendicular",
	TypeGrid:          "grid",
}

// String returns a string representation of the PointType.
func (t PointType) String() string {
	if name, ok := pointTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParsePointType converts a string name into a PointType.
func ParsePointType(name string) (PointType, error) {
	for t, n := range pointTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("snap: unknown point type %q", name)
}

// HighestPriority is the numerically lowest, most attractive priority rank.
const HighestPriority = 1

// Point is a candidate target for pointer attraction. ID is unique within
// an engine; inserting the same ID again replaces the existing point.
type Point struct {
	ID          string         `json:"id" yaml:"id"`
	Type        PointType      `json:"type" yaml:"type"`
	Position    geometry.Point `json:"position" yaml:"position"`
	Priority    int            `json:"priority" yaml:"priority"`
	IsActive    bool           `json:"is_active" yaml:"is_active"`
	ElementID   string         `json:"element_id,omitempty" yaml:"element_id,omitempty"`
	ElementType string         `json:"element_type,omitempty" yaml:"element_type,omitempty"`
}

// NewPoint builds an active Point with a generated ID.
func NewPoint(t PointType, pos geometry.Point, priority int) Point {
	return Point{
		ID:       uuid.NewString(),
		Type:     t,
		Position: pos,
		Priority: priority,
		IsActive: true,
	}
}

// Validate checks the structural invariants of a point.
func (p Point) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPoint)
	}
	if !p.Position.IsFinite() {
		return fmt.Errorf("%w: non-finite position for %q", ErrInvalidPoint, p.ID)
	}
	if p.Priority < HighestPriority {
		return fmt.Errorf("%w: priority %d below %d for %q", ErrInvalidPoint, p.Priority, HighestPriority, p.ID)
	}
	return nil
}

// PointUpdate carries a partial set of fields to merge into an existing
// point. Nil fields are left unchanged.
type PointUpdate struct {
	Type        *PointType
	Position    *geometry.Point
	Priority    *int
	IsActive    *bool
	ElementID   *string
	ElementType *string
}

// Apply merges the non-nil fields of the update into p.
func (u PointUpdate) Apply(p Point) Point {
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.Position != nil {
		p.Position = *u.Position
	}
	if u.Priority != nil {
		p.Priority = *u.Priority
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.ElementID != nil {
		p.ElementID = *u.ElementID
	}
	if u.ElementType != nil {
		p.ElementType = *u.ElementType
	}
	return p
}

// Result is the outcome of one detection query. Results are immutable
// once built; cached copies are returned verbatim.
type Result struct {
	Snapped          bool           `json:"snapped"`
	Point            *Point         `json:"point,omitempty"`
	Distance         float64        `json:"distance"`
	AdjustedPosition geometry.Point `json:"adjusted_position"`
	Confidence       float64        `json:"confidence"`
	Timestamp        time.Time      `json:"timestamp"`
}

// Miss builds the non-snapped result for a query position: the caller
// keeps its original position, untouched.
func Miss(pos geometry.Point, now time.Time) Result {
	return Result{
		Snapped:          false,
		AdjustedPosition: pos,
		Timestamp:        now,
	}
}

// QueryOptions is the filter shape of a spatial query. When both a
// circular region (Center/Radius) and Bounds are set, a point must
// satisfy both to match.
type QueryOptions struct {
	Center       *geometry.Point
	Radius       float64
	Bounds       *geometry.Rect
	ExcludeTypes []PointType
	MinPriority  int
	MaxResults   int
}

// Excludes reports whether t is in the exclusion set.
func (o QueryOptions) Excludes(t PointType) bool {
	for _, e := range o.ExcludeTypes {
		if e == t {
			return true
		}
	}
	return false
}
