package snap

import "fmt"

// Config holds the engine tunables. A config is set at construction and
// replaceable at runtime; replacement invalidates cached results because
// distance and confidence semantics change with it.
type Config struct {
	// Enabled is the master switch. A disabled engine answers every
	// detection query with a non-snapped result.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// SnapThreshold is the maximum distance, in engine units, at which
	// a point can win a snap.
	SnapThreshold float64 `yaml:"snap_threshold" json:"snap_threshold"`

	// MagneticThreshold is a looser radius used by callers to
	// pre-highlight candidates. The engine reports it but does not
	// enforce it.
	MagneticThreshold float64 `yaml:"magnetic_threshold" json:"magnetic_threshold"`

	// PriorityWeighting scales raw distance by priority rank before
	// candidate comparison.
	PriorityWeighting bool `yaml:"priority_weighting" json:"priority_weighting"`

	// ExcludeTypes is the default exclusion set, unioned with per-query
	// exclusions.
	ExcludeTypes []PointType `yaml:"exclude_types" json:"exclude_types"`

	// MaxSnapPoints caps the total indexed points. Insertion beyond the
	// cap fails with ErrCapacityExceeded.
	MaxSnapPoints int `yaml:"max_snap_points" json:"max_snap_points"`

	// SpatialOptimization enables periodic index restructuring.
	SpatialOptimization bool `yaml:"spatial_optimization" json:"spatial_optimization"`
}

// DefaultConfig returns the reference tunables.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		SnapThreshold:       10,
		MagneticThreshold:   20,
		PriorityWeighting:   true,
		ExcludeTypes:        nil,
		MaxSnapPoints:       10000,
		SpatialOptimization: true,
	}
}

// Validate checks that the tunables are internally consistent.
func (c Config) Validate() error {
	if c.SnapThreshold <= 0 {
		return fmt.Errorf("snap: snap_threshold must be positive, got %g", c.SnapThreshold)
	}
	if c.MagneticThreshold < c.SnapThreshold {
		return fmt.Errorf("snap: magnetic_threshold %g below snap_threshold %g", c.MagneticThreshold, c.SnapThreshold)
	}
	if c.MaxSnapPoints <= 0 {
		return fmt.Errorf("snap: max_snap_points must be positive, got %d", c.MaxSnapPoints)
	}
	return nil
}
