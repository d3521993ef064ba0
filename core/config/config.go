// Package config loads engine configuration from YAML, layering file
// values over built-in defaults with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ductcad/snapengine/core/snap"
)

// EnvConfigPath names the environment variable pointing at the config
// file. Takes precedence over the path passed to Load.
const EnvConfigPath = "SNAPENGINE_CONFIG"

// File is the on-disk configuration shape.
type File struct {
	Engine EngineSection `yaml:"engine"`
	Cache  CacheSection  `yaml:"cache"`
	Index  IndexSection  `yaml:"index"`
}

// EngineSection mirrors snap.Config with string-named point types for
// readability in config files.
type EngineSection struct {
	Enabled             *bool    `yaml:"enabled"`
	SnapThreshold       float64  `yaml:"snap_threshold"`
	MagneticThreshold   float64  `yaml:"magnetic_threshold"`
	PriorityWeighting   *bool    `yaml:"priority_weighting"`
	ExcludeTypes        []string `yaml:"exclude_types"`
	MaxSnapPoints       int      `yaml:"max_snap_points"`
	SpatialOptimization *bool    `yaml:"spatial_optimization"`
}

// CacheSection selects and sizes the result cache backend.
type CacheSection struct {
	Backend  string `yaml:"backend"` // "lru" (default) or "ristretto"
	Capacity int    `yaml:"capacity"`
}

// IndexSection selects the spatial index implementation.
type IndexSection struct {
	Kind     string  `yaml:"kind"` // "grid" (default) or "flat"
	CellSize float64 `yaml:"cell_size"`
}

// Default returns the built-in configuration.
func Default() *File {
	return &File{
		Cache: CacheSection{Backend: "lru"},
		Index: IndexSection{Kind: "grid"},
	}
}

// Load reads the YAML file at path, or at $SNAPENGINE_CONFIG when set.
// A missing file yields the defaults.
func Load(path string) (*File, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		path = env
	}

	cfg := Default()
	if path == "" {
		applyEnvironment(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvironment(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnvironment(cfg)
	return cfg, nil
}

// applyEnvironment layers env-var overrides on top of file values.
func applyEnvironment(cfg *File) {
	if v := os.Getenv("SNAPENGINE_SNAP_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.SnapThreshold = f
		}
	}
	if v := os.Getenv("SNAPENGINE_MAX_SNAP_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxSnapPoints = n
		}
	}
	if v := os.Getenv("SNAPENGINE_DISABLED"); v == "1" || v == "true" {
		disabled := false
		cfg.Engine.Enabled = &disabled
	}
}

// EngineConfig materializes the engine tunables, layering the file's
// values over snap.DefaultConfig.
func (f *File) EngineConfig() (snap.Config, error) {
	cfg := snap.DefaultConfig()
	s := f.Engine

	if s.Enabled != nil {
		cfg.Enabled = *s.Enabled
	}
	if s.SnapThreshold > 0 {
		cfg.SnapThreshold = s.SnapThreshold
	}
	if s.MagneticThreshold > 0 {
		cfg.MagneticThreshold = s.MagneticThreshold
	}
	if s.PriorityWeighting != nil {
		cfg.PriorityWeighting = *s.PriorityWeighting
	}
	if s.MaxSnapPoints > 0 {
		cfg.MaxSnapPoints = s.MaxSnapPoints
	}
	if s.SpatialOptimization != nil {
		cfg.SpatialOptimization = *s.SpatialOptimization
	}

	for _, name := range s.ExcludeTypes {
		t, err := snap.ParsePointType(name)
		if err != nil {
			return snap.Config{}, err
		}
		cfg.ExcludeTypes = append(cfg.ExcludeTypes, t)
	}

	if err := cfg.Validate(); err != nil {
		return snap.Config{}, err
	}
	return cfg, nil
}
