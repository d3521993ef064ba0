// Package engine orchestrates snap detection: it owns the snap-point
// lifecycle, resolves the best candidate against the spatial index,
// memoizes results, and reports its own latency and health through the
// performance monitor.
//
// An engine instance is exclusively owned by one event loop. Public
// operations run to completion before the next begins; the engine takes
// no internal locks and spawns no background work.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ductcad/snapengine/core/cache"
	"github.com/ductcad/snapengine/core/monitor"
	"github.com/ductcad/snapengine/core/snap"
	"github.com/ductcad/snapengine/core/spatial"
)

// resultTTL is how long a detection result stays valid in the cache.
// Pointer traces revisit positions within tens of milliseconds; anything
// older is cheaper to recompute than to reason about.
const resultTTL = 1000 * time.Millisecond

// optimizeEvery is the mutation interval between index restructurings
// when spatial optimization is enabled.
const optimizeEvery = 512

// Engine is the snap detection orchestrator.
type Engine struct {
	config snap.Config
	index  spatial.Index
	cache  cache.ResultCache
	keys   *cache.KeyGenerator
	mon    *monitor.Monitor
	clock  snap.Clock
	logger *slog.Logger

	mutations int
	closed    bool
}

// Option customizes engine construction.
type Option func(*Engine)

// WithIndex replaces the default GridIndex.
func WithIndex(idx spatial.Index) Option {
	return func(e *Engine) { e.index = idx }
}

// WithCache replaces the default deterministic LRU result cache.
func WithCache(c cache.ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithClock replaces the system clock. Tests use a manual clock to
// drive cache expiry.
func WithClock(clock snap.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMonitor replaces the default performance monitor.
func WithMonitor(m *monitor.Monitor) Option {
	return func(e *Engine) { e.mon = m }
}

// New constructs an engine with the given configuration.
func New(config snap.Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config: config,
		keys:   cache.NewKeyGenerator(""),
		mon:    monitor.New(),
		clock:  snap.SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.index == nil {
		e.index = spatial.NewGridIndex()
	}
	if e.cache == nil {
		e.cache = cache.NewLRUCache(e.clock)
	}
	return e, nil
}

// Configure replaces the engine tunables and invalidates every cached
// result, since distance and confidence semantics change with them.
func (e *Engine) Configure(config snap.Config) error {
	if e.closed {
		return snap.ErrEngineClosed
	}
	if err := config.Validate(); err != nil {
		return err
	}
	e.config = config
	e.cache.Clear()
	e.logger.Debug("snap engine reconfigured",
		"snap_threshold", config.SnapThreshold,
		"priority_weighting", config.PriorityWeighting,
		"max_snap_points", config.MaxSnapPoints)
	return nil
}

// GetConfig returns the current tunables.
func (e *Engine) GetConfig() snap.Config {
	return e.config
}

// SetEnabled flips the master switch. No-op on a closed engine.
func (e *Engine) SetEnabled(enabled bool) {
	if e.closed {
		return
	}
	e.config.Enabled = enabled
}

// IsEnabled reports the master switch state.
func (e *Engine) IsEnabled() bool {
	return e.config.Enabled
}

// Monitor exposes the performance monitor for health checks.
func (e *Engine) Monitor() *monitor.Monitor {
	return e.mon
}

// ResetMetrics starts a fresh measurement window.
func (e *Engine) ResetMetrics() {
	e.mon.Reset()
}

// AddSnapPoint inserts a point into the index. Inserting an ID that is
// already indexed replaces the existing point. Inserting a new ID when
// the index is at capacity fails with ErrCapacityExceeded.
func (e *Engine) AddSnapPoint(p snap.Point) error {
	if e.closed {
		return snap.ErrEngineClosed
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := e.index.Get(p.ID); !exists && e.index.Len() >= e.config.MaxSnapPoints {
		return fmt.Errorf("%w: %d points indexed", snap.ErrCapacityExceeded, e.index.Len())
	}

	e.index.Insert(p)
	e.afterMutation()
	return nil
}

// RemoveSnapPoint removes a point by ID, reporting whether it existed.
func (e *Engine) RemoveSnapPoint(id string) bool {
	if e.closed {
		return false
	}
	removed := e.index.Remove(id)
	if removed {
		e.afterMutation()
	}
	return removed
}

// UpdateSnapPoint merges the non-nil fields of update into the existing
// point and re-indexes it. Returns false for an unknown ID.
func (e *Engine) UpdateSnapPoint(id string, update snap.PointUpdate) bool {
	if e.closed {
		return false
	}
	existing, ok := e.index.Get(id)
	if !ok {
		return false
	}

	merged := update.Apply(existing)
	merged.ID = id

	// Position changes invalidate index placement, so replace rather
	// than patch.
	e.index.Remove(id)
	e.index.Insert(merged)
	e.afterMutation()
	return true
}

// GetSnapPoint looks up a point by ID.
func (e *Engine) GetSnapPoint(id string) (snap.Point, bool) {
	return e.index.Get(id)
}

// GetAllSnapPoints returns every indexed point ordered by ID.
func (e *Engine) GetAllSnapPoints() []snap.Point {
	return e.index.All()
}

// ClearSnapPoints drops every point and all cached results.
func (e *Engine) ClearSnapPoints() {
	e.index.Clear()
	e.cache.Clear()
	e.mutations = 0
}

// Close marks the engine closed. Further mutations fail; detection
// degrades to non-snapped results.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	if closer, ok := e.cache.(interface{ Close() }); ok {
		closer.Close()
	}
}

// afterMutation invalidates cached results and runs periodic index
// maintenance. A full cache clear is deliberate: partial invalidation
// saves little at this TTL and risks stale geometry.
func (e *Engine) afterMutation() {
	e.cache.Clear()
	e.mutations++
	if e.config.SpatialOptimization && e.mutations%optimizeEvery == 0 {
		e.index.Optimize()
	}
}
