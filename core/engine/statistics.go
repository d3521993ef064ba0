package engine

import (
	"github.com/ductcad/snapengine/core/monitor"
	"github.com/ductcad/snapengine/core/spatial"
)

// Statistics aggregates engine state for debug overlays and health
// endpoints.
type Statistics struct {
	TotalPoints    int              `json:"total_points"`
	ActivePoints   int              `json:"active_points"`
	PointsByType   map[string]int   `json:"points_by_type"`
	Index          spatial.Stats    `json:"index"`
	CachedResults  int              `json:"cached_results"`
	Performance    monitor.Snapshot `json:"performance"`
	Enabled        bool             `json:"enabled"`
	SnapThreshold  float64          `json:"snap_threshold"`
	MagneticRadius float64          `json:"magnetic_radius"`
}

// GetStatistics captures the current aggregate counts.
func (e *Engine) GetStatistics() Statistics {
	points := e.index.All()

	active := 0
	byType := make(map[string]int)
	for _, p := range points {
		if p.IsActive {
			active++
		}
		byType[p.Type.String()]++
	}

	return Statistics{
		TotalPoints:    len(points),
		ActivePoints:   active,
		PointsByType:   byType,
		Index:          e.index.Stats(),
		CachedResults:  e.cache.Len(),
		Performance:    e.mon.ToSnapshot(),
		Enabled:        e.config.Enabled,
		SnapThreshold:  e.config.SnapThreshold,
		MagneticRadius: e.config.MagneticThreshold,
	}
}
