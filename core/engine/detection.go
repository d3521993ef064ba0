package engine

import (
	"fmt"

	"github.com/ductcad/snapengine/core/geometry"
	"github.com/ductcad/snapengine/core/snap"
)

// FindClosestSnapPoint resolves the best snap target for a pointer
// position. This is the hot path, called once per pointer-move event.
//
// A disabled engine answers immediately with a non-snapped result. Any
// failure inside the query path is contained: it is counted, logged,
// and degraded to a non-snapped result — a missed snap must never block
// drawing input. Total wall-clock duration is recorded on every path.
func (e *Engine) FindClosestSnapPoint(pos geometry.Point, opts snap.QueryOptions) snap.Result {
	start := e.clock.Now()
	defer func() {
		e.mon.RecordDetection(e.clock.Now().Sub(start))
	}()

	if !e.config.Enabled || e.closed {
		return snap.Miss(pos, e.clock.Now())
	}

	effective := e.effectiveOptions(pos, opts)
	key := e.keys.Generate(pos, effective)

	if cached, ok := e.cache.Get(key); ok {
		e.mon.RecordCacheHit()
		return cached
	}
	e.mon.RecordCacheMiss()

	result, err := e.detect(pos, effective)
	if err != nil {
		e.mon.RecordError()
		e.logger.Warn("snap detection failed", "error", err, "position", pos)
		return snap.Miss(pos, e.clock.Now())
	}

	e.cache.Set(key, result, resultTTL)
	return result
}

// effectiveOptions merges caller options with the config defaults: the
// search radius falls back to the snap threshold and the exclusion sets
// union.
func (e *Engine) effectiveOptions(pos geometry.Point, opts snap.QueryOptions) snap.QueryOptions {
	merged := opts
	merged.Center = &pos
	if merged.Radius <= 0 {
		merged.Radius = e.config.SnapThreshold
	}
	if len(e.config.ExcludeTypes) > 0 {
		merged.ExcludeTypes = unionTypes(e.config.ExcludeTypes, opts.ExcludeTypes)
	}
	return merged
}

func unionTypes(a, b []snap.PointType) []snap.PointType {
	seen := make(map[snap.PointType]struct{}, len(a)+len(b))
	out := make([]snap.PointType, 0, len(a)+len(b))
	for _, s := range [][]snap.PointType{a, b} {
		for _, t := range s {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// detect runs the index query and candidate resolution. A panic inside
// the index (corrupt state, malformed options) is converted to an error
// for the caller's containment path.
func (e *Engine) detect(pos geometry.Point, opts snap.QueryOptions) (result snap.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snap: detection panic: %v", r)
		}
	}()

	candidates := e.index.Query(opts)
	if len(candidates) == 0 {
		// Cached like any other result, so repeated queries at a dead
		// position skip the index scan.
		return snap.Miss(pos, e.clock.Now()), nil
	}

	winner, rawDistance := e.resolve(pos, candidates)
	if rawDistance > e.config.SnapThreshold {
		return snap.Miss(pos, e.clock.Now()), nil
	}

	confidence := 1 - rawDistance/e.config.SnapThreshold
	if confidence < 0 {
		confidence = 0
	}

	return snap.Result{
		Snapped:          true,
		Point:            &winner,
		Distance:         rawDistance,
		AdjustedPosition: winner.Position,
		Confidence:       confidence,
		Timestamp:        e.clock.Now(),
	}, nil
}

// resolve picks the candidate with the minimum effective distance.
// Candidates arrive in the index's total order (distance, priority, id),
// and a strict less-than comparison keeps the first minimum, so the
// winner is deterministic without a second comparator.
func (e *Engine) resolve(pos geometry.Point, candidates []snap.Point) (snap.Point, float64) {
	winner := candidates[0]
	winnerRaw := pos.DistanceTo(winner.Position)
	best := e.effectiveDistance(winnerRaw, winner.Priority)

	for _, c := range candidates[1:] {
		raw := pos.DistanceTo(c.Position)
		eff := e.effectiveDistance(raw, c.Priority)
		if eff < best {
			winner = c
			winnerRaw = raw
			best = eff
		}
	}
	return winner, winnerRaw
}

// effectiveDistance applies priority weighting: raw distance scaled by
// the candidate's rank relative to the highest priority. Rank 1 keeps
// its raw distance; rank 5 competes as if five times farther away.
func (e *Engine) effectiveDistance(raw float64, priority int) float64 {
	if !e.config.PriorityWeighting {
		return raw
	}
	return raw * float64(priority) / float64(snap.HighestPriority)
}

// FindSnapPointsInArea returns all active points matching the filter,
// in index order. Used for highlighting multiple candidates, so it
// bypasses the single-result cache and the detection-latency metric.
func (e *Engine) FindSnapPointsInArea(opts snap.QueryOptions) []snap.Point {
	if !e.config.Enabled || e.closed {
		return nil
	}
	return e.index.Query(opts)
}
