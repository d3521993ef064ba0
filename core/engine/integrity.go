package engine

import (
	"fmt"
	"math"
)

// positionQuantum groups positions for duplicate detection. Coordinates
// within a nanometer-scale epsilon count as the same position.
const positionQuantum = 1e-9

// IntegrityReport is the outcome of a point-set scan. Warnings are
// informational (duplicate positions are legal but suspicious); errors
// indicate the set needs repair, though the engine keeps running.
type IntegrityReport struct {
	Checked  int      `json:"checked"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// OK reports whether the scan found no errors.
func (r IntegrityReport) OK() bool {
	return len(r.Errors) == 0
}

type quantizedPos struct {
	X int64
	Y int64
}

func quantize(v float64) int64 {
	return int64(math.Round(v / positionQuantum))
}

// ValidateIntegrity scans every indexed point for structural problems
// and duplicate positions. Diagnostic only: it never mutates state and
// stays off the hot path.
func (e *Engine) ValidateIntegrity() IntegrityReport {
	points := e.index.All()
	report := IntegrityReport{Checked: len(points)}

	seen := make(map[quantizedPos]string, len(points))
	for _, p := range points {
		if err := p.Validate(); err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}

		key := quantizedPos{X: quantize(p.Position.X), Y: quantize(p.Position.Y)}
		if firstID, dup := seen[key]; dup {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("points %q and %q share position %s", firstID, p.ID, p.Position))
			continue
		}
		seen[key] = p.ID
	}

	if !report.OK() {
		e.logger.Warn("snap point set failed integrity check",
			"checked", report.Checked,
			"errors", len(report.Errors),
			"warnings", len(report.Warnings))
	}
	return report
}
