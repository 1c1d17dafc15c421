// Package quality computes incidence-angle-based quality scalars and the
// composite value blend the scheduler ranks opportunities by — a small
// file of pure, table-driven math functions, no state.
package quality

import "math"

// Model selects how incidence angle maps to a [0,1] quality scalar.
type Model string

const (
	ModelOff       Model = "OFF"
	ModelMonotonic Model = "MONOTONIC"
	ModelBand      Model = "BAND"
)

// Score computes quality_score(incidence_deg, model, ideal, band_width).
// ideal and bandWidth are only consulted for ModelBand.
func Score(incidenceDeg float64, model Model, idealDeg, bandWidthDeg float64) float64 {
	switch model {
	case ModelOff:
		return 1.0
	case ModelBand:
		if bandWidthDeg == 0 {
			return 0
		}
		ratio := (incidenceDeg - idealDeg) / bandWidthDeg
		return math.Exp(-(ratio * ratio))
	case ModelMonotonic:
		fallthrough
	default:
		return math.Exp(-0.02 * math.Abs(incidenceDeg))
	}
}

// Weights is a composite-value weight vector; P+G+T need not sum to 1 on
// input — CompositeValue normalizes.
type Weights struct {
	Priority float64
	Quality  float64
	Timing   float64
}

// Named presets from . Values are illustrative weight vectors that
// each favor the dimension their name suggests; all are normalized by
// CompositeValue regardless of how they're authored here.
var Presets = map[string]Weights{
	"balanced": {Priority: 0.34, Quality: 0.33, Timing: 0.33},
	"priority-first": {Priority: 0.6, Quality: 0.25, Timing: 0.15},
	"quality-first": {Priority: 0.2, Quality: 0.6, Timing: 0.2},
	"urgent": {Priority: 0.3, Quality: 0.2, Timing: 0.5},
	"archival": {Priority: 0.15, Quality: 0.7, Timing: 0.15},
}

// normalizedPriority maps priority 1..5 (1=highest) to 1.0..0.0.
func normalizedPriority(priority int) float64 {
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}
	return (5.0 - float64(priority)) / 4.0
}

// CompositeValue computes composite_value(priority, quality, timing, weights).
// The weight vector is normalized to sum to 1 before blending, so callers
// may pass raw named-preset weights directly.
func CompositeValue(priority int, qualityScore, timingScore float64, w Weights) float64 {
	sum := w.Priority + w.Quality + w.Timing
	if sum == 0 {
		return 0
	}
	p, g, t := w.Priority/sum, w.Quality/sum, w.Timing/sum
	return p*normalizedPriority(priority) + g*qualityScore + t*timingScore
}

// TimingScore computes timing_score(i, n) = 1 - i/(n-1), 1 when n<=1. i is
// the opportunity's 0-based rank within its ordered group (e.g. start-time
// order within the scheduling horizon).
func TimingScore(i, n int) float64 {
	if n <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(n-1)
}
