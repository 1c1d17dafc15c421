// Package feasibility implements slew maneuver timing under a
// bang-coast-bang rate/acceleration profile, and the feasible_between
// check the scheduler and conflict detector both use.
//
// Small, deterministic math helpers with direct unit tests, no shared
// state.
package feasibility

import (
	"math"
	"time"
)

// toleranceSeconds is the 10 ms floating-point tolerance used throughout
// feasibility comparisons.
const toleranceSeconds = 0.010

// AxisLimits bounds a single slew axis.
type AxisLimits struct {
	RateDPS   float64 // ω_max, degrees/second
	AccelDPS2 float64 // α_max, degrees/second^2
}

// Limits bundles both axes plus settling time and the sequential-vs-
// parallel slew policy.
type Limits struct {
	Roll           AxisLimits
	Pitch          AxisLimits
	SettlingTimeS  float64
	SequentialSlew bool // true: t_roll + t_pitch + settling; false (default): max(t_roll, t_pitch) + settling
}

// axisTime computes the minimum-time bang-coast-bang profile duration for
// a single axis: triangular profile (never reaches rate limit) below the
// crossover, trapezoidal profile above it.
func axisTime(deltaDeg float64, limits AxisLimits) float64 {
	delta := math.Abs(deltaDeg)
	if delta == 0 {
		return 0
	}
	if limits.AccelDPS2 <= 0 {
		return math.Inf(1)
	}
	crossover := limits.RateDPS * limits.RateDPS / limits.AccelDPS2
	if delta <= crossover {
		return 2 * math.Sqrt(delta/limits.AccelDPS2)
	}
	return limits.RateDPS/limits.AccelDPS2 + delta/limits.RateDPS
}

// ManeuverTime computes maneuver_time(deltaRoll, deltaPitch, limits)
// under the bang-coast-bang rate/acceleration profile.
func ManeuverTime(deltaRollDeg, deltaPitchDeg float64, limits Limits) float64 {
	tRoll := axisTime(deltaRollDeg, limits.Roll)
	tPitch := 0.0
	if deltaPitchDeg != 0 {
		tPitch = axisTime(deltaPitchDeg, limits.Pitch)
	}

	if limits.SequentialSlew {
		return tRoll + tPitch + limits.SettlingTimeS
	}
	return math.Max(tRoll, tPitch) + limits.SettlingTimeS
}

// Item is the minimal shape feasible_between needs from a scheduled item:
// its time bounds and pointing angles.
type Item struct {
	StartTime time.Time
	EndTime   time.Time
	RollDeg   float64
	PitchDeg  float64
}

// FeasibleBetween implements feasible_between(a, b) with the 10 ms
// tolerance: start_b - end_a >= maneuver_time(...) - tolerance.
func FeasibleBetween(a, b Item, limits Limits) bool {
	available := b.StartTime.Sub(a.EndTime).Seconds()
	required := ManeuverTime(b.RollDeg-a.RollDeg, b.PitchDeg-a.PitchDeg, limits)
	return available >= required-toleranceSeconds
}

// Slack returns the slack time (available - required); negative values
// within tolerance are still considered feasible by FeasibleBetween.
func Slack(a, b Item, limits Limits) float64 {
	available := b.StartTime.Sub(a.EndTime).Seconds()
	required := ManeuverTime(b.RollDeg-a.RollDeg, b.PitchDeg-a.PitchDeg, limits)
	return available - required
}
