package scheduler

import (
	"log/slog"
	"sort"
	"time"

	"github.com/spacereach/tasking-core/internal/feasibility"
)

// epsilonSeconds is the scheduler's slack tolerance for feasibility checks.
const epsilonSeconds = 0.010

// Config bundles the per-satellite bus configs and the imaging-time
// parameterization the scheduler needs: imaging_time_s is a configured
// duration rather than an implicit "whole pass" assumption, so batch
// planners can share one scheduler across both pass-length and
// fixed-dwell imaging policies.
type Config struct {
	Buses        map[string]BusConfig
	ImagingTimeS float64 // 0 means schedule the full pass window
}

// Schedule is the single entry point schedule(opportunities, config,
// algorithm) → (items, rejected, metrics). Candidate positions are
// already folded into each Opportunity's RollAngleDeg by the upstream
// visibility/SAR stages, so Config here carries only the bus dynamics
// schedule() itself needs.
func Schedule(opportunities []Opportunity, cfg Config, algorithm Algorithm) ([]ScheduledItem, []RejectedOpportunity, Metrics) {
	start := time.Now()

	bySat := make(map[string][]Opportunity)
	for _, o := range opportunities {
		bySat[o.SatelliteID] = append(bySat[o.SatelliteID], o)
	}

	// Deterministic satellite iteration order.
	satIDs := make([]string, 0, len(bySat))
	for id := range bySat {
		satIDs = append(satIDs, id)
	}
	sort.Strings(satIDs)

	var items []ScheduledItem
	var rejected []RejectedOpportunity

	for _, satID := range satIDs {
		bus, ok := cfg.Buses[satID]
		if !ok {
			bus = BusConfig{}
		}
		satItems, satRejected := scheduleSatellite(bySat[satID], bus, algorithm, cfg.ImagingTimeS)
		items = append(items, satItems...)
		rejected = append(rejected, satRejected...)
	}

	metrics := computeMetrics(opportunities, items, rejected)
	metrics.RuntimeMS = float64(time.Since(start).Microseconds()) / 1000.0

	// Debug, not Info: Schedule is pure and safe to invoke concurrently
	// from many validation scenarios at once, so this must not be the
	// default-visible log volume.
	slog.Default().Debug("scheduler: run complete",
		"algorithm", algorithm, "candidates", len(opportunities),
		"accepted", len(items), "rejected", len(rejected), "runtime_ms", metrics.RuntimeMS)

	return items, rejected, metrics
}

func scheduleSatellite(opps []Opportunity, bus BusConfig, algorithm Algorithm, imagingTimeS float64) ([]ScheduledItem, []RejectedOpportunity) {
	if algorithm.usesBestFit() {
		return scheduleBestFit(opps, bus, algorithm, imagingTimeS)
	}
	return scheduleFirstFit(opps, bus, algorithm, imagingTimeS)
}

// imagingWindow clips the opportunity's pass to an imagingTimeS-duration
// slot centered on MaxElevationTime (or the full pass when imagingTimeS<=0
// or ≥ pass duration).
func imagingWindow(o Opportunity, imagingTimeS float64) (time.Time, time.Time) {
	full := o.EndTime.Sub(o.StartTime)
	if imagingTimeS <= 0 {
		return o.StartTime, o.EndTime
	}
	dur := time.Duration(imagingTimeS * float64(time.Second))
	if dur >= full {
		return o.StartTime, o.EndTime
	}
	center := o.MaxElevationTime
	if center.IsZero() {
		center = o.StartTime.Add(full / 2)
	}
	s := center.Add(-dur / 2)
	e := s.Add(dur)
	if s.Before(o.StartTime) {
		s = o.StartTime
		e = s.Add(dur)
	}
	if e.After(o.EndTime) {
		e = o.EndTime
		s = e.Add(-dur)
	}
	return s, e
}

// resolvePitch decides whether pitch is attempted for a candidate: pitch
// is attempted only when the opportunity's required roll exceeds the
// bus roll limit but the combined roll/pitch geometry stays within both
// limits; otherwise rejected with pitch_over_limit.
func resolvePitch(o Opportunity, bus BusConfig, usePitch bool) (rollDeg, pitchDeg float64, rejectReason string, ok bool) {
	roll := o.RollAngleDeg
	absRoll := abs(roll)

	if !usePitch || !bus.hasPitch() {
		if absRoll > bus.MaxRollDeg {
			return 0, 0, "pitch_over_limit", false
		}
		return roll, 0, "", true
	}

	if absRoll <= bus.MaxRollDeg {
		return roll, 0, "", true
	}

	// Roll alone exceeds the limit; split the requirement across roll and
	// pitch, clamping roll to its limit and assigning the remainder to
	// pitch.
	clampedRoll := clampSigned(roll, bus.MaxRollDeg)
	residual := absRoll - bus.MaxRollDeg
	pitch := clampSigned(residualSigned(roll, residual), bus.MaxPitchDeg)

	if abs(pitch) > bus.MaxPitchDeg || residual > bus.MaxPitchDeg {
		return 0, 0, "pitch_over_limit", false
	}
	return clampedRoll, pitch, "", true
}

func residualSigned(roll, residual float64) float64 {
	if roll < 0 {
		return -residual
	}
	return residual
}

func clampSigned(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func toFeasibilityItem(start, end time.Time, roll, pitch float64) feasibility.Item {
	return feasibility.Item{StartTime: start, EndTime: end, RollDeg: roll, PitchDeg: pitch}
}

func computeMetrics(opportunities []Opportunity, items []ScheduledItem, rejected []RejectedOpportunity) Metrics {
	m := Metrics{Accepted: len(items), Rejected: len(rejected)}
	if len(items) == 0 {
		return m
	}

	oppByID := make(map[string]Opportunity, len(opportunities))
	for _, o := range opportunities {
		oppByID[o.ID] = o
	}

	var totalIncidence float64
	var minSpan, maxSpan time.Time

	for i, it := range items {
		m.TotalValue += it.Value
		m.TotalManeuverTimeS += it.ManeuverTimeS
		m.TotalSlackS += it.SlackTimeS
		if abs(it.RollAngleDeg) > m.MaxRollDeg {
			m.MaxRollDeg = abs(it.RollAngleDeg)
		}
		if abs(it.PitchAngleDeg) > m.MaxPitchDeg {
			m.MaxPitchDeg = abs(it.PitchAngleDeg)
		}
		if it.PitchAngleDeg != 0 {
			m.OppsUsingPitch++
		}
		if o, ok := oppByID[it.OpportunityID]; ok {
			totalIncidence += o.IncidenceAngleDeg
		}
		if i == 0 || it.ChosenStart.Before(minSpan) {
			minSpan = it.ChosenStart
		}
		if i == 0 || it.ChosenEnd.After(maxSpan) {
			maxSpan = it.ChosenEnd
		}
	}

	m.MeanValue = m.TotalValue / float64(len(items))
	m.MeanIncidence = totalIncidence / float64(len(items))

	span := maxSpan.Sub(minSpan).Seconds()
	var imaging float64
	for _, it := range items {
		imaging += it.ChosenEnd.Sub(it.ChosenStart).Seconds()
	}
	if span > 0 {
		m.Utilization = (m.TotalManeuverTimeS + imaging) / span
	}

	return m
}
