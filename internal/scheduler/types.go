// Package scheduler implements four greedy scheduling algorithms sharing
// one schedule(...) entry point, selecting opportunities under
// slew-time feasibility.
//
// Candidates are gathered and ordered with a sort.Slice tie-break
// chain, and the Algorithm value selects the routine run for each
// satellite; see DESIGN.md for the grounding notes.
package scheduler

import (
	"time"

	"github.com/spacereach/tasking-core/internal/feasibility"
)

// Algorithm selects one of the four greedy strategies.
type Algorithm string

const (
	FirstFitRollOnly  Algorithm = "first_fit_roll_only"
	BestFitRollOnly   Algorithm = "best_fit_roll_only"
	FirstFitRollPitch Algorithm = "first_fit_roll_pitch"
	BestFitRollPitch  Algorithm = "best_fit_roll_pitch"
)

func (a Algorithm) usesPitch() bool {
	return a == FirstFitRollPitch || a == BestFitRollPitch
}

func (a Algorithm) usesBestFit() bool {
	return a == BestFitRollOnly || a == BestFitRollPitch
}

// Opportunity is a candidate imaging window, as produced by the visibility
// and SAR geometry layers and priced by quality scoring (Opportunity).
type Opportunity struct {
	ID                string
	SatelliteID       string
	TargetID          string
	StartTime         time.Time
	EndTime           time.Time
	MaxElevationTime  time.Time
	MaxElevation      float64
	IncidenceAngleDeg float64
	Priority          int
	Value             float64
	QualityScore      float64
	LookSide          string
	PassDirection     string
	RollAngleDeg      float64
	PitchAngleDeg     float64 // 0 when not applicable
}

// ScheduledItem is an opportunity the scheduler accepted (Scheduled Item).
type ScheduledItem struct {
	OpportunityID string
	SatelliteID   string
	ChosenStart   time.Time
	ChosenEnd     time.Time
	RollAngleDeg  float64
	PitchAngleDeg float64
	ManeuverTimeS float64
	SlackTimeS    float64
	Value         float64
}

// RejectedOpportunity records why a candidate was not scheduled.
type RejectedOpportunity struct {
	OpportunityID string
	Reason        string // "slew_infeasible" | "overlap" | "pitch_over_limit"
}

// BusConfig carries one satellite's pointing envelope and slew dynamics,
// resolved from platform config (Satellite bus capability block).
type BusConfig struct {
	MaxRollDeg  float64
	MaxPitchDeg float64 // 0 when the bus has no pitch axis
	Limits      feasibility.Limits
}

func (b BusConfig) hasPitch() bool {
	return b.MaxPitchDeg > 0
}

// Metrics summarizes one schedule(...) run.
type Metrics struct {
	Accepted           int
	Rejected           int
	TotalValue         float64
	MeanValue          float64
	MeanIncidence      float64
	TotalManeuverTimeS float64
	TotalSlackS        float64
	Utilization        float64
	MaxRollDeg         float64
	MaxPitchDeg        float64
	OppsUsingPitch     int
	RuntimeMS          float64
	QualityDegradation float64
}
