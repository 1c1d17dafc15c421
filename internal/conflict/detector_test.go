package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacereach/tasking-core/internal/feasibility"
	"github.com/spacereach/tasking-core/internal/store"
)

func baseTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func rollLimits() feasibility.Limits {
	return feasibility.Limits{
		Roll:          feasibility.AxisLimits{RateDPS: 5, AccelDPS2: 2},
		SettlingTimeS: 1,
	}
}

// TestDetect_TemporalOverlap matches scenario 6: two acquisitions with
// end_a = start_b + 10s emit exactly one temporal_overlap finding,
// severity=error, referencing both ids.
func TestDetect_TemporalOverlap(t *testing.T) {
	t0 := baseTime()
	a := store.Acquisition{ID: "acq-a", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(2 * time.Minute)}
	b := store.Acquisition{ID: "acq-b", SatelliteID: "sat-1", StartTime: t0.Add(2*time.Minute - 10*time.Second), EndTime: t0.Add(4 * time.Minute)}

	findings := Detect([]store.Acquisition{a, b}, Request{
		WorkspaceID: "ws-1",
		Limits:      map[string]feasibility.Limits{"sat-1": rollLimits()},
	})

	require.Len(t, findings, 1)
	assert.Equal(t, "temporal_overlap", findings[0].Type)
	assert.Equal(t, "error", findings[0].Severity)
	assert.ElementsMatch(t, []string{"acq-a", "acq-b"}, findings[0].AcquisitionIDs)
}

func TestDetect_NoConflictWhenFeasible(t *testing.T) {
	t0 := baseTime()
	a := store.Acquisition{ID: "acq-a", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(time.Minute), RollAngleDeg: 0}
	b := store.Acquisition{ID: "acq-b", SatelliteID: "sat-1", StartTime: t0.Add(10 * time.Minute), EndTime: t0.Add(11 * time.Minute), RollAngleDeg: 5}

	findings := Detect([]store.Acquisition{a, b}, Request{
		WorkspaceID: "ws-1",
		Limits:      map[string]feasibility.Limits{"sat-1": rollLimits()},
	})
	assert.Empty(t, findings)
}

func TestDetect_SlewInfeasibleSeverityTiers(t *testing.T) {
	t0 := baseTime()
	limits := rollLimits()

	// Large roll delta demands a long maneuver; tight adjacency leaves a
	// large deficit -> error.
	a := store.Acquisition{ID: "acq-a", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(time.Minute), RollAngleDeg: -30}
	b := store.Acquisition{ID: "acq-b", SatelliteID: "sat-1", StartTime: t0.Add(time.Minute + time.Second), EndTime: t0.Add(2 * time.Minute), RollAngleDeg: 30}

	findings := Detect([]store.Acquisition{a, b}, Request{
		WorkspaceID: "ws-1",
		Limits:      map[string]feasibility.Limits{"sat-1": limits},
	})
	require.Len(t, findings, 1)
	assert.Equal(t, "slew_infeasible", findings[0].Type)
	assert.Equal(t, "error", findings[0].Severity)
}

func TestDetect_IgnoresFailedAcquisitions(t *testing.T) {
	t0 := baseTime()
	a := store.Acquisition{ID: "acq-a", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(2 * time.Minute), State: "failed"}
	b := store.Acquisition{ID: "acq-b", SatelliteID: "sat-1", StartTime: t0.Add(time.Minute), EndTime: t0.Add(3 * time.Minute), State: "committed"}

	findings := Detect([]store.Acquisition{a, b}, Request{WorkspaceID: "ws-1"})
	assert.Empty(t, findings)
}

func TestDetect_DeterministicOrder(t *testing.T) {
	t0 := baseTime()
	acqs := []store.Acquisition{
		{ID: "z1", SatelliteID: "sat-z", StartTime: t0, EndTime: t0.Add(time.Minute), RollAngleDeg: -30},
		{ID: "z2", SatelliteID: "sat-z", StartTime: t0.Add(time.Minute + time.Second), EndTime: t0.Add(2 * time.Minute), RollAngleDeg: 30},
		{ID: "a1", SatelliteID: "sat-a", StartTime: t0, EndTime: t0.Add(time.Minute), RollAngleDeg: -30},
		{ID: "a2", SatelliteID: "sat-a", StartTime: t0.Add(time.Minute + time.Second), EndTime: t0.Add(2 * time.Minute), RollAngleDeg: 30},
	}
	limits := map[string]feasibility.Limits{"sat-z": rollLimits(), "sat-a": rollLimits()}

	f1 := Detect(acqs, Request{WorkspaceID: "ws-1", Limits: limits})
	f2 := Detect(acqs, Request{WorkspaceID: "ws-1", Limits: limits})
	require.Equal(t, f1, f2)
	require.Len(t, f1, 2)
	assert.ElementsMatch(t, []string{"a1", "a2"}, f1[0].AcquisitionIDs)
}
