package repair

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacereach/tasking-core/internal/coreerr"
	"github.com/spacereach/tasking-core/internal/feasibility"
	"github.com/spacereach/tasking-core/internal/scheduler"
	"github.com/spacereach/tasking-core/internal/store"
)

func baseTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func rollOnlyBus(maxRoll float64) scheduler.BusConfig {
	return scheduler.BusConfig{
		MaxRollDeg: maxRoll,
		Limits: feasibility.Limits{
			Roll:          feasibility.AxisLimits{RateDPS: 5, AccelDPS2: 2},
			SettlingTimeS: 1,
		},
	}
}

func strPtr(s string) *string { return &s }

// TestExecuteRepairPlanning_PreservesHardLocks follows scenario 7 with a
// smaller baseline of one hard and one none acquisition; the repair drops
// the none one and adds one new opportunity. The hard-locked item must be
// in kept, and dropped must contain only the none acquisition.
func TestExecuteRepairPlanning_PreservesHardLocks(t *testing.T) {
	t0 := baseTime()

	baseline := []store.Acquisition{
		{ID: "hard-1", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(time.Minute), LockLevel: "hard", State: "committed", OpportunityID: strPtr("opp-hard")},
		{ID: "none-1", SatelliteID: "sat-1", StartTime: t0.Add(10 * time.Minute), EndTime: t0.Add(11 * time.Minute), LockLevel: "none", State: "committed", OpportunityID: strPtr("opp-old")},
	}

	candidates := []scheduler.Opportunity{
		{ID: "opp-new", SatelliteID: "sat-1", StartTime: t0.Add(20 * time.Minute), EndTime: t0.Add(21 * time.Minute), Value: 0.9, RollAngleDeg: 5},
	}

	req := Request{
		Baseline:     baseline,
		Candidates:   candidates,
		SchedulerCfg: scheduler.Config{Buses: map[string]scheduler.BusConfig{"sat-1": rollOnlyBus(30)}},
		Algorithm:    scheduler.BestFitRollOnly,
		Objective:    MaximizeValue,
		PlanningMode: Incremental,
		LockPolicy:   HardOnly,
	}

	diff, err := ExecuteRepairPlanning(req)
	require.NoError(t, err)

	assert.Contains(t, diff.Kept, "hard-1")
	assert.Equal(t, []string{"none-1"}, diff.Dropped)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "opp-new", diff.Added[0].OpportunityID)
}

func TestExecuteRepairPlanning_HardLockViolationRejected(t *testing.T) {
	t0 := baseTime()

	// from_scratch ignores existing acquisitions when gathering candidates,
	// so a new schedule that doesn't reconfirm the hard-locked opportunity
	// drops it — the invariant check must reject the diff.
	baseline := []store.Acquisition{
		{ID: "hard-1", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(time.Minute), LockLevel: "hard", State: "committed", OpportunityID: strPtr("opp-hard")},
	}
	candidates := []scheduler.Opportunity{
		{ID: "opp-new", SatelliteID: "sat-1", StartTime: t0.Add(5 * time.Minute), EndTime: t0.Add(6 * time.Minute), Value: 0.9, RollAngleDeg: 5},
	}

	req := Request{
		Baseline:     baseline,
		Candidates:   candidates,
		SchedulerCfg: scheduler.Config{Buses: map[string]scheduler.BusConfig{"sat-1": rollOnlyBus(30)}},
		Algorithm:    scheduler.BestFitRollOnly,
		Objective:    MaximizeValue,
		PlanningMode: FromScratch,
		LockPolicy:   HardOnly,
	}

	_, err := ExecuteRepairPlanning(req)
	var coreErr *coreerr.CoreError
	require.True(t, coreerr.As(err, &coreErr))
	assert.ErrorIs(t, err, coreerr.ErrHardLockViolated)
}

func TestExecuteRepairPlanning_MaxChangesExceeded(t *testing.T) {
	t0 := baseTime()
	baseline := []store.Acquisition{
		{ID: "none-1", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(time.Minute), LockLevel: "none", State: "committed", OpportunityID: strPtr("opp-old")},
	}
	candidates := []scheduler.Opportunity{
		{ID: "opp-new-1", SatelliteID: "sat-1", StartTime: t0.Add(5 * time.Minute), EndTime: t0.Add(6 * time.Minute), Value: 0.9, RollAngleDeg: 5},
		{ID: "opp-new-2", SatelliteID: "sat-1", StartTime: t0.Add(10 * time.Minute), EndTime: t0.Add(11 * time.Minute), Value: 0.8, RollAngleDeg: 5},
	}

	req := Request{
		Baseline:     baseline,
		Candidates:   candidates,
		SchedulerCfg: scheduler.Config{Buses: map[string]scheduler.BusConfig{"sat-1": rollOnlyBus(30)}},
		Algorithm:    scheduler.BestFitRollOnly,
		Objective:    MaximizeValue,
		PlanningMode: Incremental,
		LockPolicy:   HardOnly,
		MaxChanges:   1,
	}

	_, err := ExecuteRepairPlanning(req)
	assert.ErrorIs(t, err, coreerr.ErrRepairBudgetExceeded)
}

func TestFilterOpportunitiesIncremental_RemovesOverlapAndInfeasible(t *testing.T) {
	t0 := baseTime()
	blocked := []BlockedInterval{
		{AcquisitionID: "b1", SatelliteID: "sat-1", Start: t0, End: t0.Add(time.Minute), RollDeg: -30},
	}
	limits := map[string]feasibility.Limits{"sat-1": rollOnlyBus(30).Limits}

	opps := []scheduler.Opportunity{
		// overlaps the blocked interval outright.
		{ID: "overlap", SatelliteID: "sat-1", StartTime: t0.Add(30 * time.Second), EndTime: t0.Add(90 * time.Second)},
		// slew-infeasible: huge roll delta immediately after the blocked item.
		{ID: "infeasible", SatelliteID: "sat-1", StartTime: t0.Add(time.Minute + time.Second), EndTime: t0.Add(2 * time.Minute), RollAngleDeg: 30},
		// far enough away and small roll delta: feasible.
		{ID: "feasible", SatelliteID: "sat-1", StartTime: t0.Add(10 * time.Minute), EndTime: t0.Add(11 * time.Minute), RollAngleDeg: -29},
	}

	out := FilterOpportunitiesIncremental(opps, blocked, limits)
	ids := make([]string, len(out))
	for i, o := range out {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"feasible"}, ids)
}

func TestExecuteRepairPlanning_IdempotentPreview(t *testing.T) {
	t0 := baseTime()
	baseline := []store.Acquisition{
		{ID: "none-1", SatelliteID: "sat-1", StartTime: t0, EndTime: t0.Add(time.Minute), LockLevel: "none", State: "committed", OpportunityID: strPtr("opp-old")},
	}
	candidates := []scheduler.Opportunity{
		{ID: "opp-new", SatelliteID: "sat-1", StartTime: t0.Add(10 * time.Minute), EndTime: t0.Add(11 * time.Minute), Value: 0.9, RollAngleDeg: 5},
	}
	req := Request{
		Baseline:     baseline,
		Candidates:   candidates,
		SchedulerCfg: scheduler.Config{Buses: map[string]scheduler.BusConfig{"sat-1": rollOnlyBus(30)}},
		Algorithm:    scheduler.BestFitRollOnly,
		Objective:    MaximizeValue,
		PlanningMode: Incremental,
		LockPolicy:   HardOnly,
	}

	d1, err1 := ExecuteRepairPlanning(req)
	d2, err2 := ExecuteRepairPlanning(req)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, d1, d2)
}
