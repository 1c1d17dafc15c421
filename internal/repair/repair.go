// Package repair implements the Repair / Incremental Planner: given a
// committed baseline plus a fresh opportunity set, it produces a
// kept/dropped/added/moved diff honoring a lock policy, enforcing the
// hard-lock invariant before returning.
package repair

import (
	"log/slog"
	"sort"
	"time"

	"github.com/spacereach/tasking-core/internal/coreerr"
	"github.com/spacereach/tasking-core/internal/feasibility"
	"github.com/spacereach/tasking-core/internal/scheduler"
	"github.com/spacereach/tasking-core/internal/store"
)

// LockPolicy governs which acquisitions count as blocking during
// incremental planning.
type LockPolicy string

const (
	HardOnly    LockPolicy = "hard_only"
	HardAndSoft LockPolicy = "hard_and_soft"
	AllLocked   LockPolicy = "all"
)

// PlanningMode selects whether existing acquisitions are treated as
// blocked intervals or ignored outright.
type PlanningMode string

const (
	FromScratch PlanningMode = "from_scratch"
	Incremental PlanningMode = "incremental"
)

// Objective is the repair planner's optimization goal; tie-breaking for
// minimize_changes and maximize_coverage is deterministic but not pinned
// by the source material — see DESIGN.md.
type Objective string

const (
	MaximizeValue    Objective = "maximize_value"
	MinimizeChanges  Objective = "minimize_changes"
	MaximizeCoverage Objective = "maximize_coverage"
)

// angleEpsilonDeg and timeEpsilon bound the "unchanged" comparison between
// a baseline acquisition and its re-scheduled counterpart.
const angleEpsilonDeg = 1e-6

var timeEpsilon = time.Millisecond

// blocks reports whether acquisition a counts as blocking under policy.
func blocks(a store.Acquisition, policy LockPolicy) bool {
	switch policy {
	case HardOnly:
		return a.LockLevel == "hard"
	case HardAndSoft:
		return a.LockLevel == "hard" || a.LockLevel == "soft"
	case AllLocked:
		return true
	default:
		return false
	}
}

// BlockedInterval is a committed acquisition the incremental scheduler
// must not overlap and must satisfy slew-feasibility at both boundaries.
type BlockedInterval struct {
	AcquisitionID string
	SatelliteID   string
	Start, End    time.Time
	RollDeg       float64
	PitchDeg      float64
}

// BlockedIntervals selects the baseline acquisitions that block under
// policy, sorted by start time within each satellite.
func BlockedIntervals(baseline []store.Acquisition, policy LockPolicy) []BlockedInterval {
	var out []BlockedInterval
	for _, a := range baseline {
		if a.State == "failed" || !blocks(a, policy) {
			continue
		}
		out = append(out, BlockedInterval{
			AcquisitionID: a.ID,
			SatelliteID:   a.SatelliteID,
			Start:         a.StartTime,
			End:           a.EndTime,
			RollDeg:       a.RollAngleDeg,
			PitchDeg:      a.PitchAngleDeg,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SatelliteID != out[j].SatelliteID {
			return out[i].SatelliteID < out[j].SatelliteID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// FilterOpportunitiesIncremental implements
// filter_opportunities_incremental(opps, blocked, slew_cfg): removes any
// opportunity that overlaps a blocked interval, or whose slew from/to the
// adjacent blocked item on the same satellite is infeasible.
func FilterOpportunitiesIncremental(opps []scheduler.Opportunity, blocked []BlockedInterval, limits map[string]feasibility.Limits) []scheduler.Opportunity {
	bySat := make(map[string][]BlockedInterval)
	for _, b := range blocked {
		bySat[b.SatelliteID] = append(bySat[b.SatelliteID], b)
	}

	out := make([]scheduler.Opportunity, 0, len(opps))
	for _, o := range opps {
		if feasibleAgainstBlocked(o, bySat[o.SatelliteID], limits[o.SatelliteID]) {
			out = append(out, o)
		}
	}
	return out
}

func feasibleAgainstBlocked(o scheduler.Opportunity, blocked []BlockedInterval, limits feasibility.Limits) bool {
	var prev, next *BlockedInterval
	for i := range blocked {
		b := &blocked[i]
		if o.StartTime.Before(b.End) && b.Start.Before(o.EndTime) {
			return false // overlaps a blocked interval outright
		}
		if !b.End.After(o.StartTime) {
			if prev == nil || b.End.After(prev.End) {
				prev = b
			}
		}
		if !b.Start.Before(o.EndTime) {
			if next == nil || b.Start.Before(next.Start) {
				next = b
			}
		}
	}

	candidate := feasibility.Item{StartTime: o.StartTime, EndTime: o.EndTime, RollDeg: o.RollAngleDeg, PitchDeg: o.PitchAngleDeg}
	if prev != nil {
		prevItem := feasibility.Item{StartTime: prev.Start, EndTime: prev.End, RollDeg: prev.RollDeg, PitchDeg: prev.PitchDeg}
		if !feasibility.FeasibleBetween(prevItem, candidate, limits) {
			return false
		}
	}
	if next != nil {
		nextItem := feasibility.Item{StartTime: next.Start, EndTime: next.End, RollDeg: next.RollDeg, PitchDeg: next.PitchDeg}
		if !feasibility.FeasibleBetween(candidate, nextItem, limits) {
			return false
		}
	}
	return true
}

// MovedItem is a baseline acquisition retained by opportunity but
// rescheduled to a different time or pointing angle.
type MovedItem struct {
	AcquisitionID string
	OpportunityID string
	Item          scheduler.ScheduledItem
}

// Diff is the repair planner's output: RepairDiff = {kept, dropped,
// added, moved, reasons}.
type Diff struct {
	Kept    []string // acquisition ids retained unchanged
	Dropped []string // acquisition ids removed
	Added   []scheduler.ScheduledItem
	Moved   []MovedItem
	Reasons []string
}

// Request bundles everything ExecuteRepairPlanning needs.
type Request struct {
	Baseline      []store.Acquisition
	Candidates    []scheduler.Opportunity
	SchedulerCfg  scheduler.Config
	Algorithm     scheduler.Algorithm
	Objective     Objective
	PlanningMode  PlanningMode
	LockPolicy    LockPolicy
	MaxChanges    int // 0 means unbounded
}

// ExecuteRepairPlanning implements execute_repair_planning(baseline,
// candidates, objective, scope, lock_policy, max_changes) -> RepairDiff.
func ExecuteRepairPlanning(req Request) (Diff, error) {
	candidates := req.Candidates
	if req.PlanningMode == Incremental {
		blocked := BlockedIntervals(req.Baseline, req.LockPolicy)
		limits := make(map[string]feasibility.Limits, len(req.SchedulerCfg.Buses))
		for id, bus := range req.SchedulerCfg.Buses {
			limits[id] = bus.Limits
		}
		candidates = FilterOpportunitiesIncremental(candidates, blocked, limits)
	}

	candidates = applyObjective(candidates, req.Baseline, req.Objective)

	items, _, _ := scheduler.Schedule(candidates, req.SchedulerCfg, req.Algorithm)

	diff := buildDiff(req.Baseline, items, req.LockPolicy, req.PlanningMode)

	totalChanges := len(diff.Dropped) + len(diff.Added) + len(diff.Moved)
	if req.MaxChanges > 0 && totalChanges > req.MaxChanges {
		slog.Default().Warn("repair: planning rejected, change budget exceeded",
			"max_changes", req.MaxChanges, "total_changes", totalChanges, "baseline_size", len(req.Baseline))
		return Diff{}, coreerr.ErrRepairBudgetExceeded
	}

	if err := checkHardLockInvariant(req.Baseline, diff); err != nil {
		slog.Default().Error("repair: planning rejected, hard-lock invariant violated",
			"baseline_size", len(req.Baseline), "error", err)
		return Diff{}, err
	}

	slog.Default().Info("repair: planning succeeded",
		"kept", len(diff.Kept), "dropped", len(diff.Dropped), "added", len(diff.Added), "moved", len(diff.Moved))
	return diff, nil
}

// buildDiff computes kept/dropped/added/moved by comparing the baseline
// against the freshly scheduled items. In incremental mode, acquisitions
// that block under lockPolicy are always kept, since
// FilterOpportunitiesIncremental already excluded their intervals from
// the candidate pool. In from_scratch mode every baseline acquisition
// competes equally for re-selection by opportunity id; a hard-locked one
// that isn't reconfirmed falls out as dropped, and the hard-lock
// invariant check that follows rejects the diff.
func buildDiff(baseline []store.Acquisition, items []scheduler.ScheduledItem, lockPolicy LockPolicy, mode PlanningMode) Diff {
	itemByOppID := make(map[string]scheduler.ScheduledItem, len(items))
	claimed := make(map[string]bool, len(items))
	for _, it := range items {
		itemByOppID[it.OpportunityID] = it
	}

	var diff Diff
	for _, a := range baseline {
		if a.State == "failed" {
			continue
		}
		if mode == Incremental && blocks(a, lockPolicy) {
			diff.Kept = append(diff.Kept, a.ID)
			diff.Reasons = append(diff.Reasons, a.ID+": kept (locked, blocking)")
			continue
		}

		oppID := ""
		if a.OpportunityID != nil {
			oppID = *a.OpportunityID
		}
		it, ok := itemByOppID[oppID]
		if !ok || oppID == "" {
			diff.Dropped = append(diff.Dropped, a.ID)
			diff.Reasons = append(diff.Reasons, a.ID+": dropped (not reselected)")
			continue
		}
		claimed[oppID] = true

		if sameSlot(a, it) {
			diff.Kept = append(diff.Kept, a.ID)
			diff.Reasons = append(diff.Reasons, a.ID+": kept (unchanged)")
		} else {
			diff.Moved = append(diff.Moved, MovedItem{AcquisitionID: a.ID, OpportunityID: oppID, Item: it})
			diff.Reasons = append(diff.Reasons, a.ID+": moved (rescheduled)")
		}
	}

	for _, it := range items {
		if !claimed[it.OpportunityID] {
			diff.Added = append(diff.Added, it)
			diff.Reasons = append(diff.Reasons, it.OpportunityID+": added (new slot)")
		}
	}

	sort.Strings(diff.Kept)
	sort.Strings(diff.Dropped)
	sort.Slice(diff.Moved, func(i, j int) bool { return diff.Moved[i].AcquisitionID < diff.Moved[j].AcquisitionID })
	sort.Slice(diff.Added, func(i, j int) bool { return diff.Added[i].OpportunityID < diff.Added[j].OpportunityID })
	return diff
}

func sameSlot(a store.Acquisition, it scheduler.ScheduledItem) bool {
	if absDuration(a.StartTime.Sub(it.ChosenStart)) > timeEpsilon {
		return false
	}
	if absDuration(a.EndTime.Sub(it.ChosenEnd)) > timeEpsilon {
		return false
	}
	if absFloat(a.RollAngleDeg-it.RollAngleDeg) > angleEpsilonDeg {
		return false
	}
	if absFloat(a.PitchAngleDeg-it.PitchAngleDeg) > angleEpsilonDeg {
		return false
	}
	return true
}

// checkHardLockInvariant enforces hard_locked_before ⊆ kept; any
// violation is unrecoverable and rejects the diff.
func checkHardLockInvariant(baseline []store.Acquisition, diff Diff) error {
	kept := make(map[string]bool, len(diff.Kept))
	for _, id := range diff.Kept {
		kept[id] = true
	}
	for _, a := range baseline {
		if a.LockLevel == "hard" && a.State != "failed" && !kept[a.ID] {
			return coreerr.ErrHardLockViolated
		}
	}
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
