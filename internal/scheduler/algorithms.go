package scheduler

import (
	"sort"

	"github.com/spacereach/tasking-core/internal/feasibility"
)

// scheduleFirstFit implements first-fit (roll-only) and first-fit
// (roll+pitch): sort by start_time, accept in order iff feasible with the
// last accepted item on this satellite.
func scheduleFirstFit(opps []Opportunity, bus BusConfig, algorithm Algorithm, imagingTimeS float64) ([]ScheduledItem, []RejectedOpportunity) {
	sorted := append([]Opportunity(nil), opps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	var accepted []ScheduledItem
	var rejected []RejectedOpportunity
	usePitch := algorithm.usesPitch()

	var last *feasibility.Item

	for _, o := range sorted {
		start, end := imagingWindow(o, imagingTimeS)
		roll, pitch, reason, ok := resolvePitch(o, bus, usePitch)
		if !ok {
			rejected = append(rejected, RejectedOpportunity{OpportunityID: o.ID, Reason: reason})
			continue
		}

		candidate := toFeasibilityItem(start, end, roll, pitch)

		if last != nil {
			if start.Before(last.EndTime) {
				rejected = append(rejected, RejectedOpportunity{OpportunityID: o.ID, Reason: "overlap"})
				continue
			}
			if !feasibility.FeasibleBetween(*last, candidate, bus.Limits) {
				rejected = append(rejected, RejectedOpportunity{OpportunityID: o.ID, Reason: "slew_infeasible"})
				continue
			}
		}

		slack := 0.0
		if last != nil {
			slack = feasibility.Slack(*last, candidate, bus.Limits)
		}
		maneuverS := 0.0
		if last != nil {
			maneuverS = feasibility.ManeuverTime(roll-last.RollDeg, pitch-last.PitchDeg, bus.Limits)
		}

		accepted = append(accepted, ScheduledItem{
			OpportunityID: o.ID,
			SatelliteID: o.SatelliteID,
			ChosenStart: start,
			ChosenEnd: end,
			RollAngleDeg: roll,
			PitchAngleDeg: pitch,
			ManeuverTimeS: maneuverS,
			SlackTimeS: slack,
			Value: o.Value,
		})
		last = &candidate
	}

	return accepted, rejected
}

// scheduleBestFit implements best-fit (roll-only) and best-fit
// (roll+pitch): sort by descending value (tie-break earlier start_time),
// insert each candidate into the satellite's growing sorted timeline if it
// doesn't overlap and is slew-feasible with both neighbors.
func scheduleBestFit(opps []Opportunity, bus BusConfig, algorithm Algorithm, imagingTimeS float64) ([]ScheduledItem, []RejectedOpportunity) {
	candidates := append([]Opportunity(nil), opps...)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Value != candidates[j].Value {
			return candidates[i].Value > candidates[j].Value
		}
		return candidates[i].StartTime.Before(candidates[j].StartTime)
	})

	usePitch := algorithm.usesPitch()
	var accepted []ScheduledItem
	var rejected []RejectedOpportunity

	for _, o := range candidates {
		start, end := imagingWindow(o, imagingTimeS)
		roll, pitch, reason, ok := resolvePitch(o, bus, usePitch)
		if !ok {
			rejected = append(rejected, RejectedOpportunity{OpportunityID: o.ID, Reason: reason})
			continue
		}

		idx := sort.Search(len(accepted), func(i int) bool { return !accepted[i].ChosenStart.Before(start) })

		var prev, next *ScheduledItem
		if idx > 0 {
			prev = &accepted[idx-1]
		}
		if idx < len(accepted) {
			next = &accepted[idx]
		}

		if prev != nil && start.Before(prev.ChosenEnd) {
			rejected = append(rejected, RejectedOpportunity{OpportunityID: o.ID, Reason: "overlap"})
			continue
		}
		if next != nil && end.After(next.ChosenStart) {
			rejected = append(rejected, RejectedOpportunity{OpportunityID: o.ID, Reason: "overlap"})
			continue
		}

		candidate := toFeasibilityItem(start, end, roll, pitch)
		feasible := true
		if prev != nil {
			prevItem := toFeasibilityItem(prev.ChosenStart, prev.ChosenEnd, prev.RollAngleDeg, prev.PitchAngleDeg)
			if !feasibility.FeasibleBetween(prevItem, candidate, bus.Limits) {
				feasible = false
			}
		}
		if feasible && next != nil {
			nextItem := toFeasibilityItem(next.ChosenStart, next.ChosenEnd, next.RollAngleDeg, next.PitchAngleDeg)
			if !feasibility.FeasibleBetween(candidate, nextItem, bus.Limits) {
				feasible = false
			}
		}
		if !feasible {
			rejected = append(rejected, RejectedOpportunity{OpportunityID: o.ID, Reason: "slew_infeasible"})
			continue
		}

		slack := 0.0
		maneuverS := 0.0
		if prev != nil {
			slack = feasibility.Slack(toFeasibilityItem(prev.ChosenStart, prev.ChosenEnd, prev.RollAngleDeg, prev.PitchAngleDeg), candidate, bus.Limits)
			maneuverS = feasibility.ManeuverTime(roll-prev.RollAngleDeg, pitch-prev.PitchAngleDeg, bus.Limits)
		}

		item := ScheduledItem{
			OpportunityID: o.ID,
			SatelliteID: o.SatelliteID,
			ChosenStart: start,
			ChosenEnd: end,
			RollAngleDeg: roll,
			PitchAngleDeg: pitch,
			ManeuverTimeS: maneuverS,
			SlackTimeS: slack,
			Value: o.Value,
		}

		accepted = append(accepted[:idx], append([]ScheduledItem{item}, accepted[idx:]...)...)
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].ChosenStart.Before(accepted[j].ChosenStart) })
	return accepted, rejected
}
