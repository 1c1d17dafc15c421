package repair

import (
	"sort"

	"github.com/spacereach/tasking-core/internal/scheduler"
	"github.com/spacereach/tasking-core/internal/store"
)

// These boosts are large enough to dominate any realistic composite_value
// (which is bounded to [0,1]), so they act as a hard tie-break rather than
// a soft nudge; see DESIGN.md for why each objective resolves its
// tie-breaking this way.
const (
	minimizeChangesBoost  = 1000.0
	maximizeCoverageBoost = 1000.0
)

// applyObjective pre-adjusts candidate Value fields so the scheduler's
// existing value-ranked best-fit (and, where it matters, first-fit
// start-time order) realizes the requested repair objective without the
// scheduler itself needing an objective parameter.
//
//   - maximize_value: no adjustment; the scheduler already ranks by value.
//   - minimize_changes: opportunities that would reconfirm an existing
//     baseline acquisition (same opportunity id) are boosted so best-fit
//     keeps them over any competing new candidate; ties among boosted
//     candidates still resolve by the scheduler's own start-time
//     tie-break, which is deterministic.
//   - maximize_coverage: the first candidate per distinct target (by
//     target id, then start time) is boosted once, spreading acceptance
//     across targets before a second pass at any single target.
func applyObjective(opps []scheduler.Opportunity, baseline []store.Acquisition, objective Objective) []scheduler.Opportunity {
	out := append([]scheduler.Opportunity(nil), opps...)

	switch objective {
	case MinimizeChanges:
		existing := make(map[string]bool, len(baseline))
		for _, a := range baseline {
			if a.OpportunityID != nil {
				existing[*a.OpportunityID] = true
			}
		}
		for i := range out {
			if existing[out[i].ID] {
				out[i].Value += minimizeChangesBoost
			}
		}

	case MaximizeCoverage:
		order := append([]scheduler.Opportunity(nil), out...)
		sort.Slice(order, func(i, j int) bool {
			if order[i].TargetID != order[j].TargetID {
				return order[i].TargetID < order[j].TargetID
			}
			return order[i].StartTime.Before(order[j].StartTime)
		})
		boosted := make(map[string]bool)
		seenTarget := make(map[string]bool)
		for _, o := range order {
			if !seenTarget[o.TargetID] {
				seenTarget[o.TargetID] = true
				boosted[o.ID] = true
			}
		}
		for i := range out {
			if boosted[out[i].ID] {
				out[i].Value += maximizeCoverageBoost
			}
		}

	case MaximizeValue:
		// no-op
	}

	return out
}
