package harness

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/spacereach/tasking-core/internal/conflict"
	"github.com/spacereach/tasking-core/internal/configresolver"
	"github.com/spacereach/tasking-core/internal/coreerr"
	"github.com/spacereach/tasking-core/internal/feasibility"
	"github.com/spacereach/tasking-core/internal/orbit"
	"github.com/spacereach/tasking-core/internal/platformconfig"
	"github.com/spacereach/tasking-core/internal/repair"
	"github.com/spacereach/tasking-core/internal/scheduler"
	"github.com/spacereach/tasking-core/internal/store"
	"github.com/spacereach/tasking-core/internal/visibility"
)

// defaultSweepWorkers bounds the visibility sweep's worker pool at the
// number of usable CPUs; Sweep further caps it at the number of tasks.
var defaultSweepWorkers = runtime.GOMAXPROCS(0)

// Request bundles everything RunScenario needs to drive one scenario
// through Analysis -> Planning -> [Repair] -> Commit-Preview ->
// [Commit] -> Conflict-Recompute.
type Request struct {
	Scenario Scenario

	// Config is the admin platform-truth document consulted by the
	// resolver and the SAR mode lookup; nil runs the scenario against its
	// own self-contained satellite/SAR parameters only.
	Config *platformconfig.Document

	// Store persists plans/acquisitions/conflicts. Nil (or DryRun=true)
	// runs Analysis/Planning/[Repair]/Commit-Preview only — no row is
	// ever written.
	Store       *store.Store
	WorkspaceID string
	DryRun      bool

	ClampOnWarning   bool
	AllowBusOverride bool
}

// RunScenario executes one scenario end to end and returns its Report.
// A non-nil error means the harness itself failed (bad TLE, storage
// failure); a scenario that runs cleanly but fails its own invariants
// still returns (Report{Pass: false}, nil).
func RunScenario(ctx context.Context, req Request) (Report, error) {
	sc := req.Scenario
	report := Report{ScenarioID: sc.ID}
	if req.Config != nil {
		report.ConfigHash = req.Config.ConfigHash
	}

	opportunities, cancelled, err := runAnalysis(ctx, sc, req.Config, &report)
	if err != nil {
		return report, err
	}
	if cancelled {
		report.Cancelled = true
		return report, nil
	}

	schedCfg := buildSchedulerConfig(sc)

	if req.Config != nil {
		resolverResult, err := runConfigResolution(sc, req.Config, req.ClampOnWarning, req.AllowBusOverride)
		if err != nil {
			return report, err
		}
		if !resolverResult.Valid {
			report.FailingInvariants = append(report.FailingInvariants, "config_resolution")
			report.ReportHash = computeReportHash(report)
			return report, nil
		}
	}

	planningStart := time.Now()
	items, _, metrics := scheduler.Schedule(opportunities, schedCfg, scheduler.Algorithm(sc.Algorithm))
	report.Metrics = toReportMetrics(metrics)
	report.Stages = append(report.Stages, StageTiming{Name: "planning", DurationMS: msSince(planningStart)})

	var repairDiff *repair.Diff
	if sc.Repair != nil && sc.Repair.Enabled {
		diff, err := runRepair(req, sc, opportunities, schedCfg, &report)
		if err != nil {
			if isRepairRejection(err) {
				slog.Default().Warn("harness: repair planning rejected", "scenario_id", sc.ID, "error", err)
				report.FailingInvariants = append(report.FailingInvariants, "repair_planning:"+err.Error())
				report.ReportHash = computeReportHash(report)
				return report, nil
			}
			slog.Default().Error("harness: repair planning failed", "scenario_id", sc.ID, "error", err)
			return report, err
		}
		repairDiff = diff
		items = itemsFromDiff(*diff)
	}

	previewStart := time.Now()
	planItems := toPlanItems(items, opportunities)
	report.Stages = append(report.Stages, StageTiming{Name: "commit_preview", DurationMS: msSince(previewStart)})

	limits := limitsFromConfig(schedCfg)

	if req.Store == nil || req.DryRun {
		report.AcquisitionsCreated = len(planItems)
		report.Pass = evaluateInvariants(&report)
		report.ReportHash = computeReportHash(report)
		return report, nil
	}

	before, err := req.Store.ListAcquisitions(req.WorkspaceID)
	if err != nil {
		return report, err
	}
	report.ConflictsBeforeCommit = len(conflict.Detect(before, conflict.Request{WorkspaceID: req.WorkspaceID, Limits: limits}))

	slog.Default().Info("harness: committing scenario", "scenario_id", sc.ID, "workspace_id", req.WorkspaceID, "plan_items", len(planItems))

	if err := runCommit(req, sc, planItems, repairDiff, &report); err != nil {
		slog.Default().Error("harness: commit failed", "scenario_id", sc.ID, "workspace_id", req.WorkspaceID, "error", err)
		return report, err
	}

	if err := runConflictRecompute(req, limits, &report); err != nil {
		slog.Default().Error("harness: post-commit conflict recompute failed", "scenario_id", sc.ID, "workspace_id", req.WorkspaceID, "error", err)
		return report, err
	}

	report.Pass = evaluateInvariants(&report)
	report.ReportHash = computeReportHash(report)
	return report, nil
}

// runAnalysis builds satellites and targets, sweeps visibility, and
// prices the accepted windows into opportunities.
func runAnalysis(ctx context.Context, sc Scenario, doc *platformconfig.Document, report *Report) ([]scheduler.Opportunity, bool, error) {
	start := time.Now()

	satellites := make(map[string]*orbit.Satellite, len(sc.Satellites))
	satByID := make(map[string]ScenarioSatellite, len(sc.Satellites))
	for _, s := range sc.Satellites {
		sat, err := orbit.NewSatellite(s.ID, s.TLELine1, s.TLELine2)
		if err != nil {
			return nil, false, coreerr.Ephemeris("parse satellite tle", err)
		}
		satellites[s.ID] = sat
		satByID[s.ID] = s
	}

	targetByID := make(map[string]ScenarioTarget, len(sc.Targets))
	var tasks []visibility.Task
	for _, t := range sc.Targets {
		targetByID[t.ID] = t
		vt := visibility.Target{ID: t.ID, LatDeg: t.LatDeg, LonDeg: t.LonDeg}
		for _, s := range sc.Satellites {
			tasks = append(tasks, visibility.Task{Satellite: satellites[s.ID], Target: vt})
		}
	}

	windows, ok := visibility.Sweep(ctx, tasks, sc.WindowStart, sc.WindowEnd, sc.ElevationMaskDeg, defaultSweepWorkers, nil)
	if !ok {
		return nil, true, nil
	}

	opportunities := buildOpportunities(sc, windows, satByID, targetByID, doc)
	report.Stages = append(report.Stages, StageTiming{Name: "analysis", DurationMS: msSince(start)})

	if sc.ExpectSingleLookSide != "" {
		pass := true
		for _, o := range opportunities {
			if o.LookSide != sc.ExpectSingleLookSide {
				pass = false
				break
			}
		}
		recordInvariant(report, "expect_single_look_side", pass)
	}

	return opportunities, false, nil
}

// buildSchedulerConfig derives scheduler bus configs from the scenario's
// own satellite entries — a validation scenario is self-contained, so
// its bus envelope travels with it rather than requiring every test
// fixture to also carry a matching admin document.
func buildSchedulerConfig(sc Scenario) scheduler.Config {
	cfg := scheduler.Config{Buses: make(map[string]scheduler.BusConfig, len(sc.Satellites)), ImagingTimeS: sc.ImagingTimeS}
	for _, s := range sc.Satellites {
		cfg.Buses[s.ID] = scheduler.BusConfig{
			MaxRollDeg:  s.MaxRollDeg,
			MaxPitchDeg: s.MaxPitchDeg,
			Limits: feasibility.Limits{
				Roll:           feasibility.AxisLimits{RateDPS: s.MaxRollRateDPS, AccelDPS2: s.MaxRollAccelDPS2},
				Pitch:          feasibility.AxisLimits{RateDPS: s.MaxPitchRateDPS, AccelDPS2: s.MaxPitchAccelDPS2},
				SettlingTimeS:  s.SettlingTimeS,
				SequentialSlew: s.SequentialSlew,
			},
		}
	}
	return cfg
}

func limitsFromConfig(cfg scheduler.Config) map[string]feasibility.Limits {
	out := make(map[string]feasibility.Limits, len(cfg.Buses))
	for id, bus := range cfg.Buses {
		out[id] = bus.Limits
	}
	return out
}

// runConfigResolution builds a configresolver.MissionInput from the
// scenario and validates it against the admin document — the Planning
// stage's governance gate.
func runConfigResolution(sc Scenario, doc *platformconfig.Document, clampOnWarning, allowOverride bool) (*configresolver.Result, error) {
	input := configresolver.MissionInput{
		StartTime:        sc.WindowStart,
		EndTime:          sc.WindowEnd,
		AllowBusOverride: allowOverride,
	}
	for _, s := range sc.Satellites {
		input.SatelliteIDs = append(input.SatelliteIDs, s.ID)
	}

	switch sc.MissionMode {
	case "SAR":
		input.ImagingType = configresolver.ImagingSAR
		if sc.SAR != nil {
			input.SAR = &configresolver.SARInput{
				ImagingMode:     sc.SAR.ImagingMode,
				IncidenceMinDeg: sc.SAR.IncidenceMinDeg,
				IncidenceMaxDeg: sc.SAR.IncidenceMaxDeg,
			}
		}
	default:
		input.ImagingType = configresolver.ImagingOptical
		if sc.Optical != nil {
			angle := sc.Optical.PointingAngleDeg
			input.PointingAngleDeg = &angle
		}
	}

	return configresolver.Resolve(doc, input, clampOnWarning), nil
}

// runRepair executes the repair stage against the workspace's current
// baseline (empty when Store is nil, matching an unseeded from_scratch
// run).
func runRepair(req Request, sc Scenario, opportunities []scheduler.Opportunity, schedCfg scheduler.Config, report *Report) (*repair.Diff, error) {
	start := time.Now()

	var baseline []store.Acquisition
	if req.Store != nil {
		var err error
		baseline, err = req.Store.ListAcquisitions(req.WorkspaceID)
		if err != nil {
			return nil, err
		}
	}

	diff, err := repair.ExecuteRepairPlanning(repair.Request{
		Baseline:     baseline,
		Candidates:   opportunities,
		SchedulerCfg: schedCfg,
		Algorithm:    scheduler.Algorithm(sc.Algorithm),
		Objective:    repair.Objective(sc.Repair.Objective),
		PlanningMode: repair.PlanningMode(sc.Repair.PlanningMode),
		LockPolicy:   repair.LockPolicy(sc.Repair.LockPolicy),
		MaxChanges:   sc.Repair.MaxChanges,
	})
	if err != nil {
		return nil, err
	}

	report.RepairDiffCounts = &RepairDiffCounts{
		Kept: len(diff.Kept), Dropped: len(diff.Dropped),
		Added: len(diff.Added), Moved: len(diff.Moved),
	}
	report.Stages = append(report.Stages, StageTiming{Name: "repair", DurationMS: msSince(start)})
	return &diff, nil
}

func isRepairRejection(err error) bool {
	var coreErr *coreerr.CoreError
	return coreerr.As(err, &coreErr) && coreErr.Code == coreerr.CodeConflictState
}

// itemsFromDiff projects a repair Diff's added+moved entries back into
// ScheduledItems for the commit-preview stage; kept items already exist
// as acquisitions and need no new plan item.
func itemsFromDiff(diff repair.Diff) []scheduler.ScheduledItem {
	out := append([]scheduler.ScheduledItem(nil), diff.Added...)
	for _, m := range diff.Moved {
		out = append(out, m.Item)
	}
	return out
}

func toPlanItems(items []scheduler.ScheduledItem, opportunities []scheduler.Opportunity) []store.PlanItem {
	oppByID := make(map[string]scheduler.Opportunity, len(opportunities))
	for _, o := range opportunities {
		oppByID[o.ID] = o
	}

	out := make([]store.PlanItem, 0, len(items))
	for _, it := range items {
		o := oppByID[it.OpportunityID]
		out = append(out, store.PlanItem{
			OpportunityID: it.OpportunityID,
			SatelliteID:   it.SatelliteID,
			TargetID:      o.TargetID,
			StartTime:     it.ChosenStart,
			EndTime:       it.ChosenEnd,
			RollAngleDeg:  it.RollAngleDeg,
			PitchAngleDeg: it.PitchAngleDeg,
			ManeuverTimeS: it.ManeuverTimeS,
			SlackTimeS:    it.SlackTimeS,
			Value:         it.Value,
		})
	}
	return out
}

func runCommit(req Request, sc Scenario, planItems []store.PlanItem, repairDiff *repair.Diff, report *Report) error {
	start := time.Now()

	plan, err := req.Store.CreatePlan(store.Plan{
		WorkspaceID:    req.WorkspaceID,
		Algorithm:      string(sc.Algorithm),
		ConfigSnapshot: "{}",
		Metrics:        "{}",
		InputHash:      report.ConfigHash,
	}, planItems)
	if err != nil {
		return err
	}

	mode := strings.ToLower(sc.MissionMode)
	commitItems := make([]store.CommitPlanItem, len(planItems))
	for i, pi := range planItems {
		commitItems[i] = store.CommitPlanItem{
			OpportunityID: pi.OpportunityID,
			SatelliteID:   pi.SatelliteID,
			TargetID:      pi.TargetID,
			Item:          pi,
			Mode:          mode,
		}
	}

	var dropIDs []string
	var repairDiffJSON *string
	commitType := "normal"
	if repairDiff != nil {
		commitType = "repair"
		dropIDs = repairDiff.Dropped
		j := diffToJSON(*repairDiff)
		repairDiffJSON = &j
	}

	result, err := req.Store.CommitPlan(store.CommitRequest{
		PlanID:             plan.ID,
		WorkspaceID:        req.WorkspaceID,
		CommitType:         commitType,
		ConfigHash:         report.ConfigHash,
		Items:              commitItems,
		DropAcquisitionIDs: dropIDs,
		RepairDiff:         repairDiffJSON,
		ConflictsBefore:    intPtr(report.ConflictsBeforeCommit),
	})
	if err != nil {
		return err
	}

	report.AcquisitionsCreated = len(result.Acquisitions)
	report.AcquisitionsDropped = len(dropIDs)
	report.Stages = append(report.Stages, StageTiming{Name: "commit", DurationMS: msSince(start)})
	return nil
}

func runConflictRecompute(req Request, limits map[string]feasibility.Limits, report *Report) error {
	start := time.Now()

	after, err := req.Store.ListAcquisitions(req.WorkspaceID)
	if err != nil {
		return err
	}
	findings := conflict.Detect(after, conflict.Request{WorkspaceID: req.WorkspaceID, Limits: limits})
	if _, err := conflict.Persist(req.Store, req.WorkspaceID, findings, true); err != nil {
		return err
	}
	report.ConflictsAfterCommit = len(findings)
	report.Stages = append(report.Stages, StageTiming{Name: "conflict_recompute", DurationMS: msSince(start)})
	return nil
}

// evaluateInvariants rolls up the standard pass/fail invariants this
// harness checks on every run: no conflicts of any severity found by the
// post-commit recompute, and nothing already recorded as failing upstream.
func evaluateInvariants(report *Report) bool {
	recordInvariant(report, "no_error_conflicts_after_commit", report.ConflictsAfterCommit == 0)
	for _, f := range report.FailingInvariants {
		if strings.HasPrefix(f, "no_error_conflicts_after_commit") {
			continue
		}
		return false
	}
	return report.ConflictsAfterCommit == 0
}

func recordInvariant(report *Report, name string, pass bool) {
	if pass {
		report.PassingInvariants = append(report.PassingInvariants, name)
	} else {
		report.FailingInvariants = append(report.FailingInvariants, name)
	}
}

func diffToJSON(diff repair.Diff) string {
	b, err := json.Marshal(diff)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func intPtr(v int) *int { return &v }

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
