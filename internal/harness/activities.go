package harness

import (
	"context"
	"log/slog"

	"github.com/spacereach/tasking-core/internal/platformconfig"
	"github.com/spacereach/tasking-core/internal/store"
)

// Activities holds the dependencies the harness's Temporal activities
// need — the same "one struct, one dependency bag" shape the rest of
// the platform's workflows use.
type Activities struct {
	Store         *store.Store
	ConfigManager platformconfig.Manager
	Log           *slog.Logger
}

func (a *Activities) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}

// RunScenarioActivity wraps RunScenario as a single Temporal activity:
// the whole pipeline runs inside one activity attempt rather than one
// activity per stage, since the stages share in-process state (the
// opportunity set, the scheduler config) that would otherwise need to
// round-trip through the workflow history on every step.
func (a *Activities) RunScenarioActivity(ctx context.Context, req ActivityRequest) (Report, error) {
	log := a.logger()
	log.Info("harness: activity started", "scenario_id", req.Scenario.ID, "workspace_id", req.WorkspaceID, "dry_run", req.DryRun)

	var doc *platformconfig.Document
	if a.ConfigManager != nil {
		doc = a.ConfigManager.Get()
	}
	report, err := RunScenario(ctx, Request{
		Scenario:         req.Scenario,
		Config:           doc,
		Store:            a.Store,
		WorkspaceID:      req.WorkspaceID,
		DryRun:           req.DryRun,
		ClampOnWarning:   req.ClampOnWarning,
		AllowBusOverride: req.AllowBusOverride,
	})
	if err != nil {
		log.Error("harness: activity failed", "scenario_id", req.Scenario.ID, "error", err)
		return report, err
	}

	log.Info("harness: activity completed", "scenario_id", req.Scenario.ID, "pass", report.Pass, "cancelled", report.Cancelled)
	return report, nil
}

// ActivityRequest is RunScenarioActivity's parameter: a plain value type
// (no *platformconfig.Document, no *store.Store) so it serializes
// cleanly through Temporal's history.
type ActivityRequest struct {
	Scenario         Scenario
	WorkspaceID      string
	DryRun           bool
	ClampOnWarning   bool
	AllowBusOverride bool
}
