package harness

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ScenarioWorkflow runs one validation scenario to completion. Unlike the
// platform's planning ceremony workflow, it never waits on a signal
// channel — the Validation Harness must be fully automated and
// deterministic, with no human gate in its critical path.
func ScenarioWorkflow(ctx workflow.Context, req ActivityRequest) (Report, error) {
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var a *Activities

	logger.Info("harness: running scenario", "ScenarioID", req.Scenario.ID, "Name", req.Scenario.Name)

	var report Report
	if err := workflow.ExecuteActivity(ctx, a.RunScenarioActivity, req).Get(ctx, &report); err != nil {
		return Report{}, fmt.Errorf("scenario %s failed: %w", req.Scenario.ID, err)
	}

	logger.Info("harness: scenario complete", "ScenarioID", req.Scenario.ID, "Pass", report.Pass, "ReportHash", report.ReportHash)
	return report, nil
}

// BatchWorkflow runs a set of scenarios in sequence and returns every
// report; a single scenario's harness-level failure aborts the batch, but
// a scenario that merely fails its own invariants (Report.Pass == false)
// does not — that result is itself the thing under test.
func BatchWorkflow(ctx workflow.Context, reqs []ActivityRequest) ([]Report, error) {
	logger := workflow.GetLogger(ctx)
	reports := make([]Report, 0, len(reqs))

	for _, req := range reqs {
		var report Report
		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID: "scenario-" + req.Scenario.ID,
		})
		if err := workflow.ExecuteChildWorkflow(childCtx, ScenarioWorkflow, req).Get(ctx, &report); err != nil {
			return reports, fmt.Errorf("batch aborted at scenario %s: %w", req.Scenario.ID, err)
		}
		reports = append(reports, report)
		logger.Info("harness: batch progress", "Completed", len(reports), "Total", len(reqs))
	}

	return reports, nil
}
