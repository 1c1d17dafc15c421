package harness

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

func sampleReport(id string) Report {
	return Report{
		ScenarioID: id,
		ConfigHash: "deadbeefcafef00d",
		Pass:       true,
		Metrics:    ReportMetrics{Accepted: 2, Rejected: 0},
		ReportHash: "0123456789abcdef",
	}
}

// TestScenarioWorkflow_RunsActivityAndReturnsReport mirrors the teacher's
// testsuite.WorkflowTestSuite pattern (internal/temporal/workflow_test.go):
// stub the activity the workflow calls, execute the workflow in-process,
// and assert both completion and the propagated result.
func TestScenarioWorkflow_RunsActivityAndReturnsReport(t *testing.T) {
	s := testsuite.WorkflowTestSuite{}
	env := s.NewTestWorkflowEnvironment()

	var a *Activities
	want := sampleReport("scenario-1")
	env.OnActivity(a.RunScenarioActivity, mock.Anything, mock.Anything).Return(want, nil)

	env.ExecuteWorkflow(ScenarioWorkflow, ActivityRequest{
		Scenario: Scenario{ID: "scenario-1", Name: "two targets clear visibility"},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var got Report
	require.NoError(t, env.GetWorkflowResult(&got))
	require.Equal(t, want, got)
}

// TestScenarioWorkflow_ActivityFailurePropagates verifies an activity
// error surfaces as the workflow's error rather than a zero-value report.
func TestScenarioWorkflow_ActivityFailurePropagates(t *testing.T) {
	s := testsuite.WorkflowTestSuite{}
	env := s.NewTestWorkflowEnvironment()

	var a *Activities
	env.OnActivity(a.RunScenarioActivity, mock.Anything, mock.Anything).
		Return(Report{}, assertableErr("propagator refused epoch"))

	env.ExecuteWorkflow(ScenarioWorkflow, ActivityRequest{
		Scenario: Scenario{ID: "scenario-bad"},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}

// TestBatchWorkflow_RunsEachScenarioAsChild verifies BatchWorkflow spawns
// one ScenarioWorkflow child per request and collects every report in
// order, matching the teacher's OnWorkflow child-workflow interception
// style (TestCHUMChildWorkflowsSpawn).
func TestBatchWorkflow_RunsEachScenarioAsChild(t *testing.T) {
	s := testsuite.WorkflowTestSuite{}
	env := s.NewTestWorkflowEnvironment()

	r1 := sampleReport("scenario-1")
	r2 := sampleReport("scenario-2")

	env.OnWorkflow(ScenarioWorkflow, mock.Anything, mock.MatchedBy(func(req ActivityRequest) bool {
		return req.Scenario.ID == "scenario-1"
	})).Return(r1, nil)
	env.OnWorkflow(ScenarioWorkflow, mock.Anything, mock.MatchedBy(func(req ActivityRequest) bool {
		return req.Scenario.ID == "scenario-2"
	})).Return(r2, nil)

	env.ExecuteWorkflow(BatchWorkflow, []ActivityRequest{
		{Scenario: Scenario{ID: "scenario-1"}},
		{Scenario: Scenario{ID: "scenario-2"}},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var got []Report
	require.NoError(t, env.GetWorkflowResult(&got))
	require.Equal(t, []Report{r1, r2}, got)
}

// TestBatchWorkflow_AbortsOnFirstChildFailure verifies a failing scenario
// aborts the batch rather than silently skipping it.
func TestBatchWorkflow_AbortsOnFirstChildFailure(t *testing.T) {
	s := testsuite.WorkflowTestSuite{}
	env := s.NewTestWorkflowEnvironment()

	env.OnWorkflow(ScenarioWorkflow, mock.Anything, mock.Anything).
		Return(Report{}, assertableErr("scenario harness failure"))

	env.ExecuteWorkflow(BatchWorkflow, []ActivityRequest{
		{Scenario: Scenario{ID: "scenario-1"}},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }
