package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacereach/tasking-core/internal/scheduler"
)

const testLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9005"
const testLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.49560971 10000"

func testWindow() (time.Time, time.Time) {
	epoch := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	return epoch, epoch.Add(12 * time.Hour)
}

func twoTargetOpticalScenario() Scenario {
	start, end := testWindow()
	return Scenario{
		ID:   "scn-two-target",
		Name: "two targets, clear visibility",
		Satellites: []ScenarioSatellite{{
			ID: "iss", TLELine1: testLine1, TLELine2: testLine2, Modality: "optical",
			MaxRollDeg: 45, MaxRollRateDPS: 5, MaxRollAccelDPS2: 2, SettlingTimeS: 1,
		}},
		Targets: []ScenarioTarget{
			{ID: "tgt-a", LatDeg: 40.0, LonDeg: 20.0, Priority: 1},
			{ID: "tgt-b", LatDeg: 41.0, LonDeg: 21.0, Priority: 1},
		},
		WindowStart:      start,
		WindowEnd:        end,
		MissionMode:      "OPTICAL",
		Optical:          &OpticalParams{PointingAngleDeg: 30},
		Algorithm:        string(scheduler.BestFitRollOnly),
		ElevationMaskDeg: 10,
	}
}

// TestRunScenario_TwoTargetsClearVisibility follows scenario 1 with the
// ISS-like fixture (about 420 km, 51.6° inclination): 12 hours against two
// close targets with no store attached (dry-run analysis/planning only)
// must finish uncancelled and produce a 16-character report hash.
func TestRunScenario_TwoTargetsClearVisibility(t *testing.T) {
	sc := twoTargetOpticalScenario()

	report, err := RunScenario(context.Background(), Request{Scenario: sc, DryRun: true})
	require.NoError(t, err)
	assert.False(t, report.Cancelled)
	assert.NotEmpty(t, report.ReportHash)
	assert.Len(t, report.ReportHash, 16)
}

func TestRunScenario_Deterministic(t *testing.T) {
	sc := twoTargetOpticalScenario()

	r1, err1 := RunScenario(context.Background(), Request{Scenario: sc, DryRun: true})
	r2, err2 := RunScenario(context.Background(), Request{Scenario: sc, DryRun: true})
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1.ReportHash, r2.ReportHash)
	assert.Equal(t, r1.Metrics, r2.Metrics)
}

// TestRunScenario_SARLeftOnly matches scenario 3: every accepted
// opportunity must come back look_side=LEFT and within the incidence
// band, and expect_single_look_side must pass.
func TestRunScenario_SARLeftOnly(t *testing.T) {
	start, end := testWindow()
	incMin, incMax := 5.0, 85.0
	sc := Scenario{
		ID:   "scn-sar-left",
		Name: "SAR LEFT-only",
		Satellites: []ScenarioSatellite{{
			ID: "iss", TLELine1: testLine1, TLELine2: testLine2, Modality: "sar",
			MaxRollDeg: 45, MaxRollRateDPS: 5, MaxRollAccelDPS2: 2, SettlingTimeS: 1,
		}},
		Targets:          []ScenarioTarget{{ID: "tgt-a", LatDeg: 40.0, LonDeg: 20.0, Priority: 1}},
		WindowStart:      start,
		WindowEnd:        end,
		MissionMode:      "SAR",
		SAR: &SARParams{
			ImagingMode: "strip", LookSide: "LEFT", PassDirection: "ANY",
			IncidenceMinDeg: &incMin, IncidenceMaxDeg: &incMax,
		},
		Algorithm:            string(scheduler.BestFitRollOnly),
		ElevationMaskDeg:     10,
		ExpectSingleLookSide: "LEFT",
	}

	report, err := RunScenario(context.Background(), Request{Scenario: sc, DryRun: true})
	require.NoError(t, err)
	assert.NotContains(t, report.FailingInvariants, "expect_single_look_side")
}

// TestRunScenario_CancelledSweepIsReported checks that a cancelled
// context produces Report.Cancelled=true rather than a partial, silently
// "passing" report.
func TestRunScenario_CancelledSweepIsReported(t *testing.T) {
	sc := twoTargetOpticalScenario()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := RunScenario(ctx, Request{Scenario: sc, DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Empty(t, report.ReportHash)
}
