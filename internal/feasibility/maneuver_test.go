package feasibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAxisTime_ZeroDelta(t *testing.T) {
	assert.Equal(t, 0.0, axisTime(0, AxisLimits{RateDPS: 2, AccelDPS2: 1}))
}

func TestAxisTime_TriangularBelowCrossover(t *testing.T) {
	limits := AxisLimits{RateDPS: 10, AccelDPS2: 2}
	// crossover = 100/2 = 50 deg; pick delta well below it.
	got := axisTime(8, limits)
	want := 2 * sqrt(8.0/2.0)
	assert.InDelta(t, want, got, 1e-9)
}

func sqrt(v float64) float64 {
	x := v
	for i := 0; i < 50; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

func TestAxisTime_TrapezoidalAboveCrossover(t *testing.T) {
	limits := AxisLimits{RateDPS: 10, AccelDPS2: 2}
	// crossover = 50 deg; pick delta above it.
	got := axisTime(80, limits)
	want := limits.RateDPS/limits.AccelDPS2 + 80/limits.RateDPS
	assert.InDelta(t, want, got, 1e-9)
}

func TestManeuverTime_ParallelVsSequential(t *testing.T) {
	limits := Limits{
		Roll: AxisLimits{RateDPS: 5, AccelDPS2: 1},
		Pitch: AxisLimits{RateDPS: 5, AccelDPS2: 1},
		SettlingTimeS: 2,
	}
	parallel := ManeuverTime(20, 10, limits)

	limits.SequentialSlew = true
	sequential := ManeuverTime(20, 10, limits)

	assert.Greater(t, sequential, parallel)
}

func TestManeuverTime_ZeroPitchAxisSkipsComputation(t *testing.T) {
	limits := Limits{
		Roll: AxisLimits{RateDPS: 5, AccelDPS2: 1},
		Pitch: AxisLimits{RateDPS: 0, AccelDPS2: 0},
		SettlingTimeS: 1,
	}
	got := ManeuverTime(10, 0, limits)
	want := axisTime(10, limits.Roll) + 1
	assert.InDelta(t, want, got, 1e-9)
}

func TestFeasibleBetween_ToleranceBoundary(t *testing.T) {
	limits := Limits{
		Roll: AxisLimits{RateDPS: 10, AccelDPS2: 5},
		SettlingTimeS: 1,
	}
	required := ManeuverTime(10, 0, limits)

	base := time.Now()
	a := Item{StartTime: base, EndTime: base}
	b := Item{StartTime: base.Add(time.Duration((required - 0.005) * float64(time.Second))), RollDeg: 10}

	assert.True(t, FeasibleBetween(a, b, limits))
}

func TestFeasibleBetween_InfeasibleWhenTooSoon(t *testing.T) {
	limits := Limits{
		Roll: AxisLimits{RateDPS: 10, AccelDPS2: 5},
		SettlingTimeS: 5,
	}
	base := time.Now()
	a := Item{StartTime: base, EndTime: base}
	b := Item{StartTime: base.Add(time.Second), RollDeg: 90}

	assert.False(t, FeasibleBetween(a, b, limits))
}
