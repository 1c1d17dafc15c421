package visibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacereach/tasking-core/internal/orbit"
)

const testLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9005"
const testLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.49560971 10000"

func testSatellite(t *testing.T) *orbit.Satellite {
	t.Helper()
	sat, err := orbit.NewSatellite("iss", testLine1, testLine2)
	require.NoError(t, err)
	return sat
}

func TestSweep_ProducesWindowsOrEmpty(t *testing.T) {
	sat := testSatellite(t)
	target := Target{ID: "tgt-a", LatDeg: 40.0, LonDeg: 20.0}
	start := sat.ID // placeholder to keep sat referenced below
	_ = start

	epoch := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	horizonEnd := epoch.Add(12 * time.Hour)

	windows, ok := Sweep(context.Background(), []Task{{Satellite: sat, Target: target}}, epoch, horizonEnd, 10, 2, nil)
	require.True(t, ok)
	ws := windows["iss|tgt-a"]
	// Not asserting a specific count (orbit geometry is fixture-dependent);
	// asserting the invariant shape instead.
	for _, w := range ws {
		assert.True(t, w.End.After(w.Start))
		assert.GreaterOrEqual(t, w.MaxElevationDeg, 10.0)
		assert.False(t, w.MaxElevationTime.Before(w.Start))
		assert.False(t, w.MaxElevationTime.After(w.End))
	}
}

func TestSweep_CancellationReturnsPartial(t *testing.T) {
	sat := testSatellite(t)
	target := Target{ID: "tgt-a", LatDeg: 40.0, LonDeg: 20.0}
	epoch := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := Sweep(ctx, []Task{{Satellite: sat, Target: target}}, epoch, epoch.Add(12*time.Hour), 10, 1, nil)
	assert.False(t, ok)
}

func TestSweep_EmptyTasks(t *testing.T) {
	epoch := time.Now().Add(-time.Hour)
	windows, ok := Sweep(context.Background(), nil, epoch, epoch.Add(time.Hour), 10, 4, nil)
	assert.True(t, ok)
	assert.Empty(t, windows)
}

func TestSortWindows(t *testing.T) {
	base := time.Now()
	ws := []PassWindow{
		{Start: base.Add(2 * time.Hour)},
		{Start: base},
		{Start: base.Add(time.Hour)},
	}
	SortWindows(ws)
	assert.True(t, ws[0].Start.Before(ws[1].Start))
	assert.True(t, ws[1].Start.Before(ws[2].Start))
}
