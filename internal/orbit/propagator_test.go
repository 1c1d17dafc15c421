package orbit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ISS-like TLE, used purely as a fixture with plausible element values.
const testLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9005"
const testLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.49560971 10000"

func mustSat(t *testing.T) *Satellite {
	t.Helper()
	sat, err := NewSatellite("iss", testLine1, testLine2)
	require.NoError(t, err)
	return sat
}

func TestGetPosition_Deterministic(t *testing.T) {
	sat := mustSat(t)
	ts := sat.elements.epoch.Add(3 * time.Hour)

	p1, err := GetPosition(sat, ts)
	require.NoError(t, err)
	p2, err := GetPosition(sat, ts)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
}

func TestGetPosition_LatitudeWithinInclinationBound(t *testing.T) {
	sat := mustSat(t)
	ts := sat.elements.epoch.Add(90 * time.Minute)

	p, err := GetPosition(sat, ts)
	require.NoError(t, err)
	assert.LessOrEqual(t, p.LatDeg, 52.0)
	assert.GreaterOrEqual(t, p.LatDeg, -52.0)
}

func TestGetPosition_OutOfEpochRange(t *testing.T) {
	sat := mustSat(t)
	ts := sat.elements.epoch.Add(200 * 24 * time.Hour)

	_, err := GetPosition(sat, ts)
	assert.ErrorIs(t, err, ErrOutOfEpochRange)
}

func TestNewSatellite_InvalidTLE(t *testing.T) {
	_, err := NewSatellite("bad", "too short", "also short")
	assert.ErrorIs(t, err, ErrInvalidEphemeris)
}

func TestVelocity_MatchesApproximateOrbitalSpeed(t *testing.T) {
	sat := mustSat(t)
	ts := sat.elements.epoch.Add(time.Hour)

	v, err := Velocity(sat, ts)
	require.NoError(t, err)
	speed := v.Norm()
	// Low Earth orbit speeds are roughly 7-8 km/s.
	assert.InDelta(t, 7.6, speed, 0.5)
}

func TestStateAt_AltitudeIsLEO(t *testing.T) {
	sat := mustSat(t)
	ts := sat.elements.epoch.Add(time.Hour)

	sv, err := StateAt(sat, ts)
	require.NoError(t, err)
	assert.InDelta(t, 420, sv.AltKM, 150)
}
