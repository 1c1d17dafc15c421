package configresolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacereach/tasking-core/internal/platformconfig"
)

func testDoc() *platformconfig.Document {
	return &platformconfig.Document{
		Satellites: platformconfig.SatellitesDoc{
			Satellites: []platformconfig.Satellite{
				{ID: "opt-1", Modality: platformconfig.ModalityOptical, Bus: platformconfig.BusCapability{MaxRollDeg: 30}},
				{ID: "sar-1", Modality: platformconfig.ModalitySAR, Bus: platformconfig.BusCapability{MaxRollDeg: 40}},
			},
		},
		SARModes: platformconfig.SARModesDoc{
			Modes: map[string]platformconfig.SARMode{
				"strip": {
					Name: "strip",
					IncidenceAngle: platformconfig.IncidenceEnvelope{
						AbsoluteMin: 10, AbsoluteMax: 55, RecommendedMin: 15, RecommendedMax: 45,
					},
				},
			},
		},
	}
}

func window(d time.Duration) (time.Time, time.Time) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.Add(d)
}

func TestResolve_SARUnsupportedMode(t *testing.T) {
	start, end := window(time.Hour)
	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingSAR,
		SAR: &SARInput{ImagingMode: "bogus"},
		StartTime: start,
		EndTime: end,
	}, true)

	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "sar.imaging_mode", res.Errors[0].Field)
}

func TestResolve_SARIncidenceClampedVsRejected(t *testing.T) {
	start, end := window(time.Hour)
	belowAbsolute := 5.0

	clamped := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingSAR,
		SAR: &SARInput{ImagingMode: "strip", IncidenceMinDeg: &belowAbsolute},
		StartTime: start,
		EndTime: end,
	}, true)
	assert.True(t, clamped.Valid)
	assert.Equal(t, 10.0, clamped.ClampedValues["sar.incidence_min_deg"])
	assert.Len(t, clamped.Warnings, 1)

	rejected := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingSAR,
		SAR: &SARInput{ImagingMode: "strip", IncidenceMinDeg: &belowAbsolute},
		StartTime: start,
		EndTime: end,
	}, false)
	assert.False(t, rejected.Valid)
	assert.Len(t, rejected.Errors, 1)
}

func TestResolve_SARIncidenceBelowRecommendedIsWarningOnly(t *testing.T) {
	start, end := window(time.Hour)
	belowRecommended := 12.0

	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingSAR,
		SAR: &SARInput{ImagingMode: "strip", IncidenceMinDeg: &belowRecommended},
		StartTime: start,
		EndTime: end,
	}, true)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Warnings, 1)
	assert.Empty(t, res.ClampedValues)
}

func TestResolve_SARIncidenceRangeInverted(t *testing.T) {
	start, end := window(time.Hour)
	min, max := 40.0, 20.0

	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingSAR,
		SAR: &SARInput{ImagingMode: "strip", IncidenceMinDeg: &min, IncidenceMaxDeg: &max},
		StartTime: start,
		EndTime: end,
	}, true)

	require.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		if e.Field == "sar.incidence_range" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolve_SARWarnsOnNonSARSatellite(t *testing.T) {
	start, end := window(time.Hour)
	mid := 30.0

	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingSAR,
		SAR: &SARInput{ImagingMode: "strip", IncidenceMinDeg: &mid},
		SatelliteIDs: []string{"opt-1"},
		StartTime: start,
		EndTime: end,
	}, true)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "satellites", res.Warnings[0].Field)
}

func TestResolve_OpticalPointingAngleClamp(t *testing.T) {
	start, end := window(time.Hour)
	angle := 50.0

	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingOptical,
		PointingAngleDeg: &angle,
		SatelliteIDs: []string{"opt-1"},
		StartTime: start,
		EndTime: end,
	}, true)

	assert.True(t, res.Valid)
	assert.Equal(t, 30.0, res.ClampedValues["pointingAngle"])
}

func TestResolve_TimeWindowExceedsMax(t *testing.T) {
	start, end := window(31 * 24 * time.Hour)
	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingOptical,
		StartTime: start,
		EndTime: end,
	}, true)

	require.False(t, res.Valid)
	found := false
	for _, e := range res.Errors {
		if e.Field == "timeWindow" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolve_TimeWindowEndBeforeStart(t *testing.T) {
	start, end := window(time.Hour)
	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingOptical,
		StartTime: end,
		EndTime: start,
	}, true)

	require.False(t, res.Valid)
}

func TestResolve_AdminOnlyOverrideRejectedWithoutFlag(t *testing.T) {
	start, end := window(time.Hour)
	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingOptical,
		StartTime: start,
		EndTime: end,
		OverrideFields: map[string]struct{}{"settling_time_s": {}},
	}, true)

	require.False(t, res.Valid)
	assert.Equal(t, "settling_time_s", res.Errors[0].Field)
}

func TestResolve_AdminOnlyOverrideAllowedWithFlag(t *testing.T) {
	start, end := window(time.Hour)
	res := Resolve(testDoc(), MissionInput{
		ImagingType: ImagingOptical,
		StartTime: start,
		EndTime: end,
		OverrideFields: map[string]struct{}{"settling_time_s": {}},
		AllowBusOverride: true,
	}, true)

	assert.True(t, res.Valid)
}
