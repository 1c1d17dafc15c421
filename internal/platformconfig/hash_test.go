package platformconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *Document {
	return &Document{
		Satellites: SatellitesDoc{
			Satellites: []Satellite{
				{ID: "sat-b", Name: "Beta", Modality: ModalityOptical, Bus: BusCapability{MaxRollDeg: 30}},
				{ID: "sat-a", Name: "Alpha", Modality: ModalitySAR, Bus: BusCapability{MaxRollDeg: 45}},
			},
		},
		SARModes: SARModesDoc{
			Modes: map[string]SARMode{
				"spot": {Name: "spot", OptimalIncidenceDeg: 35},
				"strip": {Name: "strip", OptimalIncidenceDeg: 40},
			},
		},
		GroundStations: GroundStationsDoc{
			Stations: []GroundStation{{ID: "gs-1", Name: "Station One"}},
		},
		MissionSettings: MissionSettingsDoc{
			MaxWindowDays: 7,
			WeightPresets: map[string]WeightPreset{
				"balanced": {Priority: 0.4, Quality: 0.3, Timing: 0.3},
			},
		},
		BatchPolicies: BatchPoliciesDoc{
			Policies: map[string]BatchPolicy{
				"default": {Name: "default", LockPolicy: "hard_only", Objective: "maximize_value"},
			},
		},
	}
}

func TestComputeHash_OrderIndependent(t *testing.T) {
	a := sampleDoc()
	b := sampleDoc()
	// Reverse satellite slice order in b; map iteration order already varies
	// across runs, so this exercises the slice-sort path explicitly.
	b.Satellites.Satellites[0], b.Satellites.Satellites[1] = b.Satellites.Satellites[1], b.Satellites.Satellites[0]

	require.Equal(t, ComputeHash(a), ComputeHash(b))
}

func TestComputeHash_DiffersOnContentChange(t *testing.T) {
	a := sampleDoc()
	b := sampleDoc()
	b.Satellites.Satellites[0].Bus.MaxRollDeg = 99

	assert.NotEqual(t, ComputeHash(a), ComputeHash(b))
}

func TestComputeHash_Length(t *testing.T) {
	h := ComputeHash(sampleDoc())
	assert.Len(t, h, 16)
}

func TestDocumentClone_Independent(t *testing.T) {
	a := sampleDoc()
	clone := a.Clone()
	clone.Satellites.Satellites[0].Name = "Mutated"

	assert.NotEqual(t, a.Satellites.Satellites[0].Name, clone.Satellites.Satellites[0].Name)
}

func TestSatelliteByID(t *testing.T) {
	d := sampleDoc()
	sat, ok := d.SatelliteByID("sat-a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", sat.Name)

	_, ok = d.SatelliteByID("missing")
	assert.False(t, ok)
}
