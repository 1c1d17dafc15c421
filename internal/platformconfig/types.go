// Package platformconfig loads and snapshots the admin-managed, on-disk
// YAML documents that constitute platform truth: satellites, SAR modes,
// ground stations, mission settings, and batch policies.
//
// A typed document struct, a Manager interface with Get/Reload, and an
// RWMutexManager that clones on every read back the whole package.
package platformconfig

// BusCapability is a satellite's physical slew envelope. The fields named
// in AdminOnlyParams may never be set via mission input unless the caller
// explicitly passes allow_bus_override.
type BusCapability struct {
	MaxRollDeg            float64 `yaml:"max_roll_deg"`
	MaxRollRateDPS        float64 `yaml:"max_roll_rate_dps"`
	MaxRollAccelDPS2      float64 `yaml:"max_roll_accel_dps2"`
	MaxPitchDeg           float64 `yaml:"max_pitch_deg,omitempty"`
	MaxPitchRateDPS       float64 `yaml:"max_pitch_rate_dps,omitempty"`
	MaxPitchAccelDPS2     float64 `yaml:"max_pitch_accel_dps2,omitempty"`
	SettlingTimeS         float64 `yaml:"settling_time_s"`
	SensorFOVHalfAngleDeg float64 `yaml:"sensor_fov_half_angle_deg,omitempty"`
	SequentialSlew        bool    `yaml:"sequential_slew,omitempty"`
}

// HasPitch reports whether this bus supports a pitch axis at all; a
// bus without one degrades cleanly to roll-only.
func (b BusCapability) HasPitch() bool {
	return b.MaxPitchDeg > 0
}

// Modality is a satellite's imaging modality.
type Modality string

const (
	ModalityOptical Modality = "optical"
	ModalitySAR     Modality = "sar"
)

// Satellite is one entry of satellites.yaml (Satellite).
type Satellite struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	TLELine1 string        `yaml:"tle_line1"`
	TLELine2 string        `yaml:"tle_line2"`
	Modality Modality      `yaml:"modality"`
	Bus      BusCapability `yaml:"bus"`
}

// SatellitesDoc is the root of satellites.yaml.
type SatellitesDoc struct {
	SatelliteSettings map[string]any `yaml:"satellite_settings,omitempty"`
	Satellites        []Satellite    `yaml:"satellites"`
}

// IncidenceEnvelope bounds an SAR mode's usable incidence range.
type IncidenceEnvelope struct {
	AbsoluteMin    float64 `yaml:"absolute_min"`
	AbsoluteMax    float64 `yaml:"absolute_max"`
	RecommendedMin float64 `yaml:"recommended_min"`
	RecommendedMax float64 `yaml:"recommended_max"`
}

// SARMode is one entry of sar_modes.yaml.
type SARMode struct {
	Name                    string            `yaml:"name"`
	IncidenceAngle          IncidenceEnvelope `yaml:"incidence_angle"`
	OptimalIncidenceDeg     float64           `yaml:"optimal_incidence_deg"`
	BandWidthDeg            float64           `yaml:"band_width_deg"`
	SwathWidthKM            float64           `yaml:"swath_width_km"`
	SceneLengthKM           float64           `yaml:"scene_length_km"`
	SwathHalfAngleOffsetDeg float64           `yaml:"swath_half_angle_offset_deg"`
}

// SARModesDoc is the root of sar_modes.yaml.
type SARModesDoc struct {
	Modes map[string]SARMode `yaml:"modes"`
}

// GroundStation is one entry of ground_stations.yaml. Not consumed by the
// scheduling kernel directly; carried for admin-document completeness
// and config_hash coverage, since the hash is over all normalized
// admin documents.
type GroundStation struct {
	ID               string  `yaml:"id"`
	Name             string  `yaml:"name"`
	LatitudeDeg      float64 `yaml:"latitude_deg"`
	LongitudeDeg     float64 `yaml:"longitude_deg"`
	ElevationMaskDeg float64 `yaml:"elevation_mask_deg"`
}

// GroundStationsDoc is the root of ground_stations.yaml.
type GroundStationsDoc struct {
	Stations []GroundStation `yaml:"stations"`
}

// WeightPreset is one named composite-value weight vector.
type WeightPreset struct {
	Priority float64 `yaml:"priority"`
	Quality  float64 `yaml:"quality"`
	Timing   float64 `yaml:"timing"`
}

// MissionSettingsDoc is the root of mission_settings.yaml: cross-cutting
// defaults that are not satellite- or mode-specific.
type MissionSettingsDoc struct {
	AllowBusOverrideDefault bool                    `yaml:"allow_bus_override_default"`
	ClampOnWarningDefault   bool                    `yaml:"clamp_on_warning_default"`
	MaxWindowDays           int                     `yaml:"max_window_days"`
	ElevationMaskDeg        float64                 `yaml:"elevation_mask_deg"`
	ImagingTimeS            float64                 `yaml:"imaging_time_s"`
	OverlapThresholdS       float64                 `yaml:"overlap_threshold_s"`
	FeasibilityToleranceS   float64                 `yaml:"feasibility_tolerance_s"`
	WeightPresets           map[string]WeightPreset `yaml:"weight_presets"`
}

// BatchPolicy is one named repair/batch planning policy.
type BatchPolicy struct {
	Name         string `yaml:"name"`
	LockPolicy   string `yaml:"lock_policy"` // hard_only | hard_and_soft | all
	Objective    string `yaml:"objective"` // maximize_value | minimize_changes | maximize_coverage
	MaxChanges   int    `yaml:"max_changes"`
	PlanningMode string `yaml:"planning_mode"` // from_scratch | incremental
}

// BatchPoliciesDoc is the root of batch_policies.yaml.
type BatchPoliciesDoc struct {
	Policies map[string]BatchPolicy `yaml:"policies"`
}

// AdminOnlyParams is the governance set of bus parameters: mission
// input may never set these without allow_bus_override.
var AdminOnlyParams = map[string]struct{}{
	"max_roll_rate_dps": {},
	"max_roll_accel_dps2": {},
	"max_pitch_rate_dps": {},
	"max_pitch_accel_dps2": {},
	"settling_time_s": {},
	"sensor_fov_half_angle_deg": {},
}

// IsAdminOnly reports whether field is in the admin-only governance set.
func IsAdminOnly(field string) bool {
	_, ok := AdminOnlyParams[field]
	return ok
}

// Document bundles all five admin documents plus derived metadata —
// the in-memory "platform truth" snapshot every resolver and scheduler
// call consults.
type Document struct {
	Satellites      SatellitesDoc
	SARModes        SARModesDoc
	GroundStations  GroundStationsDoc
	MissionSettings MissionSettingsDoc
	BatchPolicies   BatchPoliciesDoc

	ConfigHash string
}

// SatelliteByID looks up a satellite by id, or (nil, false).
func (d *Document) SatelliteByID(id string) (*Satellite, bool) {
	for i := range d.Satellites.Satellites {
		if d.Satellites.Satellites[i].ID == id {
			return &d.Satellites.Satellites[i], true
		}
	}
	return nil, false
}

// SARModeByName looks up a SAR mode by name, or (nil, false).
func (d *Document) SARModeByName(name string) (*SARMode, bool) {
	if d.SARModes.Modes == nil {
		return nil, false
	}
	m, ok := d.SARModes.Modes[name]
	if !ok {
		return nil, false
	}
	return &m, true
}

// Clone returns a deep-enough copy for the RWMutexManager snapshot
// contract: readers that hold a *Document never observe a mutation made
// by a concurrent Reload.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		ConfigHash: d.ConfigHash,
		MissionSettings: d.MissionSettings,
	}
	out.Satellites.Satellites = append([]Satellite(nil), d.Satellites.Satellites...)
	out.Satellites.SatelliteSettings = cloneAnyMap(d.Satellites.SatelliteSettings)
	out.SARModes.Modes = make(map[string]SARMode, len(d.SARModes.Modes))
	for k, v := range d.SARModes.Modes {
		out.SARModes.Modes[k] = v
	}
	out.GroundStations.Stations = append([]GroundStation(nil), d.GroundStations.Stations...)
	out.MissionSettings.WeightPresets = make(map[string]WeightPreset, len(d.MissionSettings.WeightPresets))
	for k, v := range d.MissionSettings.WeightPresets {
		out.MissionSettings.WeightPresets[k] = v
	}
	out.BatchPolicies.Policies = make(map[string]BatchPolicy, len(d.BatchPolicies.Policies))
	for k, v := range d.BatchPolicies.Policies {
		out.BatchPolicies.Policies[k] = v
	}
	return out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
