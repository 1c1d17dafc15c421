package platformconfig

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputeHash derives config_hash: a 16-hex-character SHA-256 prefix over a
// normalized, order-independent rendering of the five admin documents.
// Two documents containing the same entries in different file or
// map-iteration order must hash identically, so every collection is
// sorted by its natural key before being folded into the digest.
func ComputeHash(d *Document) string {
	var b strings.Builder

	sats := append([]Satellite(nil), d.Satellites.Satellites...)
	sort.Slice(sats, func(i, j int) bool { return sats[i].ID < sats[j].ID })
	for _, s := range sats {
		fmt.Fprintf(&b, "sat|%s|%s|%s|%s|%s|%.6f|%.6f|%.6f|%.6f|%.6f|%.6f|%.6f|%v\n",
			s.ID, s.Name, s.TLELine1, s.TLELine2, s.Modality,
			s.Bus.MaxRollDeg, s.Bus.MaxRollRateDPS, s.Bus.MaxRollAccelDPS2,
			s.Bus.MaxPitchDeg, s.Bus.MaxPitchRateDPS, s.Bus.MaxPitchAccelDPS2,
			s.Bus.SettlingTimeS, s.Bus.SequentialSlew)
	}

	modeNames := make([]string, 0, len(d.SARModes.Modes))
	for name := range d.SARModes.Modes {
		modeNames = append(modeNames, name)
	}
	sort.Strings(modeNames)
	for _, name := range modeNames {
		m := d.SARModes.Modes[name]
		fmt.Fprintf(&b, "sarmode|%s|%.6f|%.6f|%.6f|%.6f|%.6f|%.6f|%.6f|%.6f\n",
			name, m.IncidenceAngle.AbsoluteMin, m.IncidenceAngle.AbsoluteMax,
			m.IncidenceAngle.RecommendedMin, m.IncidenceAngle.RecommendedMax,
			m.OptimalIncidenceDeg, m.SwathWidthKM, m.SceneLengthKM, m.SwathHalfAngleOffsetDeg)
	}

	stations := append([]GroundStation(nil), d.GroundStations.Stations...)
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	for _, gs := range stations {
		fmt.Fprintf(&b, "gs|%s|%s|%.6f|%.6f|%.6f\n",
			gs.ID, gs.Name, gs.LatitudeDeg, gs.LongitudeDeg, gs.ElevationMaskDeg)
	}

	presetNames := make([]string, 0, len(d.MissionSettings.WeightPresets))
	for name := range d.MissionSettings.WeightPresets {
		presetNames = append(presetNames, name)
	}
	sort.Strings(presetNames)
	for _, name := range presetNames {
		w := d.MissionSettings.WeightPresets[name]
		fmt.Fprintf(&b, "preset|%s|%.6f|%.6f|%.6f\n", name, w.Priority, w.Quality, w.Timing)
	}
	fmt.Fprintf(&b, "settings|%v|%v|%d|%.6f|%.6f|%.6f|%.6f\n",
		d.MissionSettings.AllowBusOverrideDefault, d.MissionSettings.ClampOnWarningDefault,
		d.MissionSettings.MaxWindowDays, d.MissionSettings.ElevationMaskDeg,
		d.MissionSettings.ImagingTimeS, d.MissionSettings.OverlapThresholdS,
		d.MissionSettings.FeasibilityToleranceS)

	policyNames := make([]string, 0, len(d.BatchPolicies.Policies))
	for name := range d.BatchPolicies.Policies {
		policyNames = append(policyNames, name)
	}
	sort.Strings(policyNames)
	for _, name := range policyNames {
		p := d.BatchPolicies.Policies[name]
		fmt.Fprintf(&b, "policy|%s|%s|%s|%d|%s\n", name, p.LockPolicy, p.Objective, p.MaxChanges, p.PlanningMode)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}
