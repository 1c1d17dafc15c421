package harness

import (
	"sort"

	"github.com/spacereach/tasking-core/internal/platformconfig"
	"github.com/spacereach/tasking-core/internal/quality"
	"github.com/spacereach/tasking-core/internal/sar"
	"github.com/spacereach/tasking-core/internal/scheduler"
	"github.com/spacereach/tasking-core/internal/visibility"
)

// fallbackSARBandWidthDeg and fallbackSARSwathKM parameterize a synthetic
// SAR mode when a scenario runs without a platform config document, so a
// self-contained SAR scenario still scores and filters deterministically.
const (
	fallbackSAROptimalIncidenceDeg = 35.0
	fallbackSARBandWidthDeg        = 15.0
	fallbackSARSwathKM             = 30.0
	fallbackSARSceneLengthKM       = 25.0
)

// sarModeFor resolves the governing SAR mode: the admin document's named
// mode when available, else a synthesized envelope centered on the
// scenario's own incidence bounds.
func sarModeFor(doc *platformconfig.Document, sc Scenario) platformconfig.SARMode {
	if doc != nil && sc.SAR != nil {
		if m, ok := doc.SARModeByName(sc.SAR.ImagingMode); ok {
			return *m
		}
	}
	ideal := fallbackSAROptimalIncidenceDeg
	band := fallbackSARBandWidthDeg
	if sc.SAR != nil && sc.SAR.IncidenceMinDeg != nil && sc.SAR.IncidenceMaxDeg != nil {
		ideal = (*sc.SAR.IncidenceMinDeg + *sc.SAR.IncidenceMaxDeg) / 2
		band = (*sc.SAR.IncidenceMaxDeg - *sc.SAR.IncidenceMinDeg) / 2
	}
	return platformconfig.SARMode{
		OptimalIncidenceDeg:     ideal,
		BandWidthDeg:            band,
		SwathWidthKM:            fallbackSARSwathKM,
		SceneLengthKM:           fallbackSARSceneLengthKM,
		SwathHalfAngleOffsetDeg: 2.5,
	}
}

// weightsFor resolves the composite-value weight vector: the admin
// document's "balanced" preset when available, else quality.Presets'
// own balanced entry.
func weightsFor(doc *platformconfig.Document) quality.Weights {
	if doc != nil {
		if w, ok := doc.MissionSettings.WeightPresets["balanced"]; ok {
			return quality.Weights{Priority: w.Priority, Quality: w.Quality, Timing: w.Timing}
		}
	}
	return quality.Presets["balanced"]
}

// buildOpportunities turns raw visibility pass windows into priced,
// mode-filtered scheduler.Opportunity candidates: SAR passes get look
// side / pass direction / incidence filtering via sar.Accept, optical
// passes are accepted outright with roll angle signed the same way SAR
// derives look side. Every accepted window within a (satellite, target)
// pair is timing-scored by its rank among that pair's own accepted
// windows, ordered by start time — the scheduling horizon's natural
// per-target ranking.
func buildOpportunities(sc Scenario, windows map[string][]visibility.PassWindow, satByID map[string]ScenarioSatellite, targetByID map[string]ScenarioTarget, doc *platformconfig.Document) []scheduler.Opportunity {
	weights := weightsFor(doc)
	isSAR := sc.MissionMode == "SAR"
	var mode platformconfig.SARMode
	var acceptReq sar.AcceptRequest
	if isSAR {
		mode = sarModeFor(doc, sc)
		acceptReq = sarAcceptRequest(sc)
	}

	type keyed struct {
		key string
		win visibility.PassWindow
		opp scheduler.Opportunity
	}
	var built []keyed

	for key, ws := range windows {
		visibility.SortWindows(ws)
		for _, w := range ws {
			target := targetByID[w.TargetID]

			var rollDeg float64
			var lookSide, passDir string
			var incidenceDeg float64
			var qualityScore float64

			if isSAR {
				geo := sar.Derive(w.SatECEF, w.VelECEF, w.TargetECEF, mode)
				if !sar.Accept(geo, acceptReq) {
					continue
				}
				incidenceDeg = geo.IncidenceCenterDeg
				lookSide = string(geo.LookSide)
				passDir = string(geo.PassDirection)
				qualityScore = geo.Quality
				rollDeg = signedRoll(geo.LookSide, incidenceDeg)
			} else {
				side := sar.Side(w.SatECEF, w.VelECEF, w.TargetECEF)
				incidenceDeg = w.IncidenceAngleDeg
				lookSide = string(side)
				passDir = string(sar.Direction(w.SatECEF, w.VelECEF))
				qualityScore = quality.Score(incidenceDeg, quality.ModelMonotonic, 0, 0)
				rollDeg = signedRoll(side, incidenceDeg)
			}

			opp := scheduler.Opportunity{
				ID:                w.SatelliteID + "|" + w.TargetID + "|" + w.Start.UTC().Format("20060102T150405Z"),
				SatelliteID:       w.SatelliteID,
				TargetID:          w.TargetID,
				StartTime:         w.Start,
				EndTime:           w.End,
				MaxElevationTime:  w.MaxElevationTime,
				MaxElevation:      w.MaxElevationDeg,
				IncidenceAngleDeg: incidenceDeg,
				Priority:          target.Priority,
				QualityScore:      qualityScore,
				LookSide:          lookSide,
				PassDirection:     passDir,
				RollAngleDeg:      rollDeg,
			}
			built = append(built, keyed{key: key, win: w, opp: opp})
		}
	}

	byKey := make(map[string][]int)
	for i, k := range built {
		byKey[k.key] = append(byKey[k.key], i)
	}
	for _, idxs := range byKey {
		sort.Slice(idxs, func(i, j int) bool { return built[idxs[i]].win.Start.Before(built[idxs[j]].win.Start) })
		n := len(idxs)
		for rank, idx := range idxs {
			timing := quality.TimingScore(rank, n)
			o := &built[idx].opp
			o.Value = quality.CompositeValue(o.Priority, o.QualityScore, timing, weights)
		}
	}

	out := make([]scheduler.Opportunity, 0, len(built))
	for _, k := range built {
		out = append(out, k.opp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SatelliteID != out[j].SatelliteID {
			return out[i].SatelliteID < out[j].SatelliteID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// signedRoll folds look side into a signed roll angle: RIGHT is positive,
// LEFT negative, matching the bus's roll-axis sign convention.
func signedRoll(side sar.LookSide, incidenceDeg float64) float64 {
	if side == sar.Left {
		return -incidenceDeg
	}
	return incidenceDeg
}

func sarAcceptRequest(sc Scenario) sar.AcceptRequest {
	req := sar.AcceptRequest{IncidenceMinDeg: 0, IncidenceMaxDeg: 90, LookSide: sar.Any, AnyDirection: true}
	if sc.SAR == nil {
		return req
	}
	if sc.SAR.IncidenceMinDeg != nil {
		req.IncidenceMinDeg = *sc.SAR.IncidenceMinDeg
	}
	if sc.SAR.IncidenceMaxDeg != nil {
		req.IncidenceMaxDeg = *sc.SAR.IncidenceMaxDeg
	}
	switch sc.SAR.LookSide {
	case "LEFT":
		req.LookSide = sar.Left
	case "RIGHT":
		req.LookSide = sar.Right
	default:
		req.LookSide = sar.Any
	}
	switch sc.SAR.PassDirection {
	case "ASCENDING":
		req.PassDirection = sar.Ascending
		req.AnyDirection = false
	case "DESCENDING":
		req.PassDirection = sar.Descending
		req.AnyDirection = false
	default:
		req.AnyDirection = true
	}
	return req
}
