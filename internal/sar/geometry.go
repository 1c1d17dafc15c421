// Package sar derives SAR pass geometry: pass direction, look side,
// incidence angle, and swath polygon derivation for a base visibility
// pass, plus the mode-envelope accept/reject filter.
//
// Small pure-function file, no shared state; all geometry here operates
// on orbit.Vec3 ECEF vectors supplied by the visibility engine, so this
// package has no propagator dependency of its own.
package sar

import (
	"math"

	"github.com/spacereach/tasking-core/internal/orbit"
	"github.com/spacereach/tasking-core/internal/platformconfig"
	"github.com/spacereach/tasking-core/internal/quality"
)

// PassDirection is the satellite's ground-track heading at closest
// approach.
type PassDirection string

const (
	Ascending  PassDirection = "ASCENDING"
	Descending PassDirection = "DESCENDING"
)

// LookSide is which side of the velocity vector the target lies on.
type LookSide string

const (
	Left  LookSide = "LEFT"
	Right LookSide = "RIGHT"
	Any   LookSide = "ANY"
)

// defaultSwathHalfAngleOffsetDeg is the admin-config default used
// when a mode document does not override it.
const defaultSwathHalfAngleOffsetDeg = 2.5

// Geometry is the full SAR-specific enrichment of one base pass, sampled
// at its max-elevation time.
type Geometry struct {
	PassDirection      PassDirection
	LookSide           LookSide
	IncidenceCenterDeg float64
	IncidenceNearDeg   float64
	IncidenceFarDeg    float64
	Quality            float64
	SwathCorners       [4]orbit.Vec3
}

// Direction decomposes the satellite's ECEF velocity into a local north
// component at the sub-satellite point. Positive north-going velocity is
// ASCENDING.
func Direction(satECEF, velECEF orbit.Vec3) PassDirection {
	up := satECEF.Unit()
	// Local north: projection of the geographic north pole direction onto
	// the tangent plane at the sub-satellite point.
	northPole := orbit.Vec3{Z: 1}
	northTangent := northPole.Sub(up.Scale(northPole.Dot(up))).Unit()
	if velECEF.Dot(northTangent) >= 0 {
		return Ascending
	}
	return Descending
}

// Side computes look side: sign of (v × r_sat_to_tgt) · r_radial.
func Side(satECEF, velECEF, targetECEF orbit.Vec3) LookSide {
	toTarget := targetECEF.Sub(satECEF)
	radial := satECEF.Unit()
	triple := velECEF.Cross(toTarget).Dot(radial)
	if triple >= 0 {
		return Right
	}
	return Left
}

// IncidenceCenterDeg is the angle between satellite nadir and the
// satellite-to-target line of sight.
func IncidenceCenterDeg(satECEF, targetECEF orbit.Vec3) float64 {
	nadir := satECEF.Scale(-1).Unit()
	los := targetECEF.Sub(satECEF).Unit()
	cosAngle := nadir.Dot(los)
	cosAngle = clamp(cosAngle, -1, 1)
	return math.Acos(cosAngle) * 180 / math.Pi
}

// NearFar returns the near/far incidence bounds given a swath half-angle
// offset (degrees); 0 defaults to the admin default of 2.5°.
func NearFar(centerDeg, swathHalfAngleOffsetDeg float64) (nearDeg, farDeg float64) {
	offset := swathHalfAngleOffsetDeg
	if offset == 0 {
		offset = defaultSwathHalfAngleOffsetDeg
	}
	return centerDeg - offset, centerDeg + offset
}

// SwathPolygon computes the four ECEF corners of the ground swath: a
// rectangle centered on the target, swathWidthKM wide cross-track and
// sceneLengthKM long along-track. The look side flips the cross-track axis,
// which changes which corner is labeled left or right, not the corner set.
func SwathPolygon(satECEF, velECEF, targetECEF orbit.Vec3, side LookSide, swathWidthKM, sceneLengthKM float64) [4]orbit.Vec3 {
	up := satECEF.Unit()
	alongTrack := velECEF.Sub(up.Scale(velECEF.Dot(up))).Unit()
	crossTrack := up.Cross(alongTrack).Unit()
	if side == Left {
		crossTrack = crossTrack.Scale(-1)
	}

	center := targetECEF
	halfWidth := swathWidthKM / 2
	halfLength := sceneLengthKM / 2

	nearLeft := center.Add(alongTrack.Scale(-halfLength)).Sub(crossTrack.Scale(halfWidth))
	nearRight := center.Add(alongTrack.Scale(-halfLength)).Add(crossTrack.Scale(halfWidth))
	farRight := center.Add(alongTrack.Scale(halfLength)).Add(crossTrack.Scale(halfWidth))
	farLeft := center.Add(alongTrack.Scale(halfLength)).Sub(crossTrack.Scale(halfWidth))

	return [4]orbit.Vec3{nearLeft, nearRight, farRight, farLeft}
}

// Derive computes the full Geometry enrichment for one pass given its
// state vectors at max-elevation time and the governing mode.
func Derive(satECEF, velECEF, targetECEF orbit.Vec3, mode platformconfig.SARMode) Geometry {
	center := IncidenceCenterDeg(satECEF, targetECEF)
	near, far := NearFar(center, mode.SwathHalfAngleOffsetDeg)
	side := Side(satECEF, velECEF, targetECEF)
	dir := Direction(satECEF, velECEF)
	q := quality.Score(center, quality.ModelBand, mode.OptimalIncidenceDeg, mode.BandWidthDeg)
	corners := SwathPolygon(satECEF, velECEF, targetECEF, side, mode.SwathWidthKM, mode.SceneLengthKM)

	return Geometry{
		PassDirection:      dir,
		LookSide:           side,
		IncidenceCenterDeg: center,
		IncidenceNearDeg:   near,
		IncidenceFarDeg:    far,
		Quality:            q,
		SwathCorners:       corners,
	}
}

// AcceptRequest is the requested SAR filter for one mission input.
type AcceptRequest struct {
	IncidenceMinDeg float64
	IncidenceMaxDeg float64
	LookSide        LookSide // Any matches both
	PassDirection   PassDirection
	AnyDirection    bool
}

// Accept applies the three-part accept rule: incidence within range,
// look side matches (or ANY), pass direction matches (or ANY).
func Accept(g Geometry, req AcceptRequest) bool {
	if g.IncidenceCenterDeg < req.IncidenceMinDeg || g.IncidenceCenterDeg > req.IncidenceMaxDeg {
		return false
	}
	if req.LookSide != Any && req.LookSide != g.LookSide {
		return false
	}
	if !req.AnyDirection && req.PassDirection != g.PassDirection {
		return false
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
