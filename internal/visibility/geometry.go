package visibility

import (
	"math"

	"github.com/spacereach/tasking-core/internal/orbit"
)

const earthRadiusKM = 6378.137

// geodeticToECEF converts a target's lat/lon (assumed at sea level) to an
// ECEF position on the reference sphere.
func geodeticToECEF(latDeg, lonDeg float64) orbit.Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	return orbit.Vec3{
		X: earthRadiusKM * math.Cos(lat) * math.Cos(lon),
		Y: earthRadiusKM * math.Cos(lat) * math.Sin(lon),
		Z: earthRadiusKM * math.Sin(lat),
	}
}

// elevationAzimuth computes the target's elevation and azimuth as seen
// from the satellite's ECEF position, local to the sub-satellite point's
// east-north-up frame anchored at the target.
func elevationAzimuth(satECEF orbit.Vec3, target Target) (elevationDeg, azimuthDeg float64) {
	targetECEF := geodeticToECEF(target.LatDeg, target.LonDeg)
	lat := target.LatDeg * math.Pi / 180
	lon := target.LonDeg * math.Pi / 180

	up := orbit.Vec3{X: math.Cos(lat) * math.Cos(lon), Y: math.Cos(lat) * math.Sin(lon), Z: math.Sin(lat)}
	east := orbit.Vec3{X: -math.Sin(lon), Y: math.Cos(lon), Z: 0}
	north := up.Cross(east)

	los := satECEF.Sub(targetECEF)
	r := los.Norm()
	if r == 0 {
		return 90, 0
	}
	losUnit := los.Scale(1 / r)

	sinEl := losUnit.Dot(up)
	el := math.Asin(clamp(sinEl, -1, 1)) * 180 / math.Pi

	e := losUnit.Dot(east)
	n := losUnit.Dot(north)
	az := math.Atan2(e, n) * 180 / math.Pi
	if az < 0 {
		az += 360
	}

	return el, az
}

// incidenceAngle is the angle between satellite nadir and the
// satellite-to-target line of sight, evaluated at max_elevation_time.
func incidenceAngle(satECEF, targetECEF orbit.Vec3) float64 {
	nadir := satECEF.Scale(-1).Unit()
	los := targetECEF.Sub(satECEF).Unit()
	cosAngle := clamp(nadir.Dot(los), -1, 1)
	return math.Acos(cosAngle) * 180 / math.Pi
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
