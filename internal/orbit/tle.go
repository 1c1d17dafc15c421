package orbit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// meanElements holds the classical orbital elements parsed from a TLE
// pair, plus the epoch they're valid at. Field names follow NORAD TLE
// terminology, the authoritative naming for this parsing boundary.
type meanElements struct {
	epoch               time.Time
	inclinationRad      float64
	raanRad             float64
	eccentricity        float64
	argPerigeeRad       float64
	meanAnomalyRad      float64
	meanMotionRadPerMin float64
	semiMajorAxisKM     float64
}

// parseTLE extracts the handful of fixed-column fields the propagator
// needs from a standard two-line element set. Checksums and the
// mean-motion derivative terms are intentionally not modeled (no drag
// perturbation in this simplified propagator).
func parseTLE(line1, line2 string) (meanElements, error) {
	line1 = strings.TrimRight(line1, "\r\n")
	line2 = strings.TrimRight(line2, "\r\n")
	if len(line1) < 69 || len(line2) < 69 {
		return meanElements{}, fmt.Errorf("tle lines too short")
	}
	if line1[0] != '1' || line2[0] != '2' {
		return meanElements{}, fmt.Errorf("tle line prefixes invalid")
	}

	epochYY, err := strconv.Atoi(strings.TrimSpace(line1[18:20]))
	if err != nil {
		return meanElements{}, fmt.Errorf("epoch year: %w", err)
	}
	epochDay, err := strconv.ParseFloat(strings.TrimSpace(line1[20:32]), 64)
	if err != nil {
		return meanElements{}, fmt.Errorf("epoch day: %w", err)
	}
	year := 2000 + epochYY
	if epochYY >= 57 {
		year = 1900 + epochYY
	}
	epoch := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration((epochDay - 1) * float64(24*time.Hour)))

	inclDeg, err := strconv.ParseFloat(strings.TrimSpace(line2[8:16]), 64)
	if err != nil {
		return meanElements{}, fmt.Errorf("inclination: %w", err)
	}
	raanDeg, err := strconv.ParseFloat(strings.TrimSpace(line2[17:25]), 64)
	if err != nil {
		return meanElements{}, fmt.Errorf("raan: %w", err)
	}
	eccStr := strings.TrimSpace(line2[26:33])
	ecc, err := strconv.ParseFloat("0."+eccStr, 64)
	if err != nil {
		return meanElements{}, fmt.Errorf("eccentricity: %w", err)
	}
	argPerigeeDeg, err := strconv.ParseFloat(strings.TrimSpace(line2[34:42]), 64)
	if err != nil {
		return meanElements{}, fmt.Errorf("argument of perigee: %w", err)
	}
	meanAnomDeg, err := strconv.ParseFloat(strings.TrimSpace(line2[43:51]), 64)
	if err != nil {
		return meanElements{}, fmt.Errorf("mean anomaly: %w", err)
	}
	meanMotionRevDay, err := strconv.ParseFloat(strings.TrimSpace(line2[52:63]), 64)
	if err != nil {
		return meanElements{}, fmt.Errorf("mean motion: %w", err)
	}
	if meanMotionRevDay <= 0 {
		return meanElements{}, fmt.Errorf("mean motion must be positive")
	}
	if ecc < 0 || ecc >= 1 {
		return meanElements{}, fmt.Errorf("eccentricity out of range: %v", ecc)
	}

	nRadPerMin := meanMotionRevDay * 2 * math.Pi / 1440.0
	a := math.Cbrt(muEarth / (nRadPerMin / 60 * nRadPerMin / 60))

	return meanElements{
		epoch: epoch,
		inclinationRad: inclDeg * math.Pi / 180,
		raanRad: raanDeg * math.Pi / 180,
		eccentricity: ecc,
		argPerigeeRad: argPerigeeDeg * math.Pi / 180,
		meanAnomalyRad: meanAnomDeg * math.Pi / 180,
		meanMotionRadPerMin: nRadPerMin,
		semiMajorAxisKM: a,
	}, nil
}

// eciStateAt integrates the mean anomaly forward to t and returns the
// resulting position and velocity in the Earth-centered inertial frame.
func (el meanElements) eciStateAt(t time.Time) (Vec3, Vec3, error) {
	dtMin := t.Sub(el.epoch).Minutes()
	m := math.Mod(el.meanAnomalyRad+el.meanMotionRadPerMin*dtMin, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}

	e, err := solveKepler(m, el.eccentricity)
	if err != nil {
		return Vec3{}, Vec3{}, fmt.Errorf("%w: %v", ErrInvalidEphemeris, err)
	}

	cosE, sinE := math.Cos(e), math.Sin(e)
	a := el.semiMajorAxisKM
	ecc := el.eccentricity

	// Perifocal-frame position and velocity.
	xPF := a * (cosE - ecc)
	yPF := a * math.Sqrt(1-ecc*ecc) * sinE
	r := a * (1 - ecc*cosE)

	nRadPerSec := el.meanMotionRadPerMin / 60
	vxPF := -a * nRadPerSec * sinE / (1 - ecc*cosE)
	vyPF := a * nRadPerSec * math.Sqrt(1-ecc*ecc) * cosE / (1 - ecc*cosE)

	pos := rotatePerifocalToECI(xPF, yPF, el.argPerigeeRad, el.inclinationRad, el.raanRad)
	vel := rotatePerifocalToECI(vxPF, vyPF, el.argPerigeeRad, el.inclinationRad, el.raanRad)

	_ = r
	return pos, vel, nil
}

// solveKepler solves M = E - e*sin(E) for E via Newton-Raphson, which
// converges in a handful of iterations for the eccentricities TLEs
// describe (e < 1).
func solveKepler(m, e float64) (float64, error) {
	E := m
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < 50; i++ {
		f := E - e*math.Sin(E) - m
		fPrime := 1 - e*math.Cos(E)
		if fPrime == 0 {
			return 0, fmt.Errorf("kepler solver: zero derivative")
		}
		delta := f / fPrime
		E -= delta
		if math.Abs(delta) < 1e-12 {
			return E, nil
		}
	}
	return 0, fmt.Errorf("kepler solver: did not converge")
}

// rotatePerifocalToECI applies the 3-1-3 Euler rotation (argument of
// perigee, inclination, RAAN) that takes a perifocal-plane coordinate to
// the Earth-centered inertial frame.
func rotatePerifocalToECI(x, y, argPerigee, incl, raan float64) Vec3 {
	cosW, sinW := math.Cos(argPerigee), math.Sin(argPerigee)
	cosI, sinI := math.Cos(incl), math.Sin(incl)
	cosO, sinO := math.Cos(raan), math.Sin(raan)

	r11 := cosO*cosW - sinO*sinW*cosI
	r12 := -cosO*sinW - sinO*cosW*cosI
	r21 := sinO*cosW + cosO*sinW*cosI
	r22 := -sinO*sinW + cosO*cosW*cosI
	r31 := sinW * sinI
	r32 := cosW * sinI

	return Vec3{
		X: r11*x + r12*y,
		Y: r21*x + r22*y,
		Z: r31*x + r32*y,
	}
}
