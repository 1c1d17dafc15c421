package sar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacereach/tasking-core/internal/orbit"
	"github.com/spacereach/tasking-core/internal/platformconfig"
)

func TestIncidenceCenterDeg_OverheadIsZero(t *testing.T) {
	sat := orbit.Vec3{X: 0, Y: 0, Z: 7000}
	target := orbit.Vec3{X: 0, Y: 0, Z: 6378}
	got := IncidenceCenterDeg(sat, target)
	assert.InDelta(t, 0, got, 1e-6)
}

func TestSide_LeftRightOpposite(t *testing.T) {
	sat := orbit.Vec3{X: 7000, Y: 0, Z: 0}
	vel := orbit.Vec3{X: 0, Y: 0, Z: 7.5}
	targetLeft := orbit.Vec3{X: 6378, Y: -100, Z: 0}
	targetRight := orbit.Vec3{X: 6378, Y: 100, Z: 0}

	left := Side(sat, vel, targetLeft)
	right := Side(sat, vel, targetRight)
	assert.NotEqual(t, left, right)
}

func TestNearFar_DefaultsOffset(t *testing.T) {
	near, far := NearFar(35, 0)
	assert.InDelta(t, 32.5, near, 1e-9)
	assert.InDelta(t, 37.5, far, 1e-9)
}

func TestAccept_IncidenceOutOfRange(t *testing.T) {
	g := Geometry{IncidenceCenterDeg: 50, LookSide: Left, PassDirection: Ascending}
	req := AcceptRequest{IncidenceMinDeg: 10, IncidenceMaxDeg: 40, LookSide: Any, AnyDirection: true}
	assert.False(t, Accept(g, req))
}

func TestAccept_LookSideMismatch(t *testing.T) {
	g := Geometry{IncidenceCenterDeg: 30, LookSide: Right, PassDirection: Ascending}
	req := AcceptRequest{IncidenceMinDeg: 10, IncidenceMaxDeg: 40, LookSide: Left, AnyDirection: true}
	assert.False(t, Accept(g, req))
}

func TestAccept_AllMatch(t *testing.T) {
	g := Geometry{IncidenceCenterDeg: 30, LookSide: Left, PassDirection: Descending}
	req := AcceptRequest{IncidenceMinDeg: 10, IncidenceMaxDeg: 40, LookSide: Left, PassDirection: Descending}
	assert.True(t, Accept(g, req))
}

func TestDerive_ProducesBandQualityAtOptimal(t *testing.T) {
	mode := platformconfig.SARMode{OptimalIncidenceDeg: 0, BandWidthDeg: 5, SwathWidthKM: 20, SceneLengthKM: 10}
	sat := orbit.Vec3{X: 0, Y: 0, Z: 7000}
	vel := orbit.Vec3{X: 7.5, Y: 0, Z: 0}
	target := orbit.Vec3{X: 0, Y: 0, Z: 6378}

	g := Derive(sat, vel, target, mode)
	assert.InDelta(t, 1.0, g.Quality, 1e-6)
	assert.Len(t, g.SwathCorners, 4)
}
