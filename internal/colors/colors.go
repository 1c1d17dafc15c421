// Package colors implements the satellite color palette contract consumed
// by the (out of scope) visualization collaborator: eight hand-picked
// colorblind-safe colors indexed by satellite position, extended
// algorithmically beyond eight via golden-angle hue stepping. Ported
// byte-for-byte from original_source's constants/colors module — the
// spec (§6) pins this exact index-to-color mapping as an external contract,
// so the values themselves are not ours to change.
package colors

import (
	"fmt"
	"math"
	"strconv"
)

// BasePalette holds the eight hand-picked colorblind-safe entries, in
// index order.
var BasePalette = []string{
	"#56B4E9", // Sky Blue
	"#E69F00", // Orange
	"#CC79A7", // Rose/Pink
	"#009E73", // Teal/Green
	"#F5C242", // Amber/Gold
	"#0072B2", // Deep Blue
	"#D55E00", // Vermillion
	"#999999", // Gray
}

const (
	goldenAngleDeg = 137.508
	extendedHueDeg = 200
)

// ByIndex returns the hex color for the given 0-based satellite index:
// one of the eight base entries, or an algorithmically generated color
// beyond that via golden-angle HSL stepping.
func ByIndex(index int) string {
	if index >= 0 && index < len(BasePalette) {
		return BasePalette[index]
	}
	return generateHex(index - len(BasePalette))
}

// Palette returns n colors in index order, reusing ByIndex.
func Palette(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ByIndex(i)
	}
	return out
}

func generateHex(extIndex int) string {
	h, s, l := extendedHSL(extIndex)
	r, g, b := hslToRGB(h, s, l)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func extendedHSL(extIndex int) (hue, saturation, lightness float64) {
	hue = math.Mod(extendedHueDeg+float64(extIndex)*goldenAngleDeg, 360)
	if hue < 0 {
		hue += 360
	}
	saturation = 65 + float64(mod(extIndex, 3))*10
	lightness = 55 + float64(mod(extIndex, 2))*10
	return hue, saturation, lightness
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// hslToRGB matches original_source's _hsl_to_rgb: h in [0,360), s and l in
// [0,100].
func hslToRGB(h, s, l float64) (r, g, b int) {
	s /= 100
	l /= 100
	a := s * math.Min(l, 1-l)
	f := func(n float64) int {
		k := math.Mod(n+h/30, 12)
		color := l - a*math.Max(math.Min(math.Min(k-3, 9-k), 1), -1)
		return int(math.Round(255 * color))
	}
	return f(0), f(8), f(4)
}

// RGBA returns the RGBA quadruple (0-255 per channel, alpha fixed at 255
// for an opaque color) for the given hex color, for callers that need the
// CZML-style array representation instead of a hex string.
func RGBA(hex string) [4]int {
	h := hex
	if len(h) > 0 && h[0] == '#' {
		h = h[1:]
	}
	r, _ := strconv.ParseUint(h[0:2], 16, 8)
	g, _ := strconv.ParseUint(h[2:4], 16, 8)
	b, _ := strconv.ParseUint(h[4:6], 16, 8)
	return [4]int{int(r), int(g), int(b), 255}
}
