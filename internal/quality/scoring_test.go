package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Off(t *testing.T) {
	assert.Equal(t, 1.0, Score(37, ModelOff, 35, 5))
}

func TestScore_Monotonic(t *testing.T) {
	got := Score(-10, ModelMonotonic, 0, 0)
	want := math.Exp(-0.02 * 10)
	assert.InDelta(t, want, got, 1e-9)
}

func TestScore_Band_PeaksAtIdeal(t *testing.T) {
	atIdeal := Score(35, ModelBand, 35, 5)
	offIdeal := Score(45, ModelBand, 35, 5)
	assert.InDelta(t, 1.0, atIdeal, 1e-9)
	assert.Less(t, offIdeal, atIdeal)
}

func TestCompositeValue_NormalizesWeights(t *testing.T) {
	a := CompositeValue(1, 1.0, 1.0, Weights{Priority: 1, Quality: 1, Timing: 1})
	b := CompositeValue(1, 1.0, 1.0, Weights{Priority: 10, Quality: 10, Timing: 10})
	assert.InDelta(t, a, b, 1e-9)
	assert.InDelta(t, 1.0, a, 1e-9)
}

func TestCompositeValue_PriorityDirection(t *testing.T) {
	high := CompositeValue(1, 0, 0, Weights{Priority: 1})
	low := CompositeValue(5, 0, 0, Weights{Priority: 1})
	assert.Greater(t, high, low)
	assert.InDelta(t, 0.0, low, 1e-9)
}

func TestTimingScore(t *testing.T) {
	assert.Equal(t, 1.0, TimingScore(0, 1))
	assert.Equal(t, 1.0, TimingScore(0, 5))
	assert.InDelta(t, 0.0, TimingScore(4, 5), 1e-9)
	assert.InDelta(t, 0.5, TimingScore(2, 5), 1e-9)
}

func TestPresets_NamedAndValid(t *testing.T) {
	for name, w := range Presets {
		sum := w.Priority + w.Quality + w.Timing
		assert.Greater(t, sum, 0.0, "preset %s", name)
	}
	_, ok := Presets["balanced"]
	assert.True(t, ok)
}
