package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

func TestPreEmphasisApply(t *testing.T) {
	pe, err := NewPreEmphasis(DefaultPreEmphasis)
	require.NoError(t, err)

	out := pe.Apply([]float64{1, 1, 2, 0})
	want := []float64{1, 1 - 0.97, 2 - 0.97, -1.94}
	assert.InDeltaSlice(t, want, out, 1e-12)

	// Apply starts from a clean state every time
	assert.InDeltaSlice(t, want, pe.Apply([]float64{1, 1, 2, 0}), 1e-12)
}

func TestPreEmphasisDisabled(t *testing.T) {
	pe, err := NewPreEmphasis(0)
	require.NoError(t, err)
	assert.False(t, pe.Enabled())

	in := []float64{0.3, -0.2, 0.9}
	assert.Equal(t, in, pe.Apply(in))
}

func TestPreEmphasisValidation(t *testing.T) {
	for _, c := range []float64{-0.1, 1, 1.5} {
		_, err := NewPreEmphasis(c)
		assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
	}
}

func TestPreEmphasisFrequencyResponse(t *testing.T) {
	pe, err := NewPreEmphasis(0.97)
	require.NoError(t, err)

	dc, _ := pe.FrequencyResponse(0, 16000)
	nyquist, _ := pe.FrequencyResponse(8000, 16000)
	assert.InDelta(t, 0.03, dc, 1e-12)
	assert.InDelta(t, 1.97, nyquist, 1e-12)
}
