package enhancement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

func TestSNRKnownValue(t *testing.T) {
	snr, err := ComputeSNR([]float64{1, 1}, []float64{1.1, 0.9})
	require.NoError(t, err)
	assert.False(t, snr.Unbounded)
	assert.InDelta(t, 20.0, snr.DB, 1e-9)
	assert.Equal(t, "20.00 dB", snr.String())
}

func TestSNRIdenticalSignalsIsUnbounded(t *testing.T) {
	x := []float64{0.5, -0.25, 0.125}
	snr, err := ComputeSNR(x, x)
	require.NoError(t, err)
	assert.True(t, snr.Unbounded)
	assert.True(t, math.IsInf(snr.DB, 1))
	assert.Equal(t, "+inf dB", snr.String())
}

func TestSNRSilentReference(t *testing.T) {
	snr, err := ComputeSNR([]float64{0, 0}, []float64{0.1, 0})
	require.NoError(t, err)
	assert.True(t, snr.Unbounded)
	assert.True(t, math.IsInf(snr.DB, -1))
}

func TestSNRRejectsMismatchedLengths(t *testing.T) {
	_, err := ComputeSNR([]float64{1, 2, 3}, []float64{1, 2})
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = ComputeSNR(nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestTruncate(t *testing.T) {
	a, b := Truncate([]float64{1, 2, 3}, []float64{4, 5})
	assert.Equal(t, []float64{1, 2}, a)
	assert.Equal(t, []float64{4, 5}, b)
}

func TestImprovement(t *testing.T) {
	assert.InDelta(t, 3.5, Improvement(SNR{DB: 5}, SNR{DB: 8.5}), 1e-12)

	inf := SNR{DB: math.Inf(1), Unbounded: true}
	assert.Zero(t, Improvement(inf, inf))
	assert.True(t, math.IsInf(Improvement(SNR{DB: 5}, inf), 1))
}
