package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

func TestNewSignalValidates(t *testing.T) {
	_, err := NewSignal(nil, 16000)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = NewSignal([]float64{1}, 0)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestSignalIsImmutableCopy(t *testing.T) {
	in := []float64{0.1, -0.4, 0.3, 0.0}
	sig, err := NewSignal(in, 4)
	require.NoError(t, err)

	in[0] = 99
	assert.Equal(t, 0.1, sig.Samples()[0])

	doubled, err := sig.Map(func(x []float64) []float64 {
		for i := range x {
			x[i] *= 2
		}
		return x
	})
	require.NoError(t, err)
	assert.Equal(t, 0.2, doubled.Samples()[0])
	assert.Equal(t, 0.1, sig.Samples()[0])
}

func TestSignalInfo(t *testing.T) {
	sig, err := NewSignal([]float64{0.1, -0.4, 0.3, 0.0}, 2)
	require.NoError(t, err)

	info := sig.Info()
	assert.Equal(t, 4, info.NumSamples)
	assert.Equal(t, 2*time.Second, info.Duration)
	assert.Equal(t, 0.3, info.MaxAmplitude)
	assert.Equal(t, -0.4, info.MinAmplitude)
	assert.InDelta(t, 2.0, sig.Seconds(), 1e-12)

	assert.Equal(t, 2, sig.Truncate(2).Len())
	assert.Same(t, sig, sig.Truncate(10))
}

func TestSignalNeverEmpty(t *testing.T) {
	sig, err := NewSignal([]float64{0.5, -0.25, 0.1}, 8)
	require.NoError(t, err)

	for _, n := range []int{0, -3} {
		short := sig.Truncate(n)
		assert.Equal(t, 1, short.Len())
		assert.Equal(t, 0.5, short.Info().MaxAmplitude)
	}

	_, err = sig.Map(func(x []float64) []float64 { return x[:0] })
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}
