package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

func TestHammingSymmetry(t *testing.T) {
	for _, size := range []int{2, 3, 400, 401, 512} {
		w, err := NewHamming(size, true)
		require.NoError(t, err)

		c := w.GetCoefficients()
		require.Len(t, c, size)
		for i := range c {
			assert.InDelta(t, c[i], c[size-1-i], 1e-12, "size %d index %d", size, i)
		}
		assert.InDelta(t, 0.08, c[0], 1e-12)
		assert.InDelta(t, 0.08, c[size-1], 1e-12)
	}
}

func TestHammingMatchesFormula(t *testing.T) {
	w, err := NewHamming(5, true)
	require.NoError(t, err)

	want := []float64{0.08, 0.54, 1.0, 0.54, 0.08}
	for i, c := range w.GetCoefficients() {
		assert.InDelta(t, want[i], c, 1e-12)
	}
	assert.Equal(t, "hamming", w.GetType())
	assert.True(t, w.IsSymmetric())
}

func TestDegenerateLengthRejected(t *testing.T) {
	_, err := NewHamming(1, true)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = NewHamming(0, false)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = NewHann(1, true)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestPeriodicHannSumsToConstantAtHalfOverlap(t *testing.T) {
	const size = 16
	w, err := NewHann(size, false)
	require.NoError(t, err)

	c := w.GetCoefficients()
	for n := range size / 2 {
		assert.InDelta(t, 1.0, c[n]+c[n+size/2], 1e-12)
	}
}

func TestApply(t *testing.T) {
	w, err := New("hamming", 3, true)
	require.NoError(t, err)

	x := []float64{1, 2, 3}
	assert.InDeltaSlice(t, []float64{0.08, 2, 0.24}, w.Apply(x), 1e-12)
	assert.Equal(t, []float64{1, 2, 3}, x)

	require.NoError(t, w.ApplyInPlace(x))
	assert.InDeltaSlice(t, []float64{0.08, 2, 0.24}, x, 1e-12)

	assert.Nil(t, w.Apply([]float64{1}))
	assert.Error(t, w.ApplyInPlace([]float64{1}))
}

func TestNewByName(t *testing.T) {
	w, err := New("Hann", 8, false)
	require.NoError(t, err)
	assert.Equal(t, "hann", w.GetType())

	r, err := New("rectangular", 4, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, r.GetCoefficients())

	_, err = New("kaiser", 8, false)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}
