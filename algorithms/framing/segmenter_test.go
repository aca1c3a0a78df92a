package framing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/audio"
)

func ramp(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func TestFrameCountLaw(t *testing.T) {
	const sampleRate = 16000
	frameLength := MillisToSamples(25, sampleRate)
	frameShift := MillisToSamples(10, sampleRate)
	require.Equal(t, 400, frameLength)
	require.Equal(t, 160, frameShift)

	sig, err := audio.NewSignal(ramp(1600), sampleRate)
	require.NoError(t, err)

	// floor((1600-400)/160)+1 = floor(7.5)+1 = 8
	fs, err := Segment(sig, frameLength, frameShift, Truncate)
	require.NoError(t, err)
	assert.Equal(t, 8, fs.NumFrames())
	assert.Equal(t, 1600, fs.PaddedLength)

	for i, f := range fs.Frames {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, i*160, f.Start)
		require.Len(t, f.Samples, 400)
		assert.Equal(t, float64(i*160), f.Samples[0])
		assert.Equal(t, float64(i*160+399), f.Samples[399])
	}

	exact, err := SegmentSamples(ramp(1680), frameLength, frameShift, Truncate)
	require.NoError(t, err)
	assert.Equal(t, 9, exact.NumFrames())
}

func TestZeroPadCoversTail(t *testing.T) {
	fs, err := SegmentSamples(ramp(1650), 400, 160, ZeroPad)
	require.NoError(t, err)

	// ceil((1650-400)/160)+1 = 9
	assert.Equal(t, 9, fs.NumFrames())
	assert.Equal(t, 8*160+400, fs.PaddedLength)
	assert.Equal(t, 1650, fs.SourceLength)

	last := fs.Frames[len(fs.Frames)-1]
	assert.Equal(t, 1649.0, last.Samples[1649-last.Start])
	assert.Equal(t, 0.0, last.Samples[399])

	truncated, err := SegmentSamples(ramp(1650), 400, 160, Truncate)
	require.NoError(t, err)
	assert.Equal(t, 8, truncated.NumFrames())
}

func TestZeroPadExactFitDoesNotPad(t *testing.T) {
	fs, err := SegmentSamples(ramp(1680), 400, 160, ZeroPad)
	require.NoError(t, err)
	assert.Equal(t, 9, fs.NumFrames())
	assert.Equal(t, 1680, fs.PaddedLength)

	// 1600 leaves a partial tail: ceil(7.5)+1 = 9 frames over 1680 samples
	partial, err := SegmentSamples(ramp(1600), 400, 160, ZeroPad)
	require.NoError(t, err)
	assert.Equal(t, 9, partial.NumFrames())
	assert.Equal(t, 1680, partial.PaddedLength)
	assert.Equal(t, 1600, partial.SourceLength)
}

func TestSegmentRejectsInvalidConfiguration(t *testing.T) {
	cases := []struct {
		name          string
		n, length, sh int
	}{
		{"zero length", 100, 0, 10},
		{"negative shift", 100, 10, -1},
		{"frame longer than signal", 100, 101, 10},
		{"empty signal", 0, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SegmentSamples(ramp(tc.n), tc.length, tc.sh, Truncate)
			assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
		})
	}
}

func TestCenterTimes(t *testing.T) {
	fs, err := SegmentSamples(ramp(1600), 400, 160, Truncate)
	require.NoError(t, err)

	times := fs.CenterTimes(16000)
	assert.InDelta(t, 200.0/16000.0, times[0], 1e-12)
	assert.InDelta(t, (160.0+200.0)/16000.0, times[1], 1e-12)
}

func TestParseBoundaryPolicy(t *testing.T) {
	p, err := ParseBoundaryPolicy("zero_pad")
	require.NoError(t, err)
	assert.Equal(t, ZeroPad, p)
	assert.Equal(t, "zero_pad", p.String())

	_, err = ParseBoundaryPolicy("wrap")
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}
