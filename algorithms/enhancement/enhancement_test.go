package enhancement

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
	"github.com/RyanBlaney/sonido-voz/internal/testsignal"
)

const sampleRate = 16000

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSubtractor(t *testing.T) *SpectralSubtractor {
	t.Helper()
	ss, err := NewSpectralSubtractor(DefaultParams())
	require.NoError(t, err)
	return ss
}

func noisySTFT(t *testing.T) *spectral.STFTResult {
	t.Helper()
	window, err := windowing.NewHann(512, false)
	require.NoError(t, err)

	signal := testsignal.WhiteNoise(0.1, 8000, 7)
	result, err := spectral.NewSTFT().ComputeWithWindow(context.Background(), signal, window, 256, sampleRate, framing.ZeroPad)
	require.NoError(t, err)
	return result
}

func TestParamsValidation(t *testing.T) {
	cases := map[string]func(p *Params){
		"fft":      func(p *Params) { p.FFTSize = 1 },
		"hop":      func(p *Params) { p.HopSize = -1 },
		"long hop": func(p *Params) { p.HopSize = 1024 },
		"k":        func(p *Params) { p.NoiseFrames = 0 },
		"floor":    func(p *Params) { p.MagnitudeFloor = 0 },
		"window":   func(p *Params) { p.Window = "triangle" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := DefaultParams()
			mutate(&p)
			_, err := NewSpectralSubtractor(p)
			assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
		})
	}
}

func TestDefaultHopIsHalfFFT(t *testing.T) {
	p := DefaultParams()
	p.FFTSize = 1024
	p.HopSize = 0
	ss, err := NewSpectralSubtractor(p)
	require.NoError(t, err)
	assert.Equal(t, 512, ss.Params().HopSize)
}

func TestEstimateNoiseIsLeadingMean(t *testing.T) {
	ss := newSubtractor(t)
	result := noisySTFT(t)

	profile, err := ss.EstimateNoise(result, 3)
	require.NoError(t, err)
	require.Len(t, profile.Magnitude, result.FreqBins)

	for _, bin := range []int{0, 17, result.FreqBins - 1} {
		want := (result.Magnitude[0][bin] + result.Magnitude[1][bin] + result.Magnitude[2][bin]) / 3
		assert.InDelta(t, want, profile.Magnitude[bin], 1e-12)
	}
}

func TestEstimateNoiseFrameCountBounds(t *testing.T) {
	ss := newSubtractor(t)
	result := noisySTFT(t)

	for _, k := range []int{0, -2, result.TimeFrames, result.TimeFrames + 1} {
		_, err := ss.EstimateNoise(result, k)
		assert.ErrorIs(t, err, common.ErrInvalidConfiguration, "k=%d", k)
	}
}

func TestSubtractFloorsAndKeepsPhase(t *testing.T) {
	ss := newSubtractor(t)
	result := noisySTFT(t)

	profile, err := ss.EstimateNoise(result, 5)
	require.NoError(t, err)

	out, err := ss.Subtract(context.Background(), result, profile)
	require.NoError(t, err)
	require.Equal(t, result.TimeFrames, out.TimeFrames)

	floor := DefaultParams().MagnitudeFloor
	for ti := range out.Magnitude {
		for k, m := range out.Magnitude[ti] {
			assert.GreaterOrEqual(t, m, floor)
			assert.LessOrEqual(t, m, math.Max(result.Magnitude[ti][k], floor))
			assert.Equal(t, result.Phase[ti][k], out.Phase[ti][k])
		}
	}

	// input untouched
	assert.NotSame(t, &result.Magnitude[0][0], &out.Magnitude[0][0])
}

func TestSubtractRejectsMismatchedProfile(t *testing.T) {
	ss := newSubtractor(t)
	_, err := ss.Subtract(context.Background(), noisySTFT(t), &NoiseProfile{Magnitude: make([]float64, 3)})
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestEnhanceOutputCoversInput(t *testing.T) {
	ss := newSubtractor(t)
	in := testsignal.WhiteNoise(0.05, 5000, 3)

	out, err := ss.Enhance(context.Background(), in, sampleRate)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(out), len(in))
}

func TestEnhanceLowersEnergyOfNoiseOnlyLead(t *testing.T) {
	ss := newSubtractor(t)

	clean := testsignal.Concat(
		testsignal.Silence(4000),
		testsignal.Sine(440, 0.5, sampleRate, 12000),
	)
	noisy := make([]float64, len(clean))
	noise := testsignal.WhiteNoise(0.05, len(clean), 11)
	for i := range clean {
		noisy[i] = clean[i] + noise[i]
	}

	enhanced, err := ss.Enhance(context.Background(), noisy, sampleRate)
	require.NoError(t, err)

	lead := 5 * DefaultParams().HopSize
	assert.Less(t, common.SumSquares(enhanced[:lead]), common.SumSquares(noisy[:lead]))
}

func TestEnhanceImprovesSNR(t *testing.T) {
	ss := newSubtractor(t)

	clean := testsignal.Concat(
		testsignal.Silence(4000),
		testsignal.Sine(440, 0.5, sampleRate, 12000),
	)
	noisy, _ := testsignal.AddNoise(clean, 5, 42)

	before, err := ComputeSNR(clean, noisy)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, before.DB, 0.5)

	enhanced, err := ss.Enhance(context.Background(), noisy, sampleRate)
	require.NoError(t, err)

	ref, test := Truncate(clean, enhanced)
	after, err := ComputeSNR(ref, test)
	require.NoError(t, err)

	assert.Greater(t, Improvement(before, after), 0.0)
}

func TestEnhanceRejectsTooFewFrames(t *testing.T) {
	ss := newSubtractor(t)
	// 100 samples pad to 612: two zero-padded frames, fewer than k+1
	_, err := ss.Enhance(context.Background(), make([]float64, 100), sampleRate)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = ss.Enhance(context.Background(), nil, sampleRate)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestEnhanceHonorsCancelledContext(t *testing.T) {
	ss := newSubtractor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ss.Enhance(ctx, testsignal.WhiteNoise(0.1, 8000, 5), sampleRate)
	assert.ErrorIs(t, err, context.Canceled)
}
