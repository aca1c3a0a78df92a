package enhancement

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
	"github.com/RyanBlaney/sonido-voz/logging"
)

// Params configures the spectral subtractor
type Params struct {
	FFTSize        int     `json:"fft_size"`
	HopSize        int     `json:"hop_size"`        // 0 selects FFTSize/2
	NoiseFrames    int     `json:"noise_frames"`    // leading frames assumed noise-only
	MagnitudeFloor float64 `json:"magnitude_floor"` // lower bound on subtracted magnitudes
	Window         string  `json:"window"`          // periodic analysis/synthesis window
	Workers        int     `json:"workers"`
}

// DefaultParams returns a 512-point, half-overlap Hann configuration
func DefaultParams() Params {
	return Params{
		FFTSize:        512,
		HopSize:        256,
		NoiseFrames:    5,
		MagnitudeFloor: 0.001,
		Window:         "hann",
	}
}

// NoiseProfile is the per-bin mean magnitude of the leading frames
type NoiseProfile struct {
	Magnitude []float64 `json:"magnitude"`
	Frames    int       `json:"frames"`
}

// SpectralSubtractor removes a stationary noise estimate from the magnitude
// spectrum and resynthesizes with the noisy phase.
//
// The noise estimate is the mean of a fixed number of leading frames and the
// floor is a constant. Non-stationary noise and speech in the leading frames
// both leave residual tonal artifacts ("musical noise").
type SpectralSubtractor struct {
	params Params
	window windowing.Window
	stft   *spectral.STFT
	logger logging.Logger
}

// NewSpectralSubtractor validates params and builds the periodic window
func NewSpectralSubtractor(params Params) (*SpectralSubtractor, error) {
	if params.HopSize == 0 {
		params.HopSize = params.FFTSize / 2
	}
	if params.Window == "" {
		params.Window = "hann"
	}

	if params.FFTSize < 2 {
		return nil, common.InvalidConfiguration("spectral_subtraction", "FFT size must be at least 2, got %d", params.FFTSize)
	}
	if params.HopSize <= 0 || params.HopSize > params.FFTSize {
		return nil, common.InvalidConfiguration("spectral_subtraction", "hop size %d must be in (0, %d]", params.HopSize, params.FFTSize)
	}
	if params.NoiseFrames < 1 {
		return nil, common.InvalidConfiguration("spectral_subtraction", "noise frame count must be at least 1, got %d", params.NoiseFrames)
	}
	if params.MagnitudeFloor <= 0 || math.IsNaN(params.MagnitudeFloor) {
		return nil, common.InvalidConfiguration("spectral_subtraction", "magnitude floor must be positive, got %g", params.MagnitudeFloor)
	}

	window, err := windowing.New(params.Window, params.FFTSize, false)
	if err != nil {
		return nil, fmt.Errorf("spectral subtraction window: %w", err)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "spectral_subtractor",
	})

	return &SpectralSubtractor{
		params: params,
		window: window,
		stft:   spectral.NewSTFT().WithWorkers(params.Workers).WithLogger(logger),
		logger: logger,
	}, nil
}

// WithLogger replaces the logger
func (ss *SpectralSubtractor) WithLogger(logger logging.Logger) *SpectralSubtractor {
	if logger != nil {
		ss.logger = logger
		ss.stft.WithLogger(logger)
	}
	return ss
}

// Params returns the resolved parameters
func (ss *SpectralSubtractor) Params() Params {
	return ss.params
}

// EstimateNoise averages the magnitude of the first k frames per bin.
// k must leave at least one frame that is not part of the estimate.
func (ss *SpectralSubtractor) EstimateNoise(result *spectral.STFTResult, k int) (*NoiseProfile, error) {
	if result == nil || result.TimeFrames == 0 {
		return nil, common.InvalidConfiguration("noise_estimate", "no frames")
	}
	if k < 1 || k >= result.TimeFrames {
		return nil, common.InvalidConfiguration("noise_estimate",
			"noise frame count %d must be in [1, %d)", k, result.TimeFrames)
	}

	profile := &NoiseProfile{
		Magnitude: make([]float64, result.FreqBins),
		Frames:    k,
	}
	column := make([]float64, k)
	for bin := range profile.Magnitude {
		for t := range k {
			column[t] = result.Magnitude[t][bin]
		}
		profile.Magnitude[bin] = stat.Mean(column, nil)
	}

	return profile, nil
}

// Subtract returns a new STFT whose magnitudes are max(|X| - N, floor) with
// the phase of result unchanged. result is not modified.
func (ss *SpectralSubtractor) Subtract(ctx context.Context, result *spectral.STFTResult, profile *NoiseProfile) (*spectral.STFTResult, error) {
	if result == nil || result.TimeFrames == 0 {
		return nil, common.InvalidConfiguration("subtract", "no frames")
	}
	if profile == nil || len(profile.Magnitude) != result.FreqBins {
		return nil, common.InvalidConfiguration("subtract", "noise profile must have %d bins", result.FreqBins)
	}

	out := *result
	out.Magnitude = make([][]float64, result.TimeFrames)
	out.Phase = make([][]float64, result.TimeFrames)
	out.Complex = make([][]complex128, result.TimeFrames)

	floor := ss.params.MagnitudeFloor
	err := common.ParallelFrames(ctx, result.TimeFrames, ss.params.Workers, func(_ context.Context, t int) error {
		mag := result.Magnitude[t]
		phase := result.Phase[t]
		if len(mag) != result.FreqBins || len(phase) != result.FreqBins {
			return fmt.Errorf("frame %d: expected %d bins", t, result.FreqBins)
		}

		m := make([]float64, len(mag))
		c := make([]complex128, len(mag))
		for k := range mag {
			m[k] = max(mag[k]-profile.Magnitude[k], floor)
			c[k] = cmplx.Rect(m[k], phase[k])
		}

		out.Magnitude[t] = m
		out.Phase[t] = append([]float64(nil), phase...)
		out.Complex[t] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// Enhance denoises samples. The signal is padded with FFTSize/2 zeros on
// both sides and framed with zero-padding so that every input sample is
// covered by full window weight; the leading pad is removed from the
// output, which is therefore at least as long as the input.
func (ss *SpectralSubtractor) Enhance(ctx context.Context, samples []float64, sampleRate int) ([]float64, error) {
	if len(samples) == 0 {
		return nil, common.InvalidConfiguration("enhance", "empty signal")
	}
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("enhance", "sample rate must be positive, got %d", sampleRate)
	}

	pad := ss.params.FFTSize / 2
	padded := make([]float64, len(samples)+2*pad)
	copy(padded[pad:], samples)

	// validate k before transforming anything
	numFrames, err := framing.CountFrames(len(padded), ss.params.FFTSize, ss.params.HopSize, framing.ZeroPad)
	if err != nil {
		return nil, err
	}
	if ss.params.NoiseFrames >= numFrames {
		return nil, common.InvalidConfiguration("enhance",
			"noise frame count %d must be below the frame count %d", ss.params.NoiseFrames, numFrames)
	}

	// phase 0: analysis
	noisy, err := ss.stft.ComputeWithWindow(ctx, padded, ss.window, ss.params.HopSize, sampleRate, framing.ZeroPad)
	if err != nil {
		return nil, fmt.Errorf("analysis STFT: %w", err)
	}

	// phase 1: the noise profile is complete before any frame is modified
	profile, err := ss.EstimateNoise(noisy, ss.params.NoiseFrames)
	if err != nil {
		return nil, err
	}

	// phase 2
	enhanced, err := ss.Subtract(ctx, noisy, profile)
	if err != nil {
		return nil, err
	}

	out, err := ss.stft.Inverse(ctx, enhanced, ss.window)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	ss.logger.Debug("spectral subtraction applied", logging.Fields{
		"frames":       noisy.TimeFrames,
		"noise_frames": profile.Frames,
		"input_len":    len(samples),
		"output_len":   len(out) - pad,
	})

	return out[pad:], nil
}
