package pitch

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
	"github.com/RyanBlaney/sonido-voz/logging"
)

// Params configures the autocorrelation pitch estimator
type Params struct {
	SampleRate      int     `json:"sample_rate"`
	MinF0           float64 `json:"min_f0"`           // lowest pitch searched (Hz)
	MaxF0           float64 `json:"max_f0"`           // highest pitch searched (Hz)
	EnergyThreshold float64 `json:"energy_threshold"` // mean-square gate, signal-scale dependent
	Workers         int     `json:"workers"`
}

// DefaultParams returns the 50–400 Hz search with a gate tuned for
// peak-normalized signals
func DefaultParams(sampleRate int) Params {
	return Params{
		SampleRate:      sampleRate,
		MinF0:           50.0,
		MaxF0:           400.0,
		EnergyThreshold: 0.01,
	}
}

// Estimator decides every frame independently: frames below the energy
// gate are unvoiced (F0 = 0), the rest take the autocorrelation peak
// inside the lag window.
type Estimator struct {
	params Params
	minLag int
	maxLag int
	logger logging.Logger
}

// NewEstimator validates params and precomputes the lag window
// [round(sr/MaxF0), round(sr/MinF0)]
func NewEstimator(params Params) (*Estimator, error) {
	if params.SampleRate <= 0 {
		return nil, common.InvalidConfiguration("pitch", "sample rate must be positive, got %d", params.SampleRate)
	}
	if params.MinF0 <= 0 || params.MaxF0 <= 0 {
		return nil, common.InvalidConfiguration("pitch", "F0 bounds must be positive, got [%g, %g]", params.MinF0, params.MaxF0)
	}
	if params.MinF0 >= params.MaxF0 {
		return nil, common.InvalidConfiguration("pitch", "min F0 %g must be below max F0 %g", params.MinF0, params.MaxF0)
	}
	if params.EnergyThreshold < 0 {
		return nil, common.InvalidConfiguration("pitch", "energy threshold must not be negative")
	}

	sr := float64(params.SampleRate)
	e := &Estimator{
		params: params,
		minLag: common.RoundToInt(sr / params.MaxF0),
		maxLag: common.RoundToInt(sr / params.MinF0),
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_estimator",
		}),
	}
	if e.minLag < 1 {
		return nil, common.InvalidConfiguration("pitch", "max F0 %g too high for sample rate %d", params.MaxF0, params.SampleRate)
	}

	return e, nil
}

// WithLogger replaces the logger
func (e *Estimator) WithLogger(logger logging.Logger) *Estimator {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// LagWindow returns the configured [minLag, maxLag] before clamping
func (e *Estimator) LagWindow() (int, int) {
	return e.minLag, e.maxLag
}

// Autocorrelation returns r[k] = Σ x[n]·x[n+k] for k in [0, maxLag]
func Autocorrelation(frame []float64, maxLag int) []float64 {
	maxLag = min(maxLag, len(frame)-1)
	if maxLag < 0 {
		return []float64{}
	}

	r := make([]float64, maxLag+1)
	n := len(frame)
	for k := range r {
		r[k] = floats.Dot(frame[:n-k], frame[k:])
	}
	return r
}

// Estimate returns the F0 of one frame, or 0 for unvoiced frames.
//
// When several lags share the maximum the smallest one wins (the first in
// ascending order), i.e. the highest candidate pitch.
func (e *Estimator) Estimate(frame []float64) (float64, error) {
	if len(frame) == 0 {
		return 0, common.InvalidConfiguration("pitch", "empty frame")
	}

	energy := common.MeanSquare(frame)
	if energy < e.params.EnergyThreshold || energy == 0 {
		return 0, nil
	}

	maxLag := min(e.maxLag, len(frame)-1)
	if e.minLag >= maxLag {
		return 0, common.InvalidConfiguration("pitch",
			"frame of %d samples too short for lag window [%d, %d]", len(frame), e.minLag, e.maxLag)
	}

	r := Autocorrelation(frame, maxLag)

	bestLag := e.minLag
	for lag := e.minLag + 1; lag <= maxLag; lag++ {
		if r[lag] > r[bestLag] {
			bestLag = lag
		}
	}

	return float64(e.params.SampleRate) / float64(bestLag), nil
}

// Track estimates every frame of fs in parallel and returns the contour
// aligned to frame centers
func (e *Estimator) Track(ctx context.Context, fs *framing.FrameSet) (*Contour, error) {
	if fs == nil || fs.NumFrames() == 0 {
		return nil, common.InvalidConfiguration("pitch", "no frames")
	}

	// the lag window depends only on the frame length, check it once
	if min(e.maxLag, fs.FrameLength-1) <= e.minLag {
		return nil, common.InvalidConfiguration("pitch",
			"frame length %d too short for lag window [%d, %d]", fs.FrameLength, e.minLag, e.maxLag)
	}

	times := fs.CenterTimes(e.params.SampleRate)
	points := make([]Point, fs.NumFrames())

	err := common.ParallelFrames(ctx, fs.NumFrames(), e.params.Workers, func(_ context.Context, i int) error {
		f0, err := e.Estimate(fs.Frames[i].Samples)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		points[i] = Point{Time: times[i], F0: f0}
		return nil
	})
	if err != nil {
		return nil, err
	}

	contour := &Contour{Points: points}
	stats := contour.Stats()
	e.logger.Debug("pitch contour tracked", logging.Fields{
		"frames":       len(points),
		"voiced_ratio": stats.VoicedRatio,
		"mean_f0":      stats.MeanF0,
	})

	return contour, nil
}
