// Package analysis runs the speech analysis pipeline: spectrogram, MFCC and
// pitch contour for a single recording, and spectral-subtraction
// enhancement scored against a clean reference.
package analysis

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/enhancement"
	"github.com/RyanBlaney/sonido-voz/algorithms/filters"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
	"github.com/RyanBlaney/sonido-voz/algorithms/pitch"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/temporal"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
	"github.com/RyanBlaney/sonido-voz/analysis/config"
	"github.com/RyanBlaney/sonido-voz/audio"
	"github.com/RyanBlaney/sonido-voz/logging"
)

type filterbankKey struct {
	sampleRate int
	fftSize    int
	numFilters int
}

// Analyzer runs the analysis pipeline with a fixed configuration. It is
// safe for concurrent use.
type Analyzer struct {
	cfg    *config.Config
	mfcc   *spectral.MFCC
	logger logging.Logger

	mu          sync.Mutex
	filterbanks map[filterbankKey]*spectral.MelFilterbank
}

// NewAnalyzer validates cfg and prepares the sample-rate independent stages.
// A nil cfg uses config.Default().
func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mfcc, err := spectral.NewMFCC(cfg.MFCCParams())
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "analyzer",
	})

	for _, size := range []int{cfg.Spectral.FFTSize, cfg.Enhancement.FFTSize} {
		if !common.IsPowerOfTwo(size) {
			logger.Warn("FFT size is not a power of two, transforms use the slower Bluestein path", logging.Fields{
				"fft_size":  size,
				"suggested": common.NextPowerOfTwo(size),
			})
		}
	}

	return &Analyzer{
		cfg:         cfg,
		mfcc:        mfcc,
		logger:      logger,
		filterbanks: make(map[filterbankKey]*spectral.MelFilterbank),
	}, nil
}

// WithLogger replaces the logger used by the analyzer and its stages
func (a *Analyzer) WithLogger(logger logging.Logger) *Analyzer {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// filterbank returns the cached filterbank for sampleRate, building it on
// first use
func (a *Analyzer) filterbank(sampleRate int) (*spectral.MelFilterbank, error) {
	key := filterbankKey{
		sampleRate: sampleRate,
		fftSize:    a.cfg.Spectral.FFTSize,
		numFilters: a.cfg.MFCC.FilterCount,
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if fb, ok := a.filterbanks[key]; ok {
		return fb, nil
	}

	fb, err := spectral.NewMelFilterbank(key.sampleRate, key.fftSize, key.numFilters)
	if err != nil {
		return nil, err
	}
	a.filterbanks[key] = fb

	a.logger.Debug("Built mel filterbank", logging.Fields{
		"sample_rate": key.sampleRate,
		"fft_size":    key.fftSize,
		"filters":     key.numFilters,
	})

	return fb, nil
}

// Analyze computes signal info, the whole-signal spectrum, the frame
// energy contour, the dB spectrogram, MFCC and the pitch contour of sig. The three frame-based
// stages run concurrently over the same frame set.
func (a *Analyzer) Analyze(ctx context.Context, sig *audio.Signal) (*Report, error) {
	if sig == nil {
		return nil, common.InvalidConfiguration("analyze", "nil signal")
	}

	sr := sig.SampleRate()
	if err := a.cfg.ValidateFor(sr); err != nil {
		return nil, err
	}

	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":    "Analyze",
		"sample_rate": sr,
		"samples":     sig.Len(),
	})
	logger.Debug("Starting analysis")

	report := &Report{
		Info:        sig.Info(),
		FrameLength: a.cfg.FrameLength(sr),
		FrameShift:  a.cfg.FrameShift(sr),
	}

	working := sig
	if a.cfg.Processing.Normalize {
		normalized, err := sig.Map(common.NewNormalizer(common.Peak).Normalize)
		if err != nil {
			return nil, err
		}
		working = normalized
		report.Normalized = true
	}

	spectrum, err := spectral.NewFFT().Spectrum(working.Samples(), sr)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}
	report.Spectrum = spectrum

	fs, err := framing.Segment(working, report.FrameLength, report.FrameShift, a.cfg.Boundary())
	if err != nil {
		logger.Error(err, "Failed to segment signal")
		return nil, err
	}
	report.NumFrames = fs.NumFrames()

	energy, err := temporal.ComputeEnergy(fs, sr, temporal.DefaultEnergyFloor)
	if err != nil {
		return nil, err
	}
	report.Energy = energy

	window, err := windowing.NewHamming(report.FrameLength, true)
	if err != nil {
		return nil, err
	}

	stft := spectral.NewSTFT().WithWorkers(a.cfg.Processing.Workers).WithLogger(logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := stft.ComputeFrames(gctx, fs, window, a.cfg.Spectral.FFTSize, sr)
		if err != nil {
			return fmt.Errorf("spectrogram: %w", err)
		}
		report.Spectrogram = &Spectrogram{
			DB:          spectral.NewPowerSpectrum().SpectrogramDB(res, a.cfg.Spectral.DBEpsilon),
			Times:       fs.CenterTimes(sr),
			Frequencies: res.Frequencies(),
		}
		return nil
	})

	g.Go(func() error {
		mfcc, err := a.computeMFCC(gctx, working, fs, window, stft)
		if err != nil {
			return fmt.Errorf("mfcc: %w", err)
		}
		report.MFCC = mfcc
		return nil
	})

	g.Go(func() error {
		estimator, err := pitch.NewEstimator(a.cfg.PitchParams(sr))
		if err != nil {
			return err
		}
		contour, err := estimator.WithLogger(logger).Track(gctx, fs)
		if err != nil {
			return fmt.Errorf("pitch: %w", err)
		}
		report.Pitch = contour
		report.PitchStats = contour.Stats()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(err, "Analysis failed")
		return nil, err
	}

	logger.Debug("Analysis complete", logging.Fields{
		"frames":       report.NumFrames,
		"voiced_ratio": report.PitchStats.VoicedRatio,
	})

	return report, nil
}

// computeMFCC pre-emphasizes the signal (when enabled), reframes it with
// the same geometry as fs and projects the power spectrum through the
// filterbank and DCT
func (a *Analyzer) computeMFCC(ctx context.Context, sig *audio.Signal, fs *framing.FrameSet, window windowing.Window, stft *spectral.STFT) ([][]float64, error) {
	fb, err := a.filterbank(sig.SampleRate())
	if err != nil {
		return nil, err
	}

	pe, err := filters.NewPreEmphasis(a.cfg.MFCC.PreEmphasis)
	if err != nil {
		return nil, err
	}
	if pe.Enabled() {
		emphasized, err := sig.Map(pe.Apply)
		if err != nil {
			return nil, err
		}
		fs, err = framing.Segment(emphasized, fs.FrameLength, fs.FrameShift, fs.Policy)
		if err != nil {
			return nil, err
		}
	}

	res, err := stft.ComputeFrames(ctx, fs, window, a.cfg.Spectral.FFTSize, sig.SampleRate())
	if err != nil {
		return nil, err
	}

	power := spectral.NewPowerSpectrum().ComputeFromSTFT(res)
	return a.mfcc.ComputeFromPower(power, fb)
}

// Enhance denoises noisy and scores it against clean. Both signals must
// share a sample rate; SNRs are computed over their common length.
func (a *Analyzer) Enhance(ctx context.Context, clean, noisy *audio.Signal) (*EnhancementReport, error) {
	if clean == nil || noisy == nil {
		return nil, common.InvalidConfiguration("enhance", "nil signal")
	}
	if clean.SampleRate() != noisy.SampleRate() {
		return nil, common.InvalidConfiguration("enhance",
			"sample rate mismatch: clean %d Hz, noisy %d Hz", clean.SampleRate(), noisy.SampleRate())
	}

	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":    "Enhance",
		"sample_rate": noisy.SampleRate(),
		"samples":     noisy.Len(),
	})

	enhanced, err := a.Denoise(ctx, noisy)
	if err != nil {
		logger.Error(err, "Failed to enhance signal")
		return nil, err
	}

	before, err := enhancement.ComputeSNR(enhancement.Truncate(clean.Samples(), noisy.Samples()))
	if err != nil {
		return nil, fmt.Errorf("SNR before enhancement: %w", err)
	}
	after, err := enhancement.ComputeSNR(enhancement.Truncate(clean.Samples(), enhanced.Samples()))
	if err != nil {
		return nil, fmt.Errorf("SNR after enhancement: %w", err)
	}
	if before.Unbounded || after.Unbounded {
		logger.Debug("Unbounded SNR", logging.Fields{
			"before": before.String(),
			"after":  after.String(),
		})
	}

	report := &EnhancementReport{
		Enhanced:    enhanced,
		SNRBefore:   before,
		SNRAfter:    after,
		Improvement: enhancement.Improvement(before, after),
	}

	logger.Info("Enhancement complete", logging.Fields{
		"snr_before":  before.String(),
		"snr_after":   after.String(),
		"improvement": report.Improvement,
	})

	return report, nil
}

// Denoise runs spectral subtraction on noisy without a reference. The
// result may be longer than the input.
func (a *Analyzer) Denoise(ctx context.Context, noisy *audio.Signal) (*audio.Signal, error) {
	if noisy == nil {
		return nil, common.InvalidConfiguration("denoise", "nil signal")
	}

	ss, err := enhancement.NewSpectralSubtractor(a.cfg.EnhancementParams())
	if err != nil {
		return nil, err
	}

	samples, err := ss.WithLogger(a.logger).Enhance(ctx, noisy.Samples(), noisy.SampleRate())
	if err != nil {
		return nil, err
	}

	return audio.NewSignal(samples, noisy.SampleRate())
}
