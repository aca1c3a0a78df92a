// Package config loads and validates the analysis configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/enhancement"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
	"github.com/RyanBlaney/sonido-voz/algorithms/pitch"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/logging"
)

// EnvPrefix prefixes environment overrides, e.g. SONIDO_VOZ_MFCC_NUM_CEPS
const EnvPrefix = "SONIDO_VOZ"

// Config represents the analysis configuration
type Config struct {
	Framing     FramingConfig     `mapstructure:"framing" json:"framing" yaml:"framing"`
	Spectral    SpectralConfig    `mapstructure:"spectral" json:"spectral" yaml:"spectral"`
	MFCC        MFCCConfig        `mapstructure:"mfcc" json:"mfcc" yaml:"mfcc"`
	Pitch       PitchConfig       `mapstructure:"pitch" json:"pitch" yaml:"pitch"`
	Enhancement EnhancementConfig `mapstructure:"enhancement" json:"enhancement" yaml:"enhancement"`
	Processing  ProcessingConfig  `mapstructure:"processing" json:"processing" yaml:"processing"`
	Logging     LoggingConfig     `mapstructure:"logging" json:"logging" yaml:"logging"`
}

// FramingConfig controls frame segmentation for the spectrogram, MFCC and
// pitch paths
type FramingConfig struct {
	FrameSizeMs  float64 `mapstructure:"frame_size_ms" json:"frame_size_ms" yaml:"frame_size_ms"`
	FrameShiftMs float64 `mapstructure:"frame_shift_ms" json:"frame_shift_ms" yaml:"frame_shift_ms"`
	Boundary     string  `mapstructure:"boundary" json:"boundary" yaml:"boundary"`
}

// SpectralConfig contains short-time transform settings
type SpectralConfig struct {
	FFTSize   int     `mapstructure:"fft_size" json:"fft_size" yaml:"fft_size"`
	DBEpsilon float64 `mapstructure:"db_epsilon" json:"db_epsilon" yaml:"db_epsilon"`
}

// MFCCConfig contains cepstral extraction settings
type MFCCConfig struct {
	FilterCount int     `mapstructure:"filter_count" json:"filter_count" yaml:"filter_count"`
	NumCeps     int     `mapstructure:"num_ceps" json:"num_ceps" yaml:"num_ceps"`
	PreEmphasis float64 `mapstructure:"pre_emphasis" json:"pre_emphasis" yaml:"pre_emphasis"`
	Lifter      float64 `mapstructure:"lifter" json:"lifter" yaml:"lifter"`
}

// PitchConfig contains pitch tracking settings
type PitchConfig struct {
	EnergyThreshold float64 `mapstructure:"energy_threshold" json:"energy_threshold" yaml:"energy_threshold"`
	MinF0Hz         float64 `mapstructure:"min_f0_hz" json:"min_f0_hz" yaml:"min_f0_hz"`
	MaxF0Hz         float64 `mapstructure:"max_f0_hz" json:"max_f0_hz" yaml:"max_f0_hz"`
}

// EnhancementConfig contains spectral subtraction settings
type EnhancementConfig struct {
	FFTSize               int     `mapstructure:"fft_size" json:"fft_size" yaml:"fft_size"`
	HopSize               int     `mapstructure:"hop_size" json:"hop_size" yaml:"hop_size"`
	NoiseEstimationFrames int     `mapstructure:"noise_estimation_frames" json:"noise_estimation_frames" yaml:"noise_estimation_frames"`
	MagnitudeFloor        float64 `mapstructure:"magnitude_floor" json:"magnitude_floor" yaml:"magnitude_floor"`
	Window                string  `mapstructure:"window" json:"window" yaml:"window"`
}

// ProcessingConfig contains settings shared by every stage
type ProcessingConfig struct {
	Normalize bool `mapstructure:"normalize" json:"normalize" yaml:"normalize"`
	Workers   int  `mapstructure:"workers" json:"workers" yaml:"workers"`
}

// LoggingConfig selects the log level
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level" yaml:"level"`
}

// Load reads the configuration from path (YAML, JSON or TOML by extension),
// then applies SONIDO_VOZ_* environment overrides on top of the defaults.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file does not exist: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every sample-rate independent constraint. Constraints
// that depend on the sample rate are checked by ValidateFor.
func (c *Config) Validate() error {
	if c.Framing.FrameSizeMs <= 0 || c.Framing.FrameShiftMs <= 0 {
		return common.InvalidConfiguration("config", "frame size and shift must be positive")
	}
	if _, err := framing.ParseBoundaryPolicy(c.Framing.Boundary); err != nil {
		return err
	}

	if c.Spectral.FFTSize <= 0 {
		return common.InvalidConfiguration("config", "spectral.fft_size must be positive")
	}
	if c.Spectral.DBEpsilon <= 0 {
		return common.InvalidConfiguration("config", "spectral.db_epsilon must be positive")
	}

	if c.MFCC.FilterCount < spectral.MinMelFilters {
		return common.InvalidConfiguration("config", "mfcc.filter_count must be at least %d", spectral.MinMelFilters)
	}
	if c.MFCC.NumCeps <= 0 || c.MFCC.NumCeps > c.MFCC.FilterCount {
		return common.InvalidConfiguration("config", "mfcc.num_ceps must be in [1, %d], got %d", c.MFCC.FilterCount, c.MFCC.NumCeps)
	}
	if c.MFCC.PreEmphasis < 0 || c.MFCC.PreEmphasis >= 1 {
		return common.InvalidConfiguration("config", "mfcc.pre_emphasis must be in [0, 1)")
	}
	if c.MFCC.Lifter < 0 {
		return common.InvalidConfiguration("config", "mfcc.lifter must not be negative")
	}

	if c.Pitch.EnergyThreshold < 0 {
		return common.InvalidConfiguration("config", "pitch.energy_threshold must not be negative")
	}
	if c.Pitch.MinF0Hz <= 0 || c.Pitch.MinF0Hz >= c.Pitch.MaxF0Hz {
		return common.InvalidConfiguration("config", "pitch F0 range [%g, %g] is invalid", c.Pitch.MinF0Hz, c.Pitch.MaxF0Hz)
	}

	if c.Enhancement.FFTSize < 2 {
		return common.InvalidConfiguration("config", "enhancement.fft_size must be at least 2")
	}
	if hop := c.EnhancerHop(); hop <= 0 || hop > c.Enhancement.FFTSize {
		return common.InvalidConfiguration("config", "enhancement.hop_size %d must be in (0, %d]", hop, c.Enhancement.FFTSize)
	}
	if c.Enhancement.NoiseEstimationFrames < 1 {
		return common.InvalidConfiguration("config", "enhancement.noise_estimation_frames must be at least 1")
	}
	if c.Enhancement.MagnitudeFloor <= 0 {
		return common.InvalidConfiguration("config", "enhancement.magnitude_floor must be positive")
	}

	if c.Processing.Workers < 0 {
		return common.InvalidConfiguration("config", "processing.workers must not be negative")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return common.InvalidConfiguration("config", "%v", err)
	}

	return nil
}

// ValidateFor checks the constraints that depend on the sample rate
func (c *Config) ValidateFor(sampleRate int) error {
	if sampleRate <= 0 {
		return common.InvalidConfiguration("config", "sample rate must be positive, got %d", sampleRate)
	}

	frameLength := c.FrameLength(sampleRate)
	if frameLength <= 0 || c.FrameShift(sampleRate) <= 0 {
		return common.InvalidConfiguration("config", "frame size rounds to zero samples at %d Hz", sampleRate)
	}
	if c.Spectral.FFTSize < frameLength {
		return common.InvalidConfiguration("config",
			"spectral.fft_size %d must be at least the frame length %d", c.Spectral.FFTSize, frameLength)
	}
	if c.Pitch.MaxF0Hz >= float64(sampleRate)/2 {
		return common.InvalidConfiguration("config", "pitch.max_f0_hz must be below Nyquist")
	}

	return nil
}

// FrameLength returns the frame size in samples at sampleRate
func (c *Config) FrameLength(sampleRate int) int {
	return framing.MillisToSamples(c.Framing.FrameSizeMs, sampleRate)
}

// FrameShift returns the frame shift in samples at sampleRate
func (c *Config) FrameShift(sampleRate int) int {
	return framing.MillisToSamples(c.Framing.FrameShiftMs, sampleRate)
}

// Boundary returns the parsed boundary policy
func (c *Config) Boundary() framing.BoundaryPolicy {
	policy, err := framing.ParseBoundaryPolicy(c.Framing.Boundary)
	if err != nil {
		return framing.Truncate
	}
	return policy
}

// EnhancerHop resolves hop_size 0 to half the enhancer FFT size
func (c *Config) EnhancerHop() int {
	if c.Enhancement.HopSize == 0 {
		return c.Enhancement.FFTSize / 2
	}
	return c.Enhancement.HopSize
}

// MFCCParams returns the cepstral extractor parameters
func (c *Config) MFCCParams() spectral.MFCCParams {
	return spectral.MFCCParams{
		NumCoefficients: c.MFCC.NumCeps,
		NumMelFilters:   c.MFCC.FilterCount,
		LifterCoeff:     c.MFCC.Lifter,
	}
}

// PitchParams returns the estimator parameters at sampleRate
func (c *Config) PitchParams(sampleRate int) pitch.Params {
	return pitch.Params{
		SampleRate:      sampleRate,
		MinF0:           c.Pitch.MinF0Hz,
		MaxF0:           c.Pitch.MaxF0Hz,
		EnergyThreshold: c.Pitch.EnergyThreshold,
		Workers:         c.Processing.Workers,
	}
}

// EnhancementParams returns the spectral subtractor parameters
func (c *Config) EnhancementParams() enhancement.Params {
	return enhancement.Params{
		FFTSize:        c.Enhancement.FFTSize,
		HopSize:        c.EnhancerHop(),
		NoiseFrames:    c.Enhancement.NoiseEstimationFrames,
		MagnitudeFloor: c.Enhancement.MagnitudeFloor,
		Window:         c.Enhancement.Window,
		Workers:        c.Processing.Workers,
	}
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}
