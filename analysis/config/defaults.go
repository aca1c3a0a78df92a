package config

import (
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-voz/algorithms/filters"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
)

// Default returns a Config with every default value set
func Default() *Config {
	return &Config{
		Framing:     DefaultFramingConfig(),
		Spectral:    DefaultSpectralConfig(),
		MFCC:        DefaultMFCCConfig(),
		Pitch:       DefaultPitchConfig(),
		Enhancement: DefaultEnhancementConfig(),
		Processing: ProcessingConfig{
			Normalize: true,
			Workers:   0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultFramingConfig returns 25 ms frames every 10 ms
func DefaultFramingConfig() FramingConfig {
	return FramingConfig{
		FrameSizeMs:  25,
		FrameShiftMs: 10,
		Boundary:     "truncate",
	}
}

// DefaultSpectralConfig returns default short-time transform settings
func DefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{
		FFTSize:   512,
		DBEpsilon: spectral.DefaultDBEpsilon,
	}
}

// DefaultMFCCConfig returns 13 cepstra over 26 filters
func DefaultMFCCConfig() MFCCConfig {
	return MFCCConfig{
		FilterCount: 26,
		NumCeps:     13,
		PreEmphasis: filters.DefaultPreEmphasis,
		Lifter:      0,
	}
}

// DefaultPitchConfig searches 50-400 Hz. The energy threshold assumes
// peak-normalized input.
func DefaultPitchConfig() PitchConfig {
	return PitchConfig{
		EnergyThreshold: 0.01,
		MinF0Hz:         50,
		MaxF0Hz:         400,
	}
}

// DefaultEnhancementConfig returns default spectral subtraction settings
func DefaultEnhancementConfig() EnhancementConfig {
	return EnhancementConfig{
		FFTSize:               512,
		HopSize:               0,
		NoiseEstimationFrames: 5,
		MagnitudeFloor:        0.001,
		Window:                "hann",
	}
}

// setDefaults registers every default with v so that environment overrides
// resolve for keys absent from the config file
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("framing.frame_size_ms", d.Framing.FrameSizeMs)
	v.SetDefault("framing.frame_shift_ms", d.Framing.FrameShiftMs)
	v.SetDefault("framing.boundary", d.Framing.Boundary)

	v.SetDefault("spectral.fft_size", d.Spectral.FFTSize)
	v.SetDefault("spectral.db_epsilon", d.Spectral.DBEpsilon)

	v.SetDefault("mfcc.filter_count", d.MFCC.FilterCount)
	v.SetDefault("mfcc.num_ceps", d.MFCC.NumCeps)
	v.SetDefault("mfcc.pre_emphasis", d.MFCC.PreEmphasis)
	v.SetDefault("mfcc.lifter", d.MFCC.Lifter)

	v.SetDefault("pitch.energy_threshold", d.Pitch.EnergyThreshold)
	v.SetDefault("pitch.min_f0_hz", d.Pitch.MinF0Hz)
	v.SetDefault("pitch.max_f0_hz", d.Pitch.MaxF0Hz)

	v.SetDefault("enhancement.fft_size", d.Enhancement.FFTSize)
	v.SetDefault("enhancement.hop_size", d.Enhancement.HopSize)
	v.SetDefault("enhancement.noise_estimation_frames", d.Enhancement.NoiseEstimationFrames)
	v.SetDefault("enhancement.magnitude_floor", d.Enhancement.MagnitudeFloor)
	v.SetDefault("enhancement.window", d.Enhancement.Window)

	v.SetDefault("processing.normalize", d.Processing.Normalize)
	v.SetDefault("processing.workers", d.Processing.Workers)

	v.SetDefault("logging.level", d.Logging.Level)
}
