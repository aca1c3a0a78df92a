package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
	"github.com/RyanBlaney/sonido-voz/logging"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateFor(16000))

	assert.Equal(t, 400, cfg.FrameLength(16000))
	assert.Equal(t, 160, cfg.FrameShift(16000))
	assert.Equal(t, 256, cfg.EnhancerHop())
	assert.Equal(t, framing.Truncate, cfg.Boundary())
	assert.Equal(t, 256, cfg.EnhancementParams().HopSize)
	assert.Equal(t, 13, cfg.MFCCParams().NumCoefficients)
}

func TestLoadWithoutFileMatchesDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voz.yaml")
	data := []byte(`
framing:
  boundary: zero_pad
mfcc:
  filter_count: 40
  num_ceps: 20
enhancement:
  fft_size: 1024
  hop_size: 512
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, framing.ZeroPad, cfg.Boundary())
	assert.Equal(t, 40, cfg.MFCC.FilterCount)
	assert.Equal(t, 20, cfg.MFCC.NumCeps)
	assert.Equal(t, 1024, cfg.Enhancement.FFTSize)
	assert.Equal(t, 512, cfg.EnhancerHop())
	// untouched keys keep their defaults
	assert.Equal(t, 25.0, cfg.Framing.FrameSizeMs)
	assert.Equal(t, 0.001, cfg.Enhancement.MagnitudeFloor)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("SONIDO_VOZ_PITCH_MAX_F0_HZ", "300")
	t.Setenv("SONIDO_VOZ_PROCESSING_NORMALIZE", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 300.0, cfg.Pitch.MaxF0Hz)
	assert.False(t, cfg.Processing.Normalize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mfcc:\n  num_ceps: 30\n"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"frame size":    func(c *Config) { c.Framing.FrameSizeMs = 0 },
		"boundary":      func(c *Config) { c.Framing.Boundary = "mirror" },
		"fft size":      func(c *Config) { c.Spectral.FFTSize = 0 },
		"epsilon":       func(c *Config) { c.Spectral.DBEpsilon = 0 },
		"few filters":   func(c *Config) { c.MFCC.FilterCount = 2 },
		"ceps":          func(c *Config) { c.MFCC.NumCeps = 27 },
		"pre-emphasis":  func(c *Config) { c.MFCC.PreEmphasis = 1 },
		"f0 range":      func(c *Config) { c.Pitch.MinF0Hz = 500 },
		"threshold":     func(c *Config) { c.Pitch.EnergyThreshold = -1 },
		"hop":           func(c *Config) { c.Enhancement.HopSize = 2048 },
		"noise frames":  func(c *Config) { c.Enhancement.NoiseEstimationFrames = 0 },
		"floor":         func(c *Config) { c.Enhancement.MagnitudeFloor = 0 },
		"workers":       func(c *Config) { c.Processing.Workers = -1 },
		"logging level": func(c *Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), common.ErrInvalidConfiguration)
		})
	}
}

func TestValidateForSampleRate(t *testing.T) {
	cfg := Default()

	// 25 ms at 44.1 kHz is 1102 samples, beyond a 512-point FFT
	assert.ErrorIs(t, cfg.ValidateFor(44100), common.ErrInvalidConfiguration)

	cfg.Spectral.FFTSize = 2048
	assert.NoError(t, cfg.ValidateFor(44100))

	assert.ErrorIs(t, cfg.ValidateFor(0), common.ErrInvalidConfiguration)
	assert.ErrorIs(t, cfg.ValidateFor(600), common.ErrInvalidConfiguration)
}

func TestMarshalYAML(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *Default(), decoded)
	assert.Contains(t, string(data), "noise_estimation_frames: 5")
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Logging.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", logging.Fields{"stage": "mfcc"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "stage=mfcc")
}
