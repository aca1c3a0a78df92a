package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestWriterLoggerFiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, InfoLevel)

	logger.Debug("hidden")
	logger.WithFields(Fields{"component": "stft", "frames": 9}).Info("computed")
	logger.Error(errors.New("boom"), "failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] computed component=stft frames=9")
	assert.Contains(t, out, "[ERROR] failed: boom")
}

func TestWithContextPicksUpFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, DebugLevel)

	ctx := ContextWithFields(context.Background(), Fields{"request": "a"})
	ctx = ContextWithFields(ctx, Fields{"stage": "pitch"})
	logger.WithContext(ctx).Debug("tracking")

	assert.Contains(t, buf.String(), "request=a stage=pitch")
}

func TestLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	logger := NewLogrusLogger(base)
	logger.SetLevel(WarnLevel)

	logger.Info("dropped")
	logger.WithFields(Fields{"component": "enhancer"}).Warn("floor hit")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "floor hit")
	assert.Contains(t, out, "component=enhancer")
	assert.Equal(t, logrus.WarnLevel, base.GetLevel())
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
