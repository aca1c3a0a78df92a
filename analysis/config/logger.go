package config

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/RyanBlaney/sonido-voz/logging"
)

// NewLogger builds a logrus-backed logger writing text records to out at
// the configured level
func (c *Config) NewLogger(out io.Writer) logging.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.InfoLevel
	}

	logger := logging.NewLogrusLogger(l)
	logger.SetLevel(level)
	return logger
}
