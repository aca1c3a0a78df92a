// Package audio holds the boundary type handed over by the decoding
// collaborator: a mono sample buffer with its sample rate.
package audio

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// Signal is an immutable mono recording
type Signal struct {
	samples    []float64
	sampleRate int
}

// Info summarizes a signal the way the loading step reports it
type Info struct {
	SampleRate   int           `json:"sample_rate"`
	NumSamples   int           `json:"num_samples"`
	Duration     time.Duration `json:"duration"`
	MaxAmplitude float64       `json:"max_amplitude"`
	MinAmplitude float64       `json:"min_amplitude"`
	RMS          float64       `json:"rms"`
}

// NewSignal copies samples into a new Signal
func NewSignal(samples []float64, sampleRate int) (*Signal, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("new_signal", "sample rate must be positive, got %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, common.InvalidConfiguration("new_signal", "empty signal")
	}

	pcm := make([]float64, len(samples))
	copy(pcm, samples)

	return &Signal{samples: pcm, sampleRate: sampleRate}, nil
}

// Samples returns the sample buffer. Callers must not modify it.
func (s *Signal) Samples() []float64 {
	return s.samples
}

// Len returns the number of samples
func (s *Signal) Len() int {
	return len(s.samples)
}

// SampleRate returns the sample rate in Hz
func (s *Signal) SampleRate() int {
	return s.sampleRate
}

// Duration returns len/sampleRate
func (s *Signal) Duration() time.Duration {
	return time.Duration(float64(len(s.samples)) / float64(s.sampleRate) * float64(time.Second))
}

// Seconds returns the duration as float seconds
func (s *Signal) Seconds() float64 {
	return float64(len(s.samples)) / float64(s.sampleRate)
}

// Truncate returns a signal holding the first n samples (or all of them
// when n >= Len). A signal never drops below one sample.
func (s *Signal) Truncate(n int) *Signal {
	if n >= len(s.samples) {
		return s
	}
	n = max(n, 1)
	return &Signal{samples: s.samples[:n:n], sampleRate: s.sampleRate}
}

// Map returns a new signal with fn applied to a copy of the samples.
// fn must not return an empty slice.
func (s *Signal) Map(fn func([]float64) []float64) (*Signal, error) {
	pcm := make([]float64, len(s.samples))
	copy(pcm, s.samples)

	out := fn(pcm)
	if len(out) == 0 {
		return nil, common.InvalidConfiguration("map", "mapped signal is empty")
	}
	return &Signal{samples: out, sampleRate: s.sampleRate}, nil
}

// Info computes descriptive statistics
func (s *Signal) Info() Info {
	return Info{
		SampleRate:   s.sampleRate,
		NumSamples:   len(s.samples),
		Duration:     s.Duration(),
		MaxAmplitude: floats.Max(s.samples),
		MinAmplitude: floats.Min(s.samples),
		RMS:          common.RMS(s.samples),
	}
}
