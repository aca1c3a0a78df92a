package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormalizationType defines normalization method
type NormalizationType int

const (
	None NormalizationType = iota
	Peak
	RMSNorm
)

// Normalizer scales signals without changing their shape
type Normalizer struct {
	method NormalizationType
}

// NewNormalizer creates a new normalizer
func NewNormalizer(method NormalizationType) *Normalizer {
	return &Normalizer{
		method: method,
	}
}

// Normalize returns a scaled copy of signal. Silent signals are returned
// as an unscaled copy.
func (n *Normalizer) Normalize(signal []float64) []float64 {
	out := make([]float64, len(signal))
	copy(out, signal)

	var scale float64
	switch n.method {
	case Peak:
		scale = PeakAbs(signal)
	case RMSNorm:
		scale = RMS(signal)
	default:
		return out
	}

	if scale < 1e-10 || math.IsNaN(scale) {
		return out
	}

	floats.Scale(1.0/scale, out)
	return out
}
