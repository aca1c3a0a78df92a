package filters

import (
	"math"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// DefaultPreEmphasis is the coefficient used ahead of MFCC extraction
const DefaultPreEmphasis = 0.97

// PreEmphasis is the first-order high-pass y[n] = x[n] - α·x[n-1].
//
// It flattens the spectral tilt of voiced speech before cepstral analysis.
// The first output sample equals the first input sample (x[-1] = 0).
type PreEmphasis struct {
	coefficient float64
	lastSample  float64
}

// NewPreEmphasis validates 0 <= α < 1. α = 0 is the identity filter.
func NewPreEmphasis(coefficient float64) (*PreEmphasis, error) {
	if coefficient < 0 || coefficient >= 1 || math.IsNaN(coefficient) {
		return nil, common.InvalidConfiguration("pre_emphasis",
			"coefficient must be in [0, 1), got %g", coefficient)
	}
	return &PreEmphasis{coefficient: coefficient}, nil
}

// Coefficient returns α
func (pe *PreEmphasis) Coefficient() float64 {
	return pe.coefficient
}

// Enabled reports whether the filter changes its input
func (pe *PreEmphasis) Enabled() bool {
	return pe.coefficient > 0
}

// Process filters one sample, carrying state across calls
func (pe *PreEmphasis) Process(input float64) float64 {
	output := input - pe.coefficient*pe.lastSample
	pe.lastSample = input
	return output
}

// Apply filters a whole buffer from a clean state and returns a new slice.
// The filter state is left as if Reset had been called.
func (pe *PreEmphasis) Apply(input []float64) []float64 {
	pe.Reset()
	defer pe.Reset()

	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = pe.Process(sample)
	}
	return output
}

// Reset clears x[n-1]
func (pe *PreEmphasis) Reset() {
	pe.lastSample = 0
}

// FrequencyResponse returns |H| and arg H at frequency Hz,
// H(e^jw) = 1 - α·e^-jw
func (pe *PreEmphasis) FrequencyResponse(frequency float64, sampleRate int) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / float64(sampleRate)

	re := 1.0 - pe.coefficient*math.Cos(w)
	im := pe.coefficient * math.Sin(w)

	return math.Hypot(re, im), math.Atan2(im, re)
}
