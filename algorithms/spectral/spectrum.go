package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// SpectrumResult is the magnitude spectrum of a whole signal
type SpectrumResult struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitude   []float64 `json:"magnitude"`
	SampleRate  int       `json:"sample_rate"`
	Size        int       `json:"size"`
}

// Spectrum computes the DFT of the entire signal and keeps the first
// len/2 bins (positive frequencies k·sampleRate/len)
func (f *FFT) Spectrum(signal []float64, sampleRate int) (*SpectrumResult, error) {
	if len(signal) == 0 {
		return nil, common.InvalidConfiguration("spectrum", "empty signal")
	}
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("spectrum", "sample rate must be positive, got %d", sampleRate)
	}

	n := len(signal)
	values := f.Compute(signal)
	half := n / 2

	res := &SpectrumResult{
		Frequencies: make([]float64, half),
		Magnitude:   make([]float64, half),
		SampleRate:  sampleRate,
		Size:        n,
	}
	for k := range half {
		res.Frequencies[k] = float64(k) * float64(sampleRate) / float64(n)
		res.Magnitude[k] = cmplx.Abs(values[k])
	}

	return res, nil
}

// Peak returns the frequency and magnitude of the strongest bin
func (r *SpectrumResult) Peak() (float64, float64) {
	bestFreq, bestMag := 0.0, -1.0
	for k, mag := range r.Magnitude {
		if mag > bestMag {
			bestFreq, bestMag = r.Frequencies[k], mag
		}
	}
	return bestFreq, max(bestMag, 0)
}
