package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp for the real-input transforms used here
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the DFT of a real sequence.
// go-dsp handles non power-of-two sizes.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// ComputeN computes the n-point DFT of x, zero-padding x when it is shorter
// than n. x is not modified.
func (f *FFT) ComputeN(x []float64, n int) []complex128 {
	if n <= 0 {
		return []complex128{}
	}

	buf := make([]float64, n)
	copy(buf, x)
	return fft.FFTReal(buf)
}

// ComputeInverseReal computes the inverse DFT and keeps the real part
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))
	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// OneSidedBins returns the number of non-negative frequency bins of an
// n-point real transform
func OneSidedBins(n int) int {
	return n/2 + 1
}
