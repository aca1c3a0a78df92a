package spectral

import (
	"math"
)

// DefaultDBEpsilon is added to magnitudes before taking a logarithm
const DefaultDBEpsilon = 1e-8

// PowerSpectrum provides periodogram power and decibel conversions
type PowerSpectrum struct{}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// Compute returns magnitude²/fftSize per bin
func (ps *PowerSpectrum) Compute(magnitudeSpectrum []float64, fftSize int) []float64 {
	power := make([]float64, len(magnitudeSpectrum))
	if fftSize <= 0 {
		return power
	}

	scale := 1.0 / float64(fftSize)
	for i, mag := range magnitudeSpectrum {
		power[i] = mag * mag * scale
	}

	return power
}

// ComputeFromSTFT returns the frames × bins power matrix of an STFT
func (ps *PowerSpectrum) ComputeFromSTFT(stftResult *STFTResult) [][]float64 {
	power := make([][]float64, stftResult.TimeFrames)
	for t := range stftResult.TimeFrames {
		power[t] = ps.Compute(stftResult.Magnitude[t], stftResult.FFTSize)
	}
	return power
}

// MagnitudeToDB returns 20·log10(mag + eps). eps <= 0 falls back to
// DefaultDBEpsilon so that silent bins never produce -Inf.
func MagnitudeToDB(magnitude []float64, eps float64) []float64 {
	if eps <= 0 {
		eps = DefaultDBEpsilon
	}

	db := make([]float64, len(magnitude))
	for i, mag := range magnitude {
		db[i] = 20 * math.Log10(mag+eps)
	}
	return db
}

// PowerToDB returns 10·log10(power + eps), with the same epsilon policy
func PowerToDB(power []float64, eps float64) []float64 {
	if eps <= 0 {
		eps = DefaultDBEpsilon
	}

	db := make([]float64, len(power))
	for i, p := range power {
		db[i] = 10 * math.Log10(p+eps)
	}
	return db
}

// SpectrogramDB converts every frame of an STFT magnitude matrix to dB
func (ps *PowerSpectrum) SpectrogramDB(stftResult *STFTResult, eps float64) [][]float64 {
	db := make([][]float64, stftResult.TimeFrames)
	for t := range stftResult.TimeFrames {
		db[t] = MagnitudeToDB(stftResult.Magnitude[t], eps)
	}
	return db
}
