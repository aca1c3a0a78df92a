// Package testsignal builds deterministic fixtures for the analysis tests:
// tones, seeded white noise and noise injection at a target SNR.
package testsignal

import (
	"math"
	"math/rand/v2"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// Sine returns n samples of amplitude·sin(2π·freq·t)
func Sine(freq, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// WhiteNoise returns n Gaussian samples with standard deviation sigma from
// a PCG source seeded with seed
func WhiteNoise(sigma float64, n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// AddNoise adds white noise scaled so that mean(signal²)/noise power equals
// snrDB. It returns the noisy signal and the noise that was added.
func AddNoise(signal []float64, snrDB float64, seed uint64) ([]float64, []float64) {
	signalPower := common.MeanSquare(signal)
	noisePower := signalPower / math.Pow(10, snrDB/10)

	noise := WhiteNoise(math.Sqrt(noisePower), len(signal), seed)
	noisy := make([]float64, len(signal))
	for i := range signal {
		noisy[i] = signal[i] + noise[i]
	}
	return noisy, noise
}

// Concat joins sample slices
func Concat(parts ...[]float64) []float64 {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Silence returns n zero samples
func Silence(n int) []float64 {
	return make([]float64, n)
}
