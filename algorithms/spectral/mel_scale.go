package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// HzToMel converts frequency in Hz to mel scale
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts mel scale to frequency in Hz
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MinMelFilters is the smallest filter count accepted by NewMelFilterbank
const MinMelFilters = 3

// MelFilterbank is an immutable table of triangular mel filters,
// filters × (fftSize/2+1)
type MelFilterbank struct {
	weights    *mat.Dense
	binPoints  []int
	sampleRate int
	fftSize    int
	numFilters int
}

// NewMelFilterbank builds numFilters triangular filters with centers evenly
// spaced in mel between 0 Hz and Nyquist. Edge frequencies are quantized
// with bin = floor((fftSize+1)·hz/sampleRate). Filters whose edges collapse
// onto the same bin keep zero weight on the collapsed side.
func NewMelFilterbank(sampleRate, fftSize, numFilters int) (*MelFilterbank, error) {
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("mel_filterbank", "sample rate must be positive, got %d", sampleRate)
	}
	if fftSize <= 0 {
		return nil, common.InvalidConfiguration("mel_filterbank", "FFT size must be positive, got %d", fftSize)
	}
	if numFilters < MinMelFilters {
		return nil, common.InvalidConfiguration("mel_filterbank", "need at least %d filters, got %d", MinMelFilters, numFilters)
	}

	numBins := OneSidedBins(fftSize)
	highMel := HzToMel(float64(sampleRate) / 2.0)

	binPoints := make([]int, numFilters+2)
	melStep := highMel / float64(numFilters+1)
	for i := range binPoints {
		hz := MelToHz(float64(i) * melStep)
		bin := int(math.Floor(float64(fftSize+1) * hz / float64(sampleRate)))
		binPoints[i] = max(bin, 0)
	}

	weights := mat.NewDense(numFilters, numBins, nil)
	for m := 1; m <= numFilters; m++ {
		left := binPoints[m-1]
		center := binPoints[m]
		right := binPoints[m+1]

		for k := left; k < min(center, numBins); k++ {
			weights.Set(m-1, k, float64(k-left)/float64(center-left))
		}
		for k := center; k < min(right, numBins); k++ {
			weights.Set(m-1, k, float64(right-k)/float64(right-center))
		}
	}

	return &MelFilterbank{
		weights:    weights,
		binPoints:  binPoints,
		sampleRate: sampleRate,
		fftSize:    fftSize,
		numFilters: numFilters,
	}, nil
}

// NumFilters returns the filter count
func (fb *MelFilterbank) NumFilters() int {
	return fb.numFilters
}

// NumBins returns fftSize/2+1
func (fb *MelFilterbank) NumBins() int {
	return OneSidedBins(fb.fftSize)
}

// FFTSize returns the transform size the bank was built for
func (fb *MelFilterbank) FFTSize() int {
	return fb.fftSize
}

// SampleRate returns the sample rate the bank was built for
func (fb *MelFilterbank) SampleRate() int {
	return fb.sampleRate
}

// BinPoints returns a copy of the numFilters+2 quantized edge bins
func (fb *MelFilterbank) BinPoints() []int {
	out := make([]int, len(fb.binPoints))
	copy(out, fb.binPoints)
	return out
}

// Weights returns a copy of the weight matrix
func (fb *MelFilterbank) Weights() *mat.Dense {
	return mat.DenseCopyOf(fb.weights)
}

// Filter returns a copy of the weights of filter m
func (fb *MelFilterbank) Filter(m int) []float64 {
	return mat.Row(nil, m, fb.weights)
}

// IsDegenerate reports whether filter m has no non-zero weight
func (fb *MelFilterbank) IsDegenerate(m int) bool {
	return mat.Sum(fb.weights.RowView(m)) == 0
}

// Energies projects a frames × bins power matrix onto the bank:
// power · weightsᵀ, frames × filters
func (fb *MelFilterbank) Energies(power [][]float64) (*mat.Dense, error) {
	if len(power) == 0 {
		return nil, common.InvalidConfiguration("filterbank_energies", "empty power matrix")
	}

	numBins := fb.NumBins()
	data := make([]float64, 0, len(power)*numBins)
	for t, row := range power {
		if len(row) != numBins {
			return nil, common.InvalidConfiguration("filterbank_energies",
				"frame %d has %d bins, filterbank expects %d", t, len(row), numBins)
		}
		data = append(data, row...)
	}

	p := mat.NewDense(len(power), numBins, data)

	var energies mat.Dense
	energies.Mul(p, fb.weights.T())
	return &energies, nil
}

// LogEnergies returns 20·log10 of the filterbank energies, with zero
// energies clamped to machine epsilon first
func (fb *MelFilterbank) LogEnergies(power [][]float64) ([][]float64, error) {
	energies, err := fb.Energies(power)
	if err != nil {
		return nil, err
	}

	rows, cols := energies.Dims()
	out := make([][]float64, rows)
	for t := range rows {
		out[t] = make([]float64, cols)
		for m := range cols {
			e := energies.At(t, m)
			if e <= 0 {
				e = common.MachineEpsilon
			}
			out[t][m] = 20 * math.Log10(e)
		}
	}

	return out, nil
}

func (fb *MelFilterbank) String() string {
	return fmt.Sprintf("MelFilterbank(sr=%d, nfft=%d, filters=%d)", fb.sampleRate, fb.fftSize, fb.numFilters)
}
