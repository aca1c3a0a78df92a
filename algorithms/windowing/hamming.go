package windowing

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// Hamming is the raised-cosine window 0.54 − 0.46·cos(2πn/D)
type Hamming struct {
	coefficients
	symmetric bool
}

// NewHamming creates a Hamming window. The symmetric form uses D = size−1
// and is the analysis window of the framing pipeline; size 1 is degenerate
// there and rejected.
func NewHamming(size int, symmetric bool) (*Hamming, error) {
	if size <= 0 || (symmetric && size == 1) {
		return nil, common.InvalidConfiguration("hamming", "window length must be at least 2, got %d", size)
	}

	var values []float64
	if symmetric {
		values = window.Hamming(ones(size))
	} else {
		values = make([]float64, size)
		for i := range size {
			values[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(size))
		}
	}

	return &Hamming{
		coefficients: coefficients{kind: "hamming", values: values},
		symmetric:    symmetric,
	}, nil
}

// IsSymmetric reports whether the window uses the size−1 denominator
func (h *Hamming) IsSymmetric() bool {
	return h.symmetric
}
