package windowing

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// Hann is the window 0.5·(1 − cos(2πn/D)).
// The periodic form (D = size) sums to a constant at 50% overlap, which is
// what the overlap-add resynthesis relies on.
type Hann struct {
	coefficients
	symmetric bool
}

// NewHann creates a Hann window
func NewHann(size int, symmetric bool) (*Hann, error) {
	if size <= 0 || (symmetric && size == 1) {
		return nil, common.InvalidConfiguration("hann", "window length must be at least 2, got %d", size)
	}

	var values []float64
	if symmetric {
		values = window.Hann(ones(size))
	} else {
		values = make([]float64, size)
		for i := range size {
			values[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/float64(size)))
		}
	}

	return &Hann{
		coefficients: coefficients{kind: "hann", values: values},
		symmetric:    symmetric,
	}, nil
}

// IsSymmetric reports whether the window uses the size−1 denominator
func (h *Hann) IsSymmetric() bool {
	return h.symmetric
}
