package windowing

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// Rectangular is the all-ones (boxcar) window
type Rectangular struct {
	coefficients
}

// NewRectangular creates a new rectangular window
func NewRectangular(size int) (*Rectangular, error) {
	if size <= 0 {
		return nil, common.InvalidConfiguration("rectangular", "window length must be positive, got %d", size)
	}

	values := make([]float64, size)
	for i := range values {
		values[i] = 1.0
	}

	return &Rectangular{coefficients: coefficients{kind: "rectangular", values: values}}, nil
}
