package windowing

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// Window is an analysis/synthesis window of fixed length
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() string
}

// New builds a window by name ("hamming", "hann", "rectangular").
// Symmetric windows use length-1 in the cosine denominator, periodic ones
// use length.
func New(kind string, size int, symmetric bool) (Window, error) {
	var (
		w   Window
		err error
	)

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "hamming":
		w, err = NewHamming(size, symmetric)
	case "hann", "hanning":
		w, err = NewHann(size, symmetric)
	case "rectangular", "boxcar", "none":
		w, err = NewRectangular(size)
	default:
		return nil, common.InvalidConfiguration("window", "unknown window type %q", kind)
	}

	if err != nil {
		return nil, err
	}
	return w, nil
}

type coefficients struct {
	kind   string
	values []float64
}

func (c *coefficients) Apply(signal []float64) []float64 {
	if len(signal) != len(c.values) {
		return nil
	}

	windowed := make([]float64, len(c.values))
	for i, w := range c.values {
		windowed[i] = signal[i] * w
	}
	return windowed
}

func (c *coefficients) ApplyInPlace(signal []float64) error {
	if len(signal) != len(c.values) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(c.values))
	}

	for i, w := range c.values {
		signal[i] *= w
	}
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (c *coefficients) GetCoefficients() []float64 {
	coeffs := make([]float64, len(c.values))
	copy(coeffs, c.values)
	return coeffs
}

func (c *coefficients) GetSize() int {
	return len(c.values)
}

func (c *coefficients) GetType() string {
	return c.kind
}

func ones(n int) []float64 {
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = 1
	}
	return seq
}
