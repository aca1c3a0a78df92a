package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// MFCC projects log mel filterbank energies onto an orthonormal DCT-II
// basis and keeps the first numCoefficients terms
type MFCC struct {
	numCoefficients int
	numMelFilters   int
	lifterCoeff     float64

	dctMatrix *mat.Dense // numCoefficients × numMelFilters
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int     `json:"num_coefficients"` // default 13
	NumMelFilters   int     `json:"num_mel_filters"`  // default 26
	LifterCoeff     float64 `json:"lifter_coeff"`     // 0 disables liftering
}

// DefaultMFCCParams returns 13 coefficients over 26 filters without liftering
func DefaultMFCCParams() MFCCParams {
	return MFCCParams{
		NumCoefficients: 13,
		NumMelFilters:   26,
	}
}

// NewMFCC validates params and builds the DCT matrix once
func NewMFCC(params MFCCParams) (*MFCC, error) {
	if params.NumMelFilters < MinMelFilters {
		return nil, common.InvalidConfiguration("mfcc", "need at least %d mel filters, got %d", MinMelFilters, params.NumMelFilters)
	}
	if params.NumCoefficients <= 0 {
		return nil, common.InvalidConfiguration("mfcc", "coefficient count must be positive, got %d", params.NumCoefficients)
	}
	if params.NumCoefficients > params.NumMelFilters {
		return nil, common.InvalidConfiguration("mfcc", "coefficient count %d exceeds filter count %d", params.NumCoefficients, params.NumMelFilters)
	}
	if params.LifterCoeff < 0 {
		return nil, common.InvalidConfiguration("mfcc", "lifter coefficient must not be negative")
	}

	m := &MFCC{
		numCoefficients: params.NumCoefficients,
		numMelFilters:   params.NumMelFilters,
		lifterCoeff:     params.LifterCoeff,
	}
	m.dctMatrix = dctII(params.NumCoefficients, params.NumMelFilters)

	return m, nil
}

// dctII builds the first rows of the orthonormal type-II DCT of size n
func dctII(rows, n int) *mat.Dense {
	d := mat.NewDense(rows, n, nil)
	for k := range rows {
		scale := math.Sqrt(2.0 / float64(n))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(n))
		}
		for i := range n {
			d.Set(k, i, scale*math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/float64(n)))
		}
	}
	return d
}

// Compute maps frames × filters log energies to frames × coefficients
func (m *MFCC) Compute(logEnergies [][]float64) ([][]float64, error) {
	if len(logEnergies) == 0 {
		return [][]float64{}, nil
	}

	data := make([]float64, 0, len(logEnergies)*m.numMelFilters)
	for t, row := range logEnergies {
		if len(row) != m.numMelFilters {
			return nil, common.InvalidConfiguration("mfcc", "frame %d has %d filter energies, expected %d", t, len(row), m.numMelFilters)
		}
		data = append(data, row...)
	}
	e := mat.NewDense(len(logEnergies), m.numMelFilters, data)

	var c mat.Dense
	c.Mul(e, m.dctMatrix.T())

	out := make([][]float64, len(logEnergies))
	for t := range out {
		out[t] = mat.Row(nil, t, &c)
		if m.lifterCoeff > 0 {
			m.applyLiftering(out[t])
		}
	}

	return out, nil
}

// ComputeFromPower runs the filterbank and DCT stages on a frames × bins
// power matrix
func (m *MFCC) ComputeFromPower(power [][]float64, fb *MelFilterbank) ([][]float64, error) {
	if fb.NumFilters() != m.numMelFilters {
		return nil, common.InvalidConfiguration("mfcc", "filterbank has %d filters, MFCC expects %d", fb.NumFilters(), m.numMelFilters)
	}

	logEnergies, err := fb.LogEnergies(power)
	if err != nil {
		return nil, err
	}

	return m.Compute(logEnergies)
}

// applyLiftering applies sinusoidal liftering in place, leaving C0 alone
func (m *MFCC) applyLiftering(coeffs []float64) {
	for i := 1; i < len(coeffs); i++ {
		lifter := 1.0 + (m.lifterCoeff/2.0)*math.Sin(math.Pi*float64(i)/m.lifterCoeff)
		coeffs[i] *= lifter
	}
}

// GetDCTMatrix returns a copy of the DCT matrix
func (m *MFCC) GetDCTMatrix() *mat.Dense {
	return mat.DenseCopyOf(m.dctMatrix)
}

// GetParams returns the current MFCC parameters
func (m *MFCC) GetParams() MFCCParams {
	return MFCCParams{
		NumCoefficients: m.numCoefficients,
		NumMelFilters:   m.numMelFilters,
		LifterCoeff:     m.lifterCoeff,
	}
}
