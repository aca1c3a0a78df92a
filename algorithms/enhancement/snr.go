package enhancement

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
)

// SNR is a signal-to-noise ratio in decibels. Unbounded marks a ratio with
// a zero denominator (DB = +Inf) or a zero reference (DB = -Inf).
type SNR struct {
	DB        float64 `json:"db"`
	Unbounded bool    `json:"unbounded"`
}

func (s SNR) String() string {
	if s.Unbounded {
		if s.DB > 0 {
			return "+inf dB"
		}
		return "-inf dB"
	}
	return fmt.Sprintf("%.2f dB", s.DB)
}

// ComputeSNR returns 10·log10(Σref² / Σ(test-ref)²). The signals must have
// equal, non-zero length; use Truncate first when they do not.
func ComputeSNR(reference, test []float64) (SNR, error) {
	db, err := snrDB(reference, test)
	if errors.Is(err, common.ErrDegenerateInput) {
		return SNR{DB: math.Inf(1), Unbounded: true}, nil
	}
	if err != nil {
		return SNR{}, err
	}
	return SNR{DB: db, Unbounded: math.IsInf(db, 0)}, nil
}

func snrDB(reference, test []float64) (float64, error) {
	if len(reference) == 0 {
		return 0, common.InvalidConfiguration("snr", "empty signal")
	}
	if len(reference) != len(test) {
		return 0, common.InvalidConfiguration("snr",
			"length mismatch: reference %d, test %d", len(reference), len(test))
	}

	signal := floats.Dot(reference, reference)
	noise := floats.Distance(test, reference, 2)
	noise *= noise
	if noise == 0 {
		return 0, common.DegenerateInput("snr", "test signal equals reference")
	}

	return 10 * math.Log10(signal/noise), nil
}

// Truncate shortens a and b to their common length
func Truncate(a, b []float64) ([]float64, []float64) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}

// Improvement returns after - before in dB. Two unbounded values of the same
// sign are no improvement.
func Improvement(before, after SNR) float64 {
	if before.Unbounded && after.Unbounded && math.Signbit(before.DB) == math.Signbit(after.DB) {
		return 0
	}
	return after.DB - before.DB
}
