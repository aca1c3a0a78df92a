package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Basic numeric helpers shared by the analysis packages, backed by gonum

// MachineEpsilon is the spacing between 1.0 and the next float64
const MachineEpsilon = 2.220446049250313e-16

// MeanSquare returns the mean of squared samples (frame energy)
func MeanSquare(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Dot(data, data) / float64(len(data))
}

// SumSquares returns Σ x²
func SumSquares(data []float64) float64 {
	return floats.Dot(data, data)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	return math.Sqrt(MeanSquare(data))
}

// PeakAbs returns max |x|
func PeakAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Max(math.Abs(floats.Max(data)), math.Abs(floats.Min(data)))
}

// RoundToInt rounds half away from zero
func RoundToInt(x float64) int {
	return int(math.Round(x))
}

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
