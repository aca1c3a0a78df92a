package spectral

import (
	"context"
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
)

// Inverse resynthesizes the framed buffer from result's Magnitude and Phase
// by weighted overlap-add with window as the synthesis window. The output
// has result.PaddedLength samples; where the frames were analyzed with the
// same window the reconstruction is exact up to rounding.
func (s *STFT) Inverse(ctx context.Context, result *STFTResult, window windowing.Window) ([]float64, error) {
	if result == nil || result.TimeFrames == 0 {
		return nil, common.InvalidConfiguration("istft", "no frames")
	}
	if window == nil || window.GetSize() != result.FrameLength {
		return nil, common.InvalidConfiguration("istft", "synthesis window must match frame length %d", result.FrameLength)
	}
	if result.HopSize <= 0 || result.HopSize > result.FrameLength {
		return nil, common.InvalidConfiguration("istft", "hop size %d must be in (0, %d]", result.HopSize, result.FrameLength)
	}

	frames := make([][]float64, result.TimeFrames)
	err := common.ParallelFrames(ctx, result.TimeFrames, s.workers, func(_ context.Context, t int) error {
		if len(result.Magnitude[t]) != result.FreqBins || len(result.Phase[t]) != result.FreqBins {
			return fmt.Errorf("frame %d: expected %d bins", t, result.FreqBins)
		}
		full := hermitian(result.Magnitude[t], result.Phase[t], result.FFTSize)
		frames[t] = s.fft.ComputeInverseReal(full)[:result.FrameLength]
		return nil
	})
	if err != nil {
		return nil, err
	}

	ola, err := common.NewOverlapAddBuffer(window.GetCoefficients(), result.HopSize, result.TimeFrames)
	if err != nil {
		return nil, err
	}
	for t, frame := range frames {
		if err := ola.AddFrame(t, frame); err != nil {
			return nil, fmt.Errorf("overlap-add frame %d: %w", t, err)
		}
	}

	return ola.Output(), nil
}

// hermitian rebuilds the full n-point spectrum of a real signal from its
// one-sided magnitude and phase
func hermitian(magnitude, phase []float64, n int) []complex128 {
	full := make([]complex128, n)
	for k := range magnitude {
		full[k] = cmplx.Rect(magnitude[k], phase[k])
	}
	for k := 1; k < n-n/2; k++ {
		full[n-k] = cmplx.Conj(full[k])
	}
	// DC and (for even n) Nyquist bins of a real signal are real
	full[0] = complex(real(full[0]), 0)
	if n%2 == 0 {
		full[n/2] = complex(real(full[n/2]), 0)
	}
	return full
}
