package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
)

// DefaultEnergyFloor bounds the dB contour of silent frames
const DefaultEnergyFloor = 1e-10

// Energy is the short-time energy contour of a frame set. Power uses the
// same mean-square definition as the pitch energy gate.
type Energy struct {
	Power []float64 `json:"power"` // mean square per frame
	DB    []float64 `json:"db"`    // 10·log10(max(power, floor))
	Times []float64 `json:"times"` // frame centers, seconds
}

// ComputeEnergy returns the per-frame mean-square energy of fs
func ComputeEnergy(fs *framing.FrameSet, sampleRate int, floor float64) (*Energy, error) {
	if fs == nil || fs.NumFrames() == 0 {
		return nil, common.InvalidConfiguration("energy", "no frames")
	}
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("energy", "sample rate must be positive, got %d", sampleRate)
	}
	if floor <= 0 {
		floor = DefaultEnergyFloor
	}

	e := &Energy{
		Power: make([]float64, fs.NumFrames()),
		DB:    make([]float64, fs.NumFrames()),
		Times: fs.CenterTimes(sampleRate),
	}
	for i, frame := range fs.Frames {
		p := common.MeanSquare(frame.Samples)
		e.Power[i] = p
		e.DB[i] = 10 * math.Log10(max(p, floor))
	}

	return e, nil
}

// AboveThreshold reports, per frame, whether the energy reaches threshold
func (e *Energy) AboveThreshold(threshold float64) []bool {
	out := make([]bool, len(e.Power))
	for i, p := range e.Power {
		out[i] = p >= threshold
	}
	return out
}

// DynamicRange returns the spread of the dB contour
func (e *Energy) DynamicRange() float64 {
	if len(e.DB) == 0 {
		return 0
	}
	return floats.Max(e.DB) - floats.Min(e.DB)
}
