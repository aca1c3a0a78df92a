package common

import (
	"fmt"
)

// OverlapAddBuffer accumulates weighted frames for inverse STFT synthesis.
//
// Each added frame is multiplied by the synthesis window and summed at its
// offset; the squared window is summed alongside so that Output can divide
// it out (weighted overlap-add).
type OverlapAddBuffer struct {
	buffer    []float64
	weights   []float64
	window    []float64
	frameSize int
	hopSize   int
}

// NewOverlapAddBuffer creates a buffer for numFrames frames of len(window)
// samples spaced hopSize apart.
func NewOverlapAddBuffer(window []float64, hopSize, numFrames int) (*OverlapAddBuffer, error) {
	if len(window) == 0 {
		return nil, InvalidConfiguration("overlap_add", "empty synthesis window")
	}
	if hopSize <= 0 {
		return nil, InvalidConfiguration("overlap_add", "hop size must be positive, got %d", hopSize)
	}
	if numFrames <= 0 {
		return nil, InvalidConfiguration("overlap_add", "frame count must be positive, got %d", numFrames)
	}

	length := (numFrames-1)*hopSize + len(window)
	return &OverlapAddBuffer{
		buffer:    make([]float64, length),
		weights:   make([]float64, length),
		window:    window,
		frameSize: len(window),
		hopSize:   hopSize,
	}, nil
}

// AddFrame adds frame number index to the buffer
func (oab *OverlapAddBuffer) AddFrame(index int, frame []float64) error {
	if len(frame) != oab.frameSize {
		return fmt.Errorf("frame size (%d) doesn't match window size (%d)", len(frame), oab.frameSize)
	}

	start := index * oab.hopSize
	if index < 0 || start+oab.frameSize > len(oab.buffer) {
		return fmt.Errorf("frame %d out of range", index)
	}

	for i, w := range oab.window {
		oab.buffer[start+i] += frame[i] * w
		oab.weights[start+i] += w * w
	}

	return nil
}

// Output returns the normalized signal. Samples whose accumulated window
// weight is below 1e-10 are left unnormalized.
func (oab *OverlapAddBuffer) Output() []float64 {
	out := make([]float64, len(oab.buffer))
	for i, v := range oab.buffer {
		if oab.weights[i] > 1e-10 {
			out[i] = v / oab.weights[i]
		} else {
			out[i] = v
		}
	}
	return out
}

// Len returns the synthesized length
func (oab *OverlapAddBuffer) Len() int {
	return len(oab.buffer)
}
