package framing

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/audio"
)

// BoundaryPolicy decides what happens to trailing samples that do not fill
// a complete frame
type BoundaryPolicy int

const (
	// Truncate drops the incomplete tail (spectrogram, MFCC and pitch paths)
	Truncate BoundaryPolicy = iota
	// ZeroPad extends the buffer with zeros so the last frame is complete
	ZeroPad
)

func (p BoundaryPolicy) String() string {
	switch p {
	case Truncate:
		return "truncate"
	case ZeroPad:
		return "zero_pad"
	default:
		return "unknown"
	}
}

// ParseBoundaryPolicy parses "truncate" or "zero_pad"
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truncate", "":
		return Truncate, nil
	case "zero_pad", "zeropad", "pad":
		return ZeroPad, nil
	default:
		return Truncate, common.InvalidConfiguration("boundary_policy", "unknown boundary policy %q", s)
	}
}

// Frame is one fixed-length slice of the (possibly padded) buffer
type Frame struct {
	Index   int       `json:"index"`
	Start   int       `json:"start"`
	Samples []float64 `json:"-"` // read-only view, len == FrameLength
}

// FrameSet holds the frames of one signal in order
type FrameSet struct {
	Frames       []Frame        `json:"frames"`
	FrameLength  int            `json:"frame_length"`
	FrameShift   int            `json:"frame_shift"`
	Policy       BoundaryPolicy `json:"policy"`
	SourceLength int            `json:"source_length"`
	PaddedLength int            `json:"padded_length"`
}

// NumFrames returns the frame count
func (fs *FrameSet) NumFrames() int {
	return len(fs.Frames)
}

// Matrix returns the frame samples as a frames × frame_length matrix.
// Rows alias the source buffer.
func (fs *FrameSet) Matrix() [][]float64 {
	m := make([][]float64, len(fs.Frames))
	for i, f := range fs.Frames {
		m[i] = f.Samples
	}
	return m
}

// CenterTimes returns the time in seconds of each frame's center
func (fs *FrameSet) CenterTimes(sampleRate int) []float64 {
	times := make([]float64, len(fs.Frames))
	half := float64(fs.FrameLength) / 2.0
	for i, f := range fs.Frames {
		times[i] = (float64(f.Start) + half) / float64(sampleRate)
	}
	return times
}

// CountFrames returns the number of frames a buffer of signalLength samples
// yields under policy, without building them
func CountFrames(signalLength, frameLength, frameShift int, policy BoundaryPolicy) (int, error) {
	if err := validate(signalLength, frameLength, frameShift); err != nil {
		return 0, err
	}

	span := signalLength - frameLength
	if policy == ZeroPad {
		// ceil(span / shift) + 1
		return (span+frameShift-1)/frameShift + 1, nil
	}
	return span/frameShift + 1, nil
}

// Segment slices sig into overlapping frames
func Segment(sig *audio.Signal, frameLength, frameShift int, policy BoundaryPolicy) (*FrameSet, error) {
	if sig == nil {
		return nil, common.InvalidConfiguration("segment", "nil signal")
	}
	return SegmentSamples(sig.Samples(), frameLength, frameShift, policy)
}

// SegmentSamples slices samples into overlapping frames. Under Truncate the
// frames alias samples; under ZeroPad they alias a padded copy.
func SegmentSamples(samples []float64, frameLength, frameShift int, policy BoundaryPolicy) (*FrameSet, error) {
	if policy != Truncate && policy != ZeroPad {
		return nil, common.InvalidConfiguration("segment", "unknown boundary policy %d", int(policy))
	}

	numFrames, err := CountFrames(len(samples), frameLength, frameShift, policy)
	if err != nil {
		return nil, err
	}

	buffer := samples
	paddedLength := (numFrames-1)*frameShift + frameLength
	if policy == ZeroPad && paddedLength > len(samples) {
		buffer = make([]float64, paddedLength)
		copy(buffer, samples)
	}

	frames := make([]Frame, numFrames)
	for i := range numFrames {
		start := i * frameShift
		end := start + frameLength
		if end > len(buffer) {
			return nil, fmt.Errorf("frame %d ends at %d past buffer length %d", i, end, len(buffer))
		}
		frames[i] = Frame{
			Index:   i,
			Start:   start,
			Samples: buffer[start:end:end],
		}
	}

	return &FrameSet{
		Frames:       frames,
		FrameLength:  frameLength,
		FrameShift:   frameShift,
		Policy:       policy,
		SourceLength: len(samples),
		PaddedLength: len(buffer),
	}, nil
}

// MillisToSamples converts a duration in milliseconds to a whole number of
// samples, truncating toward zero.
func MillisToSamples(ms float64, sampleRate int) int {
	return int(float64(sampleRate) * ms / 1000.0)
}

func validate(signalLength, frameLength, frameShift int) error {
	if frameLength <= 0 {
		return common.InvalidConfiguration("segment", "frame length must be positive, got %d", frameLength)
	}
	if frameShift <= 0 {
		return common.InvalidConfiguration("segment", "frame shift must be positive, got %d", frameShift)
	}
	if signalLength == 0 {
		return common.InvalidConfiguration("segment", "empty signal")
	}
	if frameLength > signalLength {
		return common.InvalidConfiguration("segment", "frame length %d exceeds signal length %d", frameLength, signalLength)
	}
	return nil
}
