package spectral

import (
	"context"
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-voz/algorithms/common"
	"github.com/RyanBlaney/sonido-voz/algorithms/framing"
	"github.com/RyanBlaney/sonido-voz/algorithms/windowing"
	"github.com/RyanBlaney/sonido-voz/logging"
)

// SpectralFrame is the one-sided spectrum of a single windowed frame
type SpectralFrame struct {
	Magnitude []float64    `json:"magnitude"`
	Phase     []float64    `json:"phase"`
	Complex   []complex128 `json:"-"`
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude      [][]float64    `json:"magnitude"`       // Time x Frequency magnitude matrix
	Phase          [][]float64    `json:"phase"`           // Time x Frequency phase matrix
	Complex        [][]complex128 `json:"-"`               // Raw complex spectrogram (not serialized)
	TimeFrames     int            `json:"time_frames"`     // Number of time frames
	FreqBins       int            `json:"freq_bins"`       // FFTSize/2 + 1
	SampleRate     int            `json:"sample_rate"`     // Sample rate
	FrameLength    int            `json:"frame_length"`    // Samples per analysis frame
	FFTSize        int            `json:"fft_size"`        // Transform size (>= FrameLength)
	HopSize        int            `json:"hop_size"`        // Hop size between frames
	PaddedLength   int            `json:"padded_length"`   // Length of the framed buffer
	FreqResolution float64        `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64        `json:"time_resolution"` // Time resolution (seconds/frame)
}

// Frame returns frame t as a SpectralFrame sharing the result's storage
func (r *STFTResult) Frame(t int) SpectralFrame {
	return SpectralFrame{
		Magnitude: r.Magnitude[t],
		Phase:     r.Phase[t],
		Complex:   r.Complex[t],
	}
}

// Frequencies returns the center frequency of every bin
func (r *STFTResult) Frequencies() []float64 {
	freqs := make([]float64, r.FreqBins)
	for k := range freqs {
		freqs[k] = float64(k) * r.FreqResolution
	}
	return freqs
}

// STFT computes short-time spectra frame by frame
type STFT struct {
	fft     *FFT
	workers int
	logger  logging.Logger
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// WithWorkers caps the number of frame workers (0 = automatic)
func (s *STFT) WithWorkers(workers int) *STFT {
	s.workers = workers
	return s
}

// WithLogger replaces the logger
func (s *STFT) WithLogger(logger logging.Logger) *STFT {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ComputeFrame windows frame, zero-pads it to fftSize and returns bins
// 0..fftSize/2. A nil window leaves the frame unweighted.
func (s *STFT) ComputeFrame(frame []float64, window windowing.Window, fftSize int) (*SpectralFrame, error) {
	if len(frame) == 0 {
		return nil, common.InvalidConfiguration("stft_frame", "empty frame")
	}
	if fftSize < len(frame) {
		return nil, common.InvalidConfiguration("stft_frame", "FFT size %d smaller than frame length %d", fftSize, len(frame))
	}

	buf := make([]float64, fftSize)
	copy(buf, frame)
	if window != nil {
		if err := window.ApplyInPlace(buf[:len(frame)]); err != nil {
			return nil, common.InvalidConfiguration("stft_frame", "%v", err)
		}
	}

	spectrum := s.fft.Compute(buf)
	bins := OneSidedBins(fftSize)

	out := &SpectralFrame{
		Magnitude: make([]float64, bins),
		Phase:     make([]float64, bins),
		Complex:   make([]complex128, bins),
	}
	for k := range bins {
		out.Complex[k] = spectrum[k]
		out.Magnitude[k] = cmplx.Abs(spectrum[k])
		out.Phase[k] = cmplx.Phase(spectrum[k])
	}

	return out, nil
}

// ComputeFrames transforms every frame of fs in parallel. Each worker writes
// only its own frame slot, so the result is in frame order.
func (s *STFT) ComputeFrames(ctx context.Context, fs *framing.FrameSet, window windowing.Window, fftSize, sampleRate int) (*STFTResult, error) {
	if fs == nil || fs.NumFrames() == 0 {
		return nil, common.InvalidConfiguration("stft", "no frames")
	}
	if sampleRate <= 0 {
		return nil, common.InvalidConfiguration("stft", "sample rate must be positive, got %d", sampleRate)
	}
	if fftSize < fs.FrameLength {
		return nil, common.InvalidConfiguration("stft", "FFT size %d smaller than frame length %d", fftSize, fs.FrameLength)
	}
	if window != nil && window.GetSize() != fs.FrameLength {
		return nil, common.InvalidConfiguration("stft", "window size %d doesn't match frame length %d", window.GetSize(), fs.FrameLength)
	}

	numFrames := fs.NumFrames()
	result := &STFTResult{
		Magnitude:      make([][]float64, numFrames),
		Phase:          make([][]float64, numFrames),
		Complex:        make([][]complex128, numFrames),
		TimeFrames:     numFrames,
		FreqBins:       OneSidedBins(fftSize),
		SampleRate:     sampleRate,
		FrameLength:    fs.FrameLength,
		FFTSize:        fftSize,
		HopSize:        fs.FrameShift,
		PaddedLength:   fs.PaddedLength,
		FreqResolution: float64(sampleRate) / float64(fftSize),
		TimeResolution: float64(fs.FrameShift) / float64(sampleRate),
	}

	err := common.ParallelFrames(ctx, numFrames, s.workers, func(_ context.Context, t int) error {
		frame, err := s.ComputeFrame(fs.Frames[t].Samples, window, fftSize)
		if err != nil {
			return fmt.Errorf("frame %d: %w", t, err)
		}
		result.Magnitude[t] = frame.Magnitude
		result.Phase[t] = frame.Phase
		result.Complex[t] = frame.Complex
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("STFT computed", logging.Fields{
		"frames":   numFrames,
		"fft_size": fftSize,
		"hop_size": fs.FrameShift,
	})

	return result, nil
}

// ComputeWithWindow frames signal with the given policy (frame length =
// window size) and computes its STFT with fftSize equal to the window size
func (s *STFT) ComputeWithWindow(ctx context.Context, signal []float64, window windowing.Window, hopSize, sampleRate int, policy framing.BoundaryPolicy) (*STFTResult, error) {
	if window == nil {
		return nil, common.InvalidConfiguration("stft", "window required to determine frame length")
	}

	fs, err := framing.SegmentSamples(signal, window.GetSize(), hopSize, policy)
	if err != nil {
		return nil, err
	}

	return s.ComputeFrames(ctx, fs, window, window.GetSize(), sampleRate)
}
