package analysis

import (
	"github.com/RyanBlaney/sonido-voz/algorithms/enhancement"
	"github.com/RyanBlaney/sonido-voz/algorithms/pitch"
	"github.com/RyanBlaney/sonido-voz/algorithms/spectral"
	"github.com/RyanBlaney/sonido-voz/algorithms/temporal"
	"github.com/RyanBlaney/sonido-voz/audio"
)

// Report is the analysis output handed to rendering and reporting
type Report struct {
	Info        audio.Info               `json:"info"`
	Normalized  bool                     `json:"normalized"`
	FrameLength int                      `json:"frame_length"`
	FrameShift  int                      `json:"frame_shift"`
	NumFrames   int                      `json:"num_frames"`
	Spectrum    *spectral.SpectrumResult `json:"spectrum"`
	Energy      *temporal.Energy         `json:"energy"`
	Spectrogram *Spectrogram             `json:"spectrogram"`
	MFCC        [][]float64              `json:"mfcc"` // frames × num_ceps
	Pitch       *pitch.Contour           `json:"pitch"`
	PitchStats  pitch.Stats              `json:"pitch_stats"`
}

// Spectrogram is a frames × bins dB matrix with its axes
type Spectrogram struct {
	DB          [][]float64 `json:"db"`
	Times       []float64   `json:"times"`       // frame centers, seconds
	Frequencies []float64   `json:"frequencies"` // bin centers, Hz
}

// EnhancementReport is the output of Analyzer.Enhance
type EnhancementReport struct {
	Enhanced    *audio.Signal   `json:"-"`
	SNRBefore   enhancement.SNR `json:"snr_before"`
	SNRAfter    enhancement.SNR `json:"snr_after"`
	Improvement float64         `json:"improvement"`
}
