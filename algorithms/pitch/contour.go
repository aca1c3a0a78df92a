package pitch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is one frame of a pitch contour. F0 == 0 marks an unvoiced frame;
// it is never a pitch value.
type Point struct {
	Time float64 `json:"time"` // frame center, seconds
	F0   float64 `json:"f0"`   // Hz
}

// Voiced reports whether the frame carries a pitch
func (p Point) Voiced() bool {
	return p.F0 > 0
}

// Contour is the ordered per-frame pitch track
type Contour struct {
	Points []Point `json:"points"`
}

// Stats summarizes the voiced part of a contour
type Stats struct {
	Frames       int     `json:"frames"`
	VoicedFrames int     `json:"voiced_frames"`
	VoicedRatio  float64 `json:"voiced_ratio"`
	MeanF0       float64 `json:"mean_f0"`
	StdDevF0     float64 `json:"std_dev_f0"`
	MinF0        float64 `json:"min_f0"`
	MaxF0        float64 `json:"max_f0"`
}

// Times returns the frame times
func (c *Contour) Times() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Time
	}
	return out
}

// F0s returns the per-frame F0 values including unvoiced zeros
func (c *Contour) F0s() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.F0
	}
	return out
}

// Voiced returns the F0 of voiced frames only
func (c *Contour) Voiced() []float64 {
	out := make([]float64, 0, len(c.Points))
	for _, p := range c.Points {
		if p.Voiced() {
			out = append(out, p.F0)
		}
	}
	return out
}

// Stats computes voiced-frame statistics; all zero when nothing is voiced
func (c *Contour) Stats() Stats {
	voiced := c.Voiced()
	s := Stats{
		Frames:       len(c.Points),
		VoicedFrames: len(voiced),
	}
	if len(c.Points) > 0 {
		s.VoicedRatio = float64(len(voiced)) / float64(len(c.Points))
	}
	if len(voiced) == 0 {
		return s
	}

	s.MeanF0 = stat.Mean(voiced, nil)
	if len(voiced) > 1 {
		s.StdDevF0 = stat.StdDev(voiced, nil)
	}
	s.MinF0 = floats.Min(voiced)
	s.MaxF0 = floats.Max(voiced)
	return s
}
