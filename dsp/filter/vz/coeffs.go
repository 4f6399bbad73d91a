package vz

import "math"

// Type selects a VZ response.
type Type int

const (
	Bypass Type = iota
	Lowpass
	Highpass
	BandpassSkirt
	BandpassPeak
	BandReject
	Bell
	Lowshelf
	Highshelf
	Allpass
	Morph
)

var typeNames = [...]string{
	Bypass:        "bypass",
	Lowpass:       "lowpass",
	Highpass:      "highpass",
	BandpassSkirt: "bandpass_skirt",
	BandpassPeak:  "bandpass_peak",
	BandReject:    "band_reject",
	Bell:          "bell",
	Lowshelf:      "lowshelf",
	Highshelf:     "highshelf",
	Allpass:       "allpass",
	Morph:         "morph",
}

func (t Type) String() string {
	if t < Bypass || t > Morph {
		return "unknown"
	}

	return typeNames[t]
}

func clampType(t Type) Type {
	if t < Bypass {
		return Bypass
	}

	if t > Morph {
		return Morph
	}

	return t
}

// Params are the inputs of a coefficient computation.
type Params struct {
	G          float64 // prewarped gain tan(pi*Freq/SampleRate)
	Freq       float64 // cutoff in Hz
	SampleRate float64
	Bandwidth  float64 // octaves, bandwidth based types only
	Gain       float64 // linear, bell and shelves only
	Q          float64
	Morph      float64 // 0 lowpass, 0.5 bandpass, 1 highpass
}

// Coeffs are the derived filter gains and output mix.
type Coeffs struct {
	G  float64 // integrator gain after shelf warp
	R2 float64 // damping, 2*R
	H  float64 // 1/(1 + R2*G + G*G)
	CL float64
	CB float64
	CH float64
}

// CoefficientsFor derives the mix of t from p.
func CoefficientsFor(t Type, p Params) Coeffs {
	c := Coeffs{G: p.G}
	q := math.Max(p.Q, minQ)

	switch clampType(t) {
	case Bypass:
		c.R2 = 1 / q
		c.CL, c.CB, c.CH = 1, c.R2, 1
	case Lowpass:
		c.R2 = 1 / q
		c.CL = 1
	case Highpass:
		c.R2 = 1 / q
		c.CH = 1
	case BandpassSkirt:
		c.R2 = 1 / q
		c.CB = 1
	case BandpassPeak:
		c.R2 = 2 * BandwidthToR(p.Bandwidth, p.Freq, p.SampleRate)
		c.CB = c.R2
	case BandReject:
		c.R2 = 2 * BandwidthToR(p.Bandwidth, p.Freq, p.SampleRate)
		c.CL, c.CH = 1, 1
	case Bell:
		a := math.Sqrt(p.Gain)
		c.R2 = 2 * BandwidthToR(p.Bandwidth, p.Freq, p.SampleRate) / a
		c.CL, c.CB, c.CH = 1, c.R2*p.Gain, 1
	case Lowshelf:
		a := math.Sqrt(p.Gain)
		c.G = p.G / math.Sqrt(a)
		c.R2 = 2 * BandwidthToR(p.Bandwidth, p.Freq, p.SampleRate)
		c.CL, c.CB, c.CH = p.Gain, c.R2*a, 1
	case Highshelf:
		a := math.Sqrt(p.Gain)
		c.G = p.G * math.Sqrt(a)
		c.R2 = 2 * BandwidthToR(p.Bandwidth, p.Freq, p.SampleRate)
		c.CL, c.CB, c.CH = 1, c.R2*a, p.Gain
	case Allpass:
		c.R2 = 2 * BandwidthToR(p.Bandwidth, p.Freq, p.SampleRate)
		c.CL, c.CB, c.CH = 1, -c.R2, 1
	case Morph:
		c.R2 = 1 / q
		x := 2*clamp01(p.Morph) - 1
		c.CL = math.Max(-x, 0)
		c.CH = math.Max(x, 0)
		c.CB = (1 - x*x) * c.R2
	}

	c.H = 1 / (1 + c.R2*c.G + c.G*c.G)

	return c
}

// BandwidthToR converts a bandwidth in octaves around freq into the
// normalized damping R of the prewarped prototype.
func BandwidthToR(bandwidth, freq, sampleRate float64) float64 {
	fl := freq * math.Exp2(-bandwidth/2)
	g := math.Tan(math.Pi * freq / sampleRate)
	gl := math.Tan(math.Pi * fl / sampleRate)
	if gl < eps {
		gl = eps
	}

	r := g / gl
	r *= r

	return math.Sqrt(math.Max((r*r+1)/r-2, 0) / 4)
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
