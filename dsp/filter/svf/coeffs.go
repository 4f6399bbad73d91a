package svf

import "math"

// Type selects the tap mix of an SVF.
type Type int

const (
	Lowpass Type = iota
	Highpass
	Bandpass
	Notch
	Peak
	Lowshelf
	Highshelf
)

func (t Type) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Notch:
		return "notch"
	case Peak:
		return "peak"
	case Lowshelf:
		return "lowshelf"
	case Highshelf:
		return "highshelf"
	default:
		return "unknown"
	}
}

func clampType(t Type) Type {
	if t < Lowpass {
		return Lowpass
	}

	if t > Highshelf {
		return Highshelf
	}

	return t
}

// Coeffs are the output mix weights for the input, band and low taps.
type Coeffs struct {
	CH float64
	CB float64
	CL float64
}

// CoefficientsFor returns the tap mix for t at damping k. a is the shelf
// amplitude sqrt(10^(dB/20)) and is ignored by non-shelf types.
func CoefficientsFor(t Type, k, a float64) Coeffs {
	switch clampType(t) {
	case Highpass:
		return Coeffs{CH: 1, CB: -k, CL: -1}
	case Bandpass:
		return Coeffs{CB: 1}
	case Notch:
		return Coeffs{CH: 1, CB: -k}
	case Peak:
		return Coeffs{CH: 1, CB: -k, CL: -2}
	case Lowshelf:
		return Coeffs{CH: 1, CB: k * (a - 1), CL: a*a - 1}
	case Highshelf:
		return Coeffs{CH: a * a, CB: k * (1 - a) * a, CL: 1 - a*a}
	default:
		return Coeffs{CL: 1}
	}
}

// ShelfAmplitude converts a shelf gain in dB to the amplitude used by
// CoefficientsFor.
func ShelfAmplitude(gainDB float64) float64 {
	return math.Pow(10, gainDB/40)
}

// shelfWarp scales the prewarped gain so the shelf midpoint sits at fc.
func shelfWarp(t Type, g, a float64) float64 {
	switch t {
	case Lowshelf:
		return g / math.Sqrt(a)
	case Highshelf:
		return g * math.Sqrt(a)
	default:
		return g
	}
}
