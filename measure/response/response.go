package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-leaf/dsp/core"
)

// Errors returned by response measurements.
var (
	ErrFFTSize           = errors.New("response: fft size must be a power of two >= 2")
	ErrInvalidSampleRate = errors.New("response: sample rate must be positive")
)

// Response is a one-sided magnitude spectrum with fftSize/2+1 bins.
type Response struct {
	SampleRate float64
	FFTSize    int
	Magnitude  []float64
}

// Impulse feeds a unit impulse followed by n-1 zeros through t.
func Impulse(t core.Ticker, n int) []float64 {
	out := make([]float64, max(n, 0))
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1
		}
		out[i] = t.Tick(x)
	}

	return out
}

// MagnitudeResponse captures fftSize samples of the impulse response of t and
// returns its magnitude spectrum.
func MagnitudeResponse(t core.Ticker, fftSize int, sampleRate float64) (*Response, error) {
	if !validFFTSize(fftSize) {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, fftSize)
	}

	return FromImpulse(Impulse(t, fftSize), sampleRate)
}

// FromImpulse transforms a captured impulse response. len(ir) is the FFT size.
func FromImpulse(ir []float64, sampleRate float64) (*Response, error) {
	n := len(ir)
	if !validFFTSize(n) {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, n)
	}

	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	in := make([]complex128, n)
	for i, v := range ir {
		in[i] = complex(v, 0)
	}

	spectrum := make([]complex128, n)
	if err := plan.Forward(spectrum, in); err != nil {
		return nil, fmt.Errorf("response: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(spectrum[k])
		im[k] = imag(spectrum[k])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return &Response{SampleRate: sampleRate, FFTSize: n, Magnitude: mag}, nil
}

// BinWidth returns the frequency spacing between bins in Hz.
func (r *Response) BinWidth() float64 {
	return r.SampleRate / float64(r.FFTSize)
}

// At returns the linear magnitude at freq, interpolating between bins.
func (r *Response) At(freq float64) float64 {
	pos := freq / r.BinWidth()
	last := len(r.Magnitude) - 1
	if pos <= 0 {
		return r.Magnitude[0]
	}

	if pos >= float64(last) {
		return r.Magnitude[last]
	}

	i := int(pos)
	frac := pos - float64(i)

	return r.Magnitude[i] + frac*(r.Magnitude[i+1]-r.Magnitude[i])
}

// AtDB returns At(freq) in dB.
func (r *Response) AtDB(freq float64) float64 {
	return core.LinearToDB(r.At(freq))
}

// Peak returns the frequency and linear magnitude of the largest bin.
func (r *Response) Peak() (freq, magnitude float64) {
	idx := floats.MaxIdx(r.Magnitude)
	return float64(idx) * r.BinWidth(), r.Magnitude[idx]
}

// Power returns the squared magnitude of every bin.
func (r *Response) Power() []float64 {
	out := make([]float64, len(r.Magnitude))
	vecmath.MulBlock(out, r.Magnitude, r.Magnitude)

	return out
}

// Energy returns the sum of squares of x.
func Energy(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return f64.DotProduct(x, x)
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return math.Sqrt(Energy(x) / float64(len(x)))
}

// Mean returns the arithmetic mean of x.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return f64.Sum(x) / float64(len(x))
}

// PeakAbs returns the largest absolute sample value in x.
func PeakAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return math.Max(floats.Max(x), -floats.Min(x))
}

func validFFTSize(n int) bool {
	return n >= 2 && n&(n-1) == 0
}
