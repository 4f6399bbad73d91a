package pole

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
)

// TwoPole is an all-pole second-order resonator.
type TwoPole struct {
	pool   *mempool.Pool
	handle mempool.Handle
	state  []float64 // y[n-1], y[n-2]

	b0, a1, a2 float64
	gain       float64
	sampleRate float64

	freq, radius float64
	normalize    bool
}

// NewTwoPole creates a passthrough two-pole filter from the context pool.
func NewTwoPole(ctx *core.Context) (*TwoPole, error) {
	return NewTwoPoleToPool(ctx.Pool(), ctx)
}

// NewTwoPoleToPool creates a passthrough two-pole filter from pool.
func NewTwoPoleToPool(pool *mempool.Pool, ctx *core.Context) (*TwoPole, error) {
	state, h, err := mempool.MakeSlice[float64](pool, 2)
	if err != nil {
		return nil, fmt.Errorf("pole: two-pole state: %w", err)
	}

	return &TwoPole{
		pool:       pool,
		handle:     h,
		state:      state,
		b0:         1,
		gain:       1,
		sampleRate: ctx.SampleRate(),
	}, nil
}

// Free returns the state to its pool.
func (p *TwoPole) Free() error {
	if p.pool == nil {
		return nil
	}

	err := p.pool.Free(p.handle)
	p.pool = nil
	p.state = nil

	return err
}

// Tick filters one sample.
func (p *TwoPole) Tick(in float64) float64 {
	if !core.IsFinite(in) {
		in = 0
	}

	st := p.state
	y := core.FlushDenormals(p.b0*p.gain*in - p.a1*st[0] - p.a2*st[1])
	st[1] = st[0]
	st[0] = y

	return y
}

// SetResonance places a conjugate pole pair at freq Hz with the given
// radius, clamped to [0, 1). With normalize set, b0 is chosen so the gain
// at freq is exactly one.
func (p *TwoPole) SetResonance(freq, radius float64, normalize bool) {
	if !core.IsFinite(freq) || !core.IsFinite(radius) {
		return
	}

	freq = core.Clamp(freq, 0, 0.5*p.sampleRate)
	radius = core.Clamp(radius, 0, maxPole)
	p.freq, p.radius, p.normalize = freq, radius, normalize

	w := 2 * math.Pi * freq / p.sampleRate
	p.a2 = radius * radius
	p.a1 = -2 * radius * math.Cos(w)

	if normalize {
		re := 1 - radius + (p.a2-radius)*math.Cos(2*w)
		im := (p.a2 - radius) * math.Sin(2*w)
		p.b0 = math.Hypot(re, im)
	}
}

// SetCoefficients sets b0, a1 and a2 directly.
func (p *TwoPole) SetCoefficients(b0, a1, a2 float64) {
	if core.IsFinite(b0) && core.IsFinite(a1) && core.IsFinite(a2) {
		p.b0, p.a1, p.a2 = b0, a1, a2
	}
}

// Coefficients returns b0, a1 and a2.
func (p *TwoPole) Coefficients() (b0, a1, a2 float64) { return p.b0, p.a1, p.a2 }

// SetGain sets the linear input gain.
func (p *TwoPole) SetGain(gain float64) {
	if core.IsFinite(gain) {
		p.gain = gain
	}
}

// Gain returns the input gain.
func (p *TwoPole) Gain() float64 { return p.gain }

// SetSampleRate changes the rate and re-derives a resonance set through
// SetResonance.
func (p *TwoPole) SetSampleRate(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return
	}

	p.sampleRate = sampleRate
	if p.radius > 0 {
		p.SetResonance(p.freq, p.radius, p.normalize)
	}
}

// Response returns the complex frequency response at freq Hz, gain
// included.
func (p *TwoPole) Response(freq float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freq/p.sampleRate))
	den := 1 + complex(p.a1, 0)*z1 + complex(p.a2, 0)*z1*z1
	return complex(p.gain*p.b0, 0) / den
}

// Reset clears the output history.
func (p *TwoPole) Reset() { core.Zero(p.state) }
