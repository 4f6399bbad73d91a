package pole

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
)

// OnePole is a single-pole recursive filter.
type OnePole struct {
	pool   *mempool.Pool
	handle mempool.Handle
	state  []float64 // y[n-1]

	b0, a1     float64
	gain       float64
	sampleRate float64
}

// New creates a one-pole lowpass at freq Hz from the context pool.
func New(ctx *core.Context, freq float64) (*OnePole, error) {
	return NewToPool(ctx.Pool(), ctx, freq)
}

// NewToPool creates a one-pole lowpass at freq Hz from pool.
func NewToPool(pool *mempool.Pool, ctx *core.Context, freq float64) (*OnePole, error) {
	state, h, err := mempool.MakeSlice[float64](pool, 1)
	if err != nil {
		return nil, fmt.Errorf("pole: one-pole state: %w", err)
	}

	p := &OnePole{
		pool:       pool,
		handle:     h,
		state:      state,
		gain:       1,
		sampleRate: ctx.SampleRate(),
	}
	p.SetFreq(freq)

	return p, nil
}

// Free returns the state to its pool.
func (p *OnePole) Free() error {
	if p.pool == nil {
		return nil
	}

	err := p.pool.Free(p.handle)
	p.pool = nil
	p.state = nil

	return err
}

// Tick filters one sample.
func (p *OnePole) Tick(in float64) float64 {
	if !core.IsFinite(in) {
		in = 0
	}

	y := core.FlushDenormals(p.b0*p.gain*in - p.a1*p.state[0])
	p.state[0] = y

	return y
}

// SetPole places the pole at the real position pole, clamped inside the
// unit circle. b0 is chosen for unity gain at DC (pole > 0) or at Nyquist
// (pole <= 0).
func (p *OnePole) SetPole(pole float64) {
	if !core.IsFinite(pole) {
		return
	}

	pole = core.Clamp(pole, -maxPole, maxPole)
	if pole > 0 {
		p.b0 = 1 - pole
	} else {
		p.b0 = 1 + pole
	}
	p.a1 = -pole
}

// SetFreq sets a lowpass smoothing coefficient from freq Hz. Frequencies at
// or above sampleRate/(2*pi) give b0 = 1, a passthrough.
func (p *OnePole) SetFreq(freq float64) {
	if !core.IsFinite(freq) {
		return
	}

	p.b0 = core.Clamp(freq*2*math.Pi/p.sampleRate, 0, 1)
	p.a1 = p.b0 - 1
}

// SetCoefficients sets b0 and a1 directly.
func (p *OnePole) SetCoefficients(b0, a1 float64) {
	if core.IsFinite(b0) && core.IsFinite(a1) {
		p.b0 = b0
		p.a1 = a1
	}
}

// Coefficients returns b0 and a1.
func (p *OnePole) Coefficients() (b0, a1 float64) { return p.b0, p.a1 }

// SetGain sets the linear input gain.
func (p *OnePole) SetGain(gain float64) {
	if core.IsFinite(gain) {
		p.gain = gain
	}
}

// Gain returns the input gain.
func (p *OnePole) Gain() float64 { return p.gain }

// SetSampleRate changes the rate used by SetFreq. Coefficients are kept.
func (p *OnePole) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
		p.sampleRate = sampleRate
	}
}

// Response returns the complex frequency response at freq Hz, gain
// included.
func (p *OnePole) Response(freq float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freq/p.sampleRate))
	return complex(p.gain*p.b0, 0) / (1 + complex(p.a1, 0)*z1)
}

// Reset clears the output history.
func (p *OnePole) Reset() { core.Zero(p.state) }

// maxPole keeps |pole| strictly below 1.
const maxPole = 0.999999
