package biquad

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
)

// Coefficients holds the transfer function coefficients for a single
// second-order section. a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Passthrough returns unity-gain coefficients.
func Passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// BiQuad is a single biquad with gain and pool-resident delay state.
type BiQuad struct {
	Coefficients

	pool   *mempool.Pool
	handle mempool.Handle
	state  []float64 // d0, d1

	sampleRate float64
	gain       float64
}

// New creates a passthrough biquad from the context pool.
func New(ctx *core.Context) (*BiQuad, error) {
	return NewToPool(ctx.Pool(), ctx)
}

// NewToPool creates a passthrough biquad from pool.
func NewToPool(pool *mempool.Pool, ctx *core.Context) (*BiQuad, error) {
	state, h, err := mempool.MakeSlice[float64](pool, 2)
	if err != nil {
		return nil, fmt.Errorf("biquad: state: %w", err)
	}

	return &BiQuad{
		Coefficients: Passthrough(),
		pool:         pool,
		handle:       h,
		state:        state,
		sampleRate:   ctx.SampleRate(),
		gain:         1,
	}, nil
}

// Free returns the delay state to its pool.
func (b *BiQuad) Free() error {
	if b.pool == nil {
		return nil
	}

	err := b.pool.Free(b.handle)
	b.pool = nil
	b.state = nil

	return err
}

// Tick filters one sample.
func (b *BiQuad) Tick(in float64) float64 {
	if !core.IsFinite(in) {
		in = 0
	}

	x := b.gain * in
	st := b.state
	y := b.B0*x + st[0]
	st[0] = core.FlushDenormals(b.B1*x - b.A1*y + st[1])
	st[1] = core.FlushDenormals(b.B2*x - b.A2*y)

	return y
}

// ProcessBlock filters buf in place.
func (b *BiQuad) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = b.Tick(x)
	}
}

// SampleRate returns the rate used by the frequency based setters.
func (b *BiQuad) SampleRate() float64 { return b.sampleRate }

// Gain returns the input gain.
func (b *BiQuad) Gain() float64 { return b.gain }

// SetCoefficients replaces all five coefficients. State is kept.
func (b *BiQuad) SetCoefficients(c Coefficients) {
	b.Coefficients = c
}

// SetGain sets the linear input gain.
func (b *BiQuad) SetGain(gain float64) {
	if core.IsFinite(gain) {
		b.gain = gain
	}
}

// SetResonance places a conjugate pole pair at freq Hz with the given
// radius (clamped to [0, 1) for stability). With normalize set, zeros at
// DC and Nyquist scale the peak gain to roughly unity.
func (b *BiQuad) SetResonance(freq, radius float64, normalize bool) {
	radius = core.Clamp(radius, 0, maxRadius)
	b.A2 = radius * radius
	b.A1 = -2 * radius * math.Cos(2*math.Pi*b.clampFreq(freq)/b.sampleRate)

	if normalize {
		b.B0 = 0.5 - 0.5*b.A2
		b.B1 = 0
		b.B2 = -b.B0
	}
}

// SetNotch places a conjugate zero pair at freq Hz with the given radius.
func (b *BiQuad) SetNotch(freq, radius float64) {
	radius = math.Max(radius, 0)
	b.B0 = 1
	b.B1 = -2 * radius * math.Cos(2*math.Pi*b.clampFreq(freq)/b.sampleRate)
	b.B2 = radius * radius
}

// SetEqualGainZeros places zeros at DC and Nyquist.
func (b *BiQuad) SetEqualGainZeros() {
	b.B0 = 1
	b.B1 = 0
	b.B2 = -1
}

// SetSampleRate changes the rate used by later frequency based setters.
// Existing coefficients are not recomputed.
func (b *BiQuad) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
		b.sampleRate = sampleRate
	}
}

// Reset clears the delay line.
func (b *BiQuad) Reset() { core.Zero(b.state) }

// State returns the current delay-line state [d0, d1].
func (b *BiQuad) State() [2]float64 {
	return [2]float64{b.state[0], b.state[1]}
}

// SetState restores a previously saved delay-line state.
func (b *BiQuad) SetState(state [2]float64) {
	b.state[0] = state[0]
	b.state[1] = state[1]
}

const maxRadius = 0.999999

func (b *BiQuad) clampFreq(freq float64) float64 {
	if !core.IsFinite(freq) {
		return 0
	}

	return core.Clamp(freq, 0, 0.5*b.sampleRate)
}
