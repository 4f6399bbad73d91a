package ladder

import (
	"fmt"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
	"github.com/cwbudde/algo-leaf/dsp/tables"
)

const (
	maxDiodeQ = 10.0

	diodeStateLen = 5 // s0..s3, previous input
)

// Diode is a four-stage diode ladder lowpass with resonance.
type Diode struct {
	pool   *mempool.Pool
	handle mempool.Handle
	state  []float64

	sampleRate float64
	tan        *tables.TanTable

	freq float64
	q    float64
	f    float64 // prewarped gain
	r    float64 // feedback, 7q + 0.5
}

// NewDiode creates a diode ladder from the context pool.
func NewDiode(ctx *core.Context, freq, q float64) (*Diode, error) {
	return NewDiodeToPool(ctx.Pool(), ctx, freq, q)
}

// NewDiodeToPool creates a diode ladder from pool.
func NewDiodeToPool(pool *mempool.Pool, ctx *core.Context, freq, q float64) (*Diode, error) {
	state, h, err := mempool.MakeSlice[float64](pool, diodeStateLen)
	if err != nil {
		return nil, fmt.Errorf("ladder: diode state: %w", err)
	}

	d := &Diode{
		pool:       pool,
		handle:     h,
		state:      state,
		sampleRate: ctx.SampleRate(),
		tan:        ctx.TanTable(),
	}
	d.SetFreq(freq)
	d.SetQ(q)

	return d, nil
}

// Free returns the filter state to its pool.
func (d *Diode) Free() error {
	if d.pool == nil {
		return nil
	}

	err := d.pool.Free(d.handle)
	d.pool = nil
	d.state = nil

	return err
}

// Freq returns the cutoff in Hz.
func (d *Diode) Freq() float64 { return d.freq }

// Q returns the resonance setting.
func (d *Diode) Q() float64 { return d.q }

// Feedback returns the loop feedback derived from Q.
func (d *Diode) Feedback() float64 { return d.r }

// SetFreq sets the cutoff in Hz.
func (d *Diode) SetFreq(freq float64) {
	d.freq = clampFreq(freq, d.sampleRate)
	d.f = prewarp(d.freq, d.sampleRate)
}

// SetFreqFast sets the cutoff from a fractional MIDI note using the context
// tangent table.
func (d *Diode) SetFreqFast(note float64) {
	if d.tan == nil || d.tan.SampleRate() != d.sampleRate {
		d.SetFreq(tables.MtoF(note))
		return
	}

	d.freq = clampFreq(tables.MtoF(note), d.sampleRate)
	d.f = d.tan.Lookup(note)
}

// SetQ sets the resonance in [0, 10]. The loop feedback is 7q + 0.5.
func (d *Diode) SetQ(q float64) {
	if !core.IsFinite(q) {
		return
	}

	d.q = core.Clamp(q, 0, maxDiodeQ)
	d.r = 7*d.q + 0.5
}

// SetSampleRate retunes the filter for a new rate.
func (d *Diode) SetSampleRate(sampleRate float64) {
	if !validRate(sampleRate) {
		return
	}

	d.sampleRate = sampleRate
	d.SetFreq(d.freq)
}

// Reset clears stage states and the input history.
func (d *Diode) Reset() { core.Zero(d.state) }

// Tick processes one sample.
func (d *Diode) Tick(in float64) float64 {
	in = sanitizeInput(in)
	st := d.state
	s0, s1, s2, s3 := st[0], st[1], st[2], st[3]
	f, r := d.f, d.r

	// half-sample delayed input
	ih := 0.5 * (in + st[4])
	st[4] = in

	t0 := tanhXdX(ih - r*s3)
	t1 := tanhXdX(s0 - s1)
	t2 := tanhXdX(s1 - s2)
	t3 := tanhXdX(s2 - s3)
	t4 := tanhXdX(s3)

	ft0, ft1, ft2, ft3, ft4 := f*t0, f*t1, f*t2, f*t3, f*t4

	// eq0: (1+ft1)y0 - ft1 y1 + ft0 r y3     = s0 + ft0 ih
	// eq1: -ft1 y0 + (1+ft1+ft2)y1 - ft2 y2  = s1
	// eq2: -ft2 y1 + (1+ft2+ft3)y2 - ft3 y3  = s2
	// eq3: -ft3 y2 + (1+ft3+ft4)y3           = s3
	//
	// Sweep forward keeping yi = Ai + Bi*y(i+1) + Ci*y3.
	d0 := guard(1 + ft1)
	a0 := (s0 + ft0*ih) / d0
	b0 := ft1 / d0
	c0 := -ft0 * r / d0

	d1 := guard(1 + ft1 + ft2 - ft1*b0)
	a1 := (s1 + ft1*a0) / d1
	b1 := ft2 / d1
	c1 := ft1 * c0 / d1

	d2 := guard(1 + ft2 + ft3 - ft2*b1)
	a2 := (s2 + ft2*a1) / d2
	c2 := (ft3 + ft2*c1) / d2

	y3 := (s3 + ft3*a2) / guard(1+ft3+ft4-ft3*c2)
	y2 := a2 + c2*y3
	y1 := a1 + b1*y2 + c1*y3
	y0 := a0 + b0*y1 + c0*y3

	st[0] = clipState(2*y0 - s0)
	st[1] = clipState(2*y1 - s1)
	st[2] = clipState(2*y2 - s2)
	st[3] = clipState(2*y3 - s3)

	return sanitizeOutput(y3)
}
