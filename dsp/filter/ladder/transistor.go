package ladder

import (
	"fmt"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
	"github.com/cwbudde/algo-leaf/dsp/tables"
)

const (
	maxResonance    = 4.0
	minDrive        = 0.1
	maxDrive        = 24.0
	maxOversampling = 8

	transistorStateLen = 5 // s0..s3, previous input
)

// Transistor is a four-stage transistor ladder lowpass. Resonance k runs
// from 0 to 4; the filter self-oscillates near the top of the range.
type Transistor struct {
	pool   *mempool.Pool
	handle mempool.Handle
	state  []float64

	sampleRate float64
	tan        *tables.TanTable

	freq         float64
	k            float64
	drive        float64
	overSampling int
	f            float64 // prewarped gain at the oversampled rate
}

// NewTransistor creates a transistor ladder from the context pool.
func NewTransistor(ctx *core.Context, freq, k float64) (*Transistor, error) {
	return NewTransistorToPool(ctx.Pool(), ctx, freq, k)
}

// NewTransistorToPool creates a transistor ladder from pool.
func NewTransistorToPool(pool *mempool.Pool, ctx *core.Context, freq, k float64) (*Transistor, error) {
	state, h, err := mempool.MakeSlice[float64](pool, transistorStateLen)
	if err != nil {
		return nil, fmt.Errorf("ladder: transistor state: %w", err)
	}

	t := &Transistor{
		pool:         pool,
		handle:       h,
		state:        state,
		sampleRate:   ctx.SampleRate(),
		tan:          ctx.TanTable(),
		drive:        1,
		overSampling: 1,
	}
	t.SetFreq(freq)
	t.SetQ(k)

	return t, nil
}

// Free returns the filter state to its pool.
func (t *Transistor) Free() error {
	if t.pool == nil {
		return nil
	}

	err := t.pool.Free(t.handle)
	t.pool = nil
	t.state = nil

	return err
}

// Freq returns the cutoff in Hz.
func (t *Transistor) Freq() float64 { return t.freq }

// Q returns the resonance k.
func (t *Transistor) Q() float64 { return t.k }

// Drive returns the input drive.
func (t *Transistor) Drive() float64 { return t.drive }

// Oversampling returns the number of sub-steps per sample.
func (t *Transistor) Oversampling() int { return t.overSampling }

// SetFreq sets the cutoff in Hz.
func (t *Transistor) SetFreq(freq float64) {
	t.freq = clampFreq(freq, t.sampleRate)
	t.f = prewarp(t.freq, t.sampleRate*float64(t.overSampling))
}

// SetFreqFast sets the cutoff from a fractional MIDI note. The table is
// only used without oversampling at the context rate.
func (t *Transistor) SetFreqFast(note float64) {
	if t.overSampling != 1 || t.tan == nil || t.tan.SampleRate() != t.sampleRate {
		t.SetFreq(tables.MtoF(note))
		return
	}

	t.freq = clampFreq(tables.MtoF(note), t.sampleRate)
	t.f = t.tan.Lookup(note)
}

// SetQ sets the resonance k, clamped to [0, 4].
func (t *Transistor) SetQ(k float64) {
	if !core.IsFinite(k) {
		return
	}

	t.k = core.Clamp(k, 0, maxResonance)
}

// SetDrive sets the input gain ahead of the first stage, clamped to [0.1, 24].
func (t *Transistor) SetDrive(drive float64) {
	if !core.IsFinite(drive) {
		return
	}

	t.drive = core.Clamp(drive, minDrive, maxDrive)
}

// SetOversampling sets the number of solver sub-steps per sample, 1 to 8.
func (t *Transistor) SetOversampling(factor int) {
	t.overSampling = min(max(factor, 1), maxOversampling)
	t.SetFreq(t.freq)
}

// SetSampleRate retunes the filter for a new rate.
func (t *Transistor) SetSampleRate(sampleRate float64) {
	if !validRate(sampleRate) {
		return
	}

	t.sampleRate = sampleRate
	t.SetFreq(t.freq)
}

// Reset clears stage states and the input history.
func (t *Transistor) Reset() { core.Zero(t.state) }

// Tick processes one sample.
func (t *Transistor) Tick(in float64) float64 {
	in = sanitizeInput(in) * t.drive
	prev := t.state[4]

	if t.overSampling == 1 {
		return sanitizeOutput(t.step(in))
	}

	delta := (in - prev) / float64(t.overSampling)

	var out float64
	for i := range t.overSampling {
		out = t.step(prev + delta*float64(i+1))
	}

	return sanitizeOutput(out)
}

func (t *Transistor) step(in float64) float64 {
	st := t.state
	s0, s1, s2, s3 := st[0], st[1], st[2], st[3]
	f, r := t.f, t.k

	ih := 0.5 * (in + st[4])
	st[4] = in

	t0 := tanhXdX(ih - r*s3)
	t1 := tanhXdX(s0)
	t2 := tanhXdX(s1)
	t3 := tanhXdX(s2)
	t4 := tanhXdX(s3)

	// stage gains: yi = gi*(si + f*ti*y(i-1)), y(-1) = ih - r*y3
	g0 := 1 / guard(1+f*t1)
	g1 := 1 / guard(1+f*t2)
	g2 := 1 / guard(1+f*t3)
	g3 := 1 / guard(1+f*t4)

	f3 := f * t3 * g3
	f2 := f * t2 * g2 * f3
	f1 := f * t1 * g1 * f2
	f0 := f * t0 * g0 * f1

	y3 := (g3*s3 + f3*g2*s2 + f2*g1*s1 + f1*g0*s0 + f0*ih) / guard(1+r*f0)
	y0 := g0 * (s0 + f*t0*(ih-r*y3))
	y1 := g1 * (s1 + f*t1*y0)
	y2 := g2 * (s2 + f*t2*y1)

	st[0] = clipState(2*y0 - s0)
	st[1] = clipState(2*y1 - s1)
	st[2] = clipState(2*y2 - s2)
	st[3] = clipState(2*y3 - s3)

	return y3
}
