package svf

import (
	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
)

// State is a copy of the two integrator states.
type State struct {
	IC1 float64
	IC2 float64
}

// SVF is a multimode state-variable filter.
type SVF struct {
	integrator

	typ    Type
	gainDB float64
	amp    float64
	coeffs Coeffs
}

// New creates an SVF whose state is drawn from the context pool.
func New(ctx *core.Context, typ Type, freq, q float64) (*SVF, error) {
	return NewToPool(ctx.Pool(), ctx, typ, freq, q)
}

// NewToPool creates an SVF whose state is drawn from pool.
func NewToPool(pool *mempool.Pool, ctx *core.Context, typ Type, freq, q float64) (*SVF, error) {
	f := &SVF{typ: clampType(typ), amp: 1}
	if err := f.init(pool, ctx, freq, q); err != nil {
		return nil, err
	}

	f.update()

	return f, nil
}

// Free returns the filter state to its pool.
func (f *SVF) Free() error { return f.free() }

// Tick processes one sample.
func (f *SVF) Tick(in float64) float64 {
	in = sanitizeInput(in)
	band, low := f.step(in)

	return f.coeffs.CH*in + f.coeffs.CB*band + f.coeffs.CL*low
}

// Type returns the current filter type.
func (f *SVF) Type() Type { return f.typ }

// Freq returns the cutoff in Hz after clamping.
func (f *SVF) Freq() float64 { return f.freq }

// Q returns the resonance.
func (f *SVF) Q() float64 { return f.q }

// Coeffs returns the active tap mix.
func (f *SVF) Coeffs() Coeffs { return f.coeffs }

// SetFreq sets the cutoff in Hz.
func (f *SVF) SetFreq(freq float64) {
	f.setFreq(freq)
	f.update()
}

// SetFreqFast sets the cutoff from a fractional MIDI note using the context
// tangent table.
func (f *SVF) SetFreqFast(note float64) {
	f.setFreqFast(note)
	f.update()
}

// SetQ sets the resonance; values below 0.01 are clamped.
func (f *SVF) SetQ(q float64) {
	f.setQ(q)
	f.update()
}

// SetFreqAndQ sets cutoff and resonance with a single recompute.
func (f *SVF) SetFreqAndQ(freq, q float64) {
	f.setFreq(freq)
	f.setQ(q)
	f.update()
}

// SetType switches the tap mix. Integrator states are kept.
func (f *SVF) SetType(typ Type) {
	f.typ = clampType(typ)
	f.update()
}

// SetGain sets the shelf gain in dB. Only shelf types use it.
func (f *SVF) SetGain(gainDB float64) {
	if !core.IsFinite(gainDB) {
		return
	}

	f.gainDB = gainDB
	f.amp = ShelfAmplitude(gainDB)
	f.update()
}

// SetSampleRate retunes the filter for a new rate.
func (f *SVF) SetSampleRate(sampleRate float64) {
	f.setSampleRate(sampleRate)
	f.update()
}

// Reset clears the integrator states.
func (f *SVF) Reset() { f.reset() }

// State returns a copy of the integrator states.
func (f *SVF) State() State {
	return State{IC1: f.state[0], IC2: f.state[1]}
}

func (f *SVF) update() {
	f.solve(shelfWarp(f.typ, f.g, f.amp))
	f.coeffs = CoefficientsFor(f.typ, f.k, f.amp)
}

// LP is a lowpass-only SVF that skips the tap mix.
type LP struct {
	integrator
}

// NewLP creates a lowpass SVF from the context pool.
func NewLP(ctx *core.Context, freq, q float64) (*LP, error) {
	return NewLPToPool(ctx.Pool(), ctx, freq, q)
}

// NewLPToPool creates a lowpass SVF from pool.
func NewLPToPool(pool *mempool.Pool, ctx *core.Context, freq, q float64) (*LP, error) {
	f := &LP{}
	if err := f.init(pool, ctx, freq, q); err != nil {
		return nil, err
	}

	f.solve(f.g)

	return f, nil
}

// Free returns the filter state to its pool.
func (f *LP) Free() error { return f.free() }

// Tick processes one sample.
func (f *LP) Tick(in float64) float64 {
	_, low := f.step(sanitizeInput(in))
	return low
}

// SetFreq sets the cutoff in Hz.
func (f *LP) SetFreq(freq float64) {
	f.setFreq(freq)
	f.solve(f.g)
}

// SetFreqFast sets the cutoff from a fractional MIDI note.
func (f *LP) SetFreqFast(note float64) {
	f.setFreqFast(note)
	f.solve(f.g)
}

// SetQ sets the resonance.
func (f *LP) SetQ(q float64) {
	f.setQ(q)
	f.solve(f.g)
}

// SetSampleRate retunes the filter for a new rate.
func (f *LP) SetSampleRate(sampleRate float64) {
	f.setSampleRate(sampleRate)
	f.solve(f.g)
}

// Reset clears the integrator states.
func (f *LP) Reset() { f.reset() }
