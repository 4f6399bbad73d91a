package vz

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
	"github.com/cwbudde/algo-leaf/dsp/tables"
)

const (
	minFreqHz    = 0.001
	maxFreqRatio = 0.4999
	minQ         = 0.01
	minBandwidth = 0.01
	maxBandwidth = 10.0
	minGain      = 1e-6
	eps          = 1e-12

	defaultQ = 0.7071067811865476
)

// Filter is a VZ multimode filter. The two integrator states live in pool
// memory.
type Filter struct {
	pool   *mempool.Pool
	handle mempool.Handle
	state  []float64 // s1, s2

	sampleRate float64
	tan        *tables.TanTable

	typ       Type
	freq      float64
	g         float64
	bandwidth float64
	gain      float64
	q         float64
	morph     float64

	coeffs Coeffs
}

// New creates a filter from the context pool. bandwidth is in octaves.
func New(ctx *core.Context, typ Type, freq, bandwidth float64) (*Filter, error) {
	return NewToPool(ctx.Pool(), ctx, typ, freq, bandwidth)
}

// NewToPool creates a filter from pool.
func NewToPool(pool *mempool.Pool, ctx *core.Context, typ Type, freq, bandwidth float64) (*Filter, error) {
	state, h, err := mempool.MakeSlice[float64](pool, 2)
	if err != nil {
		return nil, fmt.Errorf("vz: state: %w", err)
	}

	f := &Filter{
		pool:       pool,
		handle:     h,
		state:      state,
		sampleRate: ctx.SampleRate(),
		tan:        ctx.TanTable(),
		typ:        clampType(typ),
		bandwidth:  clampBandwidth(bandwidth),
		gain:       1,
		q:          defaultQ,
	}
	f.setFreq(freq)
	f.update()

	return f, nil
}

// Free returns the filter state to its pool.
func (f *Filter) Free() error {
	if f.pool == nil {
		return nil
	}

	err := f.pool.Free(f.handle)
	f.pool = nil
	f.state = nil

	return err
}

// Tick processes one sample.
func (f *Filter) Tick(in float64) float64 {
	if !core.IsFinite(in) {
		in = 0
	}

	c := &f.coeffs
	s := f.state

	yH := (in - (c.R2+c.G)*s[0] - s[1]) * c.H

	v1 := c.G * yH
	yB := v1 + s[0]
	s[0] = core.FlushDenormals(v1 + yB)

	v2 := c.G * yB
	yL := v2 + s[1]
	s[1] = core.FlushDenormals(v2 + yL)

	return c.CL*yL + c.CB*yB + c.CH*yH
}

// Type returns the current response type.
func (f *Filter) Type() Type { return f.typ }

// Freq returns the cutoff after clamping.
func (f *Filter) Freq() float64 { return f.freq }

// Bandwidth returns the bandwidth in octaves.
func (f *Filter) Bandwidth() float64 { return f.bandwidth }

// Gain returns the linear gain used by bell and shelves.
func (f *Filter) Gain() float64 { return f.gain }

// Coeffs returns the active coefficients.
func (f *Filter) Coeffs() Coeffs { return f.coeffs }

// SetType switches the response. States are kept.
func (f *Filter) SetType(typ Type) {
	f.typ = clampType(typ)
	f.update()
}

// SetFreq sets the cutoff or center frequency in Hz.
func (f *Filter) SetFreq(freq float64) {
	f.setFreq(freq)
	f.update()
}

// SetFreqFast sets the cutoff from a fractional MIDI note using the context
// tangent table.
func (f *Filter) SetFreqFast(note float64) {
	if f.tan == nil || f.tan.SampleRate() != f.sampleRate {
		f.SetFreq(tables.MtoF(note))
		return
	}

	f.freq = f.clampFreq(tables.MtoF(note))
	f.g = f.tan.Lookup(note)
	f.update()
}

// SetBandwidth sets the bandwidth in octaves.
func (f *Filter) SetBandwidth(bandwidth float64) {
	f.bandwidth = clampBandwidth(bandwidth)
	f.update()
}

// SetFreqAndBandwidth sets both with a single recompute.
func (f *Filter) SetFreqAndBandwidth(freq, bandwidth float64) {
	f.setFreq(freq)
	f.bandwidth = clampBandwidth(bandwidth)
	f.update()
}

// SetQ sets the resonance of the Q based types.
func (f *Filter) SetQ(q float64) {
	if !core.IsFinite(q) {
		return
	}

	f.q = math.Max(q, minQ)
	f.update()
}

// SetGain sets the bell or shelf gain in dB.
func (f *Filter) SetGain(gainDB float64) {
	f.SetGainLinear(core.DBToLinear(gainDB))
}

// SetGainLinear sets the bell or shelf gain as a linear factor.
func (f *Filter) SetGainLinear(gain float64) {
	if !core.IsFinite(gain) {
		return
	}

	f.gain = math.Max(gain, minGain)
	f.update()
}

// SetMorph moves the Morph response from lowpass (0) through bandpass (0.5)
// to highpass (1).
func (f *Filter) SetMorph(morph float64) {
	if !core.IsFinite(morph) {
		return
	}

	f.morph = clamp01(morph)
	f.update()
}

// SetSampleRate retunes the filter for a new rate.
func (f *Filter) SetSampleRate(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return
	}

	f.sampleRate = sampleRate
	f.SetFreq(f.freq)
}

// Reset clears both integrator states.
func (f *Filter) Reset() { core.Zero(f.state) }

func (f *Filter) setFreq(freq float64) {
	f.freq = f.clampFreq(freq)
	f.g = math.Tan(math.Pi * f.freq / f.sampleRate)
}

func (f *Filter) clampFreq(freq float64) float64 {
	if !core.IsFinite(freq) {
		freq = minFreqHz
	}

	return core.Clamp(freq, minFreqHz, maxFreqRatio*f.sampleRate)
}

func (f *Filter) update() {
	f.coeffs = CoefficientsFor(f.typ, Params{
		G:          f.g,
		Freq:       f.freq,
		SampleRate: f.sampleRate,
		Bandwidth:  f.bandwidth,
		Gain:       f.gain,
		Q:          f.q,
		Morph:      f.morph,
	})
}

func clampBandwidth(bandwidth float64) float64 {
	if !core.IsFinite(bandwidth) {
		return 1
	}

	return core.Clamp(bandwidth, minBandwidth, maxBandwidth)
}
