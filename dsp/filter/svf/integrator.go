package svf

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
	defaultQ     = 0.7071067811865476
)

// integrator holds the pool-resident states and the g/k derived gains that
// SVF and LP share.
type integrator struct {
	pool   *mempool.Pool
	handle mempool.Handle
	state  []float64 // ic1eq, ic2eq

	sampleRate float64
	tan        *tables.TanTable

	freq float64
	q    float64
	g    float64 // tan(pi*fc/sr) before shelf warp
	k    float64

	a1, a2, a3 float64
}

func (s *integrator) init(pool *mempool.Pool, ctx *core.Context, freq, q float64) error {
	state, h, err := mempool.MakeSlice[float64](pool, 2)
	if err != nil {
		return fmt.Errorf("svf: state: %w", err)
	}

	s.pool = pool
	s.handle = h
	s.state = state
	s.sampleRate = ctx.SampleRate()
	s.tan = ctx.TanTable()
	s.freq = s.clampFreq(freq)
	if !core.IsFinite(q) {
		q = defaultQ
	}
	s.q = math.Max(q, minQ)
	s.g = prewarp(s.freq, s.sampleRate)
	s.k = 1 / s.q

	return nil
}

func (s *integrator) free() error {
	if s.pool == nil {
		return nil
	}

	err := s.pool.Free(s.handle)
	s.pool = nil
	s.state = nil

	return err
}

func (s *integrator) clampFreq(freq float64) float64 {
	if !core.IsFinite(freq) {
		freq = minFreqHz
	}

	return core.Clamp(freq, minFreqHz, maxFreqRatio*s.sampleRate)
}

func (s *integrator) setFreq(freq float64) {
	s.freq = s.clampFreq(freq)
	s.g = prewarp(s.freq, s.sampleRate)
}

// setFreqFast reads g from the context tangent table. A filter whose rate no
// longer matches the table falls back to the exact prewarp.
func (s *integrator) setFreqFast(note float64) {
	if s.tan == nil || s.tan.SampleRate() != s.sampleRate {
		s.setFreq(tables.MtoF(note))
		return
	}

	s.freq = s.clampFreq(tables.MtoF(note))
	s.g = s.tan.Lookup(note)
}

func (s *integrator) setQ(q float64) {
	if !core.IsFinite(q) {
		return
	}

	s.q = math.Max(q, minQ)
	s.k = 1 / s.q
}

func (s *integrator) setSampleRate(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return
	}

	s.sampleRate = sampleRate
	s.setFreq(s.freq)
}

// solve derives a1..a3 from the warped gain g and damping k.
func (s *integrator) solve(g float64) {
	s.a1 = 1 / (1 + g*(g+s.k))
	s.a2 = g * s.a1
	s.a3 = g * s.a2
}

// step advances the integrators and returns the band and low taps.
func (s *integrator) step(in float64) (band, low float64) {
	st := s.state
	v3 := in - st[1]
	band = s.a1*st[0] + s.a2*v3
	low = st[1] + s.a2*st[0] + s.a3*v3
	st[0] = core.FlushDenormals(2*band - st[0])
	st[1] = core.FlushDenormals(2*low - st[1])

	return band, low
}

func (s *integrator) reset() {
	core.Zero(s.state)
}

func prewarp(freq, sampleRate float64) float64 {
	return math.Tan(math.Pi * freq / sampleRate)
}

func sanitizeInput(x float64) float64 {
	if !core.IsFinite(x) {
		return 0
	}

	return x
}
