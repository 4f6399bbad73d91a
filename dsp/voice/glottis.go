package voice

import (
	"math"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/tables"
)

const (
	minGlottisFreq = 20.0
	maxGlottisFreq = 2000.0
	minRd          = 0.5
	maxRd          = 2.7
)

// Shape holds the LF-model parameters of the current glottal period.
type Shape struct {
	Rd, Ra, Rk, Rg float64
	Ta, Tp, Te     float64

	Epsilon, Shift, Delta float64
	Alpha, E0, Omega      float64
}

// Glottis generates the glottal excitation with the Liljencrants-Fant
// model. The waveform shape is derived once per period from the frequency
// and tenseness in force at the period boundary.
type Glottis struct {
	oldFreq, newFreq           float64
	oldTenseness, newTenseness float64
	freq, tenseness            float64

	timeInWaveform float64
	waveformLength float64
	cycles         int

	shape Shape
	t     float64 // seconds per sample

	noise func() float64
}

// NewGlottis creates a glottis at freq Hz with the given tenseness. Its
// aspiration noise is drawn from the context random source.
func NewGlottis(ctx *core.Context, freq, tenseness float64) *Glottis {
	random := ctx.Random
	g := &Glottis{
		t:     ctx.InvSampleRate(),
		noise: func() float64 { return 2*random() - 1 },
	}

	g.newFreq = clampGlottisFreq(freq, 140)
	g.oldFreq, g.freq = g.newFreq, g.newFreq
	g.newTenseness = clampTenseness(tenseness, 0.6)
	g.oldTenseness, g.tenseness = g.newTenseness, g.newTenseness
	g.setupWaveform()

	return g
}

// Compute returns the next glottal sample. lambda in [0, 1] is the
// position within the current control block; frequency and tenseness are
// interpolated from their values at the last FinishBlock towards the
// latest setter values.
func (g *Glottis) Compute(lambda float64) float64 {
	lambda = core.Clamp(lambda, 0, 1)
	g.freq = g.oldFreq*(1-lambda) + g.newFreq*lambda
	g.tenseness = g.oldTenseness*(1-lambda) + g.newTenseness*lambda

	g.timeInWaveform += g.t
	if g.timeInWaveform >= g.waveformLength-0.5*g.t {
		g.timeInWaveform -= g.waveformLength
		g.cycles++
		g.setupWaveform()
	}

	s := &g.shape
	t := g.timeInWaveform / g.waveformLength

	var out float64
	if t > s.Te {
		out = (-math.Exp(-s.Epsilon*(t-s.Te)) + s.Shift) / s.Delta
	} else {
		out = s.E0 * math.Exp(s.Alpha*t) * math.Sin(s.Omega*t)
	}

	aspiration := (1 - math.Sqrt(g.tenseness)) * g.NoiseModulator() * 0.2 * g.noise()

	return core.Sanitize(out + aspiration)
}

// FinishBlock commits the latest frequency and tenseness as the start
// values of the next block.
func (g *Glottis) FinishBlock() {
	g.oldFreq = g.newFreq
	g.oldTenseness = g.newTenseness
}

// NoiseModulator returns the turbulence gain for the current phase: noise
// is louder while the glottis is open and for lax voices.
func (g *Glottis) NoiseModulator() float64 {
	voiced := 0.1 + 0.2*math.Max(0, tables.Sin(g.timeInWaveform/g.waveformLength))
	return g.tenseness*voiced + (1-g.tenseness)*0.3
}

// SetFreq sets the fundamental in Hz, clamped to [20, 2000].
func (g *Glottis) SetFreq(freq float64) {
	g.newFreq = clampGlottisFreq(freq, g.newFreq)
}

// SetTenseness sets the vocal tenseness, clamped to [0, 1].
func (g *Glottis) SetTenseness(tenseness float64) {
	g.newTenseness = clampTenseness(tenseness, g.newTenseness)
}

// SetNoise replaces the aspiration noise source. It must return values in
// roughly [-1, 1].
func (g *Glottis) SetNoise(noise func() float64) {
	if noise != nil {
		g.noise = noise
	}
}

// SetSampleRate changes the sample period. The phase is kept.
func (g *Glottis) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
		g.t = 1 / sampleRate
	}
}

// Freq returns the target fundamental in Hz.
func (g *Glottis) Freq() float64 { return g.newFreq }

// Tenseness returns the target tenseness.
func (g *Glottis) Tenseness() float64 { return g.newTenseness }

// TimeInWaveform returns the elapsed time in the current period, seconds.
func (g *Glottis) TimeInWaveform() float64 { return g.timeInWaveform }

// WaveformLength returns the current period in seconds.
func (g *Glottis) WaveformLength() float64 { return g.waveformLength }

// Cycles returns the number of completed periods.
func (g *Glottis) Cycles() int { return g.cycles }

// Shape returns the LF parameters of the current period.
func (g *Glottis) Shape() Shape { return g.shape }

// Reset restarts the waveform at phase zero.
func (g *Glottis) Reset() {
	g.timeInWaveform = 0
	g.cycles = 0
	g.FinishBlock()
	g.freq, g.tenseness = g.newFreq, g.newTenseness
	g.setupWaveform()
}

func (g *Glottis) setupWaveform() {
	g.waveformLength = 1 / g.freq
	g.shape = lfShape(3 * (1 - g.tenseness))
}

// lfShape solves the LF parameter cascade for rd, clamped to the model's
// valid range. Times are normalized to one period.
func lfShape(rd float64) Shape {
	s := Shape{Rd: core.Clamp(rd, minRd, maxRd)}

	s.Ra = -0.01 + 0.048*s.Rd
	s.Rk = 0.224 + 0.118*s.Rd
	s.Rg = (s.Rk / 4) * (0.5 + 1.2*s.Rk) / (0.11*s.Rd - s.Ra*(0.5+1.2*s.Rk))

	s.Ta = s.Ra
	s.Tp = 1 / (2 * s.Rg)
	s.Te = s.Tp + s.Tp*s.Rk

	s.Epsilon = 1 / s.Ta
	s.Shift = math.Exp(-s.Epsilon * (1 - s.Te))
	s.Delta = 1 - s.Shift

	rhsIntegral := ((1/s.Epsilon)*(s.Shift-1) + (1-s.Te)*s.Shift) / s.Delta
	lowerIntegral := -(s.Te-s.Tp)/2 + rhsIntegral
	upperIntegral := -lowerIntegral

	s.Omega = math.Pi / s.Tp
	sinTe := math.Sin(s.Omega * s.Te)
	y := -math.Pi * sinTe * upperIntegral / (s.Tp * 2)
	if !(y > 0) {
		y = epsilon
	}
	s.Alpha = math.Log(y) / (s.Tp/2 - s.Te)
	s.E0 = -1 / (sinTe * math.Exp(s.Alpha*s.Te))

	return s
}

func clampGlottisFreq(freq, fallback float64) float64 {
	if !core.IsFinite(freq) {
		return fallback
	}
	return core.Clamp(freq, minGlottisFreq, maxGlottisFreq)
}

func clampTenseness(tenseness, fallback float64) float64 {
	if !core.IsFinite(tenseness) {
		return fallback
	}
	return core.Clamp(tenseness, 0, 1)
}
