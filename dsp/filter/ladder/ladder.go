package ladder

import (
	"math"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/tables"
)

const (
	minFreqHz    = 1.0
	maxFreqRatio = 0.4999
	stateLimit   = 8.0
	eps          = 1e-9
)

// tanhXdX approximates tanh(x)/x. The result stays in (1/15, 1] for every
// finite x, so linearized gains never reach zero.
func tanhXdX(x float64) float64 {
	a := x * x
	return ((a+105)*a + 945) / ((15*a+420)*a + 945)
}

// clipState saturates an integrator state smoothly into (-stateLimit, stateLimit).
func clipState(x float64) float64 {
	return stateLimit * tables.Tanh(x/stateLimit)
}

// guard pushes a denominator at least eps away from zero, keeping its sign.
func guard(d float64) float64 {
	if d >= 0 && d < eps {
		return eps
	}

	if d < 0 && d > -eps {
		return -eps
	}

	return d
}

func sanitizeInput(x float64) float64 {
	if !core.IsFinite(x) {
		return 0
	}

	return x
}

func sanitizeOutput(x float64) float64 {
	if !core.IsFinite(x) {
		return 0
	}

	return x
}

func clampFreq(freq, sampleRate float64) float64 {
	if !core.IsFinite(freq) {
		freq = minFreqHz
	}

	return core.Clamp(freq, minFreqHz, maxFreqRatio*sampleRate)
}

func prewarp(freq, sampleRate float64) float64 {
	return math.Tan(math.Pi * freq / sampleRate)
}

func validRate(sampleRate float64) bool {
	return sampleRate > 0 && !math.IsInf(sampleRate, 0)
}
