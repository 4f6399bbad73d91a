package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of a sine starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise returns uniform white noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Sweep returns an exponential sine sweep from f0 to f1 Hz.
func Sweep(f0, f1, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	if length == 0 {
		return out
	}
	ratio := math.Log(f1 / f0)
	duration := float64(length) / sampleRate
	for i := range out {
		tm := float64(i) / sampleRate
		phase := 2 * math.Pi * f0 * duration / ratio * (math.Exp(tm/duration*ratio) - 1)
		out[i] = amplitude * math.Sin(phase)
	}
	return out
}
