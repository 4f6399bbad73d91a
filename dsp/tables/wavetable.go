package tables

import (
	"math"
	"sync"
)

// Shape selects a band-limited waveform family.
type Shape int

const (
	// Sawtooth ramps from -1 up to 1 and drops at the cycle boundary.
	Sawtooth Shape = iota
	// Triangle uses odd harmonics with 1/k^2 rolloff.
	Triangle
	// Square uses odd harmonics with 1/k rolloff.
	Square
)

const (
	// WavetableSize is the number of samples per stored cycle.
	WavetableSize = 2048
	// WavetableSets is the number of band-limited sets per shape.
	WavetableSets = 11
	// wavetableDesignRate fixes the Nyquist limit the sets are built for.
	wavetableDesignRate = 48000.0
)

// BaseFrequencies lists the highest fundamental each set is alias-free for
// at the design rate, in ascending order.
var BaseFrequencies = [WavetableSets]float64{20, 40, 80, 160, 320, 640, 1280, 2560, 5120, 10240, 20480}

var (
	wavetableOnce sync.Once
	wavetables    [3][WavetableSets][WavetableSize + 1]float64
)

// buildWavetables sums harmonics once per sample position and snapshots the
// running sum whenever a set's harmonic limit is reached.
func buildWavetables() {
	var limits [WavetableSets]int
	for s, base := range BaseFrequencies {
		limits[s] = max(1, int(wavetableDesignRate/2/base))
	}

	maxHarmonic := limits[0]

	for i := range WavetableSize {
		x := 2 * math.Pi * float64(i) / WavetableSize

		var saw, tri, sq float64
		next := WavetableSets - 1
		for k := 1; k <= maxHarmonic; k++ {
			s := math.Sin(float64(k) * x)
			saw -= 2 * s / (math.Pi * float64(k))
			if k%2 == 1 {
				sign := 1.0
				if (k/2)%2 == 1 {
					sign = -1
				}
				tri += sign * 8 * s / (math.Pi * math.Pi * float64(k*k))
				sq += 4 * s / (math.Pi * float64(k))
			}

			for next >= 0 && limits[next] == k {
				wavetables[Sawtooth][next][i] = saw
				wavetables[Triangle][next][i] = tri
				wavetables[Square][next][i] = sq
				next--
			}
		}
	}

	for sh := range wavetables {
		for s := range wavetables[sh] {
			wavetables[sh][s][WavetableSize] = wavetables[sh][s][0]
		}
	}
}

// Wavetable returns the cycle of shape that is alias-free for freq Hz. The
// slice has WavetableSize+1 entries; the last repeats the first.
func Wavetable(shape Shape, freq float64) []float64 {
	wavetableOnce.Do(buildWavetables)

	shape = clampShape(shape)
	set := WavetableSets - 1
	for s, base := range BaseFrequencies {
		if freq <= base {
			set = s
			break
		}
	}

	return wavetables[shape][set][:]
}

// LookupWavetable reads shape at phase (in cycles) using the set selected
// for freq.
func LookupWavetable(shape Shape, freq, phase float64) float64 {
	table := Wavetable(shape, freq)
	phase -= math.Floor(phase)

	return lerpTable(table, phase*WavetableSize)
}

func clampShape(shape Shape) Shape {
	if shape < Sawtooth {
		return Sawtooth
	}

	if shape > Square {
		return Square
	}

	return shape
}
