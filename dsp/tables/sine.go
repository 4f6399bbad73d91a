package tables

import "math"

// SineSize is the number of entries per sine cycle.
const SineSize = 2048

var sineTable [SineSize + 1]float64

func init() {
	for i := range sineTable {
		sineTable[i] = math.Sin(2 * math.Pi * float64(i) / SineSize)
	}
}

// Sin returns sin(2*pi*phase) where phase is measured in cycles.
func Sin(phase float64) float64 {
	phase -= math.Floor(phase)
	pos := phase * SineSize
	i := int(pos)
	if i >= SineSize {
		i = SineSize - 1
	}
	frac := pos - float64(i)

	return sineTable[i] + frac*(sineTable[i+1]-sineTable[i])
}

// Cos returns cos(2*pi*phase) where phase is measured in cycles.
func Cos(phase float64) float64 {
	return Sin(phase + 0.25)
}
