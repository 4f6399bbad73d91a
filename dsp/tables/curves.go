package tables

import "math"

const (
	// TanhSize is the number of table intervals spanning [-TanhRange, TanhRange].
	TanhSize = 2048
	// TanhRange bounds the tanh table; inputs beyond it saturate.
	TanhRange = 4.0

	// ExpDecaySize is the number of table intervals spanning [0, ExpDecayRange].
	ExpDecaySize = 2048
	// ExpDecayRange bounds the exp(-x) table; larger inputs return the last entry.
	ExpDecayRange = 10.0
)

var (
	tanhTable     [TanhSize + 1]float64
	expDecayTable [ExpDecaySize + 1]float64
)

func init() {
	for i := range tanhTable {
		x := -TanhRange + 2*TanhRange*float64(i)/TanhSize
		tanhTable[i] = math.Tanh(x)
	}

	for i := range expDecayTable {
		expDecayTable[i] = math.Exp(-ExpDecayRange * float64(i) / ExpDecaySize)
	}
}

// Tanh is a table-driven tanh.
func Tanh(x float64) float64 {
	if x <= -TanhRange {
		return tanhTable[0]
	}

	if x >= TanhRange {
		return tanhTable[TanhSize]
	}

	return lerpTable(tanhTable[:], (x+TanhRange)*(TanhSize/(2*TanhRange)))
}

// ExpDecay is a table-driven exp(-x) for x >= 0.
func ExpDecay(x float64) float64 {
	if x <= 0 {
		return 1
	}

	if x >= ExpDecayRange {
		return expDecayTable[ExpDecaySize]
	}

	return lerpTable(expDecayTable[:], x*(ExpDecaySize/ExpDecayRange))
}

// MtoF converts a MIDI note number to Hz (A4 = note 69 = 440 Hz).
func MtoF(note float64) float64 {
	return 440 * math.Exp2((note-69)/12)
}

// FtoM converts Hz to a fractional MIDI note number.
func FtoM(hz float64) float64 {
	if hz <= 0 {
		return 0
	}

	return 69 + 12*math.Log2(hz/440)
}

// lerpTable reads table at fractional position pos, which must lie in
// [0, len(table)-1].
func lerpTable(table []float64, pos float64) float64 {
	i := int(pos)
	if i >= len(table)-1 {
		return table[len(table)-1]
	}

	if i < 0 {
		return table[0]
	}

	frac := pos - float64(i)

	return table[i] + frac*(table[i+1]-table[i])
}
