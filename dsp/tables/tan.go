package tables

import "math"

const (
	// TanSize is the number of intervals in a TanTable (12-bit resolution).
	TanSize = 4096
	// TanMaxNote is the MIDI note mapped to the last table entry.
	TanMaxNote = 134.0
	// TanScale converts a MIDI note into a table position.
	TanScale = TanSize / TanMaxNote
)

// TanTable holds tan(pi*f/sr) prewarped gains for MIDI notes 0..TanMaxNote
// at one sample rate.
type TanTable struct {
	sampleRate float64
	data       [TanSize + 1]float64
}

// NewTanTable builds the table for sampleRate. Frequencies above 0.499 of
// the sample rate are clamped there.
func NewTanTable(sampleRate float64) *TanTable {
	t := &TanTable{sampleRate: sampleRate}
	limit := 0.499 * sampleRate

	for i := range t.data {
		f := math.Min(MtoF(float64(i)/TanScale), limit)
		t.data[i] = math.Tan(math.Pi * f / sampleRate)
	}

	return t
}

// SampleRate returns the sample rate the table was built for.
func (t *TanTable) SampleRate() float64 { return t.sampleRate }

// Lookup returns the prewarped gain for a fractional MIDI note.
func (t *TanTable) Lookup(note float64) float64 {
	pos := note * TanScale
	if pos <= 0 {
		return t.data[0]
	}

	return lerpTable(t.data[:], pos)
}
