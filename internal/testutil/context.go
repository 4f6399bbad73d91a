package testutil

import (
	"testing"

	"github.com/cwbudde/algo-leaf/dsp/core"
	leaflog "github.com/cwbudde/algo-leaf/internal/log"
)

// NewContext returns a quiet context at sampleRate with a pool of memory
// bytes, failing t on error.
func NewContext(t testing.TB, sampleRate float64, memory int) *core.Context {
	t.Helper()
	ctx, err := core.NewContext(memory,
		core.WithProcessorOptions(core.WithSampleRate(sampleRate)),
		core.WithLogger(leaflog.Discard()),
	)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx
}

// Run feeds input through t sample by sample and returns the outputs.
func Run(t core.Ticker, input []float64) []float64 {
	out := make([]float64, len(input))
	for i, x := range input {
		out[i] = t.Tick(x)
	}
	return out
}
