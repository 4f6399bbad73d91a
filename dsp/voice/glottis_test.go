package voice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cwbudde/algo-leaf/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGlottisPeriodWrap(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)
	g := NewGlottis(ctx, 100, 0.6)
	require.InDelta(t, 0.01, g.WaveformLength(), 1e-15)

	for range 440 {
		g.Compute(0)
	}
	assert.Zero(t, g.Cycles(), "no wrap before the period ends")
	assert.InDelta(t, 440.0/44100, g.TimeInWaveform(), 1e-12)

	g.Compute(0)
	assert.Equal(t, 1, g.Cycles(), "one period after 441 samples")
	assert.InDelta(t, 0, g.TimeInWaveform(), 1e-9)
	assert.InDelta(t, 0.01, g.WaveformLength(), 1e-15)
}

func TestGlottisRdClamp(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)

	assert.Equal(t, 0.5, NewGlottis(ctx, 100, 1).Shape().Rd)
	assert.Equal(t, 2.7, NewGlottis(ctx, 100, 0).Shape().Rd)
	assert.InDelta(t, 1.5, NewGlottis(ctx, 100, 0.5).Shape().Rd, 1e-12)

	g := NewGlottis(ctx, 100, 2)
	assert.Equal(t, 1.0, g.Tenseness())
	g.SetTenseness(-1)
	assert.Equal(t, 0.0, g.Tenseness())
	g.SetTenseness(math.NaN())
	assert.Equal(t, 0.0, g.Tenseness())
}

func TestGlottisFreqClamp(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)
	g := NewGlottis(ctx, 5, 0.6)
	assert.Equal(t, 20.0, g.Freq())

	g.SetFreq(1e6)
	assert.Equal(t, 2000.0, g.Freq())
	g.SetFreq(math.Inf(1))
	assert.Equal(t, 2000.0, g.Freq())
}

func TestGlottisShapeCascade(t *testing.T) {
	for _, rd := range []float64{0.5, 1.2, 2, 2.7} {
		s := lfShape(rd)
		assert.Greater(t, s.Te, s.Tp, "rd=%v", rd)
		assert.Less(t, s.Te, 1.0, "rd=%v", rd)
		assert.Greater(t, s.E0, 0.0, "rd=%v", rd)

		// The open phase ends at -1 and the return phase starts there.
		open := s.E0 * math.Exp(s.Alpha*s.Te) * math.Sin(s.Omega*s.Te)
		assert.InDelta(t, -1, open, 1e-9, "rd=%v", rd)
		ret := (-1 + s.Shift) / s.Delta
		assert.InDelta(t, -1, ret, 1e-9, "rd=%v", rd)
	}
}

func TestGlottisOutputBounded(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)

	for _, tenseness := range []float64{0, 0.3, 0.6, 1} {
		g := NewGlottis(ctx, 220, tenseness)
		out := make([]float64, 44100)
		for i := range out {
			out[i] = g.Compute(1)
		}
		testutil.RequireFinite(t, out)
		testutil.RequireBounded(t, out, 1.5)
		require.Greater(t, testutil.MaxAbs(out), 0.2, "tenseness=%v", tenseness)
	}
}

func TestGlottisFrequencyFollowsBlock(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)
	g := NewGlottis(ctx, 100, 0.6)
	g.SetFreq(200)

	for g.Cycles() == 0 {
		g.Compute(0)
	}
	assert.InDelta(t, 0.01, g.WaveformLength(), 1e-15, "lambda 0 keeps the block start value")

	g.FinishBlock()
	for g.Cycles() == 1 {
		g.Compute(0)
	}
	assert.InDelta(t, 0.005, g.WaveformLength(), 1e-15)
}

func TestGlottisAspirationUsesNoiseSource(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)

	quiet := NewGlottis(ctx, 100, 0)
	quiet.SetNoise(func() float64 { return 0 })
	loud := NewGlottis(ctx, 100, 0)
	loud.SetNoise(func() float64 { return 1 })

	diff := loud.Compute(0) - quiet.Compute(0)
	assert.InDelta(t, 0.3*0.2, diff, 1e-12)
}

func TestGlottisAspirationFollowsCycle(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)

	quiet := NewGlottis(ctx, 100, 0.5)
	quiet.SetNoise(func() float64 { return 0 })
	loud := NewGlottis(ctx, 100, 0.5)
	loud.SetNoise(func() float64 { return 1 })

	lo, hi := math.Inf(1), math.Inf(-1)
	for range 441 {
		diff := loud.Compute(0) - quiet.Compute(0)
		want := (1 - math.Sqrt(0.5)) * loud.NoiseModulator() * 0.2
		require.InDelta(t, want, diff, 1e-12)
		lo, hi = min(lo, diff), max(hi, diff)
	}
	assert.Greater(t, hi-lo, 1e-3, "aspiration is louder while the glottis is open")
}
