package svf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cwbudde/algo-leaf/dsp/core"
	"github.com/cwbudde/algo-leaf/dsp/mempool"
	"github.com/cwbudde/algo-leaf/internal/testutil"
	"github.com/cwbudde/algo-leaf/measure/response"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newFilter(t *testing.T, sr float64, typ Type, freq, q float64) *SVF {
	t.Helper()
	f, err := New(testutil.NewContext(t, sr, 4096), typ, freq, q)
	require.NoError(t, err)
	return f
}

func TestLowpassDCConvergence(t *testing.T) {
	f := newFilter(t, 44100, Lowpass, 1000, 0.707)

	var y float64
	for range 10000 {
		y = f.Tick(1)
	}

	assert.InDelta(t, 1.0, y, 1e-6)
}

func TestDCGainPerType(t *testing.T) {
	cases := []struct {
		typ  Type
		gain float64
		want float64
	}{
		{Lowpass, 0, 1},
		{Highpass, 0, 0},
		{Bandpass, 0, 0},
		{Notch, 0, 1},
		{Peak, 0, -1},
		{Lowshelf, 6, core.DBToLinear(6)},
		{Highshelf, 6, 1},
	}

	for _, c := range cases {
		t.Run(c.typ.String(), func(t *testing.T) {
			f := newFilter(t, 48000, c.typ, 800, 0.9)
			f.SetGain(c.gain)

			var y float64
			for range 20000 {
				y = f.Tick(1)
			}
			assert.InDelta(t, c.want, y, 1e-6)
		})
	}
}

func TestZeroInputGivesZeroOutput(t *testing.T) {
	for typ := Lowpass; typ <= Highshelf; typ++ {
		f := newFilter(t, 48000, typ, 2000, 4)
		f.SetGain(-12)
		for i := range 512 {
			if y := f.Tick(0); y != 0 {
				t.Fatalf("%v: sample %d = %v, want 0", typ, i, y)
			}
		}
	}
}

func TestFrequencySweepStaysFinite(t *testing.T) {
	f := newFilter(t, 48000, Bandpass, 100, 20)
	input := testutil.DeterministicNoise(7, 1, 48000)

	out := make([]float64, len(input))
	for i, x := range input {
		// sweep 20 Hz .. beyond Nyquist, which must clamp
		f.SetFreq(20 * math.Pow(2000, float64(i)/float64(len(input))))
		out[i] = f.Tick(x)
	}

	testutil.RequireFinite(t, out)
	assert.LessOrEqual(t, f.Freq(), 0.4999*48000)
}

func TestTypeSwitchIsBounded(t *testing.T) {
	f := newFilter(t, 48000, Lowpass, 1000, 0.707)
	sine := testutil.DeterministicSine(440, 48000, 1, 4800)

	prev := 0.0
	for i, x := range sine {
		if i%480 == 0 {
			f.SetType(Type(i / 480 % 5))
		}
		y := f.Tick(x)
		require.LessOrEqual(t, math.Abs(y-prev), 4.0, "sample %d", i)
		prev = y
	}

	st := f.State()
	assert.True(t, core.IsFinite(st.IC1) && core.IsFinite(st.IC2))
}

func TestLowpassMagnitudeResponse(t *testing.T) {
	f := newFilter(t, 48000, Lowpass, 1000, math.Sqrt2/2)

	resp, err := response.MagnitudeResponse(f, 8192, 48000)
	require.NoError(t, err)

	assert.InDelta(t, 0, resp.AtDB(20), 0.05)
	assert.InDelta(t, -3.01, resp.AtDB(1000), 0.1)
	assert.Less(t, resp.AtDB(10000), -38.0, "second order rolloff")
}

func TestBandpassPeaksAtCutoff(t *testing.T) {
	f := newFilter(t, 48000, Bandpass, 3000, 10)

	resp, err := response.MagnitudeResponse(f, 16384, 48000)
	require.NoError(t, err)

	freq, mag := resp.Peak()
	assert.InDelta(t, 3000, freq, 2*resp.BinWidth())
	// bandpass tap peak gain is Q at resonance
	assert.InDelta(t, 10, mag, 0.5)
}

func TestNonFiniteInputSanitized(t *testing.T) {
	f := newFilter(t, 48000, Lowpass, 1000, 0.707)

	assert.Zero(t, f.Tick(math.NaN()))
	assert.Zero(t, f.Tick(math.Inf(1)))
	assert.Equal(t, State{}, f.State())
}

func TestSettersKeepState(t *testing.T) {
	f := newFilter(t, 48000, Lowpass, 1000, 0.707)
	for range 100 {
		f.Tick(1)
	}

	before := f.State()
	f.SetFreqAndQ(2000, 3)
	f.SetGain(3)
	f.SetType(Highshelf)
	f.SetFreqFast(60)
	assert.Equal(t, before, f.State())

	f.Reset()
	assert.Equal(t, State{}, f.State())
}

func TestSetFreqFastMatchesSetFreq(t *testing.T) {
	a := newFilter(t, 48000, Lowpass, 1000, 2)
	b := newFilter(t, 48000, Lowpass, 1000, 2)

	a.SetFreqFast(81)
	b.SetFreq(880)
	assert.InDelta(t, b.g, a.g, b.g*1e-4)

	b.SetSampleRate(96000)
	b.SetFreqFast(81)
	assert.InDelta(t, math.Tan(math.Pi*880/96000), b.g, 1e-12, "rate mismatch falls back to exact prewarp")
}

func TestClampsParameters(t *testing.T) {
	f := newFilter(t, 48000, Type(42), 1e9, -1)
	assert.Equal(t, Highshelf, f.Type())
	assert.Equal(t, 0.4999*48000, f.Freq())
	assert.Equal(t, minQ, f.Q())

	f.SetType(Type(-3))
	assert.Equal(t, Lowpass, f.Type())
}

func TestPoolExhaustion(t *testing.T) {
	ctx := testutil.NewContext(t, 48000, 8)
	_, err := New(ctx, Lowpass, 1000, 1)
	require.ErrorIs(t, err, mempool.ErrPoolExhausted)
}

func TestFreeReturnsState(t *testing.T) {
	ctx := testutil.NewContext(t, 48000, 64)

	f, err := New(ctx, Notch, 1000, 1)
	require.NoError(t, err)
	assert.Equal(t, 16, ctx.Pool().Used())

	require.NoError(t, f.Free())
	assert.Zero(t, ctx.Pool().Used())
	require.NoError(t, f.Free(), "second Free is a no-op")
}

func TestLPMatchesSVFLowpass(t *testing.T) {
	ctx := testutil.NewContext(t, 44100, 1024)

	full, err := New(ctx, Lowpass, 700, 3)
	require.NoError(t, err)
	lp, err := NewLP(ctx, 700, 3)
	require.NoError(t, err)

	in := testutil.DeterministicNoise(3, 1, 2000)
	for i, x := range in {
		require.InDelta(t, full.Tick(x), lp.Tick(x), 1e-12, "sample %d", i)
	}

	full.SetFreqFast(50)
	lp.SetFreqFast(50)
	full.SetQ(1)
	lp.SetQ(1)
	lp.SetFreq(full.Freq())
	full.SetFreq(full.Freq())
	for i, x := range in[:100] {
		require.InDelta(t, full.Tick(x), lp.Tick(x), 1e-12, "sample %d", i)
	}

	lp.Reset()
	lp.SetSampleRate(48000)
	require.NoError(t, lp.Free())
}
