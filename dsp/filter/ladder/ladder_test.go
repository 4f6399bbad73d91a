package ladder

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

const sr = 48000.0

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// smallSignal keeps the ladder in its near-linear region for response checks.
func smallSignal(tk core.Ticker) core.Ticker {
	const scale = 1e-4
	return core.TickerFunc(func(x float64) float64 { return tk.Tick(x*scale) / scale })
}

func TestTanhXdX(t *testing.T) {
	assert.Equal(t, 1.0, tanhXdX(0))

	for _, x := range []float64{0.1, 0.5, 1, 2} {
		want := math.Tanh(x) / x
		assert.InDelta(t, want, tanhXdX(x), 2e-3, "x = %v", x)
	}

	for _, x := range []float64{-1e6, -50, 50, 1e6} {
		v := tanhXdX(x)
		assert.Greater(t, v, 1.0/15-1e-12)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestGuard(t *testing.T) {
	assert.Equal(t, eps, guard(0))
	assert.Equal(t, -eps, guard(-1e-20))
	assert.Equal(t, 2.0, guard(2))
}

func newDiode(t *testing.T, freq, q float64) *Diode {
	t.Helper()
	d, err := NewDiode(testutil.NewContext(t, sr, 1024), freq, q)
	require.NoError(t, err)
	return d
}

func newTransistor(t *testing.T, freq, k float64) *Transistor {
	t.Helper()
	tr, err := NewTransistor(testutil.NewContext(t, sr, 1024), freq, k)
	require.NoError(t, err)
	return tr
}

func TestZeroInputGivesZeroOutput(t *testing.T) {
	d := newDiode(t, 2000, 1)
	tr := newTransistor(t, 2000, 4)
	tr.SetDrive(10)

	for i := range 1024 {
		if y := d.Tick(0); y != 0 {
			t.Fatalf("diode sample %d = %v, want 0", i, y)
		}
		if y := tr.Tick(0); y != 0 {
			t.Fatalf("transistor sample %d = %v, want 0", i, y)
		}
	}
}

func TestSmallSignalDCGain(t *testing.T) {
	d := newDiode(t, 1000, 0.2)
	tr := newTransistor(t, 1000, 2)

	var yd, yt float64
	for range 20000 {
		yd = d.Tick(0.01)
		yt = tr.Tick(0.01)
	}

	assert.InDelta(t, 0.01/(1+d.Feedback()), yd, 5e-5)
	assert.InDelta(t, 0.01/3, yt, 5e-5)
}

func TestTransistorResonancePeak(t *testing.T) {
	flat, err := response.MagnitudeResponse(smallSignal(newTransistor(t, 1000, 0)), 8192, sr)
	require.NoError(t, err)

	peaked, err := response.MagnitudeResponse(smallSignal(newTransistor(t, 1000, 3)), 8192, sr)
	require.NoError(t, err)

	// four bilinear poles give 1/4 at cutoff; k = 3 lifts it to about 1
	assert.InDelta(t, 0.25, flat.At(1000), 0.02)
	assert.Greater(t, peaked.At(1000), 3*flat.At(1000))
	assert.Less(t, flat.AtDB(16000), -60.0)
}

func TestDiodeIsLowpass(t *testing.T) {
	d := newDiode(t, 1000, 0)
	resp, err := response.MagnitudeResponse(smallSignal(d), 8192, sr)
	require.NoError(t, err)

	dc := resp.At(0)
	assert.InDelta(t, 1/(1+d.Feedback()), dc, 1e-3)
	assert.Less(t, resp.At(16000), dc/100)
}

func TestExtremeResonanceStaysBounded(t *testing.T) {
	d := newDiode(t, 3000, maxDiodeQ)
	tr := newTransistor(t, 3000, maxResonance)
	tr.SetDrive(maxDrive)

	in := testutil.DeterministicNoise(9, 1, 48000)
	in[100] = 1e6
	in[200] = -1e9

	outD := testutil.Run(d, in)
	outT := testutil.Run(tr, in)

	testutil.RequireFinite(t, outD)
	testutil.RequireFinite(t, outT)

	// after the spikes the states are saturated, not diverged
	testutil.RequireBounded(t, outD[1000:], 64)
	testutil.RequireBounded(t, outT[1000:], 64)

	for _, s := range d.state[:4] {
		assert.Less(t, math.Abs(s), stateLimit)
	}
}

func TestFrequencySweepStaysFinite(t *testing.T) {
	d := newDiode(t, 100, 0.9)
	tr := newTransistor(t, 100, 3.9)
	in := testutil.Sweep(30, 15000, sr, 1, 24000)

	out := make([]float64, 0, 2*len(in))
	for i, x := range in {
		note := 20 + 110*float64(i)/float64(len(in))
		d.SetFreqFast(note)
		tr.SetFreqFast(note)
		out = append(out, d.Tick(x), tr.Tick(x))
	}

	testutil.RequireBounded(t, out, 64)
}

func TestNonFiniteInput(t *testing.T) {
	d := newDiode(t, 1000, 0.5)
	tr := newTransistor(t, 1000, 1)

	assert.Zero(t, d.Tick(math.NaN()))
	assert.Zero(t, tr.Tick(math.Inf(-1)))
}

func TestTransistorOversampling(t *testing.T) {
	tr := newTransistor(t, 1000, 1)
	tr.SetOversampling(4)
	assert.Equal(t, 4, tr.Oversampling())
	assert.InDelta(t, math.Tan(math.Pi*1000/(4*sr)), tr.f, 1e-15)

	var y float64
	for range 20000 {
		y = tr.Tick(0.01)
	}
	assert.InDelta(t, 0.005, y, 5e-5)

	tr.SetOversampling(100)
	assert.Equal(t, maxOversampling, tr.Oversampling())
	tr.SetOversampling(0)
	assert.Equal(t, 1, tr.Oversampling())
}

func TestSetterClamping(t *testing.T) {
	d := newDiode(t, 1e9, -3)
	assert.Equal(t, maxFreqRatio*sr, d.Freq())
	assert.Zero(t, d.Q())
	assert.Equal(t, 0.5, d.Feedback())

	d.SetQ(math.NaN())
	assert.Zero(t, d.Q())

	tr := newTransistor(t, 0, 10)
	assert.Equal(t, minFreqHz, tr.Freq())
	assert.Equal(t, maxResonance, tr.Q())

	tr.SetDrive(0)
	assert.Equal(t, minDrive, tr.Drive())
}

func TestSampleRateChangeRetunes(t *testing.T) {
	d := newDiode(t, 1000, 0.1)
	d.SetSampleRate(96000)
	assert.InDelta(t, math.Tan(math.Pi*1000/96000), d.f, 1e-15)

	d.SetFreqFast(69)
	assert.InDelta(t, math.Tan(math.Pi*440/96000), d.f, 1e-15, "table rate mismatch uses the exact prewarp")

	tr := newTransistor(t, 1000, 1)
	tr.SetFreqFast(69)
	assert.InDelta(t, math.Tan(math.Pi*440/sr), tr.f, 1e-6)

	tr.SetSampleRate(-1)
	assert.InDelta(t, math.Tan(math.Pi*440/sr), tr.f, 1e-6, "invalid rates are ignored")
}

func TestResetAndFree(t *testing.T) {
	ctx := testutil.NewContext(t, sr, 80)

	d, err := NewDiode(ctx, 500, 0.5)
	require.NoError(t, err)
	tr, err := NewTransistor(ctx, 500, 2)
	require.NoError(t, err)

	_, err = NewDiode(ctx, 500, 0.5)
	require.ErrorIs(t, err, mempool.ErrPoolExhausted)

	for range 50 {
		d.Tick(1)
		tr.Tick(1)
	}

	d.Reset()
	tr.Reset()
	assert.Zero(t, d.Tick(0))
	assert.Zero(t, tr.Tick(0))

	require.NoError(t, d.Free())
	require.NoError(t, tr.Free())
	require.NoError(t, d.Free())
	assert.Zero(t, ctx.Pool().Used())
}
