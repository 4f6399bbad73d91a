package core

import (
	"fmt"

	"github.com/go-audio/audio"
	"github.com/tphakala/simd/f64"
)

// Ticker is any per-sample processor.
type Ticker interface {
	Tick(in float64) float64
}

// TickerFunc adapts a plain function to Ticker.
type TickerFunc func(in float64) float64

// Tick calls f(in).
func (f TickerFunc) Tick(in float64) float64 { return f(in) }

// ProcessBlock runs buf through t in place.
func ProcessBlock(t Ticker, buf []float64) {
	for i, x := range buf {
		buf[i] = t.Tick(x)
	}
}

// ProcessBlockTo processes src into dst and returns the number of samples
// written, which is the shorter of the two lengths.
func ProcessBlockTo(t Ticker, dst, src []float64) int {
	n := CopyInto(dst, src)
	ProcessBlock(t, dst[:n])

	return n
}

// ProcessFloatBuffer runs an interleaved host buffer through one ticker per
// channel and applies gain to the result. A buffer without format is mono.
func ProcessFloatBuffer(buf *audio.FloatBuffer, gain float64, channels ...Ticker) error {
	if buf == nil {
		return fmt.Errorf("core: nil buffer")
	}

	numChannels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		numChannels = buf.Format.NumChannels
	}

	if len(channels) != numChannels {
		return fmt.Errorf("core: %d tickers for %d channels", len(channels), numChannels)
	}

	if len(buf.Data)%numChannels != 0 {
		return fmt.Errorf("core: %d samples are not a whole number of %d-channel frames", len(buf.Data), numChannels)
	}

	for i := 0; i < len(buf.Data); i += numChannels {
		for ch, t := range channels {
			buf.Data[i+ch] = t.Tick(buf.Data[i+ch])
		}
	}

	if gain != 1 {
		f64.Scale(buf.Data, buf.Data, gain)
	}

	return nil
}
