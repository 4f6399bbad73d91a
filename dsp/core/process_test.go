package core

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accumulator struct{ sum float64 }

func (a *accumulator) Tick(in float64) float64 {
	a.sum += in
	return a.sum
}

func TestProcessBlock(t *testing.T) {
	buf := []float64{1, 1, 1, 1}
	ProcessBlock(&accumulator{}, buf)
	assert.Equal(t, []float64{1, 2, 3, 4}, buf)

	dst := make([]float64, 2)
	n := ProcessBlockTo(TickerFunc(func(x float64) float64 { return -x }), dst, []float64{3, 4, 5})
	assert.Equal(t, 2, n)
	assert.Equal(t, []float64{-3, -4}, dst)
}

func TestProcessFloatBufferDeinterleaves(t *testing.T) {
	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   []float64{1, 10, 1, 10, 1, 10},
	}

	left, right := &accumulator{}, &accumulator{}
	require.NoError(t, ProcessFloatBuffer(buf, 0.5, left, right))
	assert.Equal(t, []float64{0.5, 5, 1, 10, 1.5, 15}, buf.Data)
}

func TestProcessFloatBufferErrors(t *testing.T) {
	require.Error(t, ProcessFloatBuffer(nil, 1, &accumulator{}))

	mono := &audio.FloatBuffer{Data: []float64{1, 2}}
	require.Error(t, ProcessFloatBuffer(mono, 1), "no ticker for the single channel")
	require.NoError(t, ProcessFloatBuffer(mono, 1, &accumulator{}))
	assert.Equal(t, []float64{1, 3}, mono.Data)

	odd := &audio.FloatBuffer{Format: &audio.Format{NumChannels: 2}, Data: []float64{1, 2, 3}}
	require.Error(t, ProcessFloatBuffer(odd, 1, &accumulator{}, &accumulator{}))
}
