package mempool

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintptrOf(b *byte) uintptr { return uintptr(unsafe.Pointer(b)) }

func TestMakeSliceViewsPoolMemory(t *testing.T) {
	p := newTestPool(t, 256)

	data, h, err := MakeSlice[float64](p, 4)
	require.NoError(t, err)
	require.Len(t, data, 4)
	assert.Equal(t, 32, p.BlockSize(h))

	for _, v := range data {
		assert.Zero(t, v)
	}

	data[0] = 1.5
	view := View[float64](p, h)
	assert.Equal(t, 1.5, view[0], "slice and view share the block")

	_, _, err = MakeSlice[float64](p, 0)
	require.ErrorIs(t, err, ErrInvalidSize)

	_, _, err = MakeSlice[float64](p, 1000)
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestMakeSliceElementCountOverflow(t *testing.T) {
	p := newTestPool(t, 64)

	_, h, err := MakeSlice[float64](p, math.MaxInt/4)
	require.ErrorIs(t, err, ErrPoolExhausted)
	assert.False(t, h.Valid())

	_, _, err = MakeSlice[complex128](p, math.MaxInt/16+1)
	require.ErrorIs(t, err, ErrPoolExhausted)
	assert.Zero(t, p.Used())
}

func TestMakeSliceOddSizes(t *testing.T) {
	p := newTestPool(t, 64)

	data, h, err := MakeSlice[float32](p, 3)
	require.NoError(t, err)
	assert.Len(t, data, 3)
	assert.Equal(t, 3, cap(data))
	assert.Equal(t, 16, p.BlockSize(h))
}

func TestFloatsFree(t *testing.T) {
	p := newTestPool(t, 64)

	f, err := NewFloats(p, 8)
	require.NoError(t, err)
	assert.Len(t, f.Data, 8)
	assert.True(t, p.Owns(f.Handle()))

	require.NoError(t, f.Free())
	assert.Nil(t, f.Data)
	assert.Zero(t, p.Used())
	require.NoError(t, f.Free(), "second free of an emptied buffer is a no-op")
}
