package mempool

import (
	"fmt"
	"math"
	"unsafe"
)

// Element lists the pointer-free scalar types that may live in pool memory.
type Element interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// MakeSlice allocates a zeroed slice of n elements backed by pool memory.
// The returned handle must be passed to Free to give the memory back.
func MakeSlice[T Element](p *Pool, n int) ([]T, Handle, error) {
	if n <= 0 {
		return nil, Handle{}, fmt.Errorf("%w: %d elements", ErrInvalidSize, n)
	}

	var zero T
	elem := int(unsafe.Sizeof(zero))
	if n > math.MaxInt/elem {
		return nil, Handle{}, fmt.Errorf("%w: %d elements of %d bytes", ErrPoolExhausted, n, elem)
	}

	h, err := p.Calloc(n * elem)
	if err != nil {
		return nil, Handle{}, err
	}

	return View[T](p, h)[:n:n], h, nil
}

// View reinterprets a live block as a slice of T covering the whole block.
// It returns nil for invalid handles.
func View[T Element](p *Pool, h Handle) []T {
	b := p.Bytes(h)
	if len(b) == 0 {
		return nil
	}

	var zero T
	n := len(b) / int(unsafe.Sizeof(zero))

	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// Floats is a float64 buffer together with the handle that owns it.
type Floats struct {
	Data   []float64
	handle Handle
	pool   *Pool
}

// NewFloats allocates n zeroed float64 values from p.
func NewFloats(p *Pool, n int) (Floats, error) {
	data, h, err := MakeSlice[float64](p, n)
	if err != nil {
		return Floats{}, err
	}

	return Floats{Data: data, handle: h, pool: p}, nil
}

// Handle returns the owning block handle.
func (f Floats) Handle() Handle { return f.handle }

// Free returns the buffer to its pool. Freeing an empty Floats is a no-op.
func (f *Floats) Free() error {
	if f.pool == nil {
		return nil
	}

	err := f.pool.Free(f.handle)
	f.Data = nil
	f.pool = nil
	f.handle = Handle{}

	return err
}
