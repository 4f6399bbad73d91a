package mempool

import "errors"

var (
	// ErrPoolExhausted is returned when no free block can hold a request.
	ErrPoolExhausted = errors.New("mempool: pool exhausted")
	// ErrInvalidHandle is returned for zero, stale or double-freed handles.
	ErrInvalidHandle = errors.New("mempool: invalid handle")
	// ErrInvalidSize is returned for non-positive allocation or arena sizes.
	ErrInvalidSize = errors.New("mempool: size must be > 0")
	// ErrReleased is returned when a released sub-pool is used again.
	ErrReleased = errors.New("mempool: pool has been released")
)
