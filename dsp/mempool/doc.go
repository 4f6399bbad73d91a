// Package mempool implements the arena allocator every DSP object draws its
// storage from.
//
// A [Pool] owns one contiguous, 8-byte aligned byte buffer that is divided
// into an offset-ordered list of blocks, each tagged free or used. Allocation
// is first-fit and splits the chosen block; [Pool.Free] coalesces the released
// block with free neighbours. There is no compaction pass, so long-running
// hosts should allocate their objects once at setup and keep them.
//
// Block descriptors are stored out of band in an index-linked slot table. The
// caller holds a generation-checked [Handle] rather than a raw pointer, so a
// stale or double-freed handle is reported as [ErrInvalidHandle] instead of
// corrupting the list.
//
// Exhaustion is the distinct [ErrPoolExhausted] error. Hosts that treat it as
// fatal can use [Pool.MustAlloc], which panics.
//
// Typed views are created with [MakeSlice]; the element type must be free of
// Go pointers because the garbage collector does not scan arena memory.
//
// A Pool is NOT goroutine-safe. It is meant to be mutated by a single writer,
// the audio thread, and any cross-thread use needs external synchronization.
package mempool
