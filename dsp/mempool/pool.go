package mempool

import (
	"fmt"
	"unsafe"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	leaflog "github.com/cwbudde/algo-leaf/internal/log"
)

// Alignment is the granularity of every block offset and size in bytes.
const Alignment = 8

const noSlot int32 = -1

// Handle references one allocated block. The zero value is invalid.
type Handle struct {
	index int32 // slot index + 1
	gen   uint32
}

// Valid reports whether h was returned by a successful allocation. It does
// not check whether the block is still live; the owning pool does that.
func (h Handle) Valid() bool { return h.index > 0 }

// BlockInfo describes one block of the arena in offset order.
type BlockInfo struct {
	Offset int
	Size   int
	Free   bool
}

// Stats summarizes arena occupancy.
type Stats struct {
	Size        int
	Used        int
	Free        int
	Blocks      int
	FreeBlocks  int
	LargestFree int
}

type block struct {
	offset int
	size   int
	prev   int32
	next   int32
	gen    uint32
	free   bool
	linked bool
}

// Option configures a Pool.
type Option func(*config)

type config struct {
	name   string
	logger *logrus.Logger
}

// WithName sets a human readable name reported in log entries.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithLogger sets the logger used for setup-time diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Pool is a first-fit arena allocator over a single byte buffer.
//
// WARNING: Pool is NOT goroutine-safe.
type Pool struct {
	id   xid.ID
	name string
	mem  []byte

	slots []block
	spare []int32
	head  int32
	used  int

	parent       *Pool
	parentHandle Handle
	released     bool

	logger *logrus.Logger
	log    *logrus.Entry
}

// New allocates an arena of size bytes, rounded down to a multiple of
// Alignment. This is the only heap allocation a Pool performs for sample
// storage.
func New(size int, opts ...Option) (*Pool, error) {
	if size < Alignment {
		return nil, fmt.Errorf("%w: arena size %d", ErrInvalidSize, size)
	}

	words := make([]uint64, size/Alignment)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*Alignment)

	return newPool(mem, opts...), nil
}

// NewFromBuffer builds an arena over host-supplied memory. Leading bytes are
// skipped until the first offset is Alignment-aligned and the tail is trimmed
// to a multiple of Alignment.
func NewFromBuffer(buf []byte, opts ...Option) (*Pool, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidSize)
	}

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	skip := int((Alignment - addr%Alignment) % Alignment)
	if len(buf)-skip < Alignment {
		return nil, fmt.Errorf("%w: buffer of %d bytes has no aligned room", ErrInvalidSize, len(buf))
	}

	usable := (len(buf) - skip) &^ (Alignment - 1)

	return newPool(buf[skip:skip+usable:skip+usable], opts...), nil
}

func newPool(mem []byte, opts ...Option) *Pool {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.logger == nil {
		cfg.logger = leaflog.GetLogger()
	}

	p := &Pool{
		id:     xid.New(),
		name:   cfg.name,
		mem:    mem,
		slots:  make([]block, 1, 16),
		logger: cfg.logger,
	}
	p.slots[0] = block{offset: 0, size: len(mem), prev: noSlot, next: noSlot, free: true, linked: true}
	p.head = 0

	fields := logrus.Fields{"pool": p.id.String(), "size": len(mem)}
	if p.name != "" {
		fields["name"] = p.name
	}
	p.log = cfg.logger.WithFields(fields)
	p.log.Debug("mempool: arena created")

	return p
}

// ID returns the unique identifier of the pool.
func (p *Pool) ID() string { return p.id.String() }

// Name returns the name given by WithName.
func (p *Pool) Name() string { return p.name }

// Size returns the arena size in bytes.
func (p *Pool) Size() int { return len(p.mem) }

// Used returns the number of bytes held by live blocks.
func (p *Pool) Used() int { return p.used }

// Alloc returns a block of at least size bytes. Its contents are whatever the
// previous owner left behind; use Calloc for zeroed memory.
func (p *Pool) Alloc(size int) (Handle, error) {
	if p.released {
		return Handle{}, ErrReleased
	}

	if size <= 0 {
		return Handle{}, fmt.Errorf("%w: requested %d bytes", ErrInvalidSize, size)
	}

	if size > len(p.mem) {
		return Handle{}, p.exhausted(size)
	}

	n := roundUp(size)

	i := p.head
	for i != noSlot {
		b := &p.slots[i]
		if b.free && b.size >= n {
			break
		}
		i = b.next
	}

	if i == noSlot {
		return Handle{}, p.exhausted(n)
	}

	if rest := p.slots[i].size - n; rest >= Alignment {
		j := p.newSlot()
		b := &p.slots[i]
		p.slots[j] = block{
			offset: b.offset + n,
			size:   rest,
			prev:   i,
			next:   b.next,
			gen:    p.slots[j].gen,
			free:   true,
			linked: true,
		}
		if b.next != noSlot {
			p.slots[b.next].prev = j
		}
		b.next = j
		b.size = n
	}

	b := &p.slots[i]
	b.free = false
	b.gen++
	p.used += b.size

	return Handle{index: i + 1, gen: b.gen}, nil
}

// Calloc is Alloc followed by a zero fill of the whole block.
func (p *Pool) Calloc(size int) (Handle, error) {
	h, err := p.Alloc(size)
	if err != nil {
		return Handle{}, err
	}

	clear(p.Bytes(h))

	return h, nil
}

// MustAlloc is Calloc that panics on failure. Use it where pool exhaustion
// is unrecoverable.
func (p *Pool) MustAlloc(size int) Handle {
	h, err := p.Calloc(size)
	if err != nil {
		panic(err)
	}

	return h
}

// Free returns the block to the pool and merges it with free neighbours.
func (p *Pool) Free(h Handle) error {
	if p.released {
		return ErrReleased
	}

	i, err := p.lookup(h)
	if err != nil {
		return err
	}

	b := &p.slots[i]
	b.free = true
	b.gen++
	p.used -= b.size

	if next := b.next; next != noSlot && p.slots[next].free {
		p.absorbNext(i)
	}

	if prev := p.slots[i].prev; prev != noSlot && p.slots[prev].free {
		p.absorbNext(prev)
	}

	return nil
}

// Bytes returns the block's memory. The slice stays valid until the block is
// freed or the pool is reset.
func (p *Pool) Bytes(h Handle) []byte {
	i, err := p.lookup(h)
	if err != nil {
		return nil
	}

	b := p.slots[i]

	return p.mem[b.offset : b.offset+b.size : b.offset+b.size]
}

// BlockSize returns the rounded size of a live block, or 0 for invalid handles.
func (p *Pool) BlockSize(h Handle) int {
	i, err := p.lookup(h)
	if err != nil {
		return 0
	}

	return p.slots[i].size
}

// Owns reports whether h refers to a live block of this pool.
func (p *Pool) Owns(h Handle) bool {
	_, err := p.lookup(h)
	return err == nil
}

// NewSubPool carves a nested arena of size bytes out of one block of p.
func (p *Pool) NewSubPool(size int, opts ...Option) (*Pool, error) {
	h, err := p.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("mempool: sub-pool: %w", err)
	}

	all := append([]Option{WithLogger(p.logger)}, opts...)
	child := newPool(p.Bytes(h), all...)
	child.parent = p
	child.parentHandle = h
	child.log.WithField("parent", p.id.String()).Debug("mempool: sub-pool created")

	return child, nil
}

// Parent returns the pool a sub-pool was carved from, or nil.
func (p *Pool) Parent() *Pool { return p.parent }

// Release returns a sub-pool's block to its parent. Every handle of the
// sub-pool becomes unusable.
func (p *Pool) Release() error {
	if p.parent == nil {
		return fmt.Errorf("mempool: pool %s is not a sub-pool", p.id)
	}

	if p.released {
		return ErrReleased
	}

	if err := p.parent.Free(p.parentHandle); err != nil {
		return fmt.Errorf("mempool: release sub-pool: %w", err)
	}

	p.released = true
	p.mem = nil
	p.used = 0
	p.log.Debug("mempool: sub-pool released")

	return nil
}

// Reset tears the arena down at once: every block is returned and every
// outstanding handle is invalidated.
func (p *Pool) Reset() {
	if p.released {
		return
	}

	p.spare = p.spare[:0]
	for i := range p.slots {
		p.slots[i].gen++
		p.slots[i].linked = false
		p.slots[i].free = true
		if i > 0 {
			p.spare = append(p.spare, int32(i))
		}
	}

	p.slots[0] = block{offset: 0, size: len(p.mem), prev: noSlot, next: noSlot, gen: p.slots[0].gen, free: true, linked: true}
	p.head = 0
	p.used = 0
}

// Stats returns a snapshot of arena occupancy.
func (p *Pool) Stats() Stats {
	st := Stats{Size: len(p.mem), Used: p.used}
	for i := p.head; i != noSlot && !p.released; i = p.slots[i].next {
		b := p.slots[i]
		st.Blocks++
		if b.free {
			st.FreeBlocks++
			st.Free += b.size
			if b.size > st.LargestFree {
				st.LargestFree = b.size
			}
		}
	}

	return st
}

// Blocks lists all blocks in offset order.
func (p *Pool) Blocks() []BlockInfo {
	if p.released {
		return nil
	}

	out := make([]BlockInfo, 0, len(p.slots))
	for i := p.head; i != noSlot; i = p.slots[i].next {
		b := p.slots[i]
		out = append(out, BlockInfo{Offset: b.offset, Size: b.size, Free: b.free})
	}

	return out
}

// Check verifies the arena invariants: blocks are contiguous and aligned,
// their sizes add up to the arena size, no two free blocks are adjacent and
// the used counter matches the live blocks.
func (p *Pool) Check() error {
	if p.released {
		return ErrReleased
	}

	offset, used := 0, 0
	prev := noSlot
	prevFree := false

	for i := p.head; i != noSlot; i = p.slots[i].next {
		b := p.slots[i]
		switch {
		case !b.linked:
			return fmt.Errorf("mempool: slot %d is listed but not linked", i)
		case b.prev != prev:
			return fmt.Errorf("mempool: slot %d has prev %d, want %d", i, b.prev, prev)
		case b.offset != offset:
			return fmt.Errorf("mempool: block at %d, want %d (gap or overlap)", b.offset, offset)
		case b.size <= 0 || b.size%Alignment != 0:
			return fmt.Errorf("mempool: block at %d has invalid size %d", b.offset, b.size)
		case b.free && prevFree:
			return fmt.Errorf("mempool: adjacent free blocks at %d", b.offset)
		}

		if !b.free {
			used += b.size
		}

		offset += b.size
		prev = i
		prevFree = b.free
	}

	if offset != len(p.mem) {
		return fmt.Errorf("mempool: blocks cover %d bytes, arena has %d", offset, len(p.mem))
	}

	if used != p.used {
		return fmt.Errorf("mempool: used counter %d, blocks hold %d", p.used, used)
	}

	return nil
}

func (p *Pool) lookup(h Handle) (int32, error) {
	if p.released {
		return 0, ErrReleased
	}

	if h.index <= 0 || int(h.index) > len(p.slots) {
		return 0, ErrInvalidHandle
	}

	i := h.index - 1

	b := p.slots[i]
	if !b.linked || b.free || b.gen != h.gen {
		return 0, ErrInvalidHandle
	}

	return i, nil
}

// absorbNext merges the block following slot i into i and recycles its slot.
func (p *Pool) absorbNext(i int32) {
	b := &p.slots[i]
	j := b.next
	nb := p.slots[j]

	b.size += nb.size
	b.next = nb.next
	if nb.next != noSlot {
		p.slots[nb.next].prev = i
	}

	p.slots[j].linked = false
	p.slots[j].free = true
	p.spare = append(p.spare, j)
}

func (p *Pool) newSlot() int32 {
	if n := len(p.spare); n > 0 {
		j := p.spare[n-1]
		p.spare = p.spare[:n-1]
		return j
	}

	p.slots = append(p.slots, block{})

	return int32(len(p.slots) - 1)
}

func (p *Pool) exhausted(requested int) error {
	largest := p.largestFree()
	p.log.WithFields(logrus.Fields{"requested": requested, "largest": largest}).Error("mempool: allocation failed")

	return fmt.Errorf("%w: requested %d bytes, largest free block %d of %d",
		ErrPoolExhausted, requested, largest, len(p.mem))
}

func (p *Pool) largestFree() int {
	largest := 0
	for i := p.head; i != noSlot; i = p.slots[i].next {
		if b := p.slots[i]; b.free && b.size > largest {
			largest = b.size
		}
	}

	return largest
}

func roundUp(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}
