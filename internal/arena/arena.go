// Package arena implements the bump-allocated, growable memory regions used
// by every pass-owned data structure in the core (C1). It is grounded on
// original_source/lib/utils/BumpAllocator.cc: a vector of geometrically
// growing buffers, a bump pointer into the current buffer, and bulk
// reset/destroy instead of per-object free.
package arena

import "fmt"

const (
	defaultBufSize = 128 * 8 // 128 * sizeof(void*) on a 64-bit host
	growthFactor   = 1.5
)

type buffer struct {
	mem  []byte
	used int
}

// Heap is a single bump-allocated region. It is not safe for concurrent use;
// the core's pass model is strictly single-threaded (spec §5).
type Heap struct {
	buffers []*buffer
	cur     int // index of the buffer currently being allocated from
	invalid bool
}

// New returns a fresh Heap with one buffer of the default size.
func New() *Heap {
	return &Heap{buffers: []*buffer{{mem: make([]byte, defaultBufSize)}}}
}

// Allocate returns size bytes aligned to align, valid until the next Reset
// or Destroy. A zero-byte request is upgraded to one byte so that no two
// live allocations ever alias the same address.
func (h *Heap) Allocate(size, align int) []byte {
	if h.invalid {
		panic("arena: allocate after destroy")
	}
	if size == 0 {
		size = 1
	}
	if align <= 0 {
		align = 1
	}

	for {
		b := h.buffers[h.cur]
		aligned := alignUp(b.used, align)
		if aligned+size <= len(b.mem) {
			b.used = aligned + size
			return b.mem[aligned : aligned+size]
		}
		if h.cur+1 < len(h.buffers) {
			h.cur++
			continue
		}
		h.grow(size, align)
	}
}

func (h *Heap) grow(minSize, align int) {
	last := h.buffers[len(h.buffers)-1]
	newSize := int(float64(len(last.mem)) * growthFactor)
	if newSize < minSize+align {
		newSize = minSize + align
	}
	h.buffers = append(h.buffers, &buffer{mem: make([]byte, newSize)})
	h.cur = len(h.buffers) - 1
}

func alignUp(off, align int) int {
	rem := off % align
	if rem == 0 {
		return off
	}
	return off + (align - rem)
}

// Reset invalidates every allocation made so far and recycles the buffer
// list for reuse, without freeing any of the underlying memory.
func (h *Heap) Reset() {
	h.cur = 0
	for _, b := range h.buffers {
		b.used = 0
	}
}

// Destroy permanently invalidates the heap. Any subsequent Allocate panics.
func (h *Heap) Destroy() {
	h.invalid = true
	for _, b := range h.buffers {
		for i := range b.mem {
			b.mem[i] = 0
		}
		b.used = 0
	}
}

// Valid reports whether the heap can still be allocated from.
func (h *Heap) Valid() bool {
	return !h.invalid
}

func (h *Heap) String() string {
	return fmt.Sprintf("heap{buffers=%d, valid=%t}", len(h.buffers), !h.invalid)
}

// Pool hands out heaps to passes and recycles them in LIFO order once their
// reference count drops to zero (see internal/passmgr for the ref-counting
// half of this contract).
type Pool struct {
	free []*Heap
}

// NewPool returns an empty heap pool.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire returns a free pooled heap (reset and ready to use) if one exists,
// otherwise a brand new Heap.
func (p *Pool) Acquire() *Heap {
	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		h.Reset()
		return h
	}
	return New()
}

// Release returns h to the pool for LIFO reuse. h is reset by the pool, not
// by the caller.
func (p *Pool) Release(h *Heap) {
	h.Reset()
	p.free = append(p.free, h)
}
