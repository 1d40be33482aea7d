package particles

import (
	"errors"
	"fmt"
)

// ErrReserveExhausted is returned when the ring cursor reaches a slot still held
// by a live owner, i.e. in-flight demand exceeded the reserve.
var ErrReserveExhausted = errors.New("transient reserve exhausted")

// Allocator hands out indices from a reserved range with a ring cursor.
// Slots are released explicitly; the cursor revisits them on its next lap.
type Allocator struct {
	start  int
	size   int
	cursor int      // offset into the range
	owner  []uint32 // 0 = free, otherwise owning burst ID
	held   int
}

// NewAllocator creates an allocator over [start, start+size).
func NewAllocator(start, size int) *Allocator {
	return &Allocator{
		start: start,
		size:  size,
		owner: make([]uint32, size),
	}
}

// Start returns the first reserved index.
func (a *Allocator) Start() int { return a.start }

// Size returns the reserve length.
func (a *Allocator) Size() int { return a.size }

// Held returns the number of slots currently owned.
func (a *Allocator) Held() int { return a.held }

// Cursor returns the reserve offset the next allocation starts at.
func (a *Allocator) Cursor() int { return a.cursor }

// Occupancy splits the reserve into len(dst) equal spans and writes the held
// fraction of each into dst. Spans are sized by integer division, so when the
// reserve does not divide evenly the remainder lands in the last span.
func (a *Allocator) Occupancy(dst []float32) {
	buckets := len(dst)
	if buckets == 0 {
		return
	}
	if a.size == 0 {
		clear(dst)
		return
	}
	for b := range dst {
		lo := b * a.size / buckets
		hi := (b + 1) * a.size / buckets
		if hi == lo {
			dst[b] = 0
			continue
		}
		held := 0
		for _, o := range a.owner[lo:hi] {
			if o != 0 {
				held++
			}
		}
		dst[b] = float32(held) / float32(hi-lo)
	}
}

// Contains reports whether i lies in the reserved range.
func (a *Allocator) Contains(i int) bool {
	return i >= a.start && i < a.start+a.size
}

// Alloc assigns n slots to owner, advancing the cursor and wrapping within the
// range. It fails without side effects if any of the next n slots is still held.
func (a *Allocator) Alloc(owner uint32, n int) ([]int, error) {
	if owner == 0 {
		panic("particles: allocator owner ID 0 is reserved")
	}
	if n > a.size {
		return nil, fmt.Errorf("%w: need %d slots, reserve holds %d", ErrReserveExhausted, n, a.size)
	}

	for k := 0; k < n; k++ {
		off := (a.cursor + k) % a.size
		if a.owner[off] != 0 {
			return nil, fmt.Errorf("%w: slot %d still held by burst %d", ErrReserveExhausted, a.start+off, a.owner[off])
		}
	}

	out := make([]int, n)
	for k := range out {
		off := a.cursor
		a.owner[off] = owner
		out[k] = a.start + off
		a.cursor = (a.cursor + 1) % a.size
	}
	a.held += n
	return out, nil
}

// Release frees the given slots if they are owned by owner.
func (a *Allocator) Release(owner uint32, indices []int) {
	for _, i := range indices {
		if !a.Contains(i) {
			continue
		}
		off := i - a.start
		if a.owner[off] == owner {
			a.owner[off] = 0
			a.held--
		}
	}
}

// Owner returns the burst holding index i, or 0.
func (a *Allocator) Owner(i int) uint32 {
	if !a.Contains(i) {
		return 0
	}
	return a.owner[i-a.start]
}
