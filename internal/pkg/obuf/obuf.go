// Package obuf accumulates streaming output across a list of
// fixed-capacity blocks, so one-shot operations of unknown result size
// never need a huge up-front allocation and never copy more than once.
package obuf

import (
	"math"

	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

const (
	kib = 1 << 10
	mib = 1 << 20
)

// Allocation schedule.  Cumulative growth roughly doubles early on and
// settles at 256MiB steps.
var blockSizes = []int{
	32 * kib, 64 * kib, 256 * kib, 1 * mib, 4 * mib, 8 * mib,
	16 * mib, 16 * mib, 32 * mib, 32 * mib, 32 * mib, 32 * mib,
	64 * mib, 64 * mib, 128 * mib, 128 * mib, 256 * mib,
}

type Buffer struct {
	blocks    [][]byte
	pos       int // fill position within the tail block
	allocated int
	maxLength int // <0 for unlimited
}

// NewBuffer allocates the first schedule block, clipped to maxLength.
// A negative maxLength means unlimited.
func NewBuffer(maxLength int) *Buffer {
	bsz := blockSizes[0]
	if maxLength >= 0 && maxLength < bsz {
		bsz = maxLength
	}
	return &Buffer{
		blocks:    [][]byte{make([]byte, bsz)},
		allocated: bsz,
		maxLength: maxLength,
	}
}

// NewBufferSize allocates a single block of exactly sz bytes, for
// operations whose output size is known up front.
func NewBufferSize(sz int) *Buffer {
	return &Buffer{
		blocks:    [][]byte{make([]byte, sz)},
		allocated: sz,
		maxLength: -1,
	}
}

// Tail returns the block currently being filled.
func (b *Buffer) Tail() []byte {
	return b.blocks[len(b.blocks)-1]
}

func (b *Buffer) Pos() int {
	return b.pos
}

// SetPos records the new fill position reported by the native engine.
func (b *Buffer) SetPos(pos int) {
	b.pos = pos
}

// Full reports whether the tail block is completely filled.
func (b *Buffer) Full() bool {
	return b.pos == len(b.Tail())
}

// ReachedMax reports whether the allocation budget is exhausted.
// Only meaningful once the tail block is full.
func (b *Buffer) ReachedMax() bool {
	return b.maxLength >= 0 && b.allocated >= b.maxLength
}

func (b *Buffer) Allocated() int {
	return b.allocated
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return b.allocated - (len(b.Tail()) - b.pos)
}

// Grow appends the next schedule block.  Must only be called when the
// tail block is full.  Fails once the budget is exhausted or the
// cumulative size would overflow.
func (b *Buffer) Grow() error {
	var bsz int
	if n := len(b.blocks); n < len(blockSizes) {
		bsz = blockSizes[n]
	} else {
		bsz = blockSizes[len(blockSizes)-1]
	}

	if b.maxLength >= 0 {
		rest := b.maxLength - b.allocated
		if rest <= 0 {
			return zerr.ErrAlloc
		}
		if bsz > rest {
			bsz = rest
		}
	}

	if b.allocated > math.MaxInt-bsz {
		return zerr.ErrAlloc
	}

	b.blocks = append(b.blocks, make([]byte, bsz))
	b.allocated += bsz
	b.pos = 0
	return nil
}

// Finish concatenates all blocks into the final result and releases the
// block storage.  The single fully-filled block case (possibly with an
// untouched trailing block) transfers ownership without a copy.
func (b *Buffer) Finish() []byte {
	var out []byte

	switch {
	case len(b.blocks) == 1 && b.pos == len(b.blocks[0]):
		out = b.blocks[0]
	case len(b.blocks) == 2 && b.pos == 0:
		// Grow is only legal on a full tail, so blocks[0] is full.
		out = b.blocks[0]
	default:
		out = make([]byte, 0, b.Len())
		for _, blk := range b.blocks[:len(b.blocks)-1] {
			out = append(out, blk...)
		}
		out = append(out, b.Tail()[:b.pos]...)
	}

	b.blocks = nil
	b.pos = 0
	b.allocated = 0
	return out
}
