package pzstd

import (
	"encoding/binary"
	"sort"

	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// SegmentT locates one span inside a backing buffer.
type SegmentT struct {
	Offset uint64
	Length uint64
}

// SegmentSize is the wire size of one packed segment record: offset and
// length as little-endian uint64s.
const SegmentSize = 16

// ParseSegments unpacks a contiguous array of segment records.
func ParseSegments(packed []byte) ([]SegmentT, error) {
	if len(packed)%SegmentSize != 0 {
		return nil, zerr.Wrapf(zerr.ErrValidation,
			"segment array length %d not a multiple of %d", len(packed), SegmentSize)
	}

	segs := make([]SegmentT, len(packed)/SegmentSize)
	for i := range segs {
		rec := packed[i*SegmentSize:]
		segs[i] = SegmentT{
			Offset: binary.LittleEndian.Uint64(rec),
			Length: binary.LittleEndian.Uint64(rec[8:]),
		}
	}
	return segs, nil
}

// PackSegments is the inverse of ParseSegments.
func PackSegments(segs []SegmentT) []byte {
	packed := make([]byte, len(segs)*SegmentSize)
	for i, s := range segs {
		rec := packed[i*SegmentSize:]
		binary.LittleEndian.PutUint64(rec, s.Offset)
		binary.LittleEndian.PutUint64(rec[8:], s.Length)
	}
	return packed
}

// BufferWithSegments is one backing buffer plus the spans that
// partition it into logical items.  Segment views alias the backing
// buffer; no data is copied.
type BufferWithSegments struct {
	data []byte
	segs []SegmentT
}

// NewBufferWithSegments validates that every segment lies within 'data'
// and wraps both without copying.
func NewBufferWithSegments(data []byte, segs []SegmentT) (*BufferWithSegments, error) {
	for i, s := range segs {
		end := s.Offset + s.Length
		if end < s.Offset || end > uint64(len(data)) {
			return nil, zerr.Wrapf(zerr.ErrSegment,
				"segment %d [%d:%d) exceeds buffer size %d", i, s.Offset, end, len(data))
		}
	}
	return &BufferWithSegments{data: data, segs: segs}, nil
}

// Len returns the number of segments.
func (b *BufferWithSegments) Len() int {
	return len(b.segs)
}

// Size returns the total byte length of the backing buffer.
func (b *BufferWithSegments) Size() int {
	return len(b.data)
}

// Bytes returns the backing buffer.
func (b *BufferWithSegments) Bytes() []byte {
	return b.data
}

// Segments returns the span table.
func (b *BufferWithSegments) Segments() []SegmentT {
	return b.segs
}

// Segment returns a view of segment i, aliasing the backing buffer.
func (b *BufferWithSegments) Segment(i int) ([]byte, error) {
	if i < 0 || i >= len(b.segs) {
		return nil, zerr.Wrapf(zerr.ErrSegment, "index %d of %d", i, len(b.segs))
	}
	s := b.segs[i]
	return b.data[s.Offset : s.Offset+s.Length : s.Offset+s.Length], nil
}

// Views returns all segment views in order, aliasing the backing
// buffer.
func (b *BufferWithSegments) Views() [][]byte {
	out := make([][]byte, len(b.segs))
	for i := range b.segs {
		out[i], _ = b.Segment(i)
	}
	return out
}

// SegmentBytes returns a copy of segment i.
func (b *BufferWithSegments) SegmentBytes(i int) ([]byte, error) {
	v, err := b.Segment(i)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// BufferWithSegmentsCollection presents several segmented buffers as
// one flat, indexable sequence of segments.
type BufferWithSegmentsCollection struct {
	bufs []*BufferWithSegments

	// firstIdx[i] is the collection-wide index of bufs[i]'s first
	// segment; one extra entry holds the total.
	firstIdx []int
}

// NewBufferWithSegmentsCollection wraps the given buffers.  Every
// buffer must hold at least one segment.
func NewBufferWithSegmentsCollection(bufs ...*BufferWithSegments) (*BufferWithSegmentsCollection, error) {
	if len(bufs) == 0 {
		return nil, zerr.Wrapf(zerr.ErrValidation, "no buffers")
	}

	firstIdx := make([]int, len(bufs)+1)
	for i, b := range bufs {
		if b.Len() == 0 {
			return nil, zerr.Wrapf(zerr.ErrValidation, "buffer %d has no segments", i)
		}
		firstIdx[i+1] = firstIdx[i] + b.Len()
	}

	return &BufferWithSegmentsCollection{bufs: bufs, firstIdx: firstIdx}, nil
}

// Len returns the total number of segments across all buffers.
func (c *BufferWithSegmentsCollection) Len() int {
	return c.firstIdx[len(c.bufs)]
}

// Size returns the total byte length across all buffers.
func (c *BufferWithSegmentsCollection) Size() int {
	var sum int
	for _, b := range c.bufs {
		sum += b.Size()
	}
	return sum
}

// Buffers returns the underlying buffers.
func (c *BufferWithSegmentsCollection) Buffers() []*BufferWithSegments {
	return c.bufs
}

// Segment returns a view of collection-wide segment i, aliasing the
// owning buffer.
func (c *BufferWithSegmentsCollection) Segment(i int) ([]byte, error) {
	if i < 0 || i >= c.Len() {
		return nil, zerr.Wrapf(zerr.ErrSegment, "index %d of %d", i, c.Len())
	}

	// First buffer whose range ends past i.
	b := sort.Search(len(c.bufs), func(n int) bool {
		return c.firstIdx[n+1] > i
	})
	return c.bufs[b].Segment(i - c.firstIdx[b])
}

// Views returns all segment views in collection order, aliasing the
// owning buffers.
func (c *BufferWithSegmentsCollection) Views() [][]byte {
	out := make([][]byte, 0, c.Len())
	for _, b := range c.bufs {
		out = append(out, b.Views()...)
	}
	return out
}

// SegmentBytes returns a copy of collection-wide segment i.
func (c *BufferWithSegmentsCollection) SegmentBytes(i int) ([]byte, error) {
	v, err := c.Segment(i)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}
