package pzstd

import (
	"github.com/pzstd-dev/pzstd/internal/pkg/strm"
)

// ChunkIter pulls fixed-size chunks out of a compression or
// decompression session.
type ChunkIter struct {
	it *strm.Iter
}

// Next returns the next chunk, or io.EOF after the final one.  The
// returned slice is reused; copy it if it must outlive the next call.
func (it *ChunkIter) Next() ([]byte, error) {
	return it.it.Next()
}

// Close ends the session and releases the parent context.
func (it *ChunkIter) Close() error {
	return it.it.Close()
}
