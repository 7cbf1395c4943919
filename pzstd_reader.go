package pzstd

import (
	"io"
)

// Reader is a streaming session that pulls processed data out of an
// upstream source.  Close releases the parent context for the next
// operation; it does not close the upstream reader.
type Reader interface {
	io.ReadCloser

	// Tell returns the number of bytes produced so far.
	Tell() int64

	// MemorySize returns the native memory footprint in bytes.
	MemorySize() int
}

// ReadSeeker is a decompression Reader that additionally supports
// forward seeks (by decoding and discarding).  Rewinding and
// end-relative seeks fail with ErrSeek.
type ReadSeeker interface {
	Reader
	io.Seeker
}
