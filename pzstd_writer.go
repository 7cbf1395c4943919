package pzstd

import (
	"io"

	"github.com/pzstd-dev/pzstd/internal/pkg/strm"
)

// Writer is a streaming session that pushes processed data into a
// downstream io.Writer.  Close ends the session and releases the parent
// context for the next operation; it does not close the downstream
// writer.
type Writer interface {
	io.WriteCloser
	io.ReaderFrom

	// Flush drains buffered data downstream.  FlushFrame additionally
	// ends the current frame on compression sessions.
	Flush(mode FlushMode) error

	// Tell returns the number of bytes written downstream so far.
	Tell() int64

	// MemorySize returns the native memory footprint in bytes.
	MemorySize() int
}

// dwriterT adapts the decompression session to the Writer interface.
// Flush modes are a compression concept; the decoder forwards completed
// output eagerly, so both modes just flush downstream.
type dwriterT struct {
	*strm.DWriter
}

func (w dwriterT) Flush(FlushMode) error {
	return w.DWriter.Flush()
}
