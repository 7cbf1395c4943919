// Package strm implements the streaming sessions that adapt libzstd's
// chunked push/pull model to io.Reader/io.Writer contracts.  Each
// session owns one native context for its lifetime; the context is
// freed on Close and never reused.
package strm

// FlushMode selects how much state Flush pushes downstream.
type FlushMode int

const (
	// FlushBlock completes the current block; the data emitted so far
	// becomes decodable by a reader.
	FlushBlock FlushMode = iota

	// FlushFrame ends the current frame.  A subsequent Write starts a
	// new frame.
	FlushFrame
)

type flusherI interface {
	Flush() error
}
