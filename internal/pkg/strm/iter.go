package strm

import (
	"io"
)

type sessionReaderI interface {
	io.ReadCloser
}

// Iter pulls fixed-size chunks out of a compression or decompression
// reader session.  Next returns io.EOF after the final chunk.
type Iter struct {
	rd    sessionReaderI
	chunk []byte
}

func NewIter(rd sessionReaderI, chunkSize int) *Iter {
	return &Iter{
		rd:    rd,
		chunk: make([]byte, chunkSize),
	}
}

// Next returns the next chunk of output.  The returned slice is only
// valid until the following call.
func (it *Iter) Next() ([]byte, error) {
	n, err := io.ReadFull(it.rd, it.chunk)

	switch err {
	case nil:
		return it.chunk, nil
	case io.ErrUnexpectedEOF:
		// Short final chunk.
		return it.chunk[:n], nil
	default:
		return nil, err
	}
}

// Close releases the underlying session.
func (it *Iter) Close() error {
	return it.rd.Close()
}
