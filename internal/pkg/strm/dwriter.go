package strm

import (
	"io"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// DWriter decompresses data pushed via Write into an io.Writer.
type DWriter struct {
	wr    io.Writer
	dctx  *czstd.DCtx
	dst   []byte
	nOut  int64
	state error
	done  func()
}

// NewDWriter wraps 'dctx', which must be fully configured.  The caller
// retains ownership of the context.
func NewDWriter(wr io.Writer, dctx *czstd.DCtx, writeSize int, done func()) *DWriter {
	return &DWriter{
		wr:   wr,
		dctx: dctx,
		dst:  make([]byte, writeSize),
		done: done,
	}
}

// Write feeds compressed bytes to the decoder, forwarding plain output
// downstream.  Returns the number of source bytes consumed.
func (w *DWriter) Write(src []byte) (int, error) {
	if w.state != nil {
		return 0, w.state
	}

	var n int
	n, w.state = w._write(src)
	return n, w.state
}

func (w *DWriter) _write(src []byte) (nConsumed int, err error) {

	for nConsumed < len(src) {
		var dstPos int
		_, dstPos, nConsumed, err = w.dctx.DecompressStream(w.dst, 0, src, nConsumed)
		if err != nil {
			err = zerr.Wrap(zerr.ErrDecompress, err)
			return
		}

		if dstPos > 0 {
			var nw int
			nw, err = w.wr.Write(w.dst[:dstPos])
			w.nOut += int64(nw)
			if err != nil {
				return
			}
		}
	}

	return
}

// ReadFrom decompresses everything from 'rd'.  Implements io.ReaderFrom.
func (w *DWriter) ReadFrom(rd io.Reader) (int64, error) {
	if w.state != nil {
		return 0, w.state
	}

	var (
		sum int64
		src = make([]byte, czstd.DStreamInSize())
	)

LOOP:
	for {
		n, rerr := rd.Read(src)

		if n > 0 {
			var nw int
			nw, w.state = w._write(src[:n])
			sum += int64(nw)
			if w.state != nil {
				break LOOP
			}
		}

		switch rerr {
		case nil:
		case io.EOF:
			break LOOP
		default:
			w.state = rerr
			break LOOP
		}
	}

	return sum, w.state
}

// Flush forwards a flush to the downstream writer when it supports one.
// The decoder itself never buffers completed output.
func (w *DWriter) Flush() error {
	if w.state != nil {
		return w.state
	}

	if f, ok := w.wr.(flusherI); ok {
		w.state = f.Flush()
	}
	return w.state
}

// Tell returns the number of decompressed bytes written downstream.
func (w *DWriter) Tell() int64 {
	return w.nOut
}

func (w *DWriter) MemorySize() int {
	return w.dctx.SizeOf()
}

// Close ends the session and invokes the done callback.  An
// unterminated frame is not an error; the bytes forwarded so far stand.
// Double close is a no-op.
func (w *DWriter) Close() error {
	if w.done == nil {
		return nil
	}

	w.done()
	w.done = nil

	if w.state != nil {
		return nil
	}
	w.state = zerr.ErrClosed
	return nil
}
