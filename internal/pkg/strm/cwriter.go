package strm

import (
	"io"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// CWriter compresses data pushed via Write into an io.Writer.
type CWriter struct {
	wr    io.Writer
	cctx  *czstd.CCtx
	dst   []byte
	nIn   int64
	nOut  int64
	state error
	done  func()
}

// NewCWriter wraps 'cctx', which must be fully configured (parameters,
// dictionary, pledged size).  The caller retains ownership of the
// context; 'done' is invoked exactly once on Close.
func NewCWriter(wr io.Writer, cctx *czstd.CCtx, writeSize int, done func()) *CWriter {
	return &CWriter{
		wr:   wr,
		cctx: cctx,
		dst:  make([]byte, writeSize),
		done: done,
	}
}

// Write compresses 'src', forwarding whatever output the encoder
// produces.  Returns the number of source bytes consumed.
func (w *CWriter) Write(src []byte) (int, error) {
	if w.state != nil {
		return 0, w.state
	}

	var n int
	n, w.state = w._write(src)
	return n, w.state
}

func (w *CWriter) _write(src []byte) (nConsumed int, err error) {

	for nConsumed < len(src) {
		var dstPos int
		_, dstPos, nConsumed, err = w.cctx.CompressStream2(w.dst, 0, src, nConsumed, czstd.OpContinue)
		if err != nil {
			err = zerr.Wrap(zerr.ErrCompress, err)
			return
		}

		if err = w._flushDst(dstPos); err != nil {
			return
		}
	}

	w.nIn += int64(nConsumed)
	return
}

// ReadFrom compresses everything from 'rd'.  Implements io.ReaderFrom.
func (w *CWriter) ReadFrom(rd io.Reader) (int64, error) {
	if w.state != nil {
		return 0, w.state
	}

	var (
		sum int64
		src = make([]byte, czstd.CStreamInSize())
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

// Flush drains pending output.  FlushFrame ends the current frame; a
// subsequent Write starts a new one.
func (w *CWriter) Flush(mode FlushMode) error {
	if w.state != nil {
		return w.state
	}

	op := czstd.OpFlush
	if mode == FlushFrame {
		op = czstd.OpEnd
	}

	w.state = w._drain(op)
	return w.state
}

func (w *CWriter) _drain(op czstd.EndDirective) error {
	for {
		rem, dstPos, _, err := w.cctx.CompressStream2(w.dst, 0, nil, 0, op)
		if err != nil {
			return zerr.Wrap(zerr.ErrCompress, err)
		}

		if err := w._flushDst(dstPos); err != nil {
			return err
		}

		if rem == 0 {
			return nil
		}
	}
}

func (w *CWriter) _flushDst(dstPos int) error {
	if dstPos == 0 {
		return nil
	}

	n, err := w.wr.Write(w.dst[:dstPos])
	w.nOut += int64(n)
	return err
}

// Close ends the frame unless the session already failed, then releases
// the native context.  Double close is a no-op.
func (w *CWriter) Close() error {

	// w.done is the sentinel for a closed session.
	if w.done == nil {
		return nil
	}

	var err error
	if w.state == nil {
		err = w._drain(czstd.OpEnd)
	}

	w.done()
	w.done = nil

	switch {
	case w.state != nil:
		// Close succeeds even in an error state; the frame is left
		// truncated by design.
		return nil
	case err != nil:
		w.state = err
		return err
	}

	w.state = zerr.ErrClosed
	return nil
}

// Tell returns the number of compressed bytes written downstream.
func (w *CWriter) Tell() int64 {
	return w.nOut
}

func (w *CWriter) MemorySize() int {
	return w.cctx.SizeOf()
}
