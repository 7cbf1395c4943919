package strm

import (
	"io"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// CReader compresses data pulled from an io.Reader.  Read returns
// compressed frame bytes.
type CReader struct {
	rd     io.Reader
	cctx   *czstd.CCtx
	src    []byte
	srcPos int
	srcLen int
	inEOF  bool
	outEOF bool
	nOut   int64
	state  error
	done   func()
}

// NewCReader wraps 'cctx', which must be fully configured.  The caller
// retains ownership of the context; 'readSize' bounds each upstream
// Read.
func NewCReader(rd io.Reader, cctx *czstd.CCtx, readSize int, done func()) *CReader {
	return &CReader{
		rd:   rd,
		cctx: cctx,
		src:  make([]byte, readSize),
		done: done,
	}
}

func (r *CReader) Read(dst []byte) (int, error) {
	switch {
	case r.state != nil:
		return 0, r.state
	case r.outEOF:
		return 0, io.EOF
	case len(dst) == 0:
		return 0, nil
	}

	n, err := r._read(dst)

	if err != nil && n > 0 {
		// Hand back what we have; report the error on the next call.
		r.state = err
		return n, nil
	}

	if err == nil && n == 0 {
		err = io.EOF
	}

	r.state = err
	return n, err
}

func (r *CReader) _read(dst []byte) (int, error) {

	var dstPos int

	for dstPos == 0 && !r.outEOF {

		if r.srcPos == r.srcLen && !r.inEOF {
			n, err := r.rd.Read(r.src)
			r.srcPos, r.srcLen = 0, n

			switch err {
			case nil:
			case io.EOF:
				r.inEOF = true
			default:
				return dstPos, err
			}
		}

		op := czstd.OpContinue
		if r.inEOF && r.srcPos == r.srcLen {
			op = czstd.OpEnd
		}

		rem, outPos, inPos, err := r.cctx.CompressStream2(
			dst, dstPos, r.src[:r.srcLen], r.srcPos, op)
		if err != nil {
			return dstPos, zerr.Wrap(zerr.ErrCompress, err)
		}

		dstPos, r.srcPos = outPos, inPos

		if op == czstd.OpEnd && rem == 0 {
			r.outEOF = true
		}

		// Output window full before the frame ended; return it.
		if dstPos == len(dst) {
			break
		}
	}

	r.nOut += int64(dstPos)
	return dstPos, nil
}

// Tell returns the number of compressed bytes produced so far.
func (r *CReader) Tell() int64 {
	return r.nOut
}

func (r *CReader) MemorySize() int {
	return r.cctx.SizeOf()
}

// Close ends the session and invokes the done callback.  Double close
// is a no-op.
func (r *CReader) Close() error {
	if r.done == nil {
		return nil
	}

	r.done()
	r.done = nil
	r.state = zerr.ErrClosed
	return nil
}
