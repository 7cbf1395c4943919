package strm

import (
	"io"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// DReader decompresses frame data pulled from an io.Reader (or a fixed
// byte slice) and exposes the plain output via Read.
type DReader struct {
	rd      io.Reader
	dctx    *czstd.DCtx
	src     []byte
	srcPos  int
	srcLen  int
	inEOF   bool
	outEOF  bool
	lastRem uint64
	nOut    int64
	state   error
	done    func()
}

// NewDReader wraps 'dctx', which must be fully configured (dictionary,
// window limit).  The caller retains ownership of the context;
// 'readSize' bounds each upstream Read.
func NewDReader(rd io.Reader, dctx *czstd.DCtx, readSize int, done func()) *DReader {
	return &DReader{
		rd:   rd,
		dctx: dctx,
		src:  make([]byte, readSize),
		done: done,
	}
}

// NewDReaderBytes decompresses directly out of 'src' with no staging
// copy.
func NewDReaderBytes(src []byte, dctx *czstd.DCtx, done func()) *DReader {
	return &DReader{
		dctx:   dctx,
		src:    src,
		srcLen: len(src),
		inEOF:  true,
		done:   done,
	}
}

func (r *DReader) Read(dst []byte) (int, error) {
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
		r.state = err
		return n, nil
	}

	if err == nil && n == 0 {
		err = io.EOF
	}

	r.state = err
	return n, err
}

func (r *DReader) _read(dst []byte) (int, error) {

	var dstPos int

	for dstPos < len(dst) {

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

		if r.srcPos == r.srcLen && r.inEOF {
			if r.lastRem != 0 {
				return dstPos, zerr.Wrapf(zerr.ErrDecompress, "frame truncated")
			}
			r.outEOF = true
			break
		}

		rem, outPos, inPos, err := r.dctx.DecompressStream(
			dst, dstPos, r.src[:r.srcLen], r.srcPos)
		if err != nil {
			return dstPos, zerr.Wrap(zerr.ErrDecompress, err)
		}

		madeProgress := outPos > dstPos || inPos > r.srcPos
		dstPos, r.srcPos = outPos, inPos
		r.lastRem = rem

		// A full window counts as progress toward the caller.
		if dstPos > 0 && (dstPos == len(dst) || !madeProgress) {
			break
		}
	}

	r.nOut += int64(dstPos)
	return dstPos, nil
}

// Seek supports forward repositioning only, by decoding and discarding.
// Rewinding and end-relative seeks fail with ErrSeek.
func (r *DReader) Seek(offset int64, whence int) (int64, error) {
	if r.state != nil && r.state != io.EOF {
		return r.nOut, r.state
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.nOut + offset
	default:
		return r.nOut, zerr.Wrapf(zerr.ErrSeek, "end-relative seek unsupported")
	}

	if target < r.nOut {
		return r.nOut, zerr.Wrapf(zerr.ErrSeek, "cannot rewind from %d to %d", r.nOut, target)
	}

	skip := make([]byte, czstd.DStreamOutSize())
	for r.nOut < target {
		chunk := skip
		if rest := target - r.nOut; rest < int64(len(chunk)) {
			chunk = chunk[:rest]
		}

		if _, err := r.Read(chunk); err != nil {
			if err == io.EOF {
				break
			}
			return r.nOut, err
		}
	}

	return r.nOut, nil
}

// Tell returns the number of decompressed bytes produced so far.
func (r *DReader) Tell() int64 {
	return r.nOut
}

func (r *DReader) MemorySize() int {
	return r.dctx.SizeOf()
}

// Close ends the session and invokes the done callback.  Double close
// is a no-op.
func (r *DReader) Close() error {
	if r.done == nil {
		return nil
	}

	r.done()
	r.done = nil
	r.state = zerr.ErrClosed
	return nil
}
