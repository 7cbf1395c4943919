package strm

import (
	"io"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// CopyCompress pumps 'rd' through 'cctx' into 'wr' until EOF, then ends
// the frame.  Returns bytes read and bytes written.
func CopyCompress(wr io.Writer, rd io.Reader, cctx *czstd.CCtx, readSize, writeSize int) (nRead, nWritten int64, err error) {

	var (
		src = make([]byte, readSize)
		dst = make([]byte, writeSize)
	)

LOOP:
	for {
		n, rerr := rd.Read(src)
		nRead += int64(n)

		srcPos := 0
		for srcPos < n {
			var dstPos int
			_, dstPos, srcPos, err = cctx.CompressStream2(dst, 0, src[:n], srcPos, czstd.OpContinue)
			if err != nil {
				return nRead, nWritten, zerr.Wrap(zerr.ErrCompress, err)
			}

			if dstPos > 0 {
				nw, werr := wr.Write(dst[:dstPos])
				nWritten += int64(nw)
				if werr != nil {
					return nRead, nWritten, werr
				}
			}
		}

		switch rerr {
		case nil:
		case io.EOF:
			break LOOP
		default:
			return nRead, nWritten, rerr
		}
	}

	for {
		rem, dstPos, _, cerr := cctx.CompressStream2(dst, 0, nil, 0, czstd.OpEnd)
		if cerr != nil {
			return nRead, nWritten, zerr.Wrap(zerr.ErrCompress, cerr)
		}

		if dstPos > 0 {
			nw, werr := wr.Write(dst[:dstPos])
			nWritten += int64(nw)
			if werr != nil {
				return nRead, nWritten, werr
			}
		}

		if rem == 0 {
			return nRead, nWritten, nil
		}
	}
}

// CopyDecompress pumps compressed data from 'rd' through 'dctx' into
// 'wr' until EOF.  Returns bytes read and bytes written.
func CopyDecompress(wr io.Writer, rd io.Reader, dctx *czstd.DCtx, readSize, writeSize int) (nRead, nWritten int64, err error) {

	var (
		src = make([]byte, readSize)
		dst = make([]byte, writeSize)
	)

LOOP:
	for {
		n, rerr := rd.Read(src)
		nRead += int64(n)

		srcPos := 0
		for srcPos < n {
			var dstPos int
			_, dstPos, srcPos, err = dctx.DecompressStream(dst, 0, src[:n], srcPos)
			if err != nil {
				return nRead, nWritten, zerr.Wrap(zerr.ErrDecompress, err)
			}

			if dstPos > 0 {
				nw, werr := wr.Write(dst[:dstPos])
				nWritten += int64(nw)
				if werr != nil {
					return nRead, nWritten, werr
				}
			}
		}

		switch rerr {
		case nil:
		case io.EOF:
			break LOOP
		default:
			return nRead, nWritten, rerr
		}
	}

	return nRead, nWritten, nil
}
