package pzstd

import (
	"io"
	"sync/atomic"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/obuf"
	"github.com/pzstd-dev/pzstd/internal/pkg/opts"
	"github.com/pzstd-dev/pzstd/internal/pkg/strm"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// Decompressor owns one native decompression context.  It supports one
// operation at a time; a second concurrent operation fails with
// ErrState.
type Decompressor struct {
	o    opts.OptsT
	dctx *czstd.DCtx
	busy atomic.Bool
}

// NewDecompressor validates the options and configures a native context
// with them.  Call Close to release the context eagerly; otherwise a
// finalizer reclaims it.
func NewDecompressor(os ...OptT) (*Decompressor, error) {
	o, err := buildOpts(os)
	if err != nil {
		return nil, err
	}

	dctx := czstd.NewDCtx()
	if err := applyDParams(dctx, &o); err != nil {
		dctx.Free()
		return nil, err
	}

	return &Decompressor{o: o, dctx: dctx}, nil
}

func applyDParams(dctx *czstd.DCtx, o *opts.OptsT) error {
	if err := dctx.SetParameter(czstd.DWindowLogMax, o.MaxWindowLog); err != nil {
		return zerr.Wrap(zerr.ErrValidation, err)
	}

	if d, ok := o.Dict.(*Dict); ok && d != nil {
		dd, err := d.ddictRef()
		if err != nil {
			return err
		}
		if err := dctx.RefDDict(dd); err != nil {
			return zerr.Wrap(zerr.ErrValidation, err)
		}
	}

	return nil
}

func (d *Decompressor) acquire() error {
	if !d.busy.CompareAndSwap(false, true) {
		return zerr.ErrState
	}
	if d.dctx == nil {
		d.busy.Store(false)
		return zerr.ErrClosed
	}
	return nil
}

func (d *Decompressor) release() {
	d.busy.Store(false)
}

// beginSession discards any previous session state.  The window limit
// and the referenced dictionary survive the reset.
func (d *Decompressor) beginSession() error {
	if err := d.dctx.Reset(czstd.ResetSession); err != nil {
		return zerr.Wrap(zerr.ErrState, err)
	}
	return nil
}

// Decompress appends the decompressed form of the frame in 'src' to
// 'dst' and returns the extended slice.  When the frame header does not
// record the content size, WithMaxOutputSize must have been set.
func (d *Decompressor) Decompress(dst, src []byte) ([]byte, error) {
	if err := d.acquire(); err != nil {
		return dst, err
	}
	defer d.release()

	if err := d.beginSession(); err != nil {
		return dst, err
	}

	switch cs := czstd.GetFrameContentSize(src); cs {
	case czstd.ContentSizeError:
		return dst, zerr.Wrapf(zerr.ErrDecompress, "invalid frame header")
	case 0:
		return dst, nil
	case czstd.ContentSizeUnknown:
		return d._decompressUnknown(dst, src)
	default:
		need := int(cs)
		if need < 0 || uint64(need) != cs {
			return dst, zerr.Wrapf(zerr.ErrAlloc, "frame content size %d overflows", cs)
		}
		return d._decompressSized(dst, src, need)
	}
}

// _decompressSized decodes a frame whose header records the content
// size, into an exactly-sized buffer.
func (d *Decompressor) _decompressSized(dst, src []byte, need int) ([]byte, error) {

	dstPos := len(dst)
	if n := dstPos + need; cap(dst) >= n {
		dst = dst[:n]
	} else {
		dst = append(dst, make([]byte, need)...)
	}

	var (
		srcPos int
		outPos = dstPos
	)

	for {
		rem, op, ip, err := d.dctx.DecompressStream(dst, outPos, src, srcPos)
		if err != nil {
			return dst[:dstPos], zerr.Wrap(zerr.ErrDecompress, err)
		}
		outPos, srcPos = op, ip

		if rem == 0 {
			break
		}
		if srcPos == len(src) {
			return dst[:dstPos], zerr.Wrapf(zerr.ErrDecompress, "frame truncated")
		}
		if outPos == len(dst) {
			return dst[:dstPos], zerr.Wrapf(zerr.ErrContentSize,
				"output exceeds size recorded in frame header")
		}
	}

	if got := outPos - dstPos; got != need {
		return dst[:dstPos], zerr.Wrapf(zerr.ErrContentSize,
			"expected %d bytes, decoded %d", need, got)
	}
	return dst[:outPos], nil
}

// _decompressUnknown decodes a frame with no recorded content size into
// a growable buffer bounded by MaxOutputSize.
func (d *Decompressor) _decompressUnknown(dst, src []byte) ([]byte, error) {
	if d.o.MaxOutputSize <= 0 {
		return dst, zerr.Wrapf(zerr.ErrValidation,
			"frame header lacks content size and no max output size is set")
	}

	var (
		buf    = obuf.NewBuffer(d.o.MaxOutputSize)
		srcPos int
	)

	for {
		rem, op, ip, err := d.dctx.DecompressStream(buf.Tail(), buf.Pos(), src, srcPos)
		if err != nil {
			return dst, zerr.Wrap(zerr.ErrDecompress, err)
		}
		buf.SetPos(op)
		srcPos = ip

		if rem == 0 {
			break
		}
		if buf.Full() {
			if err := buf.Grow(); err != nil {
				return dst, zerr.Wrapf(zerr.ErrAlloc,
					"decompression exceeds max output size %d", d.o.MaxOutputSize)
			}
			continue
		}
		if srcPos == len(src) {
			return dst, zerr.Wrapf(zerr.ErrDecompress, "frame truncated")
		}
	}

	if len(dst) == 0 {
		return buf.Finish(), nil
	}
	return append(dst, buf.Finish()...), nil
}

// Writer starts a streaming session that decompresses data written to
// it into 'wr'.  The Decompressor stays busy until the session is
// closed.
func (d *Decompressor) Writer(wr io.Writer) (Writer, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	if err := d.beginSession(); err != nil {
		d.release()
		return nil, err
	}
	return dwriterT{
		strm.NewDWriter(wr, d.dctx, d.o.CalcWriteSize(false), d.release),
	}, nil
}

// Reader starts a streaming session that pulls compressed data from
// 'rd' and yields plain bytes.  The Decompressor stays busy until the
// session is closed.
func (d *Decompressor) Reader(rd io.Reader) (ReadSeeker, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	if err := d.beginSession(); err != nil {
		d.release()
		return nil, err
	}
	return strm.NewDReader(rd, d.dctx, d.o.CalcReadSize(false), d.release), nil
}

// ReaderBytes is Reader over an in-memory source, decoding directly out
// of 'src' with no staging copy.
func (d *Decompressor) ReaderBytes(src []byte) (ReadSeeker, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	if err := d.beginSession(); err != nil {
		d.release()
		return nil, err
	}
	return strm.NewDReaderBytes(src, d.dctx, d.release), nil
}

// Chunks starts a session that yields decompressed output from 'rd' in
// chunks of up to chunkSize bytes.  chunkSize <= 0 selects the
// recommended output size.
func (d *Decompressor) Chunks(rd io.Reader, chunkSize int) (*ChunkIter, error) {
	if chunkSize <= 0 {
		chunkSize = czstd.DStreamOutSize()
	}
	srd, err := d.Reader(rd)
	if err != nil {
		return nil, err
	}
	return &ChunkIter{it: strm.NewIter(srd, chunkSize)}, nil
}

// CopyStream decompresses everything from 'rd' into 'wr'.  Returns the
// number of bytes read and written.
func (d *Decompressor) CopyStream(wr io.Writer, rd io.Reader) (nRead, nWritten int64, err error) {
	if err = d.acquire(); err != nil {
		return
	}
	defer d.release()

	if err = d.beginSession(); err != nil {
		return
	}

	return strm.CopyDecompress(wr, rd, d.dctx,
		d.o.CalcReadSize(false), d.o.CalcWriteSize(false))
}

// MemorySize returns the native memory footprint in bytes.
func (d *Decompressor) MemorySize() int {
	if d.dctx == nil {
		return 0
	}
	return d.dctx.SizeOf()
}

// Close releases the native context.  Double close is a no-op; closing
// with a session in flight fails with ErrState.
func (d *Decompressor) Close() error {
	if !d.busy.CompareAndSwap(false, true) {
		return zerr.ErrState
	}
	defer d.busy.Store(false)

	if d.dctx != nil {
		d.dctx.Free()
		d.dctx = nil
	}
	return nil
}
