package pzstd

import (
	"io"
	"sync/atomic"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/opts"
	"github.com/pzstd-dev/pzstd/internal/pkg/strm"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// Compressor owns one native compression context.  It supports one
// operation at a time; a second concurrent operation fails with
// ErrState.  Safe to reuse across sequential operations; reuse is much
// cheaper than constructing a new Compressor.
type Compressor struct {
	o    opts.OptsT
	cctx *czstd.CCtx
	busy atomic.Bool
}

// NewCompressor validates the options and configures a native context
// with them.  Call Close to release the context eagerly; otherwise a
// finalizer reclaims it.
func NewCompressor(os ...OptT) (*Compressor, error) {
	o, err := buildOpts(os)
	if err != nil {
		return nil, err
	}

	cctx := czstd.NewCCtx()
	if err := applyCParams(cctx, &o); err != nil {
		cctx.Free()
		return nil, err
	}

	return &Compressor{o: o, cctx: cctx}, nil
}

func applyCParams(cctx *czstd.CCtx, o *opts.OptsT) error {

	params := []struct {
		p czstd.CParam
		v int
	}{
		{czstd.CLevel, o.Level},
		{czstd.CWindowLog, o.WindowLog},
		{czstd.CHashLog, o.HashLog},
		{czstd.CChainLog, o.ChainLog},
		{czstd.CSearchLog, o.SearchLog},
		{czstd.CMinMatch, o.MinMatch},
		{czstd.CTargetLength, o.TargetLength},
		{czstd.CStrategy, o.Strategy},
		{czstd.CContentSizeFlag, b2i(o.ContentSize)},
		{czstd.CChecksumFlag, b2i(o.Checksum)},
		{czstd.CDictIDFlag, b2i(o.DictID)},
		{czstd.CNbWorkers, o.Threads},
		{czstd.CJobSize, o.JobSize},
		{czstd.COverlapLog, o.OverlapLog},
		{czstd.CEnableLDM, b2i(o.EnableLDM)},
		{czstd.CLDMHashLog, o.LDMHashLog},
		{czstd.CLDMMinMatch, o.LDMMinMatch},
		{czstd.CLDMBucketSizeLog, o.LDMBucketSizeLog},
		{czstd.CLDMHashRateLog, o.LDMHashRateLog},
	}

	for _, pv := range params {
		if err := cctx.SetParameter(pv.p, pv.v); err != nil {
			return zerr.Wrap(zerr.ErrValidation, err)
		}
	}

	if d, ok := o.Dict.(*Dict); ok && d != nil {
		cd, err := d.cdictFor(o.Level)
		if err != nil {
			return err
		}
		if err := cctx.RefCDict(cd); err != nil {
			return zerr.Wrap(zerr.ErrValidation, err)
		}
	}

	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *Compressor) acquire() error {
	if !c.busy.CompareAndSwap(false, true) {
		return zerr.ErrState
	}
	if c.cctx == nil {
		c.busy.Store(false)
		return zerr.ErrClosed
	}
	return nil
}

func (c *Compressor) release() {
	c.busy.Store(false)
}

// beginSession discards any previous session state.  Parameters and the
// referenced dictionary survive the reset.
func (c *Compressor) beginSession() error {
	if err := c.cctx.Reset(czstd.ResetSession); err != nil {
		return zerr.Wrap(zerr.ErrState, err)
	}
	if c.o.PledgedSize != nil {
		if err := c.cctx.SetPledgedSrcSize(*c.o.PledgedSize); err != nil {
			return zerr.Wrap(zerr.ErrValidation, err)
		}
	}
	return nil
}

// Compress appends the compressed form of 'src' to 'dst' as a single
// frame and returns the extended slice.  Pass nil for 'dst' to allocate
// one.
func (c *Compressor) Compress(dst, src []byte) ([]byte, error) {
	if err := c.acquire(); err != nil {
		return dst, err
	}
	defer c.release()

	if err := c.cctx.Reset(czstd.ResetSession); err != nil {
		return dst, zerr.Wrap(zerr.ErrCompress, err)
	}
	if err := c.cctx.SetPledgedSrcSize(uint64(len(src))); err != nil {
		return dst, zerr.Wrap(zerr.ErrCompress, err)
	}

	var (
		dstPos = len(dst)
		need   = dstPos + czstd.CompressBound(len(src))
	)
	if cap(dst) >= need {
		dst = dst[:need]
	} else {
		dst = append(dst, make([]byte, need-dstPos)...)
	}

	var (
		srcPos int
		outPos = dstPos
	)

	// Multi-threaded sessions may need several calls to drain workers.
	for {
		rem, op, ip, err := c.cctx.CompressStream2(dst, outPos, src, srcPos, czstd.OpEnd)
		if err != nil {
			return dst[:dstPos], zerr.Wrap(zerr.ErrCompress, err)
		}
		outPos, srcPos = op, ip

		if rem == 0 && srcPos == len(src) {
			break
		}
		if outPos == len(dst) {
			// Cannot happen with a CompressBound-sized output.
			return dst[:dstPos], zerr.Wrapf(zerr.ErrCompress, "partial frame flush")
		}
	}

	return dst[:outPos], nil
}

// Writer starts a streaming session that compresses data written to it
// into 'wr'.  The Compressor stays busy until the session is closed.
func (c *Compressor) Writer(wr io.Writer) (Writer, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	if err := c.beginSession(); err != nil {
		c.release()
		return nil, err
	}
	return strm.NewCWriter(wr, c.cctx, c.o.CalcWriteSize(true), c.release), nil
}

// Reader starts a streaming session that pulls plain data from 'rd' and
// yields compressed frame bytes.  The Compressor stays busy until the
// session is closed.
func (c *Compressor) Reader(rd io.Reader) (Reader, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	if err := c.beginSession(); err != nil {
		c.release()
		return nil, err
	}
	return strm.NewCReader(rd, c.cctx, c.o.CalcReadSize(true), c.release), nil
}

// Chunks starts a session that yields compressed output from 'rd' in
// chunks of up to chunkSize bytes.  chunkSize <= 0 selects the
// recommended output size.
func (c *Compressor) Chunks(rd io.Reader, chunkSize int) (*ChunkIter, error) {
	if chunkSize <= 0 {
		chunkSize = czstd.CStreamOutSize()
	}
	srd, err := c.Reader(rd)
	if err != nil {
		return nil, err
	}
	return &ChunkIter{it: strm.NewIter(srd, chunkSize)}, nil
}

// CopyStream compresses everything from 'rd' into 'wr' as one frame.
// Returns the number of bytes read and written.
func (c *Compressor) CopyStream(wr io.Writer, rd io.Reader) (nRead, nWritten int64, err error) {
	if err = c.acquire(); err != nil {
		return
	}
	defer c.release()

	if err = c.beginSession(); err != nil {
		return
	}

	return strm.CopyCompress(wr, rd, c.cctx,
		c.o.CalcReadSize(true), c.o.CalcWriteSize(true))
}

// FrameProgression reports ingested/consumed/produced/flushed byte
// counts for the operation currently in flight on this context.
func (c *Compressor) FrameProgression() (ingested, consumed, produced, flushed uint64) {
	if c.cctx == nil {
		return
	}
	return c.cctx.FrameProgression()
}

// MemorySize returns the native memory footprint in bytes.
func (c *Compressor) MemorySize() int {
	if c.cctx == nil {
		return 0
	}
	return c.cctx.SizeOf()
}

// Close releases the native context.  Double close is a no-op; closing
// with a session in flight fails with ErrState.
func (c *Compressor) Close() error {
	if !c.busy.CompareAndSwap(false, true) {
		return zerr.ErrState
	}
	defer c.busy.Store(false)

	if c.cctx != nil {
		c.cctx.Free()
		c.cctx = nil
	}
	return nil
}
