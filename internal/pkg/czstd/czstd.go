// Package czstd is the thin cgo layer over libzstd.  It exposes the
// streaming contexts, the advanced parameter API and the one-shot
// helpers.  All buffer management policy lives above this package.
package czstd

/*
#cgo CFLAGS: -O3
#cgo LDFLAGS: -lzstd

#define ZSTD_STATIC_LINKING_ONLY
#include <zstd.h>
#include <zstd_errors.h>
#include <string.h>

// Wrapper functions keep the ZSTD_inBuffer/ZSTD_outBuffer structs on the
// C stack, avoiding per-call Go allocations.
// See https://github.com/golang/go/issues/24450 .

typedef struct {
	size_t code;
	size_t srcPos;
	size_t dstPos;
} streamRetT;

static streamRetT compressStream2_wrapper(ZSTD_CCtx* cctx,
	void* dst, size_t dstCap, size_t dstPos,
	const void* src, size_t srcSz, size_t srcPos,
	int endOp)
{
	ZSTD_outBuffer ob = { dst, dstCap, dstPos };
	ZSTD_inBuffer  ib = { src, srcSz, srcPos };
	streamRetT r;
	r.code   = ZSTD_compressStream2(cctx, &ob, &ib, (ZSTD_EndDirective)endOp);
	r.srcPos = ib.pos;
	r.dstPos = ob.pos;
	return r;
}

static streamRetT decompressStream_wrapper(ZSTD_DCtx* dctx,
	void* dst, size_t dstCap, size_t dstPos,
	const void* src, size_t srcSz, size_t srcPos)
{
	ZSTD_outBuffer ob = { dst, dstCap, dstPos };
	ZSTD_inBuffer  ib = { src, srcSz, srcPos };
	streamRetT r;
	r.code   = ZSTD_decompressStream(dctx, &ob, &ib);
	r.srcPos = ib.pos;
	r.dstPos = ob.pos;
	return r;
}

typedef struct {
	size_t             code;
	unsigned long long contentSize;
	unsigned long long windowSize;
	unsigned           dictID;
	unsigned           checksumFlag;
} frameHdrT;

static frameHdrT getFrameHeader_wrapper(const void* src, size_t srcSz)
{
	ZSTD_frameHeader zfh;
	frameHdrT r;
	memset(&r, 0, sizeof(r));
	r.code = ZSTD_getFrameHeader(&zfh, src, srcSz);
	if (r.code == 0) {
		r.contentSize  = zfh.frameContentSize;
		r.windowSize   = zfh.windowSize;
		r.dictID       = zfh.dictID;
		r.checksumFlag = zfh.checksumFlag;
	}
	return r;
}

typedef struct {
	unsigned long long ingested;
	unsigned long long consumed;
	unsigned long long produced;
	unsigned long long flushed;
} progressionT;

static progressionT getFrameProgression_wrapper(const ZSTD_CCtx* cctx)
{
	ZSTD_frameProgression fp = ZSTD_getFrameProgression(cctx);
	progressionT r;
	r.ingested = fp.ingested;
	r.consumed = fp.consumed;
	r.produced = fp.produced;
	r.flushed  = fp.flushed;
	return r;
}
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// Sentinels returned by ZSTD_getFrameContentSize.
const (
	ContentSizeUnknown = ^uint64(0)     // ZSTD_CONTENTSIZE_UNKNOWN
	ContentSizeError   = ^uint64(0) - 1 // ZSTD_CONTENTSIZE_ERROR
)

// End directives for CompressStream2.
type EndDirective int

const (
	OpContinue = EndDirective(C.ZSTD_e_continue)
	OpFlush    = EndDirective(C.ZSTD_e_flush)
	OpEnd      = EndDirective(C.ZSTD_e_end)
)

type ResetDirective int

const (
	ResetSession = ResetDirective(C.ZSTD_reset_session_only)
	ResetParams  = ResetDirective(C.ZSTD_reset_parameters)
	ResetBoth    = ResetDirective(C.ZSTD_reset_session_and_parameters)
)

// Compression parameters; values mirror the ZSTD_c_* enum.
type CParam int

const (
	CLevel            = CParam(C.ZSTD_c_compressionLevel)
	CWindowLog        = CParam(C.ZSTD_c_windowLog)
	CHashLog          = CParam(C.ZSTD_c_hashLog)
	CChainLog         = CParam(C.ZSTD_c_chainLog)
	CSearchLog        = CParam(C.ZSTD_c_searchLog)
	CMinMatch         = CParam(C.ZSTD_c_minMatch)
	CTargetLength     = CParam(C.ZSTD_c_targetLength)
	CStrategy         = CParam(C.ZSTD_c_strategy)
	CEnableLDM        = CParam(C.ZSTD_c_enableLongDistanceMatching)
	CLDMHashLog       = CParam(C.ZSTD_c_ldmHashLog)
	CLDMMinMatch      = CParam(C.ZSTD_c_ldmMinMatch)
	CLDMBucketSizeLog = CParam(C.ZSTD_c_ldmBucketSizeLog)
	CLDMHashRateLog   = CParam(C.ZSTD_c_ldmHashRateLog)
	CContentSizeFlag  = CParam(C.ZSTD_c_contentSizeFlag)
	CChecksumFlag     = CParam(C.ZSTD_c_checksumFlag)
	CDictIDFlag       = CParam(C.ZSTD_c_dictIDFlag)
	CNbWorkers        = CParam(C.ZSTD_c_nbWorkers)
	CJobSize          = CParam(C.ZSTD_c_jobSize)
	COverlapLog       = CParam(C.ZSTD_c_overlapLog)
)

// Decompression parameters; values mirror the ZSTD_d_* enum.
type DParam int

const (
	DWindowLogMax = DParam(C.ZSTD_d_windowLogMax)
)

// Error carries libzstd's error text for a failed call.
type Error struct {
	code int
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Code() int { return e.code }

func getError(code C.size_t) error {
	if C.ZSTD_isError(code) == 0 {
		return nil
	}
	return &Error{
		code: int(C.ZSTD_getErrorCode(code)),
		msg:  C.GoString(C.ZSTD_getErrorName(code)),
	}
}

func bytePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func MinLevel() int { return int(C.ZSTD_minCLevel()) }
func MaxLevel() int { return int(C.ZSTD_maxCLevel()) }

func CompressBound(srcSz int) int {
	return int(C.ZSTD_compressBound(C.size_t(srcSz)))
}

// Recommended staging buffer sizes for the streaming API.
func CStreamInSize() int  { return int(C.ZSTD_CStreamInSize()) }
func CStreamOutSize() int { return int(C.ZSTD_CStreamOutSize()) }
func DStreamInSize() int  { return int(C.ZSTD_DStreamInSize()) }
func DStreamOutSize() int { return int(C.ZSTD_DStreamOutSize()) }

func VersionNumber() uint   { return uint(C.ZSTD_versionNumber()) }
func VersionString() string { return C.GoString(C.ZSTD_versionString()) }

//---

type CCtx struct {
	p *C.ZSTD_CCtx
}

func NewCCtx() *CCtx {
	c := &CCtx{p: C.ZSTD_createCCtx()}
	runtime.SetFinalizer(c, (*CCtx).Free)
	return c
}

// Free releases the native context.  Safe to call more than once.
func (c *CCtx) Free() {
	if c.p != nil {
		C.ZSTD_freeCCtx(c.p)
		c.p = nil
	}
}

func (c *CCtx) SetParameter(p CParam, v int) error {
	return getError(C.ZSTD_CCtx_setParameter(c.p, C.ZSTD_cParameter(p), C.int(v)))
}

func (c *CCtx) SetPledgedSrcSize(sz uint64) error {
	return getError(C.ZSTD_CCtx_setPledgedSrcSize(c.p, C.ulonglong(sz)))
}

func (c *CCtx) Reset(d ResetDirective) error {
	return getError(C.ZSTD_CCtx_reset(c.p, C.ZSTD_ResetDirective(d)))
}

// RefCDict attaches a digested dictionary; nil clears it.
func (c *CCtx) RefCDict(cd *CDict) error {
	var p *C.ZSTD_CDict
	if cd != nil {
		p = cd.p
	}
	return getError(C.ZSTD_CCtx_refCDict(c.p, p))
}

// CompressStream2 feeds src[srcPos:] through the encoder into dst[dstPos:].
// Returns the native remaining-work hint (0 when a flush/end directive is
// complete) plus the updated buffer positions.
func (c *CCtx) CompressStream2(dst []byte, dstPos int, src []byte, srcPos int, op EndDirective) (rem uint64, outPos, inPos int, err error) {
	r := C.compressStream2_wrapper(c.p,
		bytePtr(dst), C.size_t(len(dst)), C.size_t(dstPos),
		bytePtr(src), C.size_t(len(src)), C.size_t(srcPos),
		C.int(op))
	runtime.KeepAlive(dst)
	runtime.KeepAlive(src)

	outPos, inPos = int(r.dstPos), int(r.srcPos)
	if err = getError(r.code); err != nil {
		return 0, outPos, inPos, err
	}
	return uint64(r.code), outPos, inPos, nil
}

// FrameProgression reports ingested/consumed/produced/flushed byte counts
// for the frame currently in progress on this context.
func (c *CCtx) FrameProgression() (ingested, consumed, produced, flushed uint64) {
	r := C.getFrameProgression_wrapper(c.p)
	return uint64(r.ingested), uint64(r.consumed), uint64(r.produced), uint64(r.flushed)
}

func (c *CCtx) SizeOf() int {
	if c.p == nil {
		return 0
	}
	return int(C.ZSTD_sizeof_CCtx(c.p))
}

//---

type DCtx struct {
	p *C.ZSTD_DCtx
}

func NewDCtx() *DCtx {
	d := &DCtx{p: C.ZSTD_createDCtx()}
	runtime.SetFinalizer(d, (*DCtx).Free)
	return d
}

func (d *DCtx) Free() {
	if d.p != nil {
		C.ZSTD_freeDCtx(d.p)
		d.p = nil
	}
}

func (d *DCtx) SetParameter(p DParam, v int) error {
	return getError(C.ZSTD_DCtx_setParameter(d.p, C.ZSTD_dParameter(p), C.int(v)))
}

func (d *DCtx) Reset(dir ResetDirective) error {
	return getError(C.ZSTD_DCtx_reset(d.p, C.ZSTD_ResetDirective(dir)))
}

// RefDDict attaches a digested dictionary; nil clears it.
func (d *DCtx) RefDDict(dd *DDict) error {
	var p *C.ZSTD_DDict
	if dd != nil {
		p = dd.p
	}
	return getError(C.ZSTD_DCtx_refDDict(d.p, p))
}

// DecompressStream decodes src[srcPos:] into dst[dstPos:].  The returned
// hint is 0 exactly when a frame is completely decoded and flushed.
func (d *DCtx) DecompressStream(dst []byte, dstPos int, src []byte, srcPos int) (rem uint64, outPos, inPos int, err error) {
	r := C.decompressStream_wrapper(d.p,
		bytePtr(dst), C.size_t(len(dst)), C.size_t(dstPos),
		bytePtr(src), C.size_t(len(src)), C.size_t(srcPos))
	runtime.KeepAlive(dst)
	runtime.KeepAlive(src)

	outPos, inPos = int(r.dstPos), int(r.srcPos)
	if err = getError(r.code); err != nil {
		return 0, outPos, inPos, err
	}
	return uint64(r.code), outPos, inPos, nil
}

func (d *DCtx) SizeOf() int {
	if d.p == nil {
		return 0
	}
	return int(C.ZSTD_sizeof_DCtx(d.p))
}

//---

// GetFrameContentSize returns the raw content-size field, which may be
// ContentSizeUnknown or ContentSizeError.
func GetFrameContentSize(src []byte) uint64 {
	v := C.ZSTD_getFrameContentSize(bytePtr(src), C.size_t(len(src)))
	runtime.KeepAlive(src)
	return uint64(v)
}

type FrameHeaderT struct {
	ContentSize uint64 // ContentSizeUnknown when absent
	WindowSize  uint64
	DictID      uint32
	Checksum    bool
}

// FrameHeader parses the header of the frame starting at src[0].
func FrameHeader(src []byte) (FrameHeaderT, error) {
	r := C.getFrameHeader_wrapper(bytePtr(src), C.size_t(len(src)))
	runtime.KeepAlive(src)

	var hdr FrameHeaderT
	if err := getError(r.code); err != nil {
		return hdr, err
	}
	if r.code > 0 {
		// Needs r.code more bytes to parse.
		return hdr, &Error{msg: "frame header truncated"}
	}
	hdr.ContentSize = uint64(r.contentSize)
	hdr.WindowSize = uint64(r.windowSize)
	hdr.DictID = uint32(r.dictID)
	hdr.Checksum = r.checksumFlag != 0
	return hdr, nil
}

// FrameHeaderSize returns the size in bytes of the frame header at src[0].
func FrameHeaderSize(src []byte) (int, error) {
	code := C.ZSTD_frameHeaderSize(bytePtr(src), C.size_t(len(src)))
	runtime.KeepAlive(src)
	if err := getError(code); err != nil {
		return 0, err
	}
	return int(code), nil
}
