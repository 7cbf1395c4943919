package czstd

/*
#cgo LDFLAGS: -lzstd

#define ZSTD_STATIC_LINKING_ONLY
#define ZDICT_STATIC_LINKING_ONLY
#include <zstd.h>
#include <zdict.h>
#include <string.h>

static size_t trainFastCover_wrapper(void* dict, size_t dictCap,
	const void* samples, const size_t* sizes, unsigned n,
	unsigned k, unsigned d, unsigned f, unsigned steps, unsigned nbThreads,
	double splitPoint, unsigned accel,
	int level, unsigned dictID, unsigned notify)
{
	ZDICT_fastCover_params_t params;
	memset(&params, 0, sizeof(params));
	params.k          = k;
	params.d          = d;
	params.f          = f;
	params.steps      = steps;
	params.nbThreads  = nbThreads;
	params.splitPoint = splitPoint;
	params.accel      = accel;
	params.zParams.compressionLevel  = level;
	params.zParams.dictID            = dictID;
	params.zParams.notificationLevel = notify;
	return ZDICT_optimizeTrainFromBuffer_fastCover(dict, dictCap,
		samples, sizes, n, &params);
}
*/
import "C"

import (
	"runtime"
	"sync"
)

const MinDictSize = int(C.ZDICT_DICTSIZE_MIN)

// CDict is a digested compression dictionary.  Immutable; safe for
// concurrent use by any number of contexts.
type CDict struct {
	p *C.ZSTD_CDict
}

func NewCDict(dict []byte, level int) (*CDict, error) {
	p := C.ZSTD_createCDict(bytePtr(dict), C.size_t(len(dict)), C.int(level))
	runtime.KeepAlive(dict)
	if p == nil {
		return nil, &Error{msg: "fail create compression dictionary"}
	}
	cd := &CDict{p: p}
	runtime.SetFinalizer(cd, (*CDict).Free)
	return cd, nil
}

func (cd *CDict) Free() {
	if cd.p != nil {
		C.ZSTD_freeCDict(cd.p)
		cd.p = nil
	}
}

func (cd *CDict) SizeOf() int {
	if cd.p == nil {
		return 0
	}
	return int(C.ZSTD_sizeof_CDict(cd.p))
}

// DDict is a digested decompression dictionary.
type DDict struct {
	p *C.ZSTD_DDict
}

func NewDDict(dict []byte) (*DDict, error) {
	p := C.ZSTD_createDDict(bytePtr(dict), C.size_t(len(dict)))
	runtime.KeepAlive(dict)
	if p == nil {
		return nil, &Error{msg: "fail create decompression dictionary"}
	}
	dd := &DDict{p: p}
	runtime.SetFinalizer(dd, (*DDict).Free)
	return dd, nil
}

func (dd *DDict) Free() {
	if dd.p != nil {
		C.ZSTD_freeDDict(dd.p)
		dd.p = nil
	}
}

func (dd *DDict) SizeOf() int {
	if dd.p == nil {
		return 0
	}
	return int(C.ZSTD_sizeof_DDict(dd.p))
}

// GetDictID extracts the dictionary identifier from raw dictionary bytes.
// Returns 0 for content-only dictionaries.
func GetDictID(dict []byte) uint32 {
	id := C.ZDICT_getDictID(bytePtr(dict), C.size_t(len(dict)))
	runtime.KeepAlive(dict)
	return uint32(id)
}

type TrainParams struct {
	K           uint
	D           uint
	F           uint
	Steps       uint
	Threads     uint
	SplitPoint  float64
	Accel       uint
	Level       int
	DictID      uint32
	NotifyLevel uint
}

// ZDICT training crashes under concurrent invocation; serialize it.
var trainLock sync.Mutex

// TrainFastCover runs the fastcover optimizer over the flattened sample
// buffer and writes the dictionary into dict.  Returns the number of
// dictionary bytes actually produced.
func TrainFastCover(dict, samples []byte, sampleSizes []uint64, p TrainParams) (int, error) {
	csizes := make([]C.size_t, len(sampleSizes))
	for i, sz := range sampleSizes {
		csizes[i] = C.size_t(sz)
	}

	trainLock.Lock()
	code := C.trainFastCover_wrapper(
		bytePtr(dict), C.size_t(len(dict)),
		bytePtr(samples), &csizes[0], C.unsigned(len(csizes)),
		C.unsigned(p.K), C.unsigned(p.D), C.unsigned(p.F),
		C.unsigned(p.Steps), C.unsigned(p.Threads),
		C.double(p.SplitPoint), C.unsigned(p.Accel),
		C.int(p.Level), C.unsigned(p.DictID), C.unsigned(p.NotifyLevel))
	trainLock.Unlock()

	runtime.KeepAlive(dict)
	runtime.KeepAlive(samples)

	if C.ZDICT_isError(code) != 0 {
		return 0, &Error{msg: C.GoString(C.ZDICT_getErrorName(code))}
	}
	return int(code), nil
}
