package opts

import (
	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
)

// WorkerPool is the interface batch operations dispatch through.
// Satisfied by github.com/gammazero/workerpool.
type WorkerPool interface {
	Submit(task func())
}

type OptsT struct {
	// Compression parameters
	Level            int
	WindowLog        int
	HashLog          int
	ChainLog         int
	SearchLog        int
	MinMatch         int
	TargetLength     int
	Strategy         int
	Threads          int
	JobSize          int
	OverlapLog       int
	EnableLDM        bool
	LDMHashLog       int
	LDMMinMatch      int
	LDMBucketSizeLog int
	LDMHashRateLog   int

	// Frame header fields to request
	Checksum    bool
	ContentSize bool
	DictID      bool

	// Decompression limits
	MaxWindowLog  int
	MaxOutputSize int

	// Session tuning
	ReadSize    int
	WriteSize   int
	PledgedSize *uint64

	// Dict is an opaque *pzstd.Dict reference; typed as any to keep this
	// package below the root package in the import graph.
	Dict any

	WorkerPool WorkerPool
}

// Default returns the option set matching libzstd defaults plus
// content-size and dict-id frame fields enabled.
func Default() OptsT {
	return OptsT{
		Level:       3, // ZSTD_CLEVEL_DEFAULT
		ContentSize: true,
		DictID:      true,
	}
}

// CalcReadSize resolves the input staging size for a session.
func (o *OptsT) CalcReadSize(compression bool) int {
	if o.ReadSize > 0 {
		return o.ReadSize
	}
	if compression {
		return czstd.CStreamInSize()
	}
	return czstd.DStreamInSize()
}

// CalcWriteSize resolves the output staging size for a session.
func (o *OptsT) CalcWriteSize(compression bool) int {
	if o.WriteSize > 0 {
		return o.WriteSize
	}
	if compression {
		return czstd.CStreamOutSize()
	}
	return czstd.DStreamOutSize()
}

// Validate rejects nonsensical session tuning before any native call.
func (o *OptsT) Validate() bool {
	return o.ReadSize >= 0 && o.WriteSize >= 0 && o.MaxOutputSize >= 0
}
