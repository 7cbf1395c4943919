package pzstd

import (
	"runtime"

	"github.com/pzstd-dev/pzstd/internal/pkg/opts"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

func buildOpts(os []OptT) (opts.OptsT, error) {
	o := opts.Default()
	for _, f := range os {
		if f != nil {
			f(&o)
		}
	}
	if !o.Validate() {
		return o, zerr.ErrValidation
	}
	return o, nil
}

// OptT is a configuration option for a Compressor or Decompressor.
// Options that do not apply to the context kind are ignored.
type OptT func(o *opts.OptsT)

// WithLevel sets the compression level, clamped to the supported range.
// Level 0 selects the library default.
func WithLevel(level int) OptT {
	return func(o *opts.OptsT) {
		switch {
		case level < MinLevel():
			level = MinLevel()
		case level > MaxLevel():
			level = MaxLevel()
		}
		o.Level = level
	}
}

// WithDict attaches a digested dictionary for compression or
// decompression.
func WithDict(d *Dict) OptT {
	return func(o *opts.OptsT) {
		o.Dict = d
	}
}

// WithChecksum appends a 4-byte content checksum to each frame, and
// verifies it on decompression.
func WithChecksum(enable bool) OptT {
	return func(o *opts.OptsT) {
		o.Checksum = enable
	}
}

// WithContentSize controls whether frame headers record the input size
// when it is known.  Enabled by default.
func WithContentSize(enable bool) OptT {
	return func(o *opts.OptsT) {
		o.ContentSize = enable
	}
}

// WithDictID controls whether frame headers record the dictionary id.
// Enabled by default.
func WithDictID(enable bool) OptT {
	return func(o *opts.OptsT) {
		o.DictID = enable
	}
}

// WithThreads enables multi-threaded compression with the given worker
// count.  Negative selects runtime.NumCPU().  Zero (the default) keeps
// compression on the calling goroutine.
func WithThreads(n int) OptT {
	return func(o *opts.OptsT) {
		if n < 0 {
			n = runtime.NumCPU()
		}
		o.Threads = n
	}
}

// WithJobSize sets the per-job input size for multi-threaded
// compression.  Zero selects the library default.
func WithJobSize(sz int) OptT {
	return func(o *opts.OptsT) {
		o.JobSize = sz
	}
}

// WithOverlapLog sets the inter-job overlap for multi-threaded
// compression.
func WithOverlapLog(v int) OptT {
	return func(o *opts.OptsT) {
		o.OverlapLog = v
	}
}

func WithWindowLog(v int) OptT {
	return func(o *opts.OptsT) {
		o.WindowLog = v
	}
}

func WithHashLog(v int) OptT {
	return func(o *opts.OptsT) {
		o.HashLog = v
	}
}

func WithChainLog(v int) OptT {
	return func(o *opts.OptsT) {
		o.ChainLog = v
	}
}

func WithSearchLog(v int) OptT {
	return func(o *opts.OptsT) {
		o.SearchLog = v
	}
}

func WithMinMatch(v int) OptT {
	return func(o *opts.OptsT) {
		o.MinMatch = v
	}
}

func WithTargetLength(v int) OptT {
	return func(o *opts.OptsT) {
		o.TargetLength = v
	}
}

// WithStrategy sets the match-finder strategy (ZSTD_fast=1 through
// ZSTD_btultra2=9).  Zero selects automatically from the level.
func WithStrategy(v int) OptT {
	return func(o *opts.OptsT) {
		o.Strategy = v
	}
}

// WithLongDistanceMatching enables long-distance matching with optional
// tuning; pass zeros to keep library defaults.
func WithLongDistanceMatching(hashLog, minMatch, bucketSizeLog, hashRateLog int) OptT {
	return func(o *opts.OptsT) {
		o.EnableLDM = true
		o.LDMHashLog = hashLog
		o.LDMMinMatch = minMatch
		o.LDMBucketSizeLog = bucketSizeLog
		o.LDMHashRateLog = hashRateLog
	}
}

// WithMaxWindowLog bounds the window size a decompressor accepts.
// Frames requiring a larger window fail with ErrDecompress.
func WithMaxWindowLog(v int) OptT {
	return func(o *opts.OptsT) {
		o.MaxWindowLog = v
	}
}

// WithMaxOutputSize bounds one-shot decompression output when the frame
// header does not record the content size.
func WithMaxOutputSize(sz int) OptT {
	return func(o *opts.OptsT) {
		o.MaxOutputSize = sz
	}
}

// WithReadSize overrides the input staging buffer size for streaming
// sessions.
func WithReadSize(sz int) OptT {
	return func(o *opts.OptsT) {
		o.ReadSize = sz
	}
}

// WithWriteSize overrides the output staging buffer size for streaming
// sessions.
func WithWriteSize(sz int) OptT {
	return func(o *opts.OptsT) {
		o.WriteSize = sz
	}
}

// WithPledgedSrcSize declares the exact input size of the next
// streaming session up front, so its frame header can record the
// content size.  The session fails if the pledge is broken.
func WithPledgedSrcSize(sz uint64) OptT {
	return func(o *opts.OptsT) {
		o.PledgedSize = &sz
	}
}

// WorkerPool dispatches batch tasks.  Satisfied by
// github.com/gammazero/workerpool.
type WorkerPool interface {
	Submit(task func())
}

// WithWorkerPool routes MultiCompress/MultiDecompress tasks through the
// given pool instead of the package default.
func WithWorkerPool(wp WorkerPool) OptT {
	return func(o *opts.OptsT) {
		o.WorkerPool = wp
	}
}
