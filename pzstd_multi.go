package pzstd

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gammazero/workerpool"

	"github.com/pzstd-dev/pzstd/internal/pkg/opts"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

var (
	poolOnce sync.Once
	poolDef  *workerpool.WorkerPool
)

// defaultPool is shared by all batch operations that were not given a
// pool via WithWorkerPool.
func defaultPool() opts.WorkerPool {
	poolOnce.Do(func() {
		poolDef = workerpool.New(runtime.NumCPU())
	})
	return poolDef
}

// rangeT is a half-open index range assigned to one worker.
type rangeT struct {
	lo, hi int
}

func splitRanges(n, workers int) []rangeT {
	if workers <= 0 || workers > n {
		workers = n
	}

	var (
		out   = make([]rangeT, 0, workers)
		chunk = n / workers
		extra = n % workers
		lo    int
	)
	for i := 0; i < workers; i++ {
		hi := lo + chunk
		if i < extra {
			hi++
		}
		out = append(out, rangeT{lo: lo, hi: hi})
		lo = hi
	}
	return out
}

// MultiCompress compresses each source independently as its own frame,
// spread across the worker pool.  Results come back as one segmented
// buffer per worker, assembled into a collection whose segment order
// matches the source order.
//
// Use Views() on a BufferWithSegments or collection to feed its
// segments in directly.
func MultiCompress(sources [][]byte, os ...OptT) (*BufferWithSegmentsCollection, error) {
	o, err := buildOpts(os)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, zerr.Wrapf(zerr.ErrValidation, "no sources")
	}

	ranges := splitRanges(len(sources), o.Threads)

	var (
		pool    = o.WorkerPool
		wg      sync.WaitGroup
		abort   atomic.Bool
		results = make([]*BufferWithSegments, len(ranges))
		errs    = make([]error, len(ranges))
	)
	if pool == nil {
		pool = defaultPool()
	}

	for i, r := range ranges {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = compressRange(sources[r.lo:r.hi], &abort, os)
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return NewBufferWithSegmentsCollection(results...)
}

func compressRange(srcs [][]byte, abort *atomic.Bool, os []OptT) (_ *BufferWithSegments, err error) {
	defer func() {
		if err != nil {
			abort.Store(true)
		}
	}()

	c, err := NewCompressor(os...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var (
		data []byte
		segs = make([]SegmentT, 0, len(srcs))
	)
	for _, src := range srcs {
		if abort.Load() {
			return nil, nil
		}

		start := len(data)
		if data, err = c.Compress(data, src); err != nil {
			return nil, err
		}
		segs = append(segs, SegmentT{
			Offset: uint64(start),
			Length: uint64(len(data) - start),
		})
	}

	return NewBufferWithSegments(data, segs)
}

// MultiDecompress decompresses each source frame independently, spread
// across the worker pool.  Every frame header must record its content
// size unless WithMaxOutputSize is set.
func MultiDecompress(sources [][]byte, os ...OptT) (*BufferWithSegmentsCollection, error) {
	o, err := buildOpts(os)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, zerr.Wrapf(zerr.ErrValidation, "no sources")
	}

	ranges := splitRanges(len(sources), o.Threads)

	var (
		pool    = o.WorkerPool
		wg      sync.WaitGroup
		abort   atomic.Bool
		results = make([]*BufferWithSegments, len(ranges))
		errs    = make([]error, len(ranges))
	)
	if pool == nil {
		pool = defaultPool()
	}

	for i, r := range ranges {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = decompressRange(sources[r.lo:r.hi], &abort, os)
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return NewBufferWithSegmentsCollection(results...)
}

func decompressRange(srcs [][]byte, abort *atomic.Bool, os []OptT) (_ *BufferWithSegments, err error) {
	defer func() {
		if err != nil {
			abort.Store(true)
		}
	}()

	d, err := NewDecompressor(os...)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var (
		data []byte
		segs = make([]SegmentT, 0, len(srcs))
	)
	for _, src := range srcs {
		if abort.Load() {
			return nil, nil
		}

		start := len(data)
		if data, err = d.Decompress(data, src); err != nil {
			return nil, err
		}
		segs = append(segs, SegmentT{
			Offset: uint64(start),
			Length: uint64(len(data) - start),
		})
	}

	return NewBufferWithSegments(data, segs)
}
