package test

import (
	"errors"
	"testing"

	"github.com/pzstd-dev/pzstd"
)

type Option = pzstd.OptT

type roundTripT struct {
	src   []byte
	copts []Option
	dopts []Option
}

func roundTrips(t *testing.T) map[string]roundTripT {
	t.Helper()

	var (
		lsrc = GenCompressible(2 << 20)
		usrc = GenUncompressable(1 << 20)
	)

	defOpts := func(opt ...Option) roundTripT {
		return roundTripT{
			src:   lsrc,
			copts: opt,
		}
	}

	basics := map[string]roundTripT{
		"empty":            {},
		"level1":           defOpts(pzstd.WithLevel(1)),
		"level3":           defOpts(pzstd.WithLevel(3)),
		"level19":          defOpts(pzstd.WithLevel(19)),
		"negative_level":   defOpts(pzstd.WithLevel(-5)),
		"checksum_on":      defOpts(pzstd.WithChecksum(true)),
		"checksum_off":     defOpts(pzstd.WithChecksum(false)),
		"ldm":              defOpts(pzstd.WithLongDistanceMatching(0, 0, 0, 0)),
		"window_log_20":    defOpts(pzstd.WithWindowLog(20)),
		"threads_auto":     defOpts(pzstd.WithThreads(-1)),
		"threads_2":        defOpts(pzstd.WithThreads(2)),
		"uncompressable":   {src: usrc},
		"strategy_btlazy2": defOpts(pzstd.WithStrategy(6)),
		"no_content_size": {
			src:   lsrc,
			copts: []Option{pzstd.WithContentSize(false)},
			dopts: []Option{pzstd.WithMaxOutputSize(4 << 20)},
		},
	}

	return basics
}

func TestOneShotRoundTrip(t *testing.T) {

	for name, tc := range roundTrips(t) {
		t.Run(name, func(t *testing.T) {
			compressed, err := pzstd.Compress(nil, tc.src, tc.copts...)
			if err != nil {
				t.Fatalf("Fail compress: %v", err)
			}

			plain, err := pzstd.Decompress(nil, compressed, tc.dopts...)
			if err != nil {
				t.Fatalf("Fail decompress: %v", err)
			}

			if Sha2sum(plain) != Sha2sum(tc.src) {
				t.Errorf("Round trip mismatch: %d in, %d out", len(tc.src), len(plain))
			}
		})
	}
}

// Contexts are reusable across sequential one-shot calls.
func TestOneShotReuse(t *testing.T) {

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	dec, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	for i := 0; i < 5; i++ {
		src := GenCompressible((i + 1) << 16)

		compressed, err := cmp.Compress(nil, src)
		if err != nil {
			t.Fatalf("Fail compress iter %d: %v", i, err)
		}

		plain, err := dec.Decompress(nil, compressed)
		if err != nil {
			t.Fatalf("Fail decompress iter %d: %v", i, err)
		}

		if Sha2sum(plain) != Sha2sum(src) {
			t.Errorf("Round trip mismatch on iter %d", i)
		}
	}
}

func TestOneShotAppendsToDst(t *testing.T) {

	var (
		src    = GenCompressible(64 << 10)
		prefix = []byte("prefix")
	)

	compressed, err := pzstd.Compress(append([]byte(nil), prefix...), src)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	if string(compressed[:len(prefix)]) != string(prefix) {
		t.Fatalf("Prefix clobbered")
	}

	plain, err := pzstd.Decompress(append([]byte(nil), prefix...), compressed[len(prefix):])
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}

	if string(plain[:len(prefix)]) != string(prefix) {
		t.Fatalf("Prefix clobbered on decompress")
	}

	if Sha2sum(plain[len(prefix):]) != Sha2sum(src) {
		t.Errorf("Round trip mismatch")
	}
}

func TestDecompressEmptyFrame(t *testing.T) {

	compressed, err := pzstd.Compress(nil, nil)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	plain, err := pzstd.Decompress(nil, compressed)
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if len(plain) != 0 {
		t.Errorf("Expected empty output, got %d bytes", len(plain))
	}
}

func TestDecompressGarbage(t *testing.T) {

	_, err := pzstd.Decompress(nil, []byte("this is not a zstd frame at all"))
	if !errors.Is(err, pzstd.ErrDecompress) {
		t.Errorf("Expected ErrDecompress, got %v", err)
	}
}

func TestDecompressTruncated(t *testing.T) {

	compressed, err := pzstd.Compress(nil, GenCompressible(256<<10))
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	_, err = pzstd.Decompress(nil, compressed[:len(compressed)/2])
	if !errors.Is(err, pzstd.ErrDecompress) {
		t.Errorf("Expected ErrDecompress, got %v", err)
	}
}

// A frame without a recorded content size requires an output limit.
func TestDecompressUnknownSizeNeedsLimit(t *testing.T) {

	compressed, err := pzstd.Compress(nil, GenCompressible(64<<10),
		pzstd.WithContentSize(false))
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	if _, err = pzstd.Decompress(nil, compressed); !errors.Is(err, pzstd.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestDecompressExceedsLimit(t *testing.T) {

	compressed, err := pzstd.Compress(nil, GenCompressible(1<<20),
		pzstd.WithContentSize(false))
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	_, err = pzstd.Decompress(nil, compressed, pzstd.WithMaxOutputSize(64<<10))
	if !errors.Is(err, pzstd.ErrAlloc) {
		t.Errorf("Expected ErrAlloc, got %v", err)
	}
}

func TestFrameParams(t *testing.T) {

	src := GenCompressible(128 << 10)

	compressed, err := pzstd.Compress(nil, src, pzstd.WithChecksum(true))
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	fp, err := pzstd.GetFrameParams(compressed)
	if err != nil {
		t.Fatalf("Fail frame params: %v", err)
	}

	if !fp.HasContentSize || fp.ContentSize != uint64(len(src)) {
		t.Errorf("Expected content size %d, got %d (known=%v)",
			len(src), fp.ContentSize, fp.HasContentSize)
	}
	if !fp.HasChecksum {
		t.Errorf("Expected checksum flag")
	}

	sz, known, err := pzstd.FrameContentSize(compressed)
	if err != nil || !known || sz != uint64(len(src)) {
		t.Errorf("FrameContentSize = %d,%v,%v", sz, known, err)
	}

	hdrSz, err := pzstd.FrameHeaderSize(compressed)
	if err != nil || hdrSz <= 0 || hdrSz > 18 {
		t.Errorf("FrameHeaderSize = %d,%v", hdrSz, err)
	}
}

func TestFrameParamsGarbage(t *testing.T) {

	if _, err := pzstd.GetFrameParams([]byte("bogus data here")); !errors.Is(err, pzstd.ErrFrame) {
		t.Errorf("Expected ErrFrame, got %v", err)
	}

	if _, _, err := pzstd.FrameContentSize([]byte("bogus data here")); !errors.Is(err, pzstd.ErrFrame) {
		t.Errorf("Expected ErrFrame, got %v", err)
	}
}

func TestCompressBusyContext(t *testing.T) {

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	wr, err := cmp.Writer(discardWriter{})
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	if _, err := cmp.Compress(nil, []byte("data")); !errors.Is(err, pzstd.ErrState) {
		t.Errorf("Expected ErrState, got %v", err)
	}

	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close session: %v", err)
	}

	// Released; one-shot works again
	if _, err := cmp.Compress(nil, []byte("data")); err != nil {
		t.Errorf("Fail compress after release: %v", err)
	}
}

func TestClosedContext(t *testing.T) {

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}

	if err := cmp.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}
	if err := cmp.Close(); err != nil {
		t.Errorf("Double close should be noop, got %v", err)
	}

	if _, err := cmp.Compress(nil, []byte("data")); !errors.Is(err, pzstd.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
