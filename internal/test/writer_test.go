package test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/pzstd-dev/pzstd"
)

func TestWriterRoundTrip(t *testing.T) {

	chunkSizes := []int{1, 777, 4 << 10, 128 << 10}

	for _, chunkSz := range chunkSizes {
		t.Run(fmt.Sprintf("chunk_%d", chunkSz), func(t *testing.T) {

			var (
				src = GenCompressible(512 << 10)
				dst bytes.Buffer
			)

			cmp, err := pzstd.NewCompressor()
			if err != nil {
				t.Fatalf("Fail new compressor: %v", err)
			}
			defer cmp.Close()

			wr, err := cmp.Writer(&dst)
			if err != nil {
				t.Fatalf("Fail open session: %v", err)
			}

			for off := 0; off < len(src); off += chunkSz {
				end := off + chunkSz
				if end > len(src) {
					end = len(src)
				}
				if _, err := wr.Write(src[off:end]); err != nil {
					t.Fatalf("Fail write: %v", err)
				}
			}

			if err := wr.Close(); err != nil {
				t.Fatalf("Fail close: %v", err)
			}

			if wr.Tell() != int64(dst.Len()) {
				t.Errorf("Tell %d != downstream %d", wr.Tell(), dst.Len())
			}

			plain, err := pzstd.Decompress(nil, dst.Bytes(),
				pzstd.WithMaxOutputSize(1<<20))
			if err != nil {
				t.Fatalf("Fail decompress: %v", err)
			}

			if Sha2sum(plain) != Sha2sum(src) {
				t.Errorf("Round trip mismatch")
			}
		})
	}
}

func TestWriterReadFrom(t *testing.T) {

	var (
		src = GenCompressible(1 << 20)
		dst bytes.Buffer
	)

	cmp, err := pzstd.NewCompressor(pzstd.WithPledgedSrcSize(uint64(len(src))))
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	wr, err := cmp.Writer(&dst)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	n, err := wr.ReadFrom(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Fail ReadFrom: %v", err)
	}
	if n != int64(len(src)) {
		t.Errorf("Expected %d consumed, got %d", len(src), n)
	}

	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}

	// Pledged size lands in the frame header
	sz, known, err := pzstd.FrameContentSize(dst.Bytes())
	if err != nil || !known || sz != uint64(len(src)) {
		t.Errorf("FrameContentSize = %d,%v,%v", sz, known, err)
	}

	plain, err := pzstd.Decompress(nil, dst.Bytes())
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if Sha2sum(plain) != Sha2sum(src) {
		t.Errorf("Round trip mismatch")
	}
}

// FlushBlock makes data written so far decodable mid-stream.
func TestWriterFlushBlock(t *testing.T) {

	var dst bytes.Buffer

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	wr, err := cmp.Writer(&dst)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	first := []byte("hello flush")
	if _, err := wr.Write(first); err != nil {
		t.Fatalf("Fail write: %v", err)
	}
	if err := wr.Flush(pzstd.FlushBlock); err != nil {
		t.Fatalf("Fail flush: %v", err)
	}

	// The flushed prefix decodes on its own via streaming
	dec, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	var partial bytes.Buffer
	if _, _, err := dec.CopyStream(&partial, bytes.NewReader(dst.Bytes())); err != nil {
		t.Fatalf("Fail partial decompress: %v", err)
	}
	if partial.String() != string(first) {
		t.Errorf("Expected %q, got %q", first, partial.String())
	}

	// Keep writing and finish the frame
	second := []byte(" and more")
	if _, err := wr.Write(second); err != nil {
		t.Fatalf("Fail write: %v", err)
	}
	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}

	plain, err := pzstd.Decompress(nil, dst.Bytes(), pzstd.WithMaxOutputSize(1<<20))
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if string(plain) != string(first)+string(second) {
		t.Errorf("Round trip mismatch: %q", plain)
	}
}

// FlushFrame ends the frame; the next write starts a new one.
func TestWriterFlushFrame(t *testing.T) {

	var dst bytes.Buffer

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	wr, err := cmp.Writer(&dst)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	if _, err := wr.Write([]byte("frame one")); err != nil {
		t.Fatalf("Fail write: %v", err)
	}
	if err := wr.Flush(pzstd.FlushFrame); err != nil {
		t.Fatalf("Fail flush frame: %v", err)
	}

	frameOneLen := dst.Len()

	if _, err := wr.Write([]byte("frame two")); err != nil {
		t.Fatalf("Fail write: %v", err)
	}
	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}

	if dst.Len() <= frameOneLen {
		t.Fatalf("Second frame not written")
	}

	// Streaming decode crosses the frame boundary
	dec, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	var plain bytes.Buffer
	if _, _, err := dec.CopyStream(&plain, bytes.NewReader(dst.Bytes())); err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if plain.String() != "frame oneframe two" {
		t.Errorf("Round trip mismatch: %q", plain.String())
	}
}

func TestWriterUseAfterClose(t *testing.T) {

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	var dst bytes.Buffer
	wr, err := cmp.Writer(&dst)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}
	if err := wr.Close(); err != nil {
		t.Errorf("Double close should be noop, got %v", err)
	}

	if _, err := wr.Write([]byte("data")); !errors.Is(err, pzstd.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := wr.Flush(pzstd.FlushBlock); !errors.Is(err, pzstd.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestWriterDownstreamError(t *testing.T) {

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	wr, err := cmp.Writer(failWriter{})
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	// Enough data to force output downstream
	src := GenUncompressable(1 << 20)
	if _, err := wr.Write(src); err == nil {
		t.Errorf("Expected downstream error")
	}

	// Close still releases the context
	if err := wr.Close(); err != nil {
		t.Errorf("Close after error should be noop, got %v", err)
	}

	if _, err := cmp.Compress(nil, []byte("data")); err != nil {
		t.Errorf("Context not released: %v", err)
	}
}

func TestDecompressWriter(t *testing.T) {

	src := GenCompressible(512 << 10)

	compressed, err := pzstd.Compress(nil, src)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	dec, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	var plain bytes.Buffer
	wr, err := dec.Writer(&plain)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	// Push in awkward chunk sizes
	for off := 0; off < len(compressed); off += 999 {
		end := off + 999
		if end > len(compressed) {
			end = len(compressed)
		}
		if _, err := wr.Write(compressed[off:end]); err != nil {
			t.Fatalf("Fail write: %v", err)
		}
	}

	if wr.Tell() != int64(plain.Len()) {
		t.Errorf("Tell %d != downstream %d", wr.Tell(), plain.Len())
	}

	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}

	if Sha2sum(plain.Bytes()) != Sha2sum(src) {
		t.Errorf("Round trip mismatch")
	}
}

func TestDecompressWriterReadFrom(t *testing.T) {

	src := GenCompressible(512 << 10)

	compressed, err := pzstd.Compress(nil, src)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	dec, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	var plain bytes.Buffer
	wr, err := dec.Writer(&plain)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	if _, err := wr.ReadFrom(bytes.NewReader(compressed)); err != nil {
		t.Fatalf("Fail ReadFrom: %v", err)
	}
	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}

	if Sha2sum(plain.Bytes()) != Sha2sum(src) {
		t.Errorf("Round trip mismatch")
	}
}

func TestWriterMemorySize(t *testing.T) {

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	var dst bytes.Buffer
	wr, err := cmp.Writer(&dst)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}
	defer wr.Close()

	if wr.MemorySize() <= 0 {
		t.Errorf("Expected positive memory size")
	}

	var _ io.ReaderFrom = wr
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink failed")
}
