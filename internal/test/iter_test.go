package test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/pzstd-dev/pzstd"
)

func TestCompressChunks(t *testing.T) {

	const chunkSize = 4 << 10

	src := GenCompressible(512 << 10)

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	it, err := cmp.Chunks(bytes.NewReader(src), chunkSize)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}

	var compressed bytes.Buffer
	for {
		chunk, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Fail next: %v", err)
		}
		if len(chunk) == 0 || len(chunk) > chunkSize {
			t.Fatalf("Bad chunk size %d", len(chunk))
		}
		compressed.Write(chunk)
	}

	// Iterator stays exhausted
	if _, err := it.Next(); err != io.EOF {
		t.Errorf("Expected EOF after exhaustion, got %v", err)
	}

	if err := it.Close(); err != nil {
		t.Fatalf("Fail close: %v", err)
	}

	// Context released for the next operation
	if _, err := cmp.Compress(nil, []byte("data")); err != nil {
		t.Errorf("Context not released: %v", err)
	}

	plain, err := pzstd.Decompress(nil, compressed.Bytes(),
		pzstd.WithMaxOutputSize(1<<20))
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if Sha2sum(plain) != Sha2sum(src) {
		t.Errorf("Round trip mismatch")
	}
}

func TestDecompressChunks(t *testing.T) {

	const chunkSize = 1 << 10

	src := GenCompressible(256 << 10)
	compressed, err := pzstd.Compress(nil, src)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	dec, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	it, err := dec.Chunks(bytes.NewReader(compressed), chunkSize)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}
	defer it.Close()

	var (
		plain  bytes.Buffer
		nFull  int
		nShort int
	)
	for {
		chunk, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Fail next: %v", err)
		}
		switch {
		case len(chunk) == chunkSize:
			nFull++
		case len(chunk) > 0 && len(chunk) < chunkSize:
			nShort++
		default:
			t.Fatalf("Bad chunk size %d", len(chunk))
		}
		plain.Write(chunk)
	}

	// At most the final chunk runs short
	if nShort > 1 {
		t.Errorf("Expected at most one short chunk, got %d", nShort)
	}
	if nFull != len(src)/chunkSize {
		t.Errorf("Expected %d full chunks, got %d", len(src)/chunkSize, nFull)
	}

	if Sha2sum(plain.Bytes()) != Sha2sum(src) {
		t.Errorf("Round trip mismatch")
	}
}

func TestChunksDefaultSize(t *testing.T) {

	cmp, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	it, err := cmp.Chunks(bytes.NewReader(GenCompressible(64<<10)), 0)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}
	defer it.Close()

	chunk, err := it.Next()
	if err != nil {
		t.Fatalf("Fail next: %v", err)
	}
	if len(chunk) == 0 {
		t.Errorf("Expected data in first chunk")
	}
}

func TestChunksBadInput(t *testing.T) {

	dec, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	it, err := dec.Chunks(bytes.NewReader([]byte("not a frame")), 1<<10)
	if err != nil {
		t.Fatalf("Fail open session: %v", err)
	}
	defer it.Close()

	for {
		_, err := it.Next()
		if err != nil {
			if !errors.Is(err, pzstd.ErrDecompress) {
				t.Errorf("Expected ErrDecompress, got %v", err)
			}
			break
		}
	}
}
