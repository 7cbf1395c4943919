package sparse

import (
	"bytes"
	crand "crypto/rand"
	"errors"
	"io"
	"math/rand/v2"
	"testing"
)

// fixedWriter is a seekable in-memory sink of fixed size, standing in
// for a preallocated file.
type fixedWriter struct {
	data []byte
	pos  int
}

func newFixedWriter(sz int) *fixedWriter {
	return &fixedWriter{data: make([]byte, sz)}
}

func (w *fixedWriter) Write(data []byte) (int, error) {
	if w.pos+len(data) > len(w.data) {
		return 0, errors.New("write past fixed end")
	}
	copy(w.data[w.pos:], data)
	w.pos += len(data)
	return len(data), nil
}

func (w *fixedWriter) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekCurrent {
		return 0, errors.New("unsupported seek")
	}
	if w.pos+int(offset) > len(w.data) {
		return 0, errors.New("seek past fixed end")
	}
	w.pos += int(offset)
	return int64(w.pos), nil
}

func TestSparseAllZeros(t *testing.T) {
	src := make([]byte, 16<<20)
	runSparse(t, src, false)
}

func TestSparseRandom(t *testing.T) {
	src := genSparse(t, rand.Int64N(2<<20)+1, 16<<10)
	runSparse(t, src, false)
}

func TestSparseReadFrom(t *testing.T) {
	src := genSparse(t, rand.Int64N(2<<20)+1, 16<<10)
	runSparse(t, src, true)
}

func TestSparseUnseekablePassthrough(t *testing.T) {
	src := genSparse(t, 256<<10, 4<<10)

	var dst bytes.Buffer
	wr := NewWriter(&dst)

	if _, err := io.Copy(wr, bytes.NewReader(src)); err != nil {
		t.Fatalf("Fail copy: %v", err)
	}
	if err := wr.Close(); err != nil {
		t.Fatalf("Fail close writer: %v", err)
	}

	if !bytes.Equal(src, dst.Bytes()) {
		t.Errorf("Bytes don't match")
	}
}

func runSparse(t *testing.T, src []byte, useReadFrom bool) {
	t.Helper()

	var (
		dst = newFixedWriter(len(src))
		wr  = NewWriter(dst)
		n   int64
		err error
	)

	if useReadFrom {
		n, err = wr.ReadFrom(bytes.NewReader(src))
	} else {
		n, err = io.Copy(wr, bytes.NewReader(src))
	}
	if err != nil {
		t.Fatalf("Fail copy: %v", err)
	}

	if n != int64(len(src)) {
		t.Errorf("Expected %v written, got %v", len(src), n)
	}

	if err := wr.Close(); err != nil {
		t.Errorf("Fail close writer: %v", err)
	}

	if !bytes.Equal(src, dst.data) {
		t.Errorf("Bytes don't match")
	}
}

func Benchmark_SparseCopy(b *testing.B) {
	src := genSparse(b, 64<<20, 16<<10)
	rdr := bytes.NewReader(src)
	dst := newFixedWriter(len(src))

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		dst.pos = 0
		rdr.Reset(src)
		wr := NewWriter(dst)
		if _, err := io.Copy(wr, rdr); err != nil {
			b.Errorf("Fail copy: %v", err)
		}
		if err := wr.Close(); err != nil {
			b.Errorf("Fail close writer: %v", err)
		}
	}
}

// genSparse interleaves random and zero blocks up to sz total bytes.
func genSparse(t testing.TB, sz, maxBlk int64) []byte {

	var buf bytes.Buffer

	for sz > 0 {
		blkSz := rand.Int64N(maxBlk) + 1
		if blkSz > sz {
			blkSz = sz
		}
		blk := make([]byte, blkSz)

		if rand.IntN(2) == 1 {
			if _, err := crand.Read(blk); err != nil {
				t.Fatal(err)
			}
		}
		buf.Write(blk)
		sz -= blkSz
	}

	return buf.Bytes()
}
