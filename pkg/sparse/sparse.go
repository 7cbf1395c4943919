// Package sparse implements an io.Writer that turns runs of zero bytes
// into seeks, so decompressed disk images and similar zero-heavy output
// land as sparse files.
package sparse

import (
	"io"
	"unsafe"
)

const scanSz = 4 << 10

// Writer forwards data to an underlying writer, replacing zero runs
// with deferred seeks when the underlying writer is also an io.Seeker.
// Close commits any trailing run.
type Writer struct {
	wr      io.Writer
	pending int64 // zero bytes seen but not yet seeked over
}

func NewWriter(wr io.Writer) *Writer {
	return &Writer{wr: wr}
}

func (w *Writer) Write(data []byte) (int, error) {

	seeker, ok := w.wr.(io.Seeker)
	if !ok {
		return w.wr.Write(data)
	}

	var n int

	for off := 0; off < len(data); off += scanSz {
		end := off + scanSz
		if end > len(data) {
			end = len(data)
		}

		zn := zeroPrefix(data[off:end])
		w.pending += int64(zn)

		// Skipped bytes count as written; io.Writer demands an error
		// whenever n < len(p).
		n += zn

		if off+zn == end {
			continue
		}

		// Hit content; commit the outstanding seek first.
		if w.pending > 0 {
			if _, err := seeker.Seek(w.pending, io.SeekCurrent); err != nil {
				return n, err
			}
			w.pending = 0
		}

		wn, err := w.wr.Write(data[off+zn : end])
		n += wn
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func (w *Writer) ReadFrom(rd io.Reader) (n int64, err error) {

	buf := make([]byte, scanSz)

LOOP:
	for {
		var nRead int
		nRead, err = io.ReadFull(rd, buf)
		n += int64(nRead)

		switch err {
		case nil:
		case io.ErrUnexpectedEOF:
			// short final read; next ReadFull reports io.EOF
		case io.EOF:
			err = nil
			break LOOP
		default:
			break LOOP
		}

		if _, err = w.Write(buf[:nRead]); err != nil {
			break LOOP
		}
	}

	return
}

type flusherI interface {
	Flush() error
}

// Flush commits the outstanding seek and forwards a flush downstream
// when supported.
func (w *Writer) Flush() error {
	if w.pending > 0 {
		seeker := w.wr.(io.Seeker)
		if _, err := seeker.Seek(w.pending, io.SeekCurrent); err != nil {
			return err
		}
		w.pending = 0
	}

	if flusher, ok := w.wr.(flusherI); ok {
		return flusher.Flush()
	}

	return nil
}

// A preallocated single zero keeps the tail write from escaping.
var zeroTail = []byte{0}

// Close materializes a trailing zero run.  Seeking alone does not
// extend a file, so the final byte is written explicitly to force the
// size.  Closes the underlying writer when it is an io.Closer.
func (w *Writer) Close() error {

	if w.pending > 0 {
		if w.pending > 1 {
			seeker := w.wr.(io.Seeker)
			if _, err := seeker.Seek(w.pending-1, io.SeekCurrent); err != nil {
				return err
			}
		}
		if _, err := w.wr.Write(zeroTail); err != nil {
			return err
		}
		w.pending = 0
	}

	if closer, ok := w.wr.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// zeroPrefix returns the length of the leading all-zero run.
func zeroPrefix(data []byte) int {
	var (
		i     int
		n     = len(data)
		limit = (n / 128) * 128
	)

	// Wide compares over 128-byte strides.
	for ; i < limit; i += 128 {
		v := (*[16]uint64)(unsafe.Pointer(&data[i]))

		var b uint64
		for j := 0; j < 16; j++ {
			b |= v[j]
		}
		if b != 0 {
			break
		}
	}

	for ; i < n; i++ {
		if data[i] != 0 {
			return i
		}
	}

	return i
}
