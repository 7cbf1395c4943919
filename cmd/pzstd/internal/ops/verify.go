package ops

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pzstd-dev/pzstd"
)

const (
	strStdin = "<STDIN>"
	strUnset = "<UNSET>"
)

func RunVerify() error {
	rdwr, err := newTarget(false, CLI.Verify.File, "-", false)

	if err != nil {
		return err
	}

	defer rdwr.Close()

	var opts []pzstd.OptT

	if CLI.Dict != "" {
		d, err := loadDict()
		if err != nil {
			return err
		}
		opts = append(opts, pzstd.WithDict(d))
	}

	return _verify(rdwr, opts...)
}

func _verify(rdwr *targetT, opts ...pzstd.OptT) error {
	if CLI.Verify.Skip {
		return _skipVerify(rdwr)
	}

	dec, err := pzstd.NewDecompressor(opts...)
	if err != nil {
		return err
	}
	defer dec.Close()

	var (
		hdrBuf headerBuf
		tee    = io.TeeReader(rdwr.Reader(), &hdrBuf)
		rcnt   = &rdCnt{Reader: tee}
	)

	msg := "Verifying"
	pw := newProgressWriter(1)
	pw.SetMessageLength(len(msg))

	tr := &progress.Tracker{
		Message: msg,
		Units:   progress.UnitsBytes,
	}

	if rdwr.srcSz > 0 {
		tr.Total = rdwr.srcSz
	}

	pw.AppendTracker(tr)
	go pw.Render()

	stop := make(chan struct{})
	go func() {
		tk := time.NewTicker(time.Millisecond * 100)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				tr.SetValue(int64(rcnt.cnt.Load()))
			}
		}
	}()

	var (
		start = time.Now()
		wr    = rdwr.Writer()
		n     int64
	)

	_, n, err = dec.CopyStream(io.Discard, rcnt)

	tdiff := time.Since(start)

	close(stop)
	tr.MarkAsDone()

	for pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond * 100)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Verify results")
	t.AppendHeader(table.Row{"Key", "Value"})

	var (
		fileName   = strStdin
		dictionary = strUnset
		percent    = float64(rcnt.cnt.Load()) / float64(n) * 100.0
	)

	if rdwr.src != nil {
		fileName = rdwr.src.Name()
	}

	if CLI.Dict != "" {
		dictionary = CLI.Dict
	}

	t.AppendRows([]table.Row{
		{"File name", fileName},
		{"Dictionary", dictionary},
		{"InSize", rcnt.cnt.Load()},
		{"OutSize", n},
		{"Duration", tdiff.Round(time.Microsecond)},
		{"Ratio", fmt.Sprintf("%.2f%%", percent)},
	})

	// Attempt to reparse the cached header
	if err == nil && hdrBuf.buf.Len() > 0 {
		t.AppendSeparator()
		err = verifyHeader(hdrBuf.buf.Bytes(), t)
	}

	if err != nil {
		return err
	} else if rcnt.cnt.Load() == 0 {
		fmt.Fprintf(wr, "No data to verify\n")
		return nil
	}

	t.Render()

	return nil
}

func _skipVerify(rdwr *targetT) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Header Metadata")
	t.AppendHeader(table.Row{"Key", "Value"})

	var hdr [hdrCacheSize]byte
	n, err := io.ReadFull(rdwr.Reader(), hdr[:])
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}

	if err := verifyHeader(hdr[:n], t); err != nil {
		return err
	}

	t.Render()
	return nil
}

func verifyHeader(hdr []byte, tw table.Writer) error {
	fp, err := pzstd.GetFrameParams(hdr)
	if err != nil {
		return err
	}

	var (
		dictId    = strUnset
		contentSz = strUnset
	)
	if fp.DictID != 0 {
		dictId = fmt.Sprintf("%d", fp.DictID)
	}
	if fp.HasContentSize {
		contentSz = fmt.Sprintf("%d", fp.ContentSize)
	}

	hdrSz, err := pzstd.FrameHeaderSize(hdr)
	if err != nil {
		return err
	}

	tw.AppendRows([]table.Row{
		{"Header size", hdrSz},
		{"Dict Identifier", dictId},
		{"Content size", contentSz},
		{"Content checksum", fp.HasChecksum},
		{"Window size", fp.WindowSize},
	})

	return nil
}

// Largest possible frame header.
const hdrCacheSize = 18

type headerBuf struct {
	buf bytes.Buffer
}

func (b *headerBuf) Write(data []byte) (int, error) {
	// Cache enough to grab header
	if b.buf.Len() < hdrCacheSize {
		b.buf.Write(data)
	}
	return len(data), nil
}
