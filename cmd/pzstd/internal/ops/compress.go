package ops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pzstd-dev/pzstd"
)

func RunCompress() error {

	rdwr, err := newTarget(true, CLI.Compress.File, CLI.Compress.Output, CLI.Compress.Force)

	if err != nil {
		return err
	}

	defer rdwr.Close()

	opts := []pzstd.OptT{
		pzstd.WithThreads(CLI.Cpus),
	}

	if CLI.Dict != "" {
		d, err := loadDict()
		if err != nil {
			return err
		}
		opts = append(opts, pzstd.WithDict(d))
	}

	if CLI.Compress.Level < pzstd.MinLevel() || CLI.Compress.Level > pzstd.MaxLevel() {
		return errors.New("compression level out of range")
	}

	// Declare input size up front so the frame header records it.
	if rdwr.srcSz >= 0 && !CLI.Compress.NoCS {
		opts = append(opts, pzstd.WithPledgedSrcSize(uint64(rdwr.srcSz)))
	}

	if CLI.Compress.Long {
		opts = append(opts, pzstd.WithLongDistanceMatching(0, 0, 0, 0))
	}

	opts = append(opts,
		pzstd.WithLevel(CLI.Compress.Level),
		pzstd.WithChecksum(CLI.Compress.CX),
		pzstd.WithContentSize(!CLI.Compress.NoCS),
	)

	return _compress(rdwr, opts...)
}

func _compress(rdwr *targetT, opts ...pzstd.OptT) error {

	cmp, err := pzstd.NewCompressor(opts...)
	if err != nil {
		return err
	}
	defer cmp.Close()

	var (
		pw   progress.Writer
		tr   *progress.Tracker
		stop chan struct{}
	)

	if rdwr.Writer() != os.Stdout && !CLI.Compress.Quiet {
		msg := "Compressing"
		pw = newProgressWriter(1)
		pw.SetMessageLength(len(msg))

		tr = &progress.Tracker{
			Message: msg,
			Units:   progress.UnitsBytes,
		}

		if rdwr.srcSz > 0 {
			tr.Total = rdwr.srcSz
		}

		pw.AppendTracker(tr)
		go pw.Render()

		// Poll the native progress counters while the copy runs.
		stop = make(chan struct{})
		go func() {
			tk := time.NewTicker(time.Millisecond * 100)
			defer tk.Stop()
			for {
				select {
				case <-stop:
					return
				case <-tk.C:
					ingested, _, _, _ := cmp.FrameProgression()
					tr.SetValue(int64(ingested))
				}
			}
		}()
	}

	var (
		start = time.Now()
		wcnt  = &wrCnt{Writer: rdwr.Writer()}
	)

	framer, err := cmp.Writer(wcnt)
	if err != nil {
		return err
	}

	n, err := io.Copy(framer, rdwr.Reader())
	if err != nil {
		return err
	}

	if err := framer.Close(); err != nil {
		return err
	}

	if pw != nil {
		tdiff := time.Since(start)

		close(stop)
		tr.MarkAsDone()

		for pw.IsRenderInProgress() {
			time.Sleep(time.Millisecond * 100)
		}

		percent := float64(wcnt.cnt.Load()) / float64(n) * 100.0

		t := table.NewWriter()
		t.SetTitle("Compress results")
		t.SetStyle(table.StyleColoredBright)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Key", "Value"})

		input := strStdin
		if rdwr.src != nil {
			input = rdwr.src.Name()
		}

		t.AppendRows([]table.Row{
			{"Input", input},
			{"Output", rdwr.dst.Name()},
			{"InSize", n},
			{"OutSize", wcnt.cnt.Load()},
			{"Duration", tdiff.Round(time.Microsecond)},
			{"Ratio", fmt.Sprintf("%.2f%%", percent)},
		})
		t.Render()
	}
	return nil
}

func loadDict() (*pzstd.Dict, error) {
	data, err := os.ReadFile(CLI.Dict)
	if err != nil {
		return nil, fmt.Errorf("fail open dictionary file '%s': %w", CLI.Dict, err)
	}
	return pzstd.NewDict(data)
}

// Counters are polled from the progress goroutine.

type wrCnt struct {
	cnt atomic.Uint64
	io.Writer
}

func (w *wrCnt) Write(data []byte) (n int, err error) {
	n, err = w.Writer.Write(data)
	if n >= 0 {
		w.cnt.Add(uint64(n))
	}
	return
}

type rdCnt struct {
	cnt atomic.Uint64
	io.Reader
}

func (r *rdCnt) Read(data []byte) (n int, err error) {
	n, err = r.Reader.Read(data)
	if n >= 0 {
		r.cnt.Add(uint64(n))
	}
	return
}
