package ops

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pzstd-dev/pzstd"
	"github.com/pzstd-dev/pzstd/pkg/sparse"
)

func RunDecompress() error {
	rdwr, err := newTarget(false, CLI.Decompress.File, CLI.Decompress.Output, CLI.Decompress.Force)

	if err != nil {
		return err
	}

	defer rdwr.Close()

	var opts []pzstd.OptT

	if CLI.Decompress.WindowLog > 0 {
		opts = append(opts, pzstd.WithMaxWindowLog(CLI.Decompress.WindowLog))
	}

	if CLI.Dict != "" {
		d, err := loadDict()
		if err != nil {
			return err
		}
		opts = append(opts, pzstd.WithDict(d))
	}

	return _decompress(rdwr, opts...)
}

func _decompress(rdwr *targetT, opts ...pzstd.OptT) error {

	dec, err := pzstd.NewDecompressor(opts...)
	if err != nil {
		return err
	}
	defer dec.Close()

	var (
		wr   = rdwr.Writer()
		rcnt = &rdCnt{Reader: rdwr.Reader()}
		pw   progress.Writer
		tr   *progress.Tracker
		stop chan struct{}
	)

	if wr != os.Stdout && CLI.Decompress.Sparse {
		wr = sparse.NewWriter(wr)
	}

	if wr != os.Stdout && !CLI.Decompress.Quiet {
		msg := "Decompressing"
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

		// No native counters on the decode side; poll the input tap.
		stop = make(chan struct{})
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
	}

	start := time.Now()

	_, n, err := dec.CopyStream(wr, rcnt)
	if err != nil {
		return err
	}

	// CopyStream does not close the underlying writer
	if err := wr.Close(); err != nil {
		return err
	}

	if pw != nil {
		tdiff := time.Since(start)

		close(stop)
		tr.MarkAsDone()

		for pw.IsRenderInProgress() {
			time.Sleep(time.Millisecond * 100)
		}

		percent := float64(rcnt.cnt.Load()) / float64(n) * 100.0

		t := table.NewWriter()
		t.SetTitle("Decompress results")
		t.SetStyle(table.StyleColoredBright)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Key", "Value"})
		t.AppendRows([]table.Row{
			{"Input", rdwr.src.Name()},
			{"Output", rdwr.dst.Name()},
			{"InSize", rcnt.cnt.Load()},
			{"OutSize", n},
			{"Duration", tdiff.Round(time.Microsecond)},
			{"Ratio", fmt.Sprintf("%.2f%%", percent)},
		})
		t.Render()
	}
	return nil
}
