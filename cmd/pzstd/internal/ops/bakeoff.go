package ops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/klauspost/compress/zstd"
	"github.com/pzstd-dev/pzstd"
)

// Levels sampled across the supported range.
var bakeLevels = []int{1, 3, 5, 9, 13, 19}

func RunBakeoff() error {

	rdwr, err := newTarget(true, CLI.Bakeoff.File, "-", false)

	if err != nil {
		return err
	}

	defer rdwr.Close()

	var (
		rdr = rdwr.Reader()
	)

	// Consume into RAM; must be able to seek
	if rdr == os.Stdin {
		var buf bytes.Buffer
		n, err := io.Copy(&buf, rdr)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf.Bytes())
		rdwr.srcSz = n
	}

	rds, ok := rdr.(io.ReadSeeker)
	if !ok {
		return errors.New("file not seekable")
	}

	if err := outputOptions(); err != nil {
		return err
	}

	fmt.Println()

	pw := newProgressWriter(2)
	go pw.Render()

	pzstdBaker, err := _prepPzstd(rds, rdwr.srcSz, pw)
	if err != nil {
		return err
	}

	kpBaker, err := _prepKlauspost(rds, rdwr.srcSz, pw)
	if err != nil {
		fmt.Printf("Fail to bake klauspost: %v\n", err)
	}

	var (
		pzstdResults []resultT
		kpResults    []resultT
	)

	if pzstdBaker != nil {
		if pzstdResults, err = pzstdBaker(); err != nil {
			return err
		}
	}

	if kpBaker != nil {
		if kpResults, err = kpBaker(); err != nil {
			return err
		}
	}

	for pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond * 100)
	}

	return outputResults(rdwr.srcSz, pzstdResults, kpResults)
}

func newProgressWriter(nTrackers int) progress.Writer {
	pw := progress.NewWriter()
	pw.SetAutoStop(true)
	pw.SetMessageLength(24)
	pw.SetNumTrackersExpected(nTrackers)
	pw.SetSortBy(progress.SortByPercentDsc)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerLength(25)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.1f%%"
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Speed = true
	pw.Style().Visibility.Time = true
	return pw
}

func outputOptions() error {
	t := table.NewWriter()
	t.SetTitle("Bakeoff Configuration")
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Option", "Value"})

	fn := strStdin
	if CLI.Bakeoff.File != "" {
		fn = CLI.Bakeoff.File
	}

	dict := strUnset
	if CLI.Dict != "" {
		dict = CLI.Dict
	}

	t.AppendRows([]table.Row{
		{"File name", fn},
		{"Dictionary", dict},
		{"Concurrency", CLI.Cpus},
		{"Levels", fmt.Sprintf("%v", bakeLevels)},
	})

	t.Render()
	return nil
}

func outputResults(srcSz int64, pzstdResults, kpResults []resultT) error {
	fmt.Println()

	t := table.NewWriter()
	t.SetTitle("Bakeoff Results")
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Algo", "Level", "SrcSize", "Compressed", "Ratio", "Compress", "Decompress"})
	for _, r := range pzstdResults {
		percent := fmt.Sprintf("%.1f%%", float64(r.cnt)/float64(srcSz)*100.0)
		t.AppendRow([]interface{}{"pzstd", r.level, srcSz, r.cnt, percent, r.dur.Round(time.Microsecond), r.ddur.Round(time.Microsecond)})
	}

	t.AppendSeparator()

	for _, r := range kpResults {
		percent := fmt.Sprintf("%.1f%%", float64(r.cnt)/float64(srcSz)*100.0)
		t.AppendRow([]interface{}{"klauspost", r.level, srcSz, r.cnt, percent, r.dur.Round(time.Microsecond), r.ddur.Round(time.Microsecond)})
	}

	t.Render()
	return nil
}

type resultT struct {
	level int
	cnt   int64
	dur   time.Duration
	ddur  time.Duration
}

type bakeFuncT func() ([]resultT, error)

func _prepPzstd(rd io.ReadSeeker, srcSz int64, pw progress.Writer) (bakeFuncT, error) {

	opts := []pzstd.OptT{
		pzstd.WithThreads(CLI.Cpus),
	}

	if CLI.Dict != "" {
		d, err := loadDict()
		if err != nil {
			return nil, err
		}
		opts = append(opts, pzstd.WithDict(d))
	}

	tr := &progress.Tracker{
		Message: "Processing pzstd",
		Total:   srcSz * int64(len(bakeLevels)),
		Units:   progress.UnitsBytes,
	}

	pw.AppendTracker(tr)

	bakeFunc := func() ([]resultT, error) {
		defer tr.MarkAsDone()

		var results []resultT

		for i, lvl := range bakeLevels {
			start := time.Now()

			if _, err := rd.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}

			// Last one wins; so append is ok.
			opts = append(opts, pzstd.WithLevel(lvl))

			split, cnt, err := pzstdBakeOne(rd, opts...)
			if err != nil {
				return nil, err
			}

			tr.SetValue(srcSz * int64(i+1))

			results = append(results, resultT{
				level: lvl,
				cnt:   cnt,
				dur:   split.Sub(start),
				ddur:  time.Since(split),
			})
		}

		return results, nil
	}

	return bakeFunc, nil
}

func pzstdBakeOne(src io.Reader, opts ...pzstd.OptT) (split time.Time, cnt int64, err error) {
	var (
		fh *os.File
		wr io.Writer
		rd io.Reader
	)

	if CLI.Bakeoff.RAM {
		buf := &bytes.Buffer{}
		wr = buf
		rd = buf
	} else {
		fh, err = os.CreateTemp("", "pzstd_bake")
		if err != nil {
			return
		}
		defer os.Remove(fh.Name())
		wr = fh
		rd = fh
	}

	cmp, err := pzstd.NewCompressor(opts...)
	if err != nil {
		return
	}
	defer cmp.Close()

	_, cnt, err = cmp.CopyStream(wr, src)
	if err != nil {
		return
	}

	split = time.Now()

	if fh != nil {
		if _, err = fh.Seek(0, io.SeekStart); err != nil {
			return
		}
	}

	// Now decompress
	err = _pzstdDecompress(rd)
	return
}

func _pzstdDecompress(rd io.Reader) error {

	var opts []pzstd.OptT

	if CLI.Dict != "" {
		d, err := loadDict()
		if err != nil {
			return err
		}
		opts = append(opts, pzstd.WithDict(d))
	}

	dec, err := pzstd.NewDecompressor(opts...)
	if err != nil {
		return err
	}
	defer dec.Close()

	_, _, err = dec.CopyStream(io.Discard, rd)
	return err
}

func _prepKlauspost(rd io.ReadSeeker, srcSz int64, pw progress.Writer) (bakeFuncT, error) {

	opts, err := _parseBakeKpOpts()
	if err != nil {
		return nil, err
	}

	tr := &progress.Tracker{
		Message: "Processing klauspost",
		Total:   srcSz * int64(zstd.SpeedBestCompression),
		Units:   progress.UnitsBytes,
	}

	pw.AppendTracker(tr)

	bakeFunc := func() ([]resultT, error) {
		defer tr.MarkAsDone()

		var results []resultT

		for lvl := zstd.SpeedFastest; lvl <= zstd.SpeedBestCompression; lvl++ {
			start := time.Now()

			if _, err := rd.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}

			// Last one wins; so append is ok.
			lvlOpts := append(opts, zstd.WithEncoderLevel(lvl))

			split, cnt, err := kpBakeOne(rd, lvlOpts...)
			if err != nil {
				return nil, err
			}

			tr.SetValue(srcSz * int64(lvl))

			results = append(results, resultT{
				level: int(lvl),
				cnt:   cnt,
				dur:   split.Sub(start),
				ddur:  time.Since(split),
			})
		}

		return results, nil
	}

	return bakeFunc, nil
}

func kpBakeOne(src io.Reader, opts ...zstd.EOption) (split time.Time, cnt int64, err error) {
	var (
		fh *os.File
		wr io.Writer
		rd io.Reader
	)

	if CLI.Bakeoff.RAM {
		buf := &bytes.Buffer{}
		wr = buf
		rd = buf
	} else {
		fh, err = os.CreateTemp("", "kp_bake")
		if err != nil {
			return
		}
		defer os.Remove(fh.Name())
		wr = fh
		rd = fh
	}

	wcnt := &wrCnt{Writer: wr}

	framer, err := zstd.NewWriter(wcnt, opts...)
	if err != nil {
		return
	}

	if _, err = io.Copy(framer, src); err != nil {
		return
	}

	if err = framer.Close(); err != nil {
		return
	}

	split = time.Now()

	if fh != nil {
		if _, err = fh.Seek(0, io.SeekStart); err != nil {
			return
		}
	}

	// Now decompress
	err = _kpDecompress(rd)
	cnt = int64(wcnt.cnt.Load())
	return
}

func _kpDecompress(rd io.Reader) error {

	var opts []zstd.DOption

	if CLI.Dict != "" {
		data, err := os.ReadFile(CLI.Dict)
		if err != nil {
			return err
		}
		opts = append(opts, zstd.WithDecoderDicts(data))
	}

	frd, err := zstd.NewReader(rd, opts...)
	if err != nil {
		return err
	}
	defer frd.Close()

	_, err = io.Copy(io.Discard, frd)
	return err
}

func _parseBakeKpOpts() ([]zstd.EOption, error) {

	var opts []zstd.EOption

	if CLI.Cpus != 0 {
		n := CLI.Cpus
		if n < 0 {
			n = runtime.NumCPU()
		}
		opts = append(opts, zstd.WithEncoderConcurrency(n))
	}

	if CLI.Dict != "" {
		data, err := os.ReadFile(CLI.Dict)
		if err != nil {
			return nil, fmt.Errorf("fail open dictionary file '%s': %w", CLI.Dict, err)
		}
		opts = append(opts, zstd.WithEncoderDict(data))
	}

	return opts, nil
}
