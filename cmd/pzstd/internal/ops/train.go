package ops

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pzstd-dev/pzstd"
)

func RunTrain() error {

	if fileExists(CLI.Train.Output) {
		return fmt.Errorf("output file '%s' already exists", CLI.Train.Output)
	}

	msg := "Loading samples"
	pw := newProgressWriter(1)
	pw.SetMessageLength(len(msg))

	tr := &progress.Tracker{
		Message: msg,
		Total:   int64(len(CLI.Train.Samples)),
		Units:   progress.UnitsDefault,
	}

	pw.AppendTracker(tr)
	go pw.Render()

	var (
		samples = make([][]byte, 0, len(CLI.Train.Samples))
		total   int
	)

	for _, name := range CLI.Train.Samples {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("fail read sample '%s': %w", name, err)
		}
		samples = append(samples, data)
		total += len(data)
		tr.Increment(1)
	}

	tr.MarkAsDone()
	for pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond * 100)
	}

	opts := []pzstd.TrainOptT{
		pzstd.WithTrainLevel(CLI.Train.Level),
		pzstd.WithTrainThreads(CLI.Cpus),
	}
	if CLI.Train.DictID != 0 {
		opts = append(opts, pzstd.WithTrainDictID(CLI.Train.DictID))
	}

	start := time.Now()

	dict, err := pzstd.TrainDict(samples, CLI.Train.MaxSize, opts...)
	if err != nil {
		return err
	}

	tdiff := time.Since(start)

	if err := os.WriteFile(CLI.Train.Output, dict.Bytes(), dstPerms); err != nil {
		return fmt.Errorf("fail write dictionary '%s': %w", CLI.Train.Output, err)
	}

	t := table.NewWriter()
	t.SetTitle("Train results")
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Key", "Value"})
	t.AppendRows([]table.Row{
		{"Samples", len(samples)},
		{"Sample bytes", total},
		{"Output", CLI.Train.Output},
		{"Dict size", dict.Len()},
		{"Dict ID", dict.ID()},
		{"Duration", tdiff.Round(time.Microsecond)},
	})
	t.Render()

	return nil
}
