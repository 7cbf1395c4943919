package test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pzstd-dev/pzstd"
)

func trainedDict(t *testing.T, os ...pzstd.TrainOptT) *pzstd.Dict {
	t.Helper()

	dict, err := pzstd.TrainDict(GenDictSamples(2048), 16<<10, os...)
	if err != nil {
		t.Fatalf("Fail train: %v", err)
	}
	return dict
}

func TestTrainDict(t *testing.T) {

	dict := trainedDict(t)

	if dict.Len() == 0 || dict.Len() > 16<<10 {
		t.Errorf("Bad dictionary size %d", dict.Len())
	}
	if dict.ID() == 0 {
		t.Errorf("Expected nonzero dictionary id")
	}
}

func TestTrainDictDeterministic(t *testing.T) {

	var (
		one = trainedDict(t, pzstd.WithTrainDictID(7))
		two = trainedDict(t, pzstd.WithTrainDictID(7))
	)

	if one.ID() != 7 || two.ID() != 7 {
		t.Errorf("Expected forced id 7, got %d and %d", one.ID(), two.ID())
	}
	if !bytes.Equal(one.Bytes(), two.Bytes()) {
		t.Errorf("Training with fixed parameters not reproducible")
	}
}

func TestTrainDictBadInput(t *testing.T) {

	if _, err := pzstd.TrainDict(nil, 16<<10); !errors.Is(err, pzstd.ErrValidation) {
		t.Errorf("Expected ErrValidation for no samples, got %v", err)
	}

	empties := [][]byte{nil, {}, nil}
	if _, err := pzstd.TrainDict(empties, 16<<10); !errors.Is(err, pzstd.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty samples, got %v", err)
	}

	if _, err := pzstd.TrainDict(GenDictSamples(16), 0); !errors.Is(err, pzstd.ErrValidation) {
		t.Errorf("Expected ErrValidation for zero size, got %v", err)
	}
}

func TestNewDictEmpty(t *testing.T) {

	if _, err := pzstd.NewDict(nil); !errors.Is(err, pzstd.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestDictRoundTrip(t *testing.T) {

	var (
		dict    = trainedDict(t)
		samples = GenDictSamples(64)
	)

	cmp, err := pzstd.NewCompressor(pzstd.WithDict(dict))
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	dec, err := pzstd.NewDecompressor(pzstd.WithDict(dict))
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	for i, sample := range samples {
		compressed, err := cmp.Compress(nil, sample)
		if err != nil {
			t.Fatalf("Fail compress sample %d: %v", i, err)
		}

		plain, err := dec.Decompress(nil, compressed)
		if err != nil {
			t.Fatalf("Fail decompress sample %d: %v", i, err)
		}

		if !bytes.Equal(plain, sample) {
			t.Fatalf("Round trip mismatch on sample %d", i)
		}
	}
}

// A frame tagged with a dictionary id cannot decode without it.
func TestDictRequired(t *testing.T) {

	dict := trainedDict(t)

	compressed, err := pzstd.Compress(nil, GenDictSamples(1)[0], pzstd.WithDict(dict))
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	fp, err := pzstd.GetFrameParams(compressed)
	if err != nil {
		t.Fatalf("Fail frame params: %v", err)
	}
	if fp.DictID != dict.ID() {
		t.Errorf("Expected dict id %d in frame, got %d", dict.ID(), fp.DictID)
	}

	if _, err := pzstd.Decompress(nil, compressed); !errors.Is(err, pzstd.ErrDecompress) {
		t.Errorf("Expected ErrDecompress without dictionary, got %v", err)
	}
}

func TestDictStreaming(t *testing.T) {

	var (
		dict = trainedDict(t)
		src  = bytes.Repeat(GenDictSamples(1)[0], 64)
	)

	cmp, err := pzstd.NewCompressor(pzstd.WithDict(dict))
	if err != nil {
		t.Fatalf("Fail new compressor: %v", err)
	}
	defer cmp.Close()

	var compressed bytes.Buffer
	if _, _, err := cmp.CopyStream(&compressed, bytes.NewReader(src)); err != nil {
		t.Fatalf("Fail copy compress: %v", err)
	}

	dec, err := pzstd.NewDecompressor(pzstd.WithDict(dict))
	if err != nil {
		t.Fatalf("Fail new decompressor: %v", err)
	}
	defer dec.Close()

	var plain bytes.Buffer
	if _, _, err := dec.CopyStream(&plain, bytes.NewReader(compressed.Bytes())); err != nil {
		t.Fatalf("Fail copy decompress: %v", err)
	}

	if Sha2sum(plain.Bytes()) != Sha2sum(src) {
		t.Errorf("Round trip mismatch")
	}
}

func TestDictPrecompute(t *testing.T) {

	dict := trainedDict(t)

	if err := dict.Precompute(pzstd.DefaultLevel); err != nil {
		t.Fatalf("Fail precompute: %v", err)
	}
	if err := dict.Precompute(19); err != nil {
		t.Fatalf("Fail precompute level 19: %v", err)
	}

	if dict.MemorySize() <= 0 {
		t.Errorf("Expected positive digest footprint")
	}
}
