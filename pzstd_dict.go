package pzstd

import (
	"runtime"
	"sync"

	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// Dict is a shareable compression dictionary.  Digested forms are
// computed lazily per level and cached, so one Dict can serve any
// number of contexts concurrently.
type Dict struct {
	data []byte
	id   uint32

	mu     sync.Mutex
	cdicts map[int]*czstd.CDict
	ddict  *czstd.DDict
}

// NewDict wraps raw dictionary bytes, typically produced by TrainDict
// or the zstd CLI.  The bytes are retained, not copied.
func NewDict(data []byte) (*Dict, error) {
	if len(data) == 0 {
		return nil, zerr.Wrapf(zerr.ErrValidation, "empty dictionary")
	}
	return &Dict{
		data:   data,
		id:     czstd.GetDictID(data),
		cdicts: make(map[int]*czstd.CDict),
	}, nil
}

// ID returns the dictionary identifier, or 0 for raw-content
// dictionaries.
func (d *Dict) ID() uint32 {
	return d.id
}

// Bytes returns the raw dictionary, suitable for persisting.
func (d *Dict) Bytes() []byte {
	return d.data
}

func (d *Dict) Len() int {
	return len(d.data)
}

// Precompute digests the dictionary for the given compression level
// ahead of first use.
func (d *Dict) Precompute(level int) error {
	_, err := d.cdictFor(level)
	return err
}

// MemorySize returns the native footprint of all cached digests.
func (d *Dict) MemorySize() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sum int
	for _, cd := range d.cdicts {
		sum += cd.SizeOf()
	}
	if d.ddict != nil {
		sum += d.ddict.SizeOf()
	}
	return sum
}

func (d *Dict) cdictFor(level int) (*czstd.CDict, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cd, ok := d.cdicts[level]; ok {
		return cd, nil
	}

	cd, err := czstd.NewCDict(d.data, level)
	if err != nil {
		return nil, zerr.Wrap(zerr.ErrValidation, err)
	}
	d.cdicts[level] = cd
	return cd, nil
}

func (d *Dict) ddictRef() (*czstd.DDict, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ddict == nil {
		dd, err := czstd.NewDDict(d.data)
		if err != nil {
			return nil, zerr.Wrap(zerr.ErrValidation, err)
		}
		d.ddict = dd
	}
	return d.ddict, nil
}

//---

// TrainOptT is a configuration option for TrainDict.
type TrainOptT func(p *czstd.TrainParams)

// WithTrainK sets the fastcover segment size.  Zero lets the optimizer
// search for it.
func WithTrainK(k uint) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.K = k
	}
}

// WithTrainD sets the fastcover dmer size.  Zero lets the optimizer
// search for it.
func WithTrainD(d uint) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.D = d
	}
}

// WithTrainF sets the log size of the fastcover frequency array.
func WithTrainF(f uint) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.F = f
	}
}

// WithTrainSteps sets the number of optimizer steps.
func WithTrainSteps(steps uint) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.Steps = steps
	}
}

// WithTrainThreads enables multi-threaded optimization.  Negative
// selects runtime.NumCPU().
func WithTrainThreads(n int) TrainOptT {
	return func(p *czstd.TrainParams) {
		if n < 0 {
			n = runtime.NumCPU()
		}
		p.Threads = uint(n)
	}
}

// WithTrainSplitPoint sets the training/testing sample split.
func WithTrainSplitPoint(v float64) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.SplitPoint = v
	}
}

// WithTrainAccel sets the fastcover acceleration factor (1..10).
func WithTrainAccel(v uint) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.Accel = v
	}
}

// WithTrainLevel sets the compression level the dictionary is tuned
// for.
func WithTrainLevel(level int) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.Level = level
	}
}

// WithTrainDictID forces the dictionary identifier instead of a random
// one.
func WithTrainDictID(id uint32) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.DictID = id
	}
}

// WithTrainNotifyLevel enables libzstd training diagnostics on stderr.
func WithTrainNotifyLevel(v uint) TrainOptT {
	return func(p *czstd.TrainParams) {
		p.NotifyLevel = v
	}
}

// TrainDict builds a dictionary of at most maxSize bytes from the given
// samples using the fastcover optimizer.  Empty samples are skipped.
func TrainDict(samples [][]byte, maxSize int, os ...TrainOptT) (*Dict, error) {
	if maxSize <= 0 {
		return nil, zerr.Wrapf(zerr.ErrValidation, "dictionary size %d", maxSize)
	}

	var (
		flatLen int
		count   int
	)
	for _, s := range samples {
		if len(s) == 0 {
			continue
		}
		flatLen += len(s)
		count++
	}
	if count == 0 {
		return nil, zerr.Wrapf(zerr.ErrValidation, "no samples")
	}

	flat := make([]byte, 0, flatLen)
	sizes := make([]uint64, 0, count)
	for _, s := range samples {
		if len(s) == 0 {
			continue
		}
		flat = append(flat, s...)
		sizes = append(sizes, uint64(len(s)))
	}

	p := czstd.TrainParams{Level: DefaultLevel}
	for _, f := range os {
		if f != nil {
			f(&p)
		}
	}

	// Without explicit tuning the full parameter search is very slow;
	// narrow it the way the reference trainer does.
	if p.Steps == 0 && p.Threads == 0 {
		p.D = 8
		p.Steps = 4
	}

	dict := make([]byte, maxSize)
	n, err := czstd.TrainFastCover(dict, flat, sizes, p)
	if err != nil {
		return nil, zerr.Wrap(zerr.ErrDictTrain, err)
	}

	return NewDict(dict[:n])
}
