package folioevict

import (
	"sync"

	"github.com/alexhholmes/folioevict/internal/engine"
	"github.com/alexhholmes/folioevict/internal/stats"
)

// Result is the outcome of a run over a finite source.
type Result struct {
	Path  Path
	Stats *Stats

	// Accounting is non-nil when Evicted + Rejected != Total. It is never a
	// rejection reason; it means the accounting itself is broken.
	Accounting error
}

// Run evaluates every item of src in order on the calling goroutine.
//
// The returned error only reports invalid options. A run always completes
// with full statistics, even if every item is rejected or faulted.
func Run(src Source, opts ...Option) (*Result, error) {
	r, err := newRunner(src, opts)
	if err != nil {
		return nil, err
	}
	return r.finish(r.runSequential(src))
}

// RunParallel evaluates items on WithWorkers goroutines, each with its own
// accumulator, merged once the source is drained. Results equal Run's.
func RunParallel(src Source, opts ...Option) (*Result, error) {
	r, err := newRunner(src, opts)
	if err != nil {
		return nil, err
	}
	if r.opts.workers == 1 {
		return r.finish(r.runSequential(src))
	}

	acc, err := r.runSharded(src)
	if err != nil {
		return nil, err
	}
	return r.finish(acc)
}

type runner struct {
	opts Options
	eval *engine.Evaluator
	dups *dupWindow

	scanned      uint64
	nextProgress uint64
}

func newRunner(src Source, options []Option) (*runner, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	opts := defaultOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	eval, err := engine.NewEvaluator(opts.params)
	if err != nil {
		return nil, err
	}
	dups, err := newDupWindow(opts.duplicateWindow)
	if err != nil {
		return nil, err
	}

	opts.logger.Info("starting evaluation",
		"path", opts.path.String(),
		"mapping", uint64(opts.params.Mapping),
		"transient_pins", opts.params.TransientPins,
		"unit_size", opts.unitSize,
		"workers", opts.workers)

	return &runner{
		opts:         opts,
		eval:         eval,
		dups:         dups,
		nextProgress: opts.progressInterval,
	}, nil
}

// admit runs on the goroutine reading the source. It reports progress and
// whether the item duplicates a recently seen folio.
func (r *runner) admit(it Item) bool {
	r.scanned += uint64(r.opts.unitSize)
	if r.opts.progress != nil && r.scanned >= r.nextProgress {
		r.opts.progress(r.scanned)
		r.nextProgress += r.opts.progressInterval
	}

	if it.IsFault() {
		return false
	}
	return r.dups.observe(it.Folio.ID)
}

func (r *runner) evaluate(acc *stats.Accumulator, it Item) {
	if it.IsFault() {
		r.opts.logger.Debug("snapshot source fault", "error", it.Fault)
		acc.RecordFault()
		return
	}
	acc.Record(it.Folio, r.eval.Evaluate(r.opts.path, it.Folio))
}

func (r *runner) runSequential(src Source) *stats.Accumulator {
	acc := stats.New(r.opts.unitSize)
	for {
		it, ok := src.Next()
		if !ok {
			break
		}
		if r.admit(it) {
			acc.Duplicates++
		}
		r.evaluate(acc, it)
	}
	return acc
}

func (r *runner) runSharded(src Source) (*stats.Accumulator, error) {
	workers := r.opts.workers
	items := make(chan Item, workers*64)
	shards := make([]*stats.Accumulator, workers)

	var wg sync.WaitGroup
	for i := range shards {
		shard := stats.New(r.opts.unitSize)
		shards[i] = shard

		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range items {
				r.evaluate(shard, it)
			}
		}()
	}

	var dups uint64
	for {
		it, ok := src.Next()
		if !ok {
			break
		}
		if r.admit(it) {
			dups++
		}
		items <- it
	}
	close(items)
	wg.Wait()

	acc := stats.New(r.opts.unitSize)
	acc.Duplicates = dups
	for _, shard := range shards {
		if err := acc.Merge(shard); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (r *runner) finish(acc *stats.Accumulator) (*Result, error) {
	res := &Result{
		Path:       r.opts.path,
		Stats:      acc,
		Accounting: acc.Check(),
	}

	if res.Accounting != nil {
		r.opts.logger.Error("accounting invariant violated", "error", res.Accounting)
	}
	if acc.Duplicates > 0 {
		r.opts.logger.Warn("duplicate folios in snapshot", "count", acc.Duplicates)
	}
	if faults := acc.Rejected[engine.ReasonSourceFault]; faults > 0 {
		r.opts.logger.Warn("snapshot source faults", "pages", acc.Pages(faults))
	}
	r.opts.logger.Info("evaluation complete",
		"items", acc.Items,
		"total_bytes", acc.Total,
		"evicted_bytes", acc.Evicted,
		"rejected_bytes", acc.RejectedTotal())

	return res, nil
}
