package folioevict

import (
	"fmt"
	"math"

	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/engine"
)

const (
	// DefaultDuplicateWindow is how many recent folio IDs are remembered.
	DefaultDuplicateWindow = 1 << 16

	// DefaultProgressInterval matches the scanners' "Scanned N MiB" cadence.
	DefaultProgressInterval = 10 * base.MiB
)

// Options configures a run.
type Options struct {
	path             engine.Path
	params           engine.Params
	unitSize         int
	workers          int
	duplicateWindow  int
	progress         func(scanned uint64)
	progressInterval uint64
	logger           Logger
}

func defaultOptions() Options {
	return Options{
		path:             engine.PathRelease,
		params:           engine.DefaultParams(),
		unitSize:         base.PageSize(),
		workers:          1,
		duplicateWindow:  DefaultDuplicateWindow,
		progressInterval: DefaultProgressInterval,
		logger:           DiscardLogger{},
	}
}

func (o *Options) validate() error {
	if !o.path.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownPath, o.path)
	}
	if err := base.ValidatePageSize(o.unitSize); err != nil {
		return err
	}
	if err := o.params.Validate(); err != nil {
		return err
	}
	if o.workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, o.workers)
	}
	if o.duplicateWindow < 0 || uint64(o.duplicateWindow) > math.MaxUint32 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, o.duplicateWindow)
	}
	return nil
}

// Option configures a run using the functional options pattern.
type Option func(*Options)

// WithPath selects the reclaim path to model. Defaults to PathRelease.
func WithPath(p engine.Path) Option {
	return func(opts *Options) {
		opts.path = p
	}
}

// WithMapping sets the address_space the invalidate path tests folios
// against. Leaving it unset models a NULL mapping.
func WithMapping(m base.MappingID) Option {
	return func(opts *Options) {
		opts.params.Mapping = m
	}
}

// WithTransientPins overrides the references the snapshot source held while
// enumerating. The default of one matches a find_lock_entries walk.
func WithTransientPins(n int) Option {
	return func(opts *Options) {
		opts.params.TransientPins = n
	}
}

// WithRequireTreeRef also rejects extent buffers that lost their tree
// reference.
func WithRequireTreeRef(require bool) Option {
	return func(opts *Options) {
		opts.params.RequireTreeRef = require
	}
}

// WithUnitSize sets the bytes credited per folio. Defaults to the host page
// size.
func WithUnitSize(size int) Option {
	return func(opts *Options) {
		opts.unitSize = size
	}
}

// WithWorkers sets how many goroutines RunParallel evaluates with.
func WithWorkers(n int) Option {
	return func(opts *Options) {
		opts.workers = n
	}
}

// WithDuplicateWindow sets how many recent folio IDs are checked for
// duplicates. Zero disables duplicate tracking.
func WithDuplicateWindow(n int) Option {
	return func(opts *Options) {
		opts.duplicateWindow = n
	}
}

// WithProgress registers a callback invoked each time another interval of
// bytes has been scanned.
func WithProgress(interval uint64, fn func(scanned uint64)) Option {
	return func(opts *Options) {
		if interval > 0 {
			opts.progressInterval = interval
		}
		opts.progress = fn
	}
}

// WithLogger sets the logger. *slog.Logger satisfies Logger directly.
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		if l == nil {
			l = DiscardLogger{}
		}
		opts.logger = l
	}
}
