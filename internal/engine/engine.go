// Package engine decides whether page cache reclaim could evict a metadata
// folio and the extent buffer attached to it.
//
// Both reclaim paths are ordered, short-circuiting check lists. The first
// failing check is the rejection reason; reasons never combine. Evaluation is
// pure: the same snapshot and Params always produce the same Outcome.
package engine

import (
	"errors"
	"fmt"

	"github.com/alexhholmes/folioevict/internal/base"
)

var ErrInvalidParams = errors.New("invalid evaluator parameters")

const (
	// DefaultTransientPins is the reference held by the lookup that handed us
	// the folio (find_lock_entries).
	DefaultTransientPins = 1

	// baseFolioRefs is the page cache reference plus the caller's reference.
	baseFolioRefs = 2
)

// Params tunes the checks that depend on how snapshots were gathered.
type Params struct {
	// Mapping is the address_space under test on the invalidate path.
	Mapping base.MappingID

	// TransientPins is added to the folio refcount on the invalidate path.
	TransientPins int

	// RequireTreeRef rejects extent buffers without EXTENT_BUFFER_TREE_REF.
	RequireTreeRef bool
}

// DefaultParams returns Params for snapshots taken by a mapping walk.
func DefaultParams() Params {
	return Params{TransientPins: DefaultTransientPins}
}

func (p Params) Validate() error {
	if p.TransientPins < 0 {
		return fmt.Errorf("%w: transient pins %d", ErrInvalidParams, p.TransientPins)
	}
	return nil
}

// Outcome is Evicted (empty Reason) or Rejected(Reason). It also carries the
// refcounts that were looked at, for the histograms.
type Outcome struct {
	Reason Reason

	// FolioRefcount is the refcount compared against the budget, including
	// transient pins on the invalidate path.
	FolioRefcount int

	EBRefcount int
	EBExamined bool
}

func (o Outcome) Evicted() bool {
	return o.Reason == ReasonNone
}

func (o Outcome) String() string {
	if o.Evicted() {
		return "evicted"
	}
	return "rejected(" + string(o.Reason) + ")"
}

// Evaluator applies one of the reclaim paths to folio snapshots.
type Evaluator struct {
	params Params
}

// NewEvaluator returns an evaluator for p.
func NewEvaluator(p Params) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{params: p}, nil
}

func (e *Evaluator) Params() Params {
	return e.params
}

// Evaluate runs path over f. It panics on a path that fails Valid; runners
// validate the path before evaluating.
func (e *Evaluator) Evaluate(path Path, f *base.FolioSnapshot) Outcome {
	switch path {
	case PathRelease:
		return e.release(f)
	case PathInvalidate:
		return e.invalidate(f)
	default:
		panic(fmt.Sprintf("engine: %v: %s", ErrUnknownPath, path))
	}
}

// folioBudget is the highest refcount a folio may have and still be freed.
func folioBudget(f *base.FolioSnapshot) int {
	extra := 0
	if f.HasPrivate() {
		extra = 1
	}
	return baseFolioRefs + extra
}

func (e *Evaluator) release(f *base.FolioSnapshot) Outcome {
	out := Outcome{FolioRefcount: f.Refcount}

	switch {
	case f.Flags.Has(base.FolioLocked):
		out.Reason = ReasonFolioLocked
	case f.Flags.Has(base.FolioDirty):
		out.Reason = ReasonFolioDirty
	case f.Flags.Has(base.FolioWriteback):
		out.Reason = ReasonFolioWriteback
	case f.Refcount > folioBudget(f):
		out.Reason = ReasonFolioRefcount
	case !f.HasPrivate():
		// This path only proceeds with an extent buffer attached.
		out.Reason = ReasonFolioHasPrivate
	default:
		e.releaseExtentBuffer(f, &out)
	}
	return out
}

func (e *Evaluator) invalidate(f *base.FolioSnapshot) Outcome {
	frc := f.Refcount + e.params.TransientPins
	out := Outcome{FolioRefcount: frc}

	switch {
	case f.Flags.Has(base.FolioLocked):
		out.Reason = ReasonFolioLocked
	case f.Flags.Has(base.FolioWriteback):
		out.Reason = ReasonFolioWriteback
	case f.Mapping != e.params.Mapping:
		out.Reason = ReasonFolioMappingMismatch
	case e.params.Mapping == base.NullMapping:
		out.Reason = ReasonNullMapping
	case f.Flags.Has(base.FolioDirty):
		out.Reason = ReasonFolioDirty
	case f.Flags.Has(base.FolioWriteback):
		out.Reason = ReasonFolioWriteback
	case frc > folioBudget(f):
		out.Reason = ReasonFolioRefcount
		// Still sample the eb refcount; it usually explains the extra pin.
		if eb := f.ExtentBuffer; eb != nil && f.Flags.Has(base.FolioPrivate) {
			out.EBRefcount = eb.Refcount
			out.EBExamined = true
		}
	case f.HasPrivate():
		e.releaseExtentBuffer(f, &out)
	}
	return out
}

func (e *Evaluator) releaseExtentBuffer(f *base.FolioSnapshot, out *Outcome) {
	// folio->private only points at the extent buffer under PG_private.
	eb := f.ExtentBuffer
	if eb == nil || !f.Flags.Has(base.FolioPrivate) {
		out.Reason = ReasonEBReleaseFolioPrivate
		return
	}

	out.EBRefcount = eb.Refcount
	out.EBExamined = true

	switch {
	case eb.Refcount == 0:
		// Reachable with no refs is a kernel invariant violation. Report it.
		out.Reason = ReasonEBZeroRefcount
	case eb.Refcount > 1:
		out.Reason = ReasonEBRefcount
	case eb.Flags.Has(base.EBDirty):
		out.Reason = ReasonEBDirty
	case eb.Flags.Has(base.EBWriteback):
		out.Reason = ReasonEBWriteback
	case e.params.RequireTreeRef && !eb.Flags.Has(base.EBTreeRef):
		out.Reason = ReasonEBTreeRef
	}
}
