package stats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/engine"
)

const unit = 4096

func lockedFolio() *base.FolioSnapshot {
	return &base.FolioSnapshot{ID: 1, Flags: base.FolioLocked | base.FolioPrivate, Refcount: 3}
}

func boundaryFolio() *base.FolioSnapshot {
	return &base.FolioSnapshot{
		ID:           2,
		Flags:        base.FolioPrivate,
		Refcount:     2,
		ExtentBuffer: &base.ExtentBufferSnapshot{Refcount: 1, Flags: base.EBTreeRef},
	}
}

func TestRecordThreeItemScenario(t *testing.T) {
	t.Parallel()

	e, err := engine.NewEvaluator(engine.DefaultParams())
	require.NoError(t, err)

	items := []base.Item{
		base.SnapshotItem(lockedFolio()),
		base.SnapshotItem(boundaryFolio()),
		base.FaultItem(errors.New("read fault at 0xffffea0000000000")),
	}

	acc := New(unit)
	for _, it := range items {
		var out engine.Outcome
		if !it.IsFault() {
			out = e.Evaluate(engine.PathRelease, it.Folio)
		}
		acc.RecordItem(it, out)
	}

	require.NoError(t, acc.Check())
	assert.Equal(t, uint64(3), acc.Items)
	assert.Equal(t, uint64(3*unit), acc.Total)
	assert.Equal(t, uint64(unit), acc.Evicted)
	assert.Equal(t, map[engine.Reason]uint64{
		engine.ReasonFolioLocked: unit,
		engine.ReasonSourceFault: unit,
	}, acc.Rejected)
	assert.Equal(t, uint64(3), acc.Pages(acc.Total))

	// Faults never reach the histograms
	assert.Equal(t, map[int]uint64{3: 1, 2: 1}, acc.FolioRefcounts)
	assert.Equal(t, map[int]uint64{1: 1}, acc.EBRefcounts)
	assert.Equal(t, map[string]uint64{
		"PG_locked|PG_private": 1,
		"PG_private":           1,
	}, acc.FlagCombos)
	assert.Equal(t, map[string]uint64{"PG_locked": 1, "PG_private": 2}, acc.FlagCounts)
}

func TestRecordEmptyFlags(t *testing.T) {
	t.Parallel()

	acc := New(unit)
	acc.Record(&base.FolioSnapshot{}, engine.Outcome{Reason: engine.ReasonFolioHasPrivate})

	assert.Equal(t, map[string]uint64{"0": 1}, acc.FlagCombos)
	assert.Equal(t, map[string]uint64{"0": 1}, acc.FlagCounts)
	assert.Empty(t, acc.EBRefcounts)
	require.NoError(t, acc.Check())
}

func TestCheckDetectsMismatch(t *testing.T) {
	t.Parallel()

	acc := New(unit)
	acc.RecordFault()
	acc.Evicted += unit

	err := acc.Check()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountingMismatch)

	var accErr *AccountingError
	require.ErrorAs(t, err, &accErr)
	assert.Equal(t, uint64(unit), accErr.Total)
	assert.Equal(t, uint64(unit), accErr.Evicted)
	assert.Equal(t, uint64(unit), accErr.Rejected)
	assert.Contains(t, err.Error(), "mismatched amounts")
}

func TestEmptyRunHolds(t *testing.T) {
	t.Parallel()

	acc := New(unit)
	assert.NoError(t, acc.Check())
	assert.Zero(t, acc.RejectedTotal())
}

func TestAllRejectedRunCompletes(t *testing.T) {
	t.Parallel()

	acc := New(unit)
	for i := 0; i < 100; i++ {
		acc.RecordFault()
	}
	require.NoError(t, acc.Check())
	assert.Zero(t, acc.Evicted)
	assert.Equal(t, uint64(100*unit), acc.Rejected[engine.ReasonSourceFault])
}

func fill(outcomes ...engine.Outcome) *Accumulator {
	acc := New(unit)
	for i, out := range outcomes {
		acc.Record(&base.FolioSnapshot{ID: uint64(i), Flags: base.FolioPrivate}, out)
	}
	return acc
}

func TestMergeAssociative(t *testing.T) {
	t.Parallel()

	evicted := engine.Outcome{FolioRefcount: 2, EBRefcount: 1, EBExamined: true}
	dirty := engine.Outcome{Reason: engine.ReasonFolioDirty, FolioRefcount: 3}
	ebRef := engine.Outcome{Reason: engine.ReasonEBRefcount, FolioRefcount: 2, EBRefcount: 4, EBExamined: true}

	// (a + b) + c
	left := fill(evicted)
	require.NoError(t, left.Merge(fill(dirty, evicted)))
	require.NoError(t, left.Merge(fill(ebRef)))

	// a + (b + c)
	bc := fill(dirty, evicted)
	require.NoError(t, bc.Merge(fill(ebRef)))
	right := fill(evicted)
	require.NoError(t, right.Merge(bc))

	all := fill(evicted, dirty, evicted, ebRef)

	assert.Equal(t, all, left)
	assert.Equal(t, all, right)
	require.NoError(t, all.Check())
	assert.Equal(t, uint64(2*unit), all.Evicted)
}

func TestMergeRejectsUnitMismatch(t *testing.T) {
	t.Parallel()

	acc := New(unit)
	assert.ErrorIs(t, acc.Merge(New(unit*16)), ErrUnitSizeMismatch)
	assert.NoError(t, acc.Merge(nil))
}

func TestSortedHistograms(t *testing.T) {
	t.Parallel()

	hist := map[int]uint64{3: 5, 1: 7, 2: 5}
	assert.Equal(t, []Bucket[int]{{1, 7}, {2, 5}, {3, 5}}, ByKey(hist))
	assert.Equal(t, []Bucket[int]{{1, 7}, {2, 5}, {3, 5}}, ByCount(hist))

	flags := map[string]uint64{"PG_private": 2, "PG_locked": 9}
	assert.Equal(t, "PG_locked", ByCount(flags)[0].Key)
}

func TestMiB(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(0), MiB(base.MiB-1))
	assert.Equal(t, uint64(3), MiB(3*base.MiB+17))
}
