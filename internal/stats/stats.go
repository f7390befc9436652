// Package stats folds per-folio outcomes into run totals.
//
// An Accumulator is owned by its caller. Shards may be filled independently
// and combined with Merge in any order.
package stats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/engine"
)

// Accumulator holds byte totals and histograms for one run or shard.
type Accumulator struct {
	UnitSize uint64 `json:"unit_size" yaml:"unit_size"`

	Items      uint64 `json:"items" yaml:"items"`
	Duplicates uint64 `json:"duplicates" yaml:"duplicates"`

	Total    uint64                   `json:"total_bytes" yaml:"total_bytes"`
	Evicted  uint64                   `json:"evicted_bytes" yaml:"evicted_bytes"`
	Rejected map[engine.Reason]uint64 `json:"rejected_bytes" yaml:"rejected_bytes"`

	FolioRefcounts map[int]uint64 `json:"folio_refcounts" yaml:"folio_refcounts"`
	EBRefcounts    map[int]uint64 `json:"eb_refcounts" yaml:"eb_refcounts"`

	FlagCombos map[string]uint64 `json:"flag_combinations" yaml:"flag_combinations"`
	FlagCounts map[string]uint64 `json:"flags" yaml:"flags"`
}

// New returns an empty accumulator crediting unitSize bytes per item.
func New(unitSize int) *Accumulator {
	return &Accumulator{
		UnitSize:       uint64(unitSize),
		Rejected:       make(map[engine.Reason]uint64),
		FolioRefcounts: make(map[int]uint64),
		EBRefcounts:    make(map[int]uint64),
		FlagCombos:     make(map[string]uint64),
		FlagCounts:     make(map[string]uint64),
	}
}

// Record folds the outcome of evaluating f.
func (a *Accumulator) Record(f *base.FolioSnapshot, out engine.Outcome) {
	a.Items++
	a.Total += a.UnitSize

	combo := f.FlagCombination()
	a.FlagCombos[combo]++
	for _, flag := range strings.Split(combo, "|") {
		a.FlagCounts[flag]++
	}

	a.FolioRefcounts[out.FolioRefcount]++
	if out.EBExamined {
		a.EBRefcounts[out.EBRefcount]++
	}

	if out.Evicted() {
		a.Evicted += a.UnitSize
		return
	}
	a.Rejected[out.Reason] += a.UnitSize
}

// RecordFault accounts for an item the source could not read.
func (a *Accumulator) RecordFault() {
	a.Items++
	a.Total += a.UnitSize
	a.Rejected[engine.ReasonSourceFault] += a.UnitSize
}

// RecordItem dispatches on whether it is a fault marker.
func (a *Accumulator) RecordItem(it base.Item, out engine.Outcome) {
	if it.IsFault() {
		a.RecordFault()
		return
	}
	a.Record(it.Folio, out)
}

// Merge adds other into a.
func (a *Accumulator) Merge(other *Accumulator) error {
	if other == nil {
		return nil
	}
	if a.UnitSize != other.UnitSize {
		return ErrUnitSizeMismatch
	}

	a.Items += other.Items
	a.Duplicates += other.Duplicates
	a.Total += other.Total
	a.Evicted += other.Evicted
	mergeInto(a.Rejected, other.Rejected)
	mergeInto(a.FolioRefcounts, other.FolioRefcounts)
	mergeInto(a.EBRefcounts, other.EBRefcounts)
	mergeInto(a.FlagCombos, other.FlagCombos)
	mergeInto(a.FlagCounts, other.FlagCounts)
	return nil
}

func mergeInto[K comparable](dst, src map[K]uint64) {
	for k, v := range src {
		dst[k] += v
	}
}

// RejectedTotal sums every rejection bucket.
func (a *Accumulator) RejectedTotal() uint64 {
	var sum uint64
	for _, v := range a.Rejected {
		sum += v
	}
	return sum
}

// Check verifies Evicted + Σ Rejected == Total.
func (a *Accumulator) Check() error {
	rejected := a.RejectedTotal()
	if a.Evicted+rejected != a.Total {
		return &AccountingError{Total: a.Total, Evicted: a.Evicted, Rejected: rejected}
	}
	return nil
}

// Pages converts a byte total into units.
func (a *Accumulator) Pages(bytes uint64) uint64 {
	if a.UnitSize == 0 {
		return 0
	}
	return bytes / a.UnitSize
}

// MiB truncates like the scanning scripts' >> 20.
func MiB(bytes uint64) uint64 {
	return bytes / base.MiB
}

// Bucket is one histogram row.
type Bucket[K cmp.Ordered] struct {
	Key   K
	Count uint64
}

// ByKey returns a histogram sorted by ascending key.
func ByKey[K cmp.Ordered](hist map[K]uint64) []Bucket[K] {
	out := make([]Bucket[K], 0, len(hist))
	for k, v := range hist {
		out = append(out, Bucket[K]{Key: k, Count: v})
	}
	slices.SortFunc(out, func(x, y Bucket[K]) int {
		return cmp.Compare(x.Key, y.Key)
	})
	return out
}

// ByCount returns a histogram sorted by descending count, ties by key.
func ByCount[K cmp.Ordered](hist map[K]uint64) []Bucket[K] {
	out := ByKey(hist)
	slices.SortStableFunc(out, func(x, y Bucket[K]) int {
		return cmp.Compare(y.Count, x.Count)
	})
	return out
}
