package base

import (
	"sort"
	"strings"
)

// MappingID identifies an address_space. NullMapping stands for a NULL
// mapping pointer.
type MappingID uint64

const NullMapping MappingID = 0

// ExtentBufferSnapshot is a decoded extent buffer. It is owned by exactly one
// FolioSnapshot.
type ExtentBufferSnapshot struct {
	Start    uint64 // logical bytenr, identity only
	Flags    ExtentBufferFlags
	Refcount int
}

// FolioSnapshot is a decoded folio from the btree inode mapping.
type FolioSnapshot struct {
	ID       uint64
	Flags    FolioFlags
	Refcount int
	Mapping  MappingID

	// ExtraFlags holds raw page flags outside the modelled set. They only
	// feed the flag histograms.
	ExtraFlags []string

	// ExtentBuffer is the object designated by folio->private, if any.
	ExtentBuffer *ExtentBufferSnapshot
}

// HasPrivate reports PG_private || PG_private_2.
func (f *FolioSnapshot) HasPrivate() bool {
	return f.Flags.HasPrivate()
}

// RawFlags returns every flag name on the folio, modelled flags first, in a
// stable order.
func (f *FolioSnapshot) RawFlags() []string {
	names := f.Flags.Names()
	if len(f.ExtraFlags) == 0 {
		return names
	}
	extra := append([]string(nil), f.ExtraFlags...)
	sort.Strings(extra)
	return append(names, extra...)
}

// FlagCombination renders the full raw flag set as one histogram key.
func (f *FolioSnapshot) FlagCombination() string {
	names := f.RawFlags()
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// Item is one element produced by a snapshot source: either a folio or a
// fault marker for an entry the source could not read.
type Item struct {
	Folio *FolioSnapshot
	Fault error
}

func SnapshotItem(f *FolioSnapshot) Item {
	return Item{Folio: f}
}

func FaultItem(err error) Item {
	if err == nil {
		err = ErrSourceFault
	}
	return Item{Fault: err}
}

// IsFault reports whether the item carries no usable snapshot.
func (it Item) IsFault() bool {
	return it.Fault != nil || it.Folio == nil
}
