package base

import (
	"fmt"
	"strings"
)

// FolioFlags is the subset of page flags the reclaim checks look at.
type FolioFlags uint8

const (
	FolioLocked FolioFlags = 1 << iota
	FolioDirty
	FolioWriteback
	FolioPrivate
	FolioPrivate2

	// FolioPrivateMask is set when any private data hangs off the folio
	FolioPrivateMask = FolioPrivate | FolioPrivate2
)

// ExtentBufferFlags mirrors the extent buffer bflags word.
type ExtentBufferFlags uint16

const (
	EBDirty ExtentBufferFlags = 1 << iota
	EBWriteback
	EBTreeRef
	EBUptodate
	EBCorrupt
	EBReadahead
	EBStale
	EBReadErr
	EBUnmapped
	EBInTree
	EBWriteErr
	EBZonedZeroout
	EBReading
)

type flagName struct {
	long  string // kernel symbol
	short string // snapshot file spelling
}

var folioFlagNames = []struct {
	bit FolioFlags
	flagName
}{
	{FolioLocked, flagName{"PG_locked", "locked"}},
	{FolioDirty, flagName{"PG_dirty", "dirty"}},
	{FolioWriteback, flagName{"PG_writeback", "writeback"}},
	{FolioPrivate, flagName{"PG_private", "private"}},
	{FolioPrivate2, flagName{"PG_private_2", "private_2"}},
}

var ebFlagNames = []struct {
	bit ExtentBufferFlags
	flagName
}{
	{EBDirty, flagName{"EXTENT_BUFFER_DIRTY", "dirty"}},
	{EBWriteback, flagName{"EXTENT_BUFFER_WRITEBACK", "writeback"}},
	{EBTreeRef, flagName{"EXTENT_BUFFER_TREE_REF", "tree_ref"}},
	{EBUptodate, flagName{"EXTENT_BUFFER_UPTODATE", "uptodate"}},
	{EBCorrupt, flagName{"EXTENT_BUFFER_CORRUPT", "corrupt"}},
	{EBReadahead, flagName{"EXTENT_BUFFER_READAHEAD", "readahead"}},
	{EBStale, flagName{"EXTENT_BUFFER_STALE", "stale"}},
	{EBReadErr, flagName{"EXTENT_BUFFER_READ_ERR", "read_err"}},
	{EBUnmapped, flagName{"EXTENT_BUFFER_UNMAPPED", "unmapped"}},
	{EBInTree, flagName{"EXTENT_BUFFER_IN_TREE", "in_tree"}},
	{EBWriteErr, flagName{"EXTENT_BUFFER_WRITE_ERR", "write_err"}},
	{EBZonedZeroout, flagName{"EXTENT_BUFFER_ZONED_ZEROOUT", "zoned_zeroout"}},
	{EBReading, flagName{"EXTENT_BUFFER_READING", "reading"}},
}

// Has reports whether every bit in mask is set.
func (f FolioFlags) Has(mask FolioFlags) bool {
	return f&mask == mask
}

// Any reports whether at least one bit in mask is set.
func (f FolioFlags) Any(mask FolioFlags) bool {
	return f&mask != 0
}

// HasPrivate is PG_private || PG_private_2.
func (f FolioFlags) HasPrivate() bool {
	return f.Any(FolioPrivateMask)
}

// Names returns the kernel names of the set bits in bit order.
func (f FolioFlags) Names() []string {
	names := make([]string, 0, len(folioFlagNames))
	for _, n := range folioFlagNames {
		if f&n.bit != 0 {
			names = append(names, n.long)
		}
	}
	return names
}

func (f FolioFlags) String() string {
	if f == 0 {
		return "0"
	}
	return strings.Join(f.Names(), "|")
}

// ParseFolioFlag accepts a kernel name (PG_dirty) or its short form (dirty).
func ParseFolioFlag(s string) (FolioFlags, error) {
	s = strings.TrimSpace(s)
	for _, n := range folioFlagNames {
		if s == n.long || strings.EqualFold(s, n.short) {
			return n.bit, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFolioFlag, s)
}

func (f ExtentBufferFlags) Has(mask ExtentBufferFlags) bool {
	return f&mask == mask
}

func (f ExtentBufferFlags) Names() []string {
	names := make([]string, 0, len(ebFlagNames))
	for _, n := range ebFlagNames {
		if f&n.bit != 0 {
			names = append(names, n.long)
		}
	}
	return names
}

func (f ExtentBufferFlags) String() string {
	if f == 0 {
		return "0"
	}
	return strings.Join(f.Names(), "|")
}

// ParseExtentBufferFlag accepts EXTENT_BUFFER_TREE_REF or tree_ref.
func ParseExtentBufferFlag(s string) (ExtentBufferFlags, error) {
	s = strings.TrimSpace(s)
	for _, n := range ebFlagNames {
		if s == n.long || strings.EqualFold(s, n.short) {
			return n.bit, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExtentBufferFlag, s)
}
