package engine

// Reason names why a folio could not be reclaimed. The strings are reported
// verbatim as diagnostic keys.
type Reason string

const (
	ReasonNone Reason = ""

	ReasonFolioLocked          Reason = "folio-locked"
	ReasonFolioDirty           Reason = "folio-dirty"
	ReasonFolioWriteback       Reason = "folio-writeback"
	ReasonFolioRefcount        Reason = "folio-refcount"
	ReasonFolioHasPrivate      Reason = "folio-has-private"
	ReasonFolioMappingMismatch Reason = "folio-mapping-mismatch"
	ReasonNullMapping          Reason = "null-mapping"

	ReasonEBReleaseFolioPrivate Reason = "eb-release-folio-private"
	ReasonEBZeroRefcount        Reason = "eb-zero-refcount"
	ReasonEBRefcount            Reason = "eb-refcount"
	ReasonEBDirty               Reason = "eb-dirty"
	ReasonEBWriteback           Reason = "eb-writeback"
	ReasonEBTreeRef             Reason = "eb-tree-ref"

	ReasonSourceFault Reason = "source-fault"
)

var allReasons = []Reason{
	ReasonFolioLocked,
	ReasonFolioDirty,
	ReasonFolioWriteback,
	ReasonFolioRefcount,
	ReasonFolioHasPrivate,
	ReasonFolioMappingMismatch,
	ReasonNullMapping,
	ReasonEBReleaseFolioPrivate,
	ReasonEBZeroRefcount,
	ReasonEBRefcount,
	ReasonEBDirty,
	ReasonEBWriteback,
	ReasonEBTreeRef,
	ReasonSourceFault,
}

// AllReasons returns the closed reason vocabulary in report order.
func AllReasons() []Reason {
	return append([]Reason(nil), allReasons...)
}

// Valid reports whether r belongs to the vocabulary.
func (r Reason) Valid() bool {
	for _, known := range allReasons {
		if r == known {
			return true
		}
	}
	return false
}

func (r Reason) String() string {
	if r == ReasonNone {
		return "evicted"
	}
	return string(r)
}
