package folioevict

import (
	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/engine"
	"github.com/alexhholmes/folioevict/internal/stats"
)

type (
	FolioSnapshot        = base.FolioSnapshot
	ExtentBufferSnapshot = base.ExtentBufferSnapshot
	FolioFlags           = base.FolioFlags
	ExtentBufferFlags    = base.ExtentBufferFlags
	MappingID            = base.MappingID
	Item                 = base.Item

	Path    = engine.Path
	Reason  = engine.Reason
	Outcome = engine.Outcome

	Stats           = stats.Accumulator
	AccountingError = stats.AccountingError
)

const (
	PathRelease    = engine.PathRelease
	PathInvalidate = engine.PathInvalidate

	NullMapping = base.NullMapping

	FolioLocked    = base.FolioLocked
	FolioDirty     = base.FolioDirty
	FolioWriteback = base.FolioWriteback
	FolioPrivate   = base.FolioPrivate
	FolioPrivate2  = base.FolioPrivate2

	EBDirty     = base.EBDirty
	EBWriteback = base.EBWriteback
	EBTreeRef   = base.EBTreeRef
	EBUptodate  = base.EBUptodate
)

var (
	SnapshotItem = base.SnapshotItem
	FaultItem    = base.FaultItem
	ParsePath    = engine.ParsePath
	AllReasons   = engine.AllReasons
)
