package base

import "errors"

var (
	ErrUnknownFolioFlag        = errors.New("unknown folio flag")
	ErrUnknownExtentBufferFlag = errors.New("unknown extent buffer flag")
	ErrNegativeRefcount        = errors.New("negative refcount")
	ErrSourceFault             = errors.New("snapshot source fault")
	ErrInvalidPageSize         = errors.New("invalid page size")
)
