package folioevict

import (
	"errors"

	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/engine"
	"github.com/alexhholmes/folioevict/internal/stats"
)

//goland:noinspection GoUnusedGlobalVariable
var (
	ErrNilSource      = errors.New("nil snapshot source")
	ErrInvalidWorkers = errors.New("worker count must be positive")
	ErrInvalidWindow  = errors.New("duplicate window must be between 0 and 2^32-1")

	ErrInvalidPageSize    = base.ErrInvalidPageSize
	ErrSourceFault        = base.ErrSourceFault
	ErrInvalidParams      = engine.ErrInvalidParams
	ErrUnknownPath        = engine.ErrUnknownPath
	ErrAccountingMismatch = stats.ErrAccountingMismatch
)
