package stats

import (
	"errors"
	"fmt"
)

var (
	ErrAccountingMismatch = errors.New("mismatched amounts")
	ErrUnitSizeMismatch   = errors.New("accumulators use different unit sizes")
)

// AccountingError reports a broken Evicted + Rejected == Total invariant. It
// is an engine defect, not a rejection reason.
type AccountingError struct {
	Total    uint64
	Evicted  uint64
	Rejected uint64
}

func (e *AccountingError) Error() string {
	return fmt.Sprintf("%s: evicted %d + rejected %d != total %d",
		ErrAccountingMismatch, e.Evicted, e.Rejected, e.Total)
}

func (e *AccountingError) Unwrap() error {
	return ErrAccountingMismatch
}
