package base

import "fmt"

const (
	// DefaultPageSize is used when the host page size cannot be queried.
	DefaultPageSize = 4096

	MiB = 1 << 20
)

// PageSize returns the unit every folio is accounted as. Folios are counted
// as one page regardless of their order, matching the scanning scripts.
func PageSize() int {
	return hostPageSize()
}

// ValidatePageSize rejects sizes that are not a positive power of two.
func ValidatePageSize(size int) error {
	if size <= 0 || size&(size-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	return nil
}
