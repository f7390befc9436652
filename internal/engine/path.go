package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPath = errors.New("unknown reclaim path")

// Path selects which reclaim entry point is modelled.
type Path int

const (
	// PathRelease models direct release of an exclusively held folio.
	PathRelease Path = iota

	// PathInvalidate models best-effort invalidation of a mapping's folios,
	// as done by the invalidate_mapping_pages family.
	PathInvalidate
)

// Valid reports whether p is one of the modelled paths.
func (p Path) Valid() bool {
	return p == PathRelease || p == PathInvalidate
}

func (p Path) String() string {
	switch p {
	case PathRelease:
		return "release"
	case PathInvalidate:
		return "invalidate"
	default:
		return fmt.Sprintf("Path(%d)", int(p))
	}
}

// ParsePath parses "release" or "invalidate".
func ParsePath(s string) (Path, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "release", "":
		return PathRelease, nil
	case "invalidate":
		return PathInvalidate, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid: release, invalidate)", ErrUnknownPath, s)
	}
}
