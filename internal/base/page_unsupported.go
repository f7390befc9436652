// page_unsupported.go
//go:build !linux && !darwin

package base

func hostPageSize() int {
	return DefaultPageSize
}
