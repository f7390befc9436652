// page_unix.go
//go:build linux || darwin

package base

import "golang.org/x/sys/unix"

func hostPageSize() int {
	if sz := unix.Getpagesize(); sz > 0 {
		return sz
	}
	return DefaultPageSize
}
