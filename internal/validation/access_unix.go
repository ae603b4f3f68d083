//go:build unix

package validation

import "golang.org/x/sys/unix"

func accessible(path string, mode int) bool {
	var m uint32
	if mode&accessRead != 0 {
		m |= unix.R_OK
	}
	if mode&accessWrite != 0 {
		m |= unix.W_OK
	}
	if mode&accessExec != 0 {
		m |= unix.X_OK
	}
	return unix.Access(path, m) == nil
}
