//go:build !unix

package validation

import (
	"os"
	"strings"
)

// accessible approximates permission checks where access(2) is unavailable.
func accessible(path string, mode int) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if mode&accessWrite != 0 && info.Mode().Perm()&0o200 == 0 {
		return false
	}
	if mode&accessExec != 0 {
		ext := strings.ToLower(path)
		return strings.HasSuffix(ext, ".exe") || strings.HasSuffix(ext, ".bat") || strings.HasSuffix(ext, ".cmd")
	}
	if mode&accessRead != 0 {
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		f.Close()
	}
	return true
}
