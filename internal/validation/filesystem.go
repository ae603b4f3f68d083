package validation

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sprite-ai/askr/internal/model"
)

// Access modes checked by the permission rules.
const (
	accessRead = 1 << iota
	accessWrite
	accessExec
)

// Path checks a filesystem path for existence, kind or permission.
type Path struct {
	rule
	check func(path string) string
}

func NewFileExists(opts ...Option) *Path {
	return newPath("file_exists", opts, func(p string) string {
		info, err := os.Stat(p)
		switch {
		case err != nil:
			return "File does not exist: " + p
		case info.IsDir():
			return "Path is a directory, not a file: " + p
		}
		return ""
	})
}

func NewDirExists(opts ...Option) *Path {
	return newPath("dir_exists", opts, func(p string) string {
		info, err := os.Stat(p)
		switch {
		case err != nil:
			return "Directory does not exist: " + p
		case !info.IsDir():
			return "Path is not a directory: " + p
		}
		return ""
	})
}

func NewPathExists(opts ...Option) *Path {
	return newPath("path_exists", opts, func(p string) string {
		if _, err := os.Stat(p); err != nil {
			return "Path does not exist: " + p
		}
		return ""
	})
}

func NewReadable(opts ...Option) *Path {
	return newPath("readable", opts, func(p string) string {
		if _, err := os.Stat(p); err != nil {
			return "Path does not exist: " + p
		}
		if !accessible(p, accessRead) {
			return "Path is not readable: " + p
		}
		return ""
	})
}

// NewWritable accepts an existing writable path, or a missing one whose parent
// directory is writable.
func NewWritable(opts ...Option) *Path {
	return newPath("writable", opts, func(p string) string {
		_, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			parent := filepath.Dir(filepath.Clean(p))
			if info, perr := os.Stat(parent); perr != nil || !info.IsDir() || !accessible(parent, accessWrite) {
				return "Path is not writable: " + p
			}
			return ""
		}
		if err != nil || !accessible(p, accessWrite) {
			return "Path is not writable: " + p
		}
		return ""
	})
}

func NewExecutable(opts ...Option) *Path {
	return newPath("executable", opts, func(p string) string {
		info, err := os.Stat(p)
		switch {
		case err != nil:
			return "File does not exist: " + p
		case info.IsDir():
			return "Path is a directory, not an executable: " + p
		case !accessible(p, accessExec):
			return "File is not executable: " + p
		}
		return ""
	})
}

func newPath(name string, opts []Option, check func(string) string) *Path {
	return &Path{rule: newRule(name, model.PriorityHigh, opts), check: check}
}

func (v *Path) Validate(input string) model.Result {
	p := expandHome(strings.TrimSpace(input))
	if p == "" {
		return v.fail("A path is required")
	}
	if msg := v.check(p); msg != "" {
		return v.fail(msg).With("path", p)
	}
	return v.pass()
}

// PartialValidate flags characters no path on this platform may contain.
func (v *Path) PartialValidate(input string, _ int) model.PartialResult {
	pos := 0
	for i, r := range input {
		if invalidPathRune(r, i) {
			return model.PartialBlockedAt(pos).WithSuggestion("Invalid character in path")
		}
		pos++
	}
	return model.PartialOK()
}

func invalidPathRune(r rune, byteIndex int) bool {
	if r == 0 {
		return true
	}
	if runtime.GOOS != "windows" {
		return false
	}
	if r < 32 {
		return true
	}
	switch r {
	case '<', '>', '"', '|', '?', '*':
		return true
	case ':':
		return byteIndex != 1
	}
	return false
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
