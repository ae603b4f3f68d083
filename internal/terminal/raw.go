package terminal

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
)

// RawGuard holds a terminal in raw mode until Release is called. Release is
// idempotent so it can be deferred and also called early.
type RawGuard struct {
	fd    uintptr
	state *term.State
	once  sync.Once
	err   error
}

// EnableRaw switches f to raw mode.
func EnableRaw(f *os.File) (*RawGuard, error) {
	fd := f.Fd()
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return &RawGuard{fd: fd, state: state}, nil
}

// Release restores the terminal state captured by EnableRaw.
func (g *RawGuard) Release() error {
	if g == nil {
		return nil
	}
	g.once.Do(func() {
		if err := term.Restore(g.fd, g.state); err != nil {
			g.err = fmt.Errorf("restoring terminal: %w", err)
		}
	})
	return g.err
}
