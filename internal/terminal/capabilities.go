// Package terminal probes and drives the controlling terminal: capability
// detection, raw mode and decoding of key presses.
package terminal

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Fallback dimensions when the size cannot be queried.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Capabilities describes what the output terminal can do.
type Capabilities struct {
	CursorControl bool
	Color         bool
	Width         int
	Height        int
}

// ProbeOptions carries user overrides that affect detection.
type ProbeOptions struct {
	NoColor bool
	Width   int
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Probe inspects in and out. Cursor control needs both ends on a terminal that
// is not "dumb"; color additionally honors NO_COLOR and the caller's override.
func Probe(in, out *os.File, opts ProbeOptions) Capabilities {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	c := Capabilities{Width: DefaultWidth, Height: DefaultHeight}
	c.CursorControl = isTerminal(in) && isTerminal(out) && getenv("TERM") != "dumb"

	if c.CursorControl {
		if w, h, err := term.GetSize(out.Fd()); err == nil && w > 0 && h > 0 {
			c.Width, c.Height = w, h
		}
		profile := termenv.NewOutput(out, termenv.WithEnvironment(env(getenv))).EnvColorProfile()
		c.Color = !opts.NoColor && profile != termenv.Ascii
	}
	if opts.Width > 0 {
		c.Width = opts.Width
	}
	return c
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool { return isTerminal(f) }

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// env adapts a getenv function to termenv's Environ interface.
type env func(string) string

func (e env) Environ() []string      { return os.Environ() }
func (e env) Getenv(key string) string { return e(key) }
