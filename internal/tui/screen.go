package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Frame is one full paint of the prompt region. CursorCol counts display
// columns from the start of line CursorLine.
type Frame struct {
	Lines      []string
	CursorLine int
	CursorCol  int
}

// Screen repaints a block of lines in place below the shell prompt. It
// remembers where it left the cursor and how many rows it drew, so the next
// paint can move back to the top of its block and clear below.
type Screen struct {
	w         io.Writer
	width     int
	rows      int
	cursorRow int
}

func NewScreen(w io.Writer, width int) *Screen {
	if width <= 0 {
		width = 80
	}
	return &Screen{w: w, width: width}
}

// Rows returns how many physical rows the last frame occupied.
func (s *Screen) Rows() int { return s.rows }

// Render replaces the previous frame with f and places the cursor.
func (s *Screen) Render(f Frame) error {
	var b strings.Builder
	s.rewind(&b)

	rows, cursorRow, cursorCol := 0, 0, 0
	for i, line := range f.Lines {
		if i > 0 {
			b.WriteString("\r\n")
		}
		h := s.height(line)
		if i == f.CursorLine {
			r := f.CursorCol / s.width
			if r >= h {
				cursorRow, cursorCol = rows+h-1, s.width-1
			} else {
				cursorRow, cursorCol = rows+r, f.CursorCol%s.width
			}
		}
		rows += h
		b.WriteString(line)
	}
	if rows == 0 {
		rows = 1
	}

	if up := rows - 1 - cursorRow; up > 0 {
		b.WriteString(ansi.CursorUp(up))
	}
	b.WriteString(ansi.CursorHorizontalAbsolute(cursorCol + 1))

	s.rows, s.cursorRow = rows, cursorRow
	return s.write(b.String())
}

// Finish clears the frame, prints lines in its place and moves below them.
// The screen is then ready to paint a fresh block.
func (s *Screen) Finish(lines ...string) error {
	var b strings.Builder
	s.rewind(&b)
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	s.rows, s.cursorRow = 0, 0
	return s.write(b.String())
}

// rewind moves to the first column of the frame's top row and clears below.
func (s *Screen) rewind(b *strings.Builder) {
	if s.cursorRow > 0 {
		b.WriteString(ansi.CursorUp(s.cursorRow))
	}
	b.WriteString("\r")
	b.WriteString(ansi.EraseScreenBelow)
}

// height is the number of rows a line wraps to at the current width.
func (s *Screen) height(line string) int {
	w := ansi.StringWidth(line)
	if w <= s.width {
		return 1
	}
	return (w + s.width - 1) / s.width
}

func (s *Screen) write(out string) error {
	if _, err := io.WriteString(s.w, out); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}
