package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/sprite-ai/askr/internal/model"
	"github.com/sprite-ai/askr/internal/validation"
)

// DefaultMaxErrors caps the messages shown under the input.
const DefaultMaxErrors = 10

// State is where an interactive session stands.
type State int

const (
	StateEditing State = iota
	StateSubmitted
	StateCancelled
	StateTimedOut
	StateMaxAttempts
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitted:
		return "submitted"
	case StateCancelled:
		return "cancelled"
	case StateTimedOut:
		return "timed out"
	case StateMaxAttempts:
		return "max attempts"
	default:
		return "unknown"
	}
}

// EditorConfig controls a line editor session.
type EditorConfig struct {
	Prompt   string
	HelpText string
	// Default replaces an empty buffer on submit.
	Default string
	// Mask, when non-zero, is drawn once per typed character instead of the text.
	Mask rune
	// MaxAttempts is the number of failed submissions allowed; 0 is unlimited.
	MaxAttempts int
	MaxErrors   int
	Width       int
	Height      int
	// Renderer defaults to a plain-text renderer.
	Renderer *lipgloss.Renderer
}

// Editor is a single-line input state machine. Feed it keys with Update and
// paint Frame after each one.
type Editor struct {
	cfg    EditorConfig
	engine *validation.Engine
	st     styles

	buf     []rune
	cursor  int
	state   State
	touched bool

	submits  int
	failures int
	errors   []model.Result
	partial  model.PartialResult
	summary  model.Summary
}

func NewEditor(engine *validation.Engine, cfg EditorConfig) *Editor {
	if cfg.Renderer == nil {
		cfg.Renderer = newRenderer(io.Discard, false)
	}
	if cfg.MaxErrors == 0 {
		cfg.MaxErrors = DefaultMaxErrors
	}
	return &Editor{
		cfg:     cfg,
		engine:  engine,
		st:      newStyles(cfg.Renderer),
		partial: model.PartialOK(),
	}
}

func (e *Editor) State() State { return e.state }

// Value returns the current buffer contents.
func (e *Editor) Value() string { return string(e.buf) }

// Cursor returns the cursor position as a rune offset.
func (e *Editor) Cursor() int { return e.cursor }

// Attempts counts every submission, successful or not.
func (e *Editor) Attempts() int { return e.submits }

// Summary is the validation outcome of the last submission.
func (e *Editor) Summary() model.Summary { return e.summary }

// Errors returns the messages currently on display.
func (e *Editor) Errors() []model.Result { return e.errors }

// Expire ends the session because no key arrived in time.
func (e *Editor) Expire() {
	if e.state == StateEditing {
		e.state = StateTimedOut
	}
}

// Update applies one key press.
func (e *Editor) Update(msg tea.KeyMsg) {
	if e.state != StateEditing {
		return
	}

	switch {
	case key.Matches(msg, editorKeys.Cancel):
		e.state = StateCancelled
		return
	case key.Matches(msg, editorKeys.Submit):
		e.submit()
		return
	case key.Matches(msg, editorKeys.Left):
		if e.cursor > 0 {
			e.cursor--
		}
		return
	case key.Matches(msg, editorKeys.Right):
		if e.cursor < len(e.buf) {
			e.cursor++
		}
		return
	case key.Matches(msg, editorKeys.WordLeft):
		e.cursor = e.wordStart()
		return
	case key.Matches(msg, editorKeys.WordRight):
		e.cursor = e.wordEnd()
		return
	case key.Matches(msg, editorKeys.Home):
		e.cursor = 0
		return
	case key.Matches(msg, editorKeys.End):
		e.cursor = len(e.buf)
		return
	case key.Matches(msg, editorKeys.Backspace):
		if e.cursor == 0 {
			return
		}
		e.delete(e.cursor-1, e.cursor)
	case key.Matches(msg, editorKeys.Delete):
		if e.cursor == len(e.buf) {
			return
		}
		e.delete(e.cursor, e.cursor+1)
	case key.Matches(msg, editorKeys.KillWordBack):
		e.delete(e.wordStart(), e.cursor)
	case key.Matches(msg, editorKeys.KillWordForward):
		e.delete(e.cursor, e.wordEnd())
	case key.Matches(msg, editorKeys.KillToStart):
		e.delete(0, e.cursor)
	case key.Matches(msg, editorKeys.KillToEnd):
		e.delete(e.cursor, len(e.buf))
	case msg.Type == tea.KeyRunes && !msg.Alt, msg.Type == tea.KeySpace:
		if !e.insert(msg.Runes) {
			return
		}
	default:
		return
	}
	e.touched = true
	e.refresh()
}

func (e *Editor) insert(runes []rune) bool {
	var clean []rune
	for _, r := range runes {
		if unicode.IsPrint(r) {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return false
	}
	buf := make([]rune, 0, len(e.buf)+len(clean))
	buf = append(buf, e.buf[:e.cursor]...)
	buf = append(buf, clean...)
	buf = append(buf, e.buf[e.cursor:]...)
	e.buf = buf
	e.cursor += len(clean)
	return true
}

// delete removes buf[from:to] and leaves the cursor at from.
func (e *Editor) delete(from, to int) {
	if from >= to {
		return
	}
	e.buf = append(e.buf[:from:from], e.buf[to:]...)
	e.cursor = from
}

// wordStart is where a backward word motion from the cursor lands.
func (e *Editor) wordStart() int {
	i := e.cursor
	for i > 0 && unicode.IsSpace(e.buf[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(e.buf[i-1]) {
		i--
	}
	return i
}

// wordEnd is where a forward word motion from the cursor lands.
func (e *Editor) wordEnd() int {
	i := e.cursor
	for i < len(e.buf) && unicode.IsSpace(e.buf[i]) {
		i++
	}
	for i < len(e.buf) && !unicode.IsSpace(e.buf[i]) {
		i++
	}
	return i
}

func (e *Editor) submit() {
	if len(e.buf) == 0 && e.cfg.Default != "" {
		e.buf = []rune(e.cfg.Default)
		e.cursor = len(e.buf)
	}
	e.submits++
	e.summary = e.engine.Validate(string(e.buf))
	e.summary.Metadata.Attempts = e.submits
	if e.summary.Valid {
		e.state = StateSubmitted
		return
	}

	e.failures++
	e.touched = true
	e.refresh()
	if e.cfg.MaxAttempts > 0 && e.failures >= e.cfg.MaxAttempts {
		e.state = StateMaxAttempts
	}
}

func (e *Editor) refresh() {
	value := string(e.buf)
	e.partial = e.engine.PartialValidate(value, e.cursor)
	e.errors = e.engine.DisplayErrors(value, e.cfg.MaxErrors)
}

// Frame renders the prompt line, optional help, and the current messages.
func (e *Editor) Frame() Frame {
	prompt := promptText(e.cfg.Prompt)
	line := e.st.prompt.Render(prompt) + e.renderInput(true)
	if len(e.buf) == 0 && e.cfg.Default != "" && e.cfg.Mask == 0 {
		line += e.st.help.Render(fmt.Sprintf(" (%s)", e.cfg.Default))
	}

	lines := []string{line}
	if e.cfg.HelpText != "" {
		lines = append(lines, e.st.help.Render(e.cfg.HelpText))
	}

	if e.touched {
		var msgs []string
		for _, r := range e.errors {
			msgs = append(msgs, wrap(e.st.forPriority(r.Priority), r.Priority.Icon()+" "+r.Message, e.width())...)
		}
		if len(e.errors) == 0 && e.partial.Suggestion != "" {
			msgs = append(msgs, wrap(e.st.hint, e.partial.Suggestion, e.width())...)
		}
		if e.failures > 0 && e.cfg.MaxAttempts > 0 {
			left := e.cfg.MaxAttempts - e.failures
			msgs = append(msgs, e.st.help.Render(fmt.Sprintf("%d attempt(s) remaining", left)))
		}
		if room := e.cfg.Height - 1 - len(lines); e.cfg.Height > 0 && len(msgs) > room {
			msgs = msgs[:max(room, 0)]
		}
		lines = append(lines, msgs...)
	}

	return Frame{
		Lines:      lines,
		CursorLine: 0,
		CursorCol:  ansi.StringWidth(prompt) + e.displayWidth(e.buf[:e.cursor]),
	}
}

// FinalLine is the prompt as it should stay on screen after the session.
func (e *Editor) FinalLine() string {
	return e.st.prompt.Render(promptText(e.cfg.Prompt)) + e.renderInput(false)
}

func (e *Editor) renderInput(highlight bool) string {
	if e.cfg.Mask != 0 {
		return e.st.input.Render(strings.Repeat(string(e.cfg.Mask), len(e.buf)))
	}
	if highlight && e.touched && e.partial.HasError() && e.partial.ErrorPos < len(e.buf) {
		pos := max(e.partial.ErrorPos, 0)
		return e.st.input.Render(string(e.buf[:pos])) + e.st.invalid.Render(string(e.buf[pos:]))
	}
	return e.st.input.Render(string(e.buf))
}

func (e *Editor) displayWidth(runes []rune) int {
	if e.cfg.Mask != 0 {
		return len(runes) * runewidth.RuneWidth(e.cfg.Mask)
	}
	return runewidth.StringWidth(string(runes))
}

func (e *Editor) width() int {
	if e.cfg.Width > 0 {
		return e.cfg.Width
	}
	return 80
}

// promptText guarantees a separating space after the prompt.
func promptText(p string) string {
	if p == "" || strings.HasSuffix(p, " ") {
		return p
	}
	return p + " "
}

// wrap styles text and splits it into lines no wider than width.
func wrap(st lipgloss.Style, text string, width int) []string {
	var out []string
	for _, l := range strings.Split(ansi.Wordwrap(text, width, ""), "\n") {
		out = append(out, st.Render(l))
	}
	return out
}
