package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/sprite-ai/askr/internal/validation"
)

func typeText(s string) []tea.KeyMsg {
	var keys []tea.KeyMsg
	for _, r := range s {
		if r == ' ' {
			keys = append(keys, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		keys = append(keys, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return keys
}

func press(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func feed(e interface{ Update(tea.KeyMsg) }, keys ...tea.KeyMsg) {
	for _, k := range keys {
		e.Update(k)
	}
}

func minLengthEngine(t *testing.T, n int) *validation.Engine {
	t.Helper()
	e, err := validation.Compile([]validation.Spec{{Kind: validation.KindMinLength, Length: n}})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return e
}

func TestEditorTypingAndCursor(t *testing.T) {
	ed := NewEditor(validation.NewEngine(), EditorConfig{Prompt: "Name:"})
	feed(ed, typeText("helo")...)
	feed(ed, press(tea.KeyLeft), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})

	if ed.Value() != "hello" {
		t.Errorf("Value() = %q, want %q", ed.Value(), "hello")
	}
	if ed.Cursor() != 4 {
		t.Errorf("Cursor() = %d, want 4", ed.Cursor())
	}

	feed(ed, press(tea.KeyHome))
	if ed.Cursor() != 0 {
		t.Errorf("after home Cursor() = %d, want 0", ed.Cursor())
	}
	feed(ed, press(tea.KeyLeft))
	if ed.Cursor() != 0 {
		t.Error("left at start must stay at 0")
	}
	feed(ed, press(tea.KeyEnd), press(tea.KeyRight))
	if ed.Cursor() != 5 {
		t.Errorf("Cursor() = %d, want 5", ed.Cursor())
	}
}

func TestEditorBackspaceAndDelete(t *testing.T) {
	ed := NewEditor(validation.NewEngine(), EditorConfig{})
	feed(ed, typeText("abc")...)
	feed(ed, press(tea.KeyBackspace))
	if ed.Value() != "ab" {
		t.Errorf("Value() = %q after backspace", ed.Value())
	}
	feed(ed, press(tea.KeyHome), press(tea.KeyDelete))
	if ed.Value() != "b" || ed.Cursor() != 0 {
		t.Errorf("Value() = %q cursor %d after delete", ed.Value(), ed.Cursor())
	}
	feed(ed, press(tea.KeyBackspace))
	if ed.Value() != "b" {
		t.Error("backspace at start must not change the buffer")
	}
}

func TestEditorKillCommands(t *testing.T) {
	ed := NewEditor(validation.NewEngine(), EditorConfig{})
	feed(ed, typeText("one two three")...)

	feed(ed, press(tea.KeyCtrlW))
	if ed.Value() != "one two " {
		t.Errorf("ctrl+w: Value() = %q", ed.Value())
	}

	feed(ed, press(tea.KeyHome), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}, Alt: true})
	if ed.Value() != " two " {
		t.Errorf("alt+d: Value() = %q", ed.Value())
	}

	feed(ed, press(tea.KeyRight), press(tea.KeyRight), press(tea.KeyCtrlK))
	if ed.Value() != " t" {
		t.Errorf("ctrl+k: Value() = %q", ed.Value())
	}

	feed(ed, press(tea.KeyCtrlU))
	if ed.Value() != "" || ed.Cursor() != 0 {
		t.Errorf("ctrl+u: Value() = %q cursor %d", ed.Value(), ed.Cursor())
	}
}

func TestEditorSubmitFailureCountsAttempt(t *testing.T) {
	ed := NewEditor(minLengthEngine(t, 3), EditorConfig{MaxAttempts: 3})
	feed(ed, typeText("ab")...)
	feed(ed, press(tea.KeyEnter))

	if ed.State() != StateEditing {
		t.Fatalf("State() = %v, want editing", ed.State())
	}
	if ed.Attempts() != 1 {
		t.Errorf("Attempts() = %d, want 1", ed.Attempts())
	}
	errs := ed.Errors()
	if len(errs) != 1 || errs[0].Message != "Minimum length is 3 characters (currently 2)" {
		t.Errorf("unexpected errors %+v", errs)
	}

	feed(ed, typeText("c")...)
	feed(ed, press(tea.KeyEnter))
	if ed.State() != StateSubmitted {
		t.Fatalf("State() = %v, want submitted", ed.State())
	}
	if ed.Summary().Metadata.Attempts != 2 {
		t.Errorf("summary attempts = %d, want 2", ed.Summary().Metadata.Attempts)
	}
}

func TestEditorBackspaceBeforeSubmit(t *testing.T) {
	e, err := validation.Compile([]validation.Spec{{Kind: validation.KindMaxLength, Length: 3}})
	if err != nil {
		t.Fatal(err)
	}
	ed := NewEditor(e, EditorConfig{})
	feed(ed, typeText("help")...)
	feed(ed, press(tea.KeyBackspace))
	if ed.Value() != "hel" {
		t.Fatalf("Value() = %q, want hel", ed.Value())
	}

	feed(ed, press(tea.KeyEnter))
	if ed.State() != StateSubmitted {
		t.Errorf("State() = %v, want submitted", ed.State())
	}
}

func TestEditorMaxAttempts(t *testing.T) {
	ed := NewEditor(minLengthEngine(t, 3), EditorConfig{MaxAttempts: 1})
	feed(ed, typeText("ab")...)
	feed(ed, press(tea.KeyEnter))
	if ed.State() != StateMaxAttempts {
		t.Errorf("State() = %v, want max attempts", ed.State())
	}
	feed(ed, typeText("cdef")...)
	if ed.Value() != "ab" {
		t.Error("keys after a terminal state must be ignored")
	}
}

func TestEditorDefaultSubstitution(t *testing.T) {
	ed := NewEditor(validation.NewEngine(), EditorConfig{Default: "guest"})
	feed(ed, press(tea.KeyEnter))
	if ed.State() != StateSubmitted || ed.Value() != "guest" {
		t.Errorf("State() = %v Value() = %q, want submitted guest", ed.State(), ed.Value())
	}
}

func TestEditorCancel(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		ed := NewEditor(validation.NewEngine(), EditorConfig{})
		feed(ed, press(k))
		if ed.State() != StateCancelled {
			t.Errorf("%v: State() = %v, want cancelled", k, ed.State())
		}
	}
}

func TestEditorMaskedFrame(t *testing.T) {
	ed := NewEditor(validation.NewEngine(), EditorConfig{Prompt: "Password:", Mask: '*'})
	feed(ed, typeText("sécret")...)

	f := ed.Frame()
	line := ansi.Strip(f.Lines[0])
	if line != "Password: ******" {
		t.Errorf("line = %q", line)
	}
	if strings.Contains(line, "sécret") {
		t.Error("masked frame leaked the value")
	}
	if f.CursorCol != len("Password: ")+6 {
		t.Errorf("CursorCol = %d", f.CursorCol)
	}
}

func TestEditorFrameShowsErrorsOnlyAfterInput(t *testing.T) {
	e, err := validation.Compile([]validation.Spec{
		{Kind: validation.KindRequired},
		{Kind: validation.KindMinLength, Length: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	ed := NewEditor(e, EditorConfig{Prompt: "Name:", HelpText: "your full name"})

	f := ed.Frame()
	if len(f.Lines) != 2 {
		t.Fatalf("initial frame has %d lines, want prompt and help", len(f.Lines))
	}

	feed(ed, typeText("a")...)
	f = ed.Frame()
	if len(f.Lines) != 3 {
		t.Fatalf("frame has %d lines, want 3", len(f.Lines))
	}
	if got := ansi.Strip(f.Lines[2]); got != "⚠ Minimum length is 3 characters (currently 1)" {
		t.Errorf("message line = %q", got)
	}

	feed(ed, press(tea.KeyBackspace))
	f = ed.Frame()
	if got := ansi.Strip(f.Lines[2]); got != "✗ This field is required" {
		t.Errorf("first message = %q", got)
	}
}

func TestEditorCursorUsesDisplayWidth(t *testing.T) {
	ed := NewEditor(validation.NewEngine(), EditorConfig{Prompt: ">"})
	feed(ed, typeText("日本")...)
	if got := ed.Frame().CursorCol; got != 2+4 {
		t.Errorf("CursorCol = %d, want 6", got)
	}
}

func TestMenuSingleSelection(t *testing.T) {
	m := NewMenu(MenuConfig{Prompt: "Color:", Choices: []string{"red", "green", "blue"}})

	feed(m, press(tea.KeyUp))
	if m.Highlighted() != 0 {
		t.Errorf("up at top moved to %d", m.Highlighted())
	}
	feed(m, press(tea.KeyDown), press(tea.KeyDown), press(tea.KeyDown))
	if m.Highlighted() != 2 {
		t.Errorf("Highlighted() = %d, want 2", m.Highlighted())
	}

	feed(m, press(tea.KeyUp), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if len(m.Selected()) != 0 {
		t.Error("space must not toggle in single mode")
	}

	feed(m, press(tea.KeyEnter))
	if m.State() != StateSubmitted || m.Value() != "green" {
		t.Errorf("State() = %v Value() = %q", m.State(), m.Value())
	}
}

func TestMenuMultipleEnforcesBounds(t *testing.T) {
	m := NewMenu(MenuConfig{Choices: []string{"a", "b", "c", "d"}, Min: 2, Max: 3})
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

	feed(m, space, press(tea.KeyEnter))
	if m.State() != StateEditing {
		t.Fatal("submit below minimum must not finish")
	}
	if !strings.Contains(m.Violation(), "At least 2") {
		t.Errorf("Violation() = %q", m.Violation())
	}
	if got := ansi.Strip(m.Frame().Lines[len(m.Frame().Lines)-1]); !strings.Contains(got, "At least 2") {
		t.Errorf("violation not rendered, last line %q", got)
	}

	feed(m, press(tea.KeyDown), space, press(tea.KeyEnter))
	if m.State() != StateSubmitted {
		t.Fatalf("State() = %v, want submitted", m.State())
	}
	if m.Value() != "a,b" {
		t.Errorf("Value() = %q, want a,b", m.Value())
	}
}

func TestMenuMultipleRejectsTooMany(t *testing.T) {
	m := NewMenu(MenuConfig{Choices: []string{"a", "b", "c", "d"}, Min: 2, Max: 3})
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

	feed(m, space, press(tea.KeyDown), space, press(tea.KeyDown), space, press(tea.KeyDown), space, press(tea.KeyEnter))
	if m.State() != StateEditing || !strings.Contains(m.Violation(), "At most 3") {
		t.Fatalf("State() = %v Violation() = %q", m.State(), m.Violation())
	}

	feed(m, space, press(tea.KeyEnter))
	if m.State() != StateSubmitted || m.Value() != "a,b,c" {
		t.Errorf("State() = %v Value() = %q", m.State(), m.Value())
	}
}

func TestMenuCancel(t *testing.T) {
	m := NewMenu(MenuConfig{Choices: []string{"a"}})
	feed(m, press(tea.KeyEscape))
	if m.State() != StateCancelled {
		t.Errorf("State() = %v", m.State())
	}
}

func TestMenuFrameScrollsToCursor(t *testing.T) {
	choices := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	m := NewMenu(MenuConfig{Prompt: "Pick", Choices: choices, Height: 8})
	for range 9 {
		m.Update(press(tea.KeyDown))
	}
	f := m.Frame()
	if got := ansi.Strip(f.Lines[f.CursorLine]); !strings.HasSuffix(got, "9") {
		t.Errorf("cursor line = %q, want the last option", got)
	}
	if len(f.Lines) > 8 {
		t.Errorf("frame has %d lines for height 8", len(f.Lines))
	}
}

func TestScreenTracksDrawnLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, 10)

	if err := s.Render(Frame{Lines: []string{"name: ab", "err one", "err two"}, CursorLine: 0, CursorCol: 8}); err != nil {
		t.Fatal(err)
	}
	if s.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", s.Rows())
	}
	first := buf.String()
	if !strings.Contains(first, ansi.CursorUp(2)) {
		t.Errorf("cursor should move back up to the input line, got %q", first)
	}

	buf.Reset()
	if err := s.Render(Frame{Lines: []string{"name: abc"}, CursorLine: 0, CursorCol: 9}); err != nil {
		t.Fatal(err)
	}
	second := buf.String()
	if !strings.HasPrefix(second, "\r"+ansi.EraseScreenBelow) {
		t.Errorf("redraw should clear from the top of the block, got %q", second)
	}
	if s.Rows() != 1 {
		t.Errorf("Rows() = %d, want 1", s.Rows())
	}
}

func TestScreenWrapsLongLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, 10)
	_ = s.Render(Frame{Lines: []string{strings.Repeat("x", 25), "tail"}, CursorLine: 0, CursorCol: 12})
	if s.Rows() != 4 {
		t.Errorf("Rows() = %d, want 4", s.Rows())
	}

	buf.Reset()
	_ = s.Finish("done")
	out := buf.String()
	if !strings.HasPrefix(out, ansi.CursorUp(1)+"\r") {
		t.Errorf("Finish should rewind from the cursor row, got %q", out)
	}
	if !strings.HasSuffix(out, "done\r\n") {
		t.Errorf("Finish output %q", out)
	}
}

// script replays keys, then blocks until the wait's context ends.
type script struct {
	keys []tea.KeyMsg
	err  error
}

func (s *script) ReadKey(ctx context.Context) (tea.KeyMsg, error) {
	if len(s.keys) == 0 {
		if s.err != nil {
			return tea.KeyMsg{}, s.err
		}
		<-ctx.Done()
		return tea.KeyMsg{}, ctx.Err()
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k, nil
}

func TestSessionSubmits(t *testing.T) {
	var buf bytes.Buffer
	keys := append(typeText("abc"), press(tea.KeyEnter))
	sess := Session{Source: &script{keys: keys}, Screen: NewScreen(&buf, 80)}

	got, err := sess.RunEditor(context.Background(), NewEditor(minLengthEngine(t, 3), EditorConfig{Prompt: "Code:"}))
	if err != nil {
		t.Fatalf("RunEditor failed: %v", err)
	}
	if got != "abc" {
		t.Errorf("value = %q", got)
	}
	if !strings.HasSuffix(ansi.Strip(buf.String()), "Code: abc\r\n") {
		t.Errorf("final line missing from output %q", buf.String())
	}
}

func TestSessionTimeout(t *testing.T) {
	var buf bytes.Buffer
	sess := Session{Source: &script{}, Screen: NewScreen(&buf, 80), Timeout: 10 * time.Millisecond}
	_, err := sess.RunEditor(context.Background(), NewEditor(validation.NewEngine(), EditorConfig{}))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestSessionOutcomes(t *testing.T) {
	tests := []struct {
		name string
		src  *script
		want error
	}{
		{"cancel key", &script{keys: []tea.KeyMsg{press(tea.KeyCtrlC)}}, ErrInterrupted},
		{"input closed", &script{err: io.EOF}, ErrInterrupted},
		{"max attempts", &script{keys: []tea.KeyMsg{press(tea.KeyEnter)}}, ErrMaxAttempts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sess := Session{Source: tt.src, Screen: NewScreen(&buf, 80)}
			ed := NewEditor(minLengthEngine(t, 1), EditorConfig{MaxAttempts: 1})
			if _, err := sess.RunEditor(context.Background(), ed); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSessionPropagatesReadErrors(t *testing.T) {
	boom := errors.New("boom")
	sess := Session{Source: &script{err: boom}, Screen: NewScreen(&bytes.Buffer{}, 80)}
	_, err := sess.RunMenu(context.Background(), NewMenu(MenuConfig{Choices: []string{"a"}}))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestSessionParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sess := Session{Source: &script{}, Screen: NewScreen(&bytes.Buffer{}, 80), Timeout: time.Second}
	_, err := sess.RunEditor(ctx, NewEditor(validation.NewEngine(), EditorConfig{}))
	if !errors.Is(err, ErrInterrupted) {
		t.Errorf("err = %v, want ErrInterrupted", err)
	}
}
