package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/askr/internal/validation"
)

// MenuConfig controls a choice menu session.
type MenuConfig struct {
	Prompt   string
	HelpText string
	Choices  []string
	// Min and Max bound the number of selections. Max > 1 enables toggling.
	Min, Max int
	// Separator joins selections into the returned value.
	Separator string
	Width     int
	Height    int
	Renderer  *lipgloss.Renderer
}

// MenuConfigFor copies the option list and bounds from a choice rule.
func MenuConfigFor(c *validation.Choice) MenuConfig {
	return MenuConfig{
		Choices:   c.Choices(),
		Min:       c.Min(),
		Max:       c.Max(),
		Separator: c.Separator(),
	}
}

// Menu is a list selection state machine.
type Menu struct {
	cfg  MenuConfig
	st   styles
	help help.Model

	cursor    int
	offset    int
	selected  []bool
	state     State
	violation string
}

func NewMenu(cfg MenuConfig) *Menu {
	if cfg.Renderer == nil {
		cfg.Renderer = newRenderer(io.Discard, false)
	}
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Separator == "" {
		cfg.Separator = validation.DefaultSelectionSeparator
	}

	st := newStyles(cfg.Renderer)
	h := help.New()
	h.Width = cfg.Width
	h.ShortSeparator = " • "
	h.Styles.ShortKey = st.helpKey
	h.Styles.ShortDesc = st.helpDesc
	h.Styles.ShortSeparator = st.helpDesc
	h.Styles.Ellipsis = st.helpDesc

	return &Menu{
		cfg:      cfg,
		st:       st,
		help:     h,
		selected: make([]bool, len(cfg.Choices)),
	}
}

func (m *Menu) State() State { return m.state }

// Multiple reports whether more than one option may be selected.
func (m *Menu) Multiple() bool { return m.cfg.Max > 1 }

// Highlighted returns the index under the cursor.
func (m *Menu) Highlighted() int { return m.cursor }

// Violation is the count message shown after a rejected confirm.
func (m *Menu) Violation() string { return m.violation }

// Expire ends the session because no key arrived in time.
func (m *Menu) Expire() {
	if m.state == StateEditing {
		m.state = StateTimedOut
	}
}

// Selected returns the chosen options in list order.
func (m *Menu) Selected() []string {
	var out []string
	for i, on := range m.selected {
		if on {
			out = append(out, m.cfg.Choices[i])
		}
	}
	return out
}

// Value joins the selections with the configured separator.
func (m *Menu) Value() string {
	return strings.Join(m.Selected(), m.cfg.Separator)
}

// Update applies one key press.
func (m *Menu) Update(msg tea.KeyMsg) {
	if m.state != StateEditing {
		return
	}

	switch {
	case key.Matches(msg, menuKeys.Cancel):
		m.state = StateCancelled

	case key.Matches(msg, menuKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, menuKeys.Down):
		if m.cursor < len(m.cfg.Choices)-1 {
			m.cursor++
		}

	case key.Matches(msg, menuKeys.Toggle):
		if m.Multiple() && len(m.selected) > 0 {
			m.selected[m.cursor] = !m.selected[m.cursor]
			m.violation = ""
		}

	case key.Matches(msg, menuKeys.Submit):
		m.submit()
	}
}

func (m *Menu) submit() {
	if len(m.cfg.Choices) == 0 {
		return
	}
	if !m.Multiple() {
		for i := range m.selected {
			m.selected[i] = i == m.cursor
		}
		m.state = StateSubmitted
		return
	}

	n := len(m.Selected())
	switch {
	case n < m.cfg.Min:
		m.violation = fmt.Sprintf("At least %d choice(s) required", m.cfg.Min)
	case n > m.cfg.Max:
		m.violation = fmt.Sprintf("At most %d choice(s) allowed", m.cfg.Max)
	default:
		m.violation = ""
		m.state = StateSubmitted
	}
}

// Frame renders the prompt, instructions, the visible options and any violation.
func (m *Menu) Frame() Frame {
	lines := []string{m.st.prompt.Render(m.cfg.Prompt), m.instructions()}
	if m.cfg.HelpText != "" {
		lines = append(lines, m.st.help.Render(m.cfg.HelpText))
	}

	first, last := m.window(len(lines))
	cursorLine := 0
	for i := first; i < last; i++ {
		if i == m.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderChoice(i))
	}

	if m.violation != "" {
		lines = append(lines, m.st.critical.Render("✗ "+m.violation))
	}

	return Frame{Lines: lines, CursorLine: cursorLine, CursorCol: 0}
}

// FinalLine is what stays on screen after a selection.
func (m *Menu) FinalLine() string {
	return m.st.prompt.Render(promptText(m.cfg.Prompt)) + m.st.input.Render(m.Value())
}

func (m *Menu) instructions() string {
	view := m.help.ShortHelpView(menuKeys.ShortHelp(m.Multiple()))
	if m.Multiple() {
		view += m.st.helpDesc.Render(fmt.Sprintf(" (select %d-%d)", m.cfg.Min, m.cfg.Max))
	}
	return view
}

func (m *Menu) renderChoice(i int) string {
	marker := "  "
	if i == m.cursor {
		marker = m.st.marker.Render("›") + " "
	}
	text := m.cfg.Choices[i]
	if m.Multiple() {
		box := "[ ] "
		if m.selected[i] {
			box = "[x] "
		}
		text = box + text
	}

	switch {
	case i == m.cursor:
		return marker + m.st.choiceCursor.Render(text)
	case m.selected[i]:
		return marker + m.st.choiceSelected.Render(text)
	default:
		return marker + m.st.choice.Render(text)
	}
}

// window returns the slice of options that fits the terminal height, scrolled
// so the cursor stays visible.
func (m *Menu) window(used int) (int, int) {
	n := len(m.cfg.Choices)
	room := n
	if m.cfg.Height > 0 {
		room = max(m.cfg.Height-used-2, 1)
	}
	if n <= room {
		return 0, n
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+room {
		m.offset = m.cursor - room + 1
	}
	return m.offset, m.offset + room
}
