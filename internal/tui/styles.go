package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/sprite-ai/askr/internal/model"
)

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorPurple = lipgloss.Color("#bd93f9")
	colorDim    = lipgloss.Color("#6272a4")
	colorFg     = lipgloss.Color("#f8f8f2")
	colorOrange = lipgloss.Color("#ffb86c")

	colorHighlight = lipgloss.Color("#44475a")
)

// styles are bound to one renderer so color can be turned off per stream.
type styles struct {
	prompt  lipgloss.Style
	input   lipgloss.Style
	invalid lipgloss.Style
	help    lipgloss.Style
	hint    lipgloss.Style

	// Messages by priority
	critical lipgloss.Style
	high     lipgloss.Style
	medium   lipgloss.Style
	low      lipgloss.Style

	// Choice menu
	choice         lipgloss.Style
	choiceCursor   lipgloss.Style
	choiceSelected lipgloss.Style
	marker         lipgloss.Style
	helpKey        lipgloss.Style
	helpDesc       lipgloss.Style
}

// newRenderer returns a renderer for w, forced to plain text when color is off.
func newRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		prompt: r.NewStyle().
			Foreground(colorPurple).
			Bold(true),

		input: r.NewStyle().
			Foreground(colorFg),

		invalid: r.NewStyle().
			Foreground(colorRed).
			Underline(true),

		help: r.NewStyle().
			Foreground(colorDim),

		hint: r.NewStyle().
			Foreground(colorBlue).
			Italic(true),

		critical: r.NewStyle().
			Foreground(colorRed).
			Bold(true),

		high: r.NewStyle().
			Foreground(colorRed),

		medium: r.NewStyle().
			Foreground(colorYellow),

		low: r.NewStyle().
			Foreground(colorBlue),

		choice: r.NewStyle().
			Foreground(colorFg),

		choiceCursor: r.NewStyle().
			Foreground(colorFg).
			Background(colorHighlight).
			Bold(true),

		choiceSelected: r.NewStyle().
			Foreground(colorGreen),

		marker: r.NewStyle().
			Foreground(colorOrange),

		helpKey: r.NewStyle().
			Foreground(colorYellow),

		helpDesc: r.NewStyle().
			Foreground(colorDim),
	}
}

func (s styles) forPriority(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityCritical:
		return s.critical
	case model.PriorityHigh:
		return s.high
	case model.PriorityMedium:
		return s.medium
	default:
		return s.low
	}
}
