package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/itchyny/timefmt-go"

	"github.com/sprite-ai/askr/internal/model"
)

// Default strftime layouts.
const (
	DefaultDateFormat     = "%Y-%m-%d"
	DefaultTimeFormat     = "%H:%M:%S"
	DefaultDateTimeFormat = "%Y-%m-%d %H:%M:%S"
)

// Temporal validates dates, times and datetimes against a strftime layout.
type Temporal struct {
	rule
	kind     string
	format   string
	template []slot
}

// slot is one expected character of a fixed-width layout: a digit or a literal.
type slot struct {
	digit   bool
	literal rune
}

func NewDate(format string, opts ...Option) (*Temporal, error) {
	return newTemporal("date", format, DefaultDateFormat, opts)
}

func NewTime(format string, opts ...Option) (*Temporal, error) {
	return newTemporal("time", format, DefaultTimeFormat, opts)
}

func NewDateTime(format string, opts ...Option) (*Temporal, error) {
	return newTemporal("datetime", format, DefaultDateTimeFormat, opts)
}

func newTemporal(kind, format, def string, opts []Option) (*Temporal, error) {
	if format == "" {
		format = def
	}
	if !strings.Contains(format, "%") {
		return nil, fmt.Errorf("%w: %s format %q has no directives", ErrInvalidRule, kind, format)
	}
	return &Temporal{
		rule:     newRule(kind, model.PriorityHigh, opts),
		kind:     kind,
		format:   format,
		template: fixedTemplate(format),
	}, nil
}

// Format returns the layout in use.
func (v *Temporal) Format() string { return v.format }

func (v *Temporal) Validate(input string) model.Result {
	if !v.parses(input) {
		return v.fail(fmt.Sprintf("Must be a valid %s in format: %s", v.kind, v.format)).
			With("format", v.format)
	}
	return v.pass()
}

// parses rejects values the parser would silently normalize, such as Feb 30,
// by formatting the parsed time back when the layout is purely numeric.
func (v *Temporal) parses(input string) bool {
	t, err := timefmt.Parse(input, v.format)
	if err != nil {
		return false
	}
	if v.template != nil {
		return timefmt.Format(t, v.format) == input
	}
	return true
}

// PartialValidate checks each typed character against the layout when the
// layout has a fixed width; other layouts are only judged on submit.
func (v *Temporal) PartialValidate(input string, _ int) model.PartialResult {
	if v.template == nil {
		return model.PartialOK()
	}
	pos := 0
	for _, r := range input {
		if pos >= len(v.template) {
			return model.PartialBlockedAt(pos).
				WithSuggestion("Expected format: " + v.format)
		}
		s := v.template[pos]
		if s.digit && (r < '0' || r > '9') || !s.digit && r != s.literal {
			return model.PartialBlockedAt(pos).
				WithSuggestion("Expected format: " + v.format)
		}
		pos++
	}
	return model.PartialOK()
}

var fixedWidth = map[byte]int{
	'Y': 4, 'm': 2, 'd': 2, 'H': 2, 'M': 2, 'S': 2, 'y': 2, 'j': 3,
}

// fixedTemplate expands a layout made only of fixed-width numeric directives
// and literals. It returns nil for anything else.
func fixedTemplate(format string) []slot {
	var out []slot
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c >= utf8.RuneSelf {
			return nil
		}
		if c != '%' {
			out = append(out, slot{literal: rune(c)})
			continue
		}
		i++
		if i >= len(format) {
			return nil
		}
		if format[i] == '%' {
			out = append(out, slot{literal: '%'})
			continue
		}
		n, ok := fixedWidth[format[i]]
		if !ok {
			return nil
		}
		for range n {
			out = append(out, slot{digit: true})
		}
	}
	return out
}
