package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sprite-ai/askr/internal/model"
)

// DefaultSelectionSeparator splits typed multi-choice input.
const DefaultSelectionSeparator = ","

// Choice restricts input to a fixed option list, optionally allowing several.
type Choice struct {
	rule
	choices       []string
	caseSensitive bool
	min, max      int
	sep           string
}

// ChoiceOption adjusts choice-specific settings.
type ChoiceOption func(*Choice)

// CaseSensitive makes matching exact.
func CaseSensitive(on bool) ChoiceOption {
	return func(c *Choice) { c.caseSensitive = on }
}

// Between sets how many selections are required and allowed.
func Between(min, max int) ChoiceOption {
	return func(c *Choice) { c.min, c.max = min, max }
}

// Separator sets the string that splits typed selections.
func Separator(sep string) ChoiceOption {
	return func(c *Choice) {
		if sep != "" {
			c.sep = sep
		}
	}
}

// NewChoice builds a single-selection rule by default.
func NewChoice(choices []string, copts []ChoiceOption, opts ...Option) (*Choice, error) {
	c := &Choice{
		rule:    newRule("choice", model.PriorityHigh, opts),
		choices: choices,
		min:     1,
		max:     1,
		sep:     DefaultSelectionSeparator,
	}
	for _, o := range copts {
		o(c)
	}
	switch {
	case len(choices) == 0:
		return nil, fmt.Errorf("%w: choice list is empty", ErrInvalidRule)
	case c.min < 0 || c.max < 1:
		return nil, fmt.Errorf("%w: choice bounds %d..%d out of range", ErrInvalidRule, c.min, c.max)
	case c.min > c.max:
		return nil, fmt.Errorf("%w: min choices %d exceeds max choices %d", ErrInvalidRule, c.min, c.max)
	case c.min > len(choices):
		return nil, fmt.Errorf("%w: min choices %d exceeds the %d available", ErrInvalidRule, c.min, len(choices))
	}
	return c, nil
}

func (v *Choice) Choices() []string { return v.choices }
func (v *Choice) Min() int          { return v.min }
func (v *Choice) Max() int          { return v.max }
func (v *Choice) Separator() string { return v.sep }
func (v *Choice) Multiple() bool    { return v.max > 1 }

func (v *Choice) Validate(input string) model.Result {
	parsed := v.parse(input)

	if len(parsed) < v.min {
		return v.fail(fmt.Sprintf("At least %d choice(s) required", v.min))
	}
	if len(parsed) > v.max {
		return v.fail(fmt.Sprintf("At most %d choice(s) allowed", v.max))
	}

	seen := make(map[string]bool)
	var dups []string
	for _, p := range parsed {
		if canon, ok := v.canonical(p); ok {
			if seen[canon] {
				dups = append(dups, canon)
			}
			seen[canon] = true
		}
	}
	if len(dups) > 0 {
		return v.fail("Duplicate choices not allowed: " + strings.Join(dups, ", "))
	}

	var invalid []string
	for _, p := range parsed {
		if _, ok := v.canonical(p); !ok {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) > 0 {
		return v.fail(fmt.Sprintf("Invalid choice(s): %s. Valid options: %s",
			strings.Join(invalid, ", "), strings.Join(v.choices, ", "))).
			With("invalid", invalid)
	}
	return v.pass()
}

// PartialValidate prefix-matches the selection currently being typed, which is
// the text after the last separator.
func (v *Choice) PartialValidate(input string, _ int) model.PartialResult {
	if input == "" {
		return model.PartialOK()
	}
	if v.max == 1 && v.hasPrefixMatch(strings.TrimLeft(input, " \t")) {
		return model.PartialOK()
	}

	offset := 0
	current := input
	if i := strings.LastIndex(input, v.sep); i >= 0 {
		offset = utf8.RuneCountInString(input[:i+len(v.sep)])
		current = input[i+len(v.sep):]
	}
	trimmed := strings.TrimLeft(current, " \t")
	offset += utf8.RuneCountInString(current) - utf8.RuneCountInString(trimmed)
	if trimmed == "" || v.hasPrefixMatch(trimmed) {
		return model.PartialOK()
	}

	pos := 0
	for i, r := range trimmed {
		if !v.hasPrefixMatch(trimmed[:i+utf8.RuneLen(r)]) {
			break
		}
		pos++
	}
	return model.PartialBlockedAt(offset + pos).
		WithSuggestion("Valid options: " + strings.Join(v.choices, ", "))
}

// parse splits input on the separator, dropping empty entries. In single mode
// an input that names one option verbatim is kept whole even if it contains
// the separator.
func (v *Choice) parse(input string) []string {
	whole := strings.TrimSpace(input)
	if v.max == 1 {
		if _, ok := v.canonical(whole); ok {
			return []string{whole}
		}
	}
	var out []string
	for _, part := range strings.Split(input, v.sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// canonical returns the option as configured, matching case as configured.
func (v *Choice) canonical(s string) (string, bool) {
	for _, c := range v.choices {
		if c == s || !v.caseSensitive && strings.EqualFold(c, s) {
			return c, true
		}
	}
	return "", false
}

func (v *Choice) hasPrefixMatch(prefix string) bool {
	if !v.caseSensitive {
		prefix = strings.ToLower(prefix)
	}
	for _, c := range v.choices {
		if !v.caseSensitive {
			c = strings.ToLower(c)
		}
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
