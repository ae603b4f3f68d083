package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sprite-ai/askr/internal/model"
)

// Required rejects input that is empty after trimming whitespace.
type Required struct{ rule }

func NewRequired(opts ...Option) *Required {
	return &Required{newRule("required", model.PriorityCritical, opts)}
}

func (v *Required) Validate(input string) model.Result {
	if strings.TrimSpace(input) == "" {
		return v.fail("This field is required")
	}
	return v.pass()
}

func (v *Required) PartialValidate(input string, _ int) model.PartialResult {
	if strings.TrimSpace(input) == "" {
		return model.PartialErrorAt(0)
	}
	return model.PartialOK()
}

// MinLength requires at least N characters.
type MinLength struct {
	rule
	min int
}

func NewMinLength(n int, opts ...Option) (*MinLength, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: minimum length %d is negative", ErrInvalidRule, n)
	}
	return &MinLength{rule: newRule("min_length", model.PriorityMedium, opts), min: n}, nil
}

func (v *MinLength) Validate(input string) model.Result {
	n := utf8.RuneCountInString(input)
	if n < v.min {
		return v.fail(fmt.Sprintf("Minimum length is %d characters (currently %d)", v.min, n)).
			With("min_length", v.min).
			With("actual_length", n)
	}
	return v.pass()
}

// PartialValidate never marks a position: a short prefix can still be extended.
func (v *MinLength) PartialValidate(input string, _ int) model.PartialResult {
	n := utf8.RuneCountInString(input)
	if n < v.min {
		return model.PartialOK().WithSuggestion(fmt.Sprintf("Need %d more characters", v.min-n))
	}
	return model.PartialOK()
}

// MaxLength allows at most N characters.
type MaxLength struct {
	rule
	max int
}

func NewMaxLength(n int, opts ...Option) (*MaxLength, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: maximum length %d is negative", ErrInvalidRule, n)
	}
	return &MaxLength{rule: newRule("max_length", model.PriorityMedium, opts), max: n}, nil
}

func (v *MaxLength) Validate(input string) model.Result {
	n := utf8.RuneCountInString(input)
	if n > v.max {
		return v.fail(fmt.Sprintf("Maximum length is %d characters (currently %d)", v.max, n)).
			With("max_length", v.max).
			With("actual_length", n)
	}
	return v.pass()
}

func (v *MaxLength) PartialValidate(input string, _ int) model.PartialResult {
	n := utf8.RuneCountInString(input)
	if n > v.max {
		return model.PartialBlockedAt(v.max).
			WithSuggestion(fmt.Sprintf("Too long by %d characters", n-v.max))
	}
	return model.PartialOK()
}

// Pattern requires the input to match a regular expression somewhere.
type Pattern struct {
	rule
	re *regexp.Regexp
}

func NewPattern(expr string, opts ...Option) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidRule, expr, err)
	}
	return &Pattern{rule: newRule("pattern", model.PriorityHigh, opts), re: re}, nil
}

func (v *Pattern) Validate(input string) model.Result {
	if !v.re.MatchString(input) {
		return v.fail("Must match pattern: " + v.re.String()).
			With("pattern", v.re.String())
	}
	return v.pass()
}

// PartialValidate reports the first rune whose prefix stops matching. When every
// prefix matches but the whole input does not, position 0 is flagged.
func (v *Pattern) PartialValidate(input string, _ int) model.PartialResult {
	if input == "" || v.re.MatchString(input) {
		return model.PartialOK()
	}
	pos := 0
	for i, r := range input {
		if !v.re.MatchString(input[:i+utf8.RuneLen(r)]) {
			return model.PartialErrorAt(pos)
		}
		pos++
	}
	return model.PartialErrorAt(0)
}

// Equals requires an exact match with an expected value.
type Equals struct {
	rule
	want string
}

func NewEquals(want string, opts ...Option) *Equals {
	return &Equals{rule: newRule("equals", model.PriorityCritical, opts), want: want}
}

func (v *Equals) Validate(input string) model.Result {
	if input != v.want {
		return v.fail("Values do not match")
	}
	return v.pass()
}

// PartialValidate stays silent so a masked confirmation leaks nothing.
func (v *Equals) PartialValidate(string, int) model.PartialResult {
	return model.PartialOK()
}
