package validation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sprite-ai/askr/internal/model"
)

// Integer requires a base-10 signed 64-bit integer.
type Integer struct{ rule }

func NewInteger(opts ...Option) *Integer {
	return &Integer{newRule("integer", model.PriorityHigh, opts)}
}

func (v *Integer) Validate(input string) model.Result {
	if _, err := strconv.ParseInt(input, 10, 64); err != nil {
		return v.fail("Must be a valid integer")
	}
	return v.pass()
}

// PartialValidate accepts one leading sign followed by digits.
func (v *Integer) PartialValidate(input string, _ int) model.PartialResult {
	pos := 0
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9':
		case (r == '-' || r == '+') && pos == 0:
		default:
			return model.PartialBlockedAt(pos)
		}
		pos++
	}
	return model.PartialOK()
}

// Float requires a finite decimal number.
type Float struct{ rule }

func NewFloat(opts ...Option) *Float {
	return &Float{newRule("float", model.PriorityHigh, opts)}
}

func (v *Float) Validate(input string) model.Result {
	if _, ok := parseNumber(input); !ok {
		return v.fail("Must be a valid number")
	}
	return v.pass()
}

func (v *Float) PartialValidate(input string, _ int) model.PartialResult {
	return partialNumber(input)
}

// Range bounds a number on either or both sides (inclusive).
type Range struct {
	rule
	min, max *float64
}

// NewRange needs at least one bound; with both, min must be below max.
func NewRange(min, max *float64, opts ...Option) (*Range, error) {
	if min == nil && max == nil {
		return nil, fmt.Errorf("%w: range needs a minimum or a maximum", ErrInvalidRule)
	}
	if min != nil && max != nil && *min >= *max {
		return nil, fmt.Errorf("%w: range minimum %s must be less than maximum %s",
			ErrInvalidRule, formatNumber(*min), formatNumber(*max))
	}
	return &Range{rule: newRule("range", model.PriorityMedium, opts), min: min, max: max}, nil
}

func (v *Range) Validate(input string) model.Result {
	n, ok := parseNumber(input)
	if !ok {
		return v.fail("Must be a valid number")
	}

	var violated string
	switch {
	case v.min != nil && n < *v.min:
		violated = "min"
	case v.max != nil && n > *v.max:
		violated = "max"
	default:
		return v.pass()
	}

	var msg string
	switch {
	case v.min != nil && v.max != nil:
		msg = fmt.Sprintf("Must be between %s and %s", formatNumber(*v.min), formatNumber(*v.max))
	case v.min != nil:
		msg = "Must be at least " + formatNumber(*v.min)
	default:
		msg = "Must be at most " + formatNumber(*v.max)
	}
	res := v.fail(msg).With("value", n).With("violated_bound", violated)
	if v.min != nil {
		res = res.With("min", *v.min)
	}
	if v.max != nil {
		res = res.With("max", *v.max)
	}
	return res
}

func (v *Range) PartialValidate(input string, _ int) model.PartialResult {
	return partialNumber(input)
}

// Positive requires a number greater than zero.
type Positive struct{ rule }

func NewPositive(opts ...Option) *Positive {
	return &Positive{newRule("positive", model.PriorityMedium, opts)}
}

func (v *Positive) Validate(input string) model.Result {
	n, ok := parseNumber(input)
	if !ok || n <= 0 {
		return v.fail("Must be a positive number")
	}
	return v.pass()
}

func (v *Positive) PartialValidate(input string, _ int) model.PartialResult {
	if len(input) > 0 && input[0] == '-' {
		return model.PartialBlockedAt(0).WithSuggestion("Remove the minus sign")
	}
	return partialNumber(input)
}

// Negative requires a number less than zero.
type Negative struct{ rule }

func NewNegative(opts ...Option) *Negative {
	return &Negative{newRule("negative", model.PriorityMedium, opts)}
}

func (v *Negative) Validate(input string) model.Result {
	n, ok := parseNumber(input)
	if !ok || n >= 0 {
		return v.fail("Must be a negative number")
	}
	return v.pass()
}

// PartialValidate lets digits through without a sign; the minus may still be typed in front.
func (v *Negative) PartialValidate(input string, _ int) model.PartialResult {
	if len(input) > 0 && input[0] == '+' {
		return model.PartialBlockedAt(0).WithSuggestion("Negative numbers start with '-'")
	}
	return partialNumber(input)
}

// parseNumber accepts finite decimal numbers with an optional exponent.
func parseNumber(input string) (float64, bool) {
	if partialNumber(input).HasError() {
		return 0, false
	}
	n, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// partialNumber walks the decimal grammar: a sign at the start or right after
// the exponent marker, at most one dot (never inside the exponent), at most one
// exponent marker (never first).
func partialNumber(input string) model.PartialResult {
	var (
		pos     int
		prev    rune
		seenDot bool
		seenExp bool
	)
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' || r == '+':
			if pos != 0 && prev != 'e' && prev != 'E' {
				return model.PartialBlockedAt(pos)
			}
		case r == '.':
			if seenDot || seenExp {
				return model.PartialBlockedAt(pos)
			}
			seenDot = true
		case r == 'e' || r == 'E':
			if seenExp || pos == 0 {
				return model.PartialBlockedAt(pos)
			}
			seenExp = true
		default:
			return model.PartialBlockedAt(pos)
		}
		prev = r
		pos++
	}
	return model.PartialOK()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
