package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sprite-ai/askr/internal/model"
)

// formats is safe for concurrent use and caches parsed tags.
var formats = validator.New()

// Format is a well-known textual format recognized by a validator tag.
type Format struct {
	rule
	tag     string
	label   string
	partial func(string) model.PartialResult
}

func NewEmail(opts ...Option) *Format {
	return newFormat("email", "email", "email address", partialEmail, opts)
}

func NewHostname(opts ...Option) *Format {
	return newFormat("hostname", "hostname_rfc1123", "hostname", partialHostname, opts)
}

func NewURL(opts ...Option) *Format {
	return newFormat("url", "url", "URL", partialURL, opts)
}

func NewIPv4(opts ...Option) *Format {
	return newFormat("ipv4", "ipv4", "IPv4 address", partialIPv4, opts)
}

func NewIPv6(opts ...Option) *Format {
	return newFormat("ipv6", "ipv6", "IPv6 address", partialIPv6, opts)
}

func newFormat(name, tag, label string, partial func(string) model.PartialResult, opts []Option) *Format {
	return &Format{rule: newRule(name, model.PriorityHigh, opts), tag: tag, label: label, partial: partial}
}

func (v *Format) Validate(input string) model.Result {
	if err := formats.Var(input, v.tag); err != nil {
		return v.fail(fmt.Sprintf("Must be a valid %s", v.label))
	}
	return v.pass()
}

func (v *Format) PartialValidate(input string, _ int) model.PartialResult {
	return v.partial(input)
}

func partialEmail(input string) model.PartialResult {
	seenAt := false
	pos := 0
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			return model.PartialBlockedAt(pos).WithSuggestion("Email addresses cannot contain spaces")
		case r == '@' && seenAt:
			return model.PartialBlockedAt(pos).WithSuggestion("Only one @ is allowed")
		case r == '@':
			if pos == 0 {
				return model.PartialBlockedAt(0)
			}
			seenAt = true
		}
		pos++
	}
	return model.PartialOK()
}

func partialHostname(input string) model.PartialResult {
	pos := 0
	var prev rune
	for _, r := range input {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		case r == '-':
			if pos == 0 || prev == '.' {
				return model.PartialBlockedAt(pos)
			}
		case r == '.':
			if pos == 0 || prev == '.' || prev == '-' {
				return model.PartialBlockedAt(pos)
			}
		default:
			return model.PartialBlockedAt(pos).
				WithSuggestion("Hostnames use letters, digits, '-' and '.'")
		}
		prev = r
		pos++
	}
	if pos > 253 {
		return model.PartialBlockedAt(253)
	}
	return model.PartialOK()
}

func partialURL(input string) model.PartialResult {
	schemeDone := strings.Contains(input, ":")
	pos := 0
	for _, r := range input {
		if unicode.IsSpace(r) {
			return model.PartialBlockedAt(pos).WithSuggestion("URLs cannot contain spaces")
		}
		if !schemeDone {
			ok := r < unicode.MaxASCII && unicode.IsLetter(r) ||
				pos > 0 && (r < unicode.MaxASCII && unicode.IsDigit(r) || r == '+' || r == '-' || r == '.')
			if !ok {
				return model.PartialBlockedAt(pos).WithSuggestion("URLs start with a scheme such as https://")
			}
		}
		pos++
	}
	return model.PartialOK()
}

// partialIPv4 allows digits and up to three dots, each group at most 255.
func partialIPv4(input string) model.PartialResult {
	dots, group, value := 0, 0, 0
	pos := 0
	for _, r := range input {
		switch {
		case r == '.':
			if group == 0 || dots == 3 {
				return model.PartialBlockedAt(pos)
			}
			dots++
			group, value = 0, 0
		case r >= '0' && r <= '9':
			group++
			value = value*10 + int(r-'0')
			if group > 3 || value > 255 {
				return model.PartialBlockedAt(pos).WithSuggestion("Each part must be 0-255")
			}
		default:
			return model.PartialBlockedAt(pos)
		}
		pos++
	}
	return model.PartialOK()
}

// partialIPv6 allows hex groups of up to four digits, a single "::" and a
// trailing dotted IPv4 tail.
func partialIPv6(input string) model.PartialResult {
	group, colons, doubles := 0, 0, 0
	var prev rune
	pos := 0
	for _, r := range input {
		switch {
		case r == ':':
			if prev == ':' {
				doubles++
				if doubles > 1 {
					return model.PartialBlockedAt(pos).WithSuggestion("Only one :: is allowed")
				}
			}
			colons++
			if colons > 8 || colons == 8 && doubles == 0 {
				return model.PartialBlockedAt(pos)
			}
			group = 0
		case r == '.' || unicode.Is(unicode.ASCII_Hex_Digit, r):
			group++
			if group > 4 && !strings.Contains(input, ".") {
				return model.PartialBlockedAt(pos)
			}
		default:
			return model.PartialBlockedAt(pos)
		}
		prev = r
		pos++
	}
	return model.PartialOK()
}
