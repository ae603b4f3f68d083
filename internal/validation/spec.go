package validation

import (
	"fmt"
	"strings"

	"github.com/sprite-ai/askr/internal/model"
)

// Kind names a rule family.
type Kind string

const (
	KindRequired   Kind = "required"
	KindMinLength  Kind = "min_length"
	KindMaxLength  Kind = "max_length"
	KindPattern    Kind = "pattern"
	KindEquals     Kind = "equals"
	KindEmail      Kind = "email"
	KindHostname   Kind = "hostname"
	KindURL        Kind = "url"
	KindIPv4       Kind = "ipv4"
	KindIPv6       Kind = "ipv6"
	KindInteger    Kind = "integer"
	KindFloat      Kind = "float"
	KindRange      Kind = "range"
	KindPositive   Kind = "positive"
	KindNegative   Kind = "negative"
	KindDate       Kind = "date"
	KindTime       Kind = "time"
	KindDateTime   Kind = "datetime"
	KindChoice     Kind = "choice"
	KindFileExists Kind = "file_exists"
	KindDirExists  Kind = "dir_exists"
	KindPathExists Kind = "path_exists"
	KindReadable   Kind = "readable"
	KindWritable   Kind = "writable"
	KindExecutable Kind = "executable"
)

var kinds = map[Kind]bool{
	KindRequired: true, KindMinLength: true, KindMaxLength: true, KindPattern: true,
	KindEquals: true, KindEmail: true, KindHostname: true, KindURL: true, KindIPv4: true,
	KindIPv6: true, KindInteger: true, KindFloat: true, KindRange: true, KindPositive: true,
	KindNegative: true, KindDate: true, KindTime: true, KindDateTime: true, KindChoice: true,
	KindFileExists: true, KindDirExists: true, KindPathExists: true, KindReadable: true,
	KindWritable: true, KindExecutable: true,
}

func (k *Kind) UnmarshalText(b []byte) error {
	v := Kind(strings.ToLower(strings.TrimSpace(string(b))))
	if !kinds[v] {
		return fmt.Errorf("%w: unknown rule kind %q", ErrInvalidRule, string(b))
	}
	*k = v
	return nil
}

// Spec is the declarative form of a rule, as produced by flags or a profile file.
// Only the fields relevant to Kind are read.
type Spec struct {
	Kind     Kind            `yaml:"kind" toml:"kind"`
	Priority *model.Priority `yaml:"priority,omitempty" toml:"priority,omitempty"`
	Message  string          `yaml:"message,omitempty" toml:"message,omitempty"`

	Length  int      `yaml:"length,omitempty" toml:"length,omitempty"`
	Pattern string   `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Value   string   `yaml:"value,omitempty" toml:"value,omitempty"`
	Min     *float64 `yaml:"min,omitempty" toml:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" toml:"max,omitempty"`
	Format  string   `yaml:"format,omitempty" toml:"format,omitempty"`

	Choices       []string `yaml:"choices,omitempty" toml:"choices,omitempty"`
	CaseSensitive bool     `yaml:"case_sensitive,omitempty" toml:"case_sensitive,omitempty"`
	MinChoices    *int     `yaml:"min_choices,omitempty" toml:"min_choices,omitempty"`
	MaxChoices    *int     `yaml:"max_choices,omitempty" toml:"max_choices,omitempty"`
	Separator     string   `yaml:"separator,omitempty" toml:"separator,omitempty"`
}

// Build turns a spec into a validator.
func Build(s Spec) (Validator, error) {
	var opts []Option
	if s.Priority != nil {
		opts = append(opts, WithPriority(*s.Priority))
	}
	opts = append(opts, WithMessage(s.Message))

	switch s.Kind {
	case KindRequired:
		return NewRequired(opts...), nil
	case KindMinLength:
		return NewMinLength(s.Length, opts...)
	case KindMaxLength:
		return NewMaxLength(s.Length, opts...)
	case KindPattern:
		return NewPattern(s.Pattern, opts...)
	case KindEquals:
		return NewEquals(s.Value, opts...), nil
	case KindEmail:
		return NewEmail(opts...), nil
	case KindHostname:
		return NewHostname(opts...), nil
	case KindURL:
		return NewURL(opts...), nil
	case KindIPv4:
		return NewIPv4(opts...), nil
	case KindIPv6:
		return NewIPv6(opts...), nil
	case KindInteger:
		return NewInteger(opts...), nil
	case KindFloat:
		return NewFloat(opts...), nil
	case KindRange:
		return NewRange(s.Min, s.Max, opts...)
	case KindPositive:
		return NewPositive(opts...), nil
	case KindNegative:
		return NewNegative(opts...), nil
	case KindDate:
		return NewDate(s.Format, opts...)
	case KindTime:
		return NewTime(s.Format, opts...)
	case KindDateTime:
		return NewDateTime(s.Format, opts...)
	case KindChoice:
		min, max := choiceBounds(s)
		return NewChoice(s.Choices, []ChoiceOption{
			CaseSensitive(s.CaseSensitive),
			Between(min, max),
			Separator(s.Separator),
		}, opts...)
	case KindFileExists:
		return NewFileExists(opts...), nil
	case KindDirExists:
		return NewDirExists(opts...), nil
	case KindPathExists:
		return NewPathExists(opts...), nil
	case KindReadable:
		return NewReadable(opts...), nil
	case KindWritable:
		return NewWritable(opts...), nil
	case KindExecutable:
		return NewExecutable(opts...), nil
	}
	return nil, fmt.Errorf("%w: unknown rule kind %q", ErrInvalidRule, s.Kind)
}

// choiceBounds applies the selection defaults: one of one when nothing is set,
// and up to every option when only a minimum is given.
func choiceBounds(s Spec) (int, int) {
	min, max := 1, 1
	if s.MinChoices != nil {
		min = *s.MinChoices
		max = len(s.Choices)
	}
	if s.MaxChoices != nil {
		max = *s.MaxChoices
	}
	return min, max
}
