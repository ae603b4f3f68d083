package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sprite-ai/askr/internal/validation"
)

// ErrInvalid marks configuration the invocation cannot start with.
var ErrInvalid = errors.New("invalid configuration")

// DefaultTimeout bounds each wait for a key unless overridden.
const DefaultTimeout = 5 * time.Minute

// OutputFormat selects how the final summary is printed.
type OutputFormat string

const (
	OutputDefault OutputFormat = "default"
	OutputRaw     OutputFormat = "raw"
	OutputJSON    OutputFormat = "json"
	OutputYAML    OutputFormat = "yaml"
)

// ParseOutputFormat accepts the format names case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputDefault, OutputRaw, OutputJSON, OutputYAML:
		return f, nil
	case "":
		return OutputDefault, nil
	}
	return "", fmt.Errorf("%w: unknown output format %q (want default, raw, json or yaml)", ErrInvalid, s)
}

// Interaction controls the editing session.
type Interaction struct {
	// Timeout bounds each wait for a key; 0 disables it.
	Timeout     time.Duration
	MaxAttempts int
	Default     string
	Mask        bool
	Confirm     bool
	// SelectionSeparator joins menu selections.
	SelectionSeparator string
}

// Display controls rendering.
type Display struct {
	NoColor  bool
	Width    int
	HelpText string
}

// Config is the fully resolved invocation. It is built once and not changed
// afterwards.
type Config struct {
	Prompt      string
	Rules       []validation.Spec
	Interaction Interaction
	Display     Display
	Output      OutputFormat
	Quiet       bool
	Verbose     bool
	LogFile     string
	LogLevel    string
}

// Validate reports settings that are out of range.
func (c Config) Validate() error {
	switch {
	case c.Interaction.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalid)
	case c.Interaction.MaxAttempts < 0:
		return fmt.Errorf("%w: max attempts must not be negative", ErrInvalid)
	case c.Display.Width < 0:
		return fmt.Errorf("%w: width must not be negative", ErrInvalid)
	}
	if _, err := ParseOutputFormat(string(c.Output)); err != nil {
		return err
	}
	return nil
}

// SplitChoices splits a choice list on sep. An empty sep means newline when
// the list contains one, comma otherwise. Items are trimmed and blanks dropped.
func SplitChoices(raw, sep string) []string {
	if sep == "" {
		sep = ","
		if strings.Contains(raw, "\n") {
			sep = "\n"
		}
	}
	var out []string
	for _, item := range strings.Split(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
