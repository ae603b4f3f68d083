// Package model defines the core data types shared across askr.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Priority orders validation outcomes. Lower values are more important.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// Icon returns the glyph shown next to messages of this priority.
func (p Priority) Icon() string {
	switch p {
	case PriorityCritical, PriorityHigh:
		return "✗"
	case PriorityMedium:
		return "⚠"
	default:
		return "ℹ"
	}
}

// ParsePriority accepts the lowercase names produced by String.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return PriorityCritical, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("unknown priority %q (want critical, high, medium or low)", s)
}

func (p Priority) MarshalText() ([]byte, error) {
	if p < PriorityCritical || p > PriorityLow {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Result is the outcome of one rule applied to one input.
type Result struct {
	Rule     string   `json:"rule_name" yaml:"rule_name"`
	Passed   bool     `json:"passed" yaml:"passed"`
	Priority Priority `json:"priority" yaml:"priority"`
	Message  string   `json:"message,omitempty" yaml:"message,omitempty"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Pass builds a passing result.
func Pass(rule string, p Priority) Result {
	return Result{Rule: rule, Passed: true, Priority: p}
}

// Fail builds a failing result with a user-facing message.
func Fail(rule string, p Priority, msg string) Result {
	return Result{Rule: rule, Priority: p, Message: msg}
}

// With attaches a metadata entry and returns the result for chaining.
func (r Result) With(key string, value any) Result {
	r.Metadata = r.Metadata.Set(key, value)
	return r
}

// NoErrorPos marks a partial result with nothing wrong so far.
const NoErrorPos = -1

// PartialResult is the judgement on a prefix of the input while the user types.
// Positions are rune offsets into the input.
type PartialResult struct {
	ErrorPos    int
	CanContinue bool
	Suggestion  string
}

// PartialOK is the result for a prefix that has not gone wrong.
func PartialOK() PartialResult {
	return PartialResult{ErrorPos: NoErrorPos, CanContinue: true}
}

// PartialErrorAt flags a recoverable problem at pos.
func PartialErrorAt(pos int) PartialResult {
	return PartialResult{ErrorPos: pos, CanContinue: true}
}

// PartialBlockedAt flags a problem at pos that typing more cannot fix.
func PartialBlockedAt(pos int) PartialResult {
	return PartialResult{ErrorPos: pos}
}

// WithSuggestion returns a copy carrying a hint for the user.
func (p PartialResult) WithSuggestion(s string) PartialResult {
	p.Suggestion = s
	return p
}

// HasError reports whether an error position is set.
func (p PartialResult) HasError() bool {
	return p.ErrorPos != NoErrorPos
}

// SummaryMetadata describes a full validation run.
type SummaryMetadata struct {
	ValidationTimeMs int64 `json:"validation_time_ms" yaml:"validation_time_ms"`
	RulesChecked     int   `json:"rules_checked" yaml:"rules_checked"`
	RulesPassed      int   `json:"rules_passed" yaml:"rules_passed"`
	InputLength      int   `json:"input_length" yaml:"input_length"`
	Attempts         int   `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Summary is the outcome of validating one input against every rule.
// Results are sorted by (priority, rule name).
type Summary struct {
	Value    string
	Valid    bool
	Error    string
	Metadata SummaryMetadata
	Results  []Result
}

// SortResults orders results by priority, then rule name.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Priority != results[j].Priority {
			return results[i].Priority < results[j].Priority
		}
		return results[i].Rule < results[j].Rule
	})
}

// NewSummary sorts results and derives validity and the headline error.
func NewSummary(value string, results []Result) Summary {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	SortResults(sorted)

	s := Summary{
		Value:   value,
		Valid:   true,
		Results: sorted,
		Metadata: SummaryMetadata{
			RulesChecked: len(sorted),
			InputLength:  len([]rune(value)),
		},
	}
	for _, r := range sorted {
		if r.Passed {
			s.Metadata.RulesPassed++
			continue
		}
		if s.Valid {
			s.Valid = false
			s.Error = r.Message
		}
	}
	return s
}

// Failures returns the failing results in display order.
func (s Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
