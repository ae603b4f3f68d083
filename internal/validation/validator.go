// Package validation implements askr's input rules and the engine that runs them.
package validation

import (
	"errors"

	"github.com/sprite-ai/askr/internal/model"
)

// ErrInvalidRule is wrapped by every rule construction failure.
var ErrInvalidRule = errors.New("invalid validation rule")

// Validator checks complete and partial input.
type Validator interface {
	// Validate judges a complete value.
	Validate(input string) model.Result
	// PartialValidate judges the text typed so far. cursor is a rune offset.
	PartialValidate(input string, cursor int) model.PartialResult
	Priority() model.Priority
	Name() string
}

// Option adjusts a rule at construction time.
type Option func(*rule)

// WithPriority overrides the rule's default priority.
func WithPriority(p model.Priority) Option {
	return func(r *rule) { r.priority = p }
}

// WithMessage replaces the rule's failure message. Empty keeps the default.
func WithMessage(msg string) Option {
	return func(r *rule) {
		if msg != "" {
			r.message = msg
		}
	}
}

// rule carries what every validator shares.
type rule struct {
	name     string
	priority model.Priority
	message  string
}

func newRule(name string, p model.Priority, opts []Option) rule {
	r := rule{name: name, priority: p}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func (r rule) Name() string              { return r.name }
func (r rule) Priority() model.Priority { return r.priority }

func (r rule) pass() model.Result {
	return model.Pass(r.name, r.priority)
}

// fail uses the custom message when one was configured.
func (r rule) fail(def string) model.Result {
	msg := def
	if r.message != "" {
		msg = r.message
	}
	return model.Fail(r.name, r.priority, msg)
}
