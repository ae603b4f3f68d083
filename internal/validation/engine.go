package validation

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sprite-ai/askr/internal/model"
)

// Display caps for the less important priorities.
const (
	maxMediumShown = 3
	maxLowShown    = 2
)

// Engine runs an ordered set of validators and memoizes results per input.
type Engine struct {
	mu         sync.RWMutex
	validators []Validator
	cache      map[string][]model.Result
	noCache    bool
	log        *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithoutCache disables result memoization.
func WithoutCache() EngineOption {
	return func(e *Engine) { e.noCache = true }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		cache: make(map[string][]model.Result),
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Compile builds every spec and registers it in order.
func Compile(specs []Spec, opts ...EngineOption) (*Engine, error) {
	e := NewEngine(opts...)
	for _, s := range specs {
		v, err := Build(s)
		if err != nil {
			return nil, err
		}
		e.Add(v)
	}
	return e, nil
}

// Add registers a validator and invalidates cached results.
func (e *Engine) Add(v Validator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.validators = append(e.validators, v)
	e.cache = make(map[string][]model.Result)
}

// Len returns the number of registered validators.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.validators)
}

// Validators returns the registered validators in registration order.
func (e *Engine) Validators() []Validator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Validator, len(e.validators))
	copy(out, e.validators)
	return out
}

// ClearCache drops memoized results.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string][]model.Result)
}

// Validate runs every validator on input and summarizes the outcome.
func (e *Engine) Validate(input string) model.Summary {
	start := time.Now()
	results := e.results(input)
	s := model.NewSummary(input, results)
	s.Metadata.ValidationTimeMs = time.Since(start).Milliseconds()
	return s
}

func (e *Engine) results(input string) []model.Result {
	e.mu.RLock()
	cached, ok := e.cache[input]
	validators := e.validators
	noCache := e.noCache
	e.mu.RUnlock()

	if ok && !noCache {
		e.log.Debug("validation cache hit", zap.Int("input_length", len(input)))
		return cached
	}

	results := make([]model.Result, 0, len(validators))
	for _, v := range validators {
		results = append(results, v.Validate(input))
	}
	model.SortResults(results)

	if !noCache {
		e.mu.Lock()
		e.cache[input] = results
		e.mu.Unlock()
	}
	e.log.Debug("validated input",
		zap.Int("validators", len(validators)),
		zap.Bool("cached", !noCache))
	return results
}

// PartialValidate merges every validator's judgement on a prefix: the earliest
// error position wins, any blocking verdict blocks, and suggestions are joined.
func (e *Engine) PartialValidate(input string, cursor int) model.PartialResult {
	out := model.PartialOK()
	var suggestions []string
	for _, v := range e.Validators() {
		p := v.PartialValidate(input, cursor)
		if p.HasError() && (!out.HasError() || p.ErrorPos < out.ErrorPos) {
			out.ErrorPos = p.ErrorPos
		}
		if !p.CanContinue {
			out.CanContinue = false
		}
		if p.Suggestion != "" {
			suggestions = append(suggestions, p.Suggestion)
		}
	}
	out.Suggestion = strings.Join(suggestions, "; ")
	return out
}

// DisplayErrors selects the failures worth showing: every critical and high
// one, a few medium ones, and low ones only when nothing serious failed.
// max <= 0 means no overall limit.
func (e *Engine) DisplayErrors(input string, max int) []model.Result {
	failures := e.Validate(input).Failures()

	severe := false
	for _, r := range failures {
		if r.Priority <= model.PriorityHigh {
			severe = true
			break
		}
	}

	var out []model.Result
	medium, low := 0, 0
	for _, r := range failures {
		if max > 0 && len(out) >= max {
			break
		}
		switch r.Priority {
		case model.PriorityCritical, model.PriorityHigh:
			out = append(out, r)
		case model.PriorityMedium:
			if medium < maxMediumShown {
				out = append(out, r)
				medium++
			}
		default:
			if !severe && low < maxLowShown {
				out = append(out, r)
				low++
			}
		}
	}
	return out
}
