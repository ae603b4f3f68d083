package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sprite-ai/askr/internal/config"
	"github.com/sprite-ai/askr/internal/tui"
	"github.com/sprite-ai/askr/internal/validation"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitValidationFailed = 1
	ExitInvalidArgs      = 2
	ExitMaxAttempts      = 3
	ExitTimeout          = 124
	ExitInterrupted      = 130
)

// ErrValidationFailed is returned when the collected value does not pass.
var ErrValidationFailed = errors.New("validation failed")

// ExitError pins an error to a specific exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, a ...any) error {
	return &ExitError{Code: ExitInvalidArgs, Err: fmt.Errorf(format, a...)}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	var ee *ExitError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ee):
		return ee.Code
	case errors.Is(err, tui.ErrInterrupted), errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, tui.ErrTimeout):
		return ExitTimeout
	case errors.Is(err, tui.ErrMaxAttempts):
		return ExitMaxAttempts
	case errors.Is(err, config.ErrInvalid), errors.Is(err, validation.ErrInvalidRule):
		return ExitInvalidArgs
	}
	return ExitValidationFailed
}
