package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Session outcomes other than a submitted value.
var (
	ErrInterrupted = errors.New("interrupted by user")
	ErrTimeout     = errors.New("timed out waiting for input")
	ErrMaxAttempts = errors.New("maximum attempts exceeded")
)

// KeySource delivers key presses. ReadKey must return ctx.Err() when ctx ends
// before a key arrives.
type KeySource interface {
	ReadKey(ctx context.Context) (tea.KeyMsg, error)
}

// machine is the common shape of Editor and Menu.
type machine interface {
	Update(tea.KeyMsg)
	Frame() Frame
	State() State
	Expire()
	FinalLine() string
}

// Session drives an Editor or Menu: paint, wait for a key, apply it, repeat.
type Session struct {
	Source KeySource
	Screen *Screen
	// Timeout bounds each wait for a key; 0 waits forever.
	Timeout time.Duration
	Logger  *zap.Logger
}

// RunEditor returns the accepted value, or an outcome error.
func (s Session) RunEditor(ctx context.Context, e *Editor) (string, error) {
	if err := s.run(ctx, e); err != nil {
		return "", err
	}
	return e.Value(), nil
}

// RunMenu returns the joined selections, or an outcome error.
func (s Session) RunMenu(ctx context.Context, m *Menu) (string, error) {
	if err := s.run(ctx, m); err != nil {
		return "", err
	}
	return m.Value(), nil
}

func (s Session) run(ctx context.Context, m machine) error {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	keys := 0

	for m.State() == StateEditing {
		if err := s.Screen.Render(m.Frame()); err != nil {
			return err
		}

		msg, err := s.wait(ctx)
		switch {
		case err == nil:
			keys++
			m.Update(msg)
		case ctx.Err() != nil, errors.Is(err, io.EOF):
			_ = s.Screen.Finish(m.FinalLine())
			log.Info("session interrupted", zap.Error(err))
			return ErrInterrupted
		case errors.Is(err, context.DeadlineExceeded):
			m.Expire()
		default:
			return fmt.Errorf("reading key: %w", err)
		}
	}

	log.Info("session finished",
		zap.Stringer("state", m.State()),
		zap.Int("keys", keys),
		zap.Duration("elapsed", time.Since(start)))

	switch m.State() {
	case StateSubmitted:
		return s.Screen.Finish(m.FinalLine())
	case StateMaxAttempts:
		if err := s.Screen.Finish(m.Frame().Lines...); err != nil {
			return err
		}
		return ErrMaxAttempts
	case StateTimedOut:
		if err := s.Screen.Finish(m.FinalLine()); err != nil {
			return err
		}
		return ErrTimeout
	default:
		if err := s.Screen.Finish(m.FinalLine()); err != nil {
			return err
		}
		return ErrInterrupted
	}
}

func (s Session) wait(ctx context.Context) (tea.KeyMsg, error) {
	if s.Timeout <= 0 {
		return s.Source.ReadKey(ctx)
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return s.Source.ReadKey(waitCtx)
}
