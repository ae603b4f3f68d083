package tui

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sprite-ai/askr/internal/model"
	"github.com/sprite-ai/askr/internal/terminal"
	"github.com/sprite-ai/askr/internal/validation"
)

// Terminal bundles raw mode, the key reader and the screen for one run.
// Close must be called on every path; it restores the terminal.
type Terminal struct {
	guard    *terminal.RawGuard
	keys     *terminal.KeyReader
	screen   *Screen
	renderer *lipgloss.Renderer
	caps     terminal.Capabilities
	log      *zap.Logger
}

// Open puts in into raw mode and paints on out.
func Open(in, out *os.File, caps terminal.Capabilities, log *zap.Logger) (*Terminal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	guard, err := terminal.EnableRaw(in)
	if err != nil {
		return nil, err
	}
	keys, err := terminal.NewKeyReader(in)
	if err != nil {
		_ = guard.Release()
		return nil, err
	}
	return &Terminal{
		guard:    guard,
		keys:     keys,
		screen:   NewScreen(out, caps.Width),
		renderer: newRenderer(out, caps.Color),
		caps:     caps,
		log:      log,
	}, nil
}

// Close stops the key reader and leaves raw mode.
func (t *Terminal) Close() error {
	return errors.Join(t.keys.Close(), t.guard.Release())
}

func (t *Terminal) session(timeout time.Duration) Session {
	return Session{Source: t.keys, Screen: t.screen, Timeout: timeout, Logger: t.log}
}

// AskConfig describes a free-text prompt.
type AskConfig struct {
	Prompt      string
	HelpText    string
	Default     string
	Mask        rune
	Confirm     bool
	MaxAttempts int
	Timeout     time.Duration
}

// Answer is the accepted value and its validation summary.
type Answer struct {
	Value   string
	Summary model.Summary
}

// Ask runs the line editor until a valid value is submitted. With Confirm set
// the value must be typed a second time; mismatches use up attempts.
func (t *Terminal) Ask(ctx context.Context, engine *validation.Engine, cfg AskConfig) (Answer, error) {
	ed := NewEditor(engine, t.editorConfig(cfg, cfg.Prompt, cfg.MaxAttempts))
	value, err := t.session(cfg.Timeout).RunEditor(ctx, ed)
	if err != nil {
		return Answer{}, err
	}
	ans := Answer{Value: value, Summary: ed.Summary()}
	if !cfg.Confirm {
		return ans, nil
	}

	remaining := 0
	if cfg.MaxAttempts > 0 {
		remaining = max(cfg.MaxAttempts-(ed.Attempts()-1), 1)
	}
	check := validation.NewEngine()
	check.Add(validation.NewEquals(value))
	confirm := NewEditor(check, t.editorConfig(cfg, "Confirm "+cfg.Prompt, remaining))
	if _, err := t.session(cfg.Timeout).RunEditor(ctx, confirm); err != nil {
		return Answer{}, err
	}
	ans.Summary.Metadata.Attempts = ed.Attempts() + confirm.Attempts()
	return ans, nil
}

func (t *Terminal) editorConfig(cfg AskConfig, prompt string, attempts int) EditorConfig {
	return EditorConfig{
		Prompt:      prompt,
		HelpText:    cfg.HelpText,
		Default:     cfg.Default,
		Mask:        cfg.Mask,
		MaxAttempts: attempts,
		Width:       t.caps.Width,
		Height:      t.caps.Height,
		Renderer:    t.renderer,
	}
}

// ChooseConfig describes a menu prompt.
type ChooseConfig struct {
	Prompt   string
	HelpText string
	// Separator joins selections in the returned value.
	Separator string
	Timeout   time.Duration
}

// Choose shows the options of a choice rule as a menu.
func (t *Terminal) Choose(ctx context.Context, choice *validation.Choice, cfg ChooseConfig) (string, error) {
	mc := MenuConfigFor(choice)
	mc.Prompt = cfg.Prompt
	mc.HelpText = cfg.HelpText
	if cfg.Separator != "" {
		mc.Separator = cfg.Separator
	}
	mc.Width = t.caps.Width
	mc.Height = t.caps.Height
	mc.Renderer = t.renderer
	return t.session(cfg.Timeout).RunMenu(ctx, NewMenu(mc))
}
