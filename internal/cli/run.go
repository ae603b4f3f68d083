package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sprite-ai/askr/internal/config"
	"github.com/sprite-ai/askr/internal/logging"
	"github.com/sprite-ai/askr/internal/model"
	"github.com/sprite-ai/askr/internal/terminal"
	"github.com/sprite-ai/askr/internal/tui"
	"github.com/sprite-ai/askr/internal/validation"
)

const fallbackPrompt = "Enter input:"

func runPrompt(cmd *cobra.Command, args []string, o *options) error {
	cfg, err := resolve(cmd, args, o)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return usageError("%w", err)
	}
	defer func() { _ = log.Sync() }()
	log.Debug("resolved configuration",
		zap.String("prompt", cfg.Prompt),
		zap.Int("rules", len(cfg.Rules)),
		zap.String("output", string(cfg.Output)),
		zap.Duration("timeout", cfg.Interaction.Timeout),
		zap.Int("max_attempts", cfg.Interaction.MaxAttempts))

	engine, err := validation.Compile(cfg.Rules, validation.WithLogger(log))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c := collector{
		cfg:    cfg,
		engine: engine,
		log:    log,
		in:     cmd.InOrStdin(),
		ui:     cmd.ErrOrStderr(),
	}
	value, attempts, err := c.collect(ctx)
	if err != nil {
		return err
	}

	summary := engine.Validate(value)
	summary.Metadata.Attempts = attempts
	log.Info("validated",
		zap.Bool("valid", summary.Valid),
		zap.Int("rules_checked", summary.Metadata.RulesChecked),
		zap.Int("attempts", attempts))

	if cfg.Verbose {
		writeVerbose(cmd.ErrOrStderr(), summary)
	}
	out := cmd.OutOrStdout()
	if err := writeSummary(out, summary, cfg.Output, colorEnabled(out, cfg.Display.NoColor)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if !summary.Valid {
		return fmt.Errorf("%w: %s", ErrValidationFailed, summary.Error)
	}
	return nil
}

// collector obtains the raw value from whichever input mode applies.
type collector struct {
	cfg    config.Config
	engine *validation.Engine
	log    *zap.Logger
	in     io.Reader
	ui     io.Writer
}

// collect returns the value and the number of interactive submissions.
func (c collector) collect(ctx context.Context) (string, int, error) {
	inFile, _ := c.in.(*os.File)
	uiFile, _ := c.ui.(*os.File)

	if c.cfg.Quiet || !terminal.IsTerminal(inFile) {
		c.log.Debug("reading stdin", zap.Bool("quiet", c.cfg.Quiet))
		v, err := readAll(ctx, c.in)
		return v, 0, err
	}

	caps := terminal.Probe(inFile, uiFile, terminal.ProbeOptions{
		NoColor: c.cfg.Display.NoColor,
		Width:   c.cfg.Display.Width,
		Getenv:  lookupEnv,
	})
	c.log.Debug("terminal capabilities",
		zap.Bool("cursor_control", caps.CursorControl),
		zap.Bool("color", caps.Color),
		zap.Int("width", caps.Width),
		zap.Int("height", caps.Height))

	if !caps.CursorControl {
		v, err := c.readLine(ctx)
		return v, 0, err
	}
	return c.interactive(ctx, inFile, uiFile, caps)
}

func (c collector) interactive(ctx context.Context, in, ui *os.File, caps terminal.Capabilities) (string, int, error) {
	t, err := tui.Open(in, ui, caps, c.log)
	if err != nil {
		return "", 0, fmt.Errorf("opening terminal: %w", err)
	}
	defer func() {
		if err := t.Close(); err != nil {
			c.log.Warn("restoring terminal", zap.Error(err))
		}
	}()

	ia := c.cfg.Interaction
	if choice := c.choice(); choice != nil {
		v, err := t.Choose(ctx, choice, tui.ChooseConfig{
			Prompt:    c.cfg.Prompt,
			HelpText:  c.cfg.Display.HelpText,
			Separator: ia.SelectionSeparator,
			Timeout:   ia.Timeout,
		})
		return v, 0, err
	}

	var mask rune
	if ia.Mask {
		mask = '*'
	}
	ans, err := t.Ask(ctx, c.engine, tui.AskConfig{
		Prompt:      c.cfg.Prompt,
		HelpText:    c.cfg.Display.HelpText,
		Default:     ia.Default,
		Mask:        mask,
		Confirm:     ia.Confirm,
		MaxAttempts: ia.MaxAttempts,
		Timeout:     ia.Timeout,
	})
	if err != nil {
		return "", 0, err
	}
	return ans.Value, ans.Summary.Metadata.Attempts, nil
}

// choice returns the compiled choice rule when there is one.
func (c collector) choice() *validation.Choice {
	for _, v := range c.engine.Validators() {
		if ch, ok := v.(*validation.Choice); ok {
			return ch
		}
	}
	return nil
}

// readLine is the fallback for terminals without cursor control: print the
// prompt (and numbered options) and read one line.
func (c collector) readLine(ctx context.Context) (string, error) {
	prompt := c.cfg.Prompt
	if prompt == "" {
		prompt = fallbackPrompt
	}

	choice := c.choice()
	if choice != nil {
		fmt.Fprintln(c.ui, prompt)
		for i, opt := range choice.Choices() {
			fmt.Fprintf(c.ui, "  %d) %s\n", i+1, opt)
		}
		prompt = ">"
	}
	if c.cfg.Display.HelpText != "" {
		fmt.Fprintln(c.ui, c.cfg.Display.HelpText)
	}
	fmt.Fprintf(c.ui, "%s ", prompt)

	line, err := readWithContext(ctx, func() (string, error) {
		s, err := bufio.NewReader(c.in).ReadString('\n')
		if errors.Is(err, io.EOF) && s != "" {
			err = nil
		}
		return s, err
	})
	if err != nil {
		return "", err
	}

	v := strings.TrimSpace(line)
	if v == "" {
		v = c.cfg.Interaction.Default
	}
	if choice != nil {
		v = numberedChoice(v, choice.Choices())
	}
	return v, nil
}

// numberedChoice maps "2" to the second option when the input is not itself
// an option.
func numberedChoice(v string, choices []string) string {
	for _, c := range choices {
		if c == v {
			return v
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > len(choices) {
		return v
	}
	return choices[n-1]
}

func readAll(ctx context.Context, r io.Reader) (string, error) {
	return readWithContext(ctx, func() (string, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	})
}

// readWithContext runs a blocking read and gives up when ctx ends. The read
// goroutine is abandoned; the process exits shortly after.
func readWithContext(ctx context.Context, read func() (string, error)) (string, error) {
	type result struct {
		s   string
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := read()
		done <- result{s, err}
	}()

	select {
	case r := <-done:
		if errors.Is(r.err, io.EOF) {
			return "", tui.ErrInterrupted
		}
		return r.s, r.err
	case <-ctx.Done():
		return "", tui.ErrInterrupted
	}
}

func writeVerbose(w io.Writer, s model.Summary) {
	fmt.Fprintf(w, "Validated %d rule(s), %d passed, in %dms\n",
		s.Metadata.RulesChecked, s.Metadata.RulesPassed, s.Metadata.ValidationTimeMs)
	for _, r := range s.Results {
		if r.Passed {
			fmt.Fprintf(w, "  ✓ %s\n", r.Rule)
			continue
		}
		fmt.Fprintf(w, "  %s %s [%s]: %s\n", r.Priority.Icon(), r.Rule, r.Priority, r.Message)
	}
}
