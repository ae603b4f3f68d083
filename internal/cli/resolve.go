package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sprite-ai/askr/internal/config"
	"github.com/sprite-ai/askr/internal/model"
	"github.com/sprite-ai/askr/internal/validation"
)

// envKeys are the flags that may also come from ASKR_* variables.
var envKeys = []string{"timeout", "max-attempts", "no-color", "width", "output", "log-file", "log-level"}

// lookupEnv is replaced in tests.
var lookupEnv = os.Getenv

// resolve merges flags, environment and an optional profile into a Config.
// Flags set on the command line win over the environment.
func resolve(cmd *cobra.Command, args []string, o *options) (config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ASKR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range envKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return config.Config{}, fmt.Errorf("binding --%s: %w", key, err)
		}
		if err := v.BindEnv(key); err != nil {
			return config.Config{}, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	output, err := config.ParseOutputFormat(v.GetString("output"))
	if err != nil {
		return config.Config{}, err
	}
	timeout, err := parseTimeout(v.GetString("timeout"))
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Config{
		Output:   output,
		Quiet:    o.quiet,
		Verbose:  o.verbose,
		LogFile:  v.GetString("log-file"),
		LogLevel: v.GetString("log-level"),
		Interaction: config.Interaction{
			Timeout:            timeout,
			MaxAttempts:        v.GetInt("max-attempts"),
			Default:            o.defaultVal,
			Mask:               o.mask,
			Confirm:            o.confirm,
			SelectionSeparator: o.selectionSeparator,
		},
		Display: config.Display{
			NoColor:  v.GetBool("no-color") || lookupEnv("NO_COLOR") != "",
			Width:    v.GetInt("width"),
			HelpText: o.helpText,
		},
	}
	if len(args) == 1 {
		cfg.Prompt = args[0]
	}

	if o.profile != "" {
		p, err := config.LoadProfile(o.profile)
		if err != nil {
			return config.Config{}, err
		}
		if cfg.Prompt == "" {
			cfg.Prompt = p.Prompt
		}
		if cfg.Display.HelpText == "" {
			cfg.Display.HelpText = p.HelpText
		}
		cfg.Rules = append(cfg.Rules, p.Rules...)
	}

	rules, err := buildRules(cmd, o)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Rules = append(cfg.Rules, rules...)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// parseTimeout accepts whole seconds or a Go duration. Empty means the default.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return config.DefaultTimeout, nil
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid timeout %q", config.ErrInvalid, s)
	}
	return d, nil
}

// buildRules turns rule flags into specs, in the order they are registered.
func buildRules(cmd *cobra.Command, o *options) ([]validation.Spec, error) {
	fs := cmd.Flags()

	required, err := priorityFlag("required-priority", o.requiredPriority)
	if err != nil {
		return nil, err
	}
	length, err := priorityFlag("length-priority", o.lengthPriority)
	if err != nil {
		return nil, err
	}
	pattern, err := priorityFlag("pattern-priority", o.patternPriority)
	if err != nil {
		return nil, err
	}
	format, err := priorityFlag("format-priority", o.formatPriority)
	if err != nil {
		return nil, err
	}

	var rules []validation.Spec
	add := func(kind validation.Kind, p *model.Priority) *validation.Spec {
		rules = append(rules, validation.Spec{Kind: kind, Priority: p})
		return &rules[len(rules)-1]
	}

	if o.required {
		add(validation.KindRequired, required)
	}
	if fs.Changed("min-length") {
		add(validation.KindMinLength, length).Length = o.minLength
	}
	if fs.Changed("max-length") {
		add(validation.KindMaxLength, length).Length = o.maxLength
	}
	for i, p := range o.patterns {
		s := add(validation.KindPattern, pattern)
		s.Pattern = p
		if i < len(o.patternMessage) {
			s.Message = o.patternMessage[i]
		}
	}

	formats := []struct {
		on   bool
		kind validation.Kind
	}{
		{o.email, validation.KindEmail},
		{o.hostname, validation.KindHostname},
		{o.url, validation.KindURL},
		{o.ipv4, validation.KindIPv4},
		{o.ipv6, validation.KindIPv6},
		{o.integer, validation.KindInteger},
		{o.float || o.number, validation.KindFloat},
	}
	for _, f := range formats {
		if f.on {
			add(f.kind, format)
		}
	}

	if o.numRange != "" {
		min, max, err := parseRange(o.numRange)
		if err != nil {
			return nil, err
		}
		s := add(validation.KindRange, format)
		s.Min, s.Max = &min, &max
	}
	if o.positive {
		add(validation.KindPositive, format)
	}
	if o.negative {
		add(validation.KindNegative, format)
	}

	if o.date {
		add(validation.KindDate, format).Format = o.dateFormat
	}
	if o.time {
		add(validation.KindTime, format).Format = o.timeFormat
	}
	if o.datetime {
		add(validation.KindDateTime, format).Format = o.datetimeFormat
	}

	if fs.Changed("choices") {
		choices := config.SplitChoices(o.choices, o.choiceSeparator)
		if len(choices) == 0 {
			return nil, usageError("--choices needs at least one option")
		}
		s := add(validation.KindChoice, format)
		s.Choices = choices
		s.CaseSensitive = o.caseSensitive
		s.Separator = o.selectionSeparator
		if fs.Changed("min-choices") {
			s.MinChoices = &o.minChoices
		}
		if fs.Changed("max-choices") {
			s.MaxChoices = &o.maxChoices
		}
	} else if fs.Changed("min-choices") || fs.Changed("max-choices") {
		return nil, usageError("--min-choices and --max-choices need --choices")
	}

	paths := []struct {
		on   bool
		kind validation.Kind
	}{
		{o.fileExists, validation.KindFileExists},
		{o.dirExists, validation.KindDirExists},
		{o.pathExists, validation.KindPathExists},
		{o.readable, validation.KindReadable},
		{o.writable, validation.KindWritable},
		{o.executable, validation.KindExecutable},
	}
	for _, p := range paths {
		if p.on {
			add(p.kind, format)
		}
	}

	return rules, nil
}

func priorityFlag(name, value string) (*model.Priority, error) {
	if value == "" {
		return nil, nil
	}
	p, err := model.ParsePriority(value)
	if err != nil {
		return nil, usageError("--%s: %w", name, err)
	}
	return &p, nil
}

// parseRange reads "min-max". Either bound may be negative, so every dash
// after the first character is tried as the separator.
func parseRange(s string) (float64, float64, error) {
	s = strings.TrimSpace(s)
	for i := 1; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}
		min, err1 := strconv.ParseFloat(s[:i], 64)
		max, err2 := strconv.ParseFloat(s[i+1:], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if min >= max {
			return 0, 0, usageError("range minimum (%g) must be less than maximum (%g)", min, max)
		}
		return min, max, nil
	}
	return 0, 0, usageError("invalid range %q, expected min-max", s)
}
