package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds the raw flag values before resolution.
type options struct {
	output   string
	quiet    bool
	verbose  bool
	profile  string
	logFile  string
	logLevel string

	required       bool
	minLength      int
	maxLength      int
	patterns       []string
	patternMessage []string

	email, hostname, url, ipv4, ipv6 bool

	number, integer, float, positive, negative bool
	numRange                                   string

	date, time, datetime                   bool
	dateFormat, timeFormat, datetimeFormat string

	choices            string
	choiceSeparator    string
	selectionSeparator string
	caseSensitive      bool
	minChoices         int
	maxChoices         int

	fileExists, dirExists, pathExists, readable, writable, executable bool

	requiredPriority, lengthPriority, patternPriority, formatPriority string

	maxAttempts int
	timeout     string
	defaultVal  string
	mask        bool
	confirm     bool
	noColor     bool
	width       int
	helpText    string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "askr [prompt]",
		Short: "Prompt for input with real-time validation and choice menus",
		Long: `Prompt for a single value on the terminal, validating it as it is typed.
The accepted value is printed on stdout; the prompt itself is drawn on stderr,
so askr composes with command substitution.

Examples:
  askr "Email:" --validate-email
  askr "Port:" --integer --range 1-65535 --default 8080
  askr "Password:" --mask --min-length 12 --confirm
  askr "Switch to:" --choices "$(git branch --format='%(refname:short)')"
  askr "Tags:" --choices "a|b|c" --choice-separator "|" --min-choices 1 --max-choices 3
  echo "user@example.com" | askr --validate-email --output json

Exit codes:
  0   valid value
  1   validation failed
  2   invalid arguments
  3   maximum attempts exceeded
  124 timed out
  130 interrupted`,
		Args:          maxOnePrompt,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrompt(cmd, args, o)
		},
	}

	registerFlags(cmd.Flags(), o)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitInvalidArgs, Err: err}
	})
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func maxOnePrompt(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return &ExitError{Code: ExitInvalidArgs, Err: err}
	}
	return nil
}

func registerFlags(fs *pflag.FlagSet, o *options) {
	fs.SortFlags = false

	fs.StringVar(&o.output, "output", "default", "output format: default, raw, json, yaml")
	fs.BoolVar(&o.quiet, "quiet", false, "read the value from stdin without prompting")
	fs.BoolVar(&o.verbose, "verbose", false, "list every rule result on stderr")
	fs.StringVar(&o.profile, "profile", "", "load rules from a TOML or YAML profile")
	fs.StringVar(&o.logFile, "log-file", "", "write diagnostics to this file")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	fs.BoolVar(&o.required, "required", false, "input cannot be empty")
	fs.IntVar(&o.minLength, "min-length", 0, "minimum character length")
	fs.IntVar(&o.maxLength, "max-length", 0, "maximum character length")
	fs.StringArrayVar(&o.patterns, "pattern", nil, "regular expression the input must match (repeatable)")
	fs.StringArrayVar(&o.patternMessage, "pattern-message", nil, "message for the pattern at the same position")

	fs.BoolVar(&o.email, "validate-email", false, "email address")
	fs.BoolVar(&o.hostname, "validate-hostname", false, "hostname")
	fs.BoolVar(&o.url, "validate-url", false, "URL")
	fs.BoolVar(&o.ipv4, "validate-ipv4", false, "IPv4 address")
	fs.BoolVar(&o.ipv6, "validate-ipv6", false, "IPv6 address")

	fs.BoolVar(&o.number, "number", false, "any number")
	fs.BoolVar(&o.integer, "integer", false, "integer")
	fs.BoolVar(&o.float, "float", false, "floating-point number")
	fs.StringVar(&o.numRange, "range", "", "numeric range, e.g. 1-100 or -5-5")
	fs.BoolVar(&o.positive, "positive", false, "positive number")
	fs.BoolVar(&o.negative, "negative", false, "negative number")

	fs.BoolVar(&o.date, "date", false, "date")
	fs.StringVar(&o.dateFormat, "date-format", "", "date format (default %Y-%m-%d)")
	fs.BoolVar(&o.time, "time", false, "time of day")
	fs.StringVar(&o.timeFormat, "time-format", "", "time format (default %H:%M:%S)")
	fs.BoolVar(&o.datetime, "datetime", false, "date and time")
	fs.StringVar(&o.datetimeFormat, "datetime-format", "", "datetime format (default %Y-%m-%d %H:%M:%S)")

	fs.StringVar(&o.choices, "choices", "", "comma or newline separated list of valid choices")
	fs.StringVar(&o.choiceSeparator, "choice-separator", "", "separator for --choices (default: newline if present, else comma)")
	fs.StringVar(&o.selectionSeparator, "selection-separator", "", "separator joining multiple selections (default \",\")")
	fs.BoolVar(&o.caseSensitive, "choices-case-sensitive", false, "match choices case-sensitively")
	fs.IntVar(&o.minChoices, "min-choices", 0, "minimum number of selections")
	fs.IntVar(&o.maxChoices, "max-choices", 0, "maximum number of selections")

	fs.BoolVar(&o.fileExists, "file-exists", false, "file must exist")
	fs.BoolVar(&o.dirExists, "dir-exists", false, "directory must exist")
	fs.BoolVar(&o.pathExists, "path-exists", false, "file or directory must exist")
	fs.BoolVar(&o.readable, "readable", false, "path must be readable")
	fs.BoolVar(&o.writable, "writable", false, "path must be writable")
	fs.BoolVar(&o.executable, "executable", false, "file must be executable")

	fs.StringVar(&o.requiredPriority, "required-priority", "", "priority of the required rule")
	fs.StringVar(&o.lengthPriority, "length-priority", "", "priority of length rules")
	fs.StringVar(&o.patternPriority, "pattern-priority", "", "priority of pattern rules")
	fs.StringVar(&o.formatPriority, "format-priority", "", "priority of format, number, date, choice and path rules")

	fs.IntVar(&o.maxAttempts, "max-attempts", 0, "failed submissions allowed (0 = unlimited)")
	fs.StringVar(&o.timeout, "timeout", "", "idle timeout per key, in seconds or as a duration (default 5m, 0 disables)")
	fs.StringVar(&o.defaultVal, "default", "", "value used when Enter is pressed on empty input")
	fs.BoolVar(&o.mask, "mask", false, "hide typed characters")
	fs.BoolVar(&o.confirm, "confirm", false, "ask for the value a second time")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	fs.IntVar(&o.width, "width", 0, "maximum display width")
	fs.StringVar(&o.helpText, "help-text", "", "help line shown below the input")
}

// Execute runs the root command. The returned error carries the exit code;
// see ExitCode.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
