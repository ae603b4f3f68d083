package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sprite-ai/askr/internal/tui"
	"github.com/sprite-ai/askr/internal/validation"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	if !names["version"] {
		t.Error("root command missing subcommand \"version\"")
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "askr dev (commit none, built unknown)\n" {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if !strings.Contains(out, "askr") {
		t.Error("bash completion script does not mention askr")
	}
}

func TestQuietValidValue(t *testing.T) {
	out, _, err := execute(t, "  user@example.com\n", "--quiet", "--validate-email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "user@example.com\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestQuietInvalidValue(t *testing.T) {
	out, _, err := execute(t, "abc", "--min-length", "5")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("err = %v, want ErrValidationFailed", err)
	}
	if ExitCode(err) != ExitValidationFailed {
		t.Errorf("exit code = %d", ExitCode(err))
	}
	if out != "" {
		t.Errorf("default output must be empty for an invalid value, got %q", out)
	}
}

func TestRawOutputPrintsInvalidValue(t *testing.T) {
	out, _, err := execute(t, "abc", "--min-length", "5", "--output", "raw")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if out != "abc\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	out, _, err := execute(t, "ab", "--output", "json", "--min-length", "3", "--required")
	if err == nil {
		t.Fatal("expected validation failure")
	}

	var doc struct {
		Value    string  `json:"value"`
		Valid    bool    `json:"valid"`
		Error    *string `json:"error"`
		Metadata struct {
			RulesChecked int `json:"rules_checked"`
			RulesPassed  int `json:"rules_passed"`
			InputLength  int `json:"input_length"`
		} `json:"metadata"`
		Results []struct {
			Rule     string         `json:"rule_name"`
			Passed   bool           `json:"passed"`
			Priority string         `json:"priority"`
			Metadata map[string]any `json:"metadata"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}

	if doc.Valid || doc.Value != "ab" {
		t.Errorf("value/valid = %q/%v", doc.Value, doc.Valid)
	}
	if doc.Error == nil || *doc.Error != "Minimum length is 3 characters (currently 2)" {
		t.Errorf("error = %v", doc.Error)
	}
	if doc.Metadata.RulesChecked != 2 || doc.Metadata.RulesPassed != 1 || doc.Metadata.InputLength != 2 {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if len(doc.Results) != 2 || doc.Results[0].Rule != "required" || doc.Results[0].Priority != "critical" {
		t.Fatalf("results = %+v", doc.Results)
	}
	if doc.Results[1].Metadata["min_length"] != float64(3) {
		t.Errorf("min_length metadata = %v", doc.Results[1].Metadata)
	}
}

func TestJSONErrorIsNullWhenValid(t *testing.T) {
	out, _, err := execute(t, "abc", "--output", "json", "--min-length", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	if v, ok := doc["error"]; !ok || v != nil {
		t.Errorf("error field = %v (present %v), want null", v, ok)
	}
}

func TestYAMLOutput(t *testing.T) {
	out, _, err := execute(t, "42", "--output", "yaml", "--integer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"value: \"42\"", "valid: true", "error: null", "rule_name: integer", "priority: high"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestEnvironmentOutputFormat(t *testing.T) {
	t.Setenv("ASKR_OUTPUT", "json")
	out, _, _ := execute(t, "x")
	if !strings.HasPrefix(out, "{") {
		t.Errorf("ASKR_OUTPUT ignored, stdout %q", out)
	}

	out, _, _ = execute(t, "x", "--output", "raw")
	if out != "x\n" {
		t.Errorf("flag should beat environment, stdout %q", out)
	}
}

func TestVerboseListsRules(t *testing.T) {
	_, errOut, _ := execute(t, "hello", "--verbose", "--required", "--max-length", "3")
	if !strings.Contains(errOut, "✓ required") {
		t.Errorf("stderr missing passing rule:\n%s", errOut)
	}
	if !strings.Contains(errOut, "max_length [medium]: Maximum length is 3") {
		t.Errorf("stderr missing failing rule:\n%s", errOut)
	}
}

func TestChoicesInQuietMode(t *testing.T) {
	if _, _, err := execute(t, "Green", "--choices", "red,green,blue"); err != nil {
		t.Errorf("case-insensitive choice rejected: %v", err)
	}
	_, _, err := execute(t, "red,green", "--choices", "red,green,blue")
	if !errors.Is(err, ErrValidationFailed) || !strings.Contains(err.Error(), "At most 1") {
		t.Errorf("err = %v", err)
	}
	if _, _, err := execute(t, "red | blue", "--choices", "red;green;blue", "--choice-separator", ";",
		"--selection-separator", " | ", "--max-choices", "2"); err != nil {
		t.Errorf("custom separators: %v", err)
	}
}

func TestProfileRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port.toml")
	body := "[[rules]]\nkind = \"integer\"\n\n[[rules]]\nkind = \"range\"\nmin = 1\nmax = 65535\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "8080", "--profile", path); err != nil {
		t.Errorf("valid port rejected: %v", err)
	}
	if _, _, err := execute(t, "70000", "--profile", path); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("out of range port: err = %v", err)
	}
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"two prompts", []string{"a", "b"}},
		{"reversed range", []string{"--range", "10-1"}},
		{"range syntax", []string{"--range", "ten"}},
		{"bad regex", []string{"--pattern", "("}},
		{"bad output", []string{"--output", "xml"}},
		{"bad priority", []string{"--required", "--required-priority", "urgent"}},
		{"bad timeout", []string{"--timeout", "soon"}},
		{"choices bounds without choices", []string{"--min-choices", "2"}},
		{"impossible choice bounds", []string{"--choices", "a,b", "--min-choices", "3"}},
		{"missing profile", []string{"--profile", "/nonexistent/askr.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "x", tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := ExitCode(err); got != ExitInvalidArgs {
				t.Errorf("exit code = %d (%v), want %d", got, err, ExitInvalidArgs)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ErrValidationFailed, 1},
		{errors.New("disk on fire"), 1},
		{&ExitError{Code: 2, Err: errors.New("bad flag")}, 2},
		{validation.ErrInvalidRule, 2},
		{tui.ErrMaxAttempts, 3},
		{tui.ErrTimeout, 124},
		{tui.ErrInterrupted, 130},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
