package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/sprite-ai/askr/internal/config"
	"github.com/sprite-ai/askr/internal/model"
	"github.com/sprite-ai/askr/internal/terminal"
)

// summaryDoc is the serialized form of a summary. Error is null when valid.
type summaryDoc struct {
	Value    string                `json:"value" yaml:"value"`
	Valid    bool                  `json:"valid" yaml:"valid"`
	Error    *string               `json:"error" yaml:"error"`
	Metadata model.SummaryMetadata `json:"metadata" yaml:"metadata"`
	Results  []model.Result        `json:"results" yaml:"results"`
}

func newSummaryDoc(s model.Summary) summaryDoc {
	doc := summaryDoc{
		Value:    s.Value,
		Valid:    s.Valid,
		Metadata: s.Metadata,
		Results:  s.Results,
	}
	if !s.Valid {
		msg := s.Error
		doc.Error = &msg
	}
	if doc.Results == nil {
		doc.Results = []model.Result{}
	}
	return doc
}

// writeSummary prints s in the requested format. JSON and YAML are
// highlighted when color is on.
func writeSummary(w io.Writer, s model.Summary, format config.OutputFormat, color bool) error {
	switch format {
	case config.OutputJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(newSummaryDoc(s)); err != nil {
			return err
		}
		return emit(w, buf.String(), "json", color)

	case config.OutputYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(newSummaryDoc(s)); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		return emit(w, buf.String(), "yaml", color)

	case config.OutputRaw:
		return printValue(w, s.Value)

	default:
		if !s.Valid {
			return nil
		}
		return printValue(w, s.Value)
	}
}

func printValue(w io.Writer, v string) error {
	if v == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, v)
	return err
}

func emit(w io.Writer, doc, language string, color bool) error {
	if color {
		return highlight(w, doc, language)
	}
	_, err := io.WriteString(w, doc)
	return err
}

// colorEnabled reports whether w is a terminal that should get color.
func colorEnabled(w io.Writer, noColor bool) bool {
	f, ok := w.(*os.File)
	if noColor || !ok || !terminal.IsTerminal(f) {
		return false
	}
	return termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
}
