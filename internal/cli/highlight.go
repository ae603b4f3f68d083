package cli

import (
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlight writes doc with terminal colors for the given language. Anything
// chroma cannot handle is written unchanged.
func highlight(w io.Writer, doc, language string) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		_, err := io.WriteString(w, doc)
		return err
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, doc)
	if err != nil {
		_, err := io.WriteString(w, doc)
		return err
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return formatter.Format(w, style, iterator)
}
