package netlog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Summary renders one line per recorded response.
func (r *Recorder) Summary() string {
	var sb strings.Builder
	for _, resp := range r.Responses() {
		fmt.Fprintf(&sb, "%s %s\n", resp.Timestamp.Format("15:04:05.000"), resp)
	}
	return sb.String()
}

// Dump writes the recorded responses as indented JSON, optionally highlighted
// for a terminal.
func (r *Recorder) Dump(w io.Writer, highlight bool) error {
	data, err := json.MarshalIndent(r.Responses(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding responses: %w", err)
	}

	if !highlight {
		_, err = w.Write(append(data, '\n'))
		return err
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, string(data))
	if err != nil {
		return err
	}
	if err := formatter.Format(w, chromaStyle(), iterator); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func chromaStyle() *chroma.Style {
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	return style
}
