package markdown

import (
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is used when no style is configured.
const DefaultHighlightStyle = "github"

// Highlighter renders code with chroma using CSS classes, so the page
// stylesheet (see WriteCSS) controls colours.
type Highlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// NewHighlighter returns a highlighter for the named chroma style. Unknown
// styles resolve to chroma's fallback style.
func NewHighlighter(style string) *Highlighter {
	if strings.TrimSpace(style) == "" {
		style = DefaultHighlightStyle
	}
	return &Highlighter{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(style),
	}
}

// Highlight writes highlighted markup for code. It reports false without
// writing anything when no lexer is registered for language.
func (h *Highlighter) Highlight(w io.Writer, language, code string) (bool, error) {
	if h == nil || strings.TrimSpace(language) == "" {
		return false, nil
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return false, nil
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return false, err
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return false, err
	}
	_, err = w.Write(buf.Bytes())
	return err == nil, err
}

// WriteCSS writes the stylesheet matching the highlighter's classes.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}
