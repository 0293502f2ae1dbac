package markdown

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"
)

// HTMLRenderer writes nodes as HTML fragments.
type HTMLRenderer struct {
	highlighter   *Highlighter
	headingOffset int
}

// HTMLOption configures an HTMLRenderer.
type HTMLOption func(*HTMLRenderer)

// WithHighlighter enables chroma highlighting for code nodes with a known
// language.
func WithHighlighter(h *Highlighter) HTMLOption {
	return func(r *HTMLRenderer) {
		r.highlighter = h
	}
}

// WithHeadingOffset shifts heading levels. The default of 1 renders level 1
// headings as h2, leaving h1 to the page template.
func WithHeadingOffset(offset int) HTMLOption {
	return func(r *HTMLRenderer) {
		if offset >= 0 && offset <= 3 {
			r.headingOffset = offset
		}
	}
}

// NewHTMLRenderer constructs a renderer.
func NewHTMLRenderer(opts ...HTMLOption) *HTMLRenderer {
	r := &HTMLRenderer{headingOffset: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render writes nodes to w. Nothing is written if rendering fails.
func (r *HTMLRenderer) Render(w io.Writer, nodes []Node) error {
	var buf bytes.Buffer
	for _, node := range nodes {
		if err := r.renderNode(&buf, node); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderString renders nodes into a string.
func (r *HTMLRenderer) RenderString(nodes []Node) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, nodes); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *HTMLRenderer) renderNode(buf *bytes.Buffer, node Node) error {
	switch node.Kind {
	case NodeHeading:
		tag := fmt.Sprintf("h%d", clampLevel(node.Level)+r.headingOffset)
		fmt.Fprintf(buf, "<%s class=\"tier-%s\">", tag, HeadingTier(node.Level))
		writeSpans(buf, node.Spans)
		fmt.Fprintf(buf, "</%s>\n", tag)
	case NodeParagraph:
		buf.WriteString("<p>")
		writeSpans(buf, node.Spans)
		buf.WriteString("</p>\n")
	case NodeList:
		tag := "ul"
		if node.Ordered {
			tag = "ol"
		}
		fmt.Fprintf(buf, "<%s>\n", tag)
		for _, item := range node.Items {
			buf.WriteString("<li>")
			writeSpans(buf, item)
			buf.WriteString("</li>\n")
		}
		fmt.Fprintf(buf, "</%s>\n", tag)
	case NodeTable:
		buf.WriteString("<table>\n<thead>\n")
		writeRow(buf, "th", node.Header)
		buf.WriteString("</thead>\n")
		if len(node.Rows) > 0 {
			buf.WriteString("<tbody>\n")
			for _, row := range node.Rows {
				writeRow(buf, "td", row)
			}
			buf.WriteString("</tbody>\n")
		}
		buf.WriteString("</table>\n")
	case NodeCode:
		return r.renderCode(buf, node)
	}
	return nil
}

func (r *HTMLRenderer) renderCode(buf *bytes.Buffer, node Node) error {
	if r.highlighter != nil {
		ok, err := r.highlighter.Highlight(buf, node.Language, node.Code)
		if err != nil {
			return fmt.Errorf("highlight %s: %w", node.Language, err)
		}
		if ok {
			buf.WriteByte('\n')
			return nil
		}
	}
	buf.WriteString("<pre><code")
	if node.Language != "" {
		fmt.Fprintf(buf, " class=\"language-%s\"", html.EscapeString(node.Language))
	}
	buf.WriteString(">")
	buf.WriteString(html.EscapeString(node.Code))
	buf.WriteString("</code></pre>\n")
	return nil
}

func writeRow(buf *bytes.Buffer, tag string, cells []Cell) {
	buf.WriteString("<tr>")
	for _, cell := range cells {
		fmt.Fprintf(buf, "<%s>", tag)
		writeSpans(buf, cell)
		fmt.Fprintf(buf, "</%s>", tag)
	}
	buf.WriteString("</tr>\n")
}

func writeSpans(buf *bytes.Buffer, spans []Span) {
	for _, s := range spans {
		text := html.EscapeString(s.Text)
		switch s.Kind {
		case SpanBold:
			buf.WriteString("<strong>" + text + "</strong>")
		case SpanItalic:
			buf.WriteString("<em>" + text + "</em>")
		case SpanCode:
			buf.WriteString("<code>" + text + "</code>")
		case SpanLink:
			href, external, ok := safeLink(s.URL)
			if !ok {
				buf.WriteString(text)
				continue
			}
			buf.WriteString(`<a href="` + html.EscapeString(href) + `"`)
			if external {
				buf.WriteString(` rel="noopener noreferrer"`)
			}
			buf.WriteString(">" + text + "</a>")
		default:
			buf.WriteString(text)
		}
	}
}

// safeLink accepts http, https, mailto, and relative targets.
func safeLink(raw string) (href string, external bool, ok bool) {
	href = strings.TrimSpace(raw)
	u, err := url.Parse(href)
	if err != nil {
		return "", false, false
	}
	switch strings.ToLower(u.Scheme) {
	case "":
		return href, false, true
	case "http", "https":
		return href, true, true
	case "mailto":
		return href, false, true
	}
	return "", false, false
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 3:
		return 3
	}
	return level
}
