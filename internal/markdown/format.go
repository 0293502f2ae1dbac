package markdown

import (
	"strconv"
	"strings"
)

// Format writes nodes back out in the dialect Render understands. Rendering
// the result yields nodes equal to the input.
func Format(nodes []Node) string {
	var b strings.Builder
	for i, node := range nodes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		formatNode(&b, node)
	}
	return b.String()
}

func formatNode(b *strings.Builder, node Node) {
	switch node.Kind {
	case NodeHeading:
		level := node.Level
		if level < 1 {
			level = 1
		}
		if level > 3 {
			level = 3
		}
		b.WriteString(strings.Repeat("#", level))
		b.WriteByte(' ')
		b.WriteString(FormatSpans(node.Spans))
	case NodeList:
		for i, item := range node.Items {
			if i > 0 {
				b.WriteByte('\n')
			}
			if node.Ordered {
				b.WriteString(strconv.Itoa(i + 1))
				b.WriteString(". ")
			} else {
				b.WriteString("- ")
			}
			b.WriteString(FormatSpans(item))
		}
	case NodeTable:
		b.WriteString(formatRow(node.Header))
		b.WriteByte('\n')
		cols := len(node.Header)
		if cols == 0 {
			cols = 1
		}
		b.WriteString("|" + strings.Repeat(" --- |", cols))
		for _, row := range node.Rows {
			b.WriteByte('\n')
			b.WriteString(formatRow(row))
		}
	case NodeCode:
		b.WriteString(fence)
		b.WriteString(node.Language)
		b.WriteByte('\n')
		b.WriteString(node.Code)
		b.WriteByte('\n')
		b.WriteString(fence)
	default:
		b.WriteString(protectLines(FormatSpans(node.Spans)))
	}
}

// protectLines indents paragraph lines that would otherwise be read back as
// a list item or a header. Render trims the indentation again.
func protectLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if listItemPattern.MatchString(line) || headerPattern.MatchString(line) {
			lines[i] = " " + line
		}
	}
	return strings.Join(lines, "\n")
}

func formatRow(cells []Cell) string {
	if len(cells) == 0 {
		return "|"
	}
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = FormatSpans(cell)
	}
	return "| " + strings.Join(parts, " | ") + " |"
}

// FormatSpans writes spans back out with their inline markers.
func FormatSpans(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case SpanBold:
			b.WriteString("**" + s.Text + "**")
		case SpanItalic:
			b.WriteString("*" + s.Text + "*")
		case SpanCode:
			b.WriteString("`" + s.Text + "`")
		case SpanLink:
			b.WriteString("[" + s.Text + "](" + s.URL + ")")
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
