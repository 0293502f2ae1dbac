package markdown

import (
	"regexp"
	"strings"
)

var (
	codeBodyPattern       = regexp.MustCompile("(?s)^[ \\t]*```[ \\t]*([\\w+#.-]*)[^\\n]*\\n(.*?)\\n?[ \\t]*```[^\\n]*$")
	tableSeparatorPattern = regexp.MustCompile(`^\|[\s\-:]+\|`)
)

// Render converts source into display nodes. It is a pure function: it keeps
// no state between calls and never fails. Empty input yields an empty slice.
func Render(source string) []Node {
	blocks := splitBlocks(source)
	nodes := make([]Node, 0, len(blocks))
	for _, b := range blocks {
		node, ok := emit(b)
		if !ok {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func emit(b block) (Node, bool) {
	switch b.kind {
	case blockHeader:
		return Node{
			Kind:  NodeHeading,
			Level: b.level,
			Spans: ResolveSpans(strings.TrimSpace(b.lines[0])),
		}, true
	case blockCode:
		return codeNode(b.lines)
	case blockTable:
		if node, ok := tableNode(b.lines); ok {
			return node, true
		}
		return paragraphNode(b.lines), true
	case blockList:
		return listNode(b.lines), true
	default:
		return paragraphNode(b.lines), true
	}
}

// codeNode extracts the language and body from a closed fence. Anything the
// body pattern rejects is dropped.
func codeNode(lines []string) (Node, bool) {
	m := codeBodyPattern.FindStringSubmatch(strings.Join(lines, "\n"))
	if m == nil {
		return Node{}, false
	}
	return Node{Kind: NodeCode, Language: m[1], Code: m[2]}, true
}

func tableNode(lines []string) (Node, bool) {
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(line, "|") {
			rows = append(rows, line)
		}
	}
	if len(rows) < 2 {
		return Node{}, false
	}
	separator := strings.TrimSpace(rows[1])
	if !strings.Contains(separator, "-") && !tableSeparatorPattern.MatchString(separator) {
		return Node{}, false
	}

	node := Node{Kind: NodeTable, Header: resolveCells(splitCells(rows[0]))}
	for _, row := range rows[2:] {
		node.Rows = append(node.Rows, resolveCells(splitCells(row)))
	}
	return node, true
}

// splitCells splits a table row on pipes, trims each cell, and drops the
// empty cells produced by leading and trailing pipes.
func splitCells(row string) []string {
	cells := strings.Split(strings.TrimSpace(row), "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func resolveCells(cells []string) []Cell {
	out := make([]Cell, len(cells))
	for i, cell := range cells {
		out[i] = ResolveSpans(cell)
	}
	return out
}

func listNode(lines []string) Node {
	var items []string
	for _, line := range lines {
		if loc := listItemPattern.FindStringIndex(line); loc != nil {
			items = append(items, strings.TrimSpace(line[loc[1]:]))
			continue
		}
		text := strings.TrimSpace(line)
		if len(items) == 0 {
			items = append(items, text)
			continue
		}
		last := len(items) - 1
		if items[last] == "" {
			items[last] = text
		} else {
			items[last] += " " + text
		}
	}

	node := Node{
		Kind:    NodeList,
		Ordered: orderedItemPattern.MatchString(lines[0]),
		Items:   make([]Cell, len(items)),
	}
	for i, item := range items {
		node.Items[i] = ResolveSpans(item)
	}
	return node
}

func paragraphNode(lines []string) Node {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	return Node{Kind: NodeParagraph, Spans: ResolveSpans(strings.Join(parts, "\n"))}
}
