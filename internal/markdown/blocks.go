package markdown

import (
	"regexp"
	"strings"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeader
	blockCode
	blockTable
	blockList
)

// block is a classified run of source lines. For headers lines holds the
// heading text only.
type block struct {
	kind  blockKind
	level int
	lines []string
}

var (
	headerPattern      = regexp.MustCompile(`^(#{1,3}) (.*)$`)
	listItemPattern    = regexp.MustCompile(`^(?:[-*]|\d+\.) `)
	orderedItemPattern = regexp.MustCompile(`^\d+\. `)
)

const fence = "```"

// classifier groups lines into blocks in a single forward pass. The pending
// accumulator holds paragraph, list, or table lines; code fences are tracked
// separately because their content is never reclassified.
type classifier struct {
	lines   []string
	blocks  []block
	acc     []string
	accKind blockKind
	inCode  bool
	code    []string

	// next is the index of the first non-blank line after the last lookahead
	// and nextPipe whether it contains a pipe. Blank lines before next share
	// the answer.
	next     int
	nextPipe bool
}

func splitBlocks(source string) []block {
	if source == "" {
		return nil
	}
	c := &classifier{lines: strings.Split(source, "\n")}
	for i, line := range c.lines {
		c.step(i, line)
	}
	c.finish()
	return c.blocks
}

func (c *classifier) step(i int, line string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, fence) {
		if c.inCode {
			c.code = append(c.code, line)
			c.blocks = append(c.blocks, block{kind: blockCode, lines: c.code})
			c.code = nil
			c.inCode = false
			return
		}
		c.flush()
		c.inCode = true
		c.code = []string{line}
		return
	}

	if c.inCode {
		c.code = append(c.code, line)
		return
	}

	if strings.Contains(line, "|") {
		c.accumulate(blockTable, line)
		return
	}

	if trimmed == "" && c.pending(blockTable) {
		if c.nextNonBlankHasPipe(i) {
			c.acc = append(c.acc, line)
			return
		}
		c.flush()
		return
	}

	if listItemPattern.MatchString(line) {
		c.accumulate(blockList, line)
		return
	}

	if m := headerPattern.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
		c.flush()
		c.blocks = append(c.blocks, block{
			kind:  blockHeader,
			level: len(m[1]),
			lines: []string{m[2]},
		})
		return
	}

	if trimmed == "" {
		c.flush()
		return
	}

	if c.pending(blockTable) {
		c.flush()
	}
	if len(c.acc) == 0 {
		c.accKind = blockParagraph
	}
	c.acc = append(c.acc, line)
}

// finish flushes the residual accumulator. An unterminated fence is dropped.
func (c *classifier) finish() {
	c.flush()
	c.code = nil
	c.inCode = false
}

func (c *classifier) accumulate(kind blockKind, line string) {
	if len(c.acc) > 0 && c.accKind != kind {
		c.flush()
	}
	c.accKind = kind
	c.acc = append(c.acc, line)
}

func (c *classifier) pending(kind blockKind) bool {
	return len(c.acc) > 0 && c.accKind == kind
}

func (c *classifier) flush() {
	if len(c.acc) == 0 {
		return
	}
	c.blocks = append(c.blocks, block{kind: c.accKind, lines: c.acc})
	c.acc = nil
	c.accKind = blockParagraph
}

func (c *classifier) nextNonBlankHasPipe(i int) bool {
	if i < c.next {
		return c.nextPipe
	}
	c.next, c.nextPipe = len(c.lines), false
	for j := i + 1; j < len(c.lines); j++ {
		if strings.TrimSpace(c.lines[j]) != "" {
			c.next = j
			c.nextPipe = strings.Contains(c.lines[j], "|")
			break
		}
	}
	return c.nextPipe
}
