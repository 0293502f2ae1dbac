package markdown

// NodeKind identifies the structural element a Node represents.
type NodeKind string

const (
	NodeHeading   NodeKind = "heading"
	NodeParagraph NodeKind = "paragraph"
	NodeList      NodeKind = "list"
	NodeTable     NodeKind = "table"
	NodeCode      NodeKind = "code"
)

// SpanKind identifies an inline fragment.
type SpanKind string

const (
	SpanText   SpanKind = "text"
	SpanBold   SpanKind = "bold"
	SpanItalic SpanKind = "italic"
	SpanCode   SpanKind = "code"
	SpanLink   SpanKind = "link"
)

// Span is a typed fragment of block text. URL is set for links only.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
	URL  string   `json:"url,omitempty"`
}

// Cell is the resolved content of one table cell or list item.
type Cell []Span

// Node is one rendered structural element.
//
// Which fields are populated depends on Kind:
//   - heading: Level (1-3), Spans
//   - paragraph: Spans
//   - list: Ordered, Items
//   - table: Header, Rows
//   - code: Language, Code
type Node struct {
	Kind     NodeKind `json:"kind"`
	Level    int      `json:"level,omitempty"`
	Spans    []Span   `json:"spans,omitempty"`
	Ordered  bool     `json:"ordered,omitempty"`
	Items    []Cell   `json:"items,omitempty"`
	Header   []Cell   `json:"header,omitempty"`
	Rows     [][]Cell `json:"rows,omitempty"`
	Language string   `json:"language,omitempty"`
	Code     string   `json:"code,omitempty"`
}

// Tier is the presentation tier of a heading level.
type Tier string

const (
	TierTitle      Tier = "title"
	TierSection    Tier = "section"
	TierSubsection Tier = "subsection"
)

// HeadingTier maps heading levels onto the three presentation tiers. Levels
// outside 1-3 are clamped.
func HeadingTier(level int) Tier {
	switch {
	case level <= 1:
		return TierTitle
	case level == 2:
		return TierSection
	default:
		return TierSubsection
	}
}

// PlainText concatenates the text of spans, dropping formatting.
func PlainText(spans []Span) string {
	n := 0
	for _, s := range spans {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range spans {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
