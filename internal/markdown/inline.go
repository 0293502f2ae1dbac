package markdown

import (
	"regexp"
	"sort"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*`)
	codePattern   = regexp.MustCompile("`([^`]+)`")
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
)

type candidate struct {
	start, end int
	span       Span
}

func (c candidate) overlaps(other candidate) bool {
	return c.start < other.end && other.start < c.end
}

// ResolveSpans splits text into inline spans. Every pattern is scanned over
// the whole text; matches are then taken in order of their start offset and a
// match that overlaps an earlier kept match is discarded. Text between kept
// matches is returned as plain text spans.
func ResolveSpans(text string) []Span {
	if text == "" {
		return nil
	}

	candidates := collectCandidates(text)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].start < candidates[j].start
	})

	kept := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		if overlapsKept(cand, kept) {
			continue
		}
		kept = append(kept, cand)
	}

	spans := make([]Span, 0, len(kept)*2+1)
	pos := 0
	for _, k := range kept {
		if k.start > pos {
			spans = append(spans, Span{Kind: SpanText, Text: text[pos:k.start]})
		}
		spans = append(spans, k.span)
		pos = k.end
	}
	if pos < len(text) {
		spans = append(spans, Span{Kind: SpanText, Text: text[pos:]})
	}
	return spans
}

func collectCandidates(text string) []candidate {
	var out []candidate
	scan := func(re *regexp.Regexp, kind SpanKind) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			span := Span{Kind: kind, Text: text[m[2]:m[3]]}
			if kind == SpanLink {
				span.URL = text[m[4]:m[5]]
			}
			out = append(out, candidate{start: m[0], end: m[1], span: span})
		}
	}
	scan(boldPattern, SpanBold)
	scan(italicPattern, SpanItalic)
	scan(codePattern, SpanCode)
	scan(linkPattern, SpanLink)
	return out
}

func overlapsKept(cand candidate, kept []candidate) bool {
	for _, k := range kept {
		if cand.overlaps(k) {
			return true
		}
	}
	return false
}
