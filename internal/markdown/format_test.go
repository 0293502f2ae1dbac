package markdown

import (
	"reflect"
	"testing"
)

func TestFormatIsIdempotent(t *testing.T) {
	sources := []string{
		"# Title\n\nIntro with **bold**, *italic*, `code` and [a link](https://example.com).",
		"## Section\n### Sub\nline one\nline two",
		"- one\n- two\n  - nested\n- three",
		"1. first\n2. second",
		"| Name | Role |\n|---|:--:|\n| **Ann** | Lead |\n\n| Bob | Dev |\n\nAfter",
		"| a |  | b |\n|---|---|---|",
		"```go\nfunc main() {}\n\n// done\n```",
		"```\n```",
		"a | b\nc | d",
		" - looks like a list\n # looks like a header",
		"#### too deep",
		"- \n- item",
		string(readFixture(t, "testdata/basic.md")),
	}

	for _, src := range sources {
		first := Render(src)
		second := Render(Format(first))
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("render is not stable for %q\nformatted: %q\nfirst:  %#v\nsecond: %#v", src, Format(first), first, second)
		}
	}
}

func TestFormatOutput(t *testing.T) {
	got := Format(Render("# T\n\n1. a\n2. b\n\n| x | y |\n|:-|-:|\n| 1 | 2 |"))
	want := "# T\n\n1. a\n2. b\n\n| x | y |\n| --- | --- |\n| 1 | 2 |"
	if got != want {
		t.Fatalf("unexpected output:\nwant %q\ngot  %q", want, got)
	}
}
