package content

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a content collection.
type Kind string

const (
	KindBlog       Kind = "blog"
	KindCaseStudy  Kind = "case_study"
	KindEvent      Kind = "event"
	KindWhitepaper Kind = "whitepaper"
)

// ErrUnknownKind is returned by ParseKind.
var ErrUnknownKind = errors.New("content: unknown kind")

var kindAliases = map[string]Kind{
	"blog":         KindBlog,
	"blogs":        KindBlog,
	"post":         KindBlog,
	"posts":        KindBlog,
	"case_study":   KindCaseStudy,
	"case-study":   KindCaseStudy,
	"case_studies": KindCaseStudy,
	"case-studies": KindCaseStudy,
	"event":        KindEvent,
	"events":       KindEvent,
	"whitepaper":   KindWhitepaper,
	"whitepapers":  KindWhitepaper,
}

var kindDirs = map[Kind]string{
	KindBlog:       "blog",
	KindCaseStudy:  "case-studies",
	KindEvent:      "events",
	KindWhitepaper: "whitepapers",
}

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{KindBlog, KindCaseStudy, KindEvent, KindWhitepaper}
}

// ParseKind resolves a kind from its name, plural, or directory alias.
func ParseKind(value string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if kind, ok := kindAliases[key]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Dir is the directory name used for the kind in content trees and URLs.
func (k Kind) Dir() string {
	return kindDirs[k]
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindDirs[k]
	return ok
}

func (k Kind) String() string {
	return string(k)
}
