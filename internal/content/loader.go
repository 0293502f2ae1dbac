package content

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-site/internal/identity"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// LoadOptions controls which files become entries.
type LoadOptions struct {
	IncludeDrafts bool
}

// Skipped records a file the loader ignored and why.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LoadResult is the outcome of walking a content tree.
type LoadResult struct {
	Entries []*Entry  `json:"entries"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Loader reads markdown files with frontmatter from a content tree laid out
// as <kind-dir>/<slug>.md.
type Loader struct {
	fsys   fs.FS
	logger interfaces.Logger
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS, logger interfaces.Logger) *Loader {
	return &Loader{fsys: fsys, logger: logging.Or(logger)}
}

type frontMatter struct {
	Kind        string     `yaml:"kind"`
	Title       string     `yaml:"title"`
	Slug        string     `yaml:"slug"`
	Summary     string     `yaml:"summary"`
	Author      string     `yaml:"author"`
	Tags        []string   `yaml:"tags"`
	Image       string     `yaml:"image"`
	Date        time.Time  `yaml:"date"`
	PublishedAt time.Time  `yaml:"published_at"`
	Draft       bool       `yaml:"draft"`
	Attributes  Attributes `yaml:",inline"`
}

// Load walks the tree and returns entries in path order. Files that fail to
// parse or validate are skipped, not fatal.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{}
	err := fs.WalkDir(l.fsys, ".", func(filePath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(filePath) {
			return nil
		}

		entry, reason := l.loadFile(filePath)
		switch {
		case reason != "":
			l.logger.Warn("content.loader.skipped", "path", filePath, "reason", reason)
			result.Skipped = append(result.Skipped, Skipped{Path: filePath, Reason: reason})
		case entry.Draft && !opts.IncludeDrafts:
			result.Skipped = append(result.Skipped, Skipped{Path: filePath, Reason: "draft"})
		default:
			result.Entries = append(result.Entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: walk content tree: %w", err)
	}
	l.logger.Debug("content.loader.loaded", "entries", len(result.Entries), "skipped", len(result.Skipped))
	return result, nil
}

func (l *Loader) loadFile(filePath string) (*Entry, string) {
	source, err := fs.ReadFile(l.fsys, filePath)
	if err != nil {
		return nil, err.Error()
	}

	var meta frontMatter
	body, err := markdown.ParseFrontMatter(source, &meta)
	if err != nil {
		return nil, err.Error()
	}

	kind, err := resolveKind(meta.Kind, filePath)
	if err != nil {
		return nil, err.Error()
	}

	slugValue := strings.TrimSpace(meta.Slug)
	if slugValue != "" {
		slugValue, err = NormalizeSlug(slugValue)
	} else {
		slugValue, err = slugFromPath(filePath)
	}
	if err != nil || slugValue == "" {
		return nil, "cannot derive slug"
	}

	bodyText := string(body)
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = firstHeading(bodyText)
	}

	published := meta.PublishedAt
	if published.IsZero() {
		published = meta.Date
	}

	entry := &Entry{
		ID:          identity.EntryUUID(string(kind), slugValue),
		Key:         EntryKey(kind, slugValue),
		Kind:        kind,
		Slug:        slugValue,
		Title:       title,
		Summary:     strings.TrimSpace(meta.Summary),
		Body:        bodyText,
		Author:      strings.TrimSpace(meta.Author),
		Tags:        meta.Tags,
		Image:       strings.TrimSpace(meta.Image),
		PublishedAt: published.UTC(),
		Draft:       meta.Draft,
		Attributes:  meta.Attributes,
		SourcePath:  filePath,
	}
	if err := entry.Validate(); err != nil {
		return nil, err.Error()
	}
	return entry, ""
}

// resolveKind prefers the frontmatter kind and falls back to the top-level
// directory.
func resolveKind(declared, filePath string) (Kind, error) {
	if strings.TrimSpace(declared) != "" {
		return ParseKind(declared)
	}
	dir, _, found := strings.Cut(path.Clean(filePath), "/")
	if !found {
		return "", fmt.Errorf("%w: no kind for %s", ErrUnknownKind, filePath)
	}
	return ParseKind(dir)
}

func firstHeading(body string) string {
	for _, node := range markdown.Render(body) {
		if node.Kind == markdown.NodeHeading {
			return markdown.PlainText(node.Spans)
		}
	}
	return ""
}

func isMarkdown(filePath string) bool {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
