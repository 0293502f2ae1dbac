package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// Rendered is an entry ready for display.
type Rendered struct {
	Entry *Entry          `json:"entry"`
	URL   string          `json:"url"`
	Nodes []markdown.Node `json:"nodes"`
	HTML  string          `json:"html"`
}

// SyncResult reports what a Sync call imported.
type SyncResult struct {
	Imported int       `json:"imported"`
	Skipped  []Skipped `json:"skipped,omitempty"`
}

// Service exposes published content to the site.
type Service struct {
	repo     Repository
	markdown *markdown.Service
	links    *Permalinks
	logger   interfaces.Logger
	now      func() time.Time
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*Service)

// WithClock overrides the clock used to hide scheduled entries.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logging.Or(logger)
	}
}

// NewService wires the content service.
func NewService(repo Repository, md *markdown.Service, links *Permalinks, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		markdown: md,
		links:    links,
		logger:   logging.NoOp(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns a published entry by kind and slug. Drafts and entries
// scheduled in the future are reported as not found.
func (s *Service) Get(ctx context.Context, kind Kind, slug string) (*Entry, error) {
	entry, err := s.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		return nil, err
	}
	if !s.visible(entry) {
		return nil, &NotFoundError{Resource: "entry", Key: EntryKey(kind, slug)}
	}
	return entry, nil
}

// GetByID returns any entry by id, including drafts.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the published entries of kind, newest first. An empty kind
// lists every kind.
func (s *Service) List(ctx context.Context, kind Kind) ([]*Entry, error) {
	entries, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		if s.visible(entry) {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// Recent returns at most n published entries of kind, newest first. n <= 0
// returns all of them.
func (s *Service) Recent(ctx context.Context, kind Kind, n int) ([]*Entry, error) {
	entries, err := s.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// URL returns the public permalink for kind and slug.
func (s *Service) URL(kind Kind, slug string) (string, error) {
	return s.links.URL(kind, slug)
}

// Render resolves the entry body to nodes and HTML and attaches its URL.
func (s *Service) Render(ctx context.Context, entry *Entry) (*Rendered, error) {
	if entry == nil {
		return nil, errors.New("content: render nil entry")
	}
	nodes, err := s.markdown.Render(ctx, entry.Body)
	if err != nil {
		return nil, err
	}
	html, err := s.renderHTML(ctx, entry.Body, nodes)
	if err != nil {
		return nil, fmt.Errorf("content: render %s: %w", entry.Key, err)
	}
	url, err := s.links.URL(entry.Kind, entry.Slug)
	if err != nil {
		logging.WithContentContext(s.logger, string(entry.Kind), entry.Slug).Warn("content.permalink.failed", "error", err)
	}
	return &Rendered{Entry: entry, URL: url, Nodes: nodes, HTML: string(html)}, nil
}

func (s *Service) renderHTML(ctx context.Context, body string, nodes []markdown.Node) ([]byte, error) {
	if s.markdown.Engine() == markdown.EngineGoldmark {
		return s.markdown.RenderHTML(ctx, body)
	}
	return s.markdown.RenderNodesHTML(ctx, nodes)
}

// Sync loads the content tree in fsys and upserts every entry.
func (s *Service) Sync(ctx context.Context, fsys fs.FS, opts LoadOptions) (*SyncResult, error) {
	loaded, err := NewLoader(fsys, s.logger).Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{Skipped: loaded.Skipped}
	for _, entry := range loaded.Entries {
		entry.UpdatedAt = s.now()
		if _, err := s.repo.Upsert(ctx, entry); err != nil {
			return result, fmt.Errorf("content: sync %s: %w", entry.SourcePath, err)
		}
		result.Imported++
	}
	s.logger.Info("content.sync.completed", "imported", result.Imported, "skipped", len(result.Skipped))
	return result, nil
}

func (s *Service) visible(entry *Entry) bool {
	if entry == nil || entry.Draft {
		return false
	}
	return entry.PublishedAt.IsZero() || !entry.PublishedAt.After(s.now())
}
