// Package site is the marketing-site runtime: published content rendered
// from block-structured markdown, lead capture forms with email
// notifications, feature flags and an admin API.
package site

import (
	"context"
	"net/http"

	"github.com/goliatone/go-site/internal/content"
	"github.com/goliatone/go-site/internal/di"
	"github.com/goliatone/go-site/internal/flags"
	"github.com/goliatone/go-site/internal/mail"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/internal/submissions"
)

// ContentService exports the content service for consumers of the site package.
type ContentService = *content.Service

// MarkdownService exports the markdown service.
type MarkdownService = *markdown.Service

// SubmissionService exports the form submission service.
type SubmissionService = *submissions.Service

// FlagService exports the feature flag service.
type FlagService = *flags.Service

// Notifier exports the email notifier.
type Notifier = *mail.Notifier

// Node is one rendered markdown block.
type Node = markdown.Node

// Module represents the top level site runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a site module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Content returns the content service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Markdown returns the markdown service.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Submissions returns the form submission service.
func (m *Module) Submissions() SubmissionService {
	return m.container.SubmissionService()
}

// Flags returns the feature flag service.
func (m *Module) Flags() FlagService {
	return m.container.FlagService()
}

// Notifier returns the email notifier.
func (m *Module) Notifier() Notifier {
	return m.container.Notifier()
}

// Sync imports the configured content directory.
func (m *Module) Sync(ctx context.Context) (*content.SyncResult, error) {
	return m.container.SyncContent(ctx)
}

// Handler returns the HTTP API.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.HTTPHandler()
}

// Close flushes pending notifications and releases storage.
func (m *Module) Close() error {
	return m.container.Close()
}

// Render is the pure block renderer: it turns source into display nodes.
func Render(source string) []Node {
	return markdown.Render(source)
}
