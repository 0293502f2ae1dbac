package markdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// Engine selects how markdown is turned into HTML.
type Engine string

const (
	// EngineLite is the block renderer in this package.
	EngineLite Engine = "lite"
	// EngineGoldmark delegates HTML output to goldmark.
	EngineGoldmark Engine = "goldmark"
)

// ErrUnknownEngine is returned by ParseEngine for unsupported names.
var ErrUnknownEngine = errors.New("markdown: unknown engine")

// ParseEngine resolves an engine name. The empty name selects EngineLite.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineLite:
		return EngineLite, nil
	case EngineGoldmark:
		return EngineGoldmark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Config controls the markdown service.
type Config struct {
	Engine         string
	Highlight      bool
	HighlightStyle string
	// HeadingOffset shifts lite heading levels; zero keeps the default of 1.
	HeadingOffset int
	Goldmark      GoldmarkOptions
}

// Service renders markdown for content pages and admin previews.
type Service struct {
	engine      Engine
	html        *HTMLRenderer
	highlighter *Highlighter
	goldmark    *GoldmarkParser
	logger      interfaces.Logger
}

// NewService builds a service from cfg.
func NewService(cfg Config, logger interfaces.Logger) (*Service, error) {
	engine, err := ParseEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	logger = logging.Or(logger)

	s := &Service{engine: engine, logger: logger}

	var htmlOpts []HTMLOption
	if cfg.HeadingOffset > 0 {
		htmlOpts = append(htmlOpts, WithHeadingOffset(cfg.HeadingOffset))
	}
	if cfg.Highlight {
		s.highlighter = NewHighlighter(cfg.HighlightStyle)
		htmlOpts = append(htmlOpts, WithHighlighter(s.highlighter))
	}
	s.html = NewHTMLRenderer(htmlOpts...)

	if engine == EngineGoldmark {
		opts := cfg.Goldmark
		if cfg.Highlight && opts.HighlightStyle == "" {
			opts.HighlightStyle = firstNonEmpty(cfg.HighlightStyle, DefaultHighlightStyle)
		}
		s.goldmark = NewGoldmarkParser(opts)
	}

	logger.Debug("markdown.service.ready", "engine", engine, "highlight", cfg.Highlight)
	return s, nil
}

// Engine reports the configured engine.
func (s *Service) Engine() Engine {
	return s.engine
}

// Render returns display nodes for source. Nodes always come from the lite
// renderer, whatever the HTML engine.
func (s *Service) Render(ctx context.Context, source string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Render(source), nil
}

// RenderHTML renders source to an HTML fragment with the configured engine.
func (s *Service) RenderHTML(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.engine == EngineGoldmark {
		out, err := s.goldmark.Parse([]byte(source))
		if err != nil {
			s.logger.Error("markdown.render.failed", "engine", s.engine, "error", err)
			return nil, err
		}
		return out, nil
	}
	return s.RenderNodesHTML(ctx, Render(source))
}

// RenderNodesHTML renders already parsed nodes with the lite HTML renderer.
func (s *Service) RenderNodesHTML(ctx context.Context, nodes []Node) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.html.RenderString(nodes)
	if err != nil {
		s.logger.Error("markdown.render.failed", "engine", EngineLite, "error", err)
		return nil, err
	}
	return []byte(out), nil
}

// WriteCSS writes the highlight stylesheet, or nothing when highlighting is
// disabled.
func (s *Service) WriteCSS(w io.Writer) error {
	if s.highlighter == nil {
		return nil
	}
	return s.highlighter.WriteCSS(w)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
