package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	contentcmd "github.com/goliatone/go-site/internal/commands/content"
	submissioncmd "github.com/goliatone/go-site/internal/commands/submissions"
	"github.com/goliatone/go-site/internal/content"
	"github.com/goliatone/go-site/internal/flags"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/mail"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/internal/submissions"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// DefaultMaxBodyBytes caps JSON request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// ContentService is the published-content surface of the API.
type ContentService interface {
	List(ctx context.Context, kind content.Kind) ([]*content.Entry, error)
	Recent(ctx context.Context, kind content.Kind, n int) ([]*content.Entry, error)
	Get(ctx context.Context, kind content.Kind, slug string) (*content.Entry, error)
	Render(ctx context.Context, entry *content.Entry) (*content.Rendered, error)
	URL(kind content.Kind, slug string) (string, error)
}

// MarkdownService renders previews and serves the highlight stylesheet.
type MarkdownService interface {
	Render(ctx context.Context, source string) ([]markdown.Node, error)
	RenderHTML(ctx context.Context, source string) ([]byte, error)
	WriteCSS(w io.Writer) error
}

// SubmissionReader lists stored submissions for the admin dashboard.
type SubmissionReader interface {
	List(ctx context.Context, kind submissions.Kind) ([]submissions.Submission, error)
	Get(ctx context.Context, kind submissions.Kind, id string) (submissions.Submission, error)
}

// EmailLogReader lists notification delivery outcomes.
type EmailLogReader interface {
	Logs(ctx context.Context) ([]mail.LogEntry, error)
}

// FlagService reads and toggles feature flags.
type FlagService interface {
	List(ctx context.Context) ([]flags.Flag, error)
	Set(ctx context.Context, name string, enabled bool) (flags.Flag, error)
}

// Commands groups the go-command handlers behind the write endpoints.
type Commands struct {
	SubmitLead    command.Commander[submissioncmd.SubmitLeadCommand]
	SubmitContact command.Commander[submissioncmd.SubmitContactCommand]
	SubmitCareer  command.Commander[submissioncmd.SubmitCareerCommand]
	UpdateStatus  command.Commander[submissioncmd.UpdateStatusCommand]
	SyncContent   command.Commander[contentcmd.SyncContentCommand]
}

// CommandsFromHandlerSet adapts a submission handler set and an optional
// content sync handler.
func CommandsFromHandlerSet(set *submissioncmd.HandlerSet, sync *contentcmd.SyncContentHandler) Commands {
	var cmds Commands
	if set != nil {
		cmds.SubmitLead = set.Lead
		cmds.SubmitContact = set.Contact
		cmds.SubmitCareer = set.Career
		cmds.UpdateStatus = set.UpdateStatus
	}
	if sync != nil {
		cmds.SyncContent = sync
	}
	return cmds
}

// SiteAPI registers the public and admin endpoints.
type SiteAPI struct {
	basePath      string
	adminBasePath string
	adminToken    string
	adminEnabled  bool
	maxBodyBytes  int64

	content     ContentService
	markdown    MarkdownService
	submissions SubmissionReader
	emailLogs   EmailLogReader
	flags       FlagService
	commands    Commands
	contentDir  string
	drafts      bool
	logger      interfaces.Logger
}

// Option mutates the SiteAPI configuration.
type Option func(*SiteAPI)

// NewSiteAPI constructs a SiteAPI instance.
func NewSiteAPI(opts ...Option) *SiteAPI {
	api := &SiteAPI{
		basePath:      "/api",
		adminBasePath: "/admin/api",
		adminEnabled:  true,
		maxBodyBytes:  DefaultMaxBodyBytes,
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the public API path (defaults to "/api").
func WithBasePath(path string) Option {
	return func(api *SiteAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithAdminBasePath overrides the admin API path (defaults to "/admin/api").
func WithAdminBasePath(path string) Option {
	return func(api *SiteAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.adminBasePath = trimmed
		}
	}
}

// WithAdminToken sets the bearer token admin requests must present. An empty
// token locks the admin API.
func WithAdminToken(token string) Option {
	return func(api *SiteAPI) {
		api.adminToken = strings.TrimSpace(token)
	}
}

// WithAdminEnabled toggles registration of the admin routes.
func WithAdminEnabled(enabled bool) Option {
	return func(api *SiteAPI) {
		api.adminEnabled = enabled
	}
}

// WithMaxBodyBytes caps request bodies. Zero or negative keeps the default.
func WithMaxBodyBytes(limit int64) Option {
	return func(api *SiteAPI) {
		if limit > 0 {
			api.maxBodyBytes = limit
		}
	}
}

// WithContentService wires the content service.
func WithContentService(service ContentService) Option {
	return func(api *SiteAPI) {
		api.content = service
	}
}

// WithMarkdownService wires the markdown service.
func WithMarkdownService(service MarkdownService) Option {
	return func(api *SiteAPI) {
		api.markdown = service
	}
}

// WithSubmissionReader wires submission listing.
func WithSubmissionReader(reader SubmissionReader) Option {
	return func(api *SiteAPI) {
		api.submissions = reader
	}
}

// WithEmailLogReader wires email log listing.
func WithEmailLogReader(reader EmailLogReader) Option {
	return func(api *SiteAPI) {
		api.emailLogs = reader
	}
}

// WithFlagService wires the feature flag service.
func WithFlagService(service FlagService) Option {
	return func(api *SiteAPI) {
		api.flags = service
	}
}

// WithContentSync sets the directory the admin sync endpoint imports.
func WithContentSync(dir string, includeDrafts bool) Option {
	return func(api *SiteAPI) {
		api.contentDir = strings.TrimSpace(dir)
		api.drafts = includeDrafts
	}
}

// WithCommands wires the command handlers behind the write endpoints.
func WithCommands(commands Commands) Option {
	return func(api *SiteAPI) {
		api.commands = commands
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *SiteAPI) {
		api.logger = logging.Or(logger)
	}
}

// Register attaches the endpoints to the provided mux.
func (api *SiteAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: site api is nil")
	}

	base := joinPath(api.basePath, "")
	api.registerContentRoutes(mux, base)
	api.registerFormRoutes(mux, base)
	mux.HandleFunc("GET "+joinPath(base, "styles/highlight.css"), api.handleHighlightCSS)

	if api.adminEnabled {
		admin := joinPath(api.adminBasePath, "")
		api.registerAdminRoutes(mux, admin)
	}
	return nil
}

// Handler returns a mux with every route registered, wrapped with request
// logging.
func (api *SiteAPI) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return api.withRequestLogging(mux), nil
}

func (api *SiteAPI) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithFields(r.Context(), map[string]any{"request_id": requestID})

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger := api.logger.WithContext(ctx)
		args := []any{"method", r.Method, "path", r.URL.Path, "status", rec.status, "request_id", requestID}
		if rec.status >= http.StatusInternalServerError {
			logger.Error("http.request", args...)
			return
		}
		logger.Debug("http.request", args...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (api *SiteAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.handler.failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, payload)
}

func unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}
