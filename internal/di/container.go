// Package di wires the site services from a runtime configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	contentcmd "github.com/goliatone/go-site/internal/commands/content"
	submissioncmd "github.com/goliatone/go-site/internal/commands/submissions"
	"github.com/goliatone/go-site/internal/content"
	"github.com/goliatone/go-site/internal/flags"
	sitehttp "github.com/goliatone/go-site/internal/http"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/logging/console"
	"github.com/goliatone/go-site/internal/logging/gologger"
	"github.com/goliatone/go-site/internal/mail"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/internal/runtimeconfig"
	"github.com/goliatone/go-site/internal/store"
	"github.com/goliatone/go-site/internal/submissions"
	"github.com/goliatone/go-site/internal/validation"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	store         store.Store
	storeProvider string
	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	contentRepo content.Repository
	markdownSvc *markdown.Service
	permalinks  *content.Permalinks
	contentSvc  *content.Service

	transport     mail.Transport
	notifier      *mail.Notifier
	flagSvc       *flags.Service
	careerSchema  *validation.Schema
	submissionSvc *submissions.Service
	submissionCmd *submissioncmd.HandlerSet
	syncCmd       *contentcmd.SyncContentHandler

	unsubscribe []func()
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider chosen from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithStore overrides the store opened from the storage config.
func WithStore(s store.Store) Option {
	return func(c *Container) {
		c.store = s
		c.storeProvider = "custom"
	}
}

// WithBunDB shares an existing database with the bun content repository.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache provider.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithContentRepository overrides the configured content repository.
func WithContentRepository(repo content.Repository) Option {
	return func(c *Container) {
		c.contentRepo = repo
	}
}

// WithMailTransport overrides the SMTP transport.
func WithMailTransport(transport mail.Transport) Option {
	return func(c *Container) {
		c.transport = transport
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureRepositories(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureServices(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureDispatcher()

	c.logger.Info("site.container.ready",
		"environment", cfg.Environment,
		"storage", c.storeProvider,
		"markdown_engine", c.markdownSvc.Engine(),
		"mail_enabled", cfg.Mail.Enabled,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     c.Config.Logging.Level,
				Format:    c.Config.Logging.Format,
				AddSource: c.Config.Logging.AddSource,
				Focus:     c.Config.Logging.Focus,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		default:
			level, _ := console.ParseLevel(c.Config.Logging.Level)
			if c.Config.IsDevelopment() {
				level = console.LevelDebug
			}
			c.loggerProvider = console.NewProvider(console.Options{MinLevel: level})
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "site")
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	opened, err := store.Open(ctx, store.Config{
		Provider: c.Config.Storage.Provider,
		Dir:      c.Config.Storage.Dir,
		DSN:      c.Config.Storage.DSN,
	}, logging.StoreLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	c.store = opened.Store
	c.storeProvider = opened.Provider
	if opened.DB != nil && c.bunDB == nil {
		c.bunDB = opened.DB
		c.ownsDB = true
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("site.cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories(ctx context.Context) error {
	if c.contentRepo != nil {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(c.Config.Content.Repository), "bun") && c.bunDB != nil {
		repo := content.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		c.contentRepo = repo
		return nil
	}
	c.contentRepo = content.NewMemoryRepository()
	return nil
}

func (c *Container) configureServices() error {
	cfg := c.Config

	goldmarkOpts := markdown.GoldmarkOptions{
		Extensions: cfg.Markdown.Extensions,
		HardWraps:  cfg.Markdown.HardWraps,
		Unsafe:     cfg.Markdown.Unsafe,
	}
	if cfg.Markdown.Highlight {
		goldmarkOpts.HighlightStyle = cfg.Markdown.HighlightStyle
	}
	md, err := markdown.NewService(markdown.Config{
		Engine:         cfg.Markdown.Engine,
		Highlight:      cfg.Markdown.Highlight,
		HighlightStyle: cfg.Markdown.HighlightStyle,
		HeadingOffset:  cfg.Markdown.HeadingOffset,
		Goldmark:       goldmarkOpts,
	}, logging.MarkdownLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	c.markdownSvc = md

	routes, err := contentRoutes(cfg.Content.Routes)
	if err != nil {
		return err
	}
	c.permalinks = content.NewPermalinks(cfg.Site.BaseURL, routes)
	c.contentSvc = content.NewService(c.contentRepo, c.markdownSvc, c.permalinks,
		content.WithLogger(logging.ContentLogger(c.loggerProvider)))

	if c.transport == nil && cfg.Mail.Enabled {
		c.transport = mail.NewSMTPTransport(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Timeout:  cfg.Mail.Timeout,
		})
	}
	c.notifier = mail.NewNotifier(mail.Config{
		Enabled: cfg.Mail.Enabled,
		From:    cfg.Mail.From,
		To:      cfg.Mail.To,
		Timeout: cfg.Mail.Timeout,
	}, c.transport, c.store, logging.MailLogger(c.loggerProvider))

	c.flagSvc = flags.NewService(c.store, cfg.Flags, logging.FlagsLogger(c.loggerProvider))

	schema, err := validation.Compile(cfg.Forms.CareerAnswersSchema)
	if err != nil {
		return fmt.Errorf("%w: %v", runtimeconfig.ErrCareerSchemaInvalid, err)
	}
	c.careerSchema = schema

	c.submissionSvc = submissions.NewService(c.store,
		submissions.WithNotifier(c.notifier),
		submissions.WithGate(c.flagSvc),
		submissions.WithCareerSchema(c.careerSchema),
		submissions.WithLogger(logging.SubmissionsLogger(c.loggerProvider)),
	)
	c.submissionCmd = submissioncmd.NewHandlerSet(c.submissionSvc, c.loggerProvider, cfg.Commands.Timeout)
	c.syncCmd = contentcmd.NewSyncContentHandler(c.contentSvc, logging.ContentLogger(c.loggerProvider))
	return nil
}

func (c *Container) configureDispatcher() {
	if !c.Config.Commands.AutoRegisterDispatcher {
		return
	}
	retries := max(c.Config.Commands.MaxRetries, 0)
	set := c.submissionCmd
	subscribe(c, set.Lead, retries)
	subscribe(c, set.Contact, retries)
	subscribe(c, set.Career, retries)
	subscribe(c, set.UpdateStatus, retries)
	subscribe(c, c.syncCmd, retries)
	c.logger.Debug("site.commands.registered", "count", len(c.unsubscribe))
}

func subscribe[T command.Message](c *Container, handler command.Commander[T], retries int) {
	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(retries))
	c.unsubscribe = append(c.unsubscribe, sub.Unsubscribe)
}

func contentRoutes(raw map[string]string) (map[content.Kind]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	routes := make(map[content.Kind]string, len(raw))
	for name, route := range raw {
		kind, err := content.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("content routes: %w", err)
		}
		routes[kind] = route
	}
	return routes, nil
}

// SyncContent imports the configured content directory.
func (c *Container) SyncContent(ctx context.Context) (*content.SyncResult, error) {
	dir := strings.TrimSpace(c.Config.Content.Dir)
	if dir == "" {
		return &content.SyncResult{}, nil
	}
	result := &content.SyncResult{}
	err := c.syncCmd.Execute(ctx, contentcmd.SyncContentCommand{
		Directory:     dir,
		IncludeDrafts: c.Config.Content.IncludeDrafts,
		Result:        result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SiteAPI builds the HTTP API over the container services.
func (c *Container) SiteAPI() *sitehttp.SiteAPI {
	return sitehttp.NewSiteAPI(
		sitehttp.WithAdminToken(c.Config.HTTP.AdminToken),
		sitehttp.WithAdminEnabled(c.Config.Features.AdminAPI),
		sitehttp.WithMaxBodyBytes(c.Config.HTTP.MaxBodyBytes),
		sitehttp.WithContentService(c.contentSvc),
		sitehttp.WithMarkdownService(c.markdownSvc),
		sitehttp.WithSubmissionReader(c.submissionSvc),
		sitehttp.WithEmailLogReader(c.notifier),
		sitehttp.WithFlagService(c.flagSvc),
		sitehttp.WithCommands(sitehttp.CommandsFromHandlerSet(c.submissionCmd, c.syncCmd)),
		sitehttp.WithContentSync(c.Config.Content.Dir, c.Config.Content.IncludeDrafts),
		sitehttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)
}

// HTTPHandler returns the API handler with request logging.
func (c *Container) HTTPHandler() (http.Handler, error) {
	return c.SiteAPI().Handler()
}

// Close waits for pending notifications, drops dispatcher subscriptions and
// closes the database the container opened.
func (c *Container) Close() error {
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
	if c.notifier != nil {
		c.notifier.Wait()
	}
	var errs []error
	if c.ownsDB && c.bunDB != nil {
		errs = append(errs, c.bunDB.Close())
		c.bunDB = nil
	}
	return errors.Join(errs...)
}

// LoggerProvider exposes the logger provider in use.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns the root site logger.
func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

// Store exposes the collection store.
func (c *Container) Store() store.Store {
	return c.store
}

// StoreProvider reports the storage backend actually in use.
func (c *Container) StoreProvider() string {
	return c.storeProvider
}

// BunDB exposes the shared database, if any.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) ContentRepository() content.Repository {
	return c.contentRepo
}

func (c *Container) ContentService() *content.Service {
	return c.contentSvc
}

func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

func (c *Container) Notifier() *mail.Notifier {
	return c.notifier
}

func (c *Container) FlagService() *flags.Service {
	return c.flagSvc
}

func (c *Container) SubmissionService() *submissions.Service {
	return c.submissionSvc
}

// SubmissionCommands exposes the submission command handlers.
func (c *Container) SubmissionCommands() *submissioncmd.HandlerSet {
	return c.submissionCmd
}

// SyncCommand returns the content sync command handler.
func (c *Container) SyncCommand() *contentcmd.SyncContentHandler {
	return c.syncCmd
}
