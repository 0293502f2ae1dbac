package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-site/internal/validation"
)

var ErrEnvironmentInvalid = errors.New("site config: environment must be development or production")
var ErrBaseURLRequired = errors.New("site config: site base url is required")
var ErrHTTPAddrRequired = errors.New("site config: http address is required")
var ErrStorageProviderUnknown = errors.New("site config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("site config: storage dsn is required for postgres")
var ErrContentRepositoryUnknown = errors.New("site config: content repository is invalid")

// ErrCacheRequiresBunRepository keeps the read-through cache on the bun repository only.
var ErrCacheRequiresBunRepository = errors.New("site config: content cache requires the bun repository")
var ErrMarkdownEngineUnknown = errors.New("site config: markdown engine is invalid")
var ErrMailHostRequired = errors.New("site config: smtp host is required when mail is enabled")
var ErrMailSenderRequired = errors.New("site config: mail sender is required when mail is enabled")
var ErrMailRecipientRequired = errors.New("site config: mail recipient is required when mail is enabled")
var ErrCareerSchemaInvalid = errors.New("site config: careers answers schema is invalid")
var ErrImageGenProviderUnknown = errors.New("site config: image generation provider is invalid")
var ErrImageGenWorkersInvalid = errors.New("site config: image generation workers must be zero or positive")
var ErrLoggingProviderRequired = errors.New("site config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("site config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("site config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("site config: logging format is invalid")

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Config aggregates the settings for every site component.
type Config struct {
	Environment string          `yaml:"environment"`
	Site        SiteConfig      `yaml:"site"`
	HTTP        HTTPConfig      `yaml:"http"`
	Storage     StorageConfig   `yaml:"storage"`
	Content     ContentConfig   `yaml:"content"`
	Cache       CacheConfig     `yaml:"cache"`
	Markdown    MarkdownConfig  `yaml:"markdown"`
	Mail        MailConfig      `yaml:"mail"`
	Forms       FormsConfig     `yaml:"forms"`
	Flags       map[string]bool `yaml:"flags"`
	Commands    CommandsConfig  `yaml:"commands"`
	ImageGen    ImageGenConfig  `yaml:"imagegen"`
	Features    Features        `yaml:"features"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// SiteConfig identifies the public site.
type SiteConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AdminToken guards the admin API. Admin routes reject every request
	// while it is empty.
	AdminToken   string `yaml:"admin_token"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// StorageConfig selects the collection store backend.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Dir      string `yaml:"dir"`
	DSN      string `yaml:"dsn"`
}

// ContentConfig controls where content comes from and how it is stored.
type ContentConfig struct {
	Dir string `yaml:"dir"`
	// Repository is memory or bun. The bun repository shares the storage
	// database and needs a sqlite or postgres storage provider.
	Repository    string            `yaml:"repository"`
	SyncOnStart   bool              `yaml:"sync_on_start"`
	IncludeDrafts bool              `yaml:"include_drafts"`
	Routes        map[string]string `yaml:"routes"`
}

// CacheConfig captures the content read-through cache toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// MarkdownConfig configures the markdown service.
type MarkdownConfig struct {
	Engine         string   `yaml:"engine"`
	Highlight      bool     `yaml:"highlight"`
	HighlightStyle string   `yaml:"highlight_style"`
	HeadingOffset  int      `yaml:"heading_offset"`
	Extensions     []string `yaml:"extensions"`
	HardWraps      bool     `yaml:"hard_wraps"`
	Unsafe         bool     `yaml:"unsafe"`
}

// MailConfig configures outbound notifications.
type MailConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	To       []string      `yaml:"to"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FormsConfig configures lead capture forms.
type FormsConfig struct {
	// CareerAnswersSchema validates the free-form answers on career
	// applications. Either a JSON schema or the {"fields": [...]} short form.
	CareerAnswersSchema map[string]any `yaml:"career_answers_schema"`
}

// CommandsConfig captures command-layer behaviour.
type CommandsConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	// AutoRegisterDispatcher subscribes the command handlers with the
	// go-command dispatcher so hosts can Dispatch messages in process.
	AutoRegisterDispatcher bool `yaml:"auto_register_dispatcher"`
	MaxRetries             int  `yaml:"max_retries"`
}

// ImageGenConfig configures the image generation CLI.
type ImageGenConfig struct {
	Provider  string        `yaml:"provider"`
	Token     string        `yaml:"token"`
	Model     string        `yaml:"model"`
	Size      string        `yaml:"size"`
	Manifest  string        `yaml:"manifest"`
	OutputDir string        `yaml:"output_dir"`
	Workers   int           `yaml:"workers"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger   bool `yaml:"logger"`
	AdminAPI bool `yaml:"admin_api"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() Config {
	return Config{
		Environment: EnvironmentDevelopment,
		Site: SiteConfig{
			Name:    "Site",
			BaseURL: "http://localhost:8080",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Storage: StorageConfig{
			Provider: "file",
			Dir:      "data",
		},
		Content: ContentConfig{
			Dir:         "content",
			Repository:  "memory",
			SyncOnStart: true,
			Routes:      map[string]string{},
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Markdown: MarkdownConfig{
			Engine:         "lite",
			Highlight:      true,
			HighlightStyle: "github",
		},
		Mail: MailConfig{
			Port:    587,
			Timeout: 10 * time.Second,
		},
		Flags: map[string]bool{
			"forms.leads":   true,
			"forms.contact": true,
			"forms.careers": true,
		},
		Commands: CommandsConfig{
			Timeout: 10 * time.Second,
		},
		ImageGen: ImageGenConfig{
			Provider:  "openai",
			Size:      "1024x1024",
			Manifest:  "images.yaml",
			OutputDir: "public/images",
			Workers:   2,
			Timeout:   2 * time.Minute,
		},
		Features: Features{
			Logger:   true,
			AdminAPI: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Environment) {
	case EnvironmentDevelopment, EnvironmentProduction:
	default:
		return fmt.Errorf("%w: %q", ErrEnvironmentInvalid, cfg.Environment)
	}
	if strings.TrimSpace(cfg.Site.BaseURL) == "" {
		return ErrBaseURLRequired
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}

	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case "", "file", "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	switch repo := normalize(cfg.Content.Repository); repo {
	case "", "memory":
		if cfg.Cache.Enabled {
			return ErrCacheRequiresBunRepository
		}
	case "bun":
		if provider != "sqlite" && provider != "postgres" {
			return fmt.Errorf("%w: bun requires sqlite or postgres storage", ErrContentRepositoryUnknown)
		}
	default:
		return fmt.Errorf("%w: %s", ErrContentRepositoryUnknown, repo)
	}

	switch engine := normalize(cfg.Markdown.Engine); engine {
	case "", "lite", "goldmark":
	default:
		return fmt.Errorf("%w: %s", ErrMarkdownEngineUnknown, engine)
	}

	if cfg.Mail.Enabled {
		if strings.TrimSpace(cfg.Mail.Host) == "" {
			return ErrMailHostRequired
		}
		if strings.TrimSpace(cfg.Mail.From) == "" {
			return ErrMailSenderRequired
		}
		if len(cfg.Mail.To) == 0 {
			return ErrMailRecipientRequired
		}
	}

	if err := validation.ValidateSchema(cfg.Forms.CareerAnswersSchema); err != nil {
		return fmt.Errorf("%w: %v", ErrCareerSchemaInvalid, err)
	}

	switch p := normalize(cfg.ImageGen.Provider); p {
	case "", "openai", "replicate":
	default:
		return fmt.Errorf("%w: %s", ErrImageGenProviderUnknown, p)
	}
	if cfg.ImageGen.Workers < 0 {
		return ErrImageGenWorkersInvalid
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// IsDevelopment reports whether the config targets local development.
func (cfg Config) IsDevelopment() bool {
	return normalize(cfg.Environment) == EnvironmentDevelopment
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
