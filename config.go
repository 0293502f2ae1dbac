package site

import (
	"os"
	"strings"

	"github.com/goliatone/go-site/internal/runtimeconfig"
)

var (
	ErrEnvironmentInvalid         = runtimeconfig.ErrEnvironmentInvalid
	ErrBaseURLRequired            = runtimeconfig.ErrBaseURLRequired
	ErrHTTPAddrRequired           = runtimeconfig.ErrHTTPAddrRequired
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrContentRepositoryUnknown   = runtimeconfig.ErrContentRepositoryUnknown
	ErrCacheRequiresBunRepository = runtimeconfig.ErrCacheRequiresBunRepository
	ErrMarkdownEngineUnknown      = runtimeconfig.ErrMarkdownEngineUnknown
	ErrMailHostRequired           = runtimeconfig.ErrMailHostRequired
	ErrMailSenderRequired         = runtimeconfig.ErrMailSenderRequired
	ErrMailRecipientRequired      = runtimeconfig.ErrMailRecipientRequired
	ErrCareerSchemaInvalid        = runtimeconfig.ErrCareerSchemaInvalid
	ErrImageGenProviderUnknown    = runtimeconfig.ErrImageGenProviderUnknown
	ErrImageGenWorkersInvalid     = runtimeconfig.ErrImageGenWorkersInvalid
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	SiteConfig     = runtimeconfig.SiteConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	StorageConfig  = runtimeconfig.StorageConfig
	ContentConfig  = runtimeconfig.ContentConfig
	CacheConfig    = runtimeconfig.CacheConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	MailConfig     = runtimeconfig.MailConfig
	FormsConfig    = runtimeconfig.FormsConfig
	CommandsConfig = runtimeconfig.CommandsConfig
	ImageGenConfig = runtimeconfig.ImageGenConfig
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML or TOML config file and applies SITE_* environment
// overrides. An empty path starts from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := runtimeconfig.DefaultConfig()
	if strings.TrimSpace(path) != "" {
		loaded, err := runtimeconfig.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := runtimeconfig.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}
