package runtimeconfig_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-site/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"environment", func(c *runtimeconfig.Config) { c.Environment = "staging" }, runtimeconfig.ErrEnvironmentInvalid},
		{"base url", func(c *runtimeconfig.Config) { c.Site.BaseURL = " " }, runtimeconfig.ErrBaseURLRequired},
		{"storage provider", func(c *runtimeconfig.Config) { c.Storage.Provider = "s3" }, runtimeconfig.ErrStorageProviderUnknown},
		{"postgres dsn", func(c *runtimeconfig.Config) { c.Storage.Provider = "postgres" }, runtimeconfig.ErrStorageDSNRequired},
		{"bun over file", func(c *runtimeconfig.Config) { c.Content.Repository = "bun" }, runtimeconfig.ErrContentRepositoryUnknown},
		{"cache without bun", func(c *runtimeconfig.Config) { c.Cache.Enabled = true }, runtimeconfig.ErrCacheRequiresBunRepository},
		{"markdown engine", func(c *runtimeconfig.Config) { c.Markdown.Engine = "blackfriday" }, runtimeconfig.ErrMarkdownEngineUnknown},
		{"mail host", func(c *runtimeconfig.Config) { c.Mail.Enabled = true }, runtimeconfig.ErrMailHostRequired},
		{"mail sender", func(c *runtimeconfig.Config) {
			c.Mail.Enabled = true
			c.Mail.Host = "smtp.example.com"
		}, runtimeconfig.ErrMailSenderRequired},
		{"mail recipient", func(c *runtimeconfig.Config) {
			c.Mail.Enabled = true
			c.Mail.Host = "smtp.example.com"
			c.Mail.From = "site@example.com"
		}, runtimeconfig.ErrMailRecipientRequired},
		{"career schema", func(c *runtimeconfig.Config) {
			c.Forms.CareerAnswersSchema = map[string]any{"type": 7}
		}, runtimeconfig.ErrCareerSchemaInvalid},
		{"imagegen provider", func(c *runtimeconfig.Config) { c.ImageGen.Provider = "dalle" }, runtimeconfig.ErrImageGenProviderUnknown},
		{"imagegen workers", func(c *runtimeconfig.Config) { c.ImageGen.Workers = -1 }, runtimeconfig.ErrImageGenWorkersInvalid},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "" }, runtimeconfig.ErrLoggingProviderRequired},
		{"logging unknown", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"logging level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"logging format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_SkipsLoggingChecksWhenFeatureDisabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = false
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected logging checks to be skipped, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	cfg, err := runtimeconfig.Load("testdata/site.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production environment")
	}
	if cfg.HTTP.Addr != ":9090" || cfg.HTTP.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected http config %+v", cfg.HTTP)
	}
	if cfg.HTTP.ReadTimeout != 10*time.Second {
		t.Fatalf("expected defaults to survive partial documents, got %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.Content.Routes["event"] != "/community/events/:slug" {
		t.Fatalf("unexpected routes %#v", cfg.Content.Routes)
	}
	if cfg.Cache.DefaultTTL != 30*time.Second {
		t.Fatalf("unexpected cache ttl %s", cfg.Cache.DefaultTTL)
	}
	if len(cfg.Mail.To) != 1 || cfg.Mail.To[0] != "sales@example.com" {
		t.Fatalf("unexpected recipients %#v", cfg.Mail.To)
	}
	if cfg.Flags["forms.careers"] {
		t.Fatalf("expected forms.careers to be disabled")
	}
	if cfg.Forms.CareerAnswersSchema == nil {
		t.Fatalf("expected career schema to load")
	}
}

func TestLoadTOML(t *testing.T) {
	cfg, err := runtimeconfig.Load("testdata/site.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.BaseURL != "https://example.org" || cfg.HTTP.Addr != ":7070" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.HTTP.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.Markdown.Engine != "goldmark" || len(cfg.Markdown.Extensions) != 2 {
		t.Fatalf("unexpected markdown config %+v", cfg.Markdown)
	}
}

func TestDecodeRejectsUnknownKeysAndFormats(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.Decode(&cfg, ".yaml", []byte("nope: true")); err == nil {
		t.Fatalf("expected unknown key error")
	}
	err := runtimeconfig.Decode(&cfg, ".json", []byte("{}"))
	if !errors.Is(err, runtimeconfig.ErrConfigFormatUnknown) {
		t.Fatalf("expected ErrConfigFormatUnknown, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SITE_ENV":          "production",
		"SITE_ADMIN_TOKEN":  "token",
		"SITE_SMTP_PORT":    "2525",
		"SITE_MAIL_ENABLED": "true",
		"SITE_MAIL_TO":      "a@example.com, b@example.com,",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Environment != "production" || cfg.HTTP.AdminToken != "token" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.Mail.Port != 2525 || !cfg.Mail.Enabled || len(cfg.Mail.To) != 2 {
		t.Fatalf("unexpected mail overrides %+v", cfg.Mail)
	}

	env["SITE_SMTP_PORT"] = "many"
	err := runtimeconfig.ApplyEnv(&cfg, lookup)
	if err == nil || !strings.Contains(err.Error(), "SITE_SMTP_PORT") {
		t.Fatalf("expected parse error naming the variable, got %v", err)
	}
}
