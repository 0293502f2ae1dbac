package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-site/internal/yamlutil"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SITE_"

var ErrConfigFormatUnknown = errors.New("site config: unsupported config file extension")

// Load reads path on top of DefaultConfig. YAML (.yaml, .yml) and TOML
// (.toml) files are accepted; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("site config: read %s: %w", path, err)
	}
	if err := Decode(&cfg, filepath.Ext(path), data); err != nil {
		return cfg, fmt.Errorf("site config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges data in the format named by ext into cfg.
func Decode(cfg *Config, ext string, data []byte) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		return yamlutil.UnmarshalStrict(data, cfg)
	case "toml":
		// TOML documents are re-encoded as YAML so both formats share field
		// names, duration parsing and strict key checks.
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("toml: %w", err)
		}
		if len(doc) == 0 {
			return nil
		}
		encoded, err := yamlutil.Marshal(doc)
		if err != nil {
			return err
		}
		return yamlutil.UnmarshalStrict(encoded, cfg)
	default:
		return fmt.Errorf("%w: %q", ErrConfigFormatUnknown, ext)
	}
}

type envBinding struct {
	name  string
	apply func(cfg *Config, value string) error
}

var envBindings = []envBinding{
	{"ENV", func(c *Config, v string) error { c.Environment = v; return nil }},
	{"BASE_URL", func(c *Config, v string) error { c.Site.BaseURL = v; return nil }},
	{"HTTP_ADDR", func(c *Config, v string) error { c.HTTP.Addr = v; return nil }},
	{"ADMIN_TOKEN", func(c *Config, v string) error { c.HTTP.AdminToken = v; return nil }},
	{"STORAGE_PROVIDER", func(c *Config, v string) error { c.Storage.Provider = v; return nil }},
	{"STORAGE_DIR", func(c *Config, v string) error { c.Storage.Dir = v; return nil }},
	{"STORAGE_DSN", func(c *Config, v string) error { c.Storage.DSN = v; return nil }},
	{"CONTENT_DIR", func(c *Config, v string) error { c.Content.Dir = v; return nil }},
	{"MARKDOWN_ENGINE", func(c *Config, v string) error { c.Markdown.Engine = v; return nil }},
	{"SMTP_HOST", func(c *Config, v string) error { c.Mail.Host = v; return nil }},
	{"SMTP_PORT", func(c *Config, v string) error { return setInt(&c.Mail.Port, v) }},
	{"SMTP_USERNAME", func(c *Config, v string) error { c.Mail.Username = v; return nil }},
	{"SMTP_PASSWORD", func(c *Config, v string) error { c.Mail.Password = v; return nil }},
	{"MAIL_ENABLED", func(c *Config, v string) error { return setBool(&c.Mail.Enabled, v) }},
	{"MAIL_FROM", func(c *Config, v string) error { c.Mail.From = v; return nil }},
	{"MAIL_TO", func(c *Config, v string) error { c.Mail.To = splitList(v); return nil }},
	{"LOG_PROVIDER", func(c *Config, v string) error { c.Logging.Provider = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Logging.Level = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Logging.Format = v; return nil }},
	{"IMAGEGEN_PROVIDER", func(c *Config, v string) error { c.ImageGen.Provider = v; return nil }},
	{"IMAGEGEN_TOKEN", func(c *Config, v string) error { c.ImageGen.Token = v; return nil }},
	{"IMAGEGEN_TIMEOUT", func(c *Config, v string) error { return setDuration(&c.ImageGen.Timeout, v) }},
}

// ApplyEnv overrides cfg from SITE_* variables found through lookup.
// A nil lookup reads the process environment.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, binding := range envBindings {
		value, ok := lookup(EnvPrefix + binding.name)
		if !ok {
			continue
		}
		if err := binding.apply(cfg, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("site config: %s%s: %w", EnvPrefix, binding.name, err)
		}
	}
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
