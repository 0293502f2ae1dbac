package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-site/pkg/interfaces"
)

const (
	rootModule        = "site"
	contentModule     = "site.content"
	markdownModule    = "site.markdown"
	storeModule       = "site.store"
	submissionsModule = "site.submissions"
	mailModule        = "site.mail"
	flagsModule       = "site.flags"
	httpModule        = "site.http"
	imagegenModule    = "site.imagegen"
)

const (
	fieldCollection = "collection"
	fieldKind       = "kind"
	fieldSlug       = "slug"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger carries the
// module identifier as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ContentLogger returns the logger namespace reserved for content services.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// MarkdownLogger returns the logger namespace reserved for markdown rendering.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// StoreLogger returns the logger namespace reserved for collection storage.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// SubmissionsLogger returns the logger namespace reserved for form submissions.
func SubmissionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, submissionsModule)
}

// MailLogger returns the logger namespace reserved for outbound email.
func MailLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mailModule)
}

// FlagsLogger returns the logger namespace reserved for feature flags.
func FlagsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, flagsModule)
}

// HTTPLogger returns the logger namespace reserved for HTTP handlers.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// ImagegenLogger returns the logger namespace reserved for image generation.
func ImagegenLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, imagegenModule)
}

// WithCollection tags a logger with the collection name it operates on.
func WithCollection(logger interfaces.Logger, collection string) interfaces.Logger {
	if trimmed := strings.TrimSpace(collection); trimmed != "" {
		return WithFields(logger, map[string]any{fieldCollection: trimmed})
	}
	return logger
}

// WithContentContext enriches the logger with content kind and slug. Empty
// values are ignored.
func WithContentContext(logger interfaces.Logger, kind, slug string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(kind); trimmed != "" {
		fields[fieldKind] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldSlug] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
