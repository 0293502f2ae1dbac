package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-site/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "site.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, submissionsModule)

	if len(provider.requested) != 1 || provider.requested[0] != submissionsModule {
		t.Fatalf("expected module %s, got %v", submissionsModule, provider.requested)
	}
	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}
	if got := rec.fields[0]["module"]; got != submissionsModule {
		t.Fatalf("expected module field %s, got %v", submissionsModule, got)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestWithContentContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}

	_ = WithContentContext(rec, "blog", " ")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	if rec.fields[0][fieldKind] != "blog" {
		t.Fatalf("expected kind field, got %v", rec.fields[0])
	}
	if _, ok := rec.fields[0][fieldSlug]; ok {
		t.Fatalf("expected empty slug to be skipped, got %v", rec.fields[0])
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	ctx = ContextWithFields(ctx, map[string]any{"route": "/api/leads"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "req-1" || fields["route"] != "/api/leads" {
		t.Fatalf("expected merged fields, got %v", fields)
	}
	if RequestID(ctx) != "req-1" {
		t.Fatalf("expected request id req-1, got %q", RequestID(ctx))
	}

	fields["request_id"] = "mutated"
	if RequestID(ctx) != "req-1" {
		t.Fatalf("expected context fields to be copied")
	}
}
