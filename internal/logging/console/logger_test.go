package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: console.LevelDebug,
	})

	logger := logging.WithFields(provider.GetLogger("site.mail"), map[string]any{"module": "site.mail"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"request_id": "req-1234",
	})
	logger = logger.WithContext(ctx)

	logger.Error("mail.send.failed",
		"to", "sales@example.com",
		"error", errors.New("dial tcp: timeout"),
	)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z ERROR mail.send.failed error="dial tcp: timeout" logger=site.mail module=site.mail request_id=req-1234 to=sales@example.com`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		MinLevel: console.LevelInfo,
	})

	logger := provider.GetLogger("site.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info foo=bar") {
		t.Fatalf("expected info log to be written, got %s", lines[0])
	}
}

func TestConsoleLogger_OddArgsArePositional(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("site.test").Info("odd", "key", 1, "dangling")

	if !strings.Contains(buf.String(), "field_1=dangling") {
		t.Fatalf("expected dangling arg to be kept, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, ok := console.ParseLevel("WARNING"); !ok || lvl != console.LevelWarn {
		t.Fatalf("expected warn level, got %v %v", lvl, ok)
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}
