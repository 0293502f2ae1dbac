package mail

import (
	"context"
	"errors"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-site/internal/store"
)

type recordingTransport struct {
	mu       sync.Mutex
	err      error
	from     string
	to       []string
	messages []string
}

func (r *recordingTransport) Send(_ context.Context, from string, to []string, message []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.from = from
	r.to = to
	r.messages = append(r.messages, string(message))
	return r.err
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func enabledConfig() Config {
	return Config{Enabled: true, From: "site@example.com", To: []string{"sales@example.com"}}
}

func TestNotifierSendRecordsSuccess(t *testing.T) {
	ctx := context.Background()
	transport := &recordingTransport{}
	s := store.NewMemoryStore()
	n := NewNotifier(enabledConfig(), transport, s, nil, WithClock(fixedClock))

	entry := n.Send(ctx, Message{Subject: "New lead\r\nBcc: evil@example.com", Body: "Hello\nWorld", Reference: "lead-1"})
	if entry.Status != StatusSent {
		t.Fatalf("expected sent status, got %+v", entry)
	}
	if transport.from != "site@example.com" || len(transport.to) != 1 {
		t.Fatalf("unexpected envelope %s %v", transport.from, transport.to)
	}
	msg := transport.messages[0]
	if strings.Contains(msg, "\r\nBcc:") {
		t.Fatalf("expected header injection to be neutralised, got %q", msg)
	}
	if !strings.Contains(msg, "Subject: New lead Bcc: evil@example.com\r\n") {
		t.Fatalf("expected flattened subject, got %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nHello\r\nWorld\r\n") {
		t.Fatalf("expected CRLF body, got %q", msg)
	}

	logs, err := n.Logs(ctx)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Reference != "lead-1" || !logs[0].CreatedAt.Equal(fixedClock()) {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestNotifierRecordsFailureCodes(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		err  error
		code string
	}{
		{&textproto.Error{Code: 550, Msg: "mailbox unavailable"}, "550"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "send_failed"},
	}
	for _, tc := range cases {
		n := NewNotifier(enabledConfig(), &recordingTransport{err: tc.err}, store.NewMemoryStore(), nil)
		entry := n.Send(ctx, Message{Subject: "x"})
		if entry.Status != StatusFailed || entry.ErrorCode != tc.code || entry.ErrorMessage == "" {
			t.Fatalf("unexpected entry for %v: %+v", tc.err, entry)
		}
	}
}

func TestNotifierSkipsWhenDisabled(t *testing.T) {
	ctx := context.Background()
	transport := &recordingTransport{}
	n := NewNotifier(Config{From: "a@example.com", To: []string{"b@example.com"}}, transport, store.NewMemoryStore(), nil)

	entry := n.Send(ctx, Message{Subject: "x"})
	if entry.Status != StatusSkipped || entry.ErrorCode != "disabled" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(transport.messages) != 0 {
		t.Fatalf("expected no delivery when disabled")
	}

	n = NewNotifier(Config{Enabled: true, From: "a@example.com"}, transport, store.NewMemoryStore(), nil)
	if entry := n.Send(ctx, Message{Subject: "x"}); entry.ErrorCode != "no_recipients" {
		t.Fatalf("expected no_recipients, got %+v", entry)
	}
}

func TestNotifyRunsInBackgroundAndSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := &recordingTransport{}
	s := store.NewMemoryStore()
	n := NewNotifier(enabledConfig(), transport, s, nil)

	for i := 0; i < 5; i++ {
		n.Notify(ctx, Message{Subject: "bulk"})
	}
	cancel()
	n.Wait()

	logs, err := n.Logs(context.Background())
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logs) != 5 {
		t.Fatalf("expected 5 log entries, got %d", len(logs))
	}
	for _, entry := range logs {
		if entry.Status != StatusSent {
			t.Fatalf("expected all sends to succeed, got %+v", entry)
		}
	}
}
