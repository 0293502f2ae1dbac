package mail

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/store"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// Config addresses notifications.
type Config struct {
	Enabled bool
	From    string
	To      []string
	// Timeout bounds a single delivery attempt.
	Timeout time.Duration
}

// Notifier sends notifications in the background and logs every outcome.
// Delivery failures are recorded, never returned.
type Notifier struct {
	cfg       Config
	transport Transport
	logs      *store.Collection[LogEntry]
	logger    interfaces.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithClock overrides the clock used for log timestamps and Date headers.
func WithClock(clock func() time.Time) NotifierOption {
	return func(n *Notifier) {
		if clock != nil {
			n.now = clock
		}
	}
}

// NewNotifier wires a notifier. A nil transport or disabled config records
// every notification as skipped.
func NewNotifier(cfg Config, transport Transport, s store.Store, logger interfaces.Logger, opts ...NotifierOption) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	n := &Notifier{
		cfg:       cfg,
		transport: transport,
		logs:      store.NewCollection[LogEntry](s, LogCollection),
		logger:    logging.WithCollection(logging.Or(logger), LogCollection),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Notify delivers msg on a background goroutine. The caller's cancellation
// does not abort delivery; Wait blocks until pending sends finish.
func (n *Notifier) Notify(ctx context.Context, msg Message) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.Send(ctx, msg)
	}()
}

// Send delivers msg synchronously and returns the recorded log entry.
func (n *Notifier) Send(ctx context.Context, msg Message) LogEntry {
	entry := LogEntry{
		ID:        uuid.NewString(),
		CreatedAt: n.now(),
		Subject:   headerValue(msg.Subject),
		To:        append([]string(nil), n.cfg.To...),
		Reference: msg.Reference,
	}

	switch {
	case !n.cfg.Enabled || n.transport == nil:
		entry.Status = StatusSkipped
		entry.ErrorCode = "disabled"
	case len(n.cfg.To) == 0:
		entry.Status = StatusSkipped
		entry.ErrorCode = "no_recipients"
	default:
		sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
		err := n.transport.Send(sendCtx, n.cfg.From, n.cfg.To, buildMessage(n.cfg.From, n.cfg.To, msg, entry.CreatedAt))
		cancel()
		if err != nil {
			entry.Status = StatusFailed
			entry.ErrorCode = errorCode(err)
			entry.ErrorMessage = err.Error()
		} else {
			entry.Status = StatusSent
		}
	}

	n.record(ctx, entry)
	return entry
}

// Wait blocks until every Notify call has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Logs returns the recorded delivery attempts, newest last.
func (n *Notifier) Logs(ctx context.Context) ([]LogEntry, error) {
	return n.logs.All(ctx)
}

func (n *Notifier) record(ctx context.Context, entry LogEntry) {
	switch entry.Status {
	case StatusFailed:
		n.logger.Error("mail.send.failed", "id", entry.ID, "reference", entry.Reference, "code", entry.ErrorCode, "error", entry.ErrorMessage)
	case StatusSkipped:
		n.logger.Debug("mail.send.skipped", "id", entry.ID, "reference", entry.Reference, "reason", entry.ErrorCode)
	default:
		n.logger.Info("mail.send.sent", "id", entry.ID, "reference", entry.Reference)
	}
	if err := n.logs.Append(ctx, entry); err != nil {
		n.logger.Warn("mail.log.append_failed", "id", entry.ID, "error", err)
	}
}

func errorCode(err error) string {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return strconv.Itoa(protoErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	return "send_failed"
}
