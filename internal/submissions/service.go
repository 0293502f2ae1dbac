// Package submissions accepts lead, contact and career forms and exposes
// them to the admin dashboard.
package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/mail"
	"github.com/goliatone/go-site/internal/store"
	"github.com/goliatone/go-site/internal/validation"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// ErrFormDisabled is returned when the form's feature flag is off.
var ErrFormDisabled = errors.New("submissions: form is disabled")

// Notifier sends submission notifications without blocking.
type Notifier interface {
	Notify(ctx context.Context, msg mail.Message)
}

// Gate reports whether a feature flag is on.
type Gate interface {
	Enabled(ctx context.Context, name string) bool
}

// Receipt acknowledges a submission.
type Receipt struct {
	ID        string    `json:"id"`
	Type      Kind      `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	// Stored is false when persistence failed; the submission was still
	// accepted and the notification still sent.
	Stored bool `json:"stored"`
}

// Service validates, persists and announces submissions.
type Service struct {
	store        store.Store
	notifier     Notifier
	gate         Gate
	careerSchema *validation.Schema
	logger       interfaces.Logger
	now          func() time.Time
	newID        func() string
}

// Option configures the service.
type Option func(*Service)

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithGate enables feature flag checks per form.
func WithGate(g Gate) Option {
	return func(s *Service) { s.gate = g }
}

// WithCareerSchema validates career answers against schema.
func WithCareerSchema(schema *validation.Schema) Option {
	return func(s *Service) { s.careerSchema = schema }
}

// WithClock overrides the clock used to stamp envelopes.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides submission id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) { s.logger = logging.Or(logger) }
}

// NewService builds a submission service over st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: logging.NoOp(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// FlagName returns the feature flag gating kind.
func FlagName(kind Kind) string {
	switch kind {
	case KindLead:
		return "forms.leads"
	case KindContact:
		return "forms.contact"
	case KindCareer:
		return "forms.careers"
	}
	return ""
}

func (s *Service) SubmitLead(ctx context.Context, lead Lead) (*Receipt, error) {
	return s.submit(ctx, KindLead, &lead, leadMessage(&lead))
}

func (s *Service) SubmitContact(ctx context.Context, contact Contact) (*Receipt, error) {
	return s.submit(ctx, KindContact, &contact, contactMessage(&contact))
}

func (s *Service) SubmitCareer(ctx context.Context, application CareerApplication) (*Receipt, error) {
	if err := s.careerSchema.Validate(application.Answers); err != nil {
		var payloadErr *validation.PayloadValidationError
		if errors.As(err, &payloadErr) {
			for i := range payloadErr.Issues {
				payloadErr.Issues[i].Location = "/answers" + payloadErr.Issues[i].Location
			}
		}
		return nil, err
	}
	return s.submit(ctx, KindCareer, &application, careerMessage(&application))
}

func (s *Service) submit(ctx context.Context, kind Kind, sub Submission, msg mail.Message) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.gate != nil && !s.gate.Enabled(ctx, FlagName(kind)) {
		return nil, fmt.Errorf("%w: %s", ErrFormDisabled, kind)
	}
	if err := sub.Validate(); err != nil {
		return nil, validation.FromFieldErrors(err)
	}

	env := sub.Meta()
	env.ID = s.newID()
	env.Type = kind
	env.CreatedAt = s.now()
	env.Status = StatusNew
	env.UpdatedAt = nil

	receipt := &Receipt{ID: env.ID, Type: kind, CreatedAt: env.CreatedAt, Stored: true}
	logger := logging.WithCollection(s.logger, kind.Collection())
	if err := store.NewCollection[Submission](s.store, kind.Collection()).Append(ctx, sub); err != nil {
		receipt.Stored = false
		logger.Error("submissions.store.failed", "id", env.ID, "error", err)
	}

	if s.notifier != nil {
		msg.Reference = env.ID
		s.notifier.Notify(ctx, msg)
	}
	logger.Info("submissions.received", "id", env.ID, "stored", receipt.Stored)
	return receipt, nil
}

// List returns every submission of kind in arrival order.
func (s *Service) List(ctx context.Context, kind Kind) ([]Submission, error) {
	switch kind {
	case KindLead:
		return listAs[Lead](ctx, s.store, kind)
	case KindContact:
		return listAs[Contact](ctx, s.store, kind)
	case KindCareer:
		return listAs[CareerApplication](ctx, s.store, kind)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Get returns one submission by id.
func (s *Service) Get(ctx context.Context, kind Kind, id string) (Submission, error) {
	items, err := s.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Meta().ID == id {
			return item, nil
		}
	}
	return nil, &NotFoundError{Kind: kind, ID: id}
}

// UpdateStatus moves a submission to status and returns the updated record.
func (s *Service) UpdateStatus(ctx context.Context, kind Kind, id string, status Status) (Submission, error) {
	if kind.Collection() == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	updated, err := s.store.UpdateByField(ctx, kind.Collection(), "id", id, store.Record{
		"status":     status,
		"updated_at": s.now(),
	})
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, &NotFoundError{Kind: kind, ID: id}
	}
	logging.WithCollection(s.logger, kind.Collection()).Info("submissions.status.updated", "id", id, "status", status)
	return s.Get(ctx, kind, id)
}

func listAs[T any, P interface {
	*T
	Submission
}](ctx context.Context, st store.Store, kind Kind) ([]Submission, error) {
	items, err := store.NewCollection[T](st, kind.Collection()).All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Submission, 0, len(items))
	for i := range items {
		out = append(out, P(&items[i]))
	}
	return out, nil
}
