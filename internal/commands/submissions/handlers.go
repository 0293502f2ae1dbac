package submissioncmd

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-site/internal/commands"
	"github.com/goliatone/go-site/internal/submissions"
	"github.com/goliatone/go-site/pkg/interfaces"
)

var (
	_ command.Commander[SubmitLeadCommand]    = (*SubmitLeadHandler)(nil)
	_ command.Commander[SubmitContactCommand] = (*SubmitContactHandler)(nil)
	_ command.Commander[SubmitCareerCommand]  = (*SubmitCareerHandler)(nil)
	_ command.Commander[UpdateStatusCommand]  = (*UpdateStatusHandler)(nil)
)

// Service is the submission surface the handlers depend on.
type Service interface {
	SubmitLead(ctx context.Context, lead submissions.Lead) (*submissions.Receipt, error)
	SubmitContact(ctx context.Context, contact submissions.Contact) (*submissions.Receipt, error)
	SubmitCareer(ctx context.Context, application submissions.CareerApplication) (*submissions.Receipt, error)
	UpdateStatus(ctx context.Context, kind submissions.Kind, id string, status submissions.Status) (submissions.Submission, error)
}

// SubmitLeadHandler runs lead submissions through the shared command handler.
type SubmitLeadHandler struct {
	inner *commands.Handler[SubmitLeadCommand]
}

func NewSubmitLeadHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitLeadCommand]) *SubmitLeadHandler {
	exec := func(ctx context.Context, msg SubmitLeadCommand) error {
		receipt, err := service.SubmitLead(ctx, msg.Lead)
		return deliver(msg.Receipt, receipt, err)
	}
	handlerOpts := append([]commands.HandlerOption[SubmitLeadCommand]{
		commands.WithLogger[SubmitLeadCommand](logger),
		commands.WithOperation[SubmitLeadCommand]("submissions.submit_lead"),
	}, opts...)
	return &SubmitLeadHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SubmitLeadCommand].Execute.
func (h *SubmitLeadHandler) Execute(ctx context.Context, msg SubmitLeadCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SubmitContactHandler runs contact submissions through the shared command handler.
type SubmitContactHandler struct {
	inner *commands.Handler[SubmitContactCommand]
}

func NewSubmitContactHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitContactCommand]) *SubmitContactHandler {
	exec := func(ctx context.Context, msg SubmitContactCommand) error {
		receipt, err := service.SubmitContact(ctx, msg.Contact)
		return deliver(msg.Receipt, receipt, err)
	}
	handlerOpts := append([]commands.HandlerOption[SubmitContactCommand]{
		commands.WithLogger[SubmitContactCommand](logger),
		commands.WithOperation[SubmitContactCommand]("submissions.submit_contact"),
	}, opts...)
	return &SubmitContactHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *SubmitContactHandler) Execute(ctx context.Context, msg SubmitContactCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SubmitCareerHandler runs job applications through the shared command handler.
type SubmitCareerHandler struct {
	inner *commands.Handler[SubmitCareerCommand]
}

func NewSubmitCareerHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitCareerCommand]) *SubmitCareerHandler {
	exec := func(ctx context.Context, msg SubmitCareerCommand) error {
		receipt, err := service.SubmitCareer(ctx, msg.Application)
		return deliver(msg.Receipt, receipt, err)
	}
	handlerOpts := append([]commands.HandlerOption[SubmitCareerCommand]{
		commands.WithLogger[SubmitCareerCommand](logger),
		commands.WithOperation[SubmitCareerCommand]("submissions.submit_career"),
	}, opts...)
	return &SubmitCareerHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *SubmitCareerHandler) Execute(ctx context.Context, msg SubmitCareerCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateStatusHandler applies admin status changes.
type UpdateStatusHandler struct {
	inner *commands.Handler[UpdateStatusCommand]
}

func NewUpdateStatusHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateStatusCommand]) *UpdateStatusHandler {
	exec := func(ctx context.Context, msg UpdateStatusCommand) error {
		kind, err := submissions.ParseKind(string(msg.Kind))
		if err != nil {
			return err
		}
		updated, err := service.UpdateStatus(ctx, kind, msg.ID, msg.Status)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = updated
		}
		return nil
	}
	handlerOpts := append([]commands.HandlerOption[UpdateStatusCommand]{
		commands.WithLogger[UpdateStatusCommand](logger),
		commands.WithOperation[UpdateStatusCommand]("submissions.update_status"),
	}, opts...)
	return &UpdateStatusHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *UpdateStatusHandler) Execute(ctx context.Context, msg UpdateStatusCommand) error {
	return h.inner.Execute(ctx, msg)
}

// HandlerSet groups the submission handlers.
type HandlerSet struct {
	Lead         *SubmitLeadHandler
	Contact      *SubmitContactHandler
	Career       *SubmitCareerHandler
	UpdateStatus *UpdateStatusHandler
}

// NewHandlerSet builds every submission handler with a shared logger and timeout.
func NewHandlerSet(service Service, provider interfaces.LoggerProvider, timeout time.Duration) *HandlerSet {
	logger := commands.CommandLogger(provider, "submissions")
	return &HandlerSet{
		Lead:         NewSubmitLeadHandler(service, logger, commands.WithTimeout[SubmitLeadCommand](timeout)),
		Contact:      NewSubmitContactHandler(service, logger, commands.WithTimeout[SubmitContactCommand](timeout)),
		Career:       NewSubmitCareerHandler(service, logger, commands.WithTimeout[SubmitCareerCommand](timeout)),
		UpdateStatus: NewUpdateStatusHandler(service, logger, commands.WithTimeout[UpdateStatusCommand](timeout)),
	}
}

// Handlers lists the handlers for dispatcher registration.
func (s *HandlerSet) Handlers() []any {
	return []any{s.Lead, s.Contact, s.Career, s.UpdateStatus}
}

func deliver(dst *submissions.Receipt, receipt *submissions.Receipt, err error) error {
	if err != nil {
		return err
	}
	if dst != nil && receipt != nil {
		*dst = *receipt
	}
	return nil
}
