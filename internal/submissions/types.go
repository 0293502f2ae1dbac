package submissions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Kind identifies a submission form.
type Kind string

const (
	KindLead    Kind = "lead"
	KindContact Kind = "contact"
	KindCareer  Kind = "career"
)

// Status tracks admin triage of a submission.
type Status string

const (
	StatusNew       Status = "new"
	StatusReviewed  Status = "reviewed"
	StatusContacted Status = "contacted"
	StatusArchived  Status = "archived"
)

var (
	ErrUnknownKind   = errors.New("submissions: unknown kind")
	ErrInvalidStatus = errors.New("submissions: invalid status")
)

// ParseKind resolves a kind from its name or the plural used in URLs.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "lead", "leads":
		return KindLead, nil
	case "contact", "contacts":
		return KindContact, nil
	case "career", "careers", "application", "applications":
		return KindCareer, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Collection returns the store collection for kind.
func (k Kind) Collection() string {
	switch k {
	case KindLead:
		return "leads"
	case KindContact:
		return "contacts"
	case KindCareer:
		return "applications"
	}
	return ""
}

// ParseStatus validates a status name.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusNew, StatusReviewed, StatusContacted, StatusArchived:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// Envelope holds the fields every submission shares.
type Envelope struct {
	ID        string     `json:"id"`
	Type      Kind       `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
	Status    Status     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Meta exposes the envelope of any submission type.
func (e *Envelope) Meta() *Envelope {
	return e
}

// Submission is implemented by every submission type.
type Submission interface {
	Meta() *Envelope
	validation.Validatable
}

// Lead is a sales enquiry, optionally tied to gated content such as a
// whitepaper download.
type Lead struct {
	Envelope
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message,omitempty"`
	Interest  string `json:"interest,omitempty"`
	Reference string `json:"reference,omitempty"`
	Source    string `json:"source,omitempty"`
	Consent   bool   `json:"consent"`
}

func (l *Lead) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&l.Email, validation.Required, is.EmailFormat),
		validation.Field(&l.Company, validation.Length(0, 200)),
		validation.Field(&l.Phone, validation.Length(0, 50)),
		validation.Field(&l.Message, validation.Length(0, 5000)),
		validation.Field(&l.Source, validation.Length(0, 2000)),
	)
}

// Contact is a general enquiry from the contact form.
type Contact struct {
	Envelope
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (c *Contact) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Subject, validation.Length(0, 200)),
		validation.Field(&c.Message, validation.Required, validation.Length(1, 5000)),
	)
}

// CareerApplication is a job application. Answers holds position-specific
// questions and is checked against the configured schema.
type CareerApplication struct {
	Envelope
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Position    string         `json:"position"`
	ResumeURL   string         `json:"resume_url"`
	LinkedInURL string         `json:"linkedin_url,omitempty"`
	CoverLetter string         `json:"cover_letter,omitempty"`
	Answers     map[string]any `json:"answers,omitempty"`
}

func (a *CareerApplication) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.Email, validation.Required, is.EmailFormat),
		validation.Field(&a.Position, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.ResumeURL, validation.Required, is.URL),
		validation.Field(&a.LinkedInURL, is.URL),
		validation.Field(&a.CoverLetter, validation.Length(0, 10000)),
	)
}

// NotFoundError reports a missing submission.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s submission %q not found", e.Kind, e.ID)
}
