package submissioncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site/internal/submissions"
)

const (
	submitLeadMessageType    = "site.submissions.submit_lead"
	submitContactMessageType = "site.submissions.submit_contact"
	submitCareerMessageType  = "site.submissions.submit_career"
	updateStatusMessageType  = "site.submissions.update_status"
)

// SubmitLeadCommand accepts a lead form. Receipt, when set, receives the
// submission receipt.
type SubmitLeadCommand struct {
	Lead    submissions.Lead     `json:"lead"`
	Receipt *submissions.Receipt `json:"-"`
}

// Type implements command.Message.
func (SubmitLeadCommand) Type() string { return submitLeadMessageType }

// SubmitContactCommand accepts a contact form.
type SubmitContactCommand struct {
	Contact submissions.Contact  `json:"contact"`
	Receipt *submissions.Receipt `json:"-"`
}

// Type implements command.Message.
func (SubmitContactCommand) Type() string { return submitContactMessageType }

// SubmitCareerCommand accepts a job application.
type SubmitCareerCommand struct {
	Application submissions.CareerApplication `json:"application"`
	Receipt     *submissions.Receipt          `json:"-"`
}

// Type implements command.Message.
func (SubmitCareerCommand) Type() string { return submitCareerMessageType }

// UpdateStatusCommand moves a submission through admin triage.
type UpdateStatusCommand struct {
	Kind   submissions.Kind   `json:"kind"`
	ID     string             `json:"id"`
	Status submissions.Status `json:"status"`
	// Result, when set, receives the updated submission.
	Result *submissions.Submission `json:"-"`
}

// Type implements command.Message.
func (UpdateStatusCommand) Type() string { return updateStatusMessageType }

// Validate ensures the target and status are well formed before handlers execute.
func (m UpdateStatusCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Kind, validation.Required, validation.By(func(value any) error {
			if _, err := submissions.ParseKind(string(value.(submissions.Kind))); err != nil {
				return validation.NewError("site.submissions.kind_invalid", "unknown submission kind")
			}
			return nil
		})),
		validation.Field(&m.ID, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("site.submissions.id_required", "id is required")
			}
			return nil
		})),
		validation.Field(&m.Status, validation.Required, validation.By(func(value any) error {
			if _, err := submissions.ParseStatus(string(value.(submissions.Status))); err != nil {
				return validation.NewError("site.submissions.status_invalid", "unknown status")
			}
			return nil
		})),
	)
}
