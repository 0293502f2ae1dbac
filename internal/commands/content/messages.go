package contentcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site/internal/content"
)

const syncContentMessageType = "site.content.sync"

// SyncContentCommand imports the markdown tree under Directory into the
// content repository. Result, when set, receives the import summary.
type SyncContentCommand struct {
	Directory     string              `json:"directory"`
	IncludeDrafts bool                `json:"include_drafts,omitempty"`
	Result        *content.SyncResult `json:"-"`
}

// Type implements command.Message.
func (SyncContentCommand) Type() string { return syncContentMessageType }

// Validate ensures a directory is present before handlers execute.
func (m SyncContentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Directory, validation.Required.Error("directory is required")),
	)
}
