package contentcmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-site/internal/commands"
	"github.com/goliatone/go-site/internal/content"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

const syncOperation = "content.sync"

var _ command.Commander[SyncContentCommand] = (*SyncContentHandler)(nil)

// Syncer imports a content tree.
type Syncer interface {
	Sync(ctx context.Context, fsys fs.FS, opts content.LoadOptions) (*content.SyncResult, error)
}

// SyncContentHandler runs content imports through the shared command handler.
type SyncContentHandler struct {
	inner *commands.Handler[SyncContentCommand]
}

// NewSyncContentHandler creates a handler bound to the supplied content service.
func NewSyncContentHandler(service Syncer, logger interfaces.Logger, opts ...commands.HandlerOption[SyncContentCommand]) *SyncContentHandler {
	baseLogger := logging.Or(logger)

	exec := func(ctx context.Context, msg SyncContentCommand) error {
		info, err := os.Stat(msg.Directory)
		if err != nil {
			return fmt.Errorf("content dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("content dir: %s is not a directory", msg.Directory)
		}

		result, err := service.Sync(ctx, os.DirFS(msg.Directory), content.LoadOptions{IncludeDrafts: msg.IncludeDrafts})
		if msg.Result != nil && result != nil {
			*msg.Result = *result
		}
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"directory":      msg.Directory,
			"imported_count": result.Imported,
			"skipped_count":  len(result.Skipped),
			"include_drafts": msg.IncludeDrafts,
		}).Info("content.command.sync.completed")
		return nil
	}

	handlerOpts := append([]commands.HandlerOption[SyncContentCommand]{
		commands.WithLogger[SyncContentCommand](baseLogger),
		commands.WithOperation[SyncContentCommand](syncOperation),
	}, opts...)
	return &SyncContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SyncContentCommand].
func (h *SyncContentHandler) Execute(ctx context.Context, msg SyncContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
