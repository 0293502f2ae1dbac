package imagegencmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-site/internal/commands"
	"github.com/goliatone/go-site/internal/imagegen"
	"github.com/goliatone/go-site/pkg/interfaces"
)

const generateImagesMessageType = "site.imagegen.generate"

// GenerateImagesCommand runs an image manifest. Manifest is a path to a YAML
// file; Report, when set, receives the run summary.
type GenerateImagesCommand struct {
	Manifest  string           `json:"manifest"`
	OutputDir string           `json:"output_dir"`
	Workers   int              `json:"workers,omitempty"`
	Force     bool             `json:"force,omitempty"`
	Only      []string         `json:"only,omitempty"`
	Report    *imagegen.Report `json:"-"`
}

// Type implements command.Message.
func (GenerateImagesCommand) Type() string { return generateImagesMessageType }

// Validate implements command.Message validation.
func (m GenerateImagesCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Manifest, validation.By(nonBlank)),
		validation.Field(&m.OutputDir, validation.By(nonBlank)),
		validation.Field(&m.Workers, validation.Min(0)),
	)
}

func nonBlank(value any) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}

// Runner executes a manifest against a provider.
type Runner interface {
	Run(ctx context.Context, manifest *imagegen.Manifest, opts imagegen.Options) (imagegen.Report, error)
}

var _ command.Commander[GenerateImagesCommand] = (*GenerateImagesHandler)(nil)

// GenerateImagesHandler loads the manifest and runs the generator. Image
// failures surface as an execution error after the report is delivered.
type GenerateImagesHandler struct {
	inner *commands.Handler[GenerateImagesCommand]
}

// NewGenerateImagesHandler builds the handler. perImage bounds each provider
// call; the command itself runs without a deadline unless opts add one.
func NewGenerateImagesHandler(runner Runner, perImage time.Duration, logger interfaces.Logger, opts ...commands.HandlerOption[GenerateImagesCommand]) *GenerateImagesHandler {
	exec := func(ctx context.Context, msg GenerateImagesCommand) error {
		manifest, err := imagegen.LoadManifest(msg.Manifest)
		if err != nil {
			return err
		}
		report, err := runner.Run(ctx, manifest, imagegen.Options{
			OutputDir: msg.OutputDir,
			Workers:   msg.Workers,
			Timeout:   perImage,
			Force:     msg.Force,
			Only:      msg.Only,
		})
		if msg.Report != nil {
			*msg.Report = report
		}
		if err != nil {
			return err
		}
		return report.Err()
	}
	handlerOpts := append([]commands.HandlerOption[GenerateImagesCommand]{
		commands.WithLogger[GenerateImagesCommand](logger),
		commands.WithOperation[GenerateImagesCommand]("imagegen.generate"),
		commands.WithTimeout[GenerateImagesCommand](0),
	}, opts...)
	return &GenerateImagesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[GenerateImagesCommand].Execute.
func (h *GenerateImagesHandler) Execute(ctx context.Context, msg GenerateImagesCommand) error {
	return h.inner.Execute(ctx, msg)
}
