package imagegen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-site/internal/identity"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// ErrNoImagesSelected is returned when Only matches nothing in the manifest.
var ErrNoImagesSelected = errors.New("imagegen: no images selected")

// Result statuses.
const (
	StatusGenerated = "generated"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Options configures a generation run.
type Options struct {
	OutputDir string
	Workers   int
	// Timeout bounds each provider call.
	Timeout time.Duration
	// Force regenerates images that already exist on disk.
	Force bool
	// Only restricts the run to the given category/name keys or categories.
	Only []string
}

// Result reports the outcome for one image.
type Result struct {
	ID       uuid.UUID     `json:"id"`
	Key      string        `json:"key"`
	Path     string        `json:"path"`
	Status   string        `json:"status"`
	Bytes    int           `json:"bytes,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Report summarizes a run. Results follow manifest order.
type Report struct {
	Results   []Result `json:"results"`
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
}

// Err returns a non-nil error when any image failed.
func (r Report) Err() error {
	if r.Failed == 0 {
		return nil
	}
	var errs []error
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s: %s", res.Key, res.Error))
		}
	}
	return errors.Join(errs...)
}

// Generator runs a manifest against a provider with a bounded worker pool.
type Generator struct {
	provider Provider
	logger   interfaces.Logger
}

func NewGenerator(provider Provider, logger interfaces.Logger) *Generator {
	return &Generator{provider: provider, logger: logging.Or(logger)}
}

// Run generates every selected image of manifest. Individual failures are
// reported, not returned; the error is reserved for invalid options and
// cancellation.
func (g *Generator) Run(ctx context.Context, manifest *Manifest, opts Options) (Report, error) {
	if g.provider == nil {
		return Report{}, errors.New("imagegen: provider is required")
	}
	if manifest == nil {
		return Report{}, errors.New("imagegen: manifest is required")
	}
	if opts.OutputDir == "" {
		return Report{}, errors.New("imagegen: output dir is required")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	specs := selectSpecs(manifest, opts.Only)
	if len(opts.Only) > 0 && len(specs) == 0 {
		return Report{}, fmt.Errorf("%w by %s; known images: %s", ErrNoImagesSelected,
			strings.Join(opts.Only, ","), strings.Join(manifest.Keys(), ", "))
	}
	results := make([]Result, len(specs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(opts.Workers, max(len(specs), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = g.generate(ctx, manifest.Resolve(specs[i]), opts)
			}
		}()
	}

feed:
	for i := range specs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	report := Report{}
	for i, res := range results {
		if res.Status == "" {
			res = Result{
				ID:     identity.ImageUUID(specs[i].Category, specs[i].Name),
				Key:    specs[i].Key(),
				Path:   outputPath(opts.OutputDir, specs[i]),
				Status: StatusFailed,
				Error:  "not started",
			}
		}
		switch res.Status {
		case StatusGenerated:
			report.Generated++
		case StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}
	g.logger.Info("imagegen.run.completed", "generated", report.Generated, "skipped", report.Skipped, "failed", report.Failed)
	return report, ctx.Err()
}

func (g *Generator) generate(ctx context.Context, spec Spec, opts Options) Result {
	started := time.Now()
	res := Result{
		ID:   identity.ImageUUID(spec.Category, spec.Name),
		Key:  spec.Key(),
		Path: outputPath(opts.OutputDir, spec),
	}
	logger := logging.WithFields(g.logger, map[string]any{"image": res.Key, "provider": g.provider.Name()})

	if !opts.Force {
		if _, err := os.Stat(res.Path); err == nil {
			res.Status = StatusSkipped
			logger.Debug("imagegen.image.exists")
			return res
		}
	}

	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Error = err.Error()
		res.Duration = time.Since(started)
		logger.Error("imagegen.image.failed", "error", err)
		return res
	}

	callCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	raw, err := g.provider.Generate(callCtx, Request{Prompt: spec.Prompt, Size: spec.Size, Model: spec.Model})
	if err != nil {
		return fail(err)
	}
	data, err := ToPNG(raw)
	if err != nil {
		return fail(err)
	}
	if err := writeAtomic(res.Path, data); err != nil {
		return fail(err)
	}
	res.Status = StatusGenerated
	res.Bytes = len(data)
	res.Duration = time.Since(started)
	logger.Info("imagegen.image.generated", "bytes", res.Bytes, "duration", res.Duration)
	return res
}

func outputPath(dir string, spec Spec) string {
	return filepath.Join(dir, spec.Category, spec.Name+".png")
}

func selectSpecs(manifest *Manifest, only []string) []Spec {
	if len(only) == 0 {
		return manifest.Images
	}
	wanted := make(map[string]bool, len(only))
	for _, key := range only {
		wanted[key] = true
	}
	var specs []Spec
	for _, spec := range manifest.Images {
		if wanted[spec.Key()] || wanted[spec.Category] {
			specs = append(specs, spec)
		}
	}
	return specs
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("imagegen: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".imagegen-*")
	if err != nil {
		return fmt.Errorf("imagegen: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("imagegen: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("imagegen: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
