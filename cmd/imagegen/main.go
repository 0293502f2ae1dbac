package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	site "github.com/goliatone/go-site"
	"github.com/goliatone/go-site/cmd/internal/bootstrap"
	imagegencmd "github.com/goliatone/go-site/internal/commands/imagegen"
	"github.com/goliatone/go-site/internal/imagegen"
	"github.com/goliatone/go-site/internal/logging"
)

var (
	moduleBuilder   = bootstrap.BuildModule
	providerBuilder = imagegen.NewProvider
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("imagegen: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("imagegen", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "Path to a YAML or TOML config file")
	manifest := fs.StringP("manifest", "m", "", "Image manifest (overrides imagegen.manifest)")
	outputDir := fs.StringP("out", "o", "", "Output directory (overrides imagegen.output_dir)")
	provider := fs.String("provider", "", "Provider name: openai or replicate")
	model := fs.String("model", "", "Provider model (overrides imagegen.model)")
	workers := fs.IntP("workers", "w", 0, "Concurrent requests (overrides imagegen.workers)")
	force := fs.Bool("force", false, "Regenerate images that already exist")
	only := fs.String("only", "", "Comma separated category/name keys or categories to generate")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		Configure: func(cfg *site.Config) {
			cfg.Storage.Provider = "memory"
			cfg.Content.Repository = "memory"
			cfg.Cache.Enabled = false
			cfg.Mail.Enabled = false
			cfg.Commands.AutoRegisterDispatcher = false
			if *manifest != "" {
				cfg.ImageGen.Manifest = *manifest
			}
			if *outputDir != "" {
				cfg.ImageGen.OutputDir = *outputDir
			}
			if *provider != "" {
				cfg.ImageGen.Provider = *provider
			}
			if *model != "" {
				cfg.ImageGen.Model = *model
			}
			if *workers > 0 {
				cfg.ImageGen.Workers = *workers
			}
		},
	})
	if err != nil {
		return err
	}
	defer bootstrap.SetMaxProcs(module.Logger)()
	defer module.Module.Close()

	cfg := module.Config.ImageGen
	client, err := providerBuilder(cfg.Provider, imagegen.ProviderConfig{
		Token: cfg.Token,
		Model: cfg.Model,
	})
	if err != nil {
		return err
	}

	logger := logging.ImagegenLogger(module.Module.Container().LoggerProvider())
	generator := imagegen.NewGenerator(client, logger)
	handler := imagegencmd.NewGenerateImagesHandler(generator, cfg.Timeout, logger)

	var report imagegen.Report
	runErr := handler.Execute(ctx, imagegencmd.GenerateImagesCommand{
		Manifest:  cfg.Manifest,
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
		Force:     *force,
		Only:      bootstrap.SplitList(*only),
		Report:    &report,
	})

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(stdout, report)
	}
	return runErr
}

func printReport(w io.Writer, report imagegen.Report) {
	for _, res := range report.Results {
		switch res.Status {
		case imagegen.StatusFailed:
			fmt.Fprintf(w, "%-9s %s: %s\n", res.Status, res.Key, res.Error)
		default:
			fmt.Fprintf(w, "%-9s %s -> %s\n", res.Status, res.Key, res.Path)
		}
	}
	fmt.Fprintf(w, "\n%d generated, %d skipped, %d failed\n", report.Generated, report.Skipped, report.Failed)
}
