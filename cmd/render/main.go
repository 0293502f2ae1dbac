package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"

	site "github.com/goliatone/go-site"
	"github.com/goliatone/go-site/cmd/internal/bootstrap"
	"github.com/goliatone/go-site/internal/markdown"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("render: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "Path to a YAML or TOML config file")
	file := fs.StringP("file", "f", "", "Markdown file to render (reads stdin when empty)")
	format := fs.String("format", "html", "Output format: html, nodes or markdown")
	engine := fs.String("engine", "", "Markdown engine for html output (lite or goldmark)")
	css := fs.Bool("css", false, "Print the highlight stylesheet and exit")
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
			if *engine != "" {
				cfg.Markdown.Engine = *engine
			}
		},
	})
	if err != nil {
		return err
	}
	defer module.Module.Close()

	svc := module.Module.Markdown()
	if *css {
		return svc.WriteCSS(stdout)
	}

	source, err := readSource(*file, stdin)
	if err != nil {
		return err
	}
	var meta map[string]any
	body, err := markdown.ParseFrontMatter(source, &meta)
	if err != nil {
		return fmt.Errorf("front matter: %w", err)
	}

	switch *format {
	case "html":
		out, err := svc.RenderHTML(ctx, string(body))
		if err != nil {
			return err
		}
		_, err = stdout.Write(out)
		return err
	case "nodes":
		nodes, err := svc.Render(ctx, string(body))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	case "markdown":
		nodes, err := svc.Render(ctx, string(body))
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, markdown.Format(nodes))
		return err
	}
	return fmt.Errorf("unknown format %q", *format)
}

func readSource(file string, stdin io.Reader) ([]byte, error) {
	if file == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}
