package bootstrap

import (
	"fmt"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"

	site "github.com/goliatone/go-site"
	"github.com/goliatone/go-site/internal/di"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// Options captures configuration shared by the site binaries.
type Options struct {
	ConfigPath string
	// Configure adjusts the loaded config before the module is built.
	Configure      func(*site.Config)
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the site module with the config it was built from.
type Module struct {
	Module *site.Module
	Config site.Config
	Logger interfaces.Logger
}

// LoadConfig reads the config file named in opts and applies opts.Configure.
func LoadConfig(opts Options) (site.Config, error) {
	cfg, err := site.LoadConfig(strings.TrimSpace(opts.ConfigPath))
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if opts.Configure != nil {
		opts.Configure(&cfg)
	}
	return cfg, nil
}

// BuildModule constructs a site module from the options.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := site.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise site module: %w", err)
	}

	return &Module{
		Module: module,
		Config: cfg,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "site.cli"),
	}, nil
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SetMaxProcs sizes GOMAXPROCS to the container CPU quota and reports the
// change through logger. The returned func restores the previous value.
func SetMaxProcs(logger interfaces.Logger) func() {
	logger = logging.Or(logger)
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug("site.maxprocs", "detail", fmt.Sprintf(format, args...))
	}))
	if err != nil {
		logger.Warn("site.maxprocs.failed", "error", err)
	}
	return undo
}
