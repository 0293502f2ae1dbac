package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/pflag"

	site "github.com/goliatone/go-site"
	"github.com/goliatone/go-site/cmd/internal/bootstrap"
	"github.com/goliatone/go-site/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("site: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("site", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "Path to a YAML or TOML config file")
	addr := fs.String("addr", "", "Listen address (overrides http.addr)")
	noSync := fs.Bool("no-sync", false, "Skip the content import on start")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		Configure: func(cfg *site.Config) {
			if *addr != "" {
				cfg.HTTP.Addr = *addr
			}
			if *noSync {
				cfg.Content.SyncOnStart = false
			}
		},
	})
	if err != nil {
		return err
	}
	defer bootstrap.SetMaxProcs(module.Logger)()
	defer func() {
		if err := module.Module.Close(); err != nil {
			module.Logger.Error("site.close.failed", "error", err)
		}
	}()

	if module.Config.Content.SyncOnStart {
		result, err := module.Module.Sync(ctx)
		if err != nil {
			return fmt.Errorf("sync content: %w", err)
		}
		for _, skipped := range result.Skipped {
			module.Logger.Warn("site.content.skipped", "path", skipped.Path, "reason", skipped.Reason)
		}
	}

	handler, err := module.Module.Handler()
	if err != nil {
		return err
	}

	cfg := module.Config.HTTP
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	module.Logger.Info("site.http.listening", "addr", ln.Addr().String())
	return serve(ctx, newServer(cfg, handler), ln, cfg.ShutdownTimeout, module.Logger)
}

func newServer(cfg site.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

// serve blocks until ctx is cancelled or the server fails, then drains
// in-flight requests for at most shutdownTimeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger interfaces.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("site.http.shutdown", "timeout", shutdownTimeout)
	shutdownCtx := context.Background()
	if shutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
