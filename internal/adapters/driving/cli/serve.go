package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// ServeConfig holds what the serve command runs.
type ServeConfig struct {
	// Addr is the listen address, e.g. 127.0.0.1:8380.
	Addr    string
	Handler http.Handler
	// Scheduler runs periodic pushes. Optional.
	Scheduler driving.Scheduler
	// Watch reports configuration file changes until ctx ends. Optional.
	Watch func(ctx context.Context, onChange func()) error
	// OnConfigChange runs after the configuration file changed. Optional.
	OnConfigChange func()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP endpoints and scheduled pushes",
	Long: `Starts the HTTP server with the OAuth and push endpoints.

When push.interval_seconds and push.orgs are set, personnel and compensation
records of those organizations are pushed on that interval using the
credential of push.session. The configuration file is watched and reloaded
on change.`,
	RunE: runServe,
}

var serveAddr string

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default http.addr)")
	rootCmd.AddCommand(serveCmd)
}

//nolint:gocognit // Lifecycle of three background tasks
func runServe(cmd *cobra.Command, _ []string) error {
	if serveConfig == nil || serveConfig.Handler == nil {
		return errors.New("http server not configured")
	}

	addr := serveConfig.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduler is long-running and must not block the server
	if serveConfig.Scheduler != nil {
		go func() {
			if err := serveConfig.Scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := serveConfig.Scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}()
	}

	if serveConfig.Watch != nil {
		go func() {
			onChange := serveConfig.OnConfigChange
			if onChange == nil {
				onChange = func() { logger.Info("Configuration reloaded") }
			}
			if err := serveConfig.Watch(ctx, onChange); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watch stopped: %v", err)
			}
		}()
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           serveConfig.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	cmd.Printf("Listening on http://%s\n", listener.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	cmd.Println("Server stopped.")
	return nil
}
