// Package server runs a relay.Handler on the transport named in the
// configuration until its context is cancelled.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/toyz/relay/internal/config"
	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/pkg/relay"
	"github.com/toyz/relay/pkg/relay/adapters"
)

// NewWebServer returns the adapter named by cfg.Adapter.
func NewWebServer(cfg config.ServerConfig) (relay.WebServer, error) {
	switch cfg.Adapter {
	case "", "http":
		return adapters.NewHTTPAdapter(cfg.ContextPath), nil
	case "echo":
		return adapters.NewDefaultEchoAdapter(cfg.ContextPath), nil
	case "gin":
		return adapters.NewDefaultGinAdapter(cfg.ContextPath), nil
	case "fiber":
		return adapters.NewDefaultFiberAdapter(cfg.ContextPath), nil
	}
	return nil, errors.NewConfigurationError("server.adapter", fmt.Sprintf("unknown adapter '%s'", cfg.Adapter))
}

// Run mounts h on the configured adapter and serves until ctx is done.
func Run(ctx context.Context, cfg config.ServerConfig, h relay.Handler, logger *slog.Logger) error {
	ws, err := NewWebServer(cfg)
	if err != nil {
		return err
	}
	ws.Mount(h)
	return Serve(ctx, ws, cfg.Addr(), cfg.ShutdownTimeout, logger)
}

// Serve starts ws on addr and blocks. When ctx is done the server is given
// shutdownTimeout to drain. A server that fails to start returns its error
// immediately.
func Serve(ctx context.Context, ws relay.WebServer, addr string, shutdownTimeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "adapter", ws.Name(), "addr", addr)
		errCh <- ws.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s server failed: %w", ws.Name(), err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", "adapter", ws.Name(), "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := ws.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s server failed: %w", ws.Name(), err)
		}
	case <-shutdownCtx.Done():
		return fmt.Errorf("server forced to shutdown: %w", shutdownCtx.Err())
	}

	logger.Info("Server shutdown complete")
	return nil
}
