package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toyz/relay/pkg/relay"
)

// EchoAdapter serves the runtime with Echo v4.
type EchoAdapter struct {
	engine      *echo.Echo
	contextPath string
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo, contextPath string) *EchoAdapter {
	return &EchoAdapter{engine: e, contextPath: contextPath}
}

// NewDefaultEchoAdapter creates a new Echo adapter with default Echo instance
func NewDefaultEchoAdapter(contextPath string) *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return NewEchoAdapter(e, contextPath)
}

// Mount routes every method and path to h.
func (ea *EchoAdapter) Mount(h relay.Handler) {
	handler := func(c echo.Context) error {
		ServeHTTP(h, ea.contextPath, c.Response(), c.Request())
		return nil
	}
	ea.engine.Any("/", handler)
	ea.engine.Any("/*", handler)
}

// ServeHTTP implements http.Handler.
func (ea *EchoAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ea.engine.ServeHTTP(w, r)
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	if err := ea.engine.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}
