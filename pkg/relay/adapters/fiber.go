package adapters

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/toyz/relay/pkg/relay"
)

// FiberAdapter serves the runtime with Fiber v2.
type FiberAdapter struct {
	app         *fiber.App
	contextPath string
}

// NewFiberAdapter creates a new Fiber adapter
func NewFiberAdapter(app *fiber.App, contextPath string) *FiberAdapter {
	return &FiberAdapter{app: app, contextPath: contextPath}
}

// NewDefaultFiberAdapter creates a Fiber adapter without the startup banner.
func NewDefaultFiberAdapter(contextPath string) *FiberAdapter {
	return NewFiberAdapter(fiber.New(fiber.Config{DisableStartupMessage: true}), contextPath)
}

// Mount routes every method and path to h.
func (fa *FiberAdapter) Mount(h relay.Handler) {
	fa.app.Use(func(c *fiber.Ctx) error {
		h.ServeRequest(newFiberRequest(c, fa.contextPath), &fiberResponse{c: c})
		return nil
	})
}

// Start starts the server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// fiberRequest adapts *fiber.Ctx to relay.Request.
type fiberRequest struct {
	c           *fiber.Ctx
	contextPath string
	params      map[string][]string
}

func newFiberRequest(c *fiber.Ctx, contextPath string) *fiberRequest {
	params := make(map[string][]string)
	collect := func(k, v []byte) {
		key := string(k)
		params[key] = append(params[key], string(v))
	}
	c.Context().QueryArgs().VisitAll(collect)
	c.Context().PostArgs().VisitAll(collect)
	return &fiberRequest{c: c, contextPath: contextPath, params: params}
}

func (r *fiberRequest) Method() string { return r.c.Method() }

// Path copies the path since fasthttp reuses its buffers.
func (r *fiberRequest) Path() string { return strings.Clone(r.c.Path()) }

func (r *fiberRequest) ContextPath() string { return r.contextPath }

func (r *fiberRequest) Params() map[string][]string { return r.params }

func (r *fiberRequest) Header(key string) string { return r.c.Get(key) }

func (r *fiberRequest) Context() context.Context { return r.c.UserContext() }

// fiberResponse adapts *fiber.Ctx to relay.Response.
type fiberResponse struct {
	c *fiber.Ctx
}

func (r *fiberResponse) Write(p []byte) (int, error) { return r.c.Write(p) }

func (r *fiberResponse) SetHeader(key, value string) { r.c.Set(key, value) }

func (r *fiberResponse) SetStatus(code int) { r.c.Status(code) }
