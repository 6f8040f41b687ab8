package adapters

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toyz/relay/pkg/relay"
)

// GinAdapter serves the runtime with Gin.
type GinAdapter struct {
	engine      *gin.Engine
	contextPath string
	managed     managedServer
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(engine *gin.Engine, contextPath string) *GinAdapter {
	return &GinAdapter{engine: engine, contextPath: contextPath}
}

// NewDefaultGinAdapter creates a Gin adapter on a bare engine in release mode.
func NewDefaultGinAdapter(contextPath string) *GinAdapter {
	gin.SetMode(gin.ReleaseMode)
	return NewGinAdapter(gin.New(), contextPath)
}

// Mount routes every method and path to h.
func (ga *GinAdapter) Mount(h relay.Handler) {
	ga.engine.Any("/*path", func(c *gin.Context) {
		ServeHTTP(h, ga.contextPath, c.Writer, c.Request)
	})
}

// ServeHTTP implements http.Handler.
func (ga *GinAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ga.engine.ServeHTTP(w, r)
}

// Start starts the server
func (ga *GinAdapter) Start(addr string) error {
	return ga.managed.serve(addr, ga.engine)
}

// Stop stops the server
func (ga *GinAdapter) Stop(ctx context.Context) error {
	return ga.managed.stop(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}
