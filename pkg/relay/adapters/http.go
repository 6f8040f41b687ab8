package adapters

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/toyz/relay/pkg/relay"
)

// httpRequest adapts *http.Request to relay.Request.
type httpRequest struct {
	r           *http.Request
	contextPath string
	params      map[string][]string
}

// NewHTTPRequest wraps r. Query and form parameters are parsed eagerly.
func NewHTTPRequest(r *http.Request, contextPath string) relay.Request {
	params := r.URL.Query()
	if err := r.ParseForm(); err == nil {
		params = r.Form
	}
	return &httpRequest{r: r, contextPath: contextPath, params: params}
}

func (r *httpRequest) Method() string { return r.r.Method }
func (r *httpRequest) Path() string { return r.r.URL.Path }
func (r *httpRequest) ContextPath() string { return r.contextPath }
func (r *httpRequest) Params() map[string][]string { return r.params }
func (r *httpRequest) Header(key string) string { return r.r.Header.Get(key) }
func (r *httpRequest) Context() context.Context { return r.r.Context() }

// httpResponse adapts http.ResponseWriter to relay.Response. The status is
// held back until the first write so it can still change after headers are set.
type httpResponse struct {
	w           http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *httpResponse) SetHeader(key, value string) { r.w.Header().Set(key, value) }
func (r *httpResponse) SetStatus(code int) { r.status = code }

func (r *httpResponse) Write(p []byte) (int, error) {
	r.writeHeader()
	return r.w.Write(p)
}

func (r *httpResponse) writeHeader() {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	if r.status != 0 {
		r.w.WriteHeader(r.status)
	}
}

// ServeHTTP feeds an http request through h.
func ServeHTTP(h relay.Handler, contextPath string, w http.ResponseWriter, r *http.Request) {
	resp := &httpResponse{w: w}
	h.ServeRequest(NewHTTPRequest(r, contextPath), resp)
	resp.writeHeader()
}

// managedServer owns an *http.Server. A stop that arrives before the
// server starts makes the start a no-op.
type managedServer struct {
	mu      sync.Mutex
	server  *http.Server
	stopped bool
}

func (m *managedServer) serve(addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.server = srv
	m.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *managedServer) stop(ctx context.Context) error {
	m.mu.Lock()
	m.stopped = true
	srv := m.server
	m.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// HTTPAdapter serves the runtime with net/http and a chi router.
type HTTPAdapter struct {
	router      *chi.Mux
	contextPath string
	managed     managedServer
}

// NewHTTPAdapter creates an adapter stripping contextPath before matching.
func NewHTTPAdapter(contextPath string) *HTTPAdapter {
	return &HTTPAdapter{router: chi.NewRouter(), contextPath: contextPath}
}

// Mount routes every method and path to h.
func (a *HTTPAdapter) Mount(h relay.Handler) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeHTTP(h, a.contextPath, w, r)
	})
	a.router.Handle("/", handler)
	a.router.Handle("/*", handler)
}

// Router returns the underlying chi router.
func (a *HTTPAdapter) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *HTTPAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start listens on addr until Stop is called.
func (a *HTTPAdapter) Start(addr string) error {
	return a.managed.serve(addr, a.router)
}

// Stop shuts the server down gracefully.
func (a *HTTPAdapter) Stop(ctx context.Context) error {
	return a.managed.stop(ctx)
}

// Name returns the adapter name.
func (a *HTTPAdapter) Name() string {
	return "net/http"
}
