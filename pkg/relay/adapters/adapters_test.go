package adapters

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/relay/pkg/relay"
)

type PingController struct{}

func (PingController) Ping(req relay.Request, resp relay.Response, name string) {
	fmt.Fprintf(resp, "pong %s %s", req.Method(), name)
}

func (PingController) Created(req relay.Request, resp relay.Response) {
	resp.SetStatus(http.StatusCreated)
	fmt.Fprint(resp, "created")
}

func (PingController) Silent(req relay.Request, resp relay.Response) {
	resp.SetStatus(http.StatusNoContent)
}

func (PingController) Broken(req relay.Request, resp relay.Response) error {
	fmt.Fprint(resp, "half")
	return errors.New("broken after write")
}

func newRuntime(t *testing.T) *relay.Runtime {
	t.Helper()
	cat := relay.NewCatalog()
	cat.MustAdd(relay.ControllerOf[PingController](
		relay.Handle("Ping", "/ping", "", "", "name"),
		relay.Handle("Created", "/created"),
		relay.Handle("Silent", "/silent"),
		relay.Handle("Broken", "/broken"),
	))
	rt, err := relay.Boot(relay.Options{
		Namespace: "github.com/toyz/relay/pkg/relay/adapters",
		Catalog:   cat,
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return rt
}

type result struct {
	status int
	body   string
	header http.Header
}

type roundTripper func(t *testing.T, r *http.Request) result

func viaHandler(h http.Handler) roundTripper {
	return func(t *testing.T, r *http.Request) result {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return result{status: rec.Code, body: rec.Body.String(), header: rec.Header()}
	}
}

func viaFiber(a *FiberAdapter) roundTripper {
	return func(t *testing.T, r *http.Request) result {
		resp, err := a.GetApp().Test(r)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return result{status: resp.StatusCode, body: string(body), header: resp.Header}
	}
}

func TestAdapters(t *testing.T) {
	rt := newRuntime(t)
	const contextPath = "/ctx"

	httpAdapter := NewHTTPAdapter(contextPath)
	echoAdapter := NewDefaultEchoAdapter(contextPath)
	ginAdapter := NewDefaultGinAdapter(contextPath)
	fiberAdapter := NewDefaultFiberAdapter(contextPath)

	servers := []struct {
		server relay.WebServer
		do     roundTripper
	}{
		{httpAdapter, viaHandler(httpAdapter)},
		{echoAdapter, viaHandler(echoAdapter)},
		{ginAdapter, viaHandler(ginAdapter)},
		{fiberAdapter, viaFiber(fiberAdapter)},
	}

	for _, s := range servers {
		s.server.Mount(rt)

		t.Run(s.server.Name(), func(t *testing.T) {
			t.Run("query parameter", func(t *testing.T) {
				res := s.do(t, httptest.NewRequest(http.MethodGet, "/ctx/ping?name=bob", nil))
				assert.Equal(t, http.StatusOK, res.status)
				assert.Equal(t, "pong GET bob", res.body)
				assert.Equal(t, relay.ContentType, res.header.Get("Content-Type"))
				assert.NotEmpty(t, res.header.Get(relay.RequestIDHeader))
			})

			t.Run("form parameter", func(t *testing.T) {
				form := url.Values{"name": {"alice"}}
				req := httptest.NewRequest(http.MethodPost, "/ctx/ping", strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				res := s.do(t, req)
				assert.Equal(t, "pong POST alice", res.body)
			})

			t.Run("handler status", func(t *testing.T) {
				res := s.do(t, httptest.NewRequest(http.MethodPut, "/ctx/created", nil))
				assert.Equal(t, http.StatusCreated, res.status)
				assert.Equal(t, "created", res.body)
			})

			t.Run("status without body", func(t *testing.T) {
				res := s.do(t, httptest.NewRequest(http.MethodGet, "/ctx/silent", nil))
				assert.Equal(t, http.StatusNoContent, res.status)
			})

			t.Run("failure after a partial write", func(t *testing.T) {
				res := s.do(t, httptest.NewRequest(http.MethodGet, "/ctx/broken", nil))
				assert.Equal(t, http.StatusInternalServerError, res.status)
				assert.True(t, strings.HasPrefix(res.body, relay.ExceptionPrefix), res.body)
				assert.Contains(t, res.body, "broken after write")
				assert.NotContains(t, res.body, "half")
			})

			t.Run("not found", func(t *testing.T) {
				res := s.do(t, httptest.NewRequest(http.MethodGet, "/ctx/nope", nil))
				assert.Equal(t, http.StatusNotFound, res.status)
				assert.Equal(t, relay.NotFoundBody, res.body)
			})

			t.Run("root", func(t *testing.T) {
				res := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
				assert.Equal(t, http.StatusNotFound, res.status)
			})
		})
	}
}

func TestAdapterNames(t *testing.T) {
	assert.Equal(t, "net/http", NewHTTPAdapter("").Name())
	assert.Equal(t, "Echo", NewDefaultEchoAdapter("").Name())
	assert.Equal(t, "Gin", NewDefaultGinAdapter("").Name())
	assert.Equal(t, "Fiber", NewDefaultFiberAdapter("").Name())
}

func TestStopBeforeStart(t *testing.T) {
	ctx := t.Context()
	assert.NoError(t, NewHTTPAdapter("").Stop(ctx))
	assert.NoError(t, NewDefaultGinAdapter("").Stop(ctx))

	a := NewHTTPAdapter("")
	require.NoError(t, a.Stop(ctx))
	assert.NoError(t, a.Start("127.0.0.1:0"), "start after stop returns at once")
}
