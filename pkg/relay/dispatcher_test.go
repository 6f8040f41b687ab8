package relay

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(t *testing.T, components ...*Component) *Runtime {
	t.Helper()
	cat := newTestCatalog(components...)
	rt, err := Boot(Options{
		Namespace: "github.com/toyz/relay/pkg/relay",
		Catalog:   cat,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	return rt
}

func userController(t *testing.T, rt *Runtime) *UserController {
	t.Helper()
	inst, ok := rt.Container().Get("userController")
	require.True(t, ok)
	return inst.(*UserController)
}

func TestDispatch(t *testing.T) {
	rt := newTestRuntime(t, memoryStoreComponent(), userControllerComponent())
	reserved := map[string][]string{
		RequestKey:  {"x"},
		ResponseKey: {"y"},
		"a":         {"1"},
		"b":         {"2"},
	}

	tests := []struct {
		name       string
		req        *fakeRequest
		wantStatus int
		wantBody   string
		wantPrefix bool
		contains   []string
	}{
		{
			name:       "bound request parameter",
			req:        get("/user/getUserById", map[string][]string{"id": {"123"}}),
			wantStatus: http.StatusOK,
			wantBody:   "user 123: alice",
		},
		{
			name:       "first value of a multi-value parameter",
			req:        get("/user/getUserById", map[string][]string{"id": {"7", "8"}}),
			wantStatus: http.StatusOK,
			wantBody:   "user 7: anonymous",
		},
		{
			name:       "unbound parameter is ignored",
			req:        get("/user/getUserById", map[string][]string{"id": {"1"}, "other": {"x"}}),
			wantStatus: http.StatusOK,
			wantBody:   "user 1: anonymous",
		},
		{
			name:       "missing parameter gets the zero value",
			req:        get("/user/add", map[string][]string{"a": {"40"}}),
			wantStatus: http.StatusOK,
			wantBody:   "40",
		},
		{
			name:       "integral coercion",
			req:        get("/user/add", map[string][]string{"a": {"40"}, "b": {"2"}}),
			wantStatus: http.StatusOK,
			wantBody:   "42",
		},
		{
			name:       "repeated slashes are collapsed",
			req:        get("//user///add", map[string][]string{"a": {"1"}, "b": {"1"}}),
			wantStatus: http.StatusOK,
			wantBody:   "2",
		},
		{
			name:       "reserved keys in the query are ignored",
			req:        get("/user/add", reserved),
			wantStatus: http.StatusOK,
			wantBody:   "3",
		},
		{
			name:       "unknown path",
			req:        get("/nope", nil),
			wantStatus: http.StatusNotFound,
			wantBody:   NotFoundBody,
		},
		{
			name:       "prefix is not a full match",
			req:        get("/user/getUserById/extra", nil),
			wantStatus: http.StatusNotFound,
			wantBody:   NotFoundBody,
		},
		{
			name:       "non-numeric integral parameter",
			req:        get("/user/add", map[string][]string{"a": {"abc"}, "b": {"1"}}),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: true,
			contains:   []string{`parameter "a"`, "binding /user/add", "goroutine"},
		},
		{
			name:       "handler error",
			req:        get("/user/fail", nil),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: true,
			contains:   []string{"boom"},
		},
		{
			name:       "handler panic",
			req:        get("/user/explode", nil),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: true,
			contains:   []string{"panic: kaboom", "invoking /user/explode"},
		},
		{
			name:       "route without reserved arguments",
			req:        get("/user/orphan", map[string][]string{"id": {"1"}}),
			wantStatus: http.StatusInternalServerError,
			wantPrefix: true,
			contains:   []string{"takes no relay.Request"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newRecorder()
			rt.ServeRequest(tt.req, resp)

			assert.Equal(t, tt.wantStatus, resp.status)
			assert.Equal(t, ContentType, resp.headers["Content-Type"])
			body := resp.body.String()
			if tt.wantPrefix {
				assert.True(t, strings.HasPrefix(body, ExceptionPrefix), body)
			} else {
				assert.Equal(t, tt.wantBody, body)
			}
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
		})
	}
}

func TestDispatchCoercionFailureStopsHandler(t *testing.T) {
	rt := newTestRuntime(t, userControllerComponent())
	ctrl := userController(t, rt)

	resp := newRecorder()
	rt.ServeRequest(get("/user/add", map[string][]string{"a": {"x"}}), resp)

	assert.Equal(t, http.StatusInternalServerError, resp.status)
	assert.Zero(t, ctrl.calls)
}

type DraftController struct{}

func (DraftController) Partial(req Request, resp Response) error {
	fmt.Fprint(resp, "draft")
	return errors.New("late failure")
}

func (DraftController) Accepted(req Request, resp Response) {
	resp.SetStatus(http.StatusAccepted)
	fmt.Fprint(resp, "queued")
}

func TestDispatchBuffersHandlerOutput(t *testing.T) {
	rt := newTestRuntime(t, ControllerOf[DraftController](
		Handle("Partial", "/partial"),
		Handle("Accepted", "/accepted"),
	))

	resp := newRecorder()
	rt.ServeRequest(get("/partial", nil), resp)
	assert.Equal(t, http.StatusInternalServerError, resp.status)
	assert.True(t, strings.HasPrefix(resp.body.String(), ExceptionPrefix), resp.body.String())
	assert.Contains(t, resp.body.String(), "late failure")
	assert.NotContains(t, resp.body.String(), "draft")

	resp = newRecorder()
	rt.ServeRequest(get("/accepted", nil), resp)
	assert.Equal(t, http.StatusAccepted, resp.status)
	assert.Equal(t, "queued", resp.body.String())
}

func TestDispatchContextPath(t *testing.T) {
	rt := newTestRuntime(t, userControllerComponent())

	req := get("/app/user/add", map[string][]string{"a": {"2"}, "b": {"3"}})
	req.contextPath = "/app"
	resp := newRecorder()
	rt.ServeRequest(req, resp)

	assert.Equal(t, "5", resp.body.String())
}

func TestDispatchRequestID(t *testing.T) {
	rt := newTestRuntime(t, userControllerComponent())

	resp := newRecorder()
	rt.ServeRequest(get("/nope", nil), resp)
	assert.Len(t, resp.headers[RequestIDHeader], 36)

	req := get("/nope", nil)
	req.headers[RequestIDHeader] = "abc"
	resp = newRecorder()
	rt.ServeRequest(req, resp)
	assert.Equal(t, "abc", resp.headers[RequestIDHeader])
}

func TestDispatchReturnsErrors(t *testing.T) {
	rt := newTestRuntime(t, userControllerComponent())
	d := rt.Dispatcher()

	assert.NoError(t, d.Dispatch(get("/nope", nil), newRecorder()))

	err := d.Dispatch(get("/user/fail", nil), newRecorder())
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, PhaseInvoking, de.Phase)
	assert.EqualError(t, de.Cause, "boom")

	err = d.Dispatch(get("/user/add", map[string][]string{"b": {"1.5"}}), newRecorder())
	var be *BindingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "b", be.Param)
	assert.Equal(t, "int", be.Type)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path, contextPath, want string
	}{
		{"/user/a", "", "/user/a"},
		{"/app/user/a", "/app", "/user/a"},
		{"/app", "/app", "/"},
		{"//a//b", "/", "/a/b"},
		{"/other/a", "/app", "/other/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.path, tt.contextPath), tt.path)
	}
}

func TestTrace(t *testing.T) {
	assert.Equal(t, "", Trace(nil))
	assert.Equal(t, "plain", Trace(errors.New("plain")))

	err := fmt.Errorf("wrapped: %w", newDispatchError(PhaseBinding, "/x", errors.New("bad")))
	trace := Trace(err)
	assert.True(t, strings.HasPrefix(trace, "binding /x: bad\n"), trace)
	assert.Contains(t, trace, "goroutine")
}
