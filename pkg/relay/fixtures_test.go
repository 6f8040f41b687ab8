package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeRequest struct {
	method      string
	path        string
	contextPath string
	params      map[string][]string
	headers     map[string]string
}

func get(path string, params map[string][]string) *fakeRequest {
	return &fakeRequest{method: http.MethodGet, path: path, params: params, headers: map[string]string{}}
}

func (r *fakeRequest) Method() string { return r.method }
func (r *fakeRequest) Path() string { return r.path }
func (r *fakeRequest) ContextPath() string { return r.contextPath }
func (r *fakeRequest) Params() map[string][]string { return r.params }
func (r *fakeRequest) Header(key string) string { return r.headers[key] }
func (r *fakeRequest) Context() context.Context { return context.Background() }

type recorder struct {
	status  int
	headers map[string]string
	body    bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{status: http.StatusOK, headers: map[string]string{}}
}

func (r *recorder) Write(p []byte) (int, error) { return r.body.Write(p) }
func (r *recorder) SetHeader(key, value string) { r.headers[key] = value }
func (r *recorder) SetStatus(code int) { r.status = code }

// UserStore is the capability the fixture services implement.
type UserStore interface {
	Name(id string) string
}

type MemoryStore struct {
	users map[string]string
}

func (s *MemoryStore) Name(id string) string {
	if n, ok := s.users[id]; ok {
		return n
	}
	return "anonymous"
}

type OtherStore struct{}

func (OtherStore) Name(string) string { return "other" }

type UserController struct {
	Store UserStore `autowired:"userStore"`
	calls int
}

func (c *UserController) GetUserByID(req Request, resp Response, id string) {
	c.calls++
	name := "none"
	if c.Store != nil {
		name = c.Store.Name(id)
	}
	fmt.Fprintf(resp, "user %s: %s", id, name)
}

func (c *UserController) Add(req Request, resp Response, a, b int) {
	c.calls++
	fmt.Fprintf(resp, "%d", a+b)
}

func (c *UserController) Fail(req Request, resp Response) error {
	return errors.New("boom")
}

func (c *UserController) Explode(req Request, resp Response) {
	panic("kaboom")
}

func (c *UserController) Orphan(id string) {}

type AdminController struct{}

func (AdminController) Any(req Request, resp Response) {
	fmt.Fprint(resp, "admin")
}

func userControllerComponent() *Component {
	return ControllerOf[UserController](
		BasePath("/user/"),
		Handle("GetUserByID", "/getUserById", "", "", "id"),
		Handle("Add", "/add", "", "", "a", "b"),
		Handle("Fail", "/fail"),
		Handle("Explode", "/explode"),
		Handle("Orphan", "/orphan", "id"),
	)
}

func memoryStoreComponent() *Component {
	return ServiceOf[MemoryStore](
		Named("userStore"),
		Implements(CapabilityOf[UserStore]()),
		Factory(func() (any, error) {
			return &MemoryStore{users: map[string]string{"123": "alice"}}, nil
		}),
	)
}

func newTestCatalog(components ...*Component) *Catalog {
	cat := NewCatalog()
	for _, c := range components {
		cat.MustAdd(c)
	}
	return cat
}
