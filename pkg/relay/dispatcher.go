package relay

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// NotFoundBody is written when no route matches.
	NotFoundBody = "404 Not Found!"
	// ExceptionPrefix starts the body of every request-time failure.
	ExceptionPrefix = "500 Exception, Details:\n"
	// ContentType is set on every dispatched response.
	ContentType = "text/html;charset=utf-8"
	// RequestIDHeader carries the id assigned to each request.
	RequestIDHeader = "X-Request-ID"
)

// Dispatcher matches requests against a frozen route table and invokes the
// bound handlers. It is safe for concurrent use.
type Dispatcher struct {
	routes *RouteTable
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over routes.
func NewDispatcher(routes *RouteTable, logger *slog.Logger) *Dispatcher {
	if routes == nil {
		routes = &RouteTable{}
	}
	return &Dispatcher{routes: routes, logger: loggerOrDefault(logger)}
}

// ServeRequest dispatches req and turns any failure into a 500 response.
func (d *Dispatcher) ServeRequest(req Request, resp Response) {
	requestID := req.Header(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	resp.SetHeader("Content-Type", ContentType)
	resp.SetHeader(RequestIDHeader, requestID)

	logger := d.logger.With("request_id", requestID, "method", req.Method(), "path", req.Path())
	buf := &bufferedResponse{Response: resp}
	if err := d.Dispatch(req, buf); err != nil {
		logger.Error("request failed", "error", err)
		resp.SetStatus(http.StatusInternalServerError)
		if _, werr := resp.Write([]byte(ExceptionPrefix + Trace(err))); werr != nil {
			logger.Warn("failed to write error response", "error", werr)
		}
		return
	}
	if err := buf.flush(); err != nil {
		logger.Warn("failed to write response", "error", err)
		return
	}
	logger.Debug("request served")
}

// bufferedResponse holds the status and body until the handler returns, so
// a failing handler never leaves a partial body in front of the 500 text.
// Headers go straight to the underlying response.
type bufferedResponse struct {
	Response
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) SetStatus(code int) { b.status = code }

func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *bufferedResponse) flush() error {
	if b.status != 0 {
		b.Response.SetStatus(b.status)
	}
	if b.body.Len() == 0 {
		return nil
	}
	_, err := b.Response.Write(b.body.Bytes())
	return err
}

// Dispatch routes req to the first matching handler. An unmatched path is
// answered with 404 here; binding and invocation failures are returned.
func (d *Dispatcher) Dispatch(req Request, resp Response) error {
	path := NormalizePath(req.Path(), req.ContextPath())
	route, err := d.routes.Match(path)
	if errors.Is(err, ErrNoRoute) {
		resp.SetStatus(http.StatusNotFound)
		_, err = resp.Write([]byte(NotFoundBody))
		return err
	}

	args, err := bind(route, req, resp)
	if err != nil {
		return newDispatchError(PhaseBinding, route.Path, err)
	}
	return invoke(route, args)
}

// NormalizePath strips contextPath from p and collapses repeated slashes.
func NormalizePath(p, contextPath string) string {
	if contextPath != "" && contextPath != "/" {
		p = strings.TrimPrefix(p, contextPath)
	}
	p = CleanPath(p)
	if p == "" {
		return "/"
	}
	return p
}

func bind(route *RouteDescriptor, req Request, resp Response) ([]reflect.Value, error) {
	args := make([]reflect.Value, route.ParamCount())

	params := req.Params()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		// The request and response slots are filled below.
		if key == RequestKey || key == ResponseKey {
			continue
		}
		idx, ok := route.ParamIndex[key]
		if !ok {
			continue
		}
		if idx < 0 || idx >= len(args) {
			return nil, errors.New("parameter " + key + " is mapped outside the argument list")
		}
		var raw string
		if values := params[key]; len(values) > 0 {
			raw = values[0]
		}
		t := route.paramTypes[idx]
		v, err := Coerce(raw, t)
		if err != nil {
			return nil, &BindingError{Param: key, Value: raw, Type: t.String(), Err: err}
		}
		args[idx] = v
	}

	reqIdx, ok := route.ParamIndex[RequestKey]
	if !ok {
		return nil, errors.New("handler " + route.Handler + " takes no relay.Request")
	}
	respIdx, ok := route.ParamIndex[ResponseKey]
	if !ok {
		return nil, errors.New("handler " + route.Handler + " takes no relay.Response")
	}
	args[reqIdx] = reflect.ValueOf(&req).Elem()
	args[respIdx] = reflect.ValueOf(&resp).Elem()

	for i, a := range args {
		if !a.IsValid() {
			args[i] = reflect.Zero(route.paramTypes[i])
		}
	}
	return args, nil
}

func invoke(route *RouteDescriptor, args []reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newDispatchError(PhaseInvoking, route.Path, &PanicError{Value: r})
		}
	}()

	out := route.method.Call(args)
	if route.returnsError {
		if e, _ := out[len(out)-1].Interface().(error); e != nil {
			return newDispatchError(PhaseInvoking, route.Path, e)
		}
	}
	return nil
}
