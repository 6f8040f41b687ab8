package relay

import (
	"context"
	"io"
	"reflect"
)

// Request is the inbound request as seen by the dispatcher and by handlers.
type Request interface {
	Method() string
	// Path is the full request path, context prefix included.
	Path() string
	// ContextPath is the deployment prefix stripped before matching.
	ContextPath() string
	// Params returns query and form parameters.
	Params() map[string][]string
	Header(key string) string
	Context() context.Context
}

// Response is the sink handlers write their result to. The dispatcher
// buffers the status and body until the handler returns, so a handler that
// fails after writing still produces a clean 500 response.
type Response interface {
	io.Writer
	SetHeader(key, value string)
	SetStatus(code int)
}

var (
	requestType  = reflect.TypeFor[Request]()
	responseType = reflect.TypeFor[Response]()
)

// Reserved paramIndexMapping keys for the request and response arguments.
var (
	RequestKey  = TypeID(requestType)
	ResponseKey = TypeID(responseType)
)

// Handler serves a request through the runtime.
type Handler interface {
	ServeRequest(req Request, resp Response)
}
