package relay

import "context"

// WebServer is a transport that feeds every request it receives to a Handler.
type WebServer interface {
	// Mount routes all requests to h.
	Mount(h Handler)
	// Start listens on addr and blocks until the server stops.
	Start(addr string) error
	// Stop shuts the server down gracefully.
	Stop(ctx context.Context) error
	Name() string
}
