package relay

import (
	"fmt"
	"log/slog"
)

// Options configures Boot.
type Options struct {
	// Namespace is the scan root: an import path, or a dot-separated path
	// relative to Module.
	Namespace string
	// Module is the module path used to resolve dot-separated namespaces.
	Module string
	// Catalog resolves scanned ids to components. Defaults to DefaultCatalog.
	Catalog *Catalog
	// Scanner lists the ids under Namespace. Defaults to a CatalogScanner.
	Scanner Scanner
	Logger  *slog.Logger
}

// Runtime is the initialized control plane: the component registry, the
// route table and the dispatcher over them. It is immutable once Boot
// returns and may serve requests concurrently.
type Runtime struct {
	namespace  string
	container  *Container
	routes     *RouteTable
	dispatcher *Dispatcher
}

// Boot scans the namespace, registers and wires the components it finds and
// builds the route table, in that order.
func Boot(opts Options) (*Runtime, error) {
	logger := loggerOrDefault(opts.Logger)
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog
	}
	scanner := opts.Scanner
	if scanner == nil {
		scanner = NewCatalogScanner(catalog, opts.Module)
	}

	ids, err := scanner.Scan(opts.Namespace)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", opts.Namespace, err)
	}
	logger.Info("scanned namespace", "namespace", opts.Namespace, "types", len(ids))

	container := NewContainer(catalog, logger)
	container.Register(ids)
	logger.Info("registered components", "entries", container.Len())

	Inject(container, logger)

	routes, err := BuildRoutes(container, logger)
	if err != nil {
		return nil, fmt.Errorf("build routes: %w", err)
	}
	logger.Info("built route table", "routes", routes.Len())

	return &Runtime{
		namespace:  opts.Namespace,
		container:  container,
		routes:     routes,
		dispatcher: NewDispatcher(routes, logger),
	}, nil
}

// ServeRequest implements Handler.
func (r *Runtime) ServeRequest(req Request, resp Response) {
	r.dispatcher.ServeRequest(req, resp)
}

// Namespace returns the scan root the runtime was booted with.
func (r *Runtime) Namespace() string { return r.namespace }

// Container returns the component registry.
func (r *Runtime) Container() *Container { return r.container }

// Routes returns the route table.
func (r *Runtime) Routes() *RouteTable { return r.routes }

// Dispatcher returns the request dispatcher.
func (r *Runtime) Dispatcher() *Dispatcher { return r.dispatcher }
