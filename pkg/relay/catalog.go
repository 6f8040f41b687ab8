package relay

import (
	"fmt"
	"sync"
)

// Catalog holds component descriptors keyed by qualified type id. It is
// filled at registration time, usually from generated init functions, and
// consulted by the container to resolve scanned identifiers.
type Catalog struct {
	mu    sync.RWMutex
	byID  map[string]*Component
	order []string
}

// DefaultCatalog is the catalog generated code registers into.
var DefaultCatalog = NewCatalog()

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]*Component)}
}

// Add registers c. A later component with the same id replaces the earlier one.
func (cat *Catalog) Add(c *Component) error {
	if c == nil {
		return fmt.Errorf("relay: nil component")
	}
	if c.Type == nil || c.ID == "" {
		return fmt.Errorf("relay: component %q has no type", c.ID)
	}
	for _, r := range c.Routes {
		if r.Handler == "" {
			return fmt.Errorf("relay: component %s has a route without a handler", c.ID)
		}
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if _, exists := cat.byID[c.ID]; !exists {
		cat.order = append(cat.order, c.ID)
	}
	cat.byID[c.ID] = c
	return nil
}

// MustAdd is like Add but panics on error.
func (cat *Catalog) MustAdd(c *Component) {
	if err := cat.Add(c); err != nil {
		panic(err)
	}
}

// Lookup returns the component registered under id.
func (cat *Catalog) Lookup(id string) (*Component, bool) {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	c, ok := cat.byID[id]
	return c, ok
}

// IDs returns all registered ids in registration order.
func (cat *Catalog) IDs() []string {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	ids := make([]string, len(cat.order))
	copy(ids, cat.order)
	return ids
}

// Len returns the number of registered components.
func (cat *Catalog) Len() int {
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	return len(cat.order)
}

// Register adds c to DefaultCatalog and panics on error.
func Register(c *Component) {
	DefaultCatalog.MustAdd(c)
}
