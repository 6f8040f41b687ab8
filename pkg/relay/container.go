package relay

import (
	"log/slog"
	"reflect"
)

// Entry is a named instance held by the container.
type Entry struct {
	Name      string
	Instance  any
	Component *Component
}

// Container is the name-keyed component registry. It is filled once during
// boot and read-only afterwards.
type Container struct {
	catalog *Catalog
	logger  *slog.Logger
	entries []Entry
	index   map[string]int
}

// NewContainer creates an empty container resolving ids against cat.
func NewContainer(cat *Catalog, logger *slog.Logger) *Container {
	return &Container{
		catalog: cat,
		logger:  loggerOrDefault(logger),
		index:   make(map[string]int),
	}
}

// Register instantiates every controller and service among ids. Failures
// are logged and the affected component is left out.
func (c *Container) Register(ids []string) {
	for _, id := range ids {
		comp, ok := c.catalog.Lookup(id)
		if !ok || comp.Stereotype == None {
			c.logger.Debug("skipping type without stereotype", "type", id)
			continue
		}

		inst, err := comp.instantiate()
		if err != nil {
			c.logger.Error("failed to instantiate component", "type", id, "error", err)
			continue
		}

		switch comp.Stereotype {
		case Controller:
			c.put(DerivedName(comp.Type), inst, comp)
		case Service:
			name := comp.Name
			if name == "" {
				name = DerivedName(comp.Type)
			}
			c.put(name, inst, comp)

			instType := reflect.TypeOf(inst)
			for _, capability := range comp.Capabilities {
				if capability.Type == nil || !instType.Implements(capability.Type) {
					c.logger.Warn("service does not implement declared capability",
						"type", id, "capability", capability.Tag)
					continue
				}
				c.put(capability.Tag, inst, comp)
			}
		}
	}
}

// Add stores inst under name directly, bypassing the catalog.
func (c *Container) Add(name string, inst any, comp *Component) {
	c.put(name, inst, comp)
}

func (c *Container) put(name string, inst any, comp *Component) {
	if i, exists := c.index[name]; exists {
		c.logger.Debug("overwriting registry entry", "name", name)
		c.entries[i] = Entry{Name: name, Instance: inst, Component: comp}
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Instance: inst, Component: comp})
	c.logger.Debug("registered component", "name", name, "type", reflect.TypeOf(inst))
}

// Get returns the instance stored under name.
func (c *Container) Get(name string) (any, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Instance, true
}

// Entries returns the registry entries in stored order.
func (c *Container) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the registry keys in stored order.
func (c *Container) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of registry keys.
func (c *Container) Len() int {
	return len(c.entries)
}
