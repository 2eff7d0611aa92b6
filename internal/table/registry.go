package table

import (
	"sort"
	"sync"
)

// Registry holds the tables of one application, keyed by view name.
//
// Options passed to [NewRegistry] apply to every table it creates, before the per-table options.
type Registry struct {
	mu      sync.RWMutex
	tables  map[string]*Table
	options []Option
}

// NewRegistry creates an empty [Registry].
func NewRegistry(options ...Option) *Registry {
	return &Registry{
		tables:  make(map[string]*Table),
		options: options,
	}
}

// Register creates a table for cfg under name, replacing any table already registered there.
func (r *Registry) Register(name string, cfg Config, options ...Option) *Table {
	all := append(append([]Option(nil), r.options...), options...)
	t := New(cfg, all...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[name] = t
	return t
}

// Get returns the table registered under name.
func (r *Registry) Get(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
