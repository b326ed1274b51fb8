package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Module is the interface that all function modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps the function names used in graph files to Go functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]any
}

// New creates an empty Registry and registers the given modules into it.
func New(modules ...Module) *Registry {
	r := &Registry{funcs: make(map[string]any)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterFunc registers fn under name. Registering a name twice is a
// programming error and panics.
func (r *Registry) RegisterFunc(name string, fn any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		panic(fmt.Sprintf("function with name '%s' already registered", name))
	}
	slog.Debug("Registering function.", "name", name)
	r.funcs[name] = fn
}

// Func returns the function registered under name.
func (r *Registry) Func(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
