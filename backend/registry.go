package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/drawpipe/gpu"
)

// Registry maps backend names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	// priority is consulted by Open(""); names not listed come after it in
	// registration order.
	priority []string
	order    []string
	closed   bool
}

// NewRegistry returns an empty registry that prefers the given names.
func NewRegistry(priority ...string) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		priority:  slices.Clone(priority),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(Native)
	})
	return defaultRegistry
}

// Register adds factory under name in the default registry.
// It is meant to be called from init() functions in backend packages.
func Register(name string, factory Factory) error {
	return Default().Register(name, factory)
}

// Register adds factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("backend: invalid registration %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBackend, name)
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

// Unregister removes name. It is a no-op for unknown names.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; !ok {
		return
	}
	delete(r.factories, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

// IsRegistered reports whether name has a factory.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Open creates a backend by name. An empty name selects the first
// registered backend by priority.
func (r *Registry) Open(name string) (gpu.Backend, error) {
	factory, resolved, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", resolved, err)
	}
	return b, nil
}

func (r *Registry) lookup(name string) (Factory, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, "", ErrRegistryClosed
	}
	if name != "" {
		f, ok := r.factories[name]
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrBackendNotRegistered, name)
		}
		return f, name, nil
	}
	for _, n := range r.priority {
		if f, ok := r.factories[n]; ok {
			return f, n, nil
		}
	}
	if len(r.order) > 0 {
		n := r.order[0]
		return r.factories[n], n, nil
	}
	return nil, "", ErrBackendNotRegistered
}

// Close drops every factory. Backends already opened stay valid and are
// released by their owners.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.factories = make(map[string]Factory)
	r.order = nil
}
