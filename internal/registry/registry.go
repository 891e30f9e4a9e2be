package registry

import (
	"maps"
	"slices"

	"github.com/vk/trainconf/internal/config"
)

// Module is the interface that every package contributing schemas or hooks
// implements to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the hooks and schemas of a single application instance.
type Registry struct {
	ResolverRegistry  map[string]config.ResolveFunc
	ValidatorRegistry map[string]config.ValidateFunc
	SchemaRegistry    map[string]*config.Schema
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		ResolverRegistry:  make(map[string]config.ResolveFunc),
		ValidatorRegistry: make(map[string]config.ValidateFunc),
		SchemaRegistry:    make(map[string]*config.Schema),
	}
}

// NewWith creates a registry and lets every module register into it.
func NewWith(modules ...Module) *Registry {
	r := New()
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// Resolver looks up a resolve hook by name.
func (r *Registry) Resolver(name string) (config.ResolveFunc, bool) {
	fn, ok := r.ResolverRegistry[name]
	return fn, ok
}

// Validator looks up a validate hook by name.
func (r *Registry) Validator(name string) (config.ValidateFunc, bool) {
	fn, ok := r.ValidatorRegistry[name]
	return fn, ok
}

// Schema looks up a registered schema by name.
func (r *Registry) Schema(name string) (*config.Schema, bool) {
	s, ok := r.SchemaRegistry[name]
	return s, ok
}

// SchemaNames returns the registered schema names in sorted order.
func (r *Registry) SchemaNames() []string {
	return slices.Sorted(maps.Keys(r.SchemaRegistry))
}
