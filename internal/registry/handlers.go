package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/trainconf/internal/config"
)

// RegisterResolver registers a resolve hook under name.
func (r *Registry) RegisterResolver(name string, fn config.ResolveFunc) {
	if _, exists := r.ResolverRegistry[name]; exists {
		panic(fmt.Sprintf("resolver with name '%s' already registered", name))
	}
	if fn == nil {
		panic(fmt.Sprintf("resolver '%s' is nil", name))
	}
	slog.Debug("Registering resolver.", "name", name)
	r.ResolverRegistry[name] = fn
}

// RegisterValidator registers a validate hook under name.
func (r *Registry) RegisterValidator(name string, fn config.ValidateFunc) {
	if _, exists := r.ValidatorRegistry[name]; exists {
		panic(fmt.Sprintf("validator with name '%s' already registered", name))
	}
	if fn == nil {
		panic(fmt.Sprintf("validator '%s' is nil", name))
	}
	slog.Debug("Registering validator.", "name", name)
	r.ValidatorRegistry[name] = fn
}

// RegisterSchema registers a schema built in Go under its own name.
func (r *Registry) RegisterSchema(s *config.Schema) {
	if s == nil {
		panic("cannot register a nil schema")
	}
	if _, exists := r.SchemaRegistry[s.Name()]; exists {
		panic(fmt.Sprintf("schema with name '%s' already registered", s.Name()))
	}
	slog.Debug("Registering schema.", "name", s.Name())
	r.SchemaRegistry[s.Name()] = s
}
