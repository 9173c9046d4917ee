package function

import (
	"errors"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
)

// Descriptor is the published shape of a registered function.
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Registry holds the named functions the executor can dispatch to.
// Registration normally happens once at startup; lookups are concurrent.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a function. Names must be unique and a handler is required.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return errors.New("function name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("function %s has no handler", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("function %s already registered", def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names lists registered functions in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Descriptors reflects every function's parameter struct into JSON schema.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		d := Descriptor{Name: def.Name, Description: def.Description}
		if def.Parameters != nil {
			schema := reflector.Reflect(def.Parameters)
			schema.Version = ""
			d.Parameters = schema
		}
		out = append(out, d)
	}
	return out
}
