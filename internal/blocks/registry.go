package blocks

import (
	"fmt"
	"sort"
)

// ResponseFunc evaluates a block's complex frequency response on an angular
// frequency grid (rad/s) with the given parameter values.
type ResponseFunc func(w []float64, params map[string]float64) []complex128

// Descriptor bundles everything the rest of the system needs to know about
// one block type.
type Descriptor struct {
	TypeName    string
	DisplayName string
	Formula     string
	ParamOrder  []string
	Params      map[string]ParamMeta
	Response    ResponseFunc
}

// Defaults returns a fresh parameter map seeded with every default value.
func (d *Descriptor) Defaults() map[string]float64 {
	params := make(map[string]float64, len(d.Params))
	for name, meta := range d.Params {
		params[name] = meta.Default
	}
	return params
}

// Registry maps type names to descriptors. It is populated once at startup
// and treated as immutable afterward.
type Registry struct {
	types map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Descriptor)}
}

// Register adds a descriptor. Registering a duplicate type name is a
// programming error.
func (r *Registry) Register(d *Descriptor) error {
	if d.TypeName == "" {
		return fmt.Errorf("blocks: descriptor has empty type name")
	}
	if _, exists := r.types[d.TypeName]; exists {
		return fmt.Errorf("blocks: type %q already registered", d.TypeName)
	}
	r.types[d.TypeName] = d
	return nil
}

// Lookup returns the descriptor for a type name, or false if unknown.
func (r *Registry) Lookup(typeName string) (*Descriptor, bool) {
	d, ok := r.types[typeName]
	return d, ok
}

// Names lists registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
