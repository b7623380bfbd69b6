package model

import (
	"maps"
	"slices"
)

// builtins is the immutable table of default element types. Every registry
// starts from a copy of it.
var builtins = map[string]Behavior{
	"rect":     RectNode{},
	"circle":   CircleNode{},
	"text":     TextNode{},
	"line":     LineEdge{},
	"polyline": PolylineEdge{},
}

// BuiltinTypes returns the names of the default element types.
func BuiltinTypes() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// Registry maps type names to behaviors.
type Registry struct {
	types map[string]Behavior
}

// NewRegistry returns a registry seeded with the built-in types.
func NewRegistry() *Registry {
	return &Registry{types: maps.Clone(builtins)}
}

// Register binds name to b, replacing any previous binding.
func (r *Registry) Register(name string, b Behavior) {
	r.types[name] = b
}

// Lookup returns the behavior registered under name.
func (r *Registry) Lookup(name string) (Behavior, bool) {
	b, ok := r.types[name]
	return b, ok
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.types))
}
