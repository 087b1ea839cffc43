package canopy

import "reflect"

// Match is a resolved provider.
type Match struct {
	Capability Capability
	Provider   any
}

// Resolver finds the nearest ancestor exposing a capability type.
type Resolver struct {
	tree     Tree
	registry *Registry
}

// NewResolver creates a resolver over tree using registry to materialize
// ancestors' capabilities.
func NewResolver(tree Tree, registry *Registry) *Resolver {
	return &Resolver{tree: tree, registry: registry}
}

// Find walks node's ancestors, nearest first, and returns the first capability
// whose type is assignable to want. node itself is never considered. A cycle in
// the parent relation ends the walk at the first repeated node.
func (r *Resolver) Find(node any, want reflect.Type) (Match, bool) {
	var found Match
	var ok bool
	walkAncestors(r.tree, node, func(ancestor any) bool {
		for _, c := range r.registry.Capabilities(ancestor) {
			if c.Type().AssignableTo(want) {
				found = Match{Capability: c, Provider: ancestor}
				ok = true
				return false
			}
		}
		return true
	})
	return found, ok
}

// Lookup finds the nearest ancestor capability assignable to T.
func Lookup[T any](r *Resolver, node any) (Match, bool) {
	return r.Find(node, reflect.TypeFor[T]())
}
