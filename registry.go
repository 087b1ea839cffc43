package canopy

import (
	"reflect"
)

// Registry discovers capabilities. Type descriptions are fetched from the
// Introspector once per type; capability lists are materialized once per node.
type Registry struct {
	introspector Introspector
	specs        *Cache[reflect.Type, *TypeSpec]
	instances    map[any]*instanceCapabilities
	report       func(*BindError)
}

type instanceCapabilities struct {
	node     any
	building bool
	built    bool
	caps     []Capability
}

// NewRegistry creates a registry over introspector. report receives the
// non-fatal conditions found while materializing; it may be nil.
func NewRegistry(introspector Introspector, report func(*BindError)) *Registry {
	if report == nil {
		report = func(*BindError) {}
	}
	return &Registry{
		introspector: introspector,
		specs:        NewCache[reflect.Type, *TypeSpec](),
		instances:    make(map[any]*instanceCapabilities),
		report:       report,
	}
}

// Spec returns the description of t, asking the introspector only the first
// time t is seen. Unknown types are cached as unknown.
func (r *Registry) Spec(t reflect.Type) (*TypeSpec, bool) {
	spec, _ := r.specs.GetOrBuild(t, func() (*TypeSpec, error) {
		if r.introspector == nil {
			return nil, nil
		}
		s, ok := r.introspector.Describe(t)
		if !ok {
			return nil, nil
		}
		return s, nil
	})
	return spec, spec != nil
}

// SpecOf returns the description of node's dynamic type.
func (r *Registry) SpecOf(node any) (*TypeSpec, bool) {
	return r.Spec(reflect.TypeOf(node))
}

// LookupType resolves a configured type name through the introspector.
func (r *Registry) LookupType(name string) (reflect.Type, bool) {
	tr, ok := r.introspector.(TypeResolver)
	if !ok {
		return nil, false
	}
	return tr.LookupType(name)
}

// Capabilities returns node's live capabilities, materializing them on first
// use. A request arriving while the same node is still being materialized is
// reported and answered with the capabilities found so far.
func (r *Registry) Capabilities(node any) []Capability {
	inst := r.instances[node]
	if inst == nil {
		inst = &instanceCapabilities{node: node}
		r.instances[node] = inst
	}
	if inst.built {
		return inst.caps
	}

	spec, _ := r.SpecOf(node)
	if inst.building {
		err := newBindError(KindReentrantBuild, spec, "", ErrReentrantBuild)
		err.Node = node
		r.report(err)
		return inst.caps
	}

	inst.building = true
	if spec != nil {
		for _, d := range spec.capabilities {
			c, ok := d.read(node)
			if !ok {
				err := newBindError(KindUninitializedCapability, spec, d.Name, ErrUninitialized)
				err.Node = node
				r.report(err)
				continue
			}
			inst.caps = append(inst.caps, c)
		}
	}
	inst.building = false
	inst.built = true

	if init, ok := node.(Initializer); ok {
		init.Initialize()
	}
	return inst.caps
}

// Materialized reports whether node's capabilities have been built.
func (r *Registry) Materialized(node any) bool {
	inst, ok := r.instances[node]
	return ok && inst.built
}

// Release forgets node's capability list.
func (r *Registry) Release(node any) {
	delete(r.instances, node)
}

// Initializer is implemented by nodes that want a call right after their
// capabilities have been materialized, before any descendant binds to them.
type Initializer interface {
	Initialize()
}
