package canopy

import (
	"fmt"
	"reflect"
)

// TypeSpec is the declared description of a node or data type: the capabilities
// it exposes, the receivers it declares and the accessors usable in access paths.
// Member order is the order passed to Define and is what "first declared" means
// everywhere in the engine.
type TypeSpec struct {
	name         string
	typ          reflect.Type
	capabilities []CapabilityDescriptor
	receivers    []ReceiverDescriptor
	accessors    []AccessorDescriptor
}

// CapabilityDescriptor describes one exposed capability.
type CapabilityDescriptor struct {
	Name string
	Type reflect.Type
	read func(node any) (Capability, bool)
}

// ReceiverDescriptor describes one receiving method.
type ReceiverDescriptor struct {
	Name  string
	Param reflect.Type
	bind  func(node any) func(any)
}

// AccessorDescriptor describes one access path hop.
type AccessorDescriptor struct {
	Name string
	// Result is the value type the hop yields. For source accessors it is the
	// type carried by the returned source.
	Result reflect.Type
	// Source reports whether the accessor returns a source that has to be
	// subscribed to instead of a plain value.
	Source bool
	get    func(target any) any
	open   func(target any) (Capability, bool)
}

// Member is one entry of a TypeSpec for type N.
type Member[N any] interface {
	apply(spec *TypeSpec)
}

type memberFunc[N any] func(spec *TypeSpec)

func (f memberFunc[N]) apply(spec *TypeSpec) {
	f(spec)
}

// Define declares type N under name.
func Define[N any](name string, members ...Member[N]) *TypeSpec {
	spec := &TypeSpec{
		name: name,
		typ:  reflect.TypeFor[N](),
	}
	for _, m := range members {
		m.apply(spec)
	}
	return spec
}

// Named declares a type that carries no members, so configuration can refer to
// it by name in a type override.
func Named[T any](name string) *TypeSpec {
	return Define[T](name)
}

// Expose declares a capability of type T read from the node by get.
// A nil source returned by get is an uninitialized capability.
//
//	canopy.Expose[*Game, int]("score", func(g *Game) *canopy.Cell[int] { return g.Score })
func Expose[N any, T any, S Source[T]](name string, get func(N) S) Member[N] {
	return memberFunc[N](func(spec *TypeSpec) {
		spec.capabilities = append(spec.capabilities, CapabilityDescriptor{
			Name: name,
			Type: reflect.TypeFor[T](),
			read: func(node any) (Capability, bool) {
				src := get(node.(N))
				if isNil(src) {
					return nil, false
				}
				return NewCapability[T](name, src), true
			},
		})
	})
}

// Receive declares a receiver taking values of type T.
//
//	canopy.Receive("OnScore", (*Display).OnScore)
func Receive[N any, T any](name string, fn func(N, T)) Member[N] {
	return memberFunc[N](func(spec *TypeSpec) {
		spec.receivers = append(spec.receivers, ReceiverDescriptor{
			Name:  name,
			Param: reflect.TypeFor[T](),
			bind: func(node any) func(any) {
				n := node.(N)
				return func(v any) {
					t, _ := as[T](v)
					fn(n, t)
				}
			},
		})
	})
}

// Accessor declares a plain access path hop from N to T.
func Accessor[N any, T any](name string, get func(N) T) Member[N] {
	return memberFunc[N](func(spec *TypeSpec) {
		spec.accessors = append(spec.accessors, AccessorDescriptor{
			Name:   name,
			Result: reflect.TypeFor[T](),
			get: func(target any) any {
				return get(target.(N))
			},
		})
	})
}

// SourceAccessor declares an access path hop whose result is itself a source.
// Values flowing past this hop come from subscribing to the returned source.
func SourceAccessor[N any, T any, S Source[T]](name string, get func(N) S) Member[N] {
	return memberFunc[N](func(spec *TypeSpec) {
		spec.accessors = append(spec.accessors, AccessorDescriptor{
			Name:   name,
			Result: reflect.TypeFor[T](),
			Source: true,
			open: func(target any) (Capability, bool) {
				src := get(target.(N))
				if isNil(src) {
					return nil, false
				}
				return NewCapability[T](name, src), true
			},
		})
	})
}

// Name returns the declared name.
func (s *TypeSpec) Name() string {
	return s.name
}

// Type returns the described Go type.
func (s *TypeSpec) Type() reflect.Type {
	return s.typ
}

// Capabilities returns the capability descriptors in declaration order.
func (s *TypeSpec) Capabilities() []CapabilityDescriptor {
	return append([]CapabilityDescriptor(nil), s.capabilities...)
}

// Receivers returns the receiver descriptors in declaration order.
func (s *TypeSpec) Receivers() []ReceiverDescriptor {
	return append([]ReceiverDescriptor(nil), s.receivers...)
}

// Accessor looks up an accessor by name.
func (s *TypeSpec) Accessor(name string) (AccessorDescriptor, bool) {
	for _, a := range s.accessors {
		if a.Name == name {
			return a, true
		}
	}
	return AccessorDescriptor{}, false
}

func (s *TypeSpec) receiver(name string) (ReceiverDescriptor, bool) {
	for _, r := range s.receivers {
		if r.Name == name {
			return r, true
		}
	}
	return ReceiverDescriptor{}, false
}

// Introspector describes types. It is consulted at most once per type; the
// Registry caches the answer.
type Introspector interface {
	Describe(t reflect.Type) (*TypeSpec, bool)
}

// TypeResolver maps configuration type names to Go types.
type TypeResolver interface {
	LookupType(name string) (reflect.Type, bool)
}

// Catalog is an Introspector and TypeResolver backed by TypeSpecs declared with
// Define.
type Catalog struct {
	byType map[reflect.Type]*TypeSpec
	byName map[string]*TypeSpec
}

// NewCatalog creates a catalog holding specs.
func NewCatalog(specs ...*TypeSpec) *Catalog {
	c := &Catalog{
		byType: make(map[reflect.Type]*TypeSpec),
		byName: make(map[string]*TypeSpec),
	}
	for _, s := range specs {
		c.Register(s)
	}
	return c
}

// Register adds spec. A spec registered later for the same type or name
// replaces the earlier one.
func (c *Catalog) Register(spec *TypeSpec) *Catalog {
	if spec == nil {
		panic("canopy: nil TypeSpec")
	}
	if prev, ok := c.byName[spec.name]; ok && prev.typ != spec.typ {
		delete(c.byType, prev.typ)
	}
	c.byType[spec.typ] = spec
	c.byName[spec.name] = spec
	return c
}

// Describe implements Introspector.
func (c *Catalog) Describe(t reflect.Type) (*TypeSpec, bool) {
	spec, ok := c.byType[t]
	return spec, ok
}

// LookupType implements TypeResolver.
func (c *Catalog) LookupType(name string) (reflect.Type, bool) {
	spec, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return spec.typ, true
}

// Len returns the number of registered specs.
func (c *Catalog) Len() int {
	return len(c.byType)
}

func (s *TypeSpec) String() string {
	return fmt.Sprintf("%s(%s)", s.name, s.typ)
}
