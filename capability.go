package canopy

import "reflect"

// Capability is a typed value-or-stream slot a node exposes to its descendants.
//
// The set of implementations is closed: capabilities are built from a Source by
// NewCapability or by the Expose member of a TypeSpec.
type Capability interface {
	// Name is the declared member name.
	Name() string
	// Type is the exposed value type.
	Type() reflect.Type
	// Listen subscribes fn to the values, boxed.
	Listen(fn func(any)) Unsubscribe
	// Equal compares two boxed values with the source's comparer.
	Equal(a, b any) bool

	capability()
}

type sourceCapability[T any] struct {
	name string
	src  Source[T]
}

// NewCapability wraps src as a capability of type T.
func NewCapability[T any](name string, src Source[T]) Capability {
	return &sourceCapability[T]{name: name, src: src}
}

func (c *sourceCapability[T]) Name() string {
	return c.name
}

func (c *sourceCapability[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *sourceCapability[T]) Listen(fn func(any)) Unsubscribe {
	return c.src.Subscribe(func(v T) {
		fn(v)
	})
}

func (c *sourceCapability[T]) Equal(a, b any) bool {
	if eq, ok := c.src.(interface{ Equal(a, b T) bool }); ok {
		ta, okA := as[T](a)
		tb, okB := as[T](b)
		if okA && okB {
			return eq.Equal(ta, tb)
		}
	}
	return anyEqual(a, b)
}

func (c *sourceCapability[T]) capability() {}

// SourceOf returns the wrapped source when the capability was built from a Source[T].
func SourceOf[T any](c Capability) (Source[T], bool) {
	sc, ok := c.(*sourceCapability[T])
	if !ok {
		return nil, false
	}
	return sc.src, true
}
