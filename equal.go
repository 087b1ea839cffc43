package canopy

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// DeepEqual returns a comparer for values that == cannot handle (slices, maps,
// structs holding them). It uses go-cmp, so structs with unexported fields need
// an option such as cmpopts.IgnoreUnexported or cmp.AllowUnexported.
func DeepEqual[T any](opts ...cmp.Option) func(a, b T) bool {
	return func(a, b T) bool {
		return cmp.Equal(a, b, opts...)
	}
}

// anyEqual compares two boxed values with ==. Uncomparable dynamic types are
// treated as different.
func anyEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// isNil reports whether v carries no instance.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// as converts a boxed value to T. A nil box yields the zero value.
func as[T any](v any) (T, bool) {
	if v == nil {
		var zero T
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}
