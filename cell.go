package canopy

// Source is anything a receiver can listen to.
//
// Subscribe registers fn and returns the function that removes it. Sources that
// hold a value replay it to fn before Subscribe returns.
type Source[T any] interface {
	Subscribe(fn func(T)) Unsubscribe
}

// Cell holds a value and notifies listeners only when the value changes.
//
// Change detection uses the cell's comparer. NewCell uses ==, which pins the
// following behaviour: nil pointers and nil interfaces compare equal, so setting
// nil twice notifies once; NaN never equals itself, so setting NaN always
// notifies. The zero value uses == as well and panicking comparisons (an
// interface holding an uncomparable value) count as a change.
type Cell[T any] struct {
	value       T
	initialized bool
	equal       func(a, b T) bool
	observers   Observers[T]
}

// NewCell creates an empty cell comparing values with ==.
func NewCell[T comparable]() *Cell[T] {
	return &Cell[T]{equal: func(a, b T) bool { return a == b }}
}

// CellOf creates a cell that already holds v.
func CellOf[T comparable](v T) *Cell[T] {
	c := NewCell[T]()
	c.Set(v)
	return c
}

// NewCellFunc creates an empty cell using eq as its comparer.
// eq must report true when a and b are the same value.
func NewCellFunc[T any](eq func(a, b T) bool) *Cell[T] {
	return &Cell[T]{equal: eq}
}

// Set stores v and notifies listeners when v differs from the current value.
// The first Set on a cell always notifies.
func (c *Cell[T]) Set(v T) {
	changed := !c.initialized || !c.Equal(c.value, v)
	c.value = v
	c.initialized = true
	if changed {
		c.observers.Invoke(v)
	}
}

// Update replaces the value with fn applied to the current one.
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// Get returns the current value, or the zero value if the cell was never set.
func (c *Cell[T]) Get() T {
	return c.value
}

// Initialized reports whether Set has been called at least once.
func (c *Cell[T]) Initialized() bool {
	return c.initialized
}

// Equal applies the cell's comparer.
func (c *Cell[T]) Equal(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return anyEqual(a, b)
}

// Subscribe registers fn and replays the current value to it when the cell is
// initialized.
func (c *Cell[T]) Subscribe(fn func(T)) Unsubscribe {
	unsub := c.observers.Add(fn)
	if c.initialized {
		fn(c.value)
	}
	return unsub
}

// Listeners returns the number of live subscriptions.
func (c *Cell[T]) Listeners() int {
	return c.observers.Len()
}

// Channel forwards every value it is given. It stores nothing, never replays and
// never deduplicates.
type Channel[T any] struct {
	observers Observers[T]
}

// NewChannel creates a channel with no listeners.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{}
}

// Set forwards v to every listener.
func (c *Channel[T]) Set(v T) {
	c.observers.Invoke(v)
}

// Subscribe registers fn.
func (c *Channel[T]) Subscribe(fn func(T)) Unsubscribe {
	return c.observers.Add(fn)
}

// Listeners returns the number of live subscriptions.
func (c *Channel[T]) Listeners() int {
	return c.observers.Len()
}

// Constant replays a fixed value to each subscriber and keeps no listeners.
type Constant[T any] struct {
	value T
}

// ConstantOf creates a constant source holding v.
func ConstantOf[T any](v T) *Constant[T] {
	return &Constant[T]{value: v}
}

// Get returns the constant value.
func (c *Constant[T]) Get() T {
	return c.value
}

// Subscribe calls fn once with the value.
func (c *Constant[T]) Subscribe(fn func(T)) Unsubscribe {
	fn(c.value)
	return noopUnsubscribe
}
