package canopy

// Claim is a snapshot published by a Claimable: the latest value and the last
// value a consumer acknowledged.
type Claim[T any] struct {
	Value   T
	Claimed T
}

// Acknowledge marks the snapshot's value as seen. Later snapshots inherit it.
func (c *Claim[T]) Acknowledge() {
	c.Claimed = c.Value
}

// Pending reports whether Value has not been acknowledged yet under eq.
func (c *Claim[T]) Pending(eq func(a, b T) bool) bool {
	return !eq(c.Value, c.Claimed)
}

// Claimable publishes values that keep the previous acknowledged value around
// until a consumer claims the new one, e.g. to animate from old to new.
//
// The backing storage is owned by the caller through the get/set pair. Every Set
// publishes a new snapshot, even when the value did not change.
type Claimable[T any] struct {
	get       func() T
	set       func(T)
	current   *Claim[T]
	observers Observers[*Claim[T]]
}

// NewClaimable wraps a getter/setter pair. The first snapshot has Value and
// Claimed both equal to get().
func NewClaimable[T any](get func() T, set func(T)) *Claimable[T] {
	v := get()
	return &Claimable[T]{
		get:     get,
		set:     set,
		current: &Claim[T]{Value: v, Claimed: v},
	}
}

// Set writes v through the setter and publishes a new snapshot.
func (c *Claimable[T]) Set(v T) {
	c.set(v)
	c.current = &Claim[T]{Value: c.get(), Claimed: c.current.Claimed}
	c.observers.Invoke(c.current)
}

// Value reads through the getter.
func (c *Claimable[T]) Value() T {
	return c.get()
}

// Get returns the current snapshot.
func (c *Claimable[T]) Get() *Claim[T] {
	return c.current
}

// Subscribe registers fn and replays the current snapshot.
func (c *Claimable[T]) Subscribe(fn func(*Claim[T])) Unsubscribe {
	unsub := c.observers.Add(fn)
	fn(c.current)
	return unsub
}
