package canopy

// Unsubscribe detaches a listener. Calling it more than once is a no-op.
type Unsubscribe func()

func noopUnsubscribe() {}

// Observers is an ordered multicast list that stays well-ordered under reentrancy.
//
// Listeners run in subscription order. A listener removed while a pass is running
// is skipped for the rest of that pass. An Invoke issued from inside a listener is
// not run nested: it is queued and executed as a full pass once the current pass
// returns, so stack depth does not grow with the number of reentrant calls.
// A queued value only reaches listeners that were added before it was queued.
//
// The zero value is ready to use. Observers is not safe for concurrent use.
type Observers[T any] struct {
	slots    []*observerSlot[T]
	dead     int
	running  bool
	queued   []queuedValue[T]
	enqueued uint64
}

type observerSlot[T any] struct {
	fn func(T)
	// since is the enqueue count when the slot was added. Values queued before
	// that were already visible to the subscriber through replay.
	since uint64
}

type queuedValue[T any] struct {
	v   T
	seq uint64
}

// Add appends a listener and returns the function that removes it.
func (o *Observers[T]) Add(fn func(T)) Unsubscribe {
	s := &observerSlot[T]{fn: fn, since: o.enqueued}
	o.slots = append(o.slots, s)
	return func() {
		if s.fn == nil {
			return
		}
		s.fn = nil
		o.dead++
		if !o.running && o.dead > len(o.slots)/2 {
			o.compact()
		}
	}
}

// Len returns the number of live listeners.
func (o *Observers[T]) Len() int {
	return len(o.slots) - o.dead
}

// Invoke delivers v to every live listener.
func (o *Observers[T]) Invoke(v T) {
	if o.running {
		o.enqueued++
		o.queued = append(o.queued, queuedValue[T]{v: v, seq: o.enqueued})
		return
	}

	o.running = true
	defer func() {
		// A panicking listener must not leave the list stuck in dispatch mode.
		o.running = false
		o.queued = nil
		o.compact()
	}()

	o.pass(v, o.enqueued+1)
	for len(o.queued) > 0 {
		q := o.queued[0]
		o.queued[0] = queuedValue[T]{}
		o.queued = o.queued[1:]
		o.pass(q.v, q.seq)
	}
}

// pass delivers v to the slots added before v was enqueued as seq.
func (o *Observers[T]) pass(v T, seq uint64) {
	// Listeners added during the pass receive their value through replay, not here.
	n := len(o.slots)
	for i := 0; i < n; i++ {
		s := o.slots[i]
		if s.fn != nil && s.since < seq {
			s.fn(v)
		}
	}
}

func (o *Observers[T]) compact() {
	if o.dead == 0 {
		return
	}
	live := o.slots[:0]
	for _, s := range o.slots {
		if s.fn != nil {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(o.slots); i++ {
		o.slots[i] = nil
	}
	o.slots = live
	o.dead = 0
}
