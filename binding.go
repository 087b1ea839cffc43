package canopy

// ActiveBinding is a live subscription linking one receiver to its provider.
//
// While unregistered, incoming values overwrite a single pending slot instead of
// reaching the receiver. Registering flushes that slot, unless the pending value
// equals the last value actually delivered.
type ActiveBinding struct {
	instruction *BindingInstruction
	provider    any
	deliver     func(any)
	equal       func(a, b any) bool
	unsubscribe Unsubscribe

	registered bool
	pending    any
	hasPending bool
	last       any
	hasLast    bool
	disposed   bool
}

// Receiver returns the receiver name.
func (b *ActiveBinding) Receiver() string {
	return b.instruction.Receiver
}

// Instruction returns the compiled instruction behind the binding.
func (b *ActiveBinding) Instruction() *BindingInstruction {
	return b.instruction
}

// Provider returns the ancestor node the binding resolved to.
func (b *ActiveBinding) Provider() any {
	return b.provider
}

// Registered reports whether values currently reach the receiver.
func (b *ActiveBinding) Registered() bool {
	return b.registered
}

// Pending returns the buffered value, if any.
func (b *ActiveBinding) Pending() (any, bool) {
	return b.pending, b.hasPending
}

func (b *ActiveBinding) receive(v any) {
	if b.disposed {
		return
	}
	if !b.registered {
		b.pending = v
		b.hasPending = true
		return
	}
	b.emit(v)
}

func (b *ActiveBinding) emit(v any) {
	b.last = v
	b.hasLast = true
	b.deliver(v)
}

func (b *ActiveBinding) register() {
	if b.disposed || b.registered {
		return
	}
	b.registered = true
	if !b.hasPending {
		return
	}
	v := b.pending
	b.pending = nil
	b.hasPending = false
	if b.hasLast && b.equal(b.last, v) {
		return
	}
	b.emit(v)
}

func (b *ActiveBinding) unregister() {
	b.registered = false
}

// Dispose unsubscribes from the provider. Further values are dropped.
func (b *ActiveBinding) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.registered = false
	b.pending = nil
	b.hasPending = false
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}
