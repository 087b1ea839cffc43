package canopy

import (
	"fmt"
	"reflect"
)

// State is a node's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateCreated
	StateEnabled
	StateDisabled
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreated:
		return "created"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Lifecycle hooks a node may implement. Each fires at most once per transition.
type (
	Creator interface {
		OnCreate()
	}
	Enabler interface {
		OnEnable()
	}
	Disabler interface {
		OnDisable()
	}
	Destroyer interface {
		OnDestroy()
	}
)

type cleanupEntry struct {
	fn func() error
}

// Controller provides lifecycle control for one node
type Controller struct {
	engine   *Engine
	node     any
	config   Config
	state    State
	plan     *Plan
	bindings []*ActiveBinding
	cleanups []cleanupEntry
	// moves counts state changes so an operation can tell whether a receiver
	// ran another lifecycle call on the node in the middle of it.
	moves int
}

func (c *Controller) moveTo(s State) {
	c.state = s
	c.moves++
}

// Node returns the controlled node.
func (c *Controller) Node() any {
	return c.node
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Plan returns the plan applied at creation, or nil before it.
func (c *Controller) Plan() *Plan {
	return c.plan
}

// Bindings returns the live bindings.
func (c *Controller) Bindings() []*ActiveBinding {
	return append([]*ActiveBinding(nil), c.bindings...)
}

// OnCleanup registers fn to run when the node is destroyed. Cleanups run in
// reverse registration order.
func (c *Controller) OnCleanup(fn func() error) {
	c.cleanups = append(c.cleanups, cleanupEntry{fn: fn})
}

// Create materializes the node's capabilities, applies its binding plan and
// fires OnCreate. Bindings stay unregistered until Enable, so values replayed
// while subscribing are buffered. A malformed configuration fails here and
// leaves the node uninitialized.
func (c *Controller) Create() error {
	if c.state != StateUninitialized {
		return c.invalid(OpCreate)
	}
	op := &Operation{Kind: OpCreate, Node: c.node, From: c.state, To: StateCreated}
	return c.engine.run(op, func() error {
		c.engine.registry.Capabilities(c.node)

		plan, err := c.engine.plans.Build(reflect.TypeOf(c.node), c.config)
		if err != nil {
			return fmt.Errorf("creating %T: %w", c.node, err)
		}
		c.plan = plan
		c.bindings = plan.Apply(c.engine.resolver, c.node, c.engine.reportBindError)
		c.moveTo(StateCreated)

		if h, ok := c.node.(Creator); ok {
			h.OnCreate()
		}
		return nil
	})
}

// Enable starts delivering to the node's receivers. On first use it creates
// the node. Buffered values are flushed: after creation always, after a
// Disable only when they differ from the last value delivered.
func (c *Controller) Enable() error {
	if c.state == StateUninitialized {
		if err := c.Create(); err != nil {
			return err
		}
	}
	if c.state != StateCreated && c.state != StateDisabled {
		return c.invalid(OpEnable)
	}
	op := &Operation{Kind: OpEnable, Node: c.node, From: c.state, To: StateEnabled}
	return c.engine.run(op, func() error {
		c.moveTo(StateEnabled)
		moves := c.moves
		for _, b := range c.bindings {
			b.register()
			if c.moves != moves {
				// A receiver moved the node on during the flush.
				op.To = c.state
				return nil
			}
		}
		if h, ok := c.node.(Enabler); ok {
			h.OnEnable()
		}
		return nil
	})
}

// Disable stops delivery. Values arriving while disabled overwrite a single
// pending slot per binding.
func (c *Controller) Disable() error {
	if c.state != StateEnabled {
		return c.invalid(OpDisable)
	}
	op := &Operation{Kind: OpDisable, Node: c.node, From: c.state, To: StateDisabled}
	return c.engine.run(op, func() error {
		c.moveTo(StateDisabled)
		for _, b := range c.bindings {
			b.unregister()
		}
		if h, ok := c.node.(Disabler); ok {
			h.OnDisable()
		}
		return nil
	})
}

// Destroy disposes the node's bindings, releases its capability list, runs the
// registered cleanups and fires OnDestroy. OnDestroy only fires for nodes that
// were created. No lifecycle call is accepted afterwards.
func (c *Controller) Destroy() error {
	if c.state == StateDestroyed {
		return c.invalid(OpDestroy)
	}
	op := &Operation{Kind: OpDestroy, Node: c.node, From: c.state, To: StateDestroyed}
	return c.engine.run(op, func() error {
		created := c.state != StateUninitialized
		for _, b := range c.bindings {
			b.Dispose()
		}
		c.bindings = nil
		c.engine.registry.Release(c.node)
		c.moveTo(StateDestroyed)
		c.engine.forget(c.node)

		for i := len(c.cleanups) - 1; i >= 0; i-- {
			if err := c.cleanups[i].fn(); err != nil {
				c.engine.reportCleanupError(&CleanupError{Node: c.node, Err: err})
			}
		}
		c.cleanups = nil

		if h, ok := c.node.(Destroyer); ok && created {
			h.OnDestroy()
		}
		return nil
	})
}

func (c *Controller) invalid(kind OperationKind) error {
	return fmt.Errorf("%w: %s %T while %s", ErrInvalidTransition, kind, c.node, c.state)
}
