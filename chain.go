package canopy

import (
	"fmt"
	"reflect"
	"strings"
)

// PathSeparator separates hop names in a configured access path.
const PathSeparator = "/"

// SpecSource provides type descriptions to the chain compiler.
type SpecSource interface {
	Spec(t reflect.Type) (*TypeSpec, bool)
}

type hop struct {
	name string
	in   reflect.Type
	acc  AccessorDescriptor
}

// Chain is a compiled access path. Plain hops are applied synchronously to the
// value arriving from the previous hop; source hops subscribe to the source the
// accessor returns and feed its values onward.
type Chain struct {
	path  []string
	start reflect.Type
	out   reflect.Type
	hops  []hop
}

// SplitPath splits a configured access path into hop names.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// CompileChain resolves path against the accessors declared for start and each
// following hop's result type.
func CompileChain(specs SpecSource, start reflect.Type, path []string) (*Chain, error) {
	c := &Chain{
		path:  append([]string(nil), path...),
		start: start,
	}
	current := start
	for i, name := range path {
		spec, ok := specs.Spec(current)
		if !ok {
			return nil, fmt.Errorf("segment %d %q: type %s declares no accessors: %w", i, name, current, ErrUnknownAccessor)
		}
		acc, ok := spec.Accessor(name)
		if !ok {
			return nil, fmt.Errorf("segment %d %q: %s has no such accessor: %w", i, name, spec.Name(), ErrUnknownAccessor)
		}
		c.hops = append(c.hops, hop{name: name, in: current, acc: acc})
		current = acc.Result
	}
	c.out = current
	return c, nil
}

// Path returns the hop names joined with PathSeparator.
func (c *Chain) Path() string {
	return strings.Join(c.path, PathSeparator)
}

// In returns the type the chain starts from.
func (c *Chain) In() reflect.Type {
	return c.start
}

// Out returns the type the chain delivers.
func (c *Chain) Out() reflect.Type {
	return c.out
}

// Hops returns the number of hops.
func (c *Chain) Hops() int {
	return len(c.hops)
}

// Bind subscribes the chain to provider and forwards the final values to sink.
// The returned function tears every subscription down.
func (c *Chain) Bind(provider Capability, sink func(any)) Unsubscribe {
	run := &chainRun{
		chain: c,
		subs:  make([]Unsubscribe, len(c.hops)),
		gens:  make([]uint64, len(c.hops)),
		sink:  sink,
	}
	root := provider.Listen(func(v any) {
		run.feed(0, v)
	})
	return func() {
		if run.closed {
			return
		}
		run.closed = true
		root()
		run.teardown(0)
	}
}

// chainRun is one live instance of a chain.
//
// subs[i] holds the subscription of source hop i. Every time a new value reaches
// hop i, the subscriptions at i and beyond are dropped before anything new is
// subscribed, so each source hop has at most one live subscription. gens[i]
// invalidates listeners of a hop whose subscription was replaced while it was
// still replaying.
type chainRun struct {
	chain  *Chain
	subs   []Unsubscribe
	gens   []uint64
	sink   func(any)
	closed bool
}

func (r *chainRun) feed(i int, v any) {
	if r.closed {
		return
	}
	r.teardown(i)
	for ; i < len(r.chain.hops); i++ {
		if isNil(v) {
			// Suspended until an upstream hop delivers an instance again.
			return
		}
		h := r.chain.hops[i]
		if !h.acc.Source {
			v = h.acc.get(v)
			continue
		}
		src, ok := h.acc.open(v)
		if !ok {
			return
		}
		r.subscribe(i, src)
		return
	}
	r.sink(v)
}

func (r *chainRun) subscribe(i int, src Capability) {
	gen := r.gens[i]
	next := i + 1
	unsub := src.Listen(func(x any) {
		if r.closed || r.gens[i] != gen {
			return
		}
		r.feed(next, x)
	})
	if r.closed || r.gens[i] != gen {
		// Replaced during the synchronous replay.
		unsub()
		return
	}
	r.subs[i] = unsub
}

func (r *chainRun) teardown(from int) {
	for j := from; j < len(r.subs); j++ {
		if r.subs[j] != nil {
			r.subs[j]()
			r.subs[j] = nil
		}
		r.gens[j]++
	}
}
