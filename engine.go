package canopy

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/pumped-fn/canopy/internal/logging"
)

// Engine owns the caches shared by every node of a hierarchy: type
// descriptions, materialized capabilities, compiled plans and the per-node
// controllers. It is an ordinary value; create one per hierarchy or share one
// process-wide.
//
// Engine is not safe for concurrent use.
type Engine struct {
	tree         Tree
	introspector Introspector
	logger       *slog.Logger
	extensions   []Extension

	registry    *Registry
	resolver    *Resolver
	plans       *PlanCache
	controllers map[any]*Controller
	order       []any
}

// EngineOption is a modifier for engines
type EngineOption func(*Engine)

// WithTree sets the parent relation. Without it every node is a root.
func WithTree(tree Tree) EngineOption {
	return func(e *Engine) {
		e.tree = tree
	}
}

// WithIntrospector sets where type descriptions come from.
func WithIntrospector(introspector Introspector) EngineOption {
	return func(e *Engine) {
		e.introspector = introspector
	}
}

// WithLogger sets the logger binding problems are reported to.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithExtension returns an option that registers an extension to an engine
func WithExtension(ext Extension) EngineOption {
	return func(e *Engine) {
		e.extensions = append(e.extensions, ext)
	}
}

// NewEngine creates an engine. Extensions are initialized in Order.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		controllers: make(map[any]*Controller),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tree == nil {
		e.tree = TreeFunc(func(any) (any, bool) { return nil, false })
	}
	if e.introspector == nil {
		e.introspector = NewCatalog()
	}
	if e.logger == nil {
		e.logger = logging.New(slog.LevelWarn)
	}

	e.registry = NewRegistry(e.introspector, e.reportBindError)
	e.resolver = NewResolver(e.tree, e.registry)
	e.plans = NewPlanCache(e.registry, e.reportBindError)

	sort.SliceStable(e.extensions, func(i, j int) bool {
		return e.extensions[i].Order() < e.extensions[j].Order()
	})
	for _, ext := range e.extensions {
		if err := ext.Init(e); err != nil {
			return nil, fmt.Errorf("initializing extension %s: %w", ext.Name(), err)
		}
	}
	return e, nil
}

// MustEngine is NewEngine that panics on error.
func MustEngine(opts ...EngineOption) *Engine {
	e, err := NewEngine(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Tree returns the parent relation in use.
func (e *Engine) Tree() Tree {
	return e.tree
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Registry returns the capability registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Resolver returns the hierarchy resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Plans returns the binding plan cache.
func (e *Engine) Plans() *PlanCache {
	return e.plans
}

// Controller returns node's lifecycle controller, creating it in the
// Uninitialized state on first use. cfg is only used when the controller is
// created. A destroyed node keeps its destroyed controller, so every later
// lifecycle call on it fails with ErrInvalidTransition.
func (e *Engine) Controller(node any, cfg Config) *Controller {
	if c, ok := e.controllers[node]; ok {
		return c
	}
	c := &Controller{
		engine: e,
		node:   node,
		config: append(Config(nil), cfg...),
	}
	e.controllers[node] = c
	e.order = appendUnique(e.order, node)
	return c
}

// Activate returns node's controller after enabling it.
func (e *Engine) Activate(node any, cfg Config) (*Controller, error) {
	c := e.Controller(node, cfg)
	if err := c.Enable(); err != nil {
		return c, err
	}
	return c, nil
}

// Capabilities returns node's materialized capabilities.
func (e *Engine) Capabilities(node any) []Capability {
	return e.registry.Capabilities(node)
}

// Find resolves the nearest ancestor capability assignable to t.
func (e *Engine) Find(node any, t reflect.Type) (Match, bool) {
	return e.resolver.Find(node, t)
}

// Dispose destroys every live controller, most recently created first, then
// disposes the extensions.
func (e *Engine) Dispose() error {
	for i := len(e.order) - 1; i >= 0; i-- {
		c, ok := e.controllers[e.order[i]]
		if !ok || c.state == StateDestroyed {
			continue
		}
		if err := c.Destroy(); err != nil {
			return fmt.Errorf("destroying %T: %w", c.node, err)
		}
	}
	e.order = nil

	for _, ext := range e.extensions {
		if err := ext.Dispose(e); err != nil {
			return fmt.Errorf("disposing extension %s: %w", ext.Name(), err)
		}
	}
	return nil
}

// forget drops node from the dispose order. Its controller stays behind in the
// Destroyed state so the node cannot be brought back.
func (e *Engine) forget(node any) {
	e.order = removeElement(e.order, node)
}

func (e *Engine) reportBindError(err *BindError) {
	attrs := []any{
		"kind", string(err.Kind),
		"node", err.NodeType,
	}
	if err.Member != "" {
		attrs = append(attrs, "member", err.Member)
	}
	if err.Path != "" {
		attrs = append(attrs, "path", err.Path)
	}
	attrs = append(attrs, "error", err.Cause)

	switch err.Kind {
	case KindUninitializedCapability, KindBindingConstruction:
		e.logger.Error("binding problem", attrs...)
	default:
		e.logger.Warn("binding problem", attrs...)
	}

	for _, ext := range e.extensions {
		ext.OnBindError(err, e)
	}
}

func (e *Engine) reportCleanupError(err *CleanupError) {
	for _, ext := range e.extensions {
		if ext.OnCleanupError(err) {
			return
		}
	}
	e.logger.Error("cleanup failed", "node", fmt.Sprintf("%T", err.Node), "error", err.Err)
}

// run executes fn wrapped by the extensions, last registered innermost.
func (e *Engine) run(op *Operation, fn func() error) error {
	next := fn
	for i := len(e.extensions) - 1; i >= 0; i-- {
		ext := e.extensions[i]
		inner := next
		next = func() error {
			return ext.Wrap(context.Background(), inner, op)
		}
	}
	return next()
}
