package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/pumped-fn/canopy"
)

// TreeDebugExtension logs the node hierarchy when a binding problem occurs.
//
// Usage:
//
//	// Human-readable formatted output (with line breaks)
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelWarn)
//	ext := extensions.NewTreeDebugExtension(hierarchy, handler)
//
//	// Structured JSON logging (compact, machine-readable)
//	handler := slog.NewJSONHandler(os.Stdout, nil)
//	ext := extensions.NewTreeDebugExtension(hierarchy, handler)
//
//	// Silent (for testing)
//	ext := extensions.NewTreeDebugExtension(hierarchy, extensions.NewSilentHandler())
//
// The extension logs at WARN level for missing providers and at ERROR level for
// everything else.
type TreeDebugExtension struct {
	canopy.BaseExtension
	walker canopy.Walker

	// Track node states as lifecycle operations complete
	states map[any]canopy.State
	failed map[any]error
	logger *slog.Logger
}

// NewTreeDebugExtension creates a new tree debug extension.
// walker enumerates the hierarchy to draw, usually the *canopy.Hierarchy passed
// to canopy.WithTree.
func NewTreeDebugExtension(walker canopy.Walker, logHandler slog.Handler) *TreeDebugExtension {
	return &TreeDebugExtension{
		BaseExtension: canopy.NewBaseExtension("tree-debug"),
		walker:        walker,
		states:        make(map[any]canopy.State),
		failed:        make(map[any]error),
		logger:        slog.New(logHandler),
	}
}

// Wrap tracks node states for the rendered tree
func (e *TreeDebugExtension) Wrap(ctx context.Context, next func() error, op *canopy.Operation) error {
	err := next()
	if err != nil {
		e.failed[op.Node] = err
		return err
	}
	delete(e.failed, op.Node)
	if op.To == canopy.StateDestroyed {
		delete(e.states, op.Node)
		return nil
	}
	e.states[op.Node] = op.To
	return nil
}

// OnBindError logs the hierarchy around the node whose binding failed
func (e *TreeDebugExtension) OnBindError(err *canopy.BindError, engine *canopy.Engine) {
	level := slog.LevelError
	if err.Kind == canopy.KindResolutionFailure {
		level = slog.LevelWarn
	}

	attrs := []any{
		"node", err.NodeType,
		"kind", string(err.Kind),
		"error", err.Error(),
	}
	if e.walker != nil {
		attrs = append(attrs, "hierarchy", e.Render(engine, err.Node))
	}
	e.logger.Log(context.Background(), level, "Binding Error", attrs...)
}

// Render draws the hierarchy, marking each node with its lifecycle state and
// highlighting failed, which may be nil.
func (e *TreeDebugExtension) Render(engine *canopy.Engine, failed any) string {
	return RenderHierarchy(e.walker, func(node any) string {
		name := NodeName(engine, node)
		switch {
		case failed != nil && node == failed:
			return name + " ❌ FAILED"
		case e.failed[node] != nil:
			return fmt.Sprintf("%s ❌ (error: %v)", name, e.failed[node])
		}
		switch e.states[node] {
		case canopy.StateEnabled:
			return name + " ✓"
		case canopy.StateDisabled:
			return name + " (disabled)"
		case canopy.StateCreated:
			return name + " (created)"
		default:
			return name + " (pending)"
		}
	})
}

// RenderHierarchy draws every tree walker enumerates under a common root.
// label names each node.
func RenderHierarchy(walker canopy.Walker, label func(node any) string) string {
	root := tree.NewTree(tree.NodeString("•"))
	for _, r := range walker.Roots() {
		addSubtree(root, walker, r, label, map[any]bool{})
	}
	return root.String()
}

func addSubtree(parent *tree.Tree, walker canopy.Walker, node any, label func(any) string, seen map[any]bool) {
	if seen[node] {
		parent.AddChild(tree.NodeString(label(node) + " (cycle)"))
		return
	}
	seen[node] = true
	child := parent.AddChild(tree.NodeString(label(node)))
	for _, c := range walker.Children(node) {
		addSubtree(child, walker, c, label, seen)
	}
}

// NodeName labels a node: its String method when it has one, otherwise the
// name it was declared under, otherwise its Go type.
func NodeName(engine *canopy.Engine, node any) string {
	if s, ok := node.(fmt.Stringer); ok {
		return s.String()
	}
	if engine != nil {
		if spec, ok := engine.Registry().SpecOf(node); ok {
			return spec.Name()
		}
	}
	return fmt.Sprintf("%T", node)
}

// SilentHandler is a slog.Handler that discards all log output
// Useful for testing when you don't want log output
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}

// HumanHandler is a slog.Handler that formats logs for human readability
// with proper line breaks and visual formatting (especially for hierarchies)
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a new human-readable log handler
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{
		writer: writer,
		level:  level,
	}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Message == "Binding Error" {
		return h.handleBindError(record)
	}

	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleBindError(record slog.Record) error {
	var node, kind, errorMsg, hierarchy string

	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "node":
			node = a.Value.String()
		case "kind":
			kind = a.Value.String()
		case "error":
			errorMsg = a.Value.String()
		case "hierarchy":
			hierarchy = a.Value.String()
		}
		return true
	})

	writes := []func() error{
		func() error { _, err := fmt.Fprintln(h.writer); return err },
		func() error { _, err := fmt.Fprintln(h.writer, strings.Repeat("=", 70)); return err },
		func() error { _, err := fmt.Fprintf(h.writer, "[TreeDebug] Binding Error (%s)\n", record.Level); return err },
		func() error { _, err := fmt.Fprintln(h.writer, strings.Repeat("=", 70)); return err },
		func() error { _, err := fmt.Fprintf(h.writer, "\nNode: %s\n", node); return err },
		func() error { _, err := fmt.Fprintf(h.writer, "Kind: %s\n", kind); return err },
		func() error { _, err := fmt.Fprintf(h.writer, "Error: %s\n", errorMsg); return err },
	}
	if hierarchy != "" {
		writes = append(writes,
			func() error { _, err := fmt.Fprintf(h.writer, "\nHierarchy:\n%s\n", hierarchy); return err },
		)
	}
	writes = append(writes,
		func() error { _, err := fmt.Fprintln(h.writer, strings.Repeat("=", 70)); return err },
		func() error { _, err := fmt.Fprintln(h.writer); return err },
	)

	for _, write := range writes {
		if err := write(); err != nil {
			return err
		}
	}

	return nil
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *HumanHandler) WithGroup(name string) slog.Handler {
	return h
}
