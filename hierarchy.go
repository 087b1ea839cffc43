package canopy

// Tree supplies the parent relation of the host's hierarchy. Parent returns
// false for a root.
type Tree interface {
	Parent(node any) (any, bool)
}

// TreeFunc adapts a function to Tree.
type TreeFunc func(node any) (any, bool)

// Parent implements Tree.
func (f TreeFunc) Parent(node any) (any, bool) {
	return f(node)
}

// Walker is implemented by trees that can enumerate themselves downward.
// Debug tooling uses it to render whole hierarchies.
type Walker interface {
	Roots() []any
	Children(node any) []any
}

// Hierarchy is an in-memory Tree and Walker keyed by node value.
// Nodes must be comparable; pointers are the usual choice.
type Hierarchy struct {
	parents  map[any]any
	children map[any][]any
	roots    []any
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		parents:  make(map[any]any),
		children: make(map[any][]any),
	}
}

// Add attaches node under parent. A nil parent makes node a root.
// Re-adding a node moves it.
func (h *Hierarchy) Add(node, parent any) *Hierarchy {
	h.detach(node)
	if parent == nil {
		h.roots = append(h.roots, node)
		return h
	}
	h.parents[node] = parent
	h.children[parent] = append(h.children[parent], node)
	return h
}

// Remove detaches node and its whole subtree.
func (h *Hierarchy) Remove(node any) {
	h.detach(node)
	stack := []any{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range h.children[n] {
			delete(h.parents, c)
			stack = append(stack, c)
		}
		delete(h.children, n)
	}
}

func (h *Hierarchy) detach(node any) {
	if parent, ok := h.parents[node]; ok {
		h.children[parent] = removeElement(h.children[parent], node)
		delete(h.parents, node)
		return
	}
	h.roots = removeElement(h.roots, node)
}

// Parent implements Tree.
func (h *Hierarchy) Parent(node any) (any, bool) {
	p, ok := h.parents[node]
	return p, ok
}

// Roots implements Walker.
func (h *Hierarchy) Roots() []any {
	return append([]any(nil), h.roots...)
}

// Children implements Walker.
func (h *Hierarchy) Children(node any) []any {
	return append([]any(nil), h.children[node]...)
}
