package canopy

// walkAncestors visits the ancestors of node from its parent outward. The node
// itself is never visited. The walk stops when visit returns false, at the root,
// or at the first node seen twice, in which case it reports the cycle.
func walkAncestors(tree Tree, node any, visit func(ancestor any) bool) (cyclic bool) {
	if tree == nil {
		return false
	}
	visited := map[any]bool{node: true}
	current := node
	for {
		parent, ok := tree.Parent(current)
		if !ok || isNil(parent) {
			return false
		}
		if visited[parent] {
			return true
		}
		visited[parent] = true
		if !visit(parent) {
			return false
		}
		current = parent
	}
}

// Ancestors returns the ancestor path of node, nearest first.
func Ancestors(tree Tree, node any) []any {
	var path []any
	walkAncestors(tree, node, func(a any) bool {
		path = append(path, a)
		return true
	})
	return path
}

func appendUnique[T comparable](slice []T, item T) []T {
	for _, existing := range slice {
		if existing == item {
			return slice
		}
	}
	return append(slice, item)
}

func removeElement[T comparable](slice []T, item T) []T {
	for i, existing := range slice {
		if existing == item {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
