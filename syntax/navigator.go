package syntax

import "github.com/vektah/gqlparser/v2/ast"

// Navigator keeps the ancestry of the node being visited. Nodes never point
// back to their parents, so every traversal carries its own navigator.
type Navigator struct {
	path        []interface{}
	inExtension bool
}

func (n *Navigator) Push(node interface{}) {
	n.path = append(n.path, node)
}

func (n *Navigator) Pop() {
	if len(n.path) == 0 {
		return
	}
	n.path = n.path[:len(n.path)-1]
}

// Parent returns the closest ancestor, nil at the document level
func (n *Navigator) Parent() interface{} {
	if len(n.path) == 0 {
		return nil
	}
	return n.path[len(n.path)-1]
}

// InExtension is true while walking an `extend ...` definition
func (n *Navigator) InExtension() bool {
	return n.inExtension
}

// Definition returns the enclosing type definition
func (n *Navigator) Definition() *ast.Definition {
	def, _ := Nearest[*ast.Definition](n)
	return def
}

// Nearest returns the closest ancestor of type T
func Nearest[T any](n *Navigator) (T, bool) {
	for i := len(n.path) - 1; i >= 0; i-- {
		if v, ok := n.path[i].(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
