package ast

// Visitor is called for every node Walk visits. If Visit returns nil, the
// node's children are skipped; otherwise they are visited with the returned
// visitor, followed by a call of Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses the tree rooted at node in source order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, a := range n.Assignments {
			Walk(v, a)
		}

	case *Assignment:
		Walk(v, n.Identifier)
		Walk(v, n.Expression)

	case *FunctionCall:
		Walk(v, n.FunctionName)
		for _, arg := range n.Arguments {
			Walk(v, arg)
		}

	case *FunctionDefinition:
		for _, p := range n.Parameters {
			Walk(v, p)
		}
		Walk(v, n.Body)

	case *Block:
		for _, a := range n.Assignments {
			Walk(v, a)
		}
		Walk(v, n.Expression)

	case *Identifier, *Number:
		// leaves
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at node, calling f for each node. If f
// returns false, the children of that node are skipped. After the children
// of a node are visited, f is called with nil.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// NodeAt returns the innermost node whose span contains offset, or nil.
func NodeAt(root Node, offset int) Node {
	var found Node
	Inspect(root, func(n Node) bool {
		if n == nil || !n.Span().Contains(offset) {
			return false
		}
		found = n
		return true
	})
	return found
}
