package ast

// Visitor is invoked for every node reached by Walk. Returning false prunes
// the node's children.
type Visitor func(Node) bool

// Walk traverses the tree rooted at node in pre-order, calling v for node
// and then for each of its children.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, v)
	}
}

// Children returns node's direct children in traversal order. For function
// nodes the resolved operator precedes the arguments.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *Query:
		out := make([]Node, 0, len(n.Commands))
		for _, cmd := range n.Commands {
			out = append(out, cmd)
		}
		return out
	case *Command:
		return n.Args
	case *Option:
		return n.Args
	case *Function:
		if n.Operator == nil {
			return n.Args
		}
		out := make([]Node, 0, len(n.Args)+1)
		out = append(out, n.Operator)
		return append(out, n.Args...)
	case *ArgGroup:
		return n.Items
	case *Column:
		return n.Args
	case *Order:
		return n.Args
	case *InlineCast:
		if n.Value == nil {
			return nil
		}
		return []Node{n.Value}
	case *List:
		out := make([]Node, 0, len(n.Values))
		for _, val := range n.Values {
			out = append(out, val)
		}
		return out
	default:
		return nil
	}
}
