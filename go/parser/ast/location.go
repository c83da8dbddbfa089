package ast

// ExtendSpan widens the function node's Location to cover the locations of
// its descendants, and returns the widened span. It is the single point in
// the data model where a node is mutated after construction: the parse
// driver runs it once per function node, after the node's arguments have
// been attached.
//
// The walk descends the argument structure taking the first entry for the
// minimum bound and the last entry for the maximum bound, accumulating each
// visited node's own bound until it reaches a leaf. An empty trailing
// argument group stands for a bare "()" list with no child tokens of its
// own; the maximum is widened by 3 to cover it.
//
// ExtendSpan is idempotent: a second call returns the already-widened span
// without touching the node again.
func (fn *Function) ExtendSpan() Location {
	if fn.spanExtended {
		return fn.Location
	}
	fn.spanExtended = true

	loc := fn.Location
	if len(fn.Args) > 0 {
		if lo, ok := walkBound(fn.Args[0], true); ok && lo < loc.Min {
			loc.Min = lo
		}
		last := fn.Args[len(fn.Args)-1]
		if hi, ok := walkBound(last, false); ok && hi > loc.Max {
			loc.Max = hi
		}
		if group, ok := last.(*ArgGroup); ok && len(group.Items) == 0 {
			loc.Max += 3
		}
	}
	fn.Location = loc
	return loc
}

// walkBound returns the extreme bound reachable from node: the minimum when
// first is true, otherwise the maximum. The boolean result is false when the
// subtree carries no located nodes at all.
func walkBound(node Node, first bool) (int, bool) {
	if node == nil {
		return 0, false
	}
	switch n := node.(type) {
	case *ArgGroup:
		if len(n.Items) == 0 {
			return 0, false
		}
		return walkBound(pick(n.Items, first), first)
	case *Function:
		own := bound(n.Location, first)
		if len(n.Args) == 0 {
			return own, true
		}
		child, ok := walkBound(pick(n.Args, first), first)
		if !ok {
			return own, true
		}
		if first {
			return min(own, child), true
		}
		return max(own, child), true
	default:
		return bound(node.Span(), first), true
	}
}

func pick(nodes []Node, first bool) Node {
	if first {
		return nodes[0]
	}
	return nodes[len(nodes)-1]
}

func bound(loc Location, first bool) int {
	if first {
		return loc.Min
	}
	return loc.Max
}
