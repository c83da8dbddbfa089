package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkVisitsPreOrder(t *testing.T) {
	tree := &Query{
		Commands: []*Command{
			{
				BaseNode: BaseNode{Name: "where"},
				Args: []Node{
					&Function{
						BaseNode: BaseNode{Name: ">"},
						Subtype:  BinaryExpression,
						Args: []Node{
							&Column{
								BaseNode: BaseNode{Name: "a"},
								Args:     []Node{&Identifier{BaseNode: BaseNode{Name: "a"}}},
							},
							&Literal{BaseNode: BaseNode{Name: "1"}},
						},
					},
				},
			},
		},
	}

	var types []NodeType
	Walk(tree, func(n Node) bool {
		types = append(types, n.NodeType())
		return true
	})

	expected := []NodeType{TypeQuery, TypeCommand, TypeFunction, TypeColumn, TypeIdentifier, TypeLiteral}
	assert.Equal(t, expected, types)
}

func TestWalkVisitsOperatorBeforeArgs(t *testing.T) {
	fn := &Function{
		BaseNode: BaseNode{Name: "round"},
		Subtype:  VariadicCall,
		Operator: &Identifier{BaseNode: BaseNode{Name: "round"}},
		Args: []Node{
			&ArgGroup{Items: []Node{&Literal{BaseNode: BaseNode{Name: "1"}}}},
		},
	}

	var names []string
	Walk(fn, func(n Node) bool {
		names = append(names, n.NodeType().String())
		return true
	})
	assert.Equal(t, []string{"function", "identifier", "argGroup", "literal"}, names)
}

func TestWalkPrunes(t *testing.T) {
	tree := &Command{
		BaseNode: BaseNode{Name: "eval"},
		Args: []Node{
			&Function{
				BaseNode: BaseNode{Name: "="},
				Args:     []Node{&Column{BaseNode: BaseNode{Name: "a"}}, &Literal{BaseNode: BaseNode{Name: "1"}}},
			},
		},
	}

	count := 0
	Walk(tree, func(n Node) bool {
		count++
		return n.NodeType() != TypeFunction
	})
	assert.Equal(t, 2, count, "children of the pruned function must not be visited")
}

func TestWalkNilRoot(t *testing.T) {
	called := false
	Walk(nil, func(Node) bool {
		called = true
		return true
	})
	assert.False(t, called)
}
