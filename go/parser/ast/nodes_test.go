package ast

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeTypeNames(t *testing.T) {
	tests := []struct {
		nt       NodeType
		expected string
	}{
		{TypeUnknown, "unknown"},
		{TypeCommand, "command"},
		{TypeOption, "option"},
		{TypeMode, "mode"},
		{TypeFunction, "function"},
		{TypeColumn, "column"},
		{TypeSource, "source"},
		{TypeIdentifier, "identifier"},
		{TypeLiteral, "literal"},
		{TypeList, "list"},
		{TypeTimeInterval, "timeInterval"},
		{TypeInlineCast, "inlineCast"},
		{TypeOrder, "order"},
		{TypeError, "error"},
		{TypeQuery, "query"},
		{TypeArgGroup, "argGroup"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.nt.String())
	}
	assert.Equal(t, "NodeType(99)", NodeType(99).String())
}

// marshal round-trips a node through its JSON encoder into a generic map.
func marshal(t *testing.T, node Node) map[string]any {
	t.Helper()
	data, err := json.Marshal(node)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestLiteralJSON(t *testing.T) {
	lit := &Literal{
		BaseNode:    BaseNode{Name: "42", Text: "42", Location: Location{Min: 3, Max: 4}},
		LiteralType: LiteralInteger,
		Value:       int64(42),
	}
	out := marshal(t, lit)
	assert.Equal(t, "literal", out["type"])
	assert.Equal(t, "integer", out["literalType"])
	assert.Equal(t, float64(42), out["value"])
	assert.Equal(t, map[string]any{"min": float64(3), "max": float64(4)}, out["location"])
	assert.Equal(t, false, out["incomplete"])
}

func TestLiteralJSONMapsNaNToNull(t *testing.T) {
	lit := &Literal{
		BaseNode:    BaseNode{Name: "bogus", Text: "bogus"},
		LiteralType: LiteralInteger,
		Value:       math.NaN(),
	}
	out := marshal(t, lit)
	assert.Nil(t, out["value"])
}

func TestParamJSON(t *testing.T) {
	p := &Param{
		BaseNode:  BaseNode{Name: "field", Text: "?field"},
		ParamKind: ParamNamed,
		Value:     "field",
	}
	out := marshal(t, p)
	assert.Equal(t, "literal", out["type"])
	assert.Equal(t, "param", out["literalType"])
	assert.Equal(t, "named", out["paramType"])
	assert.Equal(t, "field", out["value"])
}

func TestNodeTypeTags(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{"column", &Column{}, "column"},
		{"source", &Source{}, "source"},
		{"identifier", &Identifier{}, "identifier"},
		{"function", &Function{}, "function"},
		{"list", &List{}, "list"},
		{"timeInterval", &TimeInterval{}, "timeInterval"},
		{"inlineCast", &InlineCast{}, "inlineCast"},
		{"order", &Order{}, "order"},
		{"command", &Command{}, "command"},
		{"option", &Option{}, "option"},
		{"mode", &Mode{}, "mode"},
		{"unknown", &Unknown{}, "unknown"},
		{"error", &Error{}, "error"},
		{"query", &Query{}, "query"},
		{"argGroup", &ArgGroup{}, "argGroup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := marshal(t, tt.node)
			assert.Equal(t, tt.expected, out["type"])
		})
	}
}

func TestSourceJSONTypeName(t *testing.T) {
	src := &Source{SourceType: SourcePolicy, Index: "countries"}
	out := marshal(t, src)
	assert.Equal(t, "policy", out["sourceType"])
	assert.Equal(t, "countries", out["index"])
}

func TestFunctionJSONNesting(t *testing.T) {
	fn := &Function{
		BaseNode: BaseNode{Name: ">"},
		Subtype:  BinaryExpression,
		Args: []Node{
			&Column{BaseNode: BaseNode{Name: "a"}},
			&Literal{BaseNode: BaseNode{Name: "1"}, LiteralType: LiteralInteger, Value: int64(1)},
		},
	}
	out := marshal(t, fn)
	assert.Equal(t, "binary-expression", out["subtype"])

	args, ok := out["args"].([]any)
	require.True(t, ok)
	require.Len(t, args, 2)
	assert.Equal(t, "column", args[0].(map[string]any)["type"])
	assert.Equal(t, "literal", args[1].(map[string]any)["type"])
}

func TestArgGroupHasNoSpan(t *testing.T) {
	group := &ArgGroup{Items: []Node{&Column{BaseNode: BaseNode{Location: Location{Min: 4, Max: 8}}}}}
	assert.Equal(t, Location{}, group.Span())
	assert.Equal(t, "", group.NodeName())
	assert.False(t, group.IsIncomplete())
}

func TestNodeInterfaceBasics(t *testing.T) {
	col := &Column{BaseNode: BaseNode{Name: "a.b", Location: Location{Min: 2, Max: 4}, Incomplete: true}}
	assert.Equal(t, "a.b", col.NodeName())
	assert.Equal(t, Location{Min: 2, Max: 4}, col.Span())
	assert.True(t, col.IsIncomplete())
}
