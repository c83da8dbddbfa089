package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esql-go/esql/go/parser/ast"
	"github.com/esql-go/esql/go/parser/lexer"
)

func tok(tt lexer.TokenType, text string, start int) lexer.Token {
	return lexer.Token{Type: tt, Text: text, Start: start, End: start + len(text)}
}

func TestCreateLiteralNumbers(t *testing.T) {
	tests := []struct {
		name     string
		lt       ast.LiteralType
		text     string
		expected any
	}{
		{name: "integer", lt: ast.LiteralInteger, text: "42", expected: int64(42)},
		{name: "negative integer", lt: ast.LiteralInteger, text: "-7", expected: int64(-7)},
		{name: "integer overflow falls back to float", lt: ast.LiteralInteger, text: "99999999999999999999", expected: 1e20},
		{name: "double", lt: ast.LiteralDouble, text: "3.5", expected: 3.5},
		{name: "double exponent", lt: ast.LiteralDouble, text: "1e3", expected: 1000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := createLiteral(tt.lt, tok(lexer.INTEGER, tt.text, 0))
			assert.Equal(t, tt.expected, lit.Value)
			assert.False(t, lit.Incomplete)
		})
	}
}

func TestCreateLiteralUnparsableNumberIsNaN(t *testing.T) {
	lit := createLiteral(ast.LiteralInteger, tok(lexer.INTEGER, "not-a-number", 0))
	f, ok := lit.Value.(float64)
	require.True(t, ok, "fallback value should be a float")
	assert.True(t, math.IsNaN(f))

	lit = createLiteral(ast.LiteralDouble, tok(lexer.DECIMAL, "garbage", 0))
	f, ok = lit.Value.(float64)
	require.True(t, ok)
	assert.True(t, math.IsNaN(f))
}

func TestCreateLiteralKinds(t *testing.T) {
	lit := createLiteral(ast.LiteralKeyword, tok(lexer.STRING, `"a\tb"`, 0))
	assert.Equal(t, "a\tb", lit.Value)

	lit = createLiteral(ast.LiteralBoolean, tok(lexer.TRUE, "TRUE", 0))
	assert.Equal(t, true, lit.Value)

	lit = createLiteral(ast.LiteralBoolean, tok(lexer.FALSE, "false", 0))
	assert.Equal(t, false, lit.Value)

	lit = createLiteral(ast.LiteralNull, tok(lexer.NULL, "null", 0))
	assert.Nil(t, lit.Value)
}

func TestCreateLiteralRejectsParams(t *testing.T) {
	assert.Panics(t, func() {
		createLiteral(ast.LiteralParam, tok(lexer.PARAM, "?1", 0))
	})
}

func TestCreateLiteralMissingMarker(t *testing.T) {
	lit := createLiteral(ast.LiteralKeyword, tok(lexer.STRING, "<missing STRING>", 3))
	assert.True(t, lit.Incomplete)
}

func TestCreateFakeMultiplyLiteral(t *testing.T) {
	minus := tok(lexer.MINUS, "-", 6)
	lit := createFakeMultiplyLiteral(minus, true)
	assert.Equal(t, int64(-1), lit.Value)
	assert.Equal(t, ast.Location{Min: 6, Max: 6}, lit.Location)

	lit = createFakeMultiplyLiteral(tok(lexer.PLUS, "+", 0), false)
	assert.Equal(t, int64(1), lit.Value)
}

func TestCreateParam(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		kind     ast.ParamKind
		value    any
		nodeName string
	}{
		{name: "unnamed", text: "?", kind: ast.ParamUnnamed, value: nil, nodeName: ""},
		{name: "positional", text: "?1", kind: ast.ParamPositional, value: 1, nodeName: "1"},
		{name: "positional multi digit", text: "?42", kind: ast.ParamPositional, value: 42, nodeName: "42"},
		{name: "named", text: "?field", kind: ast.ParamNamed, value: "field", nodeName: "field"},
		{name: "leading zero is named not positional", text: "?01", kind: ast.ParamNamed, value: "01", nodeName: "01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createParam(tok(lexer.PARAM, tt.text, 0))
			assert.Equal(t, tt.kind, p.ParamKind)
			assert.Equal(t, tt.value, p.Value)
			assert.Equal(t, tt.nodeName, p.Name)
		})
	}
}

func TestCreateTimeInterval(t *testing.T) {
	quantity := tok(lexer.INTEGER, "3", 0)
	unit := tok(lexer.IDENT, "hours", 2)
	ctx := newContext("3 hours", RuleTimeInterval, quantity, unit)

	node := createTimeInterval(ctx, quantity, unit)
	assert.Equal(t, int64(3), node.Quantity)
	assert.Equal(t, "hours", node.Unit)
	assert.Equal(t, "3 hours", node.Name)
	assert.False(t, node.Incomplete)
}

func TestCreateIdentifier(t *testing.T) {
	id := createIdentifier(tok(lexer.QUOTED_IDENT, "`a``b`", 0))
	assert.Equal(t, "a`b", id.Name)
	assert.Equal(t, "`a``b`", id.Text)
}

func TestCreatePolicySpan(t *testing.T) {
	// The policy name is the trailing part of a larger token; the span is
	// recovered from the token's last offset and the text length.
	policyTok := lexer.Token{Type: lexer.UNQUOTED_SOURCE, Text: "policy", Start: 10, End: 16}
	node := createPolicy(policyTok, "policy")

	assert.Equal(t, ast.Location{Min: 10, Max: 15}, node.Location)
	assert.Equal(t, ast.SourcePolicy, node.SourceType)
	assert.Equal(t, "policy", node.Index)
	assert.False(t, node.Incomplete)

	empty := createPolicy(lexer.Token{Start: 0, End: 0}, "")
	assert.True(t, empty.Incomplete)
}

func TestCreatePolicyStripsRecoveryMarker(t *testing.T) {
	missing := lexer.Token{Type: lexer.UNQUOTED_SOURCE, Text: "<missing UNQUOTED_SOURCE>", Start: 18, End: 18, Incomplete: true}
	node := createPolicy(missing, missing.Text)

	assert.Equal(t, "", node.Name)
	assert.Equal(t, "", node.Index)
	assert.Equal(t, "", node.Text)
	assert.True(t, node.Incomplete)
	assert.Equal(t, ast.Location{Min: 18, Max: 18}, node.Location)
}

func TestCreateSettingSpan(t *testing.T) {
	modeTok := lexer.Token{Type: lexer.UNQUOTED_SOURCE, Text: "_coordinator", Start: 7, End: 19}
	node := createSetting(modeTok, modeTok.Text)

	assert.Equal(t, "_coordinator", node.Name)
	assert.Equal(t, ast.Location{Min: 7, Max: 18}, node.Location)
}

func TestCreateErrorText(t *testing.T) {
	err := &SyntaxError{Message: "expected ) but found end of input", Token: tok(lexer.EOF, "", 12)}
	node := createError(err)

	assert.Equal(t, "error", node.Name)
	assert.Equal(t, "SyntaxError: expected ) but found end of input", node.Text)
	assert.True(t, node.Incomplete)
}

func TestExtendSpanWidensOverArgs(t *testing.T) {
	opTok := tok(lexer.GT, ">", 2)
	left := createLiteral(ast.LiteralInteger, tok(lexer.INTEGER, "1", 0))
	right := createLiteral(ast.LiteralInteger, tok(lexer.INTEGER, "23", 4))
	ctx := tokenContext("1 > 23", RuleOperatorExpression, opTok)

	fn := createBinaryExpression(">", ctx, left, right)
	assert.Equal(t, ast.Location{Min: 2, Max: 2}, fn.Location, "before finalization the span covers the operator only")

	fn.ExtendSpan()
	assert.Equal(t, ast.Location{Min: 0, Max: 5}, fn.Location)
}

func TestExtendSpanIsIdempotent(t *testing.T) {
	src := "foo()"
	nameTok := tok(lexer.IDENT, "foo", 0)
	ctx := newContext(src, RuleFunctionCall, nameTok, tok(lexer.RPAREN, ")", 4))
	ctx.Children = []*Context{tokenContext(src, RuleIdentifier, nameTok)}

	fn := createFunctionCall(ctx)
	fn.Args = append(fn.Args, &ast.ArgGroup{})

	// An empty trailing argument list widens the end by exactly three.
	before := fn.Location
	fn.ExtendSpan()
	assert.Equal(t, before.Max+3, fn.Location.Max)

	after := fn.Location
	fn.ExtendSpan()
	fn.ExtendSpan()
	assert.Equal(t, after, fn.Location, "repeated finalization must not drift")
}

func TestCreateColumnFromSegments(t *testing.T) {
	src := "a.`b c`"
	first := tok(lexer.IDENT, "a", 0)
	second := tok(lexer.QUOTED_IDENT, "`b c`", 2)
	ctx := newContext(src, RuleQualifiedName, first, second)
	ctx.Children = []*Context{
		tokenContext(src, RuleIdentifier, first),
		tokenContext(src, RuleIdentifier, second),
	}

	col := createColumn(ctx)
	assert.Equal(t, "a.b c", col.Name)
	require.Len(t, col.Args, 2)
	assert.False(t, col.Incomplete)
	assert.False(t, col.Quoted)
}

func TestCreateColumnEmptyNameIsIncomplete(t *testing.T) {
	missing := lexer.Token{Type: lexer.IDENT, Text: "<missing IDENT>", Start: 5, End: 5, Incomplete: true}
	ctx := newContext("col. ", RuleQualifiedName, missing, missing)
	ctx.Children = []*Context{tokenContext("col. ", RuleIdentifier, missing)}

	col := createColumn(ctx)
	assert.True(t, col.Incomplete)
}

func TestCreateSource(t *testing.T) {
	src := "cluster:logs-*"
	clusterTok := tok(lexer.UNQUOTED_SOURCE, "cluster", 0)
	indexTok := tok(lexer.UNQUOTED_SOURCE, "logs-*", 8)
	ctx := newContext(src, RuleIndexPattern, clusterTok, indexTok)
	ctx.Children = []*Context{
		tokenContext(src, RuleClusterString, clusterTok),
		tokenContext(src, RuleIndexString, indexTok),
	}

	node := createSource(ctx, ast.SourceIndex)
	assert.Equal(t, "cluster", node.Cluster)
	assert.Equal(t, "logs-*", node.Index)
	assert.Equal(t, "cluster:logs-*", node.Name)
	assert.False(t, node.Incomplete)
}
