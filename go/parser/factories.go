package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/esql-go/esql/go/parser/ast"
	"github.com/esql-go/esql/go/parser/lexer"
)

// ---------------------------------------------------------------------------
// Token position utilities
// ---------------------------------------------------------------------------

// lastOffset returns the character offset of a token's last character. Empty
// tokens (EOF, zero-width placeholders) collapse to their start offset.
func lastOffset(tok lexer.Token) int {
	if tok.End > tok.Start {
		return tok.End - 1
	}
	return tok.Start
}

// tokenSpan computes the source span covered by a start/stop token pair.
// When stop precedes start (nothing between them was consumed) the span
// collapses to the start token.
func tokenSpan(start, stop lexer.Token) ast.Location {
	loc := ast.Location{Min: start.Start, Max: lastOffset(stop)}
	if loc.Max < loc.Min {
		loc.Max = lastOffset(start)
	}
	if loc.Max < loc.Min {
		loc.Max = loc.Min
	}
	return loc
}

func (c *Context) span() ast.Location {
	return tokenSpan(c.Start, c.Stop)
}

func (c *Context) base(name string) ast.BaseNode {
	return ast.BaseNode{
		Name:       name,
		Text:       c.Text,
		Location:   c.span(),
		Incomplete: c.Exception,
	}
}

// ---------------------------------------------------------------------------
// Literal builders
// ---------------------------------------------------------------------------

// createLiteral builds a scalar constant from a single token. Numeric text
// that does not parse yields a NaN value rather than an error; this layer is
// deliberately permissive and leaves value validation to consumers.
//
// Param literals are built by createParam only; asking for one here is a
// caller bug.
func createLiteral(lt ast.LiteralType, tok lexer.Token) *ast.Literal {
	if lt == ast.LiteralParam {
		panic("createLiteral: param literals must be built by createParam")
	}
	node := &ast.Literal{
		BaseNode: ast.BaseNode{
			Name:       tok.Text,
			Text:       tok.Text,
			Location:   tokenSpan(tok, tok),
			Incomplete: tok.Incomplete || isMissingText(tok.Text),
		},
		LiteralType: lt,
	}
	switch lt {
	case ast.LiteralInteger:
		if v, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
			node.Value = v
		} else if f, err := strconv.ParseFloat(tok.Text, 64); err == nil {
			node.Value = f
		} else {
			node.Value = math.NaN()
		}
	case ast.LiteralDouble:
		if f, err := strconv.ParseFloat(tok.Text, 64); err == nil {
			node.Value = f
		} else {
			node.Value = math.NaN()
		}
	case ast.LiteralKeyword:
		node.Value = unquoteString(tok.Text)
	case ast.LiteralBoolean:
		node.Value = strings.EqualFold(tok.Text, "true")
	case ast.LiteralNull:
		node.Value = nil
	}
	return node
}

// createFakeMultiplyLiteral synthesizes the +1/-1 factor used when a unary
// sign is rewritten into a multiplication. It is a compatibility shim for
// that one rewrite, not a general literal.
func createFakeMultiplyLiteral(tok lexer.Token, negative bool) *ast.Literal {
	value := int64(1)
	if negative {
		value = -1
	}
	return &ast.Literal{
		BaseNode: ast.BaseNode{
			Name:     tok.Text,
			Text:     tok.Text,
			Location: tokenSpan(tok, tok),
		},
		LiteralType: ast.LiteralInteger,
		Value:       value,
	}
}

// createList wraps an ordered sequence of literals into a list node.
func createList(ctx *Context, values []*ast.Literal) *ast.List {
	return &ast.List{
		BaseNode: ctx.base(ctx.Text),
		Values:   values,
	}
}

// createTimeInterval builds a duration constant such as "3 hours". A
// quantity that does not parse is carried as zero with the node marked
// incomplete.
func createTimeInterval(ctx *Context, quantityTok, unitTok lexer.Token) *ast.TimeInterval {
	node := &ast.TimeInterval{
		BaseNode: ctx.base(quantityTok.Text + " " + unitTok.Text),
		Unit:     unitTok.Text,
	}
	quantity, err := strconv.ParseInt(quantityTok.Text, 10, 64)
	if err != nil {
		node.Incomplete = true
	}
	node.Quantity = quantity
	return node
}

// ---------------------------------------------------------------------------
// Identifier and parameter builders
// ---------------------------------------------------------------------------

// createIdentifier builds an identifier node, recording the unquoted name
// alongside the raw text. The unquoting rule follows the token's category.
func createIdentifier(tok lexer.Token) *ast.Identifier {
	return &ast.Identifier{
		BaseNode: ast.BaseNode{
			Name:       unquoteToken(tok),
			Text:       tok.Text,
			Location:   tokenSpan(tok, tok),
			Incomplete: tok.Incomplete || isMissingText(tok.Text),
		},
	}
}

// createParam builds one of the three parameter variants: unnamed (?),
// positional (?1) or named (?name). Positional is recognized by the digits
// round-tripping through integer parsing to the identical string.
func createParam(tok lexer.Token) *ast.Param {
	body := strings.TrimPrefix(tok.Text, "?")
	node := &ast.Param{
		BaseNode: ast.BaseNode{
			Name:       body,
			Text:       tok.Text,
			Location:   tokenSpan(tok, tok),
			Incomplete: tok.Incomplete,
		},
	}
	switch {
	case body == "":
		node.ParamKind = ast.ParamUnnamed
	case isPositional(body):
		n, _ := strconv.Atoi(body)
		node.ParamKind = ast.ParamPositional
		node.Value = n
	default:
		node.ParamKind = ast.ParamNamed
		node.Value = body
	}
	return node
}

func isPositional(body string) bool {
	n, err := strconv.Atoi(body)
	return err == nil && strconv.Itoa(n) == body
}

// ---------------------------------------------------------------------------
// Column and source builders
// ---------------------------------------------------------------------------

// createColumn builds a possibly multi-part column reference. Pattern and
// qualified-name productions contribute one identifier or parameter node per
// segment; any other production is treated as a single sanitized name.
func createColumn(ctx *Context) *ast.Column {
	var args []ast.Node
	switch ctx.Rule {
	case RuleQualifiedNamePattern, RuleQualifiedName:
		for _, child := range ctx.Children {
			switch child.Rule {
			case RuleParameter:
				args = append(args, createParam(child.Start))
			case RuleIdentifier, RuleIdentifierPattern:
				args = append(args, createIdentifier(child.Start))
			}
		}
	default:
		tok := ctx.Start
		tok.Text = ctx.Text
		args = append(args, createIdentifier(tok))
	}

	names := make([]string, 0, len(args))
	for _, arg := range args {
		names = append(names, arg.NodeName())
	}
	name := strings.Join(names, ".")

	node := &ast.Column{
		BaseNode: ctx.base(name),
		Args:     args,
		Quoted:   strings.HasPrefix(ctx.Text, "`"),
	}
	node.Incomplete = ctx.Exception || name == ""
	return node
}

// createColumnStar builds the special-cased * wildcard column.
func createColumnStar(tok lexer.Token) *ast.Column {
	return &ast.Column{
		BaseNode: ast.BaseNode{
			Name:       "*",
			Text:       tok.Text,
			Location:   tokenSpan(tok, tok),
			Incomplete: tok.Incomplete,
		},
		Args: []ast.Node{createIdentifier(tok)},
	}
}

// createSource builds a FROM/ENRICH target from an index-pattern production,
// splitting an optional cluster prefix from the index part. The node is
// incomplete when the production errored or the sanitized text is empty.
func createSource(ctx *Context, sourceType ast.SourceType) *ast.Source {
	cluster, index := "", ""
	for _, child := range ctx.Children {
		switch child.Rule {
		case RuleClusterString:
			cluster = unquoteToken(child.Start)
		case RuleIndexString:
			index = unquoteToken(child.Start)
		}
	}
	text := sanitizeSourceString(ctx.Text)
	if index == "" && cluster == "" {
		index = text
	}
	node := &ast.Source{
		BaseNode:   ctx.base(text),
		SourceType: sourceType,
		Cluster:    cluster,
		Index:      index,
	}
	node.Incomplete = ctx.Exception || text == ""
	return node
}

// createPolicy builds an ENRICH policy source directly from a raw token plus
// the matched policy text. The start offset is recovered from the token's
// trailing offset minus the text length; the policy name is part of a larger
// lexer token, so this is the only position available. Error-recovery
// markers are stripped from the displayed name like every other name path;
// a name left empty by the stripping collapses the span to the token and
// marks the node incomplete.
func createPolicy(tok lexer.Token, text string) *ast.Source {
	name := sanitizeSourceString(text)
	max := lastOffset(tok)
	min := max - len(text) + 1
	if name == "" {
		min = max
	}
	if min < 0 {
		min = 0
	}
	return &ast.Source{
		BaseNode: ast.BaseNode{
			Name:       name,
			Text:       name,
			Location:   ast.Location{Min: min, Max: max},
			Incomplete: name == "",
		},
		SourceType: ast.SourcePolicy,
		Index:      name,
	}
}

// ---------------------------------------------------------------------------
// Function and expression builders
// ---------------------------------------------------------------------------

// createFunction is the base function-node constructor. customPosition
// overrides the production's own span for the cases where the true span is
// known to extend beyond it.
func createFunction(name string, ctx *Context, customPosition *ast.Location, subtype ast.FunctionSubtype) *ast.Function {
	node := &ast.Function{
		BaseNode: ctx.base(name),
		Subtype:  subtype,
		Args:     []ast.Node{},
	}
	if customPosition != nil {
		node.Location = *customPosition
	}
	return node
}

// createFunctionCall builds a variadic call node. The function name is
// lower-cased for case-insensitive lookup, and the callee is separately
// resolved into the operator slot so parameterized names (?fn) survive.
func createFunctionCall(ctx *Context) *ast.Function {
	var operator ast.Node
	name := ""
	for _, child := range ctx.Children {
		switch child.Rule {
		case RuleIdentifier:
			id := createIdentifier(child.Start)
			operator = id
			name = strings.ToLower(id.Name)
		case RuleParameter:
			p := createParam(child.Start)
			operator = p
			name = strings.ToLower(child.Start.Text)
		}
	}
	fn := createFunction(name, ctx, nil, ast.VariadicCall)
	fn.Operator = operator
	return fn
}

// createBinaryExpression builds a binary operator node from exactly two
// positional arguments. The production passed in covers the operator token;
// the caller finalizes the span over both arguments afterwards.
func createBinaryExpression(operator string, ctx *Context, left, right ast.Node) *ast.Function {
	fn := createFunction(operator, ctx, nil, ast.BinaryExpression)
	fn.Args = append(fn.Args, left, right)
	return fn
}

// createInlineCast builds an expr::type node. The cast type is the
// lower-cased type-name text from the data-type child production.
func createInlineCast(ctx *Context, value ast.Node) *ast.InlineCast {
	castType := ""
	for _, child := range ctx.Children {
		if child.Rule == RuleDataType {
			castType = strings.ToLower(child.Text)
		}
	}
	node := &ast.InlineCast{
		BaseNode: ctx.base(castType),
		CastType: castType,
		Value:    value,
	}
	node.Incomplete = ctx.Exception || castType == ""
	return node
}

// createOrderExpression builds one SORT term wrapping arg with its ordering
// direction and null-placement policy; empty strings mean the modifier was
// not spelled out.
func createOrderExpression(ctx *Context, arg ast.Node, order, nulls string) *ast.Order {
	name := ""
	if arg != nil {
		name = arg.NodeName()
	}
	node := &ast.Order{
		BaseNode: ctx.base(name),
		Order:    order,
		Nulls:    nulls,
	}
	if arg != nil {
		node.Args = []ast.Node{arg}
	}
	return node
}

// ---------------------------------------------------------------------------
// Command, option and error builders
// ---------------------------------------------------------------------------

// createCommand builds an empty-args top-level command node; the parse
// driver appends arguments as it reduces the command's clauses.
func createCommand(name string, ctx *Context) *ast.Command {
	return &ast.Command{
		BaseNode: ctx.base(name),
		Args:     []ast.Node{},
	}
}

// createOption builds a command option node. It is incomplete when the
// production errored or any direct child was synthesized during error
// recovery.
func createOption(name string, ctx *Context) *ast.Option {
	incomplete := ctx.Exception
	for _, child := range ctx.Children {
		if child.ErrorNode {
			incomplete = true
		}
	}
	node := &ast.Option{
		BaseNode: ctx.base(name),
		Args:     []ast.Node{},
	}
	node.Incomplete = incomplete
	return node
}

// createSetting builds an ENRICH execution-mode setting such as
// _coordinator. The policy-name token is the only location available; the
// mode's span is approximated from its start plus the mode text length.
func createSetting(tok lexer.Token, mode string) *ast.Mode {
	max := tok.Start + len(mode) - 1
	if max < tok.Start {
		max = tok.Start
	}
	return &ast.Mode{
		BaseNode: ast.BaseNode{
			Name:       strings.ToLower(mode),
			Text:       mode,
			Location:   ast.Location{Min: tok.Start, Max: max},
			Incomplete: mode == "",
		},
	}
}

// createUnknownItem is the fallback for constructs not otherwise classified.
func createUnknownItem(ctx *Context) *ast.Unknown {
	node := &ast.Unknown{BaseNode: ctx.base("unknown")}
	node.Incomplete = true
	return node
}

// createError synthesizes a diagnostic node from a recognition error. Error
// nodes live in the parse result's error list, not in the command tree.
func createError(err *SyntaxError) *ast.Error {
	return &ast.Error{
		BaseNode: ast.BaseNode{
			Name:       "error",
			Text:       fmt.Sprintf("SyntaxError: %s", err.Message),
			Location:   tokenSpan(err.Token, err.Token),
			Incomplete: true,
		},
	}
}
