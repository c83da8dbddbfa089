package parser

import (
	"strings"

	"github.com/esql-go/esql/go/parser/ast"
	"github.com/esql-go/esql/go/parser/lexer"
)

// Precedence climbing, loosest binding first:
//
//	OR < AND < NOT < comparison/LIKE/IN/IS NULL < +- < */% < unary sign < :: cast < primary

func (p *Parser) parseExpression() ast.Node {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Node {
	start := p.tok
	left := p.parseAnd()
	for p.at(lexer.OR) {
		p.next()
		left = p.binaryNode(start, "or", left, p.parseAnd())
	}
	return left
}

func (p *Parser) parseAnd() ast.Node {
	start := p.tok
	left := p.parseNot()
	for p.at(lexer.AND) {
		p.next()
		left = p.binaryNode(start, "and", left, p.parseNot())
	}
	return left
}

func (p *Parser) parseNot() ast.Node {
	if !p.at(lexer.NOT) {
		return p.parseComparison()
	}
	op := p.advance()
	arg := p.parseNot()
	ctx := newContext(p.src, RuleOperatorExpression, op, p.prev)
	fn := createFunction("not", ctx, nil, ast.UnaryExpression)
	fn.Args = append(fn.Args, arg)
	fn.ExtendSpan()
	return fn
}

func (p *Parser) parseComparison() ast.Node {
	start := p.tok
	left := p.parseAdditive()
	for {
		switch p.tok.Type {
		case lexer.EQ, lexer.NEQ, lexer.LT, lexer.LTE, lexer.GT, lexer.GTE:
			op := p.advance()
			left = p.binaryNode(start, op.Text, left, p.parseAdditive())
		case lexer.LIKE, lexer.RLIKE:
			op := p.advance()
			left = p.binaryNode(start, strings.ToLower(op.Text), left, p.parsePatternLiteral())
		case lexer.IN:
			p.next()
			left = p.parseInList("in", start, left)
		case lexer.NOT:
			p.next()
			switch p.tok.Type {
			case lexer.LIKE, lexer.RLIKE:
				op := p.advance()
				left = p.binaryNode(start, "not "+strings.ToLower(op.Text), left, p.parsePatternLiteral())
			case lexer.IN:
				p.next()
				left = p.parseInList("not in", start, left)
			default:
				p.errorf(p.tok, "mismatched input %s expecting LIKE, RLIKE or IN", describeToken(p.tok))
				return left
			}
		case lexer.IS:
			p.next()
			name := "is null"
			if p.at(lexer.NOT) {
				p.next()
				name = "is not null"
			}
			_, ok := p.expect(lexer.NULL)
			ctx := newContext(p.src, RuleOperatorExpression, start, p.prev)
			ctx.Exception = !ok
			fn := createFunction(name, ctx, nil, ast.PostfixUnaryExpression)
			fn.Args = append(fn.Args, left)
			fn.ExtendSpan()
			left = fn
		default:
			return left
		}
	}
}

// parsePatternLiteral reduces the string right-hand side of LIKE and RLIKE.
func (p *Parser) parsePatternLiteral() ast.Node {
	tok, ok := p.expect(lexer.STRING)
	lit := createLiteral(ast.LiteralKeyword, tok)
	if !ok {
		lit.Incomplete = true
	}
	return lit
}

// parseInList reduces the parenthesized value list of IN and NOT IN. The
// list is carried as a single grouped argument next to the tested value;
// start is the first token of that value, so the node's text covers it.
func (p *Parser) parseInList(name string, start lexer.Token, left ast.Node) ast.Node {
	_, okOpen := p.expect(lexer.LPAREN)
	group := &ast.ArgGroup{}
	if okOpen && !p.at(lexer.RPAREN) {
		for {
			group.Items = append(group.Items, p.parseExpression())
			if p.at(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	_, okClose := p.expect(lexer.RPAREN)

	ctx := newContext(p.src, RuleOperatorExpression, start, p.prev)
	ctx.Exception = !okOpen || !okClose
	fn := createFunction(name, ctx, nil, ast.BinaryExpression)
	fn.Args = append(fn.Args, left, group)
	fn.ExtendSpan()
	return fn
}

func (p *Parser) parseAdditive() ast.Node {
	start := p.tok
	left := p.parseMultiplicative()
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		op := p.advance()
		left = p.binaryNode(start, op.Text, left, p.parseMultiplicative())
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Node {
	start := p.tok
	left := p.parseUnary()
	for p.at(lexer.ASTERISK) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		op := p.advance()
		left = p.binaryNode(start, op.Text, left, p.parseUnary())
	}
	return left
}

// parseUnary rewrites a sign prefix into a multiplication by a synthetic
// zero-width ±1 literal anchored at the sign token.
func (p *Parser) parseUnary() ast.Node {
	if !p.at(lexer.PLUS) && !p.at(lexer.MINUS) {
		return p.parseCast()
	}
	op := p.advance()
	arg := p.parseUnary()
	lit := createFakeMultiplyLiteral(op, op.Type == lexer.MINUS)
	ctx := newContext(p.src, RuleOperatorExpression, op, p.prev)
	fn := createBinaryExpression("*", ctx, lit, arg)
	fn.ExtendSpan()
	return fn
}

// parseCast reduces trailing :: casts, left to right.
func (p *Parser) parseCast() ast.Node {
	start := p.tok
	value := p.parsePrimary()
	for p.at(lexer.CAST_OP) {
		p.next()
		typeTok, ok := p.expect(lexer.IDENT)
		child := tokenContext(p.src, RuleDataType, typeTok)
		ctx := newContext(p.src, RuleInlineCast, start, p.prev)
		ctx.Exception = !ok
		ctx.Children = []*Context{child}
		value = createInlineCast(ctx, value)
	}
	return value
}

func (p *Parser) parsePrimary() ast.Node {
	switch p.tok.Type {
	case lexer.LPAREN:
		p.next()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr
	case lexer.INTEGER:
		tok := p.advance()
		if p.at(lexer.IDENT) && isTimeUnit(p.tok.Text) {
			unit := p.advance()
			ctx := newContext(p.src, RuleTimeInterval, tok, unit)
			return createTimeInterval(ctx, tok, unit)
		}
		return createLiteral(ast.LiteralInteger, tok)
	case lexer.DECIMAL:
		return createLiteral(ast.LiteralDouble, p.advance())
	case lexer.STRING:
		return createLiteral(ast.LiteralKeyword, p.advance())
	case lexer.TRUE, lexer.FALSE:
		return createLiteral(ast.LiteralBoolean, p.advance())
	case lexer.NULL:
		return createLiteral(ast.LiteralNull, p.advance())
	case lexer.PARAM:
		tok := p.advance()
		if p.at(lexer.LPAREN) {
			return p.parseFunctionCall(tok, RuleParameter)
		}
		return createParam(tok)
	case lexer.IDENT:
		tok := p.advance()
		if p.at(lexer.LPAREN) {
			return p.parseFunctionCall(tok, RuleIdentifier)
		}
		return p.parseQualifiedNameRest(tok)
	case lexer.QUOTED_IDENT:
		return p.parseQualifiedNameRest(p.advance())
	case lexer.ASTERISK:
		return createColumnStar(p.advance())
	case lexer.LBRACKET:
		return p.parseLiteralList()
	default:
		tok := p.tok
		p.errorf(tok, "mismatched input %s expecting an expression", describeToken(tok))
		switch tok.Type {
		case lexer.PIPE, lexer.EOF, lexer.COMMA, lexer.RPAREN, lexer.RBRACKET:
			// Structural token: leave it for the enclosing reduction.
		default:
			p.next()
		}
		ctx := tokenContext(p.src, RuleUnknown, tok)
		ctx.Exception = true
		return createUnknownItem(ctx)
	}
}

// parseFunctionCall reduces name(args...) where the name token is already
// consumed. The argument list is carried as one grouped arg so an empty
// trailing list is visible to span finalization.
func (p *Parser) parseFunctionCall(nameTok lexer.Token, nameRule RuleKind) ast.Node {
	p.next() // (
	group := &ast.ArgGroup{}
	if !p.at(lexer.RPAREN) {
		for {
			group.Items = append(group.Items, p.parseExpression())
			if p.at(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	_, ok := p.expect(lexer.RPAREN)

	ctx := newContext(p.src, RuleFunctionCall, nameTok, p.prev)
	ctx.Exception = !ok
	ctx.Children = []*Context{tokenContext(p.src, nameRule, nameTok)}
	fn := createFunctionCall(ctx)
	fn.Args = append(fn.Args, group)
	fn.ExtendSpan()
	return fn
}

// parseQualifiedNameRest reduces the remaining .segment chain of a column
// whose first segment token is already consumed.
func (p *Parser) parseQualifiedNameRest(first lexer.Token) *ast.Column {
	children := []*Context{tokenContext(p.src, RuleIdentifier, first)}
	exception := first.Incomplete

	for p.at(lexer.DOT) {
		p.next()
		switch p.tok.Type {
		case lexer.IDENT, lexer.QUOTED_IDENT:
			children = append(children, tokenContext(p.src, RuleIdentifier, p.advance()))
		case lexer.PARAM:
			children = append(children, tokenContext(p.src, RuleParameter, p.advance()))
		default:
			tok, _ := p.expect(lexer.IDENT)
			child := tokenContext(p.src, RuleIdentifier, tok)
			child.ErrorNode = true
			children = append(children, child)
			exception = true
		}
	}

	ctx := newContext(p.src, RuleQualifiedName, first, p.prev)
	ctx.Children = children
	ctx.Exception = exception
	return createColumn(ctx)
}

// parseLiteralList reduces a bracketed homogeneous literal list.
func (p *Parser) parseLiteralList() ast.Node {
	start := p.advance() // [
	var values []*ast.Literal

	if !p.at(lexer.RBRACKET) {
		for {
			if lit := p.parseListLiteral(); lit != nil {
				values = append(values, lit)
			} else {
				break
			}
			if p.at(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	_, ok := p.expect(lexer.RBRACKET)

	ctx := newContext(p.src, RuleList, start, p.prev)
	ctx.Exception = !ok
	return createList(ctx, values)
}

func (p *Parser) parseListLiteral() *ast.Literal {
	switch p.tok.Type {
	case lexer.INTEGER:
		return createLiteral(ast.LiteralInteger, p.advance())
	case lexer.DECIMAL:
		return createLiteral(ast.LiteralDouble, p.advance())
	case lexer.STRING:
		return createLiteral(ast.LiteralKeyword, p.advance())
	case lexer.TRUE, lexer.FALSE:
		return createLiteral(ast.LiteralBoolean, p.advance())
	case lexer.NULL:
		return createLiteral(ast.LiteralNull, p.advance())
	case lexer.MINUS, lexer.PLUS:
		sign := p.advance()
		if p.at(lexer.INTEGER) || p.at(lexer.DECIMAL) {
			num := p.advance()
			merged := lexer.Token{
				Type:  num.Type,
				Text:  sign.Text + num.Text,
				Start: sign.Start,
				End:   num.End,
			}
			if num.Type == lexer.DECIMAL {
				return createLiteral(ast.LiteralDouble, merged)
			}
			return createLiteral(ast.LiteralInteger, merged)
		}
		p.errorf(p.tok, "mismatched input %s expecting a number", describeToken(p.tok))
		return nil
	default:
		p.errorf(p.tok, "mismatched input %s expecting a literal", describeToken(p.tok))
		return nil
	}
}

// binaryNode builds an infix function node. The production runs from the
// first token of the left operand through the last consumed one, so the
// node's text covers both operands like every other node's text covers its
// span.
func (p *Parser) binaryNode(start lexer.Token, name string, left, right ast.Node) ast.Node {
	ctx := newContext(p.src, RuleOperatorExpression, start, p.prev)
	fn := createBinaryExpression(name, ctx, left, right)
	fn.ExtendSpan()
	return fn
}

var timeUnits = map[string]struct{}{}

func init() {
	for _, u := range []string{
		"millisecond", "milliseconds", "ms",
		"second", "seconds", "sec", "s",
		"minute", "minutes", "min",
		"hour", "hours", "h", "hr",
		"day", "days", "d",
		"week", "weeks", "w",
		"month", "months", "mo",
		"quarter", "quarters", "q",
		"year", "years", "yr", "y",
	} {
		timeUnits[u] = struct{}{}
	}
}

func isTimeUnit(text string) bool {
	_, ok := timeUnits[strings.ToLower(text)]
	return ok
}
