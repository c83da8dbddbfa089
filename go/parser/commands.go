package parser

import (
	"strings"

	"github.com/esql-go/esql/go/parser/ast"
	"github.com/esql-go/esql/go/parser/lexer"
)

// parseCommand reduces one pipe command. It returns nil when the head token
// is not a command keyword; the caller records the error and resynchronizes.
func (p *Parser) parseCommand() *ast.Command {
	switch p.tok.Type {
	case lexer.FROM:
		return p.parseFrom()
	case lexer.ROW:
		return p.parseRow()
	case lexer.SHOW:
		return p.parseShow()
	case lexer.WHERE:
		return p.parseWhere()
	case lexer.LIMIT:
		return p.parseLimit()
	case lexer.EVAL:
		return p.parseEval()
	case lexer.STATS:
		return p.parseStats()
	case lexer.SORT:
		return p.parseSort()
	case lexer.KEEP, lexer.DROP:
		return p.parseKeepDrop()
	case lexer.RENAME:
		return p.parseRename()
	case lexer.MV_EXPAND:
		return p.parseMvExpand()
	case lexer.DISSECT, lexer.GROK:
		return p.parseDissectGrok()
	case lexer.ENRICH:
		return p.parseEnrich()
	default:
		p.errorf(p.tok, "mismatched input %s expecting a command name", describeToken(p.tok))
		p.resync()
		return nil
	}
}

// newCommand builds the command node from its head keyword; the caller
// appends args and finishes the span via finishCommand.
func (p *Parser) newCommand(head lexer.Token) *ast.Command {
	return createCommand(strings.ToLower(head.Text), tokenContext(p.src, RuleCommand, head))
}

func (p *Parser) parseFrom() *ast.Command {
	p.lex.SetMode(lexer.ModeSource)
	head := p.advance()
	cmd := p.newCommand(head)

	for {
		cmd.Args = append(cmd.Args, p.parseIndexPattern(ast.SourceIndex))
		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if p.at(lexer.METADATA) {
		cmd.Args = append(cmd.Args, p.parseMetadataOption())
	}
	return p.finishCommand(cmd, head)
}

// parseIndexPattern reduces one FROM/ENRICH target: an optionally quoted
// index pattern with an optional cluster prefix before the colon.
func (p *Parser) parseIndexPattern(sourceType ast.SourceType) *ast.Source {
	first, ok := p.expectSourceName()
	ctx := newContext(p.src, RuleIndexPattern, first, p.prev)
	ctx.Exception = !ok || first.Incomplete

	if ok && first.Type == lexer.UNQUOTED_SOURCE && p.at(lexer.COLON) {
		p.next()
		index, okIndex := p.expectSourceName()
		ctx = newContext(p.src, RuleIndexPattern, first, p.prev)
		ctx.Exception = !okIndex || index.Incomplete
		ctx.Children = []*Context{
			tokenContext(p.src, RuleClusterString, first),
			tokenContext(p.src, RuleIndexString, index),
		}
	} else {
		ctx.Children = []*Context{tokenContext(p.src, RuleIndexString, first)}
	}
	return createSource(ctx, sourceType)
}

// expectSourceName consumes the next source-mode name token, quoted or not.
func (p *Parser) expectSourceName() (lexer.Token, bool) {
	if p.tok.Type.InCategory(lexer.UnquotedSource) || p.tok.Type.InCategory(lexer.QuotedString) {
		return p.advance(), true
	}
	return p.expect(lexer.UNQUOTED_SOURCE)
}

func (p *Parser) parseMetadataOption() *ast.Option {
	head := p.advance()
	var args []ast.Node
	var children []*Context

	for {
		if p.tok.Type.InCategory(lexer.UnquotedSource) || p.tok.Type.InCategory(lexer.QuotedIdentifier) {
			child := tokenContext(p.src, RuleUnknown, p.advance())
			children = append(children, child)
			args = append(args, createColumn(child))
		} else {
			tok, _ := p.expect(lexer.UNQUOTED_SOURCE)
			child := tokenContext(p.src, RuleUnknown, tok)
			child.ErrorNode = true
			children = append(children, child)
			break
		}
		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}

	ctx := p.ctx(RuleCommandOption, head)
	ctx.Children = children
	opt := createOption("metadata", ctx)
	opt.Args = args
	return opt
}

func (p *Parser) parseRow() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)
	cmd.Args = append(cmd.Args, p.parseFields()...)
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseShow() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)
	if p.at(lexer.IDENT) && strings.EqualFold(p.tok.Text, "info") {
		id := createIdentifier(p.advance())
		id.Name = strings.ToLower(id.Name)
		cmd.Args = append(cmd.Args, id)
	} else {
		p.errorf(p.tok, "expected INFO after SHOW")
		cmd.Incomplete = true
	}
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseWhere() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)
	cmd.Args = append(cmd.Args, p.parseExpression())
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseLimit() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)
	cmd.Args = append(cmd.Args, p.parseExpression())
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseEval() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)
	cmd.Args = append(cmd.Args, p.parseFields()...)
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseStats() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)
	hasAggregates := false
	if !p.at(lexer.BY) && !p.at(lexer.PIPE) && !p.at(lexer.EOF) {
		cmd.Args = append(cmd.Args, p.parseFields()...)
		hasAggregates = true
	}
	if p.at(lexer.BY) {
		byHead := p.advance()
		fields := p.parseFields()
		ctx := p.ctx(RuleCommandOption, byHead)
		opt := createOption("by", ctx)
		opt.Args = fields
		cmd.Args = append(cmd.Args, opt)
	} else if !hasAggregates {
		p.errorf(p.tok, "expected an aggregate or grouping expression after STATS")
		cmd.Incomplete = true
	}
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseSort() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)

	for {
		start := p.tok
		arg := p.parseExpression()
		order, nulls := "", ""
		switch p.tok.Type {
		case lexer.ASC:
			order = ast.OrderAscending
			p.next()
		case lexer.DESC:
			order = ast.OrderDescending
			p.next()
		}
		if p.at(lexer.NULLS) {
			p.next()
			switch p.tok.Type {
			case lexer.FIRST:
				nulls = ast.NullsFirst
				p.next()
			case lexer.LAST:
				nulls = ast.NullsLast
				p.next()
			default:
				p.errorf(p.tok, "expected FIRST or LAST after NULLS")
			}
		}
		ctx := p.ctx(RuleOrderExpression, start)
		cmd.Args = append(cmd.Args, createOrderExpression(ctx, arg, order, nulls))
		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseKeepDrop() *ast.Command {
	p.lex.SetMode(lexer.ModePattern)
	head := p.advance()
	cmd := p.newCommand(head)

	for {
		cmd.Args = append(cmd.Args, p.parseQualifiedNamePattern())
		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return p.finishCommand(cmd, head)
}

// parseQualifiedNamePattern reduces a dotted, possibly wildcarded name. A
// lone * collapses to the special-cased wildcard column.
func (p *Parser) parseQualifiedNamePattern() *ast.Column {
	start := p.tok
	var children []*Context
	exception := false

	for {
		switch {
		case p.tok.Type.InCategory(lexer.UnquotedSource), p.tok.Type.InCategory(lexer.QuotedIdentifier):
			children = append(children, tokenContext(p.src, RuleIdentifierPattern, p.advance()))
		case p.at(lexer.PARAM):
			children = append(children, tokenContext(p.src, RuleParameter, p.advance()))
		default:
			tok, _ := p.expect(lexer.PATTERN_IDENT)
			child := tokenContext(p.src, RuleIdentifierPattern, tok)
			child.ErrorNode = true
			children = append(children, child)
			exception = true
		}
		if p.at(lexer.DOT) {
			p.next()
			continue
		}
		break
	}

	if len(children) == 1 && children[0].Text == "*" {
		return createColumnStar(children[0].Start)
	}
	ctx := newContext(p.src, RuleQualifiedNamePattern, start, p.prev)
	ctx.Children = children
	ctx.Exception = exception
	return createColumn(ctx)
}

func (p *Parser) parseRename() *ast.Command {
	p.lex.SetMode(lexer.ModePattern)
	head := p.advance()
	cmd := p.newCommand(head)

	for {
		start := p.tok
		oldName := p.parseQualifiedNamePattern()
		_, ok := p.expect(lexer.AS)
		newName := p.parseQualifiedNamePattern()

		ctx := newContext(p.src, RuleOperatorExpression, start, p.prev)
		ctx.Exception = !ok
		fn := createFunction("as", ctx, nil, ast.BinaryExpression)
		fn.Args = append(fn.Args, oldName, newName)
		fn.ExtendSpan()
		cmd.Args = append(cmd.Args, fn)

		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseMvExpand() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)
	cmd.Args = append(cmd.Args, p.parseQualifiedNameFrom(p.tok))
	return p.finishCommand(cmd, head)
}

// parseQualifiedNameFrom parses an expression-mode qualified name starting
// at the lookahead.
func (p *Parser) parseQualifiedNameFrom(start lexer.Token) *ast.Column {
	switch p.tok.Type {
	case lexer.IDENT, lexer.QUOTED_IDENT:
		return p.parseQualifiedNameRest(p.advance())
	case lexer.PARAM:
		child := tokenContext(p.src, RuleParameter, p.advance())
		ctx := newContext(p.src, RuleQualifiedName, start, p.prev)
		ctx.Children = []*Context{child}
		return createColumn(ctx)
	default:
		tok, _ := p.expect(lexer.IDENT)
		child := tokenContext(p.src, RuleIdentifier, tok)
		child.ErrorNode = true
		ctx := newContext(p.src, RuleQualifiedName, tok, tok)
		ctx.Children = []*Context{child}
		ctx.Exception = true
		return createColumn(ctx)
	}
}

func (p *Parser) parseDissectGrok() *ast.Command {
	head := p.advance()
	cmd := p.newCommand(head)

	cmd.Args = append(cmd.Args, p.parseExpression())
	patternTok, ok := p.expect(lexer.STRING)
	pattern := createLiteral(ast.LiteralKeyword, patternTok)
	if !ok {
		pattern.Incomplete = true
	}
	cmd.Args = append(cmd.Args, pattern)

	// DISSECT accepts trailing name=constant options (APPEND_SEPARATOR).
	if head.Type == lexer.DISSECT {
		for p.at(lexer.IDENT) {
			nameTok := p.advance()
			_, okAssign := p.expect(lexer.ASSIGN)
			value := p.parseExpression()
			ctx := p.ctx(RuleCommandOption, nameTok)
			ctx.Exception = !okAssign
			opt := createOption(strings.ToLower(nameTok.Text), ctx)
			opt.Args = append(opt.Args, value)
			cmd.Args = append(cmd.Args, opt)
			if p.at(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	return p.finishCommand(cmd, head)
}

func (p *Parser) parseEnrich() *ast.Command {
	p.lex.SetMode(lexer.ModeSource)
	head := p.advance()
	cmd := p.newCommand(head)

	// Policy reference: [_mode:]policy. The mode prefix, when present,
	// becomes a setting node in front of the policy source.
	first, okFirst := p.expectSourceName()
	if okFirst && p.at(lexer.COLON) {
		p.next()
		nameTok, okName := p.expectSourceName()
		cmd.Args = append(cmd.Args, createSetting(first, first.Text))
		policy := createPolicy(nameTok, nameTok.Text)
		policy.Incomplete = policy.Incomplete || !okName
		cmd.Args = append(cmd.Args, policy)
	} else {
		policy := createPolicy(first, first.Text)
		policy.Incomplete = policy.Incomplete || !okFirst
		cmd.Args = append(cmd.Args, policy)
	}

	if p.at(lexer.ON) {
		onHead := p.advance()
		field := p.parseSourceColumn()
		ctx := p.ctx(RuleCommandOption, onHead)
		opt := createOption("on", ctx)
		opt.Args = append(opt.Args, field)
		cmd.Args = append(cmd.Args, opt)
	}

	if p.at(lexer.WITH) {
		withHead := p.advance()
		var args []ast.Node
		for {
			start := p.tok
			left := p.parseSourceColumn()
			if p.at(lexer.ASSIGN) {
				p.next()
				right := p.parseSourceColumn()
				ctx := newContext(p.src, RuleOperatorExpression, start, p.prev)
				fn := createBinaryExpression("=", ctx, left, right)
				fn.ExtendSpan()
				args = append(args, fn)
			} else {
				args = append(args, left)
			}
			if p.at(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
		ctx := p.ctx(RuleCommandOption, withHead)
		opt := createOption("with", ctx)
		opt.Args = args
		cmd.Args = append(cmd.Args, opt)
	}
	return p.finishCommand(cmd, head)
}

// parseSourceColumn reduces one enrich field name, which source mode scans
// as a single run (dots included).
func (p *Parser) parseSourceColumn() *ast.Column {
	if p.tok.Type.InCategory(lexer.UnquotedSource) || p.tok.Type.InCategory(lexer.QuotedIdentifier) {
		return createColumn(tokenContext(p.src, RuleUnknown, p.advance()))
	}
	tok, _ := p.expect(lexer.UNQUOTED_SOURCE)
	ctx := tokenContext(p.src, RuleUnknown, tok)
	ctx.Exception = true
	ctx.ErrorNode = true
	return createColumn(ctx)
}

// parseFields reduces the comma-separated field list shared by ROW, EVAL and
// STATS. A field is an expression, optionally assigned to a column name.
func (p *Parser) parseFields() []ast.Node {
	var fields []ast.Node
	for {
		fields = append(fields, p.parseField())
		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return fields
}

func (p *Parser) parseField() ast.Node {
	start := p.tok
	left := p.parseExpression()
	if !p.at(lexer.ASSIGN) {
		return left
	}
	p.next()
	right := p.parseExpression()
	ctx := newContext(p.src, RuleOperatorExpression, start, p.prev)
	fn := createBinaryExpression("=", ctx, left, right)
	fn.ExtendSpan()
	return fn
}
