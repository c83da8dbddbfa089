package parser

import (
	"fmt"

	"github.com/esql-go/esql/go/parser/ast"
	"github.com/esql-go/esql/go/parser/lexer"
)

// Result is the outcome of parsing one ES|QL query. Root is always non-nil:
// malformed input produces a partial tree with incomplete nodes plus one
// error node per recognition error, never a Go error.
type Result struct {
	Root   *ast.Query
	Errors []*ast.Error
}

// Parse parses src into an AST. It never fails; syntax problems are
// reported through Result.Errors and the incomplete flags on the nearest
// enclosing nodes, so editors can keep validating half-typed queries.
func Parse(src string) *Result {
	p := &Parser{src: src, lex: lexer.New(src)}
	p.next()
	root := p.parseQuery()
	res := &Result{Root: root}
	for _, err := range p.errs {
		res.Errors = append(res.Errors, createError(err))
	}
	return res
}

// Parser is the recursive-descent parse driver. It reduces grammar
// productions into Context values and hands them to the builders in
// factories.go. Single use; one instance per parse.
type Parser struct {
	src  string
	lex  *lexer.Lexer
	tok  lexer.Token // lookahead
	prev lexer.Token // last consumed token
	errs []*SyntaxError
}

func (p *Parser) next() {
	p.prev = p.tok
	p.tok = p.lex.Next()
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.tok.Type == tt
}

// advance consumes and returns the lookahead token.
func (p *Parser) advance() lexer.Token {
	tok := p.tok
	p.next()
	return tok
}

// expect consumes a token of the wanted type. When the lookahead does not
// match, it records a syntax error and synthesizes a zero-width missing
// token at the current position so the enclosing production can still be
// reduced, marked incomplete.
func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, bool) {
	if p.tok.Type == tt {
		return p.advance(), true
	}
	p.errorf(p.tok, "expected %s but found %s", tt, describeToken(p.tok))
	return lexer.Token{
		Type:       tt,
		Text:       fmt.Sprintf("<missing %s>", tt),
		Start:      p.tok.Start,
		End:        p.tok.Start,
		Incomplete: true,
	}, false
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) {
	p.errs = append(p.errs, &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Token:   tok,
	})
}

// resync drops tokens through the end of the current command so parsing can
// restart cleanly at the next pipe.
func (p *Parser) resync() {
	for !p.at(lexer.PIPE) && !p.at(lexer.EOF) {
		p.next()
	}
}

// ctx reduces the tokens from start through the last consumed one into a
// production of the given kind.
func (p *Parser) ctx(rule RuleKind, start lexer.Token) *Context {
	return newContext(p.src, rule, start, p.prev)
}

func describeToken(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Text)
}

func (p *Parser) parseQuery() *ast.Query {
	loc := ast.Location{}
	if len(p.src) > 0 {
		loc.Max = len(p.src) - 1
	}
	query := &ast.Query{
		BaseNode: ast.BaseNode{Text: p.src, Location: loc},
	}

	if p.at(lexer.EOF) {
		p.errorf(p.tok, "queries require at least a source command")
		query.Incomplete = true
		return query
	}

	for {
		if cmd := p.parseCommand(); cmd != nil {
			query.Commands = append(query.Commands, cmd)
			if cmd.Incomplete {
				query.Incomplete = true
			}
		}
		switch p.tok.Type {
		case lexer.EOF:
			return query
		case lexer.PIPE:
			p.lex.SetMode(lexer.ModeExpression)
			p.next()
			if p.at(lexer.EOF) {
				p.errorf(p.prev, "expected a command after the pipe")
				query.Incomplete = true
				return query
			}
		default:
			p.errorf(p.tok, "extraneous input %s", describeToken(p.tok))
			query.Incomplete = true
			p.resync()
		}
	}
}

// finishCommand widens the command node over everything consumed since its
// head keyword. The builders create commands from the head production alone
// and the driver populates args afterwards, so the final span is known only
// here.
func (p *Parser) finishCommand(cmd *ast.Command, head lexer.Token) *ast.Command {
	ctx := p.ctx(RuleCommand, head)
	cmd.Text = ctx.Text
	cmd.Location = ctx.span()
	for _, arg := range cmd.Args {
		if arg.IsIncomplete() {
			cmd.Incomplete = true
		}
	}
	return cmd
}
