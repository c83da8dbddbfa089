// Package parser implements the ES|QL parse driver and the builder layer
// that converts reduced grammar productions into AST nodes.
//
// The split mirrors the grammar-driven design this package descends from:
// the driver walks the token stream and reduces one production at a time
// into a Context value; the builders in factories.go each turn one Context
// into one immutable AST node. Builders are stateless and never fail on
// malformed user input — parse problems surface as incomplete flags on the
// nearest enclosing node plus synthetic error nodes in the parse result.
package parser

import (
	"github.com/esql-go/esql/go/parser/lexer"
)

// RuleKind identifies which grammar production a Context was reduced from.
// Builders dispatch on it instead of on the driver's concrete call sites, so
// the same builder serves every production that yields the same node shape.
type RuleKind int

const (
	RuleUnknown RuleKind = iota
	RuleCommand
	RuleCommandOption
	RuleConstant
	RuleIdentifier
	RuleIdentifierPattern
	RuleParameter
	RuleQualifiedName
	RuleQualifiedNamePattern
	RuleIndexPattern
	RuleClusterString
	RuleIndexString
	RuleEnrichPolicy
	RuleFunctionCall
	RuleOperatorExpression
	RuleInlineCast
	RuleDataType
	RuleOrderExpression
	RuleList
	RuleTimeInterval
)

// Context is one reduced grammar production: the parse-tree fragment handed
// to the builder layer. Start and Stop are the boundary tokens; Text is the
// verbatim source between them.
type Context struct {
	Rule  RuleKind
	Start lexer.Token
	Stop  lexer.Token
	Text  string

	// Exception records that a recognition error occurred while reducing
	// this production. Builders translate it to incomplete nodes.
	Exception bool

	// ErrorNode marks a child synthesized during error recovery, e.g. a
	// missing-token placeholder.
	ErrorNode bool

	Children []*Context
}

// newContext builds a Context over src from start through stop. A stop token
// that precedes start (nothing was consumed) collapses the span to start.
func newContext(src string, rule RuleKind, start, stop lexer.Token) *Context {
	if stop.End < start.Start {
		stop = start
	}
	end := stop.End
	if end > len(src) {
		end = len(src)
	}
	begin := start.Start
	if begin > end {
		begin = end
	}
	return &Context{
		Rule:  rule,
		Start: start,
		Stop:  stop,
		Text:  src[begin:end],
	}
}

// tokenContext wraps a single token as its own production.
func tokenContext(src string, rule RuleKind, tok lexer.Token) *Context {
	ctx := newContext(src, rule, tok, tok)
	ctx.Exception = tok.Incomplete
	return ctx
}
