// Package lexer implements the hand-written ES|QL lexer.
//
// The lexer is mode-driven the same way the reference ES|QL grammar is:
// pipe commands switch the scanner between expression, source-identifier and
// name-pattern modes, because the same raw text tokenizes differently in a
// FROM target list than inside a WHERE expression.
package lexer

import (
	"fmt"
	"strings"
)

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals and identifiers
	INTEGER         // 42
	DECIMAL         // 4.2, 1e9
	STRING          // "..." or """..."""
	PARAM           // ?, ?1, ?name
	IDENT           // unquoted identifier
	QUOTED_IDENT    // `quoted identifier`
	UNQUOTED_SOURCE // index pattern segment in source mode
	PATTERN_IDENT   // name pattern segment in pattern mode, may contain *

	// Operators and delimiters
	PIPE      // |
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	DOT       // .
	COLON     // :
	CAST_OP   // ::
	ASSIGN    // =
	EQ        // ==
	NEQ       // !=
	LT        // <
	LTE       // <=
	GT        // >
	GTE       // >=
	PLUS      // +
	MINUS     // -
	ASTERISK  // *
	SLASH     // /
	PERCENT   // %

	// Keywords
	keywordBeg
	FROM
	METADATA
	ROW
	SHOW
	WHERE
	LIMIT
	EVAL
	STATS
	BY
	SORT
	ASC
	DESC
	NULLS
	FIRST
	LAST
	KEEP
	DROP
	RENAME
	AS
	MV_EXPAND
	DISSECT
	GROK
	ENRICH
	ON
	WITH
	AND
	OR
	NOT
	LIKE
	RLIKE
	IN
	IS
	NULL
	TRUE
	FALSE
	keywordEnd
)

var tokenNames = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	INTEGER:         "INTEGER",
	DECIMAL:         "DECIMAL",
	STRING:          "STRING",
	PARAM:           "PARAM",
	IDENT:           "IDENT",
	QUOTED_IDENT:    "QUOTED_IDENT",
	UNQUOTED_SOURCE: "UNQUOTED_SOURCE",
	PATTERN_IDENT:   "PATTERN_IDENT",

	PIPE:     "|",
	COMMA:    ",",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	DOT:      ".",
	COLON:    ":",
	CAST_OP:  "::",
	ASSIGN:   "=",
	EQ:       "==",
	NEQ:      "!=",
	LT:       "<",
	LTE:      "<=",
	GT:       ">",
	GTE:      ">=",
	PLUS:     "+",
	MINUS:    "-",
	ASTERISK: "*",
	SLASH:    "/",
	PERCENT:  "%",

	FROM:      "FROM",
	METADATA:  "METADATA",
	ROW:       "ROW",
	SHOW:      "SHOW",
	WHERE:     "WHERE",
	LIMIT:     "LIMIT",
	EVAL:      "EVAL",
	STATS:     "STATS",
	BY:        "BY",
	SORT:      "SORT",
	ASC:       "ASC",
	DESC:      "DESC",
	NULLS:     "NULLS",
	FIRST:     "FIRST",
	LAST:      "LAST",
	KEEP:      "KEEP",
	DROP:      "DROP",
	RENAME:    "RENAME",
	AS:        "AS",
	MV_EXPAND: "MV_EXPAND",
	DISSECT:   "DISSECT",
	GROK:      "GROK",
	ENRICH:    "ENRICH",
	ON:        "ON",
	WITH:      "WITH",
	AND:       "AND",
	OR:        "OR",
	NOT:       "NOT",
	LIKE:      "LIKE",
	RLIKE:     "RLIKE",
	IN:        "IN",
	IS:        "IS",
	NULL:      "NULL",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
}

func (tt TokenType) String() string {
	if tt >= 0 && int(tt) < len(tokenNames) && tokenNames[tt] != "" {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsKeyword reports whether the token type is a reserved word.
func (tt TokenType) IsKeyword() bool {
	return tt > keywordBeg && tt < keywordEnd
}

var keywords map[string]TokenType

func init() {
	keywords = make(map[string]TokenType, keywordEnd-keywordBeg)
	for tt := keywordBeg + 1; tt < keywordEnd; tt++ {
		keywords[tokenNames[tt]] = tt
	}
}

// Lookup maps an identifier to its keyword token type, or IDENT if the
// identifier is not reserved. ES|QL keywords are case-insensitive.
func Lookup(ident string) TokenType {
	if tt, ok := keywords[strings.ToUpper(ident)]; ok {
		return tt
	}
	return IDENT
}

// Category names a semantic class of token used by the unquoting helpers in
// package parser. The table below is the single place tying categories to
// concrete token types; it is meant to be regenerated alongside the grammar
// when token identifiers change.
type Category int

const (
	QuotedString Category = iota
	QuotedIdentifier
	UnquotedIdentifier
	UnquotedSource
)

// Categories maps each semantic token category to the token types the
// grammar produces for it.
var Categories = map[Category][]TokenType{
	QuotedString:       {STRING},
	QuotedIdentifier:   {QUOTED_IDENT},
	UnquotedIdentifier: {IDENT},
	UnquotedSource:     {UNQUOTED_SOURCE, PATTERN_IDENT},
}

// InCategory reports whether the token type belongs to the given category.
func (tt TokenType) InCategory(c Category) bool {
	for _, t := range Categories[c] {
		if t == tt {
			return true
		}
	}
	return false
}

// Token is one lexical token with its half-open byte-offset span into the
// source text. End is one past the last byte, so the last character offset
// of a non-empty token is End-1.
type Token struct {
	Type  TokenType
	Text  string
	Start int
	End   int

	// Incomplete marks tokens produced by error recovery, e.g. an
	// unterminated string scanned through end of input.
	Incomplete bool
}

// Mode selects the scanner's tokenization rules. The parse driver switches
// modes per command, mirroring the lexer modes of the ES|QL grammar.
type Mode int

const (
	// ModeExpression tokenizes WHERE/EVAL/STATS-style expression input.
	ModeExpression Mode = iota
	// ModeSource tokenizes FROM/ENRICH target lists, where index patterns
	// like logs-* or cluster:index are single unquoted-source runs split
	// on the colon.
	ModeSource
	// ModePattern tokenizes KEEP/DROP/RENAME name patterns, where * is
	// part of the name rather than an operator.
	ModePattern
)
