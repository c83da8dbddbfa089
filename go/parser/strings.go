package parser

import (
	"regexp"
	"strings"

	"github.com/esql-go/esql/go/parser/lexer"
)

// missingMarker matches the placeholder text of tokens synthesized during
// error recovery, e.g. <missing ')'>.
var missingMarker = regexp.MustCompile(`<missing [^>]*>`)

// isMissingText reports whether text came from an error-recovery token
// rather than from the query source.
func isMissingText(text string) bool {
	return strings.Contains(text, "<missing ")
}

// unquoteString strips the quoting of a string constant. Triple-quoted
// strings lose the wrapper only; regular quoted strings additionally get the
// escape sequences substituted, in this exact order. The replacement order
// is load-bearing: it reproduces the behavior consumers already depend on
// for inputs that mix escaped backslashes with other sequences.
func unquoteString(text string) string {
	if strings.HasPrefix(text, `"""`) {
		text = strings.TrimPrefix(text, `"""`)
		return strings.TrimSuffix(text, `"""`)
	}
	text = strings.TrimPrefix(text, `"`)
	text = strings.TrimSuffix(text, `"`)
	for _, sub := range [][2]string{
		{`\"`, `"`},
		{`\r`, "\r"},
		{`\n`, "\n"},
		{`\t`, "\t"},
		{`\\`, `\`},
	} {
		text = strings.ReplaceAll(text, sub[0], sub[1])
	}
	return text
}

// unquoteIdentifier removes backtick quoting and collapses doubled backticks
// to a literal backtick: `a``b` unquotes to a`b.
func unquoteIdentifier(text string) string {
	if strings.HasPrefix(text, "`") && strings.HasSuffix(text, "`") && len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	return strings.ReplaceAll(text, "``", "`")
}

// sanitizeIdentifierString produces the display name of an identifier:
// error-recovery markers are dropped, then backtick quoting is removed.
// Stripping the marker text rather than rejecting it keeps half-typed
// queries parseable; see the incomplete flag for how consumers are told.
func sanitizeIdentifierString(text string) string {
	text = missingMarker.ReplaceAllString(text, "")
	return unquoteIdentifier(text)
}

// sanitizeSourceString produces the display name of a FROM/ENRICH target:
// quoted sources are unquoted with string-literal rules, and error-recovery
// markers are dropped.
func sanitizeSourceString(text string) string {
	text = missingMarker.ReplaceAllString(text, "")
	if strings.HasPrefix(text, `"`) {
		return unquoteString(text)
	}
	return text
}

// unquoteToken produces the display name of a token, selecting the unquoting
// rule from the token's category instead of sniffing quote characters. The
// category table in package lexer is the single place tying token types to
// their quoting conventions.
func unquoteToken(tok lexer.Token) string {
	switch {
	case tok.Type.InCategory(lexer.QuotedString):
		return sanitizeSourceString(tok.Text)
	case tok.Type.InCategory(lexer.QuotedIdentifier):
		return sanitizeIdentifierString(tok.Text)
	case tok.Type.InCategory(lexer.UnquotedSource):
		return missingMarker.ReplaceAllString(tok.Text, "")
	default:
		return sanitizeIdentifierString(tok.Text)
	}
}
