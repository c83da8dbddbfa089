package lexer

// Lexer scans ES|QL source text into tokens. It is single-use and not safe
// for concurrent access; each parse owns its own instance.
type Lexer struct {
	src  string
	pos  int
	mode Mode
}

// New returns a lexer over src, starting in expression mode.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// SetMode switches the tokenization rules. It affects tokens scanned after
// the call; the parse driver invokes it as it reduces command heads.
func (l *Lexer) SetMode(m Mode) {
	l.mode = m
}

// Mode returns the current scanner mode.
func (l *Lexer) Mode() Mode {
	return l.mode
}

// Next scans and returns the next token. At end of input it returns an EOF
// token whose span collapses to len(src). Next never fails: malformed input
// is returned as ILLEGAL tokens or as incomplete literal tokens, and the
// parse driver turns those into error nodes.
func (l *Lexer) Next() Token {
	l.skipTrivia()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Start: len(l.src), End: len(l.src)}
	}

	switch l.mode {
	case ModeSource:
		return l.nextSource()
	case ModePattern:
		return l.nextPattern()
	default:
		return l.nextExpression()
	}
}

func (l *Lexer) nextExpression() Token {
	start := l.pos
	b := l.src[l.pos]

	switch {
	case isDigit(b):
		return l.scanNumber(start)
	case b == '"':
		return l.scanString(start)
	case b == '`':
		return l.scanQuotedIdent(start)
	case b == '?':
		return l.scanParam(start)
	case isIdentStart(b):
		l.pos++
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		return l.token(Lookup(text), start)
	}

	// Operators and delimiters, longest match first.
	two := ""
	if l.pos+2 <= len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "::":
		l.pos += 2
		return l.token(CAST_OP, start)
	case "==":
		l.pos += 2
		return l.token(EQ, start)
	case "!=":
		l.pos += 2
		return l.token(NEQ, start)
	case "<=":
		l.pos += 2
		return l.token(LTE, start)
	case ">=":
		l.pos += 2
		return l.token(GTE, start)
	}

	l.pos++
	switch b {
	case '|':
		return l.token(PIPE, start)
	case ',':
		return l.token(COMMA, start)
	case '(':
		return l.token(LPAREN, start)
	case ')':
		return l.token(RPAREN, start)
	case '[':
		return l.token(LBRACKET, start)
	case ']':
		return l.token(RBRACKET, start)
	case '.':
		return l.token(DOT, start)
	case ':':
		return l.token(COLON, start)
	case '=':
		return l.token(ASSIGN, start)
	case '<':
		return l.token(LT, start)
	case '>':
		return l.token(GT, start)
	case '+':
		return l.token(PLUS, start)
	case '-':
		return l.token(MINUS, start)
	case '*':
		return l.token(ASTERISK, start)
	case '/':
		return l.token(SLASH, start)
	case '%':
		return l.token(PERCENT, start)
	}
	return l.token(ILLEGAL, start)
}

// nextSource scans FROM/ENRICH target lists. An unquoted source is a run of
// index-pattern characters; the colon separating a cluster prefix from the
// index name is its own token. METADATA, ON and WITH stay reserved so the
// driver can attach command options.
func (l *Lexer) nextSource() Token {
	start := l.pos
	b := l.src[l.pos]

	switch b {
	case '"':
		return l.scanString(start)
	case '|':
		l.pos++
		return l.token(PIPE, start)
	case ',':
		l.pos++
		return l.token(COMMA, start)
	case ':':
		l.pos++
		return l.token(COLON, start)
	case '=':
		l.pos++
		return l.token(ASSIGN, start)
	case '`':
		return l.scanQuotedIdent(start)
	case '?':
		return l.scanParam(start)
	}

	if isSourcePart(b) {
		l.pos++
		for l.pos < len(l.src) && isSourcePart(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		switch tt := Lookup(text); tt {
		case METADATA, ON, WITH, AS:
			return l.token(tt, start)
		}
		return l.token(UNQUOTED_SOURCE, start)
	}

	l.pos++
	return l.token(ILLEGAL, start)
}

// nextPattern scans KEEP/DROP/RENAME name patterns, where * belongs to the
// name and dots separate parts. AS stays reserved for RENAME clauses.
func (l *Lexer) nextPattern() Token {
	start := l.pos
	b := l.src[l.pos]

	switch b {
	case '|':
		l.pos++
		return l.token(PIPE, start)
	case ',':
		l.pos++
		return l.token(COMMA, start)
	case '.':
		l.pos++
		return l.token(DOT, start)
	case '=':
		l.pos++
		return l.token(ASSIGN, start)
	case '`':
		return l.scanQuotedIdent(start)
	case '?':
		return l.scanParam(start)
	}

	if isPatternPart(b) {
		l.pos++
		for l.pos < len(l.src) && isPatternPart(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		if Lookup(text) == AS {
			return l.token(AS, start)
		}
		return l.token(PATTERN_IDENT, start)
	}

	l.pos++
	return l.token(ILLEGAL, start)
}

// scanNumber scans an integer or decimal literal. A fraction or exponent
// makes it DECIMAL. The scanner does not validate magnitude; value parsing
// happens in the builder layer.
func (l *Lexer) scanNumber(start int) Token {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	decimal := false
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		decimal = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			decimal = true
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		} else {
			// Not an exponent after all; the e belongs to whatever
			// follows (e.g. "3 hours" style interval units).
			l.pos = mark
		}
	}
	if decimal {
		return l.token(DECIMAL, start)
	}
	return l.token(INTEGER, start)
}

// scanString scans "..." with backslash escapes or """...""" verbatim. An
// unterminated literal runs to end of input and is marked incomplete.
func (l *Lexer) scanString(start int) Token {
	if l.pos+3 <= len(l.src) && l.src[l.pos:l.pos+3] == `"""` {
		l.pos += 3
		for l.pos+3 <= len(l.src) {
			if l.src[l.pos:l.pos+3] == `"""` {
				l.pos += 3
				return l.token(STRING, start)
			}
			l.pos++
		}
		l.pos = len(l.src)
		return l.incompleteToken(STRING, start)
	}

	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			if l.pos > len(l.src) {
				l.pos = len(l.src)
			}
		case '"':
			l.pos++
			return l.token(STRING, start)
		case '\n', '\r':
			return l.incompleteToken(STRING, start)
		default:
			l.pos++
		}
	}
	return l.incompleteToken(STRING, start)
}

// scanQuotedIdent scans a backtick-quoted identifier, where a doubled
// backtick escapes a literal backtick.
func (l *Lexer) scanQuotedIdent(start int) Token {
	l.pos++ // opening backtick
	for l.pos < len(l.src) {
		if l.src[l.pos] != '`' {
			l.pos++
			continue
		}
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '`' {
			l.pos += 2
			continue
		}
		l.pos++
		return l.token(QUOTED_IDENT, start)
	}
	return l.incompleteToken(QUOTED_IDENT, start)
}

// scanParam scans ?, ?1 or ?name.
func (l *Lexer) scanParam(start int) Token {
	l.pos++ // ?
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	return l.token(PARAM, start)
}

// skipTrivia consumes whitespace, // line comments and /* */ block comments.
// An unterminated block comment consumes the rest of the input.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		b := l.src[l.pos]
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			l.pos++
		case b == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case b == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.pos += 2
			for l.pos < len(l.src) {
				if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) token(tt TokenType, start int) Token {
	return Token{Type: tt, Text: l.src[start:l.pos], Start: start, End: l.pos}
}

func (l *Lexer) incompleteToken(tt TokenType, start int) Token {
	tok := l.token(tt, start)
	tok.Incomplete = true
	return tok
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '@' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// isSourcePart covers the characters allowed in unquoted index patterns:
// besides identifier characters, wildcards, dots and the dash and plus used
// by date-math and exclusion patterns.
func isSourcePart(b byte) bool {
	return isIdentPart(b) || b == '*' || b == '.' || b == '-' || b == '+' || b == '$'
}

func isPatternPart(b byte) bool {
	return isIdentPart(b) || b == '*' || b == '$'
}
