package parser

import (
	"fmt"

	"github.com/esql-go/esql/go/parser/lexer"
)

// SyntaxError is a recognition error raised while reducing a production.
// The parse driver records it, resynchronizes at the next pipe and keeps
// going; it never propagates as a Go error to the caller.
type SyntaxError struct {
	Message string
	Token   lexer.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s", e.Message)
}

// Span returns the offending token's source location.
func (e *SyntaxError) Span() [2]int {
	return [2]int{e.Token.Start, lastOffset(e.Token)}
}
