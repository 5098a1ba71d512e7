package script

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is the single error every malformed script produces. Use
// errors.As with *SyntaxError to recover where the parser stopped.
var ErrSyntax = errors.New("syntax error")

// SyntaxError locates a parse failure within the script text.
type SyntaxError struct {
	Offset int    // byte offset of the offending token
	Near   string // text of the offending token, if any
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at offset %d", e.Offset)
	}
	return fmt.Sprintf("syntax error at offset %d near %q", e.Offset, e.Near)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Unexpected returns the syntax error for a token the parser cannot accept.
func Unexpected(tok Token) error {
	return &SyntaxError{Offset: tok.Offset, Near: tok.String()}
}

// Position converts a byte offset into a 1-based line and column.
func Position(src string, offset int) (line, column int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	before := src[:offset]
	line = strings.Count(before, "\n") + 1
	column = offset - strings.LastIndexByte(before, '\n')
	return line, column
}
