package script

import (
	"fmt"
	"strings"
)

type (
	// TokenKind classifies a Token.
	TokenKind int

	// Token is one lexical element of a script. Offset is the byte offset of
	// the first character of the token in the script text.
	Token struct {
		Kind   TokenKind
		Text   string
		Value  float64
		Offset int
	}
)

const (
	String       TokenKind = iota // bare identifier or quoted string
	ScopedString                  // identifier of the form layer_variable
	StartArgument
	EndArgument
	StartSection
	EndSection
	Separator
	Assignment
	Constant
	EndOfFile
	Unrecognised
)

var tokenKindNames = [...]string{
	String:        "string",
	ScopedString:  "scoped string",
	StartArgument: "(",
	EndArgument:   ")",
	StartSection:  "{",
	EndSection:    "}",
	Separator:     ",",
	Assignment:    "=",
	Constant:      "constant",
	EndOfFile:     "end of file",
	Unrecognised:  "unrecognised",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
	return tokenKindNames[k]
}

// Split returns the two halves of a ScopedString, split on the first
// underscore. For other tokens, scope is empty and name is the whole text.
func (t Token) Split() (scope, name string) {
	if t.Kind != ScopedString {
		return "", t.Text
	}
	scope, name, _ = strings.Cut(t.Text, "_")
	return scope, name
}

// Is reports whether the token is a bare identifier equal to word, ignoring
// case.
func (t Token) Is(word string) bool {
	return t.Kind == String && strings.EqualFold(t.Text, word)
}

func (t Token) String() string {
	switch t.Kind {
	case String, ScopedString, Unrecognised:
		return t.Text
	case Constant:
		return fmt.Sprintf("%v", t.Value)
	}
	return t.Kind.String()
}
