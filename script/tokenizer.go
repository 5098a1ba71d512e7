package script

import "strconv"

// Tokenizer produces tokens lazily from a script text, one at a time and in
// a single pass. Whitespace and // comments are skipped.
type Tokenizer struct {
	src       string
	pos       int
	lookahead *Token
}

func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{src: src}
}

// Next consumes and returns the next token. At the end of the text it keeps
// returning EndOfFile.
func (t *Tokenizer) Next() Token {
	if t.lookahead != nil {
		tok := *t.lookahead
		t.lookahead = nil
		return tok
	}
	return t.scan()
}

// Lookahead returns the next token without consuming it.
func (t *Tokenizer) Lookahead() Token {
	if t.lookahead == nil {
		tok := t.scan()
		t.lookahead = &tok
	}
	return *t.lookahead
}

// Offset returns the byte offset of the next unconsumed token, or of the
// position where scanning would resume.
func (t *Tokenizer) Offset() int {
	if t.lookahead != nil {
		return t.lookahead.Offset
	}
	return t.pos
}

func (t *Tokenizer) Source() string {
	return t.src
}

// Expect consumes the next token and fails unless it is of the given kind.
func (t *Tokenizer) Expect(kind TokenKind) (Token, error) {
	tok := t.Next()
	if tok.Kind != kind {
		return tok, Unexpected(tok)
	}
	return tok, nil
}

// ParseArgument consumes "( constant )" or "( name )" and returns the inner
// token.
func (t *Tokenizer) ParseArgument() (Token, error) {
	if _, err := t.Expect(StartArgument); err != nil {
		return Token{}, err
	}
	tok := t.Next()
	switch tok.Kind {
	case Constant, String, ScopedString:
	default:
		return tok, Unexpected(tok)
	}
	if _, err := t.Expect(EndArgument); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// ParseConstantArgument consumes "( constant )".
func (t *Tokenizer) ParseConstantArgument() (float64, error) {
	tok, err := t.ParseArgument()
	if err != nil {
		return 0, err
	}
	if tok.Kind != Constant {
		return 0, Unexpected(tok)
	}
	return tok.Value, nil
}

// ParseNameArgument consumes "( name )". Scoped identifiers are accepted
// verbatim, so names such as "Amb_Loop1" are legal.
func (t *Tokenizer) ParseNameArgument() (string, error) {
	tok, err := t.ParseArgument()
	if err != nil {
		return "", err
	}
	if tok.Kind == Constant {
		return "", Unexpected(tok)
	}
	return tok.Text, nil
}

// Skip consumes tokens up to and including the token that closes the next
// argument list or section, whichever opens first. Nested brackets are
// skipped as a whole.
func (t *Tokenizer) Skip() error {
	open := t.Next()
	var closer TokenKind
	switch open.Kind {
	case StartArgument:
		closer = EndArgument
	case StartSection:
		closer = EndSection
	default:
		return Unexpected(open)
	}
	for {
		tok := t.Lookahead()
		switch tok.Kind {
		case closer:
			t.Next()
			return nil
		case StartArgument, StartSection:
			if err := t.Skip(); err != nil {
				return err
			}
		case EndArgument, EndSection, EndOfFile, Unrecognised:
			t.Next()
			return Unexpected(tok)
		default:
			t.Next()
		}
	}
}

func (t *Tokenizer) scan() Token {
	t.skipSpace()
	start := t.pos
	if t.pos >= len(t.src) {
		return Token{Kind: EndOfFile, Offset: start}
	}
	c := t.src[t.pos]
	switch c {
	case '(':
		t.pos++
		return Token{Kind: StartArgument, Text: "(", Offset: start}
	case ')':
		t.pos++
		return Token{Kind: EndArgument, Text: ")", Offset: start}
	case '{':
		t.pos++
		return Token{Kind: StartSection, Text: "{", Offset: start}
	case '}':
		t.pos++
		return Token{Kind: EndSection, Text: "}", Offset: start}
	case ',':
		t.pos++
		return Token{Kind: Separator, Text: ",", Offset: start}
	case '=':
		t.pos++
		return Token{Kind: Assignment, Text: "=", Offset: start}
	case '"':
		return t.scanQuoted()
	}
	if c == '-' || isDigit(c) {
		return t.scanNumber()
	}
	if isLetter(c) {
		return t.scanIdentifier()
	}
	t.pos++
	return Token{Kind: Unrecognised, Text: t.src[start:t.pos], Offset: start}
}

func (t *Tokenizer) skipSpace() {
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			t.pos++
		case c == '/' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '/':
			for t.pos < len(t.src) && t.src[t.pos] != '\n' {
				t.pos++
			}
		default:
			return
		}
	}
}

// scanNumber accepts an optional minus sign, one or more digits and an
// optional fraction of one or more digits. Anything else that starts like a
// number is Unrecognised.
func (t *Tokenizer) scanNumber() Token {
	start := t.pos
	if t.src[t.pos] == '-' {
		t.pos++
	}
	if !t.digits() {
		return Token{Kind: Unrecognised, Text: t.src[start:t.pos], Offset: start}
	}
	if t.pos < len(t.src) && t.src[t.pos] == '.' {
		t.pos++
		if !t.digits() {
			return Token{Kind: Unrecognised, Text: t.src[start:t.pos], Offset: start}
		}
		if t.pos < len(t.src) && t.src[t.pos] == '.' {
			t.pos++
			return Token{Kind: Unrecognised, Text: t.src[start:t.pos], Offset: start}
		}
	}
	text := t.src[start:t.pos]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{Kind: Unrecognised, Text: text, Offset: start}
	}
	return Token{Kind: Constant, Text: text, Value: value, Offset: start}
}

func (t *Tokenizer) digits() bool {
	start := t.pos
	for t.pos < len(t.src) && isDigit(t.src[t.pos]) {
		t.pos++
	}
	return t.pos > start
}

func (t *Tokenizer) scanIdentifier() Token {
	start := t.pos
	scoped := false
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		if c == '_' {
			scoped = true
		} else if !isLetter(c) && !isDigit(c) {
			break
		}
		t.pos++
	}
	kind := String
	if scoped {
		kind = ScopedString
	}
	return Token{Kind: kind, Text: t.src[start:t.pos], Offset: start}
}

func (t *Tokenizer) scanQuoted() Token {
	start := t.pos
	t.pos++ // opening quote
	for t.pos < len(t.src) {
		switch t.src[t.pos] {
		case '"':
			t.pos++
			return Token{Kind: String, Text: t.src[start+1 : t.pos-1], Offset: start}
		case '\n':
			return Token{Kind: Unrecognised, Text: t.src[start:t.pos], Offset: start}
		}
		t.pos++
	}
	return Token{Kind: Unrecognised, Text: t.src[start:t.pos], Offset: start}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
