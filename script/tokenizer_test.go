package script_test

import (
	"errors"
	"testing"

	"github.com/mnglab/mng/script"
)

func kinds(src string) []script.TokenKind {
	tz := script.NewTokenizer(src)
	var ret []script.TokenKind
	for {
		tok := tz.Next()
		ret = append(ret, tok.Kind)
		if tok.Kind == script.EndOfFile || tok.Kind == script.Unrecognised {
			return ret
		}
	}
}

func TestTokenKinds(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []script.TokenKind
	}{
		{"punctuation", "(){},=", []script.TokenKind{script.StartArgument, script.EndArgument, script.StartSection, script.EndSection, script.Separator, script.Assignment, script.EndOfFile}},
		{"identifier", "Track", []script.TokenKind{script.String, script.EndOfFile}},
		{"scoped", "Bass_Volume", []script.TokenKind{script.ScopedString, script.EndOfFile}},
		{"quoted", `"Main Theme"`, []script.TokenKind{script.String, script.EndOfFile}},
		{"numbers", "1 -2 3.25 -0.5", []script.TokenKind{script.Constant, script.Constant, script.Constant, script.Constant, script.EndOfFile}},
		{"comment", "x // y = 1\n= 2", []script.TokenKind{script.String, script.Assignment, script.Constant, script.EndOfFile}},
		{"comment at end", "x // no newline", []script.TokenKind{script.String, script.EndOfFile}},
		{"empty", "   \n\t", []script.TokenKind{script.EndOfFile}},
		{"lone minus", "- 1", []script.TokenKind{script.Unrecognised}},
		{"two dots", "1.2.3", []script.TokenKind{script.Unrecognised}},
		{"trailing dot", "1.", []script.TokenKind{script.Unrecognised}},
		{"leading dot", ".5", []script.TokenKind{script.Unrecognised}},
		{"single slash", "/", []script.TokenKind{script.Unrecognised}},
		{"unterminated quote", `"abc`, []script.TokenKind{script.Unrecognised}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := kinds(c.src)
			if len(got) != len(c.want) {
				t.Fatalf("kinds(%q) = %v, want %v", c.src, got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("kinds(%q) = %v, want %v", c.src, got, c.want)
				}
			}
		})
	}
}

func TestTokenValues(t *testing.T) {
	tz := script.NewTokenizer(`-12.5 Amb_Loop_2 "quoted name"`)
	if tok := tz.Next(); tok.Value != -12.5 {
		t.Errorf("constant value = %v, want -12.5", tok.Value)
	}
	tok := tz.Next()
	if scope, name := tok.Split(); scope != "Amb" || name != "Loop_2" {
		t.Errorf("Split() = %q, %q, want \"Amb\", \"Loop_2\"", scope, name)
	}
	if tok := tz.Next(); tok.Text != "quoted name" || tok.Offset != 17 {
		t.Errorf("quoted token = %q at %d, want \"quoted name\" at 17", tok.Text, tok.Offset)
	}
	for i := 0; i < 3; i++ {
		if tok := tz.Next(); tok.Kind != script.EndOfFile {
			t.Fatalf("token after end = %v, want end of file", tok.Kind)
		}
	}
}

func TestLookaheadDoesNotConsume(t *testing.T) {
	tz := script.NewTokenizer("a b")
	if tz.Lookahead().Text != "a" || tz.Lookahead().Text != "a" {
		t.Fatalf("lookahead moved")
	}
	if tz.Next().Text != "a" || tz.Next().Text != "b" {
		t.Fatalf("Next did not follow the lookahead")
	}
}

func TestParseArgument(t *testing.T) {
	tz := script.NewTokenizer(`(0.75) ("Drums") (Amb_Loop) (x`)
	if v, err := tz.ParseConstantArgument(); err != nil || v != 0.75 {
		t.Fatalf("ParseConstantArgument = %v, %v", v, err)
	}
	if name, err := tz.ParseNameArgument(); err != nil || name != "Drums" {
		t.Fatalf("ParseNameArgument = %q, %v", name, err)
	}
	if name, err := tz.ParseNameArgument(); err != nil || name != "Amb_Loop" {
		t.Fatalf("ParseNameArgument = %q, %v", name, err)
	}
	_, err := tz.ParseNameArgument()
	var syntaxErr *script.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("unterminated argument error = %v, want *SyntaxError", err)
	}
	if syntaxErr.Offset != len(`(0.75) ("Drums") (Amb_Loop) (x`) {
		t.Errorf("error offset = %d, want the end of the text", syntaxErr.Offset)
	}
}

func TestSkipNested(t *testing.T) {
	tz := script.NewTokenizer("{ a(b, c{d}) { e } } next")
	if err := tz.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if tok := tz.Next(); tok.Text != "next" {
		t.Fatalf("token after skip = %q, want next", tok.Text)
	}
	if err := script.NewTokenizer("{ a ( }").Skip(); !errors.Is(err, script.ErrSyntax) {
		t.Fatalf("unbalanced skip error = %v, want a syntax error", err)
	}
}

func TestPosition(t *testing.T) {
	src := "ab\ncd\nef"
	cases := []struct{ offset, line, column int }{
		{0, 1, 1}, {1, 1, 2}, {3, 2, 1}, {7, 3, 2}, {100, 3, 3},
	}
	for _, c := range cases {
		line, column := script.Position(src, c.offset)
		if line != c.line || column != c.column {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", c.offset, line, column, c.line, c.column)
		}
	}
}
