package lexer

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/tc/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := All(strings.NewReader(src), "test.t")
	if err != nil {
		t.Fatalf("All(%q) failed: %v", src, err)
	}
	return toks
}

func TestKeywordsAndPunctuation(t *testing.T) {
	toks := lexAll(t, "fn main ( ) { return ; }")
	want := []token.Tag{
		token.Fn, token.Name, token.Tag('('), token.Tag(')'),
		token.Tag('{'), token.Return, token.Tag(';'), token.Tag('}'), token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tag := range want {
		if toks[i].Tag != tag {
			t.Errorf("token %d: tag = %d, want %d", i, toks[i].Tag, tag)
		}
	}
}

func TestNumberBases(t *testing.T) {
	cases := map[string]int64{
		"0b101": 5,
		"0o17":  15,
		"0xff":  255,
		"42":    42,
		"0":     0,
	}
	for src, want := range cases {
		toks := lexAll(t, src)
		if toks[0].Tag != token.Number || toks[0].Number != want {
			t.Errorf("lex(%q) = %+v, want Number %d", src, toks[0], want)
		}
	}
}

func TestMultiCharOperators(t *testing.T) {
	cases := map[string]token.Tag{
		">>=": token.ShrAssign,
		"<<=": token.ShlAssign,
		">>":  token.Shr,
		"<<":  token.Shl,
		"++":  token.Inc,
		"--":  token.Dec,
		"<=":  token.Le,
		">=":  token.Ge,
		"==":  token.Eq,
		"!=":  token.Ne,
	}
	for src, want := range cases {
		toks := lexAll(t, src)
		if toks[0].Tag != want {
			t.Errorf("lex(%q) tag = %d, want %d", src, toks[0].Tag, want)
		}
	}
}

func TestStringEscapeOnlyRecognizesNewline(t *testing.T) {
	toks := lexAll(t, `"a\nb\tc"`)
	// \n becomes a real newline; \t drops the backslash and keeps a plain 't'.
	want := "a\nbtc"
	if toks[0].Name != want {
		t.Errorf("string literal = %q, want %q", toks[0].Name, want)
	}
}

func TestNestedBlockComments(t *testing.T) {
	toks := lexAll(t, "/* outer /* inner */ still comment */ fn")
	if toks[0].Tag != token.Fn {
		t.Errorf("first token after nested comment = %d, want Fn; full comment should be skipped", toks[0].Tag)
	}
}

func TestLineComment(t *testing.T) {
	toks := lexAll(t, "fn // trailing comment\nvar")
	if toks[0].Tag != token.Fn || toks[1].Tag != token.Var {
		t.Errorf("tokens = %+v, want [Fn Var]", toks[:2])
	}
}

func TestAsmAttachesToNextToken(t *testing.T) {
	// The body after '{' is copied verbatim (no trimming), matching the
	// original's fputc-until-'}' loop exactly; only an immediate newline
	// right after '{' is swallowed, not a space.
	toks := lexAll(t, "asm {\nmov rax, 1\n} fn")
	if toks[0].Tag != token.Fn {
		t.Fatalf("first token = %d, want Fn (asm yields no token of its own)", toks[0].Tag)
	}
	if toks[0].Asm != "mov rax, 1\n" {
		t.Errorf("Asm = %q, want %q", toks[0].Asm, "mov rax, 1\n")
	}
}

func TestConsecutiveAsmBlocksConcatenate(t *testing.T) {
	toks := lexAll(t, "asm {\na\n} asm {\nb\n} fn")
	if toks[0].Asm != "a\nb\n" {
		t.Errorf("Asm = %q, want concatenated asm bodies", toks[0].Asm)
	}
}

func TestAsmBeforeEOF(t *testing.T) {
	toks, err := All(strings.NewReader("asm {\ntail\n}"), "test.t")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	last := toks[len(toks)-1]
	if last.Tag != token.EOF {
		t.Fatalf("last token tag = %d, want EOF", last.Tag)
	}
	if last.Asm != "tail\n" {
		t.Errorf("EOF token Asm = %q, want %q", last.Asm, "tail\n")
	}
}

func TestUnterminatedStringErrors(t *testing.T) {
	_, err := All(strings.NewReader(`"never closed`), "test.t")
	if err == nil {
		t.Error("expected an error for an unterminated string literal")
	}
}

func TestUnterminatedBlockCommentErrors(t *testing.T) {
	_, err := All(strings.NewReader("/* never closed"), "test.t")
	if err == nil {
		t.Error("expected an error for an unterminated block comment")
	}
}
