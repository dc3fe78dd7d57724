package compiler

import (
	"strings"
	"testing"
)

func TestCompileSimpleFunction(t *testing.T) {
	src := `
fn add(a: s32, b: s32): s32 {
	return a + b;
}

fn main(): s32 {
	return add(1, 2);
}
`
	var out strings.Builder
	res, err := Compile("test.t", strings.NewReader(src), &out)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.Lib == nil || len(res.Lib.Funcs) != 2 {
		t.Fatalf("expected 2 parsed functions, got %v", res.Lib)
	}
	asm := out.String()
	if !strings.Contains(asm, "global add") {
		t.Error("expected emitted assembly to declare add as global")
	}
	if !strings.Contains(asm, "call add") {
		t.Error("expected main's body to call add")
	}
}

func TestCompileLexError(t *testing.T) {
	var out strings.Builder
	_, err := Compile("test.t", strings.NewReader(`"unterminated`), &out)
	if err == nil {
		t.Error("expected a lex error for an unterminated string literal")
	}
}

func TestCompileParseError(t *testing.T) {
	var out strings.Builder
	_, err := Compile("test.t", strings.NewReader(`fn main() { return }`), &out)
	if err == nil {
		t.Error("expected a parse error for a missing semicolon")
	}
}

func TestCompileEmitsGlobalsAndStrings(t *testing.T) {
	src := `
var counter: s32;

extern fn puts(s8*);

fn main(): s32 {
	puts("hi");
	counter = 1;
	return 0;
}
`
	var out strings.Builder
	if _, err := Compile("test.t", strings.NewReader(src), &out); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	asm := out.String()
	if !strings.Contains(asm, "counter dd 0") {
		t.Errorf("expected a global data directive for counter, got:\n%s", asm)
	}
	if !strings.Contains(asm, "LC0: db") {
		t.Errorf("expected a string literal data directive, got:\n%s", asm)
	}
}
