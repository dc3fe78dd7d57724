// Package compiler wires the lexer, parser, and code generator into the
// single lex -> parse -> generate pass the command-line entry point drives.
package compiler

import (
	"io"

	"github.com/gmofishsauce/tc/internal/ast"
	"github.com/gmofishsauce/tc/internal/codegen"
	"github.com/gmofishsauce/tc/internal/diag"
	"github.com/gmofishsauce/tc/internal/lexer"
	"github.com/gmofishsauce/tc/internal/parser"
	"github.com/gmofishsauce/tc/internal/token"
)

// Error is the single diagnostic type returned by every stage: a
// lex/parse error carries file/line/col, a code-generation error carries
// only a message.
type Error = diag.Error

// Result holds the parsed tree alongside whatever debug material the
// caller asked to print, so cmd/tc can report --print-tokens/--print-ast
// without re-running the front end.
type Result struct {
	Tokens []token.Token
	Lib    *ast.Lib
}

// Compile runs the whole pipeline: lex file's contents from src, parse the
// token stream into a Lib, and emit NASM assembly to out. name is used only
// to annotate diagnostics.
func Compile(name string, src io.Reader, out io.Writer) (*Result, error) {
	toks, err := lexer.All(src, name)
	if err != nil {
		return nil, err
	}
	lib, err := parser.Parse(name, toks)
	if err != nil {
		return &Result{Tokens: toks}, err
	}
	res := &Result{Tokens: toks, Lib: lib}
	if err := codegen.Generate(lib, out); err != nil {
		return res, err
	}
	return res, nil
}
