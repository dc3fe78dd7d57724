// Package token defines the lexical token tags and the Token value the
// lexer produces and the parser consumes.
package token

import (
	"fmt"

	"github.com/gmofishsauce/tc/internal/types"
)

// Tag identifies the kind of a token. Single-character punctuation and
// operators use their own byte value as the tag, exactly as the source
// language's single-char tokens do; everything else starts at 127.
type Tag int

const (
	Extern Tag = iota + 127
	Var
	Fn
	Return
	If
	Else
	While
	Sizeof

	ShrAssign
	ShlAssign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	AndAssign
	OrAssign
	Shr
	Shl
	Inc
	Dec
	LAnd // unreachable: the lexer only emits a single '&'
	LOr  // unreachable: the lexer only emits a single '|'
	Le
	Ge
	Eq
	Ne

	Number
	String
	Type
	Name
	EOF
)

// names mirrors the original token_type_str table: one entry per tag from
// Extern through EOF, in declaration order. The five leaf-kind entries
// (Number/String/Type/Name/EOF) carry a leading quote marker that Describe
// strips; it exists only so this table has a distinct, non-empty spelling
// for each tag and is never interpolated verbatim into a diagnostic.
var names = []string{
	"extern", "var", "fn", "return",
	"if", "else", "while",
	"sizeof",

	">>=", "<<=", "+=", "-=",
	"*=", "/=", "&=", "|=",
	">>", "<<", "++", "--", "&&",
	"||", "<=", ">=", "==", "!=",

	"'NUMBER", "'STRING", "'TYPE", "'NAME", "'EOF",
}

// numKeywords is the count of keyword entries at the front of names
// (extern..sizeof). FromStr only searches this range, matching the
// original's token_type_fromstr bound: it exists to classify identifiers
// as keywords, and no identifier can ever spell a multi-char operator.
const numKeywords = int(Sizeof - Extern + 1)

// FromStr looks up a keyword spelling and returns its tag, or EOF if s names
// none of the keywords (matching the original's sentinel return, since EOF
// can never be produced by this lookup path).
func FromStr(s string) Tag {
	for i := 0; i < numKeywords; i++ {
		if names[i] == s {
			return Extern + Tag(i)
		}
	}
	return EOF
}

// Describe renders a tag the way a diagnostic should show it: punctuation
// renders as itself, keywords/operators render as their spelling, and the
// five leaf kinds render without their table's leading quote.
func Describe(t Tag) string {
	switch {
	case t < Extern:
		return string(rune(t))
	case t < Number:
		return names[t-Extern]
	case t <= EOF:
		return names[t-Extern][1:]
	default:
		return "?"
	}
}

// Token is one lexical token: its tag, source position, and payload (at
// most one of Number/TypeVal/Name is meaningful, chosen by Tag).
type Token struct {
	Tag    Tag
	Line   int
	Column int

	Number  int64
	TypeVal types.Type
	Name    string

	// Asm holds the verbatim body of any `asm { ... }` directive(s)
	// encountered immediately before this token (concatenated in source
	// order). The directive itself yields no token of its own, so its
	// content rides along on whatever real token follows it.
	Asm string
}

// Describe renders a token for diagnostics the way the original's
// token_tostr does: numbers print as decimal, types print their surface
// syntax, names print themselves, and everything else falls back to
// Describe(Tag).
func (t Token) Describe() string {
	switch t.Tag {
	case Number:
		return fmt.Sprintf("%d", t.Number)
	case Type:
		return types.String(t.TypeVal)
	case Name:
		return t.Name
	case EOF:
		return "EOF"
	default:
		return Describe(t.Tag)
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d: %s", t.Line, t.Column, t.Describe())
}
