// Package lexer turns a source file into a stream of tokens, matching the
// original's character-at-a-time lexer.c but feeding a single in-process
// parser directly instead of writing a token stream out for a separate pass.
package lexer

import (
	"bufio"
	"io"
	"strings"

	"github.com/gmofishsauce/tc/internal/diag"
	"github.com/gmofishsauce/tc/internal/token"
	"github.com/gmofishsauce/tc/internal/types"
)

const eof = -1

// Lexer reads runes from an input file and produces tokens on demand.
type Lexer struct {
	r       *bufio.Reader
	file    string
	line    int
	col     int
	pending strings.Builder // asm bytes not yet attached to a token
}

// New creates a Lexer over r, reporting file in diagnostics.
func New(r io.Reader, file string) *Lexer {
	return &Lexer{r: bufio.NewReader(r), file: file, line: 1, col: 0}
}

func (l *Lexer) errorf(format string, args ...any) *diag.Error {
	return diag.At(l.file, l.line, l.col, format, args...)
}

func (l *Lexer) next() int {
	c, _, err := l.r.ReadRune()
	if err != nil {
		return eof
	}
	l.col++
	if c == '\n' {
		l.line++
		l.col = 0
	}
	return int(c)
}

func (l *Lexer) peek() int {
	b, err := l.r.Peek(1)
	if err != nil {
		return eof
	}
	return int(b[0])
}

func (l *Lexer) optional(c int) bool {
	if l.peek() == c {
		l.next()
		return true
	}
	return false
}

func (l *Lexer) expect(c int) error {
	if got := l.next(); got != c {
		return l.errorf("invalid character. expected '%c'.", rune(c))
	}
	return nil
}

func (l *Lexer) skipWS() int {
	c := l.next()
	for c == ' ' || c == '\t' || c == '\n' || c == '\r' {
		c = l.next()
	}
	return c
}

func isVarChar(c int) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlpha(c int) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func toNumber(c int) int {
	switch {
	case c >= 'a' && c <= 'f':
		return 10 + c - 'a'
	case c >= 'A' && c <= 'F':
		return 10 + c - 'A'
	case c >= '0' && c <= '9':
		return c - '0'
	default:
		return -1
	}
}

func (l *Lexer) lexNumber(c, base int) int64 {
	n := int64(toNumber(c))
	for toNumber(l.peek()) != -1 {
		n = int64(base)*n + int64(toNumber(l.next()))
	}
	return n
}

func (l *Lexer) lexWord(c int) string {
	var b strings.Builder
	b.WriteRune(rune(c))
	for isVarChar(l.peek()) {
		b.WriteRune(rune(l.next()))
	}
	return b.String()
}

// lexString reads the body of a "..." literal. Only \n is a recognized
// escape: for any other backslash-prefixed character the backslash is
// dropped and the character itself is written out unchanged.
func (l *Lexer) lexString() (string, error) {
	var b strings.Builder
	for {
		c := l.next()
		if c == eof {
			return "", l.errorf("unterminated string literal.")
		}
		if c == '"' {
			break
		}
		if c == '\\' {
			c = l.next()
			if c == 'n' {
				c = '\n'
			}
		}
		b.WriteRune(rune(c))
	}
	return b.String(), nil
}

func (l *Lexer) skipBlockComment() error {
	depth := 1
	for depth > 0 {
		if l.optional('/') && l.optional('*') {
			depth++
		} else if l.optional('*') && l.optional('/') {
			depth--
		} else if l.next() == eof {
			return l.errorf("unterminated block comment.")
		}
	}
	return nil
}

// Next produces the next token, skipping whitespace, line and (nested) block
// comments, and any `asm { ... }` directive. Any asm body encountered along
// the way is attached to the returned token's Asm field, in source order.
func (l *Lexer) Next() (token.Token, error) {
	t, err := l.next0()
	if err != nil {
		return token.Token{}, err
	}
	if l.pending.Len() > 0 {
		t.Asm = l.pending.String()
		l.pending.Reset()
	}
	return t, nil
}

// next0 is Next's body, without asm-pending attachment — its own `asm`
// handling recurses into itself so intermediate recursive calls don't
// prematurely attach and reset the pending buffer before the real token
// returns to Next.
func (l *Lexer) next0() (token.Token, error) {
	c := l.skipWS()
	for c == '/' {
		if l.optional('/') {
			for {
				n := l.next()
				if n == '\n' || n == eof {
					break
				}
			}
		} else if l.optional('*') {
			if err := l.skipBlockComment(); err != nil {
				return token.Token{}, err
			}
		} else {
			break
		}
		c = l.skipWS()
	}

	line, col := l.line, l.col

	switch {
	case c == eof:
		return token.Token{Tag: token.EOF, Line: line, Column: col}, nil

	case c == '\'':
		n := l.next()
		if n == '\\' {
			switch l.next() {
			case 'b':
				n = '\b'
			case 't':
				n = '\t'
			case 'n':
				n = '\n'
			case 'f':
				n = '\f'
			case 'r':
				n = '\r'
			default:
				return token.Token{}, l.errorf("invalid escape sequence")
			}
		}
		if err := l.expect('\''); err != nil {
			return token.Token{}, err
		}
		return token.Token{Tag: token.Number, Number: int64(n), Line: line, Column: col}, nil

	case c == '"':
		s, err := l.lexString()
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Tag: token.String, Name: s, Line: line, Column: col}, nil

	case c == '0':
		var n int64
		switch {
		case l.optional('b'):
			n = l.lexNumber(l.next(), 2)
		case l.optional('o'):
			n = l.lexNumber(l.next(), 8)
		case l.optional('x'):
			n = l.lexNumber(l.next(), 16)
		default:
			n = l.lexNumber(c, 10)
		}
		return token.Token{Tag: token.Number, Number: n, Line: line, Column: col}, nil

	case c >= '1' && c <= '9':
		n := l.lexNumber(c, 10)
		return token.Token{Tag: token.Number, Number: n, Line: line, Column: col}, nil

	case c == '>':
		var tag token.Tag = token.Tag(c)
		if l.optional('=') {
			tag = token.Ge
		} else if l.optional('>') {
			if l.optional('=') {
				tag = token.ShrAssign
			} else {
				tag = token.Shr
			}
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '<':
		var tag token.Tag = token.Tag(c)
		if l.optional('=') {
			tag = token.Le
		} else if l.optional('<') {
			if l.optional('=') {
				tag = token.ShlAssign
			} else {
				tag = token.Shl
			}
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '+':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.AddAssign
		} else if l.optional('+') {
			tag = token.Inc
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '-':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.SubAssign
		} else if l.optional('-') {
			tag = token.Dec
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '*':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.MulAssign
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '/':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.DivAssign
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '&':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.AndAssign
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '|':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.OrAssign
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '=':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.Eq
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '!':
		tag := token.Tag(c)
		if l.optional('=') {
			tag = token.Ne
		}
		return token.Token{Tag: tag, Line: line, Column: col}, nil

	case c == '{' || c == '}' || c == ',' || c == ':' || c == '[' || c == ']' || c == '(' || c == ')' || c == ';':
		return token.Token{Tag: token.Tag(c), Line: line, Column: col}, nil

	default:
		if !isAlpha(c) && c != '_' {
			return token.Token{}, l.errorf("invalid character '%c'.", rune(c))
		}
		name := l.lexWord(c)
		if name == "asm" {
			if err := l.lexAsm(); err != nil {
				return token.Token{}, err
			}
			return l.next0()
		}
		if tag := token.FromStr(name); tag != token.EOF {
			return token.Token{Tag: tag, Line: line, Column: col}, nil
		}
		if t, ok := types.FromStr(name); ok {
			return token.Token{Tag: token.Type, TypeVal: t, Line: line, Column: col}, nil
		}
		return token.Token{Tag: token.Name, Name: name, Line: line, Column: col}, nil
	}
}

// lexAsm consumes `{ ... }` following the `asm` keyword, copying the body
// verbatim into l.pending, where it waits to be attached to whatever real
// token Next returns next. A missing `{` is an error; an immediately-empty
// body (`asm {}`) is legal.
func (l *Lexer) lexAsm() error {
	c := l.skipWS()
	if c != '{' {
		return l.errorf("empty asm directive")
	}
	l.optional('\n')
	for {
		c := l.next()
		if c == eof {
			return l.errorf("unterminated asm directive")
		}
		if c == '}' {
			return nil
		}
		l.pending.WriteRune(rune(c))
	}
}

// All lexes the entire input into a token slice, ending with (and including)
// an EOF token.
func All(r io.Reader, file string) ([]token.Token, error) {
	l := New(r, file)
	var toks []token.Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Tag == token.EOF {
			return toks, nil
		}
	}
}
