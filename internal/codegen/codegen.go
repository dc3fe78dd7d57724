// Package codegen walks a typed ast.Lib and emits textual NASM assembly
// (Intel syntax, System V AMD64 calling convention), matching the original's
// direct one-pass tree walk with no intermediate IR.
package codegen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gmofishsauce/tc/internal/ast"
	"github.com/gmofishsauce/tc/internal/diag"
	"github.com/gmofishsauce/tc/internal/symtab"
	"github.com/gmofishsauce/tc/internal/types"
)

// Gen holds the single output stream, the register file, and the running
// label counter for one translation unit.
type Gen struct {
	out        *bufio.Writer
	regs       *RegFile
	labelCount int
}

// New creates a Gen writing to w.
func New(w io.Writer) *Gen {
	g := &Gen{out: bufio.NewWriter(w)}
	g.regs = newRegFile(g)
	return g
}

func (g *Gen) emit(format string, args ...any) {
	fmt.Fprintf(g.out, format+"\n", args...)
}

// Flush flushes buffered output to the underlying writer.
func (g *Gen) Flush() error { return g.out.Flush() }

func (g *Gen) newLabel() int {
	n := g.labelCount
	g.labelCount++
	return n
}

func (g *Gen) declLabel(label int) { g.emit("L%d:", label) }

// emitAsm writes raw asm text verbatim, in one piece, if any is present.
func (g *Gen) emitAsm(asm string) {
	if asm == "" {
		return
	}
	fmt.Fprint(g.out, asm)
}

func (g *Gen) declGlobal(s *symtab.Symbol) error {
	switch types.Size(s.Type) {
	case 1:
		g.emit("%s db 0", s.Name)
	case 2:
		g.emit("%s dw 0", s.Name)
	case 4:
		g.emit("%s dd 0", s.Name)
	case 8:
		g.emit("%s dq 0", s.Name)
	default:
		return diag.CGError("cg_decl_global")
	}
	return nil
}

func (g *Gen) declString(s *symtab.Symbol) {
	line := fmt.Sprintf("LC%d: db ", s.Offset)
	for i := 0; i < len(s.Name); i++ {
		line += fmt.Sprintf("%d, ", s.Name[i])
	}
	line += "0"
	g.emit("%s", line)
}

func (g *Gen) jmp(label int) { g.emit("\tjmp L%d", label) }

func (g *Gen) jmpIfFalse(label, r int) {
	g.emit("\ttest %s, %s", reg64[r], reg64[r])
	g.emit("\tjz L%d", label)
}

func (g *Gen) pushArg(i, r int) {
	if i < argRegCount {
		g.emit("\tmov %s, %s", argReg64[i], reg64[r])
	} else {
		g.emit("\tpush %s", reg64[r])
	}
}

func (g *Gen) call(name string) int {
	g.emit("\tcall %s", name)
	g.regs.PopUsed()
	r := g.regs.Alloc()
	g.emit("\tmov %s, rax", reg64[r])
	return r
}

func (g *Gen) ret(r int) {
	val := "0"
	if r >= 0 {
		val = reg64[r]
	}
	g.emit("\tmov rax, %s", val)
	g.emit("\tleave")
	g.emit("\tret")
}

func (g *Gen) loadNumber(n int64) int {
	r := g.regs.Alloc()
	g.emit("\tmov %s, %d", reg64[r], n)
	return r
}

func (g *Gen) loadString(label int) int {
	r := g.regs.Alloc()
	g.emit("\tmov %s, LC%d", reg64[r], label)
	return r
}

func (g *Gen) loadName(name string, scope *symtab.Scope) (int, error) {
	sym := scope.Get(name)
	r := g.regs.Alloc()
	switch sym.Kind {
	case symtab.Local:
		g.emit("\t%s %s, %s [rbp%d]", loadInstr(sym.Type), regLoadName(r, sym.Type), sizeWord(sym.Type), sym.Offset)
	case symtab.Global:
		g.emit("\t%s %s, %s [%s]", loadInstr(sym.Type), regLoadName(r, sym.Type), sizeWord(sym.Type), sym.Name)
	default:
		return 0, diag.CGError("cg_load_name: invalid symbol kind %d.", sym.Kind)
	}
	return r, nil
}

func (g *Gen) loadAddr(r int, t types.Type) int {
	g.emit("\t%s %s, %s [%s]", loadInstr(t), regLoadName(r, t), sizeWord(t), reg64[r])
	return r
}

func (g *Gen) storeName(r int, name string, scope *symtab.Scope) error {
	sym := scope.Get(name)
	switch sym.Kind {
	case symtab.Local:
		g.emit("\tmov [rbp%d], %s", sym.Offset, regName(r, sym.Type))
	case symtab.Global:
		g.emit("\tmov [%s], %s", sym.Name, regName(r, sym.Type))
	default:
		return diag.CGError("cg_store_name: invalid symbol kind %d.", sym.Kind)
	}
	return nil
}

func (g *Gen) storeAddr(rsrc, rdest int, t types.Type) {
	g.emit("\tmov [%s], %s", reg64[rdest], regName(rsrc, t))
}

// cast applies a bitmask AND to r for any t narrower than 8 bytes. The mask is
// computed exactly the way the original computes it in C: a 32-bit 1
// shifted left by 8*size bits, then complemented. This clears only the single
// bit 8*size (mask -257 for size 1, -65537 for size 2) and does not truncate
// to t's width; for size 4 the shift count (32) wraps modulo 32, producing a
// mask of -2 that clears bit 0. Reproduced verbatim: a dword cast is
// observably different from a no-op.
func (g *Gen) cast(r int, t types.Type) int {
	size := types.Size(t)
	if size == 8 {
		return r
	}
	shift := uint(8*size) % 32
	mask := ^(int32(1) << shift)
	g.emit("\tand %s, %d", reg64[r], mask)
	return r
}

func (g *Gen) add(r1, r2 int) int {
	g.emit("\tadd %s, %s", reg64[r1], reg64[r2])
	g.regs.Free(r2)
	return r1
}

func (g *Gen) sub(r1, r2 int) int {
	g.emit("\tsub %s, %s", reg64[r1], reg64[r2])
	g.regs.Free(r2)
	return r1
}

func (g *Gen) mul(r1, r2 int) int {
	g.emit("\timul %s, %s", reg64[r1], reg64[r2])
	g.regs.Free(r2)
	return r1
}

// div preempts the rax slot manually by bumping rax's own use count (index 6)
// instead of going through RegFile.Alloc/Free: idiv always clobbers
// rax/rdx, so any value already resident in rax must be saved and restored
// around the division regardless of whether rax was handed out by the
// allocator for this expression.
func (g *Gen) div(r1, r2 int) int {
	pushedRax := g.regs.used[6] > 0
	g.regs.used[6]++
	if pushedRax {
		g.emit("\tpush rax")
	}
	g.emit("\tmov rax, %s", reg64[r1])
	g.emit("\tcqo")
	g.emit("\tidiv %s", reg64[r2])
	g.emit("\tmov %s, rax", reg64[r1])
	g.regs.used[6]--
	if g.regs.used[6] > 0 {
		g.emit("\tpop rax")
	}
	g.regs.Free(r2)
	return r1
}

func (g *Gen) and(r1, r2 int) int {
	g.emit("\tand %s, %s", reg64[r1], reg64[r2])
	g.regs.Free(r2)
	return r1
}

func (g *Gen) or(r1, r2 int) int {
	g.emit("\tor %s, %s", reg64[r1], reg64[r2])
	g.regs.Free(r2)
	return r1
}

func (g *Gen) shl(r1, r2 int) int {
	g.emit("\tmov cl, %s", reg8[r2])
	g.emit("\tshl %s, cl", reg64[r1])
	g.regs.Free(r2)
	return r1
}

func (g *Gen) shr(r1, r2 int) int {
	g.emit("\tmov cl, %s", reg8[r2])
	g.emit("\tshr %s, cl", reg64[r1])
	g.regs.Free(r2)
	return r1
}

func (g *Gen) compare(setcc string, r1, r2 int) int {
	g.emit("\tcmp %s, %s", reg64[r1], reg64[r2])
	g.emit("\t%s %s", setcc, reg8[r1])
	g.emit("\tand %s, 1", reg64[r1])
	g.regs.Free(r2)
	return r1
}

// genLvalue reduces a (possibly repeated) dereference chain to a register
// holding an address: it descends through leading Derefs to the underlying
// name, generates that name's value, then walks back up reloading at every
// level except the last, which is left as a bare address for the caller to
// store through.
func (g *Gen) genLvalue(e ast.Expr, scope *symtab.Scope) (int, error) {
	for {
		d, ok := e.(*ast.DerefExpr)
		if !ok {
			break
		}
		e = d.Operand
	}
	r, err := g.genExpr(e, scope)
	if err != nil {
		return 0, err
	}
	for {
		parent := e.Parent()
		pd, ok := parent.(*ast.DerefExpr)
		if !ok {
			break
		}
		if _, ok := pd.Parent().(*ast.DerefExpr); ok {
			r = g.loadAddr(r, e.Type())
		}
		e = parent
	}
	return r, nil
}

// genExpr evaluates e into a fresh register (or -1, which never escapes to a
// caller that reads the result) and returns it.
func (g *Gen) genExpr(e ast.Expr, scope *symtab.Scope) (int, error) {
	switch n := e.(type) {
	case *ast.NumberExpr:
		return g.loadNumber(n.Value), nil

	case *ast.StringExpr:
		return g.loadString(n.Index), nil

	case *ast.NameExpr:
		return g.loadName(n.Name, scope)

	case *ast.CallExpr:
		g.regs.PushUsed()
		for i := len(n.Args) - 1; i >= 0; i-- {
			r, err := g.genExpr(n.Args[i], scope)
			if err != nil {
				return 0, err
			}
			g.pushArg(i, r)
			g.regs.Free(r)
		}
		return g.call(n.Callee.Name), nil

	case *ast.CastExpr:
		r, err := g.genExpr(n.Operand, scope)
		if err != nil {
			return 0, err
		}
		return g.cast(r, n.Type()), nil

	case *ast.DerefExpr:
		r, err := g.genExpr(n.Operand, scope)
		if err != nil {
			return 0, err
		}
		return g.loadAddr(r, n.Type()), nil

	case *ast.BinaryExpr:
		r1, err := g.genExpr(n.Left, scope)
		if err != nil {
			return 0, err
		}
		r2, err := g.genExpr(n.Right, scope)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case ast.Add:
			return g.add(r1, r2), nil
		case ast.Sub:
			return g.sub(r1, r2), nil
		case ast.Mul:
			return g.mul(r1, r2), nil
		case ast.Div:
			return g.div(r1, r2), nil
		case ast.And:
			return g.and(r1, r2), nil
		case ast.Or:
			return g.or(r1, r2), nil
		case ast.Shl:
			return g.shl(r1, r2), nil
		case ast.Shr:
			return g.shr(r1, r2), nil
		case ast.Eq:
			return g.compare("sete", r1, r2), nil
		case ast.Neq:
			return g.compare("setne", r1, r2), nil
		case ast.Lt:
			return g.compare("setl", r1, r2), nil
		case ast.Gt:
			return g.compare("setg", r1, r2), nil
		case ast.Lte:
			return g.compare("setle", r1, r2), nil
		case ast.Gte:
			return g.compare("setge", r1, r2), nil
		default:
			return 0, diag.CGError("unknown binary operator '%s'.", n.Op)
		}

	case *ast.AssignExpr:
		switch lhs := n.LHS.(type) {
		case *ast.NameExpr:
			r, err := g.genExpr(n.RHS, scope)
			if err != nil {
				return 0, err
			}
			if err := g.storeName(r, lhs.Name, scope); err != nil {
				return 0, err
			}
			return -1, nil
		case *ast.DerefExpr:
			rsrc, err := g.genExpr(n.RHS, scope)
			if err != nil {
				return 0, err
			}
			rdest, err := g.genLvalue(lhs.Operand, scope)
			if err != nil {
				return 0, err
			}
			g.storeAddr(rsrc, rdest, types.ClassOnly(lhs.Type()))
			return -1, nil
		default:
			return 0, diag.CGError("can't assign to expr type %T", n.LHS)
		}

	default:
		return 0, diag.CGError("unknown expression type %T.", e)
	}
}

// genStmt generates s, unconditionally unwinding every register's spill
// stack afterward regardless of which branch ran.
func (g *Gen) genStmt(s ast.Stmt, scope *symtab.Scope) error {
	g.emitAsm(s.Asm())
	if err := g.genStmtInner(s, scope); err != nil {
		return err
	}
	g.regs.FreeAll()
	return nil
}

func (g *Gen) genStmtInner(s ast.Stmt, scope *symtab.Scope) error {
	switch n := s.(type) {
	case *ast.CompoundStmt:
		for _, child := range n.Stmts {
			if err := g.genStmt(child, n.Scope); err != nil {
				return err
			}
		}
		g.emitAsm(n.TrailingAsm)
		return nil

	case *ast.IfStmt:
		if n.Else != nil {
			lelse := g.newLabel()
			lend := g.newLabel()
			r, err := g.genExpr(n.Cond, scope)
			if err != nil {
				return err
			}
			g.jmpIfFalse(lelse, r)
			if err := g.genStmt(n.Then, scope); err != nil {
				return err
			}
			g.jmp(lend)
			g.declLabel(lelse)
			if err := g.genStmt(n.Else, scope); err != nil {
				return err
			}
			g.declLabel(lend)
		} else {
			lend := g.newLabel()
			r, err := g.genExpr(n.Cond, scope)
			if err != nil {
				return err
			}
			g.jmpIfFalse(lend, r)
			if err := g.genStmt(n.Then, scope); err != nil {
				return err
			}
			g.declLabel(lend)
		}
		return nil

	case *ast.WhileStmt:
		lstart := g.newLabel()
		lend := g.newLabel()
		g.declLabel(lstart)
		r, err := g.genExpr(n.Cond, scope)
		if err != nil {
			return err
		}
		g.jmpIfFalse(lend, r)
		if err := g.genStmt(n.Body, scope); err != nil {
			return err
		}
		g.jmp(lstart)
		g.declLabel(lend)
		return nil

	case *ast.ReturnStmt:
		if n.Value != nil {
			r, err := g.genExpr(n.Value, scope)
			if err != nil {
				return err
			}
			g.ret(r)
		} else {
			g.ret(-1)
		}
		return nil

	case *ast.ExprStmt:
		_, err := g.genExpr(n.X, scope)
		return err

	case *ast.NoopStmt:
		return nil

	default:
		return diag.CGError("unknown statement type %T.", s)
	}
}

// frameSize computes a function's stack frame size: the most-negative local
// offset found in any compound (brace) statement reachable from s, including
// blocks nested inside if/else and while bodies.
func frameSize(s ast.Stmt) int {
	switch n := s.(type) {
	case *ast.IfStmt:
		if n.Else != nil {
			if e := frameSize(n.Else); e > frameSize(n.Then) {
				return e
			}
		}
		return frameSize(n.Then)
	case *ast.WhileStmt:
		return frameSize(n.Body)
	}
	c, ok := s.(*ast.CompoundStmt)
	if !ok {
		return 0
	}
	offset := -c.Scope.GetLastOffset()
	for _, child := range c.Stmts {
		if n := frameSize(child); n > offset {
			offset = n
		}
	}
	return offset
}

func (g *Gen) funcPre(f *ast.Func) {
	g.emit("global %s", f.Name)
	g.emit("%s:", f.Name)
	g.emit("\tpush rbp")
	g.emit("\tmov rbp, rsp")

	if size := frameSize(f.Body); size > 0 {
		g.emit("\tsub rsp, %d", size)
	}

	params := f.Scope.Symbols()
	for i := 0; i < len(params) && i < argRegCount; i++ {
		s := params[i]
		switch types.Size(s.Type) {
		case 1:
			g.emit("\tmov eax, %s", argReg32[i])
			g.emit("\tmov [rbp%d], al", s.Offset)
		case 2:
			g.emit("\tmov eax, %s", argReg32[i])
			g.emit("\tmov [rbp%d], ax", s.Offset)
		case 4:
			g.emit("\tmov [rbp%d], %s", s.Offset, argReg32[i])
		case 8:
			g.emit("\tmov [rbp%d], %s", s.Offset, argReg64[i])
		}
	}
}

func (g *Gen) funcPost(f *ast.Func) {
	if f.Type == types.U0 {
		g.ret(-1)
	}
}

func (g *Gen) genFunc(f *ast.Func) error {
	g.funcPre(f)
	if err := g.genStmt(f.Body, f.Scope); err != nil {
		return err
	}
	g.funcPost(f)
	return nil
}

func (g *Gen) libPost(lib *ast.Lib) error {
	for _, s := range lib.Root.Symbols() {
		switch s.Kind {
		case symtab.Global:
			if err := g.declGlobal(s); err != nil {
				return err
			}
		case symtab.String:
			g.declString(s)
		}
	}
	return nil
}

// Generate emits NASM assembly for lib to w, functions in reverse
// declaration order (matching the original's emission order) followed by
// the data section of globals and string constants.
func Generate(lib *ast.Lib, w io.Writer) error {
	g := New(w)
	g.emitAsm(lib.Preamble)
	for i := len(lib.Funcs) - 1; i >= 0; i-- {
		if err := g.genFunc(lib.Funcs[i]); err != nil {
			return err
		}
	}
	if err := g.libPost(lib); err != nil {
		return err
	}
	return g.Flush()
}
