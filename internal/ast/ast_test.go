package ast

import (
	"testing"

	"github.com/gmofishsauce/tc/internal/types"
)

func TestNewNumberExprClassifiesType(t *testing.T) {
	n := NewNumberExpr(NewPos(1, 1), 300)
	if n.Type() != types.S16 {
		t.Errorf("NewNumberExpr(300).Type() = %s, want s16", types.String(n.Type()))
	}
}

func TestSetChildLinksParent(t *testing.T) {
	child := NewNumberExpr(NewPos(1, 1), 1)
	parent := &BinaryExpr{Op: Add}
	SetChild(child, parent)
	if child.Parent() != parent {
		t.Error("SetChild should set child's Parent() to parent")
	}
}

func TestStmtAsmDefaultsEmpty(t *testing.T) {
	s := &NoopStmt{}
	if s.Asm() != "" {
		t.Errorf("Asm() on a fresh statement = %q, want empty", s.Asm())
	}
	s.SetAsm("nop")
	if s.Asm() != "nop" {
		t.Errorf("Asm() after SetAsm = %q, want %q", s.Asm(), "nop")
	}
}

func TestCompoundStmtStmtNodeSatisfiesStmt(t *testing.T) {
	var s Stmt = &CompoundStmt{}
	if s.Pos() != (Pos{}) {
		t.Errorf("zero-value CompoundStmt Pos() = %+v, want zero Pos", s.Pos())
	}
}
