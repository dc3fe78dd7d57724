package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gmofishsauce/tc/internal/types"
)

func TestCastMaskPreservesOneBitBug(t *testing.T) {
	cases := []struct {
		typ  types.Type
		want int32
	}{
		{types.U8, -257},   // ~(1<<8)
		{types.U16, -65537}, // ~(1<<16)
		{types.U32, -2},    // shift count wraps 32 -> 0, ~(1<<0) == -2
	}
	for _, c := range cases {
		var out strings.Builder
		g := New(&out)
		g.cast(0, c.typ)
		g.Flush()
		want := fmt.Sprintf("\tand %s, %d\n", reg64[0], c.want)
		if out.String() != want {
			t.Errorf("cast to %s emitted %q, want %q", types.String(c.typ), out.String(), want)
		}
	}
}

func TestRegLoadNameOnlyPlainU32Gets32Bit(t *testing.T) {
	if got := regLoadName(0, types.U32); got != reg32[0] {
		t.Errorf("regLoadName(u32) = %q, want 32-bit register name %q", got, reg32[0])
	}
	if got := regLoadName(0, types.S32); got != reg64[0] {
		t.Errorf("regLoadName(s32) = %q, want full 64-bit register name %q (signed s32 is not plain TYPE_32)", got, reg64[0])
	}
	if got := regLoadName(0, types.U8); got != reg64[0] {
		t.Errorf("regLoadName(u8) = %q, want 64-bit register name %q", got, reg64[0])
	}
}

func TestRegFileAllocPrefersLeastUsed(t *testing.T) {
	g := New(nil)
	r1 := g.regs.Alloc()
	r2 := g.regs.Alloc()
	if r1 == r2 {
		t.Fatal("two Allocs in a row should not pick the same register while others are free")
	}
	if r1 != 0 || r2 != 1 {
		t.Errorf("got r1=%d r2=%d, want lowest-index-first allocation (0, 1)", r1, r2)
	}
}

func TestRegFileFreeAllUnwindsSpillStack(t *testing.T) {
	g := New(nil)
	for i := 0; i < regCount; i++ {
		g.regs.Alloc()
	}
	// One more Alloc forces reuse (and a push) of register 0.
	g.regs.Alloc()
	g.regs.FreeAll()
	for i, u := range g.regs.used {
		if u != 0 {
			t.Errorf("used[%d] = %d after FreeAll, want 0", i, u)
		}
	}
}

func TestLoadInstrPicksSignAwareMnemonic(t *testing.T) {
	if got := loadInstr(types.U64); got != "mov" {
		t.Errorf("loadInstr(u64) = %q, want mov", got)
	}
	if got := loadInstr(types.S8); got != "movsx" {
		t.Errorf("loadInstr(s8) = %q, want movsx", got)
	}
	if got := loadInstr(types.U8); got != "movzx" {
		t.Errorf("loadInstr(u8) = %q, want movzx", got)
	}
}
