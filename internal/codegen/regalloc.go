package codegen

import "github.com/gmofishsauce/tc/internal/types"

const regCount = 8

// reg64/32/16/8 are the eight general-purpose registers the allocator draws
// from, indexed identically across widths. Two are callee-saved (rbx) and
// caller-saved-by-convention-only (rax, used as the return-value slot by
// cg_call/cg_ret); the other six are fully scratch.
var reg64 = [regCount]string{"r10", "r11", "r12", "r13", "r14", "r15", "rax", "rbx"}
var reg32 = [regCount]string{"r10d", "r11d", "r12d", "r13d", "r14d", "r15d", "eax", "ebx"}
var reg16 = [regCount]string{"r10w", "r11w", "r12w", "r13w", "r14w", "r15w", "ax", "bx"}
var reg8 = [regCount]string{"r10b", "r11b", "r12b", "r13b", "r14b", "r15b", "al", "bl"}

const argRegCount = 6

var argReg64 = [argRegCount]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var argReg32 = [argRegCount]string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}

// RegFile is the fixed eight-register allocator: a use-count per register,
// allocation by smallest count with earliest-index tiebreak, and a
// push-on-reuse/pop-on-free spill discipline so a register already holding a
// live value is never clobbered, only shadowed on the stack.
type RegFile struct {
	used [regCount]int
	g    *Gen // for emitting push/pop
}

func newRegFile(g *Gen) *RegFile {
	return &RegFile{g: g}
}

// Alloc picks the least-used register (ties go to the lowest index) and
// returns it. If the register already held a value, that value is pushed to
// the stack first so it survives being overwritten.
func (rf *RegFile) Alloc() int {
	r := 0
	least := 1 << 30
	for i := 0; i < regCount; i++ {
		if rf.used[i] < least {
			least = rf.used[i]
			r = i
		}
	}
	rf.used[r]++
	if rf.used[r] > 1 {
		rf.g.emit("\tpush\t%s", reg64[r])
	}
	return r
}

// Free releases r. If another value for r is still pending underneath (use
// count above zero after decrementing), it is popped back off the stack.
func (rf *RegFile) Free(r int) {
	if rf.used[r] == 0 {
		return
	}
	rf.used[r]--
	if rf.used[r] > 0 {
		rf.g.emit("\tpop\t%s", reg64[r])
	}
}

// FreeAll unwinds every register's pending spill stack and zeroes its use
// count. Called unconditionally after every statement.
func (rf *RegFile) FreeAll() {
	for i := 0; i < regCount; i++ {
		for rf.used[i] > 1 {
			rf.g.emit("\tpop\t%s", reg64[i])
			rf.used[i]--
		}
		rf.used[i] = 0
	}
}

// PushUsed saves every currently-live register across a call, ascending by
// index.
func (rf *RegFile) PushUsed() {
	for i := 0; i < regCount; i++ {
		if rf.used[i] > 0 {
			rf.g.emit("\tpush\t%s", reg64[i])
		}
	}
}

// PopUsed restores every currently-live register after a call, descending by
// index to unwind PushUsed's pushes in order.
func (rf *RegFile) PopUsed() {
	for i := regCount - 1; i >= 0; i-- {
		if rf.used[i] > 0 {
			rf.g.emit("\tpop\t%s", reg64[i])
		}
	}
}

// loadInstr picks the mov/movsx/movzx mnemonic for loading a value of type t:
// a full qword always plain-movs, narrower widths sign- or zero-extend
// depending on t's signedness.
func loadInstr(t types.Type) string {
	if types.Size(t) == 8 {
		return "mov"
	}
	if types.Signed(t) {
		return "movsx"
	}
	return "movzx"
}

// sizeWord is the NASM size-override keyword for t's width.
func sizeWord(t types.Type) string {
	switch types.Size(t) {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	default:
		return "qword"
	}
}

// regName returns r's name at the width t stores as (its natural size).
func regName(r int, t types.Type) string {
	switch types.Size(t) {
	case 1:
		return reg8[r]
	case 2:
		return reg16[r]
	case 4:
		return reg32[r]
	default:
		return reg64[r]
	}
}

// regLoadName returns r's name at the width a load into it should target.
// Only an exact unsigned non-pointer u32 gets a 32-bit destination (movzx
// zeroes the upper bits for free); every other width, including signed s32,
// loads into the full 64-bit register (movsx sign-extends straight into it).
// This asymmetry is load-bearing, not an oversight: reproduce it exactly.
func regLoadName(r int, t types.Type) string {
	if t == types.U32 {
		return reg32[r]
	}
	return reg64[r]
}
