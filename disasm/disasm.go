// Package disasm implements the stack-protection disassembly subcore (C2):
// pattern recognition on x86/x86-64 instruction streams to confirm a GS
// stack-cookie prologue/epilogue pair, or a GCC/Clang stack-clash probing
// loop, the way the original Rust `disassembly.rs` does with iced_x86.
//
// Go's standard toolchain has no x86 decoder, so this package decodes with
// golang.org/x/arch/x86/x86asm, the same package objdump and other Go
// binary-analysis tools use.
package disasm

import (
	"golang.org/x/arch/x86/x86asm"
)

// Bitness selects the decode mode: 32-bit or 64-bit instruction encoding.
type Bitness int

const (
	B32 Bitness = 32
	B64 Bitness = 64
)

func (b Bitness) mode() int {
	if b == B64 {
		return 64
	}
	return 32
}

// window is the 3-slot sliding FIFO the original subcore uses for both
// recognizers.
type window struct {
	slots [3]x86asm.Inst
	addrs [3]uint64
	n     int
}

func (w *window) push(inst x86asm.Inst, addr uint64) {
	w.slots[0], w.slots[1], w.slots[2] = w.slots[1], w.slots[2], inst
	w.addrs[0], w.addrs[1], w.addrs[2] = w.addrs[1], w.addrs[2], addr
	if w.n < 3 {
		w.n++
	}
}

func (w *window) full() bool { return w.n == 3 }

func isAXReg(r x86asm.Reg, b Bitness) bool {
	if b == B64 {
		return r == x86asm.RAX
	}
	return r == x86asm.EAX
}

func isCXReg(r x86asm.Reg, b Bitness) bool {
	if b == B64 {
		return r == x86asm.RCX
	}
	return r == x86asm.ECX
}

func isSPorBPReg(r x86asm.Reg, b Bitness) bool {
	if b == B64 {
		return r == x86asm.RSP || r == x86asm.RBP
	}
	return r == x86asm.ESP || r == x86asm.EBP
}

func isStackPointerReg(r x86asm.Reg, b Bitness) bool {
	if b == B64 {
		return r == x86asm.RSP
	}
	return r == x86asm.ESP
}

// memDisplacement resolves the effective displacement of a memory operand,
// following RIP-relative addressing to an absolute address the same way
// the original computed memory_displacement64/32 (nextIP is the address of
// the instruction immediately following the one being examined).
func memDisplacement(m x86asm.Mem, nextIP uint64) uint64 {
	if m.Base == x86asm.RIP {
		return nextIP + uint64(m.Disp)
	}
	return uint64(m.Disp)
}

func asMem(arg x86asm.Arg) (x86asm.Mem, bool) {
	m, ok := arg.(x86asm.Mem)
	return m, ok
}

func asReg(arg x86asm.Arg) (x86asm.Reg, bool) {
	r, ok := arg.(x86asm.Reg)
	return r, ok
}

// decodeAll decodes every instruction in bytes starting at virtual address
// rip, stopping at the first undecodable byte (end of function body, or a
// bad guess at the body's extent -- both are expected and non-fatal).
func decodeAll(bytes []byte, bitness Bitness, rip uint64) []instr {
	var out []instr
	off := 0
	for off < len(bytes) {
		inst, err := x86asm.Decode(bytes[off:], bitness.mode())
		if err != nil || inst.Len == 0 {
			break
		}
		out = append(out, instr{inst: inst, addr: rip + uint64(off)})
		off += inst.Len
	}
	return out
}

type instr struct {
	inst x86asm.Inst
	addr uint64
}

func (i instr) nextAddr() uint64 { return i.addr + uint64(i.inst.Len) }
