package disasm

import "golang.org/x/arch/x86/x86asm"

type scpStep int

const (
	scpInit scpStep = iota
	scpStartCmp
	scpStartJump
	scpCheckSubFirst
	scpCheckOr
	scpCheckSubLast
	scpCheckXor
	scpEndCmp
)

// HasStackClashProtection reports whether the function body starting at rip
// contains one of the four documented GCC/Clang stack-clash probing loops
// (spec.md §4.6). The immediate probe size is always exactly 4096 bytes.
func HasStackClashProtection(code []byte, bitness Bitness, rip uint64) bool {
	instrs := decodeAll(code, bitness, rip)

	step := scpInit
	var startAddr, checkAddr, jumpAddr uint64

	reset := func() {
		step = scpInit
		startAddr, checkAddr, jumpAddr = 0, 0, 0
	}

	for _, cur := range instrs {
		in := cur.inst
		op := in.Op
		nextIP := cur.nextAddr()

		switch {
		case step == scpInit && op == x86asm.CMP && cmpTouchesStackPointer(in, bitness):
			step = scpStartCmp
			startAddr = cur.addr
			continue

		case step == scpStartCmp && (op == x86asm.JE || op == x86asm.JGE):
			step = scpStartJump
			jumpAddr = jumpTarget(in, nextIP)
			continue

		case step == scpStartJump && op == x86asm.SUB && op0IsStackPointer(in, bitness) && imm(in, 1) == 4096:
			step = scpCheckSubFirst
			if checkAddr == 0 {
				checkAddr = cur.addr
			}
			continue

		case step == scpCheckSubFirst && op == x86asm.OR && memBaseIsStackPointer(in, bitness) && imm(in, 1) == 0:
			step = scpCheckOr
			if checkAddr == 0 {
				checkAddr = cur.addr
			}
			continue

		case step == scpStartJump && op == x86asm.XOR && memBaseIsStackPointer(in, bitness) && imm(in, 1) == 0:
			step = scpCheckXor
			if checkAddr == 0 {
				checkAddr = cur.addr
			}
			continue

		case step == scpCheckXor && op == x86asm.SUB && op0IsStackPointer(in, bitness) && imm(in, 1) == 4096:
			step = scpCheckSubLast
			continue

		case (step == scpCheckOr || step == scpCheckSubLast) && op == x86asm.JMP:
			if memDisp := jumpTarget(in, nextIP); memDisp == startAddr && jumpAddr == nextIP {
				return true
			}

		case (step == scpCheckOr || step == scpCheckSubLast) && op == x86asm.CMP && cmpTouchesStackPointer(in, bitness):
			step = scpEndCmp
			continue

		case step == scpEndCmp && (op == x86asm.JNE || op == x86asm.JL):
			if memDisp := jumpTarget(in, nextIP); memDisp == checkAddr && jumpAddr == nextIP {
				return true
			}
		}

		reset()
	}
	return false
}

func cmpTouchesStackPointer(in x86asm.Inst, b Bitness) bool {
	r0, ok0 := asReg(in.Args[0])
	r1, ok1 := asReg(in.Args[1])
	return (ok0 && isStackPointerReg(r0, b)) || (ok1 && isStackPointerReg(r1, b))
}

func op0IsStackPointer(in x86asm.Inst, b Bitness) bool {
	r0, ok := asReg(in.Args[0])
	return ok && isStackPointerReg(r0, b)
}

func memBaseIsStackPointer(in x86asm.Inst, b Bitness) bool {
	m, ok := asMem(in.Args[0])
	return ok && isStackPointerReg(m.Base, b)
}

func imm(in x86asm.Inst, idx int) int64 {
	v, ok := in.Args[idx].(x86asm.Imm)
	if !ok {
		return -1
	}
	return int64(v)
}

// jumpTarget resolves a branch instruction's relative-jump target address.
func jumpTarget(in x86asm.Inst, nextIP uint64) uint64 {
	if rel, ok := in.Args[0].(x86asm.Rel); ok {
		return nextIP + uint64(int64(rel))
	}
	return 0
}
