package disasm

import "golang.org/x/arch/x86/x86asm"

// HasGSCookie reports whether the function body starting at rip contains at
// least one complete GS stack-cookie prologue/epilogue pair anchored at
// cookieAddress: a MOV/XOR/MOV prologue that loads, xors, and stores the
// cookie, followed later by a MOV/XOR/CALL epilogue that reloads the xored
// value, re-xors it, and calls the checker routine. See spec.md §4.6.
func HasGSCookie(code []byte, bitness Bitness, rip, cookieAddress uint64) bool {
	instrs := decodeAll(code, bitness, rip)
	if len(instrs) < 3 {
		return false
	}

	var w window
	var xoredOffset uint64
	invocations := 0

	for _, ins := range instrs {
		w.push(ins.inst, ins.addr)
		if !w.full() {
			continue
		}
		if xoredOffset == 0 {
			if off := prologueOffset(&w, bitness, cookieAddress); off != 0 {
				xoredOffset = off
			}
		}
		if xoredOffset != 0 && epilogueMatches(&w, bitness, xoredOffset) {
			invocations++
			xoredOffset = 0
		}
	}
	return invocations > 0
}

func prologueOffset(w *window, b Bitness, cookieAddress uint64) uint64 {
	i0, i1, i2 := w.slots[0], w.slots[1], w.slots[2]

	m0, ok := asMem(i0.Args[1])
	r0, ok2 := asReg(i0.Args[0])
	if i0.Op != x86asm.MOV || !ok || !ok2 || !isAXReg(r0, b) {
		return 0
	}
	if memDisplacement(m0, w.addrs[0]+uint64(i0.Len)) != cookieAddress {
		return 0
	}

	r1a, ok := asReg(i1.Args[0])
	r1b, ok2 := asReg(i1.Args[1])
	if i1.Op != x86asm.XOR || !ok || !ok2 || !isAXReg(r1a, b) || !isSPorBPReg(r1b, b) {
		return 0
	}

	m2, ok := asMem(i2.Args[0])
	r2, ok2 := asReg(i2.Args[1])
	if i2.Op != x86asm.MOV || !ok || !ok2 || !isAXReg(r2, b) || !isSPorBPReg(m2.Base, b) {
		return 0
	}
	return memDisplacement(m2, w.addrs[2]+uint64(i2.Len))
}

func epilogueMatches(w *window, b Bitness, xoredOffset uint64) bool {
	i0, i1, i2 := w.slots[0], w.slots[1], w.slots[2]

	m0, ok := asMem(i0.Args[1])
	r0, ok2 := asReg(i0.Args[0])
	if i0.Op != x86asm.MOV || !ok || !ok2 || !isCXReg(r0, b) {
		return false
	}
	if memDisplacement(m0, w.addrs[0]+uint64(i0.Len)) != xoredOffset {
		return false
	}

	r1a, ok := asReg(i1.Args[0])
	r1b, ok2 := asReg(i1.Args[1])
	if i1.Op != x86asm.XOR || !ok || !ok2 || !isCXReg(r1a, b) || !isSPorBPReg(r1b, b) {
		return false
	}

	return i2.Op == x86asm.CALL
}
