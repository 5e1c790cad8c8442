package disasm

import "testing"

func TestHasStackClashProtectionNoMatchOnUnrelatedCode(t *testing.T) {
	// push rbp; mov rbp, rsp; pop rbp; ret -- an ordinary prologue/epilogue
	// with no probing loop at all.
	code := []byte{0x55, 0x48, 0x89, 0xE5, 0x5D, 0xC3}
	if HasStackClashProtection(code, B64, 0x400000) {
		t.Fatal("expected no stack-clash-protection match on unrelated code")
	}
}

func TestHasStackClashProtectionEmptyCode(t *testing.T) {
	if HasStackClashProtection(nil, B64, 0) {
		t.Fatal("expected no match on empty input")
	}
}
