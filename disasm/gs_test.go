package disasm

import "testing"

// gsPrologueEpilogue64 is a hand-assembled x86-64 function body:
//
//	mov  rax, [rbx+0x1000]   ; cookie load, cookie_address=0x1000
//	xor  rax, rsp
//	mov  [rsp+0x20], rax     ; xored_cookie_offset=0x20
//	...
//	mov  rcx, [rsp+0x20]
//	xor  rcx, rsp
//	call <checker>
func gsPrologueEpilogue64() []byte {
	return []byte{
		0x48, 0x8B, 0x83, 0x00, 0x10, 0x00, 0x00, // mov rax, [rbx+0x1000]
		0x48, 0x31, 0xE0, // xor rax, rsp
		0x48, 0x89, 0x44, 0x24, 0x20, // mov [rsp+0x20], rax
		0x48, 0x8B, 0x4C, 0x24, 0x20, // mov rcx, [rsp+0x20]
		0x48, 0x31, 0xE1, // xor rcx, rsp
		0xE8, 0x00, 0x00, 0x00, 0x00, // call rel32
	}
}

func TestHasGSCookieDetectsPrologueEpiloguePair(t *testing.T) {
	code := gsPrologueEpilogue64()
	if !HasGSCookie(code, B64, 0x400000, 0x1000) {
		t.Fatal("expected GS cookie prologue/epilogue pair to be detected")
	}
}

func TestHasGSCookieAbsentWithoutEpilogue(t *testing.T) {
	code := gsPrologueEpilogue64()[:15] // prologue only, no epilogue
	if HasGSCookie(code, B64, 0x400000, 0x1000) {
		t.Fatal("expected no GS cookie match without an epilogue")
	}
}

func TestHasGSCookieAbsentWrongCookieAddress(t *testing.T) {
	code := gsPrologueEpilogue64()
	if HasGSCookie(code, B64, 0x400000, 0xDEAD) {
		t.Fatal("expected no match when cookie address does not line up")
	}
}

func TestHasGSCookieEmptyCode(t *testing.T) {
	if HasGSCookie(nil, B64, 0, 0) {
		t.Fatal("expected no match on empty input")
	}
}
