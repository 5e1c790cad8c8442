package elfsec

import (
	"debug/elf"
	"testing"
)

func TestArchitectureName(t *testing.T) {
	cases := map[elf.Machine]string{
		elf.EM_X86_64:  "X86_64",
		elf.EM_386:     "X86",
		elf.EM_AARCH64: "AArch64",
		elf.EM_ARM:     "ARM",
	}
	for machine, want := range cases {
		if got := architectureName(machine); got != want {
			t.Errorf("architectureName(%v) = %q, want %q", machine, got, want)
		}
	}
}

func TestHasLibcDep(t *testing.T) {
	if !hasLibcDep([]string{"libc.so.6"}) {
		t.Fatal("expected libc.so.6 to be recognized as libc")
	}
	if hasLibcDep([]string{"libm.so.6", "libpthread.so.0"}) {
		t.Fatal("did not expect non-libc deps to be recognized as libc")
	}
}

func TestHasCFI(t *testing.T) {
	if !hasCFI(names("__cfi_slowpath")) {
		t.Fatal("expected __cfi_slowpath to signal CFI")
	}
	if !hasCFI(names("__cfi_check_fail")) {
		t.Fatal("expected __cfi_check* prefix to signal CFI")
	}
	if hasCFI(names("memcpy")) {
		t.Fatal("did not expect unrelated symbol to signal CFI")
	}
}

func TestHasSafeStack(t *testing.T) {
	if !hasSafeStack(names("__safestack_init")) {
		t.Fatal("expected __safestack_init to signal SafeStack")
	}
	if !hasSafeStack(names("__safestack_unsafe_stack_ptr")) {
		t.Fatal("expected __safestack_ prefix to signal SafeStack")
	}
}

func TestUnion(t *testing.T) {
	got := union(names("a", "b"), names("b", "c"))
	want := names("a", "b", "c")
	if len(got) != len(want) {
		t.Fatalf("union size = %d, want %d", len(got), len(want))
	}
	for k := range want {
		if !got[k] {
			t.Errorf("union missing key %q", k)
		}
	}
}
