package machosec

import (
	"debug/macho"
	"testing"
)

func TestArchitectureName(t *testing.T) {
	cases := []struct {
		cpu     macho.Cpu
		subtype uint32
		want    string
	}{
		{macho.CpuAmd64, 3, "x86_64"},
		{macho.CpuAmd64, 8, "x86_64h"},
		{macho.CpuArm64, 0, "arm64"},
		{macho.CpuArm64, 2, "arm64e"},
		{macho.Cpu386, 3, "i386"},
		{macho.CpuArm, 0, "arm"},
	}
	for _, c := range cases {
		if got := architectureName(c.cpu, c.subtype); got != c.want {
			t.Errorf("architectureName(%v, %d) = %q, want %q", c.cpu, c.subtype, got, c.want)
		}
	}
}

func TestCString(t *testing.T) {
	if got := cString([]byte("__restrict\x00\x00\x00")); got != "__restrict" {
		t.Errorf("cString(...) = %q, want %q", got, "__restrict")
	}
}

func TestHasAnyAndHasSuffix(t *testing.T) {
	n := map[string]bool{"_objc_release": true, "___stack_chk_fail": true, "__strcpy_chk": true}
	if !hasAny(n, "_objc_alloc", "_objc_release") {
		t.Fatal("expected _objc_release to match")
	}
	if !hasSuffix(n, "_chk") {
		t.Fatal("expected a _chk-suffixed symbol to be found")
	}
	if countSuffix(n, "_chk") != 1 {
		t.Fatalf("countSuffix = %d, want 1", countSuffix(n, "_chk"))
	}
}
