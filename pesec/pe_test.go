package pesec

import (
	"debug/pe"
	"testing"
)

func TestClassifyASLR(t *testing.T) {
	cases := []struct {
		name string
		bits uint16
		want ASLR
	}{
		{"no dynamic base", 0, ASLRNone},
		{"dynamic base only", dllCharDynamicBase, ASLRDynamicBase},
		{"dynamic base + high entropy", dllCharDynamicBase | dllCharHighEntropyVa, ASLRHighEntropyVa},
		{"high entropy without dynamic base", dllCharHighEntropyVa, ASLRNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := classifyASLR(c.bits); got != c.want {
				t.Errorf("classifyASLR(%#x) = %s, want %s", c.bits, got, c.want)
			}
		})
	}
}

func TestHasNonZeroDir(t *testing.T) {
	dirs := make([]pe.DataDirectory, 16)
	dirs[dirCOMDescriptor] = pe.DataDirectory{VirtualAddress: 0x2000, Size: 72}
	if !hasNonZeroDir(dirs, dirCOMDescriptor) {
		t.Fatal("expected non-zero COM descriptor directory to be detected")
	}
	if hasNonZeroDir(dirs, dirDebug) {
		t.Fatal("did not expect zero-size debug directory to be detected")
	}
	if hasNonZeroDir(nil, dirCOMDescriptor) {
		t.Fatal("expected out-of-range index to be false")
	}
}

func TestHasAuthenticode(t *testing.T) {
	dirs := make([]pe.DataDirectory, 16)
	dirs[dirSecurity] = pe.DataDirectory{VirtualAddress: 0x4000, Size: 512}
	if !hasAuthenticode(dirs) {
		t.Fatal("expected non-empty security directory to report Authenticode")
	}
	dirs[dirSecurity] = pe.DataDirectory{}
	if hasAuthenticode(dirs) {
		t.Fatal("did not expect empty security directory to report Authenticode")
	}
}
