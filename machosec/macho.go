package machosec

import (
	"bytes"
	"debug/macho"
	"strings"

	"github.com/trailofbits/checksec-anywhere/shared"
)

const (
	mhAllowStackExecution = 0x00020000
	mhPIE                 = 0x00200000
	mhNoHeapExecution     = 0x01000000
)

const (
	lcSegment         = 0x1
	lcSegment64       = 0x19
	lcRpath           = 0x1c | 0x80000000
	lcCodeSignature   = 0x1d
	lcEncryptionInfo  = 0x21
	lcEncryptionInfo64 = 0x2c
)

// Analyze parses raw, non-fat Mach-O bytes and produces the full
// mitigation report (spec.md §4.4).
func Analyze(raw []byte) (Result, error) {
	f, err := macho.NewFile(bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	bitness := 32
	if f.Magic == macho.Magic64 {
		bitness = 64
	}

	names, symbolCount := collectSymbolNames(f)

	res := Result{
		Arc:          hasAny(names, "_objc_release", "_objc_alloc"),
		Architecture: architectureName(f.Cpu, f.SubCpu),
		Canary:       hasAny(names, "___stack_chk_fail", "___stack_chk_guard"),
		Fortify:      hasSuffix(names, "_chk"),
		Fortified:    countSuffix(names, "_chk"),
		NxHeap:       f.Flags&mhNoHeapExecution != 0,
		NxStack:      f.Flags&mhAllowStackExecution == 0,
		PIE:          f.Flags&mhPIE != 0,
		Bitness:      bitness,
		SymbolCount:  uint64(symbolCount),
		Asan:         names["___asan_init"],
	}

	rpaths := make([]string, 0)
	for _, l := range f.Loads {
		raw := l.Raw()
		if len(raw) < 8 {
			continue
		}
		cmd := f.ByteOrder.Uint32(raw[0:4])
		switch cmd {
		case lcCodeSignature:
			if len(raw) >= 16 && f.ByteOrder.Uint32(raw[12:16]) > 0 {
				res.CodeSignature = true
			}
		case lcEncryptionInfo, lcEncryptionInfo64:
			if len(raw) >= 20 && f.ByteOrder.Uint32(raw[16:20]) != 0 {
				res.Encrypted = true
			}
		case lcRpath:
			if len(raw) >= 12 {
				pathOff := f.ByteOrder.Uint32(raw[8:12])
				if int(pathOff) < len(raw) {
					rpaths = append(rpaths, cString(raw[pathOff:]))
				}
			}
		case lcSegment, lcSegment64:
			if len(raw) >= 24 {
				name := cString(raw[8:24])
				if strings.EqualFold(name, "__restrict") {
					res.Restrict = true
				}
			}
		}
	}
	res.Rpath = shared.FromPaths(rpaths)

	return res, nil
}

func collectSymbolNames(f *macho.File) (map[string]bool, int) {
	names := map[string]bool{}
	if f.Symtab == nil {
		return names, 0
	}
	for _, s := range f.Symtab.Syms {
		names[s.Name] = true
	}
	return names, len(f.Symtab.Syms)
}

func hasAny(names map[string]bool, candidates ...string) bool {
	for _, c := range candidates {
		if names[c] {
			return true
		}
	}
	return false
}

func hasSuffix(names map[string]bool, suffix string) bool {
	for n := range names {
		if strings.HasSuffix(n, suffix) {
			return true
		}
	}
	return false
}

func countSuffix(names map[string]bool, suffix string) uint32 {
	var n uint32
	for name := range names {
		if strings.HasSuffix(name, suffix) {
			n++
		}
	}
	return n
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// architectureName maps a Mach-O cputype/cpusubtype pair to the name
// Apple's toolchain uses, the way goblin's get_arch_name_from_types does
// for the original implementation this is grounded on.
func architectureName(cpu macho.Cpu, subtype uint32) string {
	const cpuSubtypeMask = 0x00ffffff
	sub := subtype & cpuSubtypeMask

	switch cpu {
	case macho.Cpu386:
		return "i386"
	case macho.CpuAmd64:
		if sub == 8 { // CPU_SUBTYPE_X86_64_H
			return "x86_64h"
		}
		return "x86_64"
	case macho.CpuArm:
		return "arm"
	case macho.CpuArm64:
		if sub == 2 { // CPU_SUBTYPE_ARM64E
			return "arm64e"
		}
		return "arm64"
	case macho.CpuPpc:
		return "ppc"
	case macho.CpuPpc64:
		return "ppc64"
	default:
		return "Unknown"
	}
}
