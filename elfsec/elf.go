package elfsec

import (
	"bytes"
	"debug/elf"
	"io"
	"strings"

	"github.com/trailofbits/checksec-anywhere/disasm"
	"github.com/trailofbits/checksec-anywhere/internal/log"
	"github.com/trailofbits/checksec-anywhere/shared"
)

// Analyze parses raw ELF bytes and produces the full mitigation report
// (spec.md §4.2). Recoverable sub-parse failures (a malformed dynamic
// entry, an unreadable segment) downgrade the affected field to its safer
// default and are logged, per spec.md §4.5; only a fatal parse failure of
// the ELF container itself is returned as an error.
func Analyze(raw []byte) (Result, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	bitness := 64
	if f.Class == elf.ELFCLASS32 {
		bitness = 32
	}

	symbolNames, symbolCount := collectSymbolNames(f)
	importedNames := collectImportedNames(f)
	allNames := union(symbolNames, importedNames)

	dynlibs, _ := f.DynString(elf.DT_NEEDED)
	rpathStrs, _ := f.DynString(elf.DT_RPATH)
	runpathStrs, _ := f.DynString(elf.DT_RUNPATH)

	interp, hasInterp := interpreter(f)
	dynLinking := hasInterp || len(dynlibs) > 0
	hasLibc := hasLibcDep(dynlibs)

	fortify, fortified, fortifiable := classifyFortify(importedNames, dynLinking, hasLibc)

	res := Result{
		Canary:         hasAny(allNames, "__stack_chk_fail", "__intel_security_cookie"),
		ClangCFI:       hasCFI(allNames),
		ClangSafeStack: hasSafeStack(allNames),
		Fortify:        fortify,
		Fortified:      fortified,
		Fortifiable:    fortifiable,
		Nx:             classifyNx(f),
		PIE:            classifyPIE(f),
		Relro:          classifyRelro(f),
		Rpath:          shared.FromPaths(rpathStrs),
		Runpath:        shared.FromPaths(runpathStrs),
		Dynlibs:        dynlibs,
		SymbolCount:    uint64(symbolCount),
		Bitness:        bitness,
		Asan:           hasPrefixed(allNames, "__asan_"),
		Architecture:   architectureName(f.Machine),
		DynLinking:     dynLinking,
		Interpreter:    interp,
	}
	res.StackClashProtection = detectStackClashProtection(f, bitness)

	return res, nil
}

func collectSymbolNames(f *elf.File) (map[string]bool, int) {
	names := map[string]bool{}
	syms, err := f.Symbols()
	if err != nil {
		log.WithFields("error", err).Tracef("no static symbol table")
		return names, 0
	}
	for _, s := range syms {
		names[s.Name] = true
	}
	return names, len(syms)
}

func collectImportedNames(f *elf.File) map[string]bool {
	names := map[string]bool{}
	imported, err := f.ImportedSymbols()
	if err != nil {
		log.WithFields("error", err).Tracef("no imported symbol table")
		return names
	}
	for _, s := range imported {
		names[s.Name] = true
	}
	dynsyms, err := f.DynamicSymbols()
	if err == nil {
		for _, s := range dynsyms {
			if s.Section == elf.SHN_UNDEF && s.Name != "" {
				names[s.Name] = true
			}
		}
	}
	return names
}

func union(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func hasAny(names map[string]bool, candidates ...string) bool {
	for _, c := range candidates {
		if names[c] {
			return true
		}
	}
	return false
}

func hasPrefixed(names map[string]bool, prefix string) bool {
	for n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func hasCFI(names map[string]bool) bool {
	if names["__cfi_slowpath"] {
		return true
	}
	return hasPrefixed(names, "__cfi_check")
}

func hasSafeStack(names map[string]bool) bool {
	if names["__safestack_init"] {
		return true
	}
	return hasPrefixed(names, "__safestack_")
}

func hasLibcDep(dynlibs []string) bool {
	for _, lib := range dynlibs {
		if strings.HasPrefix(lib, "libc.so") || strings.Contains(lib, "libc.so.") {
			return true
		}
	}
	return false
}

func interpreter(f *elf.File) (string, bool) {
	for _, p := range f.Progs {
		if p.Type != elf.PT_INTERP {
			continue
		}
		data, err := io.ReadAll(p.Open())
		if err != nil {
			log.WithFields("error", err).Warnf("unable to read PT_INTERP segment")
			return "", true
		}
		return strings.TrimRight(string(data), "\x00"), true
	}
	return "", false
}

func classifyNx(f *elf.File) Nx {
	for _, p := range f.Progs {
		if p.Type != elf.PT_GNU_STACK {
			continue
		}
		if p.Flags&elf.PF_X != 0 {
			return NxDisabled
		}
		return NxEnabled
	}
	return NxNa
}

func classifyPIE(f *elf.File) PIE {
	switch f.Type {
	case elf.ET_EXEC:
		return PIENone
	case elf.ET_REL:
		return PIEREL
	case elf.ET_DYN:
		if hasDynDebug(f) || hasDF1PIE(f) {
			return PIEPIE
		}
		return PIEDSO
	default:
		return PIEDSO
	}
}

func hasDynDebug(f *elf.File) bool {
	vals, err := f.DynValue(elf.DT_DEBUG)
	return err == nil && len(vals) > 0
}

func hasDF1PIE(f *elf.File) bool {
	const dfPIE = 0x08000000
	vals, err := f.DynValue(elf.DT_FLAGS_1)
	if err != nil {
		return false
	}
	for _, v := range vals {
		if v&dfPIE != 0 {
			return true
		}
	}
	return false
}

func classifyRelro(f *elf.File) Relro {
	hasRelro := false
	for _, p := range f.Progs {
		if p.Type == elf.PT_GNU_RELRO {
			hasRelro = true
			break
		}
	}
	if !hasRelro {
		return RelroNone
	}
	if hasBindNow(f) {
		return RelroFull
	}
	return RelroPartial
}

func hasBindNow(f *elf.File) bool {
	if vals, err := f.DynValue(elf.DT_BIND_NOW); err == nil && len(vals) > 0 {
		return true
	}
	const dfBindNow = 0x8
	vals, err := f.DynValue(elf.DT_FLAGS)
	if err != nil {
		return false
	}
	for _, v := range vals {
		if v&dfBindNow != 0 {
			return true
		}
	}
	return false
}

func architectureName(m elf.Machine) string {
	switch m {
	case elf.EM_X86_64:
		return "X86_64"
	case elf.EM_386:
		return "X86"
	case elf.EM_AARCH64:
		return "AArch64"
	case elf.EM_ARM:
		return "ARM"
	case elf.EM_PPC64:
		return "PPC64"
	case elf.EM_RISCV:
		return "RISCV"
	default:
		return strings.TrimPrefix(m.String(), "EM_")
	}
}

func detectStackClashProtection(f *elf.File, bitness int) bool {
	if f.Machine != elf.EM_X86_64 && f.Machine != elf.EM_386 {
		return false
	}
	text := f.Section(".text")
	if text == nil {
		return false
	}
	code, err := text.Data()
	if err != nil {
		log.WithFields("error", err).Tracef("unable to read .text for stack-clash scan")
		return false
	}

	b := disasm.B64
	if bitness == 32 {
		b = disasm.B32
	}

	syms, err := f.Symbols()
	if err != nil {
		// without a symbol table, fall back to scanning the whole
		// section as one function body.
		return disasm.HasStackClashProtection(code, b, text.Addr)
	}
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Size == 0 {
			continue
		}
		if s.Value < text.Addr || s.Value+s.Size > text.Addr+uint64(len(code)) {
			continue
		}
		start := s.Value - text.Addr
		end := start + s.Size
		if disasm.HasStackClashProtection(code[start:end], b, s.Value) {
			return true
		}
	}
	return false
}
