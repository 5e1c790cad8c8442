package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"

	checksec "github.com/trailofbits/checksec-anywhere"
	"github.com/trailofbits/checksec-anywhere/elfsec"
	"github.com/trailofbits/checksec-anywhere/machosec"
	"github.com/trailofbits/checksec-anywhere/pesec"
)

// renderHuman prints the thin, fixed-contract human-readable rendering
// spec.md §6 requires of the CLI collaborator: a line naming the file, then
// two lines per ELF or Mach-O Blob and one line per PE or Error Blob, exiting
// 0 whether or not any Blob is an Error (an all-Error result is a
// successful analysis that reports nothing, per spec.md §7).
func renderHuman(b checksec.Binary) {
	fmt.Printf("%s\n", b.File)
	for _, blob := range b.Blobs {
		switch {
		case blob.Elf != nil:
			renderElf(*blob.Elf)
		case blob.Pe != nil:
			renderPe(*blob.Pe)
		case blob.MachO != nil:
			renderMachO(*blob.MachO)
		default:
			fmt.Printf("  error: %s\n", blob.ErrorMessage)
		}
	}
}

func renderElf(r elfsec.Result) {
	fmt.Printf("  [ELF%d %s] canary=%t nx=%s pie=%s relro=%s fortify=%s (%d/%d) cfi=%t safestack=%t scp=%t asan=%t symbols=%s\n",
		r.Bitness, r.Architecture, r.Canary, r.Nx, r.PIE, r.Relro, r.Fortify, r.Fortified, r.Fortifiable,
		r.ClangCFI, r.ClangSafeStack, r.StackClashProtection, r.Asan, humanize.Comma(int64(r.SymbolCount)))
	fmt.Printf("    dyn_linking=%t interpreter=%q dynlibs=%v rpath=%v runpath=%v\n",
		r.DynLinking, r.Interpreter, r.Dynlibs, r.Rpath, r.Runpath)
}

func renderPe(r pesec.Result) {
	fmt.Printf("  [PE%d] aslr=%s nx=%t seh=%t safeseh=%t cfg=%t rfg=%t gs=%t authenticode=%t force_integrity=%t isolation=%t dotnet=%t cet=%t\n",
		r.Bitness, r.ASLR, r.Nx, r.SEH, r.SafeSEH, r.CFG, r.RFG, r.GS, r.Authenticode, r.ForceIntegrity, r.Isolation, r.Dotnet, r.CET)
}

func renderMachO(r machosec.Result) {
	fmt.Printf("  [Mach-O%d %s] arc=%t canary=%t code_signature=%t encrypted=%t fortify=%t (%d) nx_heap=%t nx_stack=%t pie=%t restrict=%t asan=%t symbols=%s\n",
		r.Bitness, r.Architecture, r.Arc, r.Canary, r.CodeSignature, r.Encrypted, r.Fortify, r.Fortified,
		r.NxHeap, r.NxStack, r.PIE, r.Restrict, r.Asan, humanize.Comma(int64(r.SymbolCount)))
	fmt.Printf("    rpath=%v\n", r.Rpath)
}
