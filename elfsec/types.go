// Package elfsec implements the ELF mitigation inspector (C3): RELRO, PIE,
// NX, stack canary, FORTIFY_SOURCE, Clang CFI/SafeStack, stack-clash
// protection, ASan, rpath/runpath, and dynamic-linking metadata.
package elfsec

import "github.com/trailofbits/checksec-anywhere/shared"

// Relro is the three-level RELRO determination (spec.md §4.2).
type Relro string

const (
	RelroNone    Relro = "None"
	RelroPartial Relro = "Partial"
	RelroFull    Relro = "Full"
)

// PIE is the four-way PIE/DSO/REL determination derived from the ELF
// header type and dynamic table.
type PIE string

const (
	PIENone PIE = "None"
	PIEDSO  PIE = "DSO"
	PIEREL  PIE = "REL"
	PIEPIE  PIE = "PIE"
)

// Nx is the GNU_STACK-derived non-executable-stack determination.
type Nx string

const (
	NxEnabled  Nx = "Enabled"
	NxDisabled Nx = "Disabled"
	NxNa       Nx = "Na"
)

// Fortify is the FORTIFY_SOURCE determination, including the Undecidable
// case for statically-linked-without-libc binaries.
type Fortify string

const (
	FortifyNone        Fortify = "None"
	FortifyPartial     Fortify = "Partial"
	FortifyFull        Fortify = "Full"
	FortifyUndecidable Fortify = "Undecidable"
)

// Result is the per-binary ELF property record (spec.md §3 ElfProperties).
type Result struct {
	Canary               bool
	ClangCFI             bool
	ClangSafeStack       bool
	StackClashProtection bool
	Fortify              Fortify
	Fortified            uint32
	Fortifiable          uint32
	Nx                   Nx
	PIE                  PIE
	Relro                Relro
	Rpath                shared.RpathList
	Runpath              shared.RpathList
	Dynlibs              []string
	SymbolCount          uint64
	Bitness              int
	Asan                 bool
	Architecture         string
	DynLinking           bool
	Interpreter          string
}
