// Package machosec implements the Mach-O mitigation inspector (C5): ARC,
// PIE, NX heap/stack, canary, FORTIFY_SOURCE, code signature, encryption,
// the __RESTRICT segment, rpaths, architecture, and ASan. Fat (multi-arch)
// Mach-O files are split into slices by the container dispatcher; this
// package analyzes one thin Mach-O at a time.
package machosec

import "github.com/trailofbits/checksec-anywhere/shared"

// Result is the per-slice Mach-O property record (spec.md §3 MachoProperties).
type Result struct {
	Arc           bool
	Architecture  string
	Canary        bool
	CodeSignature bool
	Encrypted     bool
	Fortify       bool
	Fortified     uint32
	NxHeap        bool
	NxStack       bool
	PIE           bool
	Restrict      bool
	Rpath         shared.RpathList
	Bitness       int
	SymbolCount   uint64
	Asan          bool
}
