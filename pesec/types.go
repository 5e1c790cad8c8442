// Package pesec implements the PE mitigation inspector (C4): ASLR, NX, SEH,
// SafeSEH, CFG, RFG, GS, Authenticode, CET, .NET, isolation, and
// force-integrity.
package pesec

// ASLR is the three-level address-space-layout-randomization determination
// derived from the DLL-characteristics bits (spec.md §4.3).
type ASLR string

const (
	ASLRNone          ASLR = "None"
	ASLRDynamicBase   ASLR = "DynamicBase"
	ASLRHighEntropyVa ASLR = "HighEntropyVa"
)

// Result is the per-binary PE property record (spec.md §3 PeProperties).
type Result struct {
	ASLR           ASLR
	Authenticode   bool
	CFG            bool
	Dotnet         bool
	Nx             bool
	ForceIntegrity bool
	GS             bool
	Isolation      bool
	RFG            bool
	SafeSEH        bool
	SEH            bool
	CET            bool
	Bitness        int
}
