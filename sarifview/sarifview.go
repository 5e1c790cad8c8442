// Package sarifview implements the SARIF projection (C9): mapping a
// checksec.Binary report onto a SARIF 2.1.0 document, with one result per
// mitigation per Blob and severity derived per spec.md §4.8.
package sarifview

import (
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	checksec "github.com/trailofbits/checksec-anywhere"
	"github.com/trailofbits/checksec-anywhere/elfsec"
	"github.com/trailofbits/checksec-anywhere/machosec"
	"github.com/trailofbits/checksec-anywhere/pesec"
	"github.com/trailofbits/checksec-anywhere/shared"
)

const (
	toolName           = "checksec-anywhere"
	toolInformationURI = "https://github.com/trailofbits/checksec-anywhere"

	levelNone    = "none"
	levelWarning = "warning"
	levelNote    = "note"
)

// Report builds one SARIF run per Binary, one artifact per file, and one
// result per mitigation per Blob. Error blobs carry no mitigations and are
// not projected.
func Report(binaries []checksec.Binary) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("building SARIF report: %w", err)
	}

	for _, b := range binaries {
		run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
		run.AddDistinctArtifact(b.File)
		for _, blob := range b.Blobs {
			projectBlob(run, b.File, blob)
		}
		report.AddRun(run)
	}
	return report, nil
}

func projectBlob(run *sarif.Run, file string, blob checksec.Blob) {
	switch {
	case blob.Elf != nil:
		projectElf(run, file, *blob.Elf)
	case blob.Pe != nil:
		projectPe(run, file, *blob.Pe)
	case blob.MachO != nil:
		projectMachO(run, file, *blob.MachO)
	}
}

func addResult(run *sarif.Run, file, ruleID, level, message string) {
	run.AddResult(
		sarif.NewRuleResult(ruleID).
			WithLevel(level).
			WithMessage(sarif.NewTextMessage(message)).
			WithLocations([]*sarif.Location{
				sarif.NewLocationWithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewSimpleArtifactLocation(file)),
				),
			}),
	)
}

// protectiveBool maps a boolean mitigation where true is protective:
// true -> none, false -> warning.
func protectiveBool(run *sarif.Run, file, ruleID string, value bool) {
	level := levelWarning
	if value {
		level = levelNone
	}
	addResult(run, file, ruleID, level, fmt.Sprintf("%s: %t", ruleID, value))
}

// invertedBool maps a boolean mitigation where true is a liability (e.g.
// ASan instrumentation left in a shipped build): true -> warning.
func invertedBool(run *sarif.Run, file, ruleID string, value bool) {
	level := levelNone
	if value {
		level = levelWarning
	}
	addResult(run, file, ruleID, level, fmt.Sprintf("%s: %t", ruleID, value))
}

func note(run *sarif.Run, file, ruleID, message string) {
	addResult(run, file, ruleID, levelNote, message)
}

// rpathResult is None iff paths is empty, or has exactly one entry that is
// either RpathNone or a Yes/YesRW entry whose literal path text is "None"
// (some toolchains emit a literal rpath entry of "None" as a placeholder);
// otherwise Warning (spec.md §4.8).
func rpathResult(run *sarif.Run, file, ruleID string, paths shared.RpathList) {
	level := levelNone
	if len(paths) > 1 {
		level = levelWarning
	} else if len(paths) == 1 && paths[0].Kind != shared.RpathNone && paths[0].Path != "None" {
		level = levelWarning
	}
	addResult(run, file, ruleID, level, fmt.Sprintf("%s: %v", ruleID, paths))
}

func projectElf(run *sarif.Run, file string, r elfsec.Result) {
	protectiveBool(run, file, "canary", r.Canary)
	protectiveBool(run, file, "clang_cfi", r.ClangCFI)
	protectiveBool(run, file, "clang_safestack", r.ClangSafeStack)
	protectiveBool(run, file, "stack_clash_protection", r.StackClashProtection)
	invertedBool(run, file, "asan", r.Asan)

	switch r.Fortify {
	case elfsec.FortifyFull:
		addResult(run, file, "fortify", levelNone, "fortify: Full")
	case elfsec.FortifyPartial:
		addResult(run, file, "fortify", levelWarning, "fortify: Partial")
	case elfsec.FortifyNone:
		addResult(run, file, "fortify", levelWarning, "fortify: None")
	case elfsec.FortifyUndecidable:
		addResult(run, file, "fortify", levelNote, "fortify: Undecidable")
	}
	note(run, file, "fortified functions", fmt.Sprintf("%d", r.Fortified))
	note(run, file, "fortifiable functions", fmt.Sprintf("%d", r.Fortifiable))

	switch r.Nx {
	case elfsec.NxEnabled:
		addResult(run, file, "nx", levelNone, "nx: Enabled")
	case elfsec.NxDisabled:
		addResult(run, file, "nx", levelWarning, "nx: Disabled")
	case elfsec.NxNa:
		addResult(run, file, "nx", levelNote, "nx: Na")
	}

	switch r.PIE {
	case elfsec.PIEPIE:
		addResult(run, file, "pie", levelNone, "pie: PIE")
	case elfsec.PIENone:
		addResult(run, file, "pie", levelWarning, "pie: None")
	case elfsec.PIEDSO, elfsec.PIEREL:
		addResult(run, file, "pie", levelNote, fmt.Sprintf("pie: %s", r.PIE))
	}

	switch r.Relro {
	case elfsec.RelroFull:
		addResult(run, file, "relro", levelNone, "relro: Full")
	case elfsec.RelroPartial:
		addResult(run, file, "relro", levelWarning, "relro: Partial")
	case elfsec.RelroNone:
		addResult(run, file, "relro", levelWarning, "relro: None")
	}

	rpathResult(run, file, "rpath", r.Rpath)
	rpathResult(run, file, "runpath", r.Runpath)

	note(run, file, "architecture", r.Architecture)
	note(run, file, "bitness", fmt.Sprintf("%d", r.Bitness))
	note(run, file, "dynlibs", fmt.Sprintf("%v", r.Dynlibs))
	if r.SymbolCount != 0 {
		addResult(run, file, "symbols", levelWarning, fmt.Sprintf("symbol_count: %d", r.SymbolCount))
	} else {
		note(run, file, "symbols", "symbol_count: 0")
	}
}

func projectPe(run *sarif.Run, file string, r pesec.Result) {
	switch r.ASLR {
	case pesec.ASLRHighEntropyVa:
		addResult(run, file, "aslr", levelNone, "aslr: HighEntropyVa")
	case pesec.ASLRDynamicBase:
		addResult(run, file, "aslr", levelWarning, "aslr: DynamicBase")
	case pesec.ASLRNone:
		addResult(run, file, "aslr", levelWarning, "aslr: None")
	}

	protectiveBool(run, file, "nx", r.Nx)
	protectiveBool(run, file, "seh", r.SEH)
	protectiveBool(run, file, "safeseh", r.SafeSEH)
	protectiveBool(run, file, "cfg", r.CFG)
	protectiveBool(run, file, "rfg", r.RFG)
	protectiveBool(run, file, "gs", r.GS)
	protectiveBool(run, file, "authenticode", r.Authenticode)
	protectiveBool(run, file, "force_integrity", r.ForceIntegrity)
	protectiveBool(run, file, "isolation", r.Isolation)
	protectiveBool(run, file, "cet", r.CET)
	note(run, file, "dotnet", fmt.Sprintf("%t", r.Dotnet))
	note(run, file, "bitness", fmt.Sprintf("%d", r.Bitness))
}

func projectMachO(run *sarif.Run, file string, r machosec.Result) {
	protectiveBool(run, file, "canary", r.Canary)
	protectiveBool(run, file, "code_signature", r.CodeSignature)
	protectiveBool(run, file, "pie", r.PIE)
	protectiveBool(run, file, "nx_heap", r.NxHeap)
	protectiveBool(run, file, "nx_stack", r.NxStack)
	protectiveBool(run, file, "restrict", r.Restrict)
	protectiveBool(run, file, "encrypted", r.Encrypted)
	invertedBool(run, file, "asan", r.Asan)

	if r.Fortify {
		addResult(run, file, "fortify", levelNone, "fortify: true")
	} else {
		addResult(run, file, "fortify", levelWarning, "fortify: false")
	}
	note(run, file, "fortified functions", fmt.Sprintf("%d", r.Fortified))

	note(run, file, "arc", fmt.Sprintf("%t", r.Arc))
	note(run, file, "architecture", r.Architecture)
	note(run, file, "bitness", fmt.Sprintf("%d", r.Bitness))
	rpathResult(run, file, "rpath", r.Rpath)
	if r.SymbolCount != 0 {
		addResult(run, file, "symbols", levelWarning, fmt.Sprintf("symbol_count: %d", r.SymbolCount))
	} else {
		note(run, file, "symbols", "symbol_count: 0")
	}
}
