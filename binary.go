// Package checksec is the root of the mitigation-detection engine: the
// container dispatcher (C6) and report data model (C7) that tie the ELF,
// PE, and Mach-O inspectors together into one Binary report per input file.
package checksec

import (
	"errors"

	"github.com/hashicorp/go-multierror"
	"github.com/trailofbits/checksec-anywhere/elfsec"
	"github.com/trailofbits/checksec-anywhere/machosec"
	"github.com/trailofbits/checksec-anywhere/pesec"
)

// BinType is the closed tag set discriminating a Blob's properties.
type BinType string

const (
	Elf32   BinType = "Elf32"
	Elf64   BinType = "Elf64"
	PE32    BinType = "PE32"
	PE64    BinType = "PE64"
	MachO32 BinType = "MachO32"
	MachO64 BinType = "MachO64"
	ErrType BinType = "Error"
)

// Blob pairs a BinType with the format-specific result it tags. Exactly one
// of Elf/Pe/MachO is set, matching BinType, except for ErrType where none
// are and ErrorMessage carries the diagnostic.
type Blob struct {
	BinType      BinType
	Elf          *elfsec.Result
	Pe           *pesec.Result
	MachO        *machosec.Result
	ErrorMessage string
}

func elfBlob(r elfsec.Result) Blob {
	bt := Elf64
	if r.Bitness == 32 {
		bt = Elf32
	}
	return Blob{BinType: bt, Elf: &r}
}

func peBlob(r pesec.Result) Blob {
	bt := PE64
	if r.Bitness == 32 {
		bt = PE32
	}
	return Blob{BinType: bt, Pe: &r}
}

func machoBlob(r machosec.Result) Blob {
	bt := MachO64
	if r.Bitness == 32 {
		bt = MachO32
	}
	return Blob{BinType: bt, MachO: &r}
}

func errBlob(message string) Blob {
	return Blob{BinType: ErrType, ErrorMessage: message}
}

// Binary is a report for one input file: an ordered sequence of Blobs (one
// per analyzable image found in the file) plus a reserved, always-empty
// slot for transitively-resolved libraries (spec.md §3).
type Binary struct {
	File      string
	Blobs     []Blob
	Libraries []Binary
}

// Errors aggregates every Error blob found in b and, transitively, in its
// Libraries, into a single error. It returns nil when no sub-failure
// occurred anywhere in the report. Analyze itself never returns an error
// (spec.md §4.1, §4.10); this is the opt-in accessor for callers that do
// want to fail loudly on a malformed slice or archive member.
func (b Binary) Errors() error {
	var result *multierror.Error
	for _, blob := range b.Blobs {
		if blob.BinType == ErrType {
			result = multierror.Append(result, errors.New(b.File+": "+blob.ErrorMessage))
		}
	}
	for _, lib := range b.Libraries {
		if err := lib.Errors(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
