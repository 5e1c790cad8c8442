package sarifview

import (
	"testing"

	checksec "github.com/trailofbits/checksec-anywhere"
	"github.com/trailofbits/checksec-anywhere/elfsec"
)

func TestReportEmptyBinaries(t *testing.T) {
	report, err := Report(nil)
	if err != nil {
		t.Fatalf("Report(nil): %v", err)
	}
	if report == nil {
		t.Fatal("Report(nil) returned a nil report")
	}
}

func TestReportOneElfBlob(t *testing.T) {
	elfResult := elfsec.Result{Canary: true, Fortify: elfsec.FortifyFull, Bitness: 64}
	binaries := []checksec.Binary{
		{
			File:      "testbin",
			Blobs:     []checksec.Blob{{BinType: checksec.Elf64, Elf: &elfResult}},
			Libraries: []checksec.Binary{},
		},
	}
	report, err := Report(binaries)
	if err != nil {
		t.Fatalf("Report(...): %v", err)
	}
	if len(report.Runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(report.Runs))
	}
}
