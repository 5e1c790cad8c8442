package checksec

import "testing"

func TestClassifyElf(t *testing.T) {
	raw := append([]byte("\x7fELF"), make([]byte, 16)...)
	if got := classify(raw); got != kindElf {
		t.Fatalf("classify(ELF magic) = %v, want kindElf", got)
	}
}

func TestClassifyPE(t *testing.T) {
	raw := append([]byte("MZ"), make([]byte, 16)...)
	if got := classify(raw); got != kindPE {
		t.Fatalf("classify(MZ magic) = %v, want kindPE", got)
	}
}

func TestClassifyArchive(t *testing.T) {
	raw := []byte("!<arch>\n")
	if got := classify(raw); got != kindArchive {
		t.Fatalf("classify(ar magic) = %v, want kindArchive", got)
	}
}

func TestClassifyUnknown(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02, 0x03}
	if got := classify(raw); got != kindUnknown {
		t.Fatalf("classify(garbage) = %v, want kindUnknown", got)
	}
}

func TestAnalyzeUnknownProducesErrorBlob(t *testing.T) {
	b := Analyze([]byte{0x00, 0x01, 0x02, 0x03}, "mystery.bin")
	if len(b.Blobs) != 1 || b.Blobs[0].BinType != ErrType {
		t.Fatalf("got %+v, want a single Error blob", b)
	}
	if b.Libraries == nil || len(b.Libraries) != 0 {
		t.Fatalf("Libraries = %v, want empty non-nil slice", b.Libraries)
	}
}

func TestAnalyzeEmptyInputProducesErrorBlob(t *testing.T) {
	b := Analyze(nil, "empty.bin")
	if len(b.Blobs) != 1 || b.Blobs[0].BinType != ErrType {
		t.Fatalf("got %+v, want a single Error blob", b)
	}
}
