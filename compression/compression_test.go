package compression

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Canary      bool
	Fortified   uint32
	Fortifiable uint32
	Dynlibs     []string
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	in := sample{Canary: true, Fortified: 2, Fortifiable: 3, Dynlibs: []string{"libc.so.6", "libm.so.6"}}

	encoded, err := Compress(in)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	var out sample
	if err := Decompress([]byte(encoded), &out); err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompressRejectsMalformedBase64(t *testing.T) {
	var out sample
	if err := Decompress([]byte("not valid base64!!"), &out); err == nil {
		t.Fatal("expected an error decoding malformed base64")
	}
}

func TestSHA256Deterministic(t *testing.T) {
	data := []byte("checksec-anywhere")
	a := SHA256(data)
	b := SHA256(data)
	if a != b {
		t.Fatal("expected SHA256 to be deterministic")
	}
	if len(a) != 32 {
		t.Fatalf("digest length = %d, want 32", len(a))
	}
}
