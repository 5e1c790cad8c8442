// Package compression implements the on-wire envelope (C8): a report is
// serialized with a compact, field-order-preserving encoding, zlib
// compressed, and base64 encoded, with the inverse transformation and a
// standalone SHA-256 helper (spec.md §4.7).
package compression

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/vmihailenco/msgpack/v5"
)

// Compress serializes value with msgpack, zlib-compresses the result at the
// default level, and base64-encodes it with the standard alphabet.
func Compress(value interface{}) (string, error) {
	serialized, err := msgpack.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("result serialization failed: %w", err)
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(serialized); err != nil {
		return "", fmt.Errorf("compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("IO error occurred during flush: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decompress reverses Compress: base64-decode, zlib-inflate, then
// msgpack-unmarshal into out. out must be a pointer, per
// msgpack.Unmarshal's contract.
func Decompress(encoded []byte, out interface{}) error {
	compressed, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return fmt.Errorf("decoding failed: %w", err)
	}

	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("error occurred during decompression: %w", err)
	}
	defer r.Close()

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("error occurred during decompression: %w", err)
	}

	if err := msgpack.Unmarshal(decompressed, out); err != nil {
		return fmt.Errorf("deserialization failed: %w", err)
	}
	return nil
}

// SHA256 returns the 32-byte SHA-256 digest of raw.
func SHA256(raw []byte) [32]byte {
	return sha256.Sum256(raw)
}
