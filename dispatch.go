package checksec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/blakesmith/ar"
	"github.com/trailofbits/checksec-anywhere/elfsec"
	"github.com/trailofbits/checksec-anywhere/internal/log"
	"github.com/trailofbits/checksec-anywhere/machosec"
	"github.com/trailofbits/checksec-anywhere/pesec"
)

type containerKind int

const (
	kindUnknown containerKind = iota
	kindElf
	kindPE
	kindMachO
	kindFat32
	kindFat64
	kindArchive
)

const (
	machoMagic32    = 0xfeedface
	machoMagic64    = 0xfeedfacf
	machoMagicFat32 = 0xcafebabe
	machoMagicFat64 = 0xcafebabf
)

var arMagic = []byte("!<arch>\n")

// Analyze classifies raw and produces a Binary report. It always succeeds:
// every sub-failure (a malformed slice, an unreadable archive member, an
// unrecognized container) becomes an Error blob rather than an error return
// (spec.md §4.1, §4.10).
func Analyze(raw []byte, filename string) Binary {
	return Binary{
		File:      filename,
		Blobs:     dispatch(raw),
		Libraries: []Binary{},
	}
}

func dispatch(raw []byte) []Blob {
	switch classify(raw) {
	case kindElf:
		r, err := elfsec.Analyze(raw)
		if err != nil {
			return []Blob{errBlob(fmt.Sprintf("ELF parse error: %v", err))}
		}
		return []Blob{elfBlob(r)}
	case kindPE:
		r, err := pesec.Analyze(raw)
		if err != nil {
			return []Blob{errBlob(fmt.Sprintf("PE parse error: %v", err))}
		}
		return []Blob{peBlob(r)}
	case kindMachO:
		r, err := machosec.Analyze(raw)
		if err != nil {
			return []Blob{errBlob(fmt.Sprintf("Mach-O parse error: %v", err))}
		}
		return []Blob{machoBlob(r)}
	case kindFat32, kindFat64:
		return dispatchFat(raw)
	case kindArchive:
		return dispatchArchive(raw)
	default:
		return []Blob{errBlob(fmt.Sprintf("unrecognized container (magic %s)", sniffMime(raw)))}
	}
}

func classify(raw []byte) containerKind {
	if len(raw) >= 4 && string(raw[:4]) == "\x7fELF" {
		return kindElf
	}
	if len(raw) >= 2 && raw[0] == 'M' && raw[1] == 'Z' {
		return kindPE
	}
	if len(raw) >= len(arMagic) && string(raw[:len(arMagic)]) == string(arMagic) {
		return kindArchive
	}
	if len(raw) >= 4 {
		be := binary.BigEndian.Uint32(raw[:4])
		le := binary.LittleEndian.Uint32(raw[:4])
		switch {
		case be == machoMagic32 || le == machoMagic32:
			return kindMachO
		case be == machoMagic64 || le == machoMagic64:
			return kindMachO
		case be == machoMagicFat32:
			return kindFat32
		case be == machoMagicFat64:
			return kindFat64
		}
	}
	return kindUnknown
}

func sniffMime(raw []byte) string {
	if len(raw) == 0 {
		return "empty"
	}
	n := len(raw)
	if n > 4 {
		n = 4
	}
	return fmt.Sprintf("% x", raw[:n])
}

// fatArchSlice is one [offset, offset+size) entry out of a universal
// binary's fat header, common to the 32- and 64-bit fat_arch layouts.
type fatArchSlice struct {
	offset uint64
	size   uint64
}

// dispatchFat walks a fat (universal) Mach-O's architecture slices,
// clamping each slice's byte range against the input and recursing the
// dispatcher on it: a slice may itself be a thin Mach-O or an embedded
// static archive (spec.md §4.1).
func dispatchFat(raw []byte) []Blob {
	slices, err := parseFatArches(raw)
	if err != nil {
		return []Blob{errBlob(fmt.Sprintf("fat Mach-O header error: %v", err))}
	}

	var blobs []Blob
	for i, s := range slices {
		end := s.offset + s.size
		if s.offset > uint64(len(raw)) || end > uint64(len(raw)) || end < s.offset {
			blobs = append(blobs, errBlob(fmt.Sprintf("fat slice %d out of range", i)))
			continue
		}
		blobs = append(blobs, dispatch(raw[s.offset:end])...)
	}
	return blobs
}

func parseFatArches(raw []byte) ([]fatArchSlice, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("truncated fat header")
	}
	magic := binary.BigEndian.Uint32(raw[0:4])
	nArch := binary.BigEndian.Uint32(raw[4:8])

	var entrySize int
	is64 := magic == machoMagicFat64
	if is64 {
		entrySize = 32
	} else {
		entrySize = 20
	}

	out := make([]fatArchSlice, 0, nArch)
	pos := 8
	for i := uint32(0); i < nArch; i++ {
		if pos+entrySize > len(raw) {
			return nil, fmt.Errorf("truncated fat_arch table at entry %d", i)
		}
		e := raw[pos : pos+entrySize]
		var offset, size uint64
		if is64 {
			offset = binary.BigEndian.Uint64(e[8:16])
			size = binary.BigEndian.Uint64(e[16:24])
		} else {
			offset = uint64(binary.BigEndian.Uint32(e[8:12]))
			size = uint64(binary.BigEndian.Uint32(e[12:16]))
		}
		out = append(out, fatArchSlice{offset: offset, size: size})
		pos += entrySize
	}
	return out, nil
}

// dispatchArchive walks an ar(1) static archive's members, recursing the
// dispatcher on each extracted member's bytes and concatenating the
// resulting blobs in directory order (spec.md §4.1).
func dispatchArchive(raw []byte) []Blob {
	rd := ar.NewReader(bytes.NewReader(raw))
	var blobs []Blob
	for {
		hdr, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			blobs = append(blobs, errBlob(fmt.Sprintf("archive directory error: %v", err)))
			break
		}
		data := make([]byte, hdr.Size)
		if _, err := io.ReadFull(rd, data); err != nil {
			log.WithFields("error", err, "member", hdr.Name).Warnf("unreadable archive member")
			blobs = append(blobs, errBlob(fmt.Sprintf("archive member %q unreadable: %v", hdr.Name, err)))
			continue
		}
		blobs = append(blobs, dispatch(data)...)
	}
	return blobs
}
