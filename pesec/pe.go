package pesec

import (
	"bytes"
	"debug/pe"
	"encoding/binary"

	"github.com/trailofbits/checksec-anywhere/disasm"
	"github.com/trailofbits/checksec-anywhere/internal/log"
)

// DLL characteristics bits (winnt.h IMAGE_DLLCHARACTERISTICS_*). The
// standard library's debug/pe does not export these as constants.
const (
	dllCharHighEntropyVa  = 0x0020
	dllCharDynamicBase    = 0x0040
	dllCharForceIntegrity = 0x0080
	dllCharNxCompat       = 0x0100
	dllCharNoIsolation    = 0x0200
	dllCharNoSEH          = 0x0400
	dllCharGuardCF        = 0x4000
)

const (
	dirException     = 3
	dirSecurity      = 4
	dirDebug         = 6
	dirLoadConfig    = 10
	dirCOMDescriptor = 14
)

const (
	guardCFInstrumented = 0x00000100
	rfInstrumented      = 0x00020000
	rfEnable            = 0x00040000
)

const imageDebugTypeExDllCharacteristics = 20
const dllCharExCetCompat = 0x1

// Analyze parses raw PE bytes and produces the full mitigation report
// (spec.md §4.3).
func Analyze(raw []byte) (Result, error) {
	f, err := pe.NewFile(bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	bitness, dllChars, dataDirs, imageBase := headerInfo(f)

	res := Result{Bitness: bitness}
	res.ASLR = classifyASLR(dllChars)
	res.Nx = dllChars&dllCharNxCompat != 0
	res.ForceIntegrity = dllChars&dllCharForceIntegrity != 0
	res.Isolation = dllChars&dllCharNoIsolation == 0
	res.SEH = bitness == 64 || dllChars&dllCharNoSEH == 0
	res.Authenticode = hasAuthenticode(dataDirs)
	res.Dotnet = hasNonZeroDir(dataDirs, dirCOMDescriptor)
	res.CET = hasCETCompat(f, raw, dataDirs)

	lc := parseLoadConfig(f, raw, dataDirs, bitness)
	res.SafeSEH = bitness == 32 && res.SEH && lc.sehHandlerTable != 0 && lc.sehHandlerCount != 0
	res.CFG = dllChars&dllCharGuardCF != 0 && lc.guardCFCheckFnPtr != 0 && lc.guardFlags&guardCFInstrumented != 0
	res.RFG = lc.guardFlags&rfInstrumented != 0 && lc.guardFlags&rfEnable != 0
	res.GS = lc.securityCookie != 0 && gsConfirmedByDisassembly(f, raw, dataDirs, bitness, imageBase, lc.securityCookie)

	return res, nil
}

func headerInfo(f *pe.File) (bitness int, dllChars uint16, dataDirs []pe.DataDirectory, imageBase uint64) {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		return 64, oh.DllCharacteristics, oh.DataDirectory[:], oh.ImageBase
	case *pe.OptionalHeader32:
		return 32, oh.DllCharacteristics, oh.DataDirectory[:], uint64(oh.ImageBase)
	default:
		return 32, 0, nil, 0
	}
}

func classifyASLR(dllChars uint16) ASLR {
	if dllChars&dllCharDynamicBase == 0 {
		return ASLRNone
	}
	if dllChars&dllCharHighEntropyVa != 0 {
		return ASLRHighEntropyVa
	}
	return ASLRDynamicBase
}

func hasNonZeroDir(dirs []pe.DataDirectory, idx int) bool {
	if idx >= len(dirs) {
		return false
	}
	return dirs[idx].Size != 0
}

func hasAuthenticode(dirs []pe.DataDirectory) bool {
	if dirSecurity >= len(dirs) {
		return false
	}
	d := dirs[dirSecurity]
	return d.Size != 0 && d.VirtualAddress != 0
}

// rvaToOffset translates a relative virtual address into a file offset by
// locating the section whose virtual range contains it.
func rvaToOffset(f *pe.File, rva uint32) (uint32, bool) {
	for _, s := range f.Sections {
		if rva >= s.VirtualAddress && rva < s.VirtualAddress+s.Size {
			return s.Offset + (rva - s.VirtualAddress), true
		}
	}
	return 0, false
}

type loadConfigInfo struct {
	securityCookie    uint64
	sehHandlerTable   uint64
	sehHandlerCount   uint64
	guardCFCheckFnPtr uint64
	guardFlags        uint32
}

// parseLoadConfig reads the fields checksec needs out of
// IMAGE_LOAD_CONFIG_DIRECTORY{32,64}, a struct debug/pe does not parse.
// Offsets follow winnt.h; a Size smaller than the field's offset means an
// older toolchain that predates the field, and the field is left zero.
func parseLoadConfig(f *pe.File, raw []byte, dirs []pe.DataDirectory, bitness int) loadConfigInfo {
	var out loadConfigInfo
	if dirLoadConfig >= len(dirs) {
		return out
	}
	d := dirs[dirLoadConfig]
	if d.Size == 0 {
		return out
	}
	off, ok := rvaToOffset(f, d.VirtualAddress)
	if !ok || int(off)+4 > len(raw) {
		return out
	}
	size := binary.LittleEndian.Uint32(raw[off : off+4])
	if int(off)+int(size) > len(raw) {
		size = uint32(len(raw)) - off
	}
	buf := raw[off : off+size]

	read8 := func(at int) uint64 {
		if at+8 > len(buf) {
			return 0
		}
		return binary.LittleEndian.Uint64(buf[at : at+8])
	}
	read4 := func(at int) uint32 {
		if at+4 > len(buf) {
			return 0
		}
		return binary.LittleEndian.Uint32(buf[at : at+4])
	}

	if bitness == 64 {
		out.securityCookie = read8(0x58)
		out.sehHandlerTable = read8(0x60)
		out.sehHandlerCount = read8(0x68)
		out.guardCFCheckFnPtr = read8(0x70)
		out.guardFlags = read4(0x90)
	} else {
		out.securityCookie = uint64(read4(0x3C))
		out.sehHandlerTable = uint64(read4(0x40))
		out.sehHandlerCount = uint64(read4(0x44))
		out.guardCFCheckFnPtr = uint64(read4(0x48))
		out.guardFlags = read4(0x58)
	}
	return out
}

// hasCETCompat looks for an IMAGE_DEBUG_TYPE_EX_DLLCHARACTERISTICS (type 20)
// debug directory entry with the CET_COMPAT bit set.
func hasCETCompat(f *pe.File, raw []byte, dirs []pe.DataDirectory) bool {
	if dirDebug >= len(dirs) {
		return false
	}
	d := dirs[dirDebug]
	if d.Size == 0 {
		return false
	}
	off, ok := rvaToOffset(f, d.VirtualAddress)
	if !ok {
		return false
	}
	const entrySize = 28
	for pos := int(off); pos+entrySize <= len(raw) && pos+entrySize <= int(off)+int(d.Size); pos += entrySize {
		typ := binary.LittleEndian.Uint32(raw[pos+12 : pos+16])
		if typ != imageDebugTypeExDllCharacteristics {
			continue
		}
		sizeOfData := binary.LittleEndian.Uint32(raw[pos+16 : pos+20])
		ptrToRaw := binary.LittleEndian.Uint32(raw[pos+24 : pos+28])
		if sizeOfData < 4 || int(ptrToRaw)+4 > len(raw) {
			continue
		}
		val := binary.LittleEndian.Uint32(raw[ptrToRaw : ptrToRaw+4])
		return val&dllCharExCetCompat != 0
	}
	return false
}

// gsConfirmedByDisassembly enumerates candidate function bodies (from the
// exception directory's RUNTIME_FUNCTION table on x64; the whole .text
// section as one body on x86, where FPO-based function boundaries aren't
// readily available) and looks for at least one GS prologue/epilogue pair
// anchored at the security cookie address, per spec.md §4.3 and the GS
// open question in DESIGN.md. securityCookie and every rip passed to the
// decoder are absolute virtual addresses (ImageBase + RVA): the Load
// Config Directory's SecurityCookie field is stored as an absolute VA, so
// section RVAs are rebased against imageBase before comparison.
func gsConfirmedByDisassembly(f *pe.File, raw []byte, dirs []pe.DataDirectory, bitness int, imageBase, securityCookie uint64) bool {
	text := f.Section(".text")
	if text == nil {
		return false
	}
	code, err := text.Data()
	if err != nil {
		log.WithFields("error", err).Tracef("unable to read .text for GS scan")
		return false
	}

	b := disasm.B64
	if bitness == 32 {
		b = disasm.B32
	}

	if bitness == 64 && dirException < len(dirs) && dirs[dirException].Size > 0 {
		d := dirs[dirException]
		off, ok := rvaToOffset(f, d.VirtualAddress)
		if ok {
			const entrySize = 12
			for pos := int(off); pos+entrySize <= len(raw) && pos+entrySize <= int(off)+int(d.Size); pos += entrySize {
				begin := binary.LittleEndian.Uint32(raw[pos : pos+4])
				end := binary.LittleEndian.Uint32(raw[pos+4 : pos+8])
				if begin == 0 || end <= begin || begin < text.VirtualAddress || end > text.VirtualAddress+uint32(len(code)) {
					continue
				}
				start := begin - text.VirtualAddress
				stop := end - text.VirtualAddress
				if disasm.HasGSCookie(code[start:stop], b, imageBase+uint64(begin), securityCookie) {
					return true
				}
			}
			return false
		}
	}

	return disasm.HasGSCookie(code, b, imageBase+uint64(text.VirtualAddress), securityCookie)
}
