package cli

import (
	"os"
	"path/filepath"

	checksec "github.com/trailofbits/checksec-anywhere"
	"github.com/trailofbits/checksec-anywhere/shared"
)

const (
	worldWritable = 0o002
	groupWritable = 0o020
)

// upgradeRpaths is the hosted adapter described in DESIGN.md's
// cmd/checksec-anywhere entry: the core inspectors only ever emit
// shared.Yes(path); this adapter stats each one against the local
// filesystem (resolved relative to the analyzed file's directory) and
// upgrades it to shared.YesRW(path) when world- or group-writable.
func upgradeRpaths(b checksec.Binary, sourcePath string) checksec.Binary {
	dir := filepath.Dir(sourcePath)
	for i := range b.Blobs {
		blob := &b.Blobs[i]
		switch {
		case blob.Elf != nil:
			blob.Elf.Rpath = upgradeList(blob.Elf.Rpath, dir)
			blob.Elf.Runpath = upgradeList(blob.Elf.Runpath, dir)
		case blob.MachO != nil:
			blob.MachO.Rpath = upgradeList(blob.MachO.Rpath, dir)
		}
	}
	return b
}

func upgradeList(paths shared.RpathList, dir string) shared.RpathList {
	out := make(shared.RpathList, len(paths))
	for i, p := range paths {
		if p.Kind != shared.RpathYes {
			out[i] = p
			continue
		}
		if isWorldOrGroupWritable(resolvePath(dir, p.Path)) {
			out[i] = shared.YesRW(p.Path)
		} else {
			out[i] = p
		}
	}
	return out
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func isWorldOrGroupWritable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	mode := info.Mode().Perm()
	return mode&worldWritable != 0 || mode&groupWritable != 0
}
