// Package shared holds the value types used across the ELF, PE, and Mach-O
// inspectors: the rpath/runpath representation (C1 in the design doc).
package shared

import (
	"fmt"
	"strings"
)

// RpathKind discriminates the three states an rpath entry can be in.
type RpathKind int

const (
	// RpathNone means no rpath/runpath entry is present.
	RpathNone RpathKind = iota
	// RpathYes means a path is present and, as far as the core is
	// concerned, inert: writability is a hosted-adapter concern (see
	// upgradeRpaths in cmd/checksec-anywhere/cli/hosted.go).
	RpathYes
	// RpathYesRW means a path is present and was found, by a hosted
	// adapter that can stat the local filesystem, to be world- or
	// group-writable. The core itself never produces this value.
	RpathYesRW
)

// Rpath is one entry of an rpath/runpath/@rpath sequence.
type Rpath struct {
	Kind RpathKind
	Path string
}

// None is the zero-value "no path" entry.
var None = Rpath{Kind: RpathNone}

// Yes constructs a plain present-path entry.
func Yes(path string) Rpath {
	return Rpath{Kind: RpathYes, Path: path}
}

// YesRW constructs a present-and-writable-on-host entry.
func YesRW(path string) Rpath {
	return Rpath{Kind: RpathYesRW, Path: path}
}

func (r Rpath) String() string {
	switch r.Kind {
	case RpathYes:
		return fmt.Sprintf("Yes(%s)", r.Path)
	case RpathYesRW:
		return fmt.Sprintf("YesRW(%s)", r.Path)
	default:
		return "None"
	}
}

// RpathList is the length-preserving sequence of Rpath values. An empty
// list and a list containing exactly one None entry are semantically
// distinct (spec.md §3) and both occur in practice: an empty list means the
// inspector never looked for rpaths on this format, a single None means it
// looked and found nothing.
type RpathList []Rpath

// FromPaths splits each colon-separated DT_RPATH/DT_RUNPATH string in paths
// into its individual search-path entries, producing a single-element
// [None] list when no entry remains (an empty paths slice, or paths that
// are themselves empty/all-colon strings).
func FromPaths(paths []string) RpathList {
	out := make(RpathList, 0, len(paths))
	for _, p := range paths {
		for _, seg := range strings.Split(p, ":") {
			if seg == "" {
				continue
			}
			out = append(out, Yes(seg))
		}
	}
	if len(out) == 0 {
		return RpathList{None}
	}
	return out
}
