// Package cli is the command-line front-end fixed by spec.md §6: it reads
// a file, calls the core Analyze, and renders the result. It is an
// external collaborator to the detection engine, not part of its
// specification -- the engine's API is the contract this package consumes.
package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	checksec "github.com/trailofbits/checksec-anywhere"
	"github.com/trailofbits/checksec-anywhere/internal/log"
	"github.com/trailofbits/checksec-anywhere/sarifview"
)

var (
	emitSarif bool
	glob      string
	verbose   bool
)

// Root builds the checksec-anywhere command tree.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checksec-anywhere <path>",
		Short: "Report compiler- and linker-enforced hardening mitigations for a binary",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	cmd.Flags().BoolVar(&emitSarif, "sarif", false, "emit a SARIF 2.1.0 document instead of a human-readable report")
	cmd.Flags().StringVar(&glob, "glob", "", "when path is a directory, only analyze files matching this glob")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func run(_ *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var binaries []checksec.Binary
	if info.IsDir() {
		binaries, err = analyzeDir(path)
	} else {
		var b checksec.Binary
		b, err = analyzeFile(path)
		binaries = []checksec.Binary{b}
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if emitSarif {
		return renderSarif(binaries)
	}
	for _, b := range binaries {
		if err := b.Errors(); err != nil {
			log.WithFields("error", err, "file", b.File).Debugf("sub-failures encountered while analyzing")
		}
		renderHuman(b)
	}
	return nil
}

func analyzeFile(path string) (checksec.Binary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return checksec.Binary{}, err
	}
	b := checksec.Analyze(raw, path)
	return upgradeRpaths(b, path), nil
}

func analyzeDir(dir string) ([]checksec.Binary, error) {
	var out []checksec.Binary
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if glob != "" {
			ok, matchErr := doublestar.Match(glob, filepath.Base(path))
			if matchErr != nil {
				log.WithFields("error", matchErr, "glob", glob).Warnf("invalid glob, skipping filter")
			} else if !ok {
				return nil
			}
		}
		b, readErr := analyzeFile(path)
		if readErr != nil {
			log.WithFields("error", readErr, "path", path).Warnf("unreadable file, skipping")
			return nil
		}
		out = append(out, b)
		return nil
	})
	return out, err
}

func renderSarif(binaries []checksec.Binary) error {
	report, err := sarifview.Report(binaries)
	if err != nil {
		return err
	}
	return report.PrettyWrite(os.Stdout)
}
