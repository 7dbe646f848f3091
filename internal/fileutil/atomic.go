// Package fileutil writes outputs next to their inputs without ever leaving a
// partially written file under the final name.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	ownerReadWrite = 0o600
	executableBits = 0o111
)

// Atomic is an output file under construction. Data goes to a hidden temp file in the
// destination directory; Commit renames it into place, Abort removes it.
type Atomic struct {
	src     os.FileInfo
	outPath string
	tmp     *os.File
	done    bool
}

// CreateAtomic stats srcPath and opens a temp file next to outPath.
func CreateAtomic(srcPath, outPath string) (*Atomic, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("getting file info for %q: %w", srcPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &Atomic{src: info, outPath: outPath, tmp: tmp}, nil
}

// Writer returns the destination for output data.
func (a *Atomic) Writer() io.Writer {
	return a.tmp
}

// Executable reports whether the source file had any execute bit set.
func (a *Atomic) Executable() bool {
	return a.src.Mode()&executableBits != 0
}

// Commit closes the temp file, applies owner-only permissions (plus execute bits
// when executable), renames it to the output path and returns the output size.
func (a *Atomic) Commit(executable, preserveTimestamps bool) (int64, error) {
	if a.done {
		return 0, fmt.Errorf("output %q already finalized", a.outPath)
	}

	a.done = true

	perm := os.FileMode(ownerReadWrite)
	if executable {
		perm |= executableBits
	}

	if err := a.tmp.Chmod(perm); err != nil {
		a.cleanup()

		return 0, fmt.Errorf("setting file permissions: %w", err)
	}

	if err := a.tmp.Close(); err != nil {
		a.cleanup()

		return 0, fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(a.tmp.Name(), a.outPath); err != nil {
		a.cleanup()

		return 0, fmt.Errorf("renaming output file: %w", err)
	}

	return finalize(a.outPath, preserveTimestamps, a.src.ModTime())
}

// Abort discards the temp file. It is a no-op after Commit.
func (a *Atomic) Abort() {
	if a.done {
		return
	}

	a.done = true
	a.cleanup()
}

func (a *Atomic) cleanup() {
	a.tmp.Close()           //nolint:errcheck,gosec // best-effort cleanup
	os.Remove(a.tmp.Name()) //nolint:errcheck,gosec // best-effort cleanup
}

// finalize optionally carries over the source modification time and returns the output size.
func finalize(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return info.Size(), nil
}
