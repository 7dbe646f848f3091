package filter

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
)

// Walk yields every regular file below root, depth first in lexical order.
// It keeps an explicit stack of directories instead of recursing, and reads each
// directory only when the consumer reaches it. A directory that cannot be read is
// reported through the error value and the walk continues with its siblings.
// If root is a file, it is yielded on its own. Symlinks below root are not followed.
func Walk(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		info, err := os.Stat(root)
		if err != nil {
			yield(root, fmt.Errorf("stat %q: %w", root, err))

			return
		}

		if !info.IsDir() {
			if info.Mode().IsRegular() {
				yield(root, nil)
			}

			return
		}

		stack := []string{root}

		for len(stack) > 0 {
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entries, err := os.ReadDir(dir)
			if err != nil {
				if !yield(dir, fmt.Errorf("reading directory %q: %w", dir, err)) {
					return
				}

				continue
			}

			var subdirs []string

			for _, entry := range entries {
				path := filepath.Join(dir, entry.Name())

				switch {
				case entry.IsDir():
					subdirs = append(subdirs, path)
				case entry.Type().IsRegular():
					if !yield(path, nil) {
						return
					}
				}
			}

			// Push in reverse so the lexically first subdirectory is visited next.
			slices.Reverse(subdirs)
			stack = append(stack, subdirs...)
		}
	}
}
