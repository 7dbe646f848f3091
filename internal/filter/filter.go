// Package filter selects files based on include/exclude patterns using find -path semantics.
package filter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/pwcrypt/pkg/pathmatch"
)

// ErrNoMatch is returned when no file survives filtering.
var ErrNoMatch = errors.New("no files matched")

// Filter selects files based on include/exclude patterns.
// Without includes everything is included. Excludes always win.
type Filter struct {
	includes    *pathmatch.Matcher
	excludes    *pathmatch.Matcher
	hasIncludes bool
}

// New compiles include/exclude patterns. hasIncludes makes an empty include list
// match nothing rather than everything.
func New(includes, excludes []string, hasIncludes bool) (*Filter, error) {
	inc, err := pathmatch.NewMatcher(Normalize(includes))
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := pathmatch.NewMatcher(Normalize(excludes))
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{includes: inc, excludes: exc, hasIncludes: hasIncludes || inc.Len() > 0}, nil
}

// Match reports whether path should be processed.
func (f *Filter) Match(path string) bool {
	clean := filepath.ToSlash(filepath.Clean(path))

	included := !f.hasIncludes || f.includes.MatchAny(clean)

	return included && !f.excludes.MatchAny(clean)
}

// Normalize strips leading "./" from patterns so they match cleaned paths.
func Normalize(patterns []string) []string {
	out := make([]string, len(patterns))

	for i, p := range patterns {
		out[i] = strings.TrimPrefix(p, "./")
	}

	return out
}

// Resolve expands positional args into the list of files to process.
// Explicit files bypass filtering; directories are walked and filtered.
// Paths or directories that cannot be read are logged as warnings and skipped.
// Returns the matched files and the number of candidates scanned.
func Resolve(args []string, flt *Filter, log *logrus.Entry) (files []string, scanned int, err error) {
	for _, arg := range args {
		if err := validatePath(arg); err != nil {
			return nil, 0, err
		}
	}

	seen := make(map[string]struct{})

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		for path, err := range Walk(arg) {
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("skipping unreadable path")

				continue
			}

			scanned++

			if path == arg || flt.Match(path) {
				add(path)
			}
		}
	}

	if len(files) == 0 {
		return nil, scanned, fmt.Errorf("%w: %v", ErrNoMatch, args)
	}

	return files, scanned, nil
}

// validatePath rejects paths that escape the current working directory.
func validatePath(path string) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute paths are not allowed: %q", path)
	}

	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, `..\`) {
		return fmt.Errorf("paths must be within the current working directory: %q", path)
	}

	return nil
}
