package logic

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/filter"
	"github.com/idelchi/pwcrypt/pkg/pathmatch"
)

// ErrUnmatchedPattern is returned when a pattern matches no file.
var ErrUnmatchedPattern = errors.New("pattern matched no files")

// patternCount counts the candidates matched by one include or exclude pattern.
type patternCount struct {
	kind    string
	glob    string
	pattern *pathmatch.Pattern
	err     error
	hits    int
}

// RunCheck reports how many files each include and exclude pattern matches below the
// positional arguments. Patterns that match nothing or do not compile fail the check.
func RunCheck(cfg *config.Config, env *Env) error {
	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return err
	}

	if len(includes) == 0 && len(excludes) == 0 {
		return errors.New("no include or exclude patterns to check")
	}

	counters := make([]*patternCount, 0, len(includes)+len(excludes))

	for _, set := range []struct {
		kind  string
		globs []string
	}{{"include", includes}, {"exclude", excludes}} {
		for _, glob := range filter.Normalize(set.globs) {
			pattern, err := pathmatch.Compile(glob)
			counters = append(counters, &patternCount{kind: set.kind, glob: glob, pattern: pattern, err: err})
		}
	}

	var scanned int

	seen := make(map[string]struct{})

	for _, arg := range cfg.Files {
		for path, err := range filter.Walk(arg) {
			if err != nil {
				return fmt.Errorf("walking %q: %w", arg, err)
			}

			if _, dup := seen[path]; dup {
				continue
			}

			seen[path] = struct{}{}
			scanned++

			slashed := filepath.ToSlash(path)

			for _, p := range counters {
				if p.err == nil && p.pattern.Match(slashed) {
					p.hits++
				}
			}
		}
	}

	env.log("check").WithField("scanned", scanned).WithField("patterns", len(counters)).Debug("patterns evaluated")

	return report(env, counters, cfg.Quiet)
}

// report prints one line per pattern and returns ErrUnmatchedPattern if any failed.
func report(env *Env, counters []*patternCount, quiet bool) error {
	var failures int

	for _, p := range counters {
		switch {
		case p.err != nil:
			failures++

			fmt.Fprintf(env.Stderr, "%s %s: invalid: %v\n", p.kind, p.glob, p.err)
		case p.hits == 0:
			failures++

			fmt.Fprintf(env.Stderr, "%s %s: no match\n", p.kind, p.glob)
		case !quiet:
			fmt.Fprintf(env.Stdout, "%s %s: %d file(s)\n", p.kind, p.glob, p.hits)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%w: %d pattern(s)", ErrUnmatchedPattern, failures)
	}

	return nil
}
