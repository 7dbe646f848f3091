package pathmatch_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/pwcrypt/pkg/pathmatch"
)

// Case is a single test case from a YAML golden file.
type Case struct {
	Pattern     string `yaml:"pattern"`
	Path        string `yaml:"path"`
	Match       bool   `yaml:"match"`
	Description string `yaml:"description,omitempty"`
}

// Group is a named collection of test cases.
type Group struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Cases       []Case `yaml:"cases"`
}

func loadGroups(t *testing.T) []Group {
	t.Helper()

	files, err := filepath.Glob("testdata/*.yml")
	if err != nil {
		t.Fatalf("globbing testdata: %v", err)
	}

	if len(files) == 0 {
		t.Fatal("no testdata/*.yml files found")
	}

	var all []Group

	for _, f := range files {
		data, err := os.ReadFile(f) //nolint:gosec // test helper reads known testdata files
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}

		var groups []Group
		if err := yaml.Unmarshal(data, &groups); err != nil {
			t.Fatalf("parsing %s: %v", f, err)
		}

		all = append(all, groups...)
	}

	return all
}

func TestMatchGolden(t *testing.T) {
	t.Parallel()

	for _, group := range loadGroups(t) {
		t.Run(group.Name, func(t *testing.T) {
			t.Parallel()

			for i, tc := range group.Cases {
				desc := tc.Description
				if desc == "" {
					desc = fmt.Sprintf("case_%d_%s", i, tc.Pattern)
				}

				t.Run(desc, func(t *testing.T) {
					t.Parallel()

					got, err := pathmatch.Match(tc.Pattern, tc.Path)
					if err != nil {
						t.Fatalf("Match(%q, %q): %v", tc.Pattern, tc.Path, err)
					}

					if got != tc.Match {
						t.Fatalf("Match(%q, %q) = %v, want %v", tc.Pattern, tc.Path, got, tc.Match)
					}
				})
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	if _, err := pathmatch.Compile("[abc"); !errors.Is(err, pathmatch.ErrUnclosedClass) {
		t.Fatalf("Compile([abc) = %v, want ErrUnclosedClass", err)
	}

	if _, err := pathmatch.Compile(`abc\`); !errors.Is(err, pathmatch.ErrTrailingEscape) {
		t.Fatalf(`Compile(abc\) = %v, want ErrTrailingEscape`, err)
	}

	if _, err := pathmatch.NewMatcher([]string{"*.go", "[x"}); err == nil {
		t.Fatal("NewMatcher accepted an invalid pattern")
	}
}

func TestMatcherFirst(t *testing.T) {
	t.Parallel()

	matcher, err := pathmatch.NewMatcher([]string{"*.md", "docs/*", "*"})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	if matcher.Len() != 3 {
		t.Fatalf("Len() = %d", matcher.Len())
	}

	pattern, ok := matcher.First("docs/guide.txt")
	if !ok || pattern.String() != "docs/*" {
		t.Fatalf("First(docs/guide.txt) = %v, %v", pattern, ok)
	}

	empty, err := pathmatch.NewMatcher(nil)
	if err != nil {
		t.Fatalf("NewMatcher(nil): %v", err)
	}

	if empty.MatchAny("anything") {
		t.Fatal("empty matcher matched")
	}
}
