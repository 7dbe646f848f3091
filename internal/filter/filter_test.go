package filter_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/idelchi/pwcrypt/internal/filter"
	"github.com/idelchi/pwcrypt/internal/logging"
)

// tree creates files (relative, slash separated) below a fresh temp dir.
func tree(t *testing.T, files ...string) string {
	t.Helper()

	root := t.TempDir()

	for _, file := range files {
		path := filepath.Join(root, filepath.FromSlash(file))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(file), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))

	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			t.Fatal(err)
		}

		out = append(out, filepath.ToSlash(rel))
	}

	return out
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	root := tree(t, "b.txt", "a/z.txt", "a/y/x.txt", "c/d.txt", "a.txt")

	var got []string

	for path, err := range filter.Walk(root) {
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}

		got = append(got, path)
	}

	want := []string{"a.txt", "b.txt", "a/z.txt", "a/y/x.txt", "c/d.txt"}
	if rel := relative(t, root, got); !slices.Equal(rel, want) {
		t.Fatalf("Walk order = %v, want %v", rel, want)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	t.Parallel()

	root := tree(t, "a.txt", "b.txt", "c.txt")

	count := 0

	for range filter.Walk(root) {
		count++

		break
	}

	if count != 1 {
		t.Fatalf("consumed %d paths, want 1", count)
	}
}

func TestWalkSingleFileAndMissing(t *testing.T) {
	t.Parallel()

	root := tree(t, "only.txt")
	file := filepath.Join(root, "only.txt")

	var got []string

	for path, err := range filter.Walk(file) {
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}

		got = append(got, path)
	}

	if !slices.Equal(got, []string{file}) {
		t.Fatalf("Walk(file) = %v", got)
	}

	for _, err := range filter.Walk(filepath.Join(root, "missing")) {
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("Walk(missing) error = %v, want ErrNotExist", err)
		}
	}
}

func TestFilterMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		includes    []string
		excludes    []string
		hasIncludes bool
		path        string
		want        bool
	}{
		{name: "no patterns", path: "a/b.txt", want: true},
		{name: "include hit", includes: []string{"*.txt"}, path: "a/b.txt", want: true},
		{name: "include miss", includes: []string{"*.go"}, path: "a/b.txt", want: false},
		{name: "exclude wins", includes: []string{"*.txt"}, excludes: []string{"a/*"}, path: "a/b.txt", want: false},
		{name: "dot slash prefix", includes: []string{"./a/*"}, path: "./a/b.txt", want: true},
		{name: "empty includes requested", hasIncludes: true, path: "a/b.txt", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			flt, err := filter.New(tc.includes, tc.excludes, tc.hasIncludes)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			if got := flt.Match(tc.path); got != tc.want {
				t.Fatalf("Match(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestLoadPatterns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "patterns.jsonc")

	content := `[
	// secrets
	"*.env",
	"keys/*", // trailing comma below
	"  ",
]`

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	patterns, err := filter.LoadPatterns(path)
	if err != nil {
		t.Fatalf("LoadPatterns: %v", err)
	}

	if !slices.Equal(patterns, []string{"*.env", "keys/*"}) {
		t.Fatalf("LoadPatterns = %v", patterns)
	}
}

func TestLoadPatternsRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not an array", content: `{"include": ["*.env"]}`},
		{name: "unclosed class", content: `["*.env", "[ab"]`},
		{name: "trailing escape", content: `["dir\\"]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "patterns.jsonc")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatal(err)
			}

			if _, err := filter.LoadPatterns(path); !errors.Is(err, filter.ErrPatternFile) {
				t.Fatalf("LoadPatterns err = %v, want ErrPatternFile", err)
			}
		})
	}
}

// Resolve only accepts relative paths, so this test changes the working directory
// and must not run in parallel.
func TestResolveSkipsUnreadablePaths(t *testing.T) {
	root := tree(t, "a/z.txt", "a/y/x.txt", "b/skip.md")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = os.Chdir(wd) })

	flt, err := filter.New(nil, []string{"*.md"}, false)
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer

	log := logging.Component(logging.New(&logs, false), "filter")

	files, scanned, err := filter.Resolve([]string{"a", "missing", "b"}, flt, log)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{filepath.Join("a", "z.txt"), filepath.Join("a", "y", "x.txt")}
	if !slices.Equal(files, want) || scanned != 3 {
		t.Fatalf("Resolve = %v (scanned %d), want %v (scanned 3)", files, scanned, want)
	}

	if !strings.Contains(logs.String(), "skipping unreadable path") || !strings.Contains(logs.String(), "missing") {
		t.Fatalf("no warning for the missing path:\n%s", logs.String())
	}

	if _, _, err := filter.Resolve([]string{"missing"}, flt, log); !errors.Is(err, filter.ErrNoMatch) {
		t.Fatalf("Resolve(missing) = %v, want ErrNoMatch", err)
	}

	if _, _, err := filter.Resolve([]string{"../outside"}, flt, log); err == nil {
		t.Fatal("Resolve accepted a path outside the working directory")
	}
}
