// Package pathmatch implements find -path matching semantics.
//
// It follows fnmatch(3) without FNM_PATHNAME:
//   - * matches any characters including /
//   - ? matches exactly one character including /
//   - [...] matches one character from the set including /, [!...] negates the set
//   - \ escapes the next character
//
// This differs from Go's filepath.Match where * does not cross directory separators.
package pathmatch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrUnclosedClass is returned for a [ without a matching ].
	ErrUnclosedClass = errors.New("unclosed character class")
	// ErrTrailingEscape is returned for a pattern ending in a lone backslash.
	ErrTrailingEscape = errors.New("trailing backslash")
)

// Pattern is a compiled glob.
type Pattern struct {
	glob string
	re   *regexp.Regexp
}

// Compile compiles a single glob. Compiled patterns are cached.
func Compile(glob string) (*Pattern, error) {
	if v, ok := cache.Load(glob); ok {
		cached, _ := v.(*Pattern) //nolint:errcheck // cache only holds *Pattern

		return cached, nil
	}

	expr, err := translate(glob)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", glob, err)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", glob, err)
	}

	pattern := &Pattern{glob: glob, re: re}

	cache.Store(glob, pattern)

	return pattern, nil
}

// Match reports whether path matches the glob.
func Match(glob, path string) (bool, error) {
	pattern, err := Compile(glob)
	if err != nil {
		return false, err
	}

	return pattern.Match(path), nil
}

// Match reports whether path matches the pattern.
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString(path)
}

// String returns the original glob.
func (p *Pattern) String() string {
	return p.glob
}

// Matcher is a set of patterns.
type Matcher struct {
	patterns []*Pattern
}

// NewMatcher compiles the given globs into a reusable matcher.
func NewMatcher(globs []string) (*Matcher, error) {
	matcher := &Matcher{patterns: make([]*Pattern, 0, len(globs))}

	for _, glob := range globs {
		pattern, err := Compile(glob)
		if err != nil {
			return nil, err
		}

		matcher.patterns = append(matcher.patterns, pattern)
	}

	return matcher, nil
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// MatchAny reports whether path matches any pattern.
func (m *Matcher) MatchAny(path string) bool {
	_, ok := m.First(path)

	return ok
}

// First returns the first pattern matching path.
func (m *Matcher) First(path string) (*Pattern, bool) {
	for _, pattern := range m.patterns {
		if pattern.Match(path) {
			return pattern, true
		}
	}

	return nil, false
}

var cache sync.Map //nolint:gochecknoglobals // compiled patterns are immutable

// translate converts a glob into an anchored regular expression.
func translate(glob string) (string, error) {
	var expr strings.Builder

	expr.WriteByte('^')

	for pos := 0; pos < len(glob); {
		switch char := glob[pos]; char {
		case '*':
			expr.WriteString("(?s:.*)")
			pos++
		case '?':
			expr.WriteString("(?s:.)")
			pos++
		case '[':
			class, next, err := bracket(glob, pos)
			if err != nil {
				return "", err
			}

			expr.WriteString(class)

			pos = next
		case '\\':
			if pos+1 >= len(glob) {
				return "", ErrTrailingEscape
			}

			expr.WriteString(regexp.QuoteMeta(glob[pos+1 : pos+2]))

			pos += 2
		default:
			expr.WriteString(regexp.QuoteMeta(glob[pos : pos+1]))
			pos++
		}
	}

	expr.WriteByte('$')

	return expr.String(), nil
}

// bracket translates the character class starting at pos and returns the index
// after its closing bracket. A ] directly after [ or [! is literal.
func bracket(glob string, pos int) (string, int, error) {
	idx := pos + 1

	var class strings.Builder

	class.WriteByte('[')

	if idx < len(glob) && glob[idx] == '!' {
		class.WriteByte('^')

		idx++
	}

	if idx < len(glob) && glob[idx] == ']' {
		class.WriteString(`\]`)

		idx++
	}

	for ; idx < len(glob); idx++ {
		switch glob[idx] {
		case ']':
			class.WriteByte(']')

			return class.String(), idx + 1, nil
		case '\\', '[', '^':
			class.WriteByte('\\')
			class.WriteByte(glob[idx])
		default:
			class.WriteByte(glob[idx])
		}
	}

	return "", 0, ErrUnclosedClass
}
