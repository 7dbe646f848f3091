package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/idelchi/pwcrypt/pkg/pathmatch"
)

// ErrPatternFile is returned when a pattern file holds something other than valid patterns.
var ErrPatternFile = errors.New("invalid pattern file")

// LoadPatterns reads a JSONC array of find -path patterns.
// Comments and trailing commas are allowed, blank entries are dropped
// and every remaining entry must compile.
func LoadPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("reading patterns file %q: %w", path, err)
	}

	var entries []string
	if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &entries); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrPatternFile, path, err)
	}

	patterns := make([]string, 0, len(entries))

	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if _, err := pathmatch.Compile(entry); err != nil {
			return nil, fmt.Errorf("%w: %q entry %d: %w", ErrPatternFile, path, i, err)
		}

		patterns = append(patterns, entry)
	}

	return patterns, nil
}
