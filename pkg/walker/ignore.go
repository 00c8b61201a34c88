package walker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidIgnore is returned for ignore entries that are malformed glob patterns.
var ErrInvalidIgnore = errors.New("invalid ignore pattern")

// globMeta marks an ignore entry as a doublestar pattern.
const globMeta = "*?[{"

// ignoreMatcher applies the configured ignore entries. Plain entries match
// anywhere in the absolute path; glob entries match the root-relative path.
type ignoreMatcher struct {
	substrings []string
	globs      []string
}

func newIgnoreMatcher(entries []string) (*ignoreMatcher, error) {
	matcher := &ignoreMatcher{}

	for _, entry := range entries {
		if entry == "" {
			continue
		}

		if !strings.ContainsAny(entry, globMeta) {
			matcher.substrings = append(matcher.substrings, entry)

			continue
		}

		if !doublestar.ValidatePattern(entry) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIgnore, entry)
		}

		matcher.globs = append(matcher.globs, entry)
	}

	return matcher, nil
}

// Match reports whether the entry at absPath (rel relative to the walk
// root, both slash-separated) is ignored.
func (m *ignoreMatcher) Match(absPath, rel string) bool {
	for _, sub := range m.substrings {
		if strings.Contains(absPath, sub) {
			return true
		}
	}

	for _, glob := range m.globs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}

	return false
}
