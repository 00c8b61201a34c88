// Package license renders license text into the canonical comment blocks
// written by the header, footer and sibling-file actions.
package license

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Sumatoshi-tech/source-licenser/pkg/textutil"
)

// KeyYear is the substitution key filled with the current year unless configured.
const KeyYear = "YEAR"

// Build renders the canonical block for the given markers, line prefix and
// license text. The start and end segments each end with a line terminator;
// the license segment is prefixed line by line and never ends with a blank
// line before its terminator. Build is pure: identical arguments yield
// byte-identical results.
func Build(startBlock, endBlock, linePrefix, text string) string {
	return segment(startBlock) + prefixed(text, linePrefix) + segment(endBlock)
}

// Body renders the license text alone, without markers or prefix, with the
// same line-ending discipline as the license segment of [Build].
func Body(text string) string {
	return prefixed(text, "")
}

// Marker returns the search form of a start or end block: line endings
// normalised, trailing whitespace and trailing blank lines removed.
func Marker(block string) string {
	lines := textutil.TrimRightAll(textutil.SplitLines(block))

	for len(lines) > 1 && textutil.IsBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	return textutil.Join(lines)
}

func segment(block string) string {
	lines := textutil.TrimRightAll(textutil.SplitLines(block))

	return textutil.Join(textutil.EnsureBlankLastLine(lines))
}

func prefixed(text, linePrefix string) string {
	lines := textutil.StripBlankLastLine(textutil.SplitLines(text))

	out := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		out = append(out, strings.TrimRightFunc(linePrefix+line, unicode.IsSpace))
	}

	return textutil.Join(textutil.EnsureBlankLastLine(out))
}

// Load reads license text from a file.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read license file: %w", err)
	}

	return string(data), nil
}

// Render replaces every {KEY} placeholder in text with its substitution.
// {YEAR} defaults to the year of now when not present in subs.
func Render(text string, subs map[string]string, now time.Time) string {
	values := map[string]string{KeyYear: strconv.Itoa(now.Year())}
	for key, value := range subs {
		values[key] = value
	}

	keys := slices.Sorted(maps.Keys(values))

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, "{"+key+"}", values[key])
	}

	return strings.NewReplacer(pairs...).Replace(text)
}
