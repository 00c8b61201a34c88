// Package textutil provides text utilities shared by the license actions:
// line splitting across line-ending styles, trailing-blank normalisation,
// and binary detection.
package textutil

import (
	"bytes"
	"regexp"
	"runtime"
	"strings"
	"unicode"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// EOL is the native line terminator of the running platform.
var EOL = nativeEOL(runtime.GOOS)

func nativeEOL(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}

	return "\n"
}

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// SplitLines splits s on any line-ending style (\r\n, \r or \n).
// The result always holds at least one element; a trailing terminator
// yields a trailing empty line.
func SplitLines(s string) []string {
	return lineBreak.Split(s, -1)
}

// TrimRightAll trims trailing whitespace from every line in place.
func TrimRightAll(lines []string) []string {
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}

	return lines
}

// IsBlank reports whether line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// StripBlankLastLine removes the last line when it is blank.
func StripBlankLastLine(lines []string) []string {
	if len(lines) > 0 && IsBlank(lines[len(lines)-1]) {
		return lines[:len(lines)-1]
	}

	return lines
}

// EnsureBlankLastLine appends an empty line unless the last one is already blank,
// so that joining the result ends with a line terminator.
func EnsureBlankLastLine(lines []string) []string {
	if len(lines) == 0 || !IsBlank(lines[len(lines)-1]) {
		return append(lines, "")
	}

	return lines
}

// Join joins lines with the platform line terminator.
func Join(lines []string) string {
	return strings.Join(lines, EOL)
}

// Normalize rewrites every line ending in s to the platform terminator.
func Normalize(s string) string {
	return Join(SplitLines(s))
}

// TrimTrailingNewlines removes every trailing \r and \n from s.
func TrimTrailingNewlines(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// LineTerminatorAt returns the length of the line terminator starting at
// offset idx of s (2 for \r\n, 1 for \r or \n, 0 otherwise).
func LineTerminatorAt(s string, idx int) int {
	switch {
	case strings.HasPrefix(s[idx:], "\r\n"):
		return 2
	case strings.HasPrefix(s[idx:], "\n"), strings.HasPrefix(s[idx:], "\r"):
		return 1
	default:
		return 0
	}
}

// HasTrailingNewline reports whether data ends with a line terminator.
func HasTrailingNewline(data []byte) bool {
	return bytes.HasSuffix(data, []byte{'\n'}) || bytes.HasSuffix(data, []byte{'\r'})
}

// BOM is the UTF-8 byte order mark.
const BOM = "\ufeff"

// CutBOM splits a leading UTF-8 byte order mark off s.
func CutBOM(s string) (bom, rest string) {
	if strings.HasPrefix(s, BOM) {
		return BOM, s[len(BOM):]
	}

	return "", s
}

// DetectEOL returns the first line terminator used in s, or [EOL] when s
// has none.
func DetectEOL(s string) string {
	idx := strings.IndexAny(s, "\r\n")
	switch {
	case idx < 0:
		return EOL
	case s[idx] == '\n':
		return "\n"
	case strings.HasPrefix(s[idx:], "\r\n"):
		return "\r\n"
	default:
		return "\r"
	}
}

// WithEOL rewrites every line ending in s to eol.
func WithEOL(s, eol string) string {
	return strings.Join(SplitLines(s), eol)
}

// LinePattern compiles a pattern matching the lines of s literally, with
// any line-ending style between them.
func LinePattern(s string) *regexp.Regexp {
	lines := SplitLines(s)

	quoted := make([]string, len(lines))
	for i, line := range lines {
		quoted[i] = regexp.QuoteMeta(line)
	}

	return regexp.MustCompile(strings.Join(quoted, `(?:\r\n|\r|\n)`))
}
