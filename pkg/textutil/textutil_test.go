package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte("hello world\n")))
	assert.True(t, IsBinary([]byte("hello\x00world")))
}

func TestIsBinary_NullBeyondSniffBoundary(t *testing.T) {
	t.Parallel()

	data := make([]byte, BinarySniffLength+100)
	for i := range data {
		data[i] = 'a'
	}

	data[BinarySniffLength+50] = 0x00

	assert.False(t, IsBinary(data))
}

func TestNativeEOL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\r\n", nativeEOL("windows"))
	assert.Equal(t, "\n", nativeEOL("linux"))
	assert.Equal(t, "\n", nativeEOL("darwin"))
}

func TestSplitLines_AllLineEndings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c", "d"}, SplitLines("a\r\nb\rc\nd"))
	assert.Equal(t, []string{"a", ""}, SplitLines("a\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestTrimRightAll(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{" * a", "", "b"}, TrimRightAll([]string{" * a  ", "\t", "b"}))
}

func TestStripBlankLastLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a"}, StripBlankLastLine([]string{"a", "  "}))
	assert.Equal(t, []string{"a", "b"}, StripBlankLastLine([]string{"a", "b"}))
	assert.Empty(t, StripBlankLastLine([]string{""}))
}

func TestEnsureBlankLastLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", ""}, EnsureBlankLastLine([]string{"a"}))
	assert.Equal(t, []string{"a", ""}, EnsureBlankLastLine([]string{"a", ""}))
	assert.Equal(t, []string{""}, EnsureBlankLastLine(nil))
}

func TestLineTerminatorAt(t *testing.T) {
	t.Parallel()

	s := "a\r\nb\nc\rd"

	assert.Equal(t, 2, LineTerminatorAt(s, 1))
	assert.Equal(t, 1, LineTerminatorAt(s, 4))
	assert.Equal(t, 1, LineTerminatorAt(s, 6))
	assert.Equal(t, 0, LineTerminatorAt(s, 8))
	assert.Equal(t, 0, LineTerminatorAt(s, len(s)))
}

func TestHasTrailingNewline(t *testing.T) {
	t.Parallel()

	assert.True(t, HasTrailingNewline([]byte("x\n")))
	assert.True(t, HasTrailingNewline([]byte("x\r")))
	assert.False(t, HasTrailingNewline([]byte("x")))
	assert.False(t, HasTrailingNewline(nil))
}

func TestTrimTrailingNewlines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text", TrimTrailingNewlines("text\r\n\n\n"))
	assert.Equal(t, "text \t", TrimTrailingNewlines("text \t"))
}

func TestDetectEOL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\r\n", DetectEOL("a\r\nb\n"))
	assert.Equal(t, "\n", DetectEOL("a\nb\r\n"))
	assert.Equal(t, "\r", DetectEOL("a\rb"))
	assert.Equal(t, EOL, DetectEOL("single line"))
}

func TestWithEOL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\r\nb\r\nc\r\n", WithEOL("a\nb\rc\r\n", "\r\n"))
}

func TestCutBOM(t *testing.T) {
	t.Parallel()

	bom, rest := CutBOM("\ufeffx")
	assert.Equal(t, BOM, bom)
	assert.Equal(t, "x", rest)

	bom, rest = CutBOM("x\ufeff")
	assert.Empty(t, bom)
	assert.Equal(t, "x\ufeff", rest)
}

func TestLinePattern_MatchesAnyLineEnding(t *testing.T) {
	t.Parallel()

	re := LinePattern("/**\n * (c)\n")

	assert.True(t, re.MatchString("/**\r\n * (c)\r\n"))
	assert.True(t, re.MatchString("/**\r * (c)\n"))
	assert.False(t, re.MatchString("/** * (c)\n"))
	assert.Equal(t, []int{0, 13}, re.FindStringIndex("/**\r\n * (c)\r\nrest"))
}
