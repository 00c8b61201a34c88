package actions

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"github.com/Sumatoshi-tech/source-licenser/pkg/license"
	"github.com/Sumatoshi-tech/source-licenser/pkg/textutil"
)

// Placement selects where a text block is anchored.
type Placement int

// Placements.
const (
	PlaceHeader Placement = iota
	PlaceFooter
)

// TextAnchor keeps a delimited license block at the top or bottom of a text file.
// Blocks are matched regardless of line-ending style and written in the
// style the file already uses.
type TextAnchor struct {
	env       Env
	name      string
	placement Placement
	block     string
	blockAt   *regexp.Regexp
	blockAny  *regexp.Regexp
	startLine *regexp.Regexp
	endLine   *regexp.Regexp
}

// NewTextAnchor validates the startBlock, endBlock, linePrefix and license
// settings and prepares the canonical block.
func NewTextAnchor(name string, placement Placement, settings Settings, env Env) (*TextAnchor, error) {
	markers, err := settings.requireStrings(name, "startBlock", "endBlock")
	if err != nil {
		return nil, err
	}

	prefix, _, err := settings.optionalString(name, "linePrefix")
	if err != nil {
		return nil, err
	}

	text, err := settings.license(name, env)
	if err != nil {
		return nil, err
	}

	block := license.Build(markers[0], markers[1], prefix, text)
	blockAny := textutil.LinePattern(block)

	return &TextAnchor{
		env:       env.withDefaults(),
		name:      name,
		placement: placement,
		block:     block,
		blockAt:   regexp.MustCompile(`\A(?:` + blockAny.String() + `)`),
		blockAny:  blockAny,
		startLine: textutil.LinePattern(license.Marker(markers[0])),
		endLine:   textutil.LinePattern(license.Marker(markers[1])),
	}, nil
}

// Name implements [Action].
func (a *TextAnchor) Name() string {
	return a.name
}

// Block returns the canonical block this action writes.
func (a *TextAnchor) Block() string {
	return a.block
}

// Apply implements [Action].
func (a *TextAnchor) Apply(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	unlock := a.env.Locks.Lock(path)
	defer unlock()

	data, readErr := a.env.FS.ReadFile(path)
	if readErr != nil {
		return false, fmt.Errorf("read %s: %w", path, readErr)
	}

	if textutil.IsBinary(data) {
		return false, fmt.Errorf("%w: %s", ErrBinaryContent, path)
	}

	content := string(data)

	updated := a.render(content, path)
	if updated == content {
		return false, nil
	}

	if writeErr := a.env.FS.WriteFile(path, []byte(updated)); writeErr != nil {
		return false, fmt.Errorf("write %s: %w", path, writeErr)
	}

	return true, nil
}

// render returns content with the block in place. A leading byte order
// mark stays in front of everything.
func (a *TextAnchor) render(content, path string) string {
	bom, body := textutil.CutBOM(content)
	eol := textutil.DetectEOL(body)
	block := a.blockFor(eol)

	start, end, found := a.locate(body, path)
	if found {
		return bom + body[:start] + block + body[end:]
	}

	if a.placement == PlaceHeader {
		return bom + block + body
	}

	trimmed := textutil.TrimTrailingNewlines(body)
	if trimmed == "" {
		return bom + block
	}

	return bom + trimmed + eol + block
}

func (a *TextAnchor) blockFor(eol string) string {
	if eol == textutil.EOL {
		return a.block
	}

	return textutil.WithEOL(a.block, eol)
}

// locate returns the byte range of the existing block, including one line
// terminator after the end marker. An exact canonical block always wins;
// otherwise the start marker must begin a line and the end marker must end one.
func (a *TextAnchor) locate(content, path string) (int, int, bool) {
	starts := lineStarts(content, a.startLine)
	if len(starts) == 0 {
		return 0, 0, false
	}

	if a.placement == PlaceHeader {
		first := starts[0]
		if loc := a.blockAt.FindStringIndex(content[first[0]:]); loc != nil {
			return first[0], first[0] + loc[1], true
		}

		starts = starts[:1]
	} else {
		if all := a.blockAny.FindAllStringIndex(content, -1); len(all) > 0 {
			last := all[len(all)-1]

			return last[0], last[1], true
		}

		slices.Reverse(starts)
	}

	for _, start := range starts {
		if end, ok := lineEnd(content, a.endLine, start[1]); ok {
			return start[0], end, true
		}
	}

	a.env.Logger.Warn("start marker without end marker, inserting a new block",
		"action", a.name, "path", path)

	return 0, 0, false
}

// lineStarts returns the [start, end) ranges where marker begins a line.
func lineStarts(s string, marker *regexp.Regexp) [][2]int {
	var ranges [][2]int

	for from := 0; from <= len(s); {
		loc := marker.FindStringIndex(s[from:])
		if loc == nil {
			break
		}

		pos := from + loc[0]
		if pos == 0 || s[pos-1] == '\n' || s[pos-1] == '\r' {
			ranges = append(ranges, [2]int{pos, from + loc[1]})
		}

		from = pos + 1
	}

	return ranges
}

// lineEnd finds the first marker at or after from that ends a line and
// returns the offset just past it and its line terminator.
func lineEnd(s string, marker *regexp.Regexp, from int) (int, bool) {
	for from <= len(s) {
		loc := marker.FindStringIndex(s[from:])
		if loc == nil {
			return 0, false
		}

		after := from + loc[1]
		if after == len(s) {
			return after, true
		}

		if term := textutil.LineTerminatorAt(s, after); term > 0 {
			return after + term, true
		}

		from += loc[0] + 1
	}

	return 0, false
}
