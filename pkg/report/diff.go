package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/source-licenser/pkg/actions"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

type hunk struct {
	start, end int
}

// Diffs prints a unified diff for every recorded change.
func (p *Printer) Diffs(changes []actions.Change) {
	for _, change := range changes {
		p.diff(change)
	}
}

func (p *Printer) diff(change actions.Change) {
	from := "a/" + change.Path
	if change.Created {
		from = "/dev/null"
	}

	p.bold.Fprintf(p.out, "--- %s\n", from)
	p.bold.Fprintf(p.out, "+++ b/%s\n", change.Path)

	lines := diffLines(string(change.Before), string(change.After))
	oldNo, newNo := lineNumbers(lines)

	for _, h := range hunks(lines, diffContext) {
		oldStart, oldCount := oldNo[h.start], 0
		newStart, newCount := newNo[h.start], 0

		for _, line := range lines[h.start:h.end] {
			if line.op != diffmatchpatch.DiffInsert {
				oldCount++
			}

			if line.op != diffmatchpatch.DiffDelete {
				newCount++
			}
		}

		if oldCount == 0 {
			oldStart--
		}

		if newCount == 0 {
			newStart--
		}

		p.cyan.Fprintf(p.out, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)

		for _, line := range lines[h.start:h.end] {
			switch line.op {
			case diffmatchpatch.DiffInsert:
				p.green.Fprintf(p.out, "+%s\n", line.text)
			case diffmatchpatch.DiffDelete:
				p.red.Fprintf(p.out, "-%s\n", line.text)
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(p.out, " %s\n", line.text)
			}
		}
	}
}

// diffLines runs a line-mode diff and flattens it to one entry per line.
func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()

	a, b, index := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	var lines []diffLine

	for _, d := range diffs {
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}

			lines = append(lines, diffLine{op: d.Type, text: strings.TrimRight(text, "\r\n")})
		}
	}

	return lines
}

// lineNumbers returns, for each diff line, the 1-based line number it has
// (or would have) in the old and new file.
func lineNumbers(lines []diffLine) (oldNo, newNo []int) {
	oldNo = make([]int, len(lines)+1)
	newNo = make([]int, len(lines)+1)
	oldLine, newLine := 1, 1

	for idx, line := range lines {
		oldNo[idx], newNo[idx] = oldLine, newLine

		if line.op != diffmatchpatch.DiffInsert {
			oldLine++
		}

		if line.op != diffmatchpatch.DiffDelete {
			newLine++
		}
	}

	oldNo[len(lines)], newNo[len(lines)] = oldLine, newLine

	return oldNo, newNo
}

// hunks groups changed lines with up to context lines around them. Groups
// whose context would overlap are merged.
func hunks(lines []diffLine, context int) []hunk {
	var out []hunk

	for idx, line := range lines {
		if line.op == diffmatchpatch.DiffEqual {
			continue
		}

		start := max(0, idx-context)
		end := min(len(lines), idx+1+context)

		if last := len(out) - 1; last >= 0 && start <= out[last].end {
			out[last].end = end

			continue
		}

		out = append(out, hunk{start: start, end: end})
	}

	return out
}
