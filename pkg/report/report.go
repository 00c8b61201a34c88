// Package report renders run summaries, per-action tables and dry-run diffs
// for the terminal.
package report

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/source-licenser/pkg/walker"
)

// Printer writes human-readable run output.
type Printer struct {
	out io.Writer

	bold   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
}

// NewPrinter returns a printer writing to out. Colours are disabled when
// noColor is set, regardless of the terminal.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:    out,
		bold:   color.New(color.Bold),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{p.bold, p.green, p.red, p.yellow, p.cyan} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	return p
}

// Summary prints the outcome line of a run. With pending set the modified
// files were only recorded, not written.
func (p *Printer) Summary(stats walker.Stats, pending bool) {
	files := english.PluralWord(stats.Modified, "file", "")

	switch {
	case pending && stats.Modified > 0:
		p.yellow.Fprintf(p.out, "%s %s would change\n", humanize.Comma(int64(stats.Modified)), files)
	case pending:
		p.green.Fprintln(p.out, "All matched files are up to date")
	default:
		p.green.Fprintf(p.out, "Added license to %s %s in %s\n",
			humanize.Comma(int64(stats.Modified)), files, formatElapsed(stats.Elapsed))
	}

	fmt.Fprintf(p.out, "Scanned %s, matched %s, skipped %s\n",
		humanize.Comma(int64(stats.Scanned)),
		humanize.Comma(int64(stats.Matched)),
		humanize.Comma(int64(stats.Skipped)),
	)

	if stats.Failed > 0 {
		p.red.Fprintf(p.out, "%s %s failed\n",
			humanize.Comma(int64(stats.Failed)), english.PluralWord(stats.Failed, "file", ""))
	}
}

// Errors prints one line per failed file.
func (p *Printer) Errors(errs []*walker.FileError) {
	for _, fileErr := range errs {
		p.red.Fprint(p.out, "error: ")
		fmt.Fprintln(p.out, fileErr.Error())
	}
}

// Pending lists files that would change.
func (p *Printer) Pending(paths []string) {
	for _, path := range paths {
		p.yellow.Fprint(p.out, "would change: ")
		fmt.Fprintln(p.out, path)
	}
}

// ActionTable prints applications per action kind.
func (p *Printer) ActionTable(stats walker.Stats) {
	fmt.Fprintln(p.out, RenderActionTable(stats))
}

// RenderActionTable formats the per-action counters as a table ordered by
// action kind, with a totals footer.
func RenderActionTable(stats walker.Stats) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"Action", "Applied", "Modified", "Failed"})

	names := make([]string, 0, len(stats.PerAction))
	for name := range stats.PerAction {
		names = append(names, name)
	}

	slices.Sort(names)

	var total walker.ActionStats

	for _, name := range names {
		row := stats.PerAction[name]
		total.Applied += row.Applied
		total.Modified += row.Modified
		total.Failed += row.Failed

		tbl.AppendRow(table.Row{name, row.Applied, row.Modified, row.Failed})
	}

	tbl.AppendFooter(table.Row{"Total", total.Applied, total.Modified, total.Failed})

	return tbl.Render()
}

func formatElapsed(d time.Duration) string {
	const precision = time.Millisecond

	if d < precision {
		return d.String()
	}

	return d.Round(precision).String()
}
