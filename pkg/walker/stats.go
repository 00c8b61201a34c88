package walker

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// File outcomes reported to a [Recorder].
const (
	OutcomeSkipped   = "skipped"
	OutcomeUnmatched = "unmatched"
	OutcomeUnchanged = "unchanged"
	OutcomeModified  = "modified"
	OutcomeFailed    = "failed"
)

// FileError reports an action that failed on one file.
type FileError struct {
	Path   string
	Action string
	Err    error
}

func (e *FileError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", e.Path, e.Action, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ActionStats counts the applications of one action kind.
type ActionStats struct {
	Applied  int
	Modified int
	Failed   int
}

// Stats summarises a run.
type Stats struct {
	// Scanned counts regular files reached by the walk.
	Scanned int
	// Skipped counts files excluded for their size.
	Skipped int
	// Matched counts files handled by a rule.
	Matched int
	// Modified counts files changed by at least one action.
	Modified int
	// Failed counts entries that could not be read or had an action error.
	Failed int
	// PerAction is keyed by action kind.
	PerAction map[string]ActionStats
	Elapsed   time.Duration
}

// Result is the outcome of [Walker.Run].
type Result struct {
	Stats Stats
	// ModifiedPaths lists changed files in lexical order.
	ModifiedPaths []string
	// Errors lists per-file failures ordered by path.
	Errors []*FileError
}

// Err joins the per-file errors, or returns nil when there are none.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, fileErr := range r.Errors {
		errs = append(errs, fileErr)
	}

	return errors.Join(errs...)
}

// collector accumulates stats from concurrent workers.
type collector struct {
	scanned  atomic.Int64
	skipped  atomic.Int64
	matched  atomic.Int64
	modified atomic.Int64
	failed   atomic.Int64

	mu        sync.Mutex
	perAction map[string]ActionStats
	paths     []string
	errs      []*FileError
}

func newCollector() *collector {
	return &collector{perAction: make(map[string]ActionStats)}
}

func (c *collector) action(name string, modified bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.perAction[name]
	stats.Applied++

	switch {
	case err != nil:
		stats.Failed++
	case modified:
		stats.Modified++
	}

	c.perAction[name] = stats
}

func (c *collector) fail(fileErr *FileError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errs = append(c.errs, fileErr)
}

func (c *collector) changed(path string) {
	c.modified.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.paths = append(c.paths, path)
}

func (c *collector) result(elapsed time.Duration) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := slices.Clone(c.errs)
	slices.SortStableFunc(errs, func(a, b *FileError) int {
		return cmp.Compare(a.Path, b.Path)
	})

	paths := slices.Clone(c.paths)
	slices.Sort(paths)

	return &Result{
		Stats: Stats{
			Scanned:   int(c.scanned.Load()),
			Skipped:   int(c.skipped.Load()),
			Matched:   int(c.matched.Load()),
			Modified:  int(c.modified.Load()),
			Failed:    int(c.failed.Load()),
			PerAction: maps.Clone(c.perAction),
			Elapsed:   elapsed,
		},
		ModifiedPaths: paths,
		Errors:        errs,
	}
}
