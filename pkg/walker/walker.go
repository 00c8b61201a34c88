// Package walker traverses a source tree, selects the rule matching each
// file and applies its actions on a bounded pool of workers.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// IgnoreChecker reports whether a path is excluded by version-control ignore rules.
type IgnoreChecker interface {
	IsIgnored(path string) (bool, error)
}

// Recorder receives per-file and per-action outcomes.
type Recorder interface {
	RecordFile(ctx context.Context, outcome string, duration time.Duration)
	RecordAction(ctx context.Context, action, outcome string)
}

// Options configures a [Walker].
type Options struct {
	// Ignores holds substring entries and doublestar globs.
	Ignores []string
	// Workers bounds concurrent file processing. Zero means runtime.NumCPU.
	Workers int
	// MaxFileSize skips larger files. Zero means unlimited.
	MaxFileSize uint64
	// SkipVendor skips vendored paths as classified by enry.
	SkipVendor bool
	// Git, when set, excludes paths ignored by the repository.
	Git IgnoreChecker

	Logger   *slog.Logger
	Tracer   trace.Tracer
	Recorder Recorder
}

// Walker applies rules to the files of a tree.
type Walker struct {
	rules   []Rule
	ignores *ignoreMatcher
	opts    Options
}

// New validates the options and returns a walker.
func New(rules []Rule, opts Options) (*Walker, error) {
	ignores, err := newIgnoreMatcher(opts.Ignores)
	if err != nil {
		return nil, err
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("source-licenser/walker")
	}

	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &Walker{rules: rules, ignores: ignores, opts: opts}, nil
}

// Run walks root in lexical order. Per-file failures are collected in the
// result and do not stop the walk; the returned error reports only an
// unusable root or cancellation.
func (w *Walker) Run(ctx context.Context, root string) (*Result, error) {
	absRoot, absErr := filepath.Abs(root)
	if absErr != nil {
		return nil, fmt.Errorf("resolve root: %w", absErr)
	}

	info, statErr := os.Stat(absRoot)
	if statErr != nil {
		return nil, fmt.Errorf("stat root: %w", statErr)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	ctx, span := w.opts.Tracer.Start(ctx, "licenser.walk",
		trace.WithAttributes(attribute.String("licenser.root", absRoot)))
	defer span.End()

	start := time.Now()
	col := newCollector()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(w.opts.Workers)

	walkErr := filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := groupCtx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == absRoot {
				return err
			}

			w.opts.Logger.Error("walk entry", "path", path, "error", err)
			col.failed.Add(1)
			col.fail(&FileError{Path: path, Err: err})

			return nil
		}

		if path == absRoot {
			return nil
		}

		return w.visit(groupCtx, group, col, absRoot, path, entry)
	})

	waitErr := group.Wait()

	result := col.result(time.Since(start))

	span.SetAttributes(
		attribute.Int("licenser.files.matched", result.Stats.Matched),
		attribute.Int("licenser.files.modified", result.Stats.Modified),
		attribute.Int("licenser.files.failed", result.Stats.Failed),
	)

	if err := errors.Join(walkErr, waitErr); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return result, fmt.Errorf("walk %s: %w", root, err)
	}

	return result, nil
}

func (w *Walker) visit(
	ctx context.Context, group *errgroup.Group, col *collector, absRoot, path string, entry fs.DirEntry,
) error {
	rel, relErr := filepath.Rel(absRoot, path)
	if relErr != nil {
		return relErr
	}

	slashRel := filepath.ToSlash(rel)

	if reason := w.excluded(path, slashRel, entry.IsDir()); reason != "" {
		w.opts.Logger.Debug("skip", "path", slashRel, "reason", reason)

		if entry.IsDir() {
			return filepath.SkipDir
		}

		return nil
	}

	if entry.IsDir() || !entry.Type().IsRegular() {
		return nil
	}

	col.scanned.Add(1)

	if w.opts.MaxFileSize > 0 {
		info, infoErr := entry.Info()
		if infoErr == nil && uint64(info.Size()) > w.opts.MaxFileSize {
			w.opts.Logger.Debug("skip large file", "path", slashRel,
				"size", humanize.IBytes(uint64(info.Size())), "limit", humanize.IBytes(w.opts.MaxFileSize))
			col.skipped.Add(1)
			w.opts.Recorder.RecordFile(ctx, OutcomeSkipped, 0)

			return nil
		}
	}

	rule, ok := matchRule(w.rules, filepath.ToSlash(path))
	if !ok {
		w.opts.Recorder.RecordFile(ctx, OutcomeUnmatched, 0)

		return nil
	}

	col.matched.Add(1)

	group.Go(func() error {
		w.process(ctx, col, path, slashRel, rule)

		return nil
	})

	return nil
}

// excluded returns the reason an entry is skipped, or "" to keep it.
func (w *Walker) excluded(path, slashRel string, isDir bool) string {
	if w.ignores.Match(filepath.ToSlash(path), slashRel) {
		return "ignored"
	}

	if w.opts.SkipVendor {
		vendorPath := slashRel
		if isDir {
			vendorPath += "/"
		}

		if enry.IsVendor(vendorPath) {
			return "vendor"
		}
	}

	if w.opts.Git != nil {
		ignored, err := w.opts.Git.IsIgnored(path)
		if err != nil {
			w.opts.Logger.Debug("gitignore check failed", "path", slashRel, "error", err)
		} else if ignored {
			return "gitignore"
		}
	}

	return ""
}

func (w *Walker) process(ctx context.Context, col *collector, path, slashRel string, rule Rule) {
	if ctx.Err() != nil {
		return
	}

	ctx, span := w.opts.Tracer.Start(ctx, "licenser.file",
		trace.WithAttributes(
			attribute.String("licenser.path", slashRel),
			attribute.String("licenser.rule", rule.Pattern),
		))
	defer span.End()

	start := time.Now()
	modified, failed := false, false

	for _, action := range rule.Actions {
		changed, err := action.Apply(ctx, path)
		col.action(action.Name(), changed, err)

		switch {
		case err != nil:
			failed = true

			w.opts.Logger.Error("apply action", "path", slashRel, "action", action.Name(), "error", err)
			w.opts.Recorder.RecordAction(ctx, action.Name(), OutcomeFailed)
			span.RecordError(err)
			col.fail(&FileError{Path: path, Action: action.Name(), Err: err})
		case changed:
			modified = true

			w.opts.Logger.Debug("modified", "path", slashRel, "action", action.Name())
			w.opts.Recorder.RecordAction(ctx, action.Name(), OutcomeModified)
		default:
			w.opts.Recorder.RecordAction(ctx, action.Name(), OutcomeUnchanged)
		}
	}

	if modified {
		col.changed(path)
	}

	outcome := OutcomeUnchanged

	switch {
	case failed:
		col.failed.Add(1)
		span.SetStatus(codes.Error, "action failed")

		outcome = OutcomeFailed
	case modified:
		outcome = OutcomeModified
	}

	w.opts.Recorder.RecordFile(ctx, outcome, time.Since(start))
}

type nopRecorder struct{}

func (nopRecorder) RecordFile(context.Context, string, time.Duration) {}

func (nopRecorder) RecordAction(context.Context, string, string) {}
