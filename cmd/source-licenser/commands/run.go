package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/source-licenser/pkg/actions"
	"github.com/Sumatoshi-tech/source-licenser/pkg/config"
	"github.com/Sumatoshi-tech/source-licenser/pkg/gitlib"
	"github.com/Sumatoshi-tech/source-licenser/pkg/observability"
	"github.com/Sumatoshi-tech/source-licenser/pkg/report"
	"github.com/Sumatoshi-tech/source-licenser/pkg/version"
	"github.com/Sumatoshi-tech/source-licenser/pkg/walker"
)

var (
	// ErrMissingDirectory is returned when no source directory is given.
	ErrMissingDirectory = errors.New("expected exactly one source directory")
	// ErrMissingConfig is returned when --config-file is not set.
	ErrMissingConfig = errors.New("--config-file is required")
	// ErrConflictingModes is returned when --dry-run and --check are combined.
	ErrConflictingModes = errors.New("--dry-run and --check are mutually exclusive")
	// ErrFilesFailed is returned after a run in which some files failed.
	ErrFilesFailed = errors.New("some files could not be processed")
	// ErrPendingChanges is returned by --check when files would change.
	ErrPendingChanges = errors.New("files are missing license updates")
)

const (
	statusOK      = "ok"
	statusFailed  = "failed"
	statusPending = "pending"
)

// RunCommand holds the flags of a licensing run.
type RunCommand struct {
	configFile  string
	dryRun      bool
	check       bool
	workers     int
	report      bool
	noColor     bool
	metricsFile string
	verbose     bool
	quiet       bool
	logJSON     bool
}

func (rc *RunCommand) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rc.configFile, "config-file", "c", "", "Path to the YAML configuration file")
	cmd.Flags().BoolVar(&rc.dryRun, "dry-run", false, "Print the changes as diffs without writing")
	cmd.Flags().BoolVar(&rc.check, "check", false, "Fail when any file would change; write nothing")
	cmd.Flags().IntVar(&rc.workers, "workers", 0, "Number of parallel workers (overrides walk.workers)")
	cmd.Flags().BoolVar(&rc.report, "report", false, "Print a per-action summary table")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&rc.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format")
	cmd.Flags().BoolVarP(&rc.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVarP(&rc.quiet, "quiet", "q", false, "Only log warnings and errors; print no summary")
	cmd.Flags().BoolVar(&rc.logJSON, "log-json", false, "Emit JSON logs")
}

// validateArgs prints the usage on stderr when the invocation is incomplete.
func (rc *RunCommand) validateArgs(cmd *cobra.Command, args []string) error {
	var err error

	switch {
	case len(args) != 1:
		err = ErrMissingDirectory
	case rc.configFile == "":
		err = ErrMissingConfig
	case rc.dryRun && rc.check:
		err = ErrConflictingModes
	}

	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	}

	return err
}

func (rc *RunCommand) mode() observability.AppMode {
	switch {
	case rc.check:
		return observability.ModeCheck
	case rc.dryRun:
		return observability.ModeDryRun
	default:
		return observability.ModeApply
	}
}

func (rc *RunCommand) logLevel(cfg *config.Config) slog.Level {
	switch {
	case rc.verbose:
		return slog.LevelDebug
	case rc.quiet:
		return slog.LevelWarn
	}

	var level slog.Level

	// Validated by the config loader.
	_ = level.UnmarshalText([]byte(cfg.Logging.Level))

	return level
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := config.LoadConfig(rc.configFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("workers") {
		if rc.workers < 0 {
			return config.ErrInvalidWorkers
		}

		cfg.Walk.Workers = rc.workers
	}

	var exporter *observability.TextfileExporter

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = rc.mode()
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.LogLevel = rc.logLevel(cfg)
	obsCfg.LogJSON = rc.logJSON || cfg.Logging.JSON
	obsCfg.LogWriter = cmd.ErrOrStderr()

	if rc.metricsFile != "" {
		exporter, err = observability.NewTextfileExporter()
		if err != nil {
			return err
		}

		obsCfg.MetricReaders = []sdkmetric.Reader{exporter.Reader()}
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			providers.Logger.Warn("telemetry shutdown", "error", shutdownErr)
		}
	}()

	runErr := rc.execute(cmd, root, cfg, providers, exporter)
	if runErr != nil && !errors.Is(runErr, ErrPendingChanges) && !errors.Is(runErr, ErrFilesFailed) {
		providers.Logger.Error("run failed", "error", runErr)
	}

	return runErr
}

func (rc *RunCommand) execute(
	cmd *cobra.Command,
	root string,
	cfg *config.Config,
	providers observability.Providers,
	exporter *observability.TextfileExporter,
) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := providers.Logger
	mode := rc.mode()

	licenseText, err := cfg.LicenseText(time.Now())
	if err != nil {
		return err
	}

	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	var dryRunFS *actions.DryRunFileSystem

	env := actions.Env{
		DefaultLicense: licenseText,
		Locks:          &actions.PathLocks{},
		Logger:         logger,
	}

	if mode != observability.ModeApply {
		dryRunFS = actions.NewDryRunFileSystem(nil)
		env.FS = dryRunFS
	}

	rules, err := walker.BuildRules(cfg.Files, env)
	if err != nil {
		return fmt.Errorf("configure actions: %w", err)
	}

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return err
	}

	opts := walker.Options{
		Ignores:     cfg.Ignores,
		Workers:     cfg.Walk.Workers,
		MaxFileSize: maxSize,
		SkipVendor:  cfg.Walk.SkipVendor,
		Logger:      logger,
		Tracer:      providers.Tracer,
		Recorder:    metrics,
	}

	if cfg.Walk.RespectGitignore {
		repo := openRepository(root, logger)
		if repo != nil {
			defer repo.Free()

			opts.Git = repo
		}
	}

	w, err := walker.New(rules, opts)
	if err != nil {
		return fmt.Errorf("configure walker: %w", err)
	}

	logger.Debug("starting run", "root", root, "mode", mode, "rules", len(rules), "workers", cfg.Walk.Workers)

	result, err := w.Run(ctx, root)
	if err != nil {
		metrics.RecordRun(ctx, mode, statusFailed, elapsedOf(result))

		return err
	}

	status := rc.present(cmd, root, result, dryRunFS)

	logger.Info("run finished",
		"modified", result.Stats.Modified,
		"matched", result.Stats.Matched,
		"failed", result.Stats.Failed,
		"elapsed", result.Stats.Elapsed.Round(time.Millisecond).String())

	metrics.RecordRun(ctx, mode, status, result.Stats.Elapsed)

	if exporter != nil {
		if writeErr := exporter.WriteFile(rc.metricsFile); writeErr != nil {
			return writeErr
		}
	}

	switch status {
	case statusFailed:
		return fmt.Errorf("%w: %d of %d matched files failed", ErrFilesFailed, result.Stats.Failed, result.Stats.Matched)
	case statusPending:
		return fmt.Errorf("%w: %d files would change", ErrPendingChanges, result.Stats.Modified)
	default:
		return nil
	}
}

// present prints the run outcome and returns the run status.
func (rc *RunCommand) present(
	cmd *cobra.Command, root string, result *walker.Result, dryRunFS *actions.DryRunFileSystem,
) string {
	printer := report.NewPrinter(cmd.OutOrStdout(), rc.noColor)
	pending := dryRunFS != nil

	printer.Errors(result.Errors)

	if !rc.quiet {
		switch {
		case rc.dryRun:
			printer.Diffs(relativeChanges(root, dryRunFS.Changes()))
		case rc.check:
			printer.Pending(relativePaths(root, result.ModifiedPaths))
		}

		printer.Summary(result.Stats, pending)

		if rc.report {
			printer.ActionTable(result.Stats)
		}
	}

	switch {
	case len(result.Errors) > 0:
		return statusFailed
	case rc.check && result.Stats.Modified > 0:
		return statusPending
	default:
		return statusOK
	}
}

func openRepository(root string, logger *slog.Logger) *gitlib.Repository {
	repo, err := gitlib.OpenRepository(root)
	if err != nil {
		logger.Warn("gitignore rules unavailable", "root", root, "error", err)

		return nil
	}

	return repo
}

func elapsedOf(result *walker.Result) time.Duration {
	if result == nil {
		return 0
	}

	return result.Stats.Elapsed
}

func relativeChanges(root string, changes []actions.Change) []actions.Change {
	out := make([]actions.Change, len(changes))
	for i, change := range changes {
		change.Path = relativePath(root, change.Path)
		out[i] = change
	}

	return out
}

func relativePaths(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = relativePath(root, path)
	}

	return out
}

func relativePath(root, path string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return path
	}

	rel, err := filepath.Rel(absRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return filepath.ToSlash(rel)
}
