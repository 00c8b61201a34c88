// Package config loads and validates the source-licenser configuration file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/source-licenser/pkg/actions"
	"github.com/Sumatoshi-tech/source-licenser/pkg/license"
)

// Sentinel validation errors.
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrNoFileSpecs     = errors.New("no file specs configured")
	ErrNoLicense       = errors.New("no license configured")
	ErrLicenseConflict = errors.New("license content and license file are mutually exclusive")
	ErrInvalidWorkers  = errors.New("walk workers must not be negative")
	ErrInvalidSize     = errors.New("invalid walk max file size")
	ErrInvalidLevel    = errors.New("invalid logging level")
)

// Default configuration values.
const (
	DefaultWalkWorkers     = 0
	DefaultWalkMaxFileSize = "10MB"
	DefaultLoggingLevel    = "info"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds the whole run configuration.
type Config struct {
	License   LicenseConfig   `mapstructure:"license"`
	Ignores   []string        `mapstructure:"ignores"`
	Walk      WalkConfig      `mapstructure:"walk"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Files lists the file specs in configuration order.
	Files []FileSpec `mapstructure:"-"`

	// Dir is the directory holding the configuration file.
	Dir string `mapstructure:"-"`
}

// LicenseConfig holds the default license text source.
type LicenseConfig struct {
	Content string `mapstructure:"content"`
	File    string `mapstructure:"file"`

	// Substitutions keeps the key case written in the file.
	Substitutions map[string]string `mapstructure:"-"`
}

// WalkConfig holds traversal knobs.
type WalkConfig struct {
	Workers          int    `mapstructure:"workers"`
	MaxFileSize      string `mapstructure:"max_file_size"`
	SkipVendor       bool   `mapstructure:"skip_vendor"`
	RespectGitignore bool   `mapstructure:"respect_gitignore"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// FileSpec binds a path suffix to the actions run on matching files.
type FileSpec struct {
	Pattern string
	Actions []ActionSpec
}

// ActionSpec is one configured action of a file spec.
type ActionSpec struct {
	Kind     string
	Settings actions.Settings
}

// MaxFileSizeBytes parses Walk.MaxFileSize. Zero means unlimited.
func (c *Config) MaxFileSizeBytes() (uint64, error) {
	if strings.TrimSpace(c.Walk.MaxFileSize) == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(c.Walk.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidSize, c.Walk.MaxFileSize, err)
	}

	return size, nil
}

// LicenseText returns the default license text with its placeholders
// substituted. It is empty when no license is configured.
func (c *Config) LicenseText(now time.Time) (string, error) {
	text := c.License.Content

	if c.License.File != "" {
		path := c.License.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Dir, path)
		}

		loaded, err := license.Load(path)
		if err != nil {
			return "", err
		}

		text = loaded
	}

	if text == "" {
		return "", nil
	}

	return license.Render(text, c.License.Substitutions, now), nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Files) == 0 {
		return ErrNoFileSpecs
	}

	if c.License.Content != "" && c.License.File != "" {
		return ErrLicenseConflict
	}

	if c.License.Content == "" && c.License.File == "" {
		if spec, kind, ok := c.firstLicenseConsumer(); ok {
			return fmt.Errorf("%w: %s action for %q has no license override", ErrNoLicense, kind, spec)
		}
	}

	if c.Walk.Workers < 0 {
		return ErrInvalidWorkers
	}

	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w %q", ErrInvalidLevel, c.Logging.Level)
	}

	return nil
}

// firstLicenseConsumer finds an action that needs the default license text.
func (c *Config) firstLicenseConsumer() (string, string, bool) {
	for _, spec := range c.Files {
		for _, action := range spec.Actions {
			if action.Kind == actions.KindJSON {
				continue
			}

			if override, ok := action.Settings["license"].(string); ok && strings.TrimSpace(override) != "" {
				continue
			}

			return spec.Pattern, action.Kind, true
		}
	}

	return "", "", false
}
