// Package config defines the file-based configuration for callisto.
//
// Configuration is optional: every command works from flags alone, and a
// config file only changes the defaults those flags start from. Flags
// always win over the file, and environment variables win over both.
package config

import "time"

// Config is the root configuration structure for callisto.
type Config struct {
	// Manifest contains configuration for locating and reading the
	// dependency manifest.
	Manifest ManifestConfig `yaml:"manifest"`

	// Check contains configuration for compatibility evaluation.
	Check CheckConfig `yaml:"check"`

	// Bundle contains configuration for attribution bundle output.
	Bundle BundleConfig `yaml:"bundle"`

	// History contains configuration for the run archive.
	History HistoryConfig `yaml:"history"`

	// Watch contains configuration for watch mode.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ManifestConfig locates the dependency manifest.
type ManifestConfig struct {
	// Path is the manifest file path.
	// Default: "deps.yaml"
	Path string `yaml:"path"`
}

// CheckConfig controls compatibility evaluation.
type CheckConfig struct {
	// Target is the tier the host project is evaluated against
	// ("public-domain", "permissive", "weak-copyleft", "strong-copyleft",
	// "network-copyleft", "proprietary").
	// Default: "permissive"
	Target string `yaml:"target"`

	// Strict makes undetermined packages fail the run with their own
	// exit code instead of merely being reported.
	// Default: false
	Strict bool `yaml:"strict"`

	// Workers is the number of concurrent evaluation workers.
	// Default: number of CPUs
	Workers int `yaml:"workers"`

	// ParseCacheSize is the number of distinct raw license expressions
	// kept in the parse cache.
	// Default: 512
	ParseCacheSize int `yaml:"parse_cache_size"`
}

// BundleConfig controls attribution bundle output.
type BundleConfig struct {
	// Variant selects the bundle layout ("inline", "name-only", "split").
	// Default: "inline"
	Variant string `yaml:"variant"`

	// Dir is the output directory for the split variant.
	Dir string `yaml:"dir"`
}

// HistoryConfig controls the run archive.
type HistoryConfig struct {
	// Enabled turns run archiving on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "callisto-history.db"
	Path string `yaml:"path"`

	// RetentionDays is the age cutoff used by "history prune" when no
	// --days flag is given. Pruning only happens when that command runs;
	// a zero value is replaced by the default.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// DebounceInterval is the quiet period after a manifest change
	// before re-checking.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Schedule is an optional cron expression for periodic re-checks
	// independent of file changes. Empty disables scheduled re-checks.
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text", "console").
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration. The metrics
// listener only runs in watch mode.
type MetricsConfig struct {
	// Enabled turns the metrics listener on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP listener.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path metrics are served on.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
