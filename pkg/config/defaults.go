package config

import "time"

// DefaultConfig returns a configuration populated with all defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Manifest.Path == "" {
		cfg.Manifest.Path = "deps.yaml"
	}

	if cfg.Check.Target == "" {
		cfg.Check.Target = "permissive"
	}
	if cfg.Check.ParseCacheSize <= 0 {
		cfg.Check.ParseCacheSize = 512
	}

	if cfg.Bundle.Variant == "" {
		cfg.Bundle.Variant = "inline"
	}

	if cfg.History.Path == "" {
		cfg.History.Path = "callisto-history.db"
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = 90
	}

	if cfg.Watch.DebounceInterval <= 0 {
		cfg.Watch.DebounceInterval = 250 * time.Millisecond
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "console"
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = "127.0.0.1:9464"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}
