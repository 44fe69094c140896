package config

import (
	"fmt"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/registry"
)

// Validate checks the configuration for invalid values. It assumes
// defaults have already been applied. Failures are *cli.ConfigError
// values naming the offending field.
func Validate(cfg *Config) error {
	tier, err := registry.ParseTier(cfg.Check.Target)
	if err != nil {
		return cli.NewConfigError("check.target", err.Error())
	}
	if !tier.Known() {
		return cli.NewConfigError("check.target", fmt.Sprintf("must name a concrete tier, got %q", cfg.Check.Target))
	}
	if cfg.Check.Workers < 0 {
		return cli.NewConfigError("check.workers", fmt.Sprintf("must not be negative, got %d", cfg.Check.Workers))
	}

	switch cfg.Bundle.Variant {
	case "inline", "name-only", "split":
	default:
		return cli.NewConfigError("bundle.variant", fmt.Sprintf("must be one of inline, name-only, split, got %q", cfg.Bundle.Variant))
	}
	if cfg.Bundle.Variant == "split" && cfg.Bundle.Dir == "" {
		return cli.NewConfigError("bundle.dir", "required for the split variant")
	}

	if cfg.History.RetentionDays < 0 {
		return cli.NewConfigError("history.retention_days", fmt.Sprintf("must not be negative, got %d", cfg.History.RetentionDays))
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return cli.NewConfigError("telemetry.logging.level", fmt.Sprintf("must be one of debug, info, warn, error, got %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text", "console":
	default:
		return cli.NewConfigError("telemetry.logging.format", fmt.Sprintf("must be one of json, text, console, got %q", cfg.Telemetry.Logging.Format))
	}

	return nil
}
