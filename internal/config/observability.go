package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups all configuration related to telemetry and
// runtime visibility: logging settings and the optional New Relic agent.
//
// It lives under Config.Observability and is optional at the root level.
// If omitted, defaults are injected.
type ObservabilityConfig struct {
	// ServiceName identifies this program in logs and APM dashboards.
	ServiceName string `koanf:"service_name"`

	// Environment splits telemetry by environment (production, local, ...).
	Environment string `koanf:"environment"`

	Logging LoggingConfig `koanf:"logging"`

	NewRelic NewRelicConfig `koanf:"new_relic"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	// Empty means "pick from the environment" (see GetLogLevel).
	Level string `koanf:"level"`

	// Format selects the output format: "json" or "console".
	Format string `koanf:"format"`

	// SlowQueryThreshold flags queries slower than this duration in the
	// SQL trace log. Supplied as a duration string such as "100ms".
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
//
// An empty LicenseKey disables the agent entirely.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`

	// DebugLogging enables the agent's own debug output.
	// Off by default to avoid mixed log formats.
	DebugLogging bool `koanf:"debug_logging"`
}

// DefaultObservabilityConfig provides the defaults used when
// Config.Observability is not provided.
//
// ServiceName and Environment are overwritten by LoadConfig.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "local",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "console",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
		},
	}
}

// Validate applies rules that go beyond struct tags.
//
// Returns nil if the configuration is valid, otherwise the first failure.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (must be json or console)", c.Logging.Format)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	return nil
}

// GetLogLevel returns the effective log level.
//
// An explicit level always wins. Otherwise production defaults to "info"
// and every other environment to "debug".
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

// IsProduction reports whether the program is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
