// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types, and validates
// that required values are present before anything touches the database.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the run fails fast on bad/missing config.
//   - Provide defaults for optional blocks (pool sizing, observability).
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before LoadConfig reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every recognised environment variable carries.
//
// Keys are lowercased after the prefix is trimmed and nested with ".":
//
//	CATALOG_DATABASE.HOST -> database.host -> Config.Database.Host
const EnvPrefix = "CATALOG_"

// ServiceName labels logs and APM data for this program.
const ServiceName = "catalog-smoke"

// Config is the root configuration object.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// Pool settings are optional; zero values are replaced with small
// defaults suited to a single sequential run. Durations are in seconds.
// Connection counts are bounded to int32, the width pgxpool uses.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"gte=0,lte=2147483647"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"gte=0,lte=2147483647"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"gte=0"`

	// AutoMigrate applies the embedded schema migrations before the run.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// DSN builds a postgres URL from the connection fields.
//
// The host/port pair goes through net.JoinHostPort so IPv6 hosts get
// brackets, and the password is URL-escaped so characters like ':' or '@'
// do not break the URL structure.
func (d DatabaseConfig) DSN() string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		d.SSLMode,
	)
}

// applyPoolDefaults fills unset pool tuning fields.
func (d *DatabaseConfig) applyPoolDefaults() {
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = 4
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 1
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = 300
	}
	if d.ConnMaxIdleTime == 0 {
		d.ConnMaxIdleTime = 60
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies defaults, and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix CATALOG_
//   - Unmarshals into Config
//   - Validates required blocks/fields
//   - Applies pool and observability defaults
//   - Overrides observability service name + environment
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	mainConfig.Database.applyPoolDefaults()

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are never user-configurable so that
	// logs and traces stay consistently labelled.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
