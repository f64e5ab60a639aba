package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deppfellow/catalog-smoke/internal/config"
	"github.com/deppfellow/catalog-smoke/internal/database"
	"github.com/deppfellow/catalog-smoke/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func unreachableConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Database: config.DatabaseConfig{
			Host:         "127.0.0.1",
			Port:         1,
			User:         "catalog",
			Password:     "secret",
			Name:         "catalog",
			SSLMode:      "disable",
			MaxOpenConns: 1,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func TestNewUnreachableDatabase(t *testing.T) {
	log := zerolog.Nop()

	a, err := New(context.Background(), unreachableConfig(), &log, &logger.LoggerService{})
	if err == nil {
		_ = a.Close()
		t.Fatal("New() should fail when the database refuses connections")
	}
	if !strings.HasPrefix(err.Error(), "failed to initialize database: ") {
		t.Errorf("New() error = %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Error("New() error should wrap its cause")
	}
}

func TestCloseTwice(t *testing.T) {
	log := zerolog.Nop()

	pc, err := database.PoolConfig(unreachableConfig(), &log, nil)
	if err != nil {
		t.Fatalf("PoolConfig() error = %v", err)
	}
	pc.MinConns = 0
	pool, err := pgxpool.NewWithConfig(context.Background(), pc)
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}

	a := &App{Logger: &log, DB: &database.Database{Pool: pool}}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
