// Package database contains the logic for establishing
// connections to the PostgreSQL database.
//
// It specifically handles *database pooling* and integrating
// the logger/tracer with the database driver (PGX).
//
// It handles:
//   - building a pgxpool config from the application config
//   - creating a pgx connection pool (pgxpool)
//   - wiring query tracing/logging (pgx tracelog)
//   - optional New Relic instrumentation (nrpgx5)
//   - embedded schema migrations (tern)
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/catalog-smoke/internal/config"
	loggerConfig "github.com/deppfellow/catalog-smoke/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
//
// Repositories accept it so the same code runs on the pool, inside a
// transaction, or against a mock pool in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Database wraps the pgx connection pool and a logger.
//
// Pool is the shared connection pool; it is opened once by New and
// released once by Close.
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger

	closeOnce sync.Once
}

// multiTracer chains several pgx query tracers.
//
// pgx supports a single Tracer in ConnConfig; this adapter lets New Relic
// and the local SQL trace log run side by side.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

// TraceQueryStart calls each tracer in order, threading the context
// through so every tracer can attach its own values.
func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

// TraceQueryEnd calls each tracer's TraceQueryEnd.
func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

// slowQueryTracer logs a warning for every query that takes at least
// threshold to complete.
type slowQueryTracer struct {
	threshold time.Duration
	log       *zerolog.Logger
}

type slowQueryKey struct{}

type slowQueryStart struct {
	sql string
	at  time.Time
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, slowQueryKey{}, slowQueryStart{sql: data.SQL, at: time.Now()})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(slowQueryKey{}).(slowQueryStart)
	if !ok {
		return
	}

	elapsed := time.Since(start.at)
	if elapsed < t.threshold {
		return
	}

	event := t.log.Warn().
		Dur("duration", elapsed).
		Dur("threshold", t.threshold).
		Str("sql", start.sql)
	if data.Err != nil {
		event = event.Err(data.Err)
	}
	event.Msg("slow query")
}

// DatabasePingTimeout is how long New waits for the first ping before
// considering the database unreachable.
const DatabasePingTimeout = 10 * time.Second

// PoolConfig parses the DSN from cfg and applies pool sizing and tracers.
//
// Tracers:
//   - New Relic (nrpgx5) when loggerService carries an application
//   - slow query warnings when observability.logging.slow_query_threshold > 0
//   - SQL trace log (tracelog + pgx-zerolog) in the "local" env
//   - several of the above, chained through multiTracer
func PoolConfig(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*pgxpool.Config, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	var tracers []pgx.QueryTracer

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	if cfg.Observability != nil && cfg.Observability.Logging.SlowQueryThreshold > 0 {
		tracers = append(tracers, &slowQueryTracer{
			threshold: cfg.Observability.Logging.SlowQueryThreshold,
			log:       logger,
		})
	}

	// Query logging is noisy, so it only runs in local.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)

		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		pgxPoolConfig.ConnConfig.Tracer = tracers[0]
	default:
		pgxPoolConfig.ConnConfig.Tracer = &multiTracer{tracers: tracers}
	}

	return pgxPoolConfig, nil
}

// New creates a PostgreSQL connection pool with instrumentation, pings it,
// and returns the wrapping Database.
//
// The pool is closed again if the ping fails, so a failed New leaves
// nothing behind to release.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := PoolConfig(cfg, logger, loggerService)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DatabasePingTimeout)
	defer cancel()
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Name).
		Int32("max_conns", pgxPoolConfig.MaxConns).
		Msg("connected to the database")

	return &Database{
		Pool: pool,
		log:  logger,
	}, nil
}

// Close closes the database connection pool. Calls after the first are no-ops.
func (db *Database) Close() error {
	db.closeOnce.Do(func() {
		if db.log != nil {
			db.log.Info().Msg("closing database connection pool")
		}
		db.Pool.Close()
	})
	return nil
}
