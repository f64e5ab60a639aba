// Command catalog-smoke runs one create/read/update/delete pass over the
// departments and subjects tables and exits 0 on success, 1 on any error.
//
// Configuration comes from CATALOG_* environment variables (or a .env
// file); see .env.example.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/catalog-smoke/internal/app"
	"github.com/deppfellow/catalog-smoke/internal/config"
	"github.com/deppfellow/catalog-smoke/internal/logger"
	"github.com/deppfellow/catalog-smoke/internal/repository"
	"github.com/deppfellow/catalog-smoke/internal/service"
	"github.com/deppfellow/catalog-smoke/internal/smoke"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run returns the process exit code. The pool is closed, and
// "Database pool closed." printed, on every path past config loading.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	var a *app.App
	defer func() {
		if a != nil {
			if err := a.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database pool")
			}
		}
		fmt.Fprintln(stdout, "Database pool closed.")
	}()

	a, err = app.New(ctx, cfg, &log, loggerService)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	services := service.NewServices(&log, repository.NewRepositories(a.DB.Pool))
	runner := smoke.NewRunner(services.Catalog, &log, stdout, loggerService.GetApplication())

	if _, err := runner.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
