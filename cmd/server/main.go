package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tfiliano/dt-route-planner/internal/batch"
	"github.com/tfiliano/dt-route-planner/internal/config"
	"github.com/tfiliano/dt-route-planner/internal/extraction"
	"github.com/tfiliano/dt-route-planner/internal/manifests"
	"github.com/tfiliano/dt-route-planner/migrations"
	"github.com/tfiliano/dt-route-planner/pkg/database"
	"github.com/tfiliano/dt-route-planner/pkg/logging"
)

// Application holds the wired subsystems for the route planner service.
type Application struct {
	config    *config.Config
	db        *sql.DB
	logger    *slog.Logger
	manifests *manifests.Handler
	batch     *batch.Handler
}

func main() {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(&cfg.Logging)

	ctx := context.Background()

	db, err := database.Open(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, migrations.Files, ".", logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	app := buildApplication(cfg, db, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.routes(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr)

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	if err := <-shutdownError; err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) *Application {
	manifestSystem := manifests.New(db, logger, cfg.Pagination)

	registry := batch.NewRegistry(batch.NewPostgresStore(db, logger), logger)
	extractor := extraction.NewJSONExtractor(logger)
	processor := batch.NewProcessor(manifestSystem, extractor, registry, logger)

	return &Application{
		config:    cfg,
		db:        db,
		logger:    logger,
		manifests: manifests.NewHandler(manifestSystem, logger, cfg.Pagination),
		batch:     batch.NewHandler(processor, logger, cfg.Server.MaxUploadSizeBytes()),
	}
}
