package cli

import (
	"fmt"
	"log/slog"

	"github.com/eshaffer321/tuition-reconciler/internal/adapters/ocr"
	"github.com/eshaffer321/tuition-reconciler/internal/application/service"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// App bundles the components every command needs.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *storage.Storage
	Service *service.ReconcileService
}

// NewApp opens storage and builds the reconcile service from cfg.
// system names the logger scope, e.g. "api" or "cli".
func NewApp(cfg *config.Config, system string, verbose bool) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loggingCfg := cfg.Observability.Logging
	if verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, system)

	store, err := storage.NewStorage(cfg.Storage.DatabasePath,
		storage.WithLogger(logger.With("component", "storage")))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	extractor, err := ocr.New(cfg.OCR, logger.With("component", "ocr"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	engine := reconcile.NewEngine(cfg.Matching.EngineConfig())
	svc := service.NewReconcileService(engine, store, extractor, logger, service.Options{
		BatchConcurrency: cfg.Reconcile.BatchConcurrency,
		UnpaidOnly:       cfg.Reconcile.UnpaidOnly,
	})

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Service: svc,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}
