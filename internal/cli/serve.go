package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/tuition-reconciler/internal/api"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/config"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int // 0 = use config
	Verbose bool
}

// RunServe runs the API server until SIGINT or SIGTERM.
func RunServe(cfg *config.Config, flags ServeFlags) error {
	app, err := NewApp(cfg, "api", flags.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	logger := app.Logger

	apiCfg := api.ConfigFrom(cfg.API)
	if flags.Port != 0 {
		apiCfg.Port = flags.Port
	}

	server := api.NewServer(apiCfg, app.Store, app.Service, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
