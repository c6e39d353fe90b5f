package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/posimport/internal/config"
	"github.com/JonMunkholm/posimport/internal/core"
	_ "github.com/JonMunkholm/posimport/internal/core/brokers" // Register built-in brokers
	"github.com/JonMunkholm/posimport/internal/logging"
	"github.com/JonMunkholm/posimport/internal/schema"
	"github.com/JonMunkholm/posimport/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	// File schemas may extend built-in brokers, so they load after the init
	// registrations above.
	loaded, err := schema.RegisterFiles(cfg.Import.SchemaFiles...)
	if err != nil {
		slog.Error("failed to load broker schemas", "error", err)
		os.Exit(1)
	}
	slog.Info("brokers registered", "count", core.SchemaCount(), "from_files", loaded)
	for _, key := range core.Keys() {
		slog.Debug("broker", "key", key)
	}

	importer := core.NewImporter(
		core.WithWorkers(cfg.Import.Workers),
		core.WithParallelThreshold(cfg.Import.ParallelThreshold),
	)
	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)

	server := web.NewServer(cfg, importer, limiter)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
