// Command server runs the prompt2json HTTP API.
//
// All configuration comes from environment variables; see
// internal/config for the full list.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/prompt2json/internal/config"
	"github.com/sakif/prompt2json/internal/server"
	"github.com/sakif/prompt2json/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	srv, err := server.New(context.Background(), cfg, logger, server.Deps{})
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("prompt2json starting",
		slog.String("version", version.Version),
		slog.String("ai_provider", cfg.AIProvider),
	)

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
