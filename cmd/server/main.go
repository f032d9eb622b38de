// Command server runs the DevConnector API.
//
// Configuration comes from .env, an optional config.yaml and the environment
// (see internal/config); JWT_SECRET is the only required setting.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/devconnector/internal/config"
	"github.com/sakif/devconnector/internal/server"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// modernc sqlite does not create missing parent directories.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
