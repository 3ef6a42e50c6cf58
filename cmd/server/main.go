// Package main is the entry point for the portfolio server.
//
// MAIN PACKAGE IN GO:
// main stays minimal. Its job is to:
//  1. Read configuration (internal/config)
//  2. Create the logger
//  3. Build and start the server (internal/server)
//
// All actual logic lives in imported packages, which keeps it testable.
//
// WHY cmd/server/?
// cmd/ holds the executables. This module has two: cmd/server (the site)
// and cmd/dbview (prints the database).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/burakyalinat/portfolio/internal/chat"
	"github.com/burakyalinat/portfolio/internal/config"
	"github.com/burakyalinat/portfolio/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet: the log level is part of the config.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	if cfg.DotEnvLoaded {
		logger.Info("loaded .env file")
	}
	if !cfg.AuthEnabled {
		logger.Warn("AUTH_ENABLED is false: serving a read-only site without admin pages")
	}
	if os.Getenv(chat.APIKeyEnv) == "" {
		logger.Warn(chat.APIKeyEnv + " not set: /api/chat will return errors until it is")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
