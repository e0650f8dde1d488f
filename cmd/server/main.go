package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/authfront-dev/authfront/internal/cli/environment"
	"github.com/authfront-dev/authfront/internal/config"
	"github.com/authfront-dev/authfront/internal/logger"
	"github.com/authfront-dev/authfront/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	env, err := environment.Open(cfg, environment.Options{Logger: log})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backend session")
	}
	defer env.Close()

	srv, err := server.New(cfg, env, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", version).Msg("Starting authfront web UI...")

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
