package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"product/catalog/internal/config"
	"product/catalog/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.Log)

	log.Info("Starting product catalog client...")

	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Errorf("Application exited with error: %v", err)
		stop()
		os.Exit(1)
	}

	log.Info("Application finished successfully")
}

func setupLogging(cfg config.LogConfig) {
	// Logs go to stderr so the rendered catalog on stdout stays clean
	log.SetOutput(os.Stderr)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
