package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"marlin/internal/app"
	"marlin/internal/config"
	"marlin/internal/logger"
	"marlin/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("MARLIN_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("initializing log output failed: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("config loaded (env=%s broker=%s)", cfg.App.Env, cfg.Broker.BaseURL)

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("initializing failed: %v", err)
	}
	defer application.Close()

	batchPath := os.Getenv("MARLIN_BATCH")
	if batchPath == "" {
		batchPath = "candidates.json"
	}

	// With MARLIN_INTERVAL set the process becomes a live worker,
	// re-evaluating the batch file on every aligned tick.
	if raw := os.Getenv("MARLIN_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parsing MARLIN_INTERVAL failed: %v", err)
		}
		sched := scheduler.New(ctx, interval, 0)
		sched.RunImmediately = true
		sched.Start(func() {
			if err := application.RunBatchFile(ctx, batchPath); err != nil {
				logger.Errorf("batch run failed: %v", err)
			}
		})
		return
	}

	if err := application.RunBatchFile(ctx, batchPath); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
