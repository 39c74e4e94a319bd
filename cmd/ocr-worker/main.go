package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"allergyguard/internal/app"
	"allergyguard/internal/config"
	"allergyguard/internal/db"
	"allergyguard/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zl.Info("OCR worker starting")

	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	services, err := app.NewServices(ctx, cfg, pool, zl)
	if err != nil {
		zl.Fatal("wiring failed", zap.Error(err))
	}
	if services.Labels == nil {
		zl.Fatal("R2 storage is required to run the OCR worker")
	}

	// blocks until SIGINT/SIGTERM
	services.Labels.Run(ctx, cfg.OCRPollInterval)
}
