package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"allergyguard/internal/app"
	"allergyguard/internal/auth"
	"allergyguard/internal/config"
	"allergyguard/internal/db"
	"allergyguard/internal/family"
	"allergyguard/internal/logger"
	"allergyguard/internal/meals"
	"allergyguard/internal/ocr"
	"allergyguard/internal/router"
	"allergyguard/internal/scan"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── DB ─────────────────────────
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	// ───────────────────────── SERVICES ─────────────────────────
	services, err := app.NewServices(ctx, cfg, pool, zl)
	if err != nil {
		zl.Fatal("wiring failed", zap.Error(err))
	}

	deps := router.Deps{
		Log:         zl.Named("http"),
		Tokens:      services.Tokens,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        auth.NewHandler(services.Auth, services.Tokens, zl),
		Family:      family.NewHandler(services.Family, zl),
		Scan:        scan.NewHandler(services.Scan, zl),
		Meals:       meals.NewHandler(services.Meals, zl),
	}

	// ───────────────────────── OCR WORKER ─────────────────────────
	if services.Labels != nil {
		deps.Labels = ocr.NewHandler(services.Labels, zl)
		if cfg.RunOCRWorker {
			mustHaveBinary(zl, cfg.OCRBinary)
			ocr.StartWorker(ctx, services.Labels, cfg.OCRPollInterval)
		}
	}

	// ───────────────────────── START ─────────────────────────
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("API running", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

// --------------------------------------------------
func mustHaveBinary(zl *zap.Logger, name string) {
	if _, err := exec.LookPath(name); err != nil {
		zl.Fatal("required binary missing", zap.String("binary", name))
	}
}
