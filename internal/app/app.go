// Package app wires repositories, clients and services from Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"allergyguard/internal/auth"
	"allergyguard/internal/config"
	"allergyguard/internal/family"
	"allergyguard/internal/llm"
	"allergyguard/internal/meals"
	"allergyguard/internal/ocr"
	"allergyguard/internal/scan"
	"allergyguard/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Services struct {
	Tokens   *auth.TokenIssuer
	Auth     *auth.Service
	Family   *family.Service
	Analyzer *llm.Analyzer
	Scan     *scan.Service
	// Labels is nil when R2 is not configured.
	Labels *ocr.Service
	Meals  *meals.Service
}

// NewCompleter picks the configured provider. A missing key yields
// llm.Unconfigured so the API still starts and answers 503.
func NewCompleter(ctx context.Context, cfg *config.AI, log *zap.Logger) (llm.Completer, error) {
	var (
		completer llm.Completer
		err       error
	)
	switch cfg.LLMProvider {
	case "openai":
		completer, err = llm.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
	default:
		completer, err = llm.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	}

	if errors.Is(err, llm.ErrNotConfigured) {
		log.Warn("AI provider not configured, analysis endpoints will return 503",
			zap.String("provider", cfg.LLMProvider), zap.Error(err))
		return llm.Unconfigured{}, nil
	}
	if err != nil {
		return nil, err
	}

	log.Info("AI provider ready", zap.String("provider", cfg.LLMProvider))
	return completer, nil
}

func NewServices(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) (*Services, error) {
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	completer, err := NewCompleter(ctx, &cfg.AI, log)
	if err != nil {
		return nil, err
	}

	s := &Services{Tokens: tokens}
	s.Auth = auth.NewService(auth.NewPostgresUserRepository(pool))
	s.Family = family.NewService(family.NewPostgresRepository(pool), log.Named("family"))
	s.Analyzer = llm.NewAnalyzer(completer, log.Named("llm"))
	s.Scan = scan.NewService(scan.NewPostgresRepository(pool), s.Family, s.Analyzer, log.Named("scan"))
	s.Meals = meals.NewService(meals.NewPostgresRepository(pool), s.Family, s.Analyzer, log.Named("meals"))

	if !cfg.StorageConfigured() {
		log.Warn("R2 not configured, label uploads disabled")
		return s, nil
	}

	store, err := storage.NewR2Client(ctx, storage.R2Config{
		Endpoint:      cfg.R2Endpoint,
		AccessKey:     cfg.R2AccessKey,
		SecretKey:     cfg.R2SecretKey,
		Bucket:        cfg.R2Bucket,
		PublicBaseURL: cfg.R2PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("R2 init failed: %w", err)
	}

	s.Labels = ocr.NewService(
		ocr.NewPostgresRepository(pool),
		store,
		ocr.NewTesseract(cfg.OCRBinary),
		s.Scan,
		log.Named("ocr"),
	)
	return s, nil
}
