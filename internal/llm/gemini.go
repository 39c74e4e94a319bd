package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiCompleter struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing GEMINI_API_KEY", ErrNotConfigured)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: missing GEMINI_MODEL", ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiCompleter{client: client, model: model, log: log}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	output := strings.TrimSpace(resp.Text())
	g.log.Debug("gemini response", zap.String("model", g.model), zap.Int("length", len(output)))

	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}
