package app

import (
	"context"
	"testing"

	"allergyguard/internal/config"
	"allergyguard/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCompleterFallsBackWhenKeyMissing(t *testing.T) {
	for _, provider := range []string{"gemini", "openai"} {
		cfg := &config.AI{LLMProvider: provider, GeminiModel: "gemini-2.0-flash"}

		completer, err := NewCompleter(context.Background(), cfg, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, llm.Unconfigured{}, completer, provider)
	}
}

func TestNewCompleterOpenAI(t *testing.T) {
	cfg := &config.AI{LLMProvider: "openai", OpenAIAPIKey: "sk-test", OpenAIModel: "gpt-4"}

	completer, err := NewCompleter(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAICompleter{}, completer)
}
