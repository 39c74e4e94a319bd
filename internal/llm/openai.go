package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

type OpenAICompleter struct {
	client openai.Client
	model  string
	log    *zap.Logger
}

func NewOpenAICompleter(apiKey, model string, log *zap.Logger, opts ...option.RequestOption) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing OPENAI_API_KEY", ErrNotConfigured)
	}
	if model == "" {
		model = string(shared.ChatModelGPT4)
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAICompleter{
		client: openai.NewClient(opts...),
		model:  model,
		log:    log,
	}, nil
}

func (o *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.model),
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	output := strings.TrimSpace(completion.Choices[0].Message.Content)
	o.log.Debug("openai response", zap.String("model", o.model), zap.Int("length", len(output)))

	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}
