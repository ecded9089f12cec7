package scriptgen

import (
	"context"
	"fmt"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIGenerator struct {
	client openai.Client
	model  string
	hook   UsageHook
	logger *Logger.Logger
}

// NewOpenAI builds a Generator over an OpenAI-compatible completion endpoint.
// A custom base URL supports Azure-style deployments.
func NewOpenAI(cfg config.GenerationConfig, hook UsageHook, logger *Logger.Logger) Generator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIGenerator{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		hook:   hook,
		logger: logger,
	}
}

// Generate implements Generator.
func (o *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: openai.ChatModel(o.model),
		},
	)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}

	if o.hook != nil {
		o.hook(ctx, Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
		})
	}

	return completion.Choices[0].Message.Content, nil
}
