package scriptgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/ollama/ollama/api"
)

// ollamaGenerator runs generation against a local Ollama server. Used for
// development so the full broadcast loop works without hosted credentials.
type ollamaGenerator struct {
	client *api.Client
	model  string
	logger *Logger.Logger
}

func NewOllama(cfg config.GenerationConfig, logger *Logger.Logger) (Generator, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	return &ollamaGenerator{
		client: api.NewClient(base, http.DefaultClient),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Generate implements Generator. Ollama streams deltas; they are joined into
// one transcript before returning since scripts are parsed whole.
func (g *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var sb strings.Builder
	req := api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
	}

	err := g.client.Chat(ctx, &req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	return sb.String(), nil
}
