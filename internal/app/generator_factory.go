package app

import (
	"fmt"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/cryptocast/cryptocast/pkg/scriptgen"
)

// NewGenerator builds the script generator named by config. Ollama serves
// local development; openai covers hosted and Azure-style deployments.
func NewGenerator(cfg config.GenerationConfig, hook scriptgen.UsageHook, logger *Logger.Logger) (scriptgen.Generator, error) {
	switch cfg.Provider {
	case "openai", "":
		return scriptgen.NewOpenAI(cfg, hook, logger), nil
	case "ollama":
		return scriptgen.NewOllama(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
