package factory

import (
	"fmt"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/pkg/embedding"
	"github.com/mustafa-mbari/aiwmsa/pkg/llm"
	llmopenai "github.com/mustafa-mbari/aiwmsa/pkg/llm/openai"
)

func NewLLMProvider(cfg *config.Config, usage embedding.UsageSink) (llm.Provider, error) {
	switch cfg.Ai.LLMProvider {
	case "openai":
		return llmopenai.NewOpenAIProvider(
			cfg.Keys.OpenAI,
			cfg.Ai.LLMModel,
			cfg.Ai.BaseURL,
			cfg.Ai.RequestTimeout,
			cfg.Ai.MaxRetries,
			usage,
		), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Ai.LLMProvider)
	}
}

func NewEmbeddingProvider(cfg *config.Config, usage embedding.UsageSink) (embedding.Provider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "openai":
		return embedding.NewOpenAIProvider(
			cfg.Keys.OpenAI,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.BaseURL,
			cfg.Ai.MaxInputChars,
			cfg.Ai.MaxRetries,
			cfg.Ai.BatchSize,
			cfg.Ai.RequestTimeout,
			cfg.Ai.BatchDelay,
			usage,
		), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}
