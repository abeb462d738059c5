// Package llm builds the chat models and embedders used by the agents.
package llm

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"ragrouter/src/config"
)

var ErrUnknownProvider = errors.New("unknown llm provider")

const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// resolve treats an empty provider as OpenAI and fills unset models with the
// provider's defaults.
func resolve(cfg config.LLM) config.LLM {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	return cfg.WithDefaults()
}

// NewModel returns the chat model for cfg.Provider. Temperature is chosen per
// call with llms.WithTemperature.
func NewModel(cfg config.LLM) (llms.Model, error) {
	cfg = resolve(cfg)
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai model: %w", err)
		}
		return llm, nil

	case ProviderOllama:
		llm, err := ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.OllamaURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama model: %w", err)
		}
		return llm, nil

	case ProviderAnthropic:
		llm, err := anthropic.New(anthropic.WithToken(cfg.APIKey), anthropic.WithModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic model: %w", err)
		}
		return llm, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}

// NewEmbedder returns the embedding client for cfg. Anthropic has no
// embedding endpoint, so it embeds through the configured Ollama server.
func NewEmbedder(cfg config.LLM) (embeddings.Embedder, error) {
	var client embeddings.EmbedderClient

	cfg = resolve(cfg)
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithEmbeddingModel(cfg.EmbeddingModel)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai embedder: %w", err)
		}
		client = llm

	case ProviderOllama, ProviderAnthropic:
		llm, err := ollama.New(ollama.WithModel(cfg.EmbeddingModel), ollama.WithServerURL(cfg.OllamaURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama embedder: %w", err)
		}
		client = llm

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}
