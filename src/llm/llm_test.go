package llm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragrouter/src/config"
	"ragrouter/src/llm"
)

func TestNewModel(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLM
		wantErr error
	}{
		{"openai", config.LLM{Provider: "openai", APIKey: "sk-test", Model: "gpt-3.5-turbo"}, nil},
		{"openai is the default provider", config.LLM{APIKey: "sk-test"}, nil},
		{"ollama", config.LLM{Provider: "ollama", Model: "llama3", OllamaURL: "http://localhost:11434"}, nil},
		{"ollama without a model", config.LLM{Provider: "ollama", OllamaURL: "http://localhost:11434"}, nil},
		{"anthropic without a model", config.LLM{Provider: "anthropic", APIKey: "key"}, nil},
		{"anthropic", config.LLM{Provider: "anthropic", APIKey: "key", Model: "claude-3-haiku-20240307"}, nil},
		{"unknown", config.LLM{Provider: "bard"}, llm.ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := llm.NewModel(tt.cfg)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, model)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, model)
		})
	}
}

func TestNewEmbedder(t *testing.T) {
	e, err := llm.NewEmbedder(config.LLM{Provider: "openai", APIKey: "sk-test", EmbeddingModel: "text-embedding-ada-002"})
	require.NoError(t, err)
	assert.NotNil(t, e)

	e, err = llm.NewEmbedder(config.LLM{Provider: "ollama", OllamaURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.NotNil(t, e)

	e, err = llm.NewEmbedder(config.LLM{Provider: "anthropic", OllamaURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.NotNil(t, e)

	_, err = llm.NewEmbedder(config.LLM{Provider: "bard"})
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}
