// Package config loads runtime settings from viper and validates them.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var ErrMissingEnvironment = errors.New("missing required environment variables")

// Model defaults per provider, applied by Load when the value is unset.
var providerDefaults = map[string]struct{ model, embeddingModel string }{
	"openai":    {"gpt-3.5-turbo", "text-embedding-ada-002"},
	"ollama":    {"llama3.2", "nomic-embed-text"},
	"anthropic": {"claude-3-haiku-20240307", "nomic-embed-text"},
}

// apiKeyPaths holds the viper keys bound to each provider's key variable.
var apiKeyPaths = map[string]string{
	"openai":    "llm.openai_api_key",
	"anthropic": "llm.anthropic_api_key",
}

type LLM struct {
	Provider       string `mapstructure:"provider" validate:"oneof=openai ollama anthropic"`
	APIKey         string `mapstructure:"api_key" validate:"required_unless=Provider ollama"`
	Model          string `mapstructure:"model"`
	BaseURL        string `mapstructure:"base_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	OllamaURL      string `mapstructure:"ollama_url"`
}

type RAG struct {
	DataDir      string `mapstructure:"data_dir" validate:"required"`
	Source       string `mapstructure:"source" validate:"oneof=local minio"`
	ChunkSize    int    `mapstructure:"chunk_size" validate:"gt=0"`
	ChunkOverlap int    `mapstructure:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	TopK         int    `mapstructure:"top_k" validate:"gt=0"`
	Reindex      bool   `mapstructure:"reindex"`
}

type VectorStore struct {
	Backend     string `mapstructure:"backend" validate:"oneof=weaviate qdrant"`
	IndexPrefix string `mapstructure:"index_prefix" validate:"required"`
}

type Weaviate struct {
	URL    string `mapstructure:"url"`
	Scheme string `mapstructure:"scheme"`
	// HybridAlpha > 0 blends keyword and vector search.
	HybridAlpha float32 `mapstructure:"hybrid_alpha" validate:"gte=0,lte=1"`
}

type Qdrant struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
	UseTLS bool   `mapstructure:"use_tls"`
}

type Minio struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type Tracing struct {
	Backend string `mapstructure:"backend" validate:"oneof=none postgres elasticsearch"`
	Index   string `mapstructure:"index"`
}

type Elasticsearch struct {
	URL string `mapstructure:"url"`
}

type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// DSN returns the libpq connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		p.Host, p.User, p.Password, p.DB, p.Port)
}

type AMQP struct {
	URL string `mapstructure:"url"`
}

type Server struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Settings is the full runtime configuration.
type Settings struct {
	LLM           LLM           `mapstructure:"llm"`
	RAG           RAG           `mapstructure:"rag"`
	VectorStore   VectorStore   `mapstructure:"vector_store"`
	Weaviate      Weaviate      `mapstructure:"weaviate"`
	Qdrant        Qdrant        `mapstructure:"qdrant"`
	Minio         Minio         `mapstructure:"minio"`
	Tracing       Tracing       `mapstructure:"tracing"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Postgres      Postgres      `mapstructure:"postgres"`
	AMQP          AMQP          `mapstructure:"amqp"`
	Server        Server        `mapstructure:"server"`
	Log           Log           `mapstructure:"log"`
}

// Load reads Settings from v. The API key comes from the variable of the
// selected provider unless llm.api_key is set explicitly.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.LLM.APIKey == "" {
		if path, ok := apiKeyPaths[s.LLM.Provider]; ok {
			s.LLM.APIKey = v.GetString(path)
		}
	}
	s.LLM = s.LLM.WithDefaults()
	return &s, nil
}

// WithDefaults fills an empty chat or embedding model with the provider's
// default. Unknown providers are returned unchanged.
func (l LLM) WithDefaults() LLM {
	d, ok := providerDefaults[l.Provider]
	if !ok {
		return l
	}
	if l.Model == "" {
		l.Model = d.model
	}
	if l.EmbeddingModel == "" {
		l.EmbeddingModel = d.embeddingModel
	}
	return l
}

// envNames maps validated fields to the environment variables that feed them.
var envNames = map[string]string{
	"Settings.RAG.DataDir":             "RAG_DATA_DIR",
	"Settings.VectorStore.IndexPrefix": "VECTOR_STORE_INDEX_PREFIX",
}

// APIKeyEnv names the environment variable that carries the provider key.
func (l LLM) APIKeyEnv() string {
	if l.Provider == "anthropic" {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// Validate checks the settings. Absent required values are reported together
// as ErrMissingEnvironment naming the environment variables to set.
func (s *Settings) Validate() error {
	err := validator.New().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate settings: %w", err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_unless":
			name, ok := envNames[fe.Namespace()]
			switch {
			case fe.Namespace() == "Settings.LLM.APIKey":
				name = s.LLM.APIKeyEnv()
			case !ok:
				name = fe.Namespace()
			}
			missing = append(missing, name)
		default:
			invalid = append(invalid, fmt.Sprintf("%s (%s=%s, got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrMissingEnvironment, strings.Join(missing, ", "))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(invalid, "; "))
}

// TracingConfigured reports whether query traces leave the process.
func (s *Settings) TracingConfigured() bool {
	return s.Tracing.Backend != "" && s.Tracing.Backend != "none"
}
