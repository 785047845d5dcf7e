// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ceylonmate/culture-kb/internal/answer"
	"github.com/ceylonmate/culture-kb/internal/embedder"
	"github.com/ceylonmate/culture-kb/internal/storage"
)

const (
	DefaultStorageDriver     = "mongodb"
	DefaultSQLitePath        = ".ceylonmate/knowledge.db"
	DefaultEmbeddingProvider = embedder.ProviderHuggingFace
	DefaultEmbeddingModel    = "sentence-transformers/all-mpnet-base-v2"
	DefaultOllamaURL         = "http://localhost:11434"
	DefaultCatalog           = "data/cultural_knowledge.yaml"
	DefaultLogLevel          = "info"
	DefaultLogHandler        = "text"
)

// Config is the full set of environment-driven settings
type Config struct {
	// Storage
	StorageDriver string
	MongoURI      string
	MongoDatabase string
	Collection    string
	VectorIndex   string
	PostgresDSN   string
	SQLitePath    string

	// Embedding
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingDimensions int
	HFToken             string
	HFInferenceURL      string
	OllamaURL           string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	// EmbedRate is embedding requests per second; 0 disables pacing
	EmbedRate float64

	// Answer generation; Ask is disabled without GroqAPIKey
	GroqAPIKey    string
	AnswerModel   string
	AnswerBaseURL string

	GeminiAPIKey string
	Catalog      string

	LogLevel   string
	LogHandler string
}

// Load reads the given .env files (default ".env") into the process
// environment without overriding variables that are already set, then
// builds a Config. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		StorageDriver:     getEnv("KB_STORAGE_DRIVER", DefaultStorageDriver),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     getEnv("MONGO_DATABASE", storage.DefaultDatabase),
		Collection:        getEnv("KB_COLLECTION", storage.DefaultCollection),
		VectorIndex:       getEnv("KB_VECTOR_INDEX", storage.DefaultVectorIndex),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		SQLitePath:        getEnv("KB_SQLITE_PATH", DefaultSQLitePath),
		EmbeddingProvider: getEnv("KB_EMBEDDING_PROVIDER", DefaultEmbeddingProvider),
		EmbeddingModel:    getEnv("KB_EMBEDDING_MODEL", DefaultEmbeddingModel),
		HFToken:           os.Getenv("HF_TOKEN"),
		HFInferenceURL:    getEnv("HF_INFERENCE_URL", embedder.DefaultHuggingFaceURL),
		OllamaURL:         getEnv("OLLAMA_URL", DefaultOllamaURL),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		AnswerModel:       getEnv("KB_ANSWER_MODEL", answer.DefaultModel),
		AnswerBaseURL:     getEnv("KB_ANSWER_BASE_URL", answer.DefaultBaseURL),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		Catalog:           getEnv("KB_CATALOG", DefaultCatalog),
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		LogHandler:        getEnv("LOG_HANDLER", DefaultLogHandler),
	}

	dims, err := strconv.Atoi(getEnv("KB_EMBEDDING_DIMENSIONS", strconv.Itoa(storage.DefaultDimensions)))
	if err != nil || dims <= 0 {
		return nil, fmt.Errorf("invalid KB_EMBEDDING_DIMENSIONS: %q", os.Getenv("KB_EMBEDDING_DIMENSIONS"))
	}
	cfg.EmbeddingDimensions = dims

	embedRate, err := strconv.ParseFloat(getEnv("KB_EMBED_RATE", "0"), 64)
	if err != nil || embedRate < 0 {
		return nil, fmt.Errorf("invalid KB_EMBED_RATE: %q", os.Getenv("KB_EMBED_RATE"))
	}
	cfg.EmbedRate = embedRate

	return cfg, nil
}

// Storage returns the storage settings
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Driver:             c.StorageDriver,
		Collection:         c.Collection,
		Dimensions:         c.EmbeddingDimensions,
		SQLitePath:         c.SQLitePath,
		PostgresDSN:        c.PostgresDSN,
		MongoDBURI:         c.MongoURI,
		MongoDBDatabase:    c.MongoDatabase,
		MongoDBVectorIndex: c.VectorIndex,
	}
}

// Embedder returns the embedding provider settings
func (c *Config) Embedder() embedder.Config {
	cfg := embedder.Config{
		Provider: c.EmbeddingProvider,
		Model:    c.EmbeddingModel,
	}
	switch c.EmbeddingProvider {
	case embedder.ProviderOllama:
		cfg.BaseURL = c.OllamaURL
	case embedder.ProviderOpenAI:
		cfg.BaseURL = c.OpenAIBaseURL
		cfg.Token = c.OpenAIAPIKey
	default:
		cfg.BaseURL = c.HFInferenceURL
		cfg.Token = c.HFToken
	}
	return cfg
}

// AnswerEnabled reports whether a chat API key is configured
func (c *Config) AnswerEnabled() bool {
	return c.GroqAPIKey != ""
}

// Answer returns the chat model settings
func (c *Config) Answer() answer.Config {
	return answer.Config{
		BaseURL: c.AnswerBaseURL,
		Model:   c.AnswerModel,
		Token:   c.GroqAPIKey,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
