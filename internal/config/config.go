package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Auth
	JWTSecret       string
	TokenExpiration int // minutes
	BcryptCost      int
	AskAuthRequired bool
	UsersDBPath     string

	// Document storage
	DocsDir     string
	MaxFileSize int64

	// Chunking / retrieval
	MaxChunkSize  int
	ChunkOverlap  int
	RetrievalTopK int

	// Model providers
	EmbeddingsProvider    string // "ollama" (default), "google"
	LLMProvider           string // "ollama" (default), "google"
	OllamaURL             string
	EmbeddingModel        string
	LLMModel              string
	LLMTimeout            int // seconds
	GeminiAPIKey          string
	GoogleEmbeddingsModel string

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "*"), ","),

		JWTSecret:       getEnv("SECRET_KEY", ""),
		TokenExpiration: getEnvInt("TOKEN_EXPIRATION_MINUTES", 30),
		BcryptCost:      getEnvInt("BCRYPT_COST", 12),
		AskAuthRequired: getEnvBool("ASK_AUTH_REQUIRED", true),
		UsersDBPath:     getEnv("USERS_DB_PATH", "./local-llm.db"),

		DocsDir:     getEnv("DOCS_DIR", "./docs"),
		MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB

		MaxChunkSize:  getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 200),
		RetrievalTopK: getEnvInt("RETRIEVAL_TOP_K", 4),

		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "ollama"),
		LLMProvider:           getEnv("LLM_PROVIDER", "ollama"),
		OllamaURL:             getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel:        getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		LLMModel:              getEnv("LLM_MODEL", "mistral"),
		LLMTimeout:            getEnvInt("LLM_TIMEOUT", 500),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("SECRET_KEY is required - set it in .env file")
	}

	if cfg.EmbeddingsProvider == "google" || cfg.LLMProvider == "google" {
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when a google provider is selected")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
