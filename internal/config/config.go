package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Provider modes for the embedding/generation backends.
const (
	ProviderReal = "real"
	ProviderStub = "stub"
)

// Config holds all configuration for the application.
type Config struct {
	Provider             string
	CohereBaseURL        string
	CohereAPIKey         string
	EmbeddingModel       string
	GenerationModel      string
	GenerationMaxTokens  int
	QdrantURL            string
	QdrantCollection     string
	QdrantVectorSize     int
	ChunkMaxTokens       int
	ChunkOverlapTokens   int
	TopK                 int
	CitationExcerptChars int
	DBPath               string
	APIPort              string
	APIToken             string
	LogLevel             string
	LogFormat            string
}

// Load reads configuration from environment variables and returns a Config
// struct. It applies defaults for optional fields and validates required
// fields. If a .env file exists in the current directory or project root, it
// is loaded automatically; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env next to go.mod (project root)
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		Provider:        getEnv("PROVIDER", ProviderReal),
		CohereBaseURL:   getEnv("COHERE_BASE_URL", "https://api.cohere.ai"),
		CohereAPIKey:    getEnv("COHERE_API_KEY", ""),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "embed-english-v3.0"),
		GenerationModel: getEnv("GENERATION_MODEL", "command-r-plus"),
		QdrantURL:       getEnv("QDRANT_URL", "http://localhost:6333"),
		// Collection name is fixed per deployment; changing it orphans
		// previously indexed chunks.
		QdrantCollection: getEnv("QDRANT_COLLECTION", "book_content_chunks"),
		DBPath:           getEnv("DB_PATH", "./data/bookchat.db"),
		APIPort:          getEnv("API_PORT", "8080"),
		APIToken:         getEnv("API_TOKEN", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
	}

	if cfg.Provider != ProviderReal && cfg.Provider != ProviderStub {
		return nil, fmt.Errorf("PROVIDER must be %q or %q", ProviderReal, ProviderStub)
	}
	if cfg.Provider == ProviderReal && cfg.CohereAPIKey == "" {
		return nil, fmt.Errorf("COHERE_API_KEY is required when PROVIDER=%s", ProviderReal)
	}

	// Must match the embedding model's output dimensionality. If it changes,
	// the Qdrant collection must be recreated.
	vectorSize, err := getEnvInt("QDRANT_VECTOR_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	if cfg.ChunkMaxTokens, err = getEnvInt("CHUNK_MAX_TOKENS", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlapTokens, err = getEnvInt("CHUNK_OVERLAP_TOKENS", 200); err != nil {
		return nil, err
	}
	if cfg.ChunkMaxTokens <= 0 {
		return nil, fmt.Errorf("CHUNK_MAX_TOKENS must be greater than 0")
	}
	if cfg.ChunkOverlapTokens < 0 || cfg.ChunkOverlapTokens >= cfg.ChunkMaxTokens {
		return nil, fmt.Errorf("CHUNK_OVERLAP_TOKENS must be in [0, CHUNK_MAX_TOKENS)")
	}

	if cfg.TopK, err = getEnvInt("TOP_K", 4); err != nil {
		return nil, err
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K must be greater than 0")
	}
	if cfg.GenerationMaxTokens, err = getEnvInt("GENERATION_MAX_TOKENS", 300); err != nil {
		return nil, err
	}
	if cfg.GenerationMaxTokens <= 0 {
		return nil, fmt.Errorf("GENERATION_MAX_TOKENS must be greater than 0")
	}
	if cfg.CitationExcerptChars, err = getEnvInt("CITATION_EXCERPT_CHARS", 200); err != nil {
		return nil, err
	}
	if cfg.CitationExcerptChars <= 0 {
		return nil, fmt.Errorf("CITATION_EXCERPT_CHARS must be greater than 0")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}
