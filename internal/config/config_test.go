package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROVIDER", "stub")
	t.Setenv("COHERE_API_KEY", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.QdrantCollection != "book_content_chunks" {
		t.Errorf("QdrantCollection = %q", cfg.QdrantCollection)
	}
	if cfg.QdrantVectorSize != 1024 {
		t.Errorf("QdrantVectorSize = %d, want 1024", cfg.QdrantVectorSize)
	}
	if cfg.ChunkMaxTokens != 1000 || cfg.ChunkOverlapTokens != 200 {
		t.Errorf("chunking defaults = %d/%d, want 1000/200", cfg.ChunkMaxTokens, cfg.ChunkOverlapTokens)
	}
	if cfg.TopK != 4 {
		t.Errorf("TopK = %d, want 4", cfg.TopK)
	}
	if cfg.GenerationMaxTokens != 300 {
		t.Errorf("GenerationMaxTokens = %d, want 300", cfg.GenerationMaxTokens)
	}
	if cfg.CitationExcerptChars != 200 {
		t.Errorf("CitationExcerptChars = %d, want 200", cfg.CitationExcerptChars)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("QDRANT_VECTOR_SIZE", "384")
	t.Setenv("TOP_K", "8")
	t.Setenv("CITATION_EXCERPT_CHARS", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.QdrantVectorSize != 384 || cfg.TopK != 8 || cfg.CitationExcerptChars != 120 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad vector size", "QDRANT_VECTOR_SIZE", "abc", "QDRANT_VECTOR_SIZE"},
		{"zero vector size", "QDRANT_VECTOR_SIZE", "0", "QDRANT_VECTOR_SIZE"},
		{"overlap >= max", "CHUNK_OVERLAP_TOKENS", "1000", "CHUNK_OVERLAP_TOKENS"},
		{"negative overlap", "CHUNK_OVERLAP_TOKENS", "-1", "CHUNK_OVERLAP_TOKENS"},
		{"zero top_k", "TOP_K", "0", "TOP_K"},
		{"bad provider", "PROVIDER", "fake", "PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_RealProviderRequiresKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PROVIDER", "real")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail when PROVIDER=real without COHERE_API_KEY")
	}

	t.Setenv("COHERE_API_KEY", "key")
	if _, err := Load(); err != nil {
		t.Errorf("Load() unexpected error with key set: %v", err)
	}
}
