package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"bookchat/internal/chunker"
	"bookchat/internal/config"
	"bookchat/internal/http"
	"bookchat/internal/ingest"
	"bookchat/internal/llm"
	"bookchat/internal/rag"
	"bookchat/internal/retrieval"
	"bookchat/internal/service"
	"bookchat/internal/storage"
	"bookchat/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("Invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	bookRepo := storage.NewBookRepo(db)
	sessionRepo := storage.NewSessionRepo(db)
	conversationRepo := storage.NewConversationRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Providers are chosen explicitly at construction. The stub variants are
	// for local development without credentials.
	var embedder llm.Embedder
	var generator llm.Generator
	if cfg.Provider == config.ProviderStub {
		embedder = llm.NewStubEmbedder(cfg.QdrantVectorSize)
		generator = llm.NewStubGenerator()
		slog.Warn("Using stub embedding and generation providers")
	} else {
		embeddings := llm.NewEmbeddingsClient(cfg.CohereBaseURL, cfg.CohereAPIKey, cfg.EmbeddingModel, cfg.QdrantVectorSize)

		// Validate embedding dimensionality up front (fail-fast)
		testEmbeddings, err := embeddings.EmbedDocuments(ctx, []string{"test"})
		if err != nil {
			log.Fatalf("Failed to validate embedding client: %v", err)
		}
		if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
			log.Fatalf("Embedding vector size mismatch: expected %d", cfg.QdrantVectorSize)
		}
		slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

		embedder = embeddings
		generator = llm.NewGenerationClient(cfg.CohereBaseURL, cfg.CohereAPIKey, cfg.GenerationModel)
	}

	tokenizer, err := chunker.NewTiktokenTokenizer()
	if err != nil {
		log.Fatalf("Failed to load tokenizer: %v", err)
	}

	ingestPipeline := ingest.NewPipeline(
		chunker.New(tokenizer),
		embedder,
		vectorStore,
		bookRepo,
		cfg.QdrantCollection,
		cfg.ChunkMaxTokens,
		cfg.ChunkOverlapTokens,
	)

	retriever := retrieval.NewRouter(embedder, vectorStore, cfg.QdrantCollection, cfg.TopK)
	engine := rag.NewEngine(generator, cfg.GenerationMaxTokens, cfg.CitationExcerptChars)
	sessions := service.NewSessionService(sessionRepo, conversationRepo, bookRepo)
	slog.Info("Query pipeline initialized", "top_k", cfg.TopK, "generation_max_tokens", cfg.GenerationMaxTokens)

	router := http.NewRouter(&http.Deps{
		IngestPipeline: ingestPipeline,
		Retriever:      retriever,
		Engine:         engine,
		Sessions:       sessions,
		Books:          bookRepo,
		VectorStore:    vectorStore,
		Collection:     cfg.QdrantCollection,
		APIToken:       cfg.APIToken,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
