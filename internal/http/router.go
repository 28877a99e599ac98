package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookchat/internal/handlers"
	"bookchat/internal/ingest"
	"bookchat/internal/rag"
	"bookchat/internal/retrieval"
	"bookchat/internal/service"
	"bookchat/internal/storage"
	"bookchat/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	IngestPipeline *ingest.Pipeline
	Retriever      *retrieval.Router
	Engine         *rag.Engine
	Sessions       *service.SessionService
	Books          storage.BookStore
	VectorStore    vectorstore.VectorStore
	Collection     string
	APIToken       string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	queryHandler := handlers.NewQueryHandler(deps.Retriever, deps.Engine, deps.Sessions)
	ingestHandler := handlers.NewIngestHandler(deps.IngestPipeline)
	bookHandler := handlers.NewBookHandler(deps.Books)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Method(http.MethodGet, "/api/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(deps.APIToken))

		r.Method(http.MethodPost, "/query", queryHandler)
		r.Method(http.MethodPost, "/books/ingest", ingestHandler)
		r.Get("/books/{bookID}", bookHandler.Get)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/{sessionID}", sessionHandler.Get)
			r.Get("/{sessionID}/history", sessionHandler.History)
			r.Post("/{sessionID}/select-text", sessionHandler.SelectText)
		})
	})

	return r
}
