package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lumenlabs/kbpipe/internal/api"
	"github.com/lumenlabs/kbpipe/internal/api/handlers"
	"github.com/lumenlabs/kbpipe/internal/api/middleware"
)

type RouterConfig struct {
	EmbeddingHandler *handlers.EmbeddingHandler
	SearchHandler    *handlers.SearchHandler
	StatsHandler     *handlers.StatsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/embeddings", cfg.EmbeddingHandler.Create)
	r.Post("/search", cfg.SearchHandler.Search)
	r.Get("/stats", cfg.StatsHandler.Get)

	return r
}
