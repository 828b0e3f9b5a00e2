// Route registration and go-chi router setup.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/zohaibasghar/portfolio-server/internal/api/handlers"
	"github.com/zohaibasghar/portfolio-server/internal/domain/content"
	"github.com/zohaibasghar/portfolio-server/internal/infra/ai"
)

// NewRouter creates and configures the chi router. The provider is built
// once at startup; each chat turn is stateless, so sharing it across
// concurrent requests needs no locking.
func NewRouter(provider ai.Provider, store *content.Store, exposeDetails bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check — used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	chatHandler := handlers.NewChatHandler(provider, exposeDetails)
	contentHandler := handlers.NewContentHandler(store)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)              // POST /api/chat
		r.Get("/content/{table}", contentHandler.List) // GET /api/content/{table}
	})

	return r
}
