// HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/zohaibasghar/portfolio-server/internal/api"
	"github.com/zohaibasghar/portfolio-server/internal/domain/content"
	"github.com/zohaibasghar/portfolio-server/internal/infra/ai"
	"github.com/zohaibasghar/portfolio-server/internal/infra/config"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration. The write
// timeout leaves headroom for one full upstream generation call.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server and the content database.
type Server struct {
	config Config
	db     *sql.DB
	http   *http.Server
}

// New builds the provider from configuration, initializes the content
// store and wires the router. A hopeless provider configuration fails
// here, before the server ever accepts a request.
func New(db *sql.DB, appCfg config.Config, cfg Config) (*Server, error) {
	provider, err := ai.NewProviderFromConfig(appCfg)
	if err != nil {
		return nil, err
	}

	store := content.NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}

	router := api.NewRouter(provider, store, !appCfg.IsProduction())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		config: cfg,
		db:     db,
		http:   httpServer,
	}, nil
}

// Start starts the HTTP server and blocks until an error occurs.
func (s *Server) Start(ctx context.Context) error {
	log.Printf("starting HTTP server on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes the database connection.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("shutting down server...")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("database close error: %w", err)
	}

	log.Printf("server shutdown complete")
	return nil
}
