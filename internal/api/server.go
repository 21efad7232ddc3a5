// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/prosepilot/api/internal/book"
	"github.com/prosepilot/api/internal/chapter"
	"github.com/prosepilot/api/internal/feed"
	"github.com/prosepilot/api/internal/platform/config"
	"github.com/prosepilot/api/internal/platform/constants"
	"github.com/prosepilot/api/internal/platform/middleware"
	"github.com/prosepilot/api/internal/reference"
	"github.com/prosepilot/api/internal/version"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Book handles the library and the book lifecycle.
	Book *book.Handler

	// Chapter handles the ordered chapter collection.
	Chapter *chapter.Handler

	// Version handles chapter content histories.
	Version *version.Handler

	// Reference serves the language and category vocabularies.
	Reference *reference.Handler

	// Feed is the websocket fan-out for change notifications.
	Feed *feed.Hub
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The /books and /chapters groups are composed here rather than mounted
// whole: the chapter collection lives under /books/{bookID}, and the
// chapter item and version history endpoints share the /chapters root.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/books", func(books chi.Router) {
			books.Use(middleware.RequireAuth)
			h.Book.Register(books)
			books.Mount("/{bookID}/chapters", h.Chapter.BookRoutes())
		})

		api.Route("/chapters", func(chapters chi.Router) {
			chapters.Use(middleware.RequireAuth)
			h.Chapter.Register(chapters)
			h.Version.Register(chapters)
		})

		api.With(middleware.RequireAuth).Handle("/feed", h.Feed)

		api.Mount("/", h.Reference.Routes())
	})

	// # Internal API
	// Service-to-service surface, guarded by the service role claim.
	r.Route("/internal", func(internal chi.Router) {
		internal.Mount("/books", h.Book.InternalRoutes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
