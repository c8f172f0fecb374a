// Package server wires the HTTP surface: the websocket interview channel,
// the session history endpoint, and the thin job-board REST handlers.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/talentbridge/talentbridge/internal/interview"
	"github.com/talentbridge/talentbridge/internal/storage"
)

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
}

func New(port int, logger *slog.Logger, orch *interview.Orchestrator, store storage.Store) *Server {
	h := &handlers{logger: logger, orch: orch, store: store}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	// The websocket route stays outside the timeout chain: connections are
	// long-lived and the upgrade needs the raw response writer.
	r.Get("/ws", h.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(TimeoutMiddleware(30 * time.Second))
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "talentbridge")
		})

		r.Get("/healthz", h.handleHealth)
		r.Get("/session/{sessionID}", h.handleSessionHistory)

		r.Route("/api", func(r chi.Router) {
			r.Post("/users/register", h.handleRegister)
			r.Post("/users/login", h.handleLogin)
			r.Get("/users", h.handleListUsers)

			r.Post("/jobs", h.handleCreateJob)
			r.Get("/jobs", h.handleListJobs)
			r.Get("/jobs/{jobID}", h.handleGetJob)

			r.Post("/applications", h.handleCreateApplication)
			r.Get("/applications", h.handleListApplications)
			r.Put("/applications/{applicationID}", h.handleUpdateApplicationStatus)

			r.Get("/dashboard", h.handleDashboard)
		})
	})

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
	}
}

// Addr is the listen address derived from the configured port.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
