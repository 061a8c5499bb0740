package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/loom/internal/metrics"
	"github.com/MikeSquared-Agency/loom/internal/processor"
	"github.com/MikeSquared-Agency/loom/internal/reconcile"
)

type Server struct {
	router  *chi.Mux
	port    int
	manager *reconcile.Manager
	source  processor.HistorySource // optional; nil when no history store is configured
}

func NewServer(port int, apiToken string, manager *reconcile.Manager, source processor.HistorySource) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		manager: manager,
		source:  source,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/loom/status", s.status)
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/{sessionID}/reconcile", s.reconcileSession)
		r.Get("/{sessionID}/timeline", s.sessionTimeline)
		r.Get("/{sessionID}/citation", s.sessionCitation)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"agent":  "loom",
		"status": "serving",
	})
}
