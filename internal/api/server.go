// Package api exposes the webhook ingestion endpoint, the event query
// façade, and the realtime stream over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/phishsim-monitor/internal/config"
	"github.com/ignite/phishsim-monitor/internal/notify"
	"github.com/ignite/phishsim-monitor/internal/service/event"
	"github.com/ignite/phishsim-monitor/internal/webhook"
)

// Server is the HTTP front of the ingestion pipeline and query façade.
type Server struct {
	cfg    config.Config
	ingest *webhook.Service
	events *event.Service
	hub    *notify.Hub
	health *HealthChecker
	router *chi.Mux
	server *http.Server
}

// NewServer assembles the router over the given services.
func NewServer(cfg config.Config, ingest *webhook.Service, events *event.Service, hub *notify.Hub, health *HealthChecker) *Server {
	s := &Server{
		cfg:    cfg,
		ingest: ingest,
		events: events,
		hub:    hub,
		health: health,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health.HandleHealth)

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/", s.HandleIngest)
		r.Get("/", s.HandleList)
		r.Delete("/", s.HandleClearAll)
		r.Get("/stream", s.HandleStream)
		r.Route("/campaign/{campaignID}", func(r chi.Router) {
			r.Get("/", s.HandleListByCampaign)
			r.Delete("/", s.HandleClearCampaign)
		})
	})

	return r
}

// Handler returns the assembled router (exposed for tests).
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		IdleTimeout:  120 * time.Second,
		// No WriteTimeout: the SSE stream is a long-lived response.
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
