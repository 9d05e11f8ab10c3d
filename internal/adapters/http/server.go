// Package http exposes the read side of an optimization run's lifecycle —
// listing runs, inspecting a run's trial history, and streaming live
// progress — over chi-routed HTTP and a WebSocket upgrade. The WebSocket
// route relays only updates handed to this server's broadcaster; the
// `optimize run` command publishes with no broadcaster, so runs it starts
// send nothing over this route. The optimizer
// core itself has no network surface (see internal/optimizer's Non-goals);
// this package is purely the ambient operational layer around it.
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/longregen/promptune/internal/adapters/http/handlers"
	"github.com/longregen/promptune/internal/adapters/http/middleware"
	"github.com/longregen/promptune/internal/adapters/progress"
	"github.com/longregen/promptune/internal/config"
	"github.com/longregen/promptune/internal/ports"
)

type Server struct {
	config      *config.Config
	router      *chi.Mux
	httpServer  *http.Server
	runsRepo    ports.OptimizationRunRepository
	broadcaster *progress.WebSocketBroadcaster
}

func NewServer(cfg *config.Config, runsRepo ports.OptimizationRunRepository, broadcaster *progress.WebSocketBroadcaster) *Server {
	s := &Server{
		config:      cfg,
		runsRepo:    runsRepo,
		broadcaster: broadcaster,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(s.config.Server.CORSOrigins))
	r.Use(middleware.Metrics)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	runsHandler := handlers.NewRunsHandler(s.runsRepo)
	progressHandler := handlers.NewProgressWSHandler(s.broadcaster, s.config.Server.CORSOrigins)

	r.Route("/api/v1/runs", func(r chi.Router) {
		r.Get("/", runsHandler.List)
		r.Get("/{id}", runsHandler.Get)
		r.Get("/{id}/trials", runsHandler.Trials)
		r.Get("/{id}/best", runsHandler.Best)
		r.Get("/{id}/progress/ws", progressHandler.Handle)
	})

	s.router = r
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout; progress websocket streams indefinitely
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("starting HTTP server on %s", addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Println("shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
