// Package api serves the scorebook REST API and the live scoreboard
// websocket feed.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/rlattimer/scorebook/internal/api/websocket"
	"github.com/rlattimer/scorebook/internal/config"
	"github.com/rlattimer/scorebook/internal/storage"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	// Hub for live scoreboard clients.
	hub *websocket.Hub

	// Token bucket guarding mutation routes.
	limiter *rate.Limiter

	service *storage.Service
}

// NewServer creates a new API server around the storage service.
func NewServer(cfg config.APIConfig, service *storage.Service) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		port:    cfg.Port,
		hub:     websocket.NewHub(cfg.AllowedOrigins),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		service: service,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT/PATCH only (not GET/DELETE/OPTIONS)
	s.router.Use(s.jsonContentTypeMiddleware)

	// Token bucket on mutations
	s.router.Use(s.rateLimitMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for
// requests with bodies. Scoreboard image uploads send raw image bytes
// and are exempt.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 || strings.HasSuffix(r.URL.Path, "/image") {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware applies the shared token bucket to mutation
// requests. Reads are never limited.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			if !s.limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	// Start the scoreboard hub
	go s.hub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Int("port", s.port).Msg("API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server and the scoreboard hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()

	if s.httpServer == nil {
		return nil
	}

	log.Info().Msg("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the scoreboard hub.
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}
