package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/yourusername/wordguard/internal/audit"
	"github.com/yourusername/wordguard/internal/cache"
	"github.com/yourusername/wordguard/internal/config"
	"github.com/yourusername/wordguard/internal/logger"
	"github.com/yourusername/wordguard/internal/review"
	"github.com/yourusername/wordguard/internal/security"
	"github.com/yourusername/wordguard/internal/vocab"
	"github.com/yourusername/wordguard/internal/web"
	"github.com/yourusername/wordguard/internal/websocket"
	"go.uber.org/zap"
)

// Server is the text-review HTTP server
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	registry *vocab.Registry
	service  *review.Service
	cache    *cache.ReviewCache
	limiter  *security.RateLimiter
	router   *mux.Router
	server   *http.Server
	wsHub    *websocket.Hub
}

// New wires the review service, its optional collaborators, and the router
func New(cfg *config.Config, registry *vocab.Registry, log *logger.Logger) (*Server, error) {
	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastDetections: cfg.WebSocket.BroadcastDetections,
		BroadcastReloads:    cfg.WebSocket.BroadcastReloads,
		BroadcastSystem:     cfg.WebSocket.BroadcastSystem,
	}, log.WithComponent("websocket").Logger)

	service := review.New(registry, cfg.Review, cfg.Vocabulary, log.WithComponent("review"))
	if cfg.WebSocket.Enabled {
		service.WithHub(wsHub)
	}

	var reviewCache *cache.ReviewCache
	if cfg.Cache.Enabled {
		var err error
		reviewCache, err = cache.NewReviewCache(&cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
			DefaultTTL:     cfg.Cache.DefaultTTL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create review cache: %w", err)
		}
		service.WithCache(reviewCache)
	}

	if cfg.Audit.Enabled {
		auditStore, err := audit.NewStore(&audit.Config{
			DatabaseURL:     cfg.Audit.DatabaseURL,
			MaxOpenConns:    cfg.Audit.MaxOpenConns,
			MaxIdleConns:    cfg.Audit.MaxIdleConns,
			ConnMaxLifetime: cfg.Audit.ConnMaxLifetime,
		}, log.WithComponent("audit").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit store: %w", err)
		}
		service.WithAudit(auditStore)
	}

	limiter := security.NewRateLimiter(&cfg.RateLimit)
	limiter.StartCleanupRoutine()

	s := &Server{
		config:   cfg,
		logger:   log.WithComponent("server"),
		registry: registry,
		service:  service,
		cache:    reviewCache,
		limiter:  limiter,
		router:   mux.NewRouter(),
		wsHub:    wsHub,
	}

	// Reload announcements reach the dashboard through the hub
	registry.OnReload = func(snap *vocab.Snapshot) {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeVocabReload,
			Timestamp: time.Now(),
			Data:      websocket.VocabReloadEvent{Version: snap.Version, Terms: snap.Terms},
		})
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health and info endpoints
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	// Dashboard
	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")

	// WebSocket endpoint for dashboard
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	// Review API
	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/review", s.handleReview).Methods("POST")
	api.HandleFunc("/vocabulary/reload", s.handleVocabReload).Methods("POST")
	api.HandleFunc("/vocabulary/stats", s.handleVocabStats).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting WordGuard server",
		zap.Int("port", s.config.Server.Port),
		zap.String("vocabulary_dir", s.config.Vocabulary.Dir),
		zap.Int64("vocab_version", s.registry.Current().Version),
	)

	go s.wsHub.Run()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping WordGuard server")
	if s.cache != nil {
		defer s.cache.Close()
	}
	return s.server.Shutdown(ctx)
}

// handleWebSocket handles WebSocket connections for the dashboard
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
