package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/wordguard/internal/match"
	"github.com/yourusername/wordguard/internal/review"
	"go.uber.org/zap"
)

// errorResponse is the uniform error payload
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// handleReview runs one scan/redact call
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())
	logger := s.logger.WithRequestID(requestID)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxTextBytes)

	var req review.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     fmt.Sprintf("invalid request body: %v", err),
			RequestID: requestID,
		})
		return
	}
	req.RequestID = requestID

	result, err := s.service.Review(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, match.ErrInvalidPolicy) {
			status = http.StatusBadRequest
		}
		logger.Error("Review failed", zap.Error(err))
		writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: requestID})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleVocabReload rebuilds the vocabulary snapshot on demand
func (s *Server) handleVocabReload(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	if err := s.registry.Reload(); err != nil {
		s.logger.WithRequestID(requestID).Error("Vocabulary reload failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), RequestID: requestID})
		return
	}

	snap := s.registry.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":   snap.Version,
		"terms":     snap.Terms,
		"loaded_at": snap.LoadedAt.Format(time.RFC3339),
	})
}

// handleVocabStats reports the active snapshot plus cache and hub counters
func (s *Server) handleVocabStats(w http.ResponseWriter, r *http.Request) {
	snap := s.registry.Current()

	stats := map[string]interface{}{
		"version":   snap.Version,
		"terms":     snap.Terms,
		"states":    snap.Automaton(false).Size(),
		"loaded_at": snap.LoadedAt.Format(time.RFC3339),
		"websocket": s.wsHub.Stats(),
	}
	if s.cache != nil {
		if cacheStats, err := s.cache.GetStats(r.Context()); err == nil {
			stats["cache"] = cacheStats
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	snap := s.registry.Current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":             "wordguard",
		"version":          "0.1.0",
		"vocab_version":    snap.Version,
		"vocab_terms":      snap.Terms,
		"case_insensitive": s.config.Vocabulary.CaseInsensitive,
		"cache_enabled":    s.config.Cache.Enabled,
		"audit_enabled":    s.config.Audit.Enabled,
	})
}

// writeJSON serializes a payload with the right headers
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
