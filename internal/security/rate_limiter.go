package security

import (
	"sync"
	"time"

	"github.com/yourusername/wordguard/internal/config"
	"golang.org/x/time/rate"
)

// RateLimiter applies per-client token bucket rate limiting to the review
// endpoint
type RateLimiter struct {
	config *config.RateLimitConfig

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow checks if a request from the given client IP is allowed
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.Enabled {
		return true
	}
	return r.getLimiter(clientIP).Allow()
}

// getLimiter gets or creates the token bucket for a client IP
func (r *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok := r.clients[clientIP]
	if !ok {
		perSecond := rate.Limit(float64(r.config.RequestsPerMin) / 60.0)
		cl = &clientLimiter{limiter: rate.NewLimiter(perSecond, r.config.Burst)}
		r.clients[clientIP] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// CleanupOldClients removes buckets idle for over an hour to bound memory
func (r *RateLimiter) CleanupOldClients() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for ip, cl := range r.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
}

// StartCleanupRoutine starts a background routine to clean up idle buckets
func (r *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			r.CleanupOldClients()
		}
	}()
}
