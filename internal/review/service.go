package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/wordguard/internal/audit"
	"github.com/yourusername/wordguard/internal/cache"
	"github.com/yourusername/wordguard/internal/config"
	"github.com/yourusername/wordguard/internal/logger"
	"github.com/yourusername/wordguard/internal/match"
	"github.com/yourusername/wordguard/internal/vocab"
	"github.com/yourusername/wordguard/internal/websocket"
	"go.uber.org/zap"
)

// Service runs text reviews against the current vocabulary snapshot. The
// cache, audit store, and hub are optional collaborators; a nil value
// disables that concern without changing review semantics.
type Service struct {
	registry *vocab.Registry
	cfg      config.ReviewConfig
	defaults config.VocabularyConfig

	cache  *cache.ReviewCache
	audits *audit.Store
	hub    *websocket.Hub
	logger *logger.Logger
}

// New creates a review service
func New(registry *vocab.Registry, cfg config.ReviewConfig, vcfg config.VocabularyConfig, log *logger.Logger) *Service {
	return &Service{
		registry: registry,
		cfg:      cfg,
		defaults: vcfg,
		logger:   log,
	}
}

// WithCache attaches a Redis result cache
func (s *Service) WithCache(c *cache.ReviewCache) *Service {
	s.cache = c
	return s
}

// WithAudit attaches a Postgres audit store
func (s *Service) WithAudit(a *audit.Store) *Service {
	s.audits = a
	return s
}

// WithHub attaches a WebSocket event hub
func (s *Service) WithHub(h *websocket.Hub) *Service {
	s.hub = h
	return s
}

// Review scans the request text against the current vocabulary snapshot and
// returns the span report plus, unless report-only, the redacted text. The
// snapshot is resolved once; a concurrent vocabulary swap never affects an
// in-flight review.
func (s *Service) Review(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	policy, err := s.policyFor(req)
	if err != nil {
		return nil, err
	}

	snap := s.registry.Current()
	caseInsensitive := s.defaults.CaseInsensitive
	if req.CaseInsensitive != nil {
		caseInsensitive = *req.CaseInsensitive
	}
	reportOnly := s.cfg.ReportOnly
	if req.ReportOnly != nil {
		reportOnly = *req.ReportOnly
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.Key(req.Text, snap.Version,
			fmt.Sprintf("ci=%t:ro=%t:m=%s:t=%s:k=%c", caseInsensitive, reportOnly, policy.Mode, policy.Token, policy.MaskRune))
		if data, ok := s.cache.Get(ctx, cacheKey); ok {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.CacheHit = true
				cached.Duration = time.Since(start)
				return &cached, nil
			}
		}
	}

	automaton := snap.Automaton(caseInsensitive)
	matches, err := automaton.Scan(req.Text)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	spans, redacted, err := match.Resolve(matches, req.Text, policy)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Flagged:      len(spans) > 0,
		VocabVersion: snap.Version,
		MatchCount:   len(matches),
		Spans:        s.reportSpans(spans, automaton),
		Duration:     time.Since(start),
	}
	if !reportOnly {
		result.Redacted = redacted
	}

	s.logger.Debug("Text reviewed",
		zap.String("request_id", req.RequestID),
		zap.Int64("vocab_version", snap.Version),
		zap.Int("matches", result.MatchCount),
		zap.Int("spans", len(result.Spans)),
		zap.Duration("duration", result.Duration))

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, cacheKey, data)
		}
	}
	if result.Flagged {
		s.recordAudit(req, result)
		s.broadcast(req, result, reportOnly)
	}

	return result, nil
}

// policyFor merges the request's redaction overrides over the configured
// defaults and validates the combination before any scan runs.
func (s *Service) policyFor(req Request) (match.Policy, error) {
	mode := s.cfg.RedactMode
	if req.RedactMode != "" {
		mode = req.RedactMode
	}

	policy := match.Policy{Mode: match.RedactMode(mode)}
	switch policy.Mode {
	case match.ModeMask:
		mask := []rune(s.cfg.MaskChar)
		if req.RedactToken != "" {
			mask = []rune(req.RedactToken)
		}
		if len(mask) != 1 {
			return match.Policy{}, fmt.Errorf("%w: mask must be a single character", match.ErrInvalidPolicy)
		}
		policy.MaskRune = mask[0]
	case match.ModeToken:
		policy.Token = s.cfg.Token
		if req.RedactToken != "" {
			policy.Token = req.RedactToken
		}
	}

	if err := policy.Validate(); err != nil {
		return match.Policy{}, err
	}
	return policy, nil
}

// reportSpans attaches the matched terms to each span for audit consumers
func (s *Service) reportSpans(spans []match.Span, a *match.Automaton) []SpanReport {
	reports := make([]SpanReport, len(spans))
	for i, span := range spans {
		terms := make([]string, 0, len(span.PatternIDs))
		for _, id := range span.PatternIDs {
			if term, ok := a.Term(id); ok {
				terms = append(terms, term)
			}
		}
		reports[i] = SpanReport{
			Start:      span.Start,
			End:        span.End,
			PatternIDs: span.PatternIDs,
			Terms:      terms,
		}
	}
	return reports
}

// recordAudit persists the outcome without blocking the review path
func (s *Service) recordAudit(req Request, result *Result) {
	if s.audits == nil {
		return
	}

	report, err := json.Marshal(result.Spans)
	if err != nil {
		s.logger.Error("Failed to marshal audit report", zap.Error(err))
		return
	}
	rec := &audit.Record{
		RequestID:    req.RequestID,
		VocabVersion: result.VocabVersion,
		Flagged:      result.Flagged,
		SpanCount:    len(result.Spans),
		MatchCount:   result.MatchCount,
		Report:       report,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audits.Insert(ctx, rec); err != nil {
			s.logger.Error("Failed to persist audit record",
				zap.String("request_id", req.RequestID), zap.Error(err))
		}
	}()
}

// broadcast publishes a detection event to dashboard clients
func (s *Service) broadcast(req Request, result *Result, reportOnly bool) {
	if s.hub == nil {
		return
	}

	terms := make([]string, 0, len(result.Spans))
	for _, span := range result.Spans {
		terms = append(terms, span.Terms...)
	}
	s.hub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeDetection,
		Timestamp: time.Now(),
		RequestID: req.RequestID,
		Data: websocket.DetectionEvent{
			RequestID:    req.RequestID,
			VocabVersion: result.VocabVersion,
			SpanCount:    len(result.Spans),
			MatchCount:   result.MatchCount,
			Terms:        terms,
			ReportOnly:   reportOnly,
			Duration:     result.Duration,
		},
	})
}
