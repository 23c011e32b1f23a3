package review

import "time"

// Request is one text-review call. Case mode, report mode, and redaction
// policy fall back to the service defaults when unset.
type Request struct {
	Text            string `json:"text"`
	CaseInsensitive *bool  `json:"case_insensitive,omitempty"`
	ReportOnly      *bool  `json:"report_only,omitempty"`
	RedactMode      string `json:"redact_mode,omitempty"`
	RedactToken     string `json:"redact_token,omitempty"`

	// RequestID is assigned by the transport layer, not the caller.
	RequestID string `json:"-"`
}

// SpanReport is one merged redaction span with full audit detail: every
// pattern that contributed to the span, even patterns wholly contained in a
// longer match.
type SpanReport struct {
	Start      int      `json:"start"`
	End        int      `json:"end"`
	PatternIDs []int    `json:"pattern_ids"`
	Terms      []string `json:"terms"`
}

// Result contains the outcome of one review call
type Result struct {
	Flagged      bool          `json:"flagged"`
	VocabVersion int64         `json:"vocab_version"`
	MatchCount   int           `json:"match_count"`
	Spans        []SpanReport  `json:"spans"`
	Redacted     string        `json:"redacted,omitempty"`
	CacheHit     bool          `json:"cache_hit,omitempty"`
	Duration     time.Duration `json:"-"`
}
