package websocket

import "time"

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeDetection represents a banned-term detection event
	EventTypeDetection EventType = "detection"
	// EventTypeVocabReload represents a vocabulary reload event
	EventTypeVocabReload EventType = "vocab_reload"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents a client connect/disconnect event
	EventTypeConnection EventType = "connection"
)

// Event is the envelope broadcast to dashboard clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data"`
}

// DetectionEvent carries the outcome of one review call. It never carries
// the submitted text, only span geometry and the matched terms.
type DetectionEvent struct {
	RequestID    string        `json:"request_id"`
	VocabVersion int64         `json:"vocab_version"`
	SpanCount    int           `json:"span_count"`
	MatchCount   int           `json:"match_count"`
	Terms        []string      `json:"terms"`
	ReportOnly   bool          `json:"report_only"`
	Duration     time.Duration `json:"duration_ns"`
}

// VocabReloadEvent announces a vocabulary snapshot swap
type VocabReloadEvent struct {
	Version int64 `json:"version"`
	Terms   int   `json:"terms"`
}

// SystemStatusEvent carries periodic service health data
type SystemStatusEvent struct {
	Status       string `json:"status"`
	VocabVersion int64  `json:"vocab_version"`
	Connections  int64  `json:"connections"`
}

// ConnectionEvent announces dashboard client churn
type ConnectionEvent struct {
	Action   string `json:"action"`
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
}
