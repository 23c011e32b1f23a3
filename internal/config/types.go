package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Vocabulary VocabularyConfig `yaml:"vocabulary" mapstructure:"vocabulary"`
	Review     ReviewConfig     `yaml:"review" mapstructure:"review"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Audit      AuditConfig      `yaml:"audit" mapstructure:"audit"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	WebSocket  WebSocketConfig  `yaml:"websocket" mapstructure:"websocket"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxTextBytes int64         `yaml:"max_text_bytes" mapstructure:"max_text_bytes"`
}

// VocabularyConfig controls word-list loading and hot reload
type VocabularyConfig struct {
	Dir             string        `yaml:"dir" mapstructure:"dir"`
	Watch           bool          `yaml:"watch" mapstructure:"watch"`
	WatchDebounce   time.Duration `yaml:"watch_debounce" mapstructure:"watch_debounce"`
	CaseInsensitive bool          `yaml:"case_insensitive" mapstructure:"case_insensitive"`
}

// ReviewConfig contains detection and redaction defaults; requests may
// override the redaction policy per call
type ReviewConfig struct {
	RedactMode string `yaml:"redact_mode" mapstructure:"redact_mode"` // mask, token, delete, or annotate
	MaskChar   string `yaml:"mask_char" mapstructure:"mask_char"`
	Token      string `yaml:"token" mapstructure:"token"`
	ReportOnly bool   `yaml:"report_only" mapstructure:"report_only"`
}

// CacheConfig contains the optional Redis review-result cache settings
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL       string        `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix      string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	DefaultTTL     time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
}

// AuditConfig contains the optional Postgres audit store settings
type AuditConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// RateLimitConfig contains per-client rate limiting for the review endpoint
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
	Burst          int  `yaml:"burst" mapstructure:"burst"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	Enabled             bool `yaml:"enabled" mapstructure:"enabled"`
	BroadcastDetections bool `yaml:"broadcast_detections" mapstructure:"broadcast_detections"`
	BroadcastReloads    bool `yaml:"broadcast_reloads" mapstructure:"broadcast_reloads"`
	BroadcastSystem     bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxTextBytes: 1 << 20,
		},
		Vocabulary: VocabularyConfig{
			Dir:             "vocabulary",
			Watch:           true,
			WatchDebounce:   500 * time.Millisecond,
			CaseInsensitive: true,
		},
		Review: ReviewConfig{
			RedactMode: "mask",
			MaskChar:   "*",
			Token:      "[BLOCKED]",
			ReportOnly: false,
		},
		Cache: CacheConfig{
			Enabled:        false,
			RedisURL:       "redis://localhost:6379/0",
			KeyPrefix:      "wordguard",
			DefaultTTL:     time.Hour,
			MaxConnections: 10,
			MinIdleConns:   2,
		},
		Audit: AuditConfig{
			Enabled:         false,
			DatabaseURL:     "postgres://localhost:5432/wordguard?sslmode=disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 600,
			Burst:          60,
		},
		WebSocket: WebSocketConfig{
			Enabled:             true,
			BroadcastDetections: true,
			BroadcastReloads:    true,
			BroadcastSystem:     true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
