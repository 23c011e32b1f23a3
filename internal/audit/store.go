package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Record is one persisted review outcome. Report holds the span report as
// JSON; the submitted text is never stored.
type Record struct {
	ID           int64           `db:"id" json:"id"`
	RequestID    string          `db:"request_id" json:"request_id"`
	VocabVersion int64           `db:"vocab_version" json:"vocab_version"`
	Flagged      bool            `db:"flagged" json:"flagged"`
	SpanCount    int             `db:"span_count" json:"span_count"`
	MatchCount   int             `db:"match_count" json:"match_count"`
	Report       json.RawMessage `db:"report" json:"report"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Config contains database configuration
type Config struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// Store persists review audit records in PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS review_audit (
	id            BIGSERIAL PRIMARY KEY,
	request_id    TEXT        NOT NULL,
	vocab_version BIGINT      NOT NULL,
	flagged       BOOLEAN     NOT NULL,
	span_count    INTEGER     NOT NULL,
	match_count   INTEGER     NOT NULL,
	report        JSONB       NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_review_audit_created_at ON review_audit (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_review_audit_request_id ON review_audit (request_id);
`

// NewStore creates an audit store and ensures the schema exists
func NewStore(config *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	s := &Store{db: db, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to ensure audit schema: %w", err)
	}

	logger.Info("Audit store initialized",
		zap.String("database_url", maskDatabaseURL(config.DatabaseURL)),
		zap.Int("max_open_conns", config.MaxOpenConns))

	return s, nil
}

// Insert persists one review record
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	const query = `
		INSERT INTO review_audit (request_id, vocab_version, flagged, span_count, match_count, report)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	row := s.db.QueryRowxContext(ctx, query,
		rec.RequestID, rec.VocabVersion, rec.Flagged, rec.SpanCount, rec.MatchCount, rec.Report)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Recent returns the latest records, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []Record
	const query = `
		SELECT id, request_id, vocab_version, flagged, span_count, match_count, report, created_at
		FROM review_audit ORDER BY created_at DESC LIMIT $1`
	if err := s.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	return records, nil
}

// CountFlagged returns the number of flagged reviews since the cutoff
func (s *Store) CountFlagged(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	const query = `SELECT COUNT(*) FROM review_audit WHERE flagged AND created_at >= $1`
	if err := s.db.GetContext(ctx, &count, query, since); err != nil {
		return 0, fmt.Errorf("failed to count flagged reviews: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// maskDatabaseURL masks credentials in a database URL for logging
func maskDatabaseURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	if idx := strings.LastIndex(parts[0], ":"); idx > strings.Index(parts[0], "//") {
		parts[0] = parts[0][:idx+1] + "***"
	}
	return strings.Join(parts, "@")
}
