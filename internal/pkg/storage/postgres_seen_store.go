package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/avdeev/matchpulse/internal/pkg/config"
)

// Ensure PostgresSeenStore implements SeenStore
var _ SeenStore = (*PostgresSeenStore)(nil)

// PostgresSeenStore persists seen (alert, match) pairs in PostgreSQL.
type PostgresSeenStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSeenStore opens the connection and ensures the schema exists.
func NewPostgresSeenStore(cfg *config.PostgresConfig, logger *slog.Logger) (*PostgresSeenStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := &PostgresSeenStore{db: db, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("PostgreSQL seen store initialized")
	return store, nil
}

func (s *PostgresSeenStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS seen_matches (
		alert_name VARCHAR(100) NOT NULL,
		match_id   VARCHAR(100) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		PRIMARY KEY (alert_name, match_id)
	);

	CREATE INDEX IF NOT EXISTS idx_seen_matches_alert ON seen_matches(alert_name);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresSeenStore) Load(ctx context.Context, alertName string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id FROM seen_matches WHERE alert_name = $1`, alertName)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen set for %s: %w", alertName, err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan seen row: %w", err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seen rows: %w", err)
	}
	return set, nil
}

func (s *PostgresSeenStore) Add(ctx context.Context, alertName, matchID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO seen_matches (alert_name, match_id) VALUES ($1, $2)
		 ON CONFLICT (alert_name, match_id) DO NOTHING`,
		alertName, matchID)
	if err != nil {
		return fmt.Errorf("failed to store seen pair (%s, %s): %w", alertName, matchID, err)
	}
	return nil
}

func (s *PostgresSeenStore) Close() error {
	return s.db.Close()
}
