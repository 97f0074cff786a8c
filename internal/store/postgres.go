package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/syncdraft/internal/models"
)

// PostgresStore keeps the append-only auth audit log in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the auth_events table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS auth_events (
			id          BIGSERIAL    PRIMARY KEY,
			user_id     TEXT,
			email       VARCHAR(255),
			kind        VARCHAR(16)  NOT NULL,
			succeeded   BOOLEAN      NOT NULL,
			remote_addr VARCHAR(64),
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS auth_events_user_idx ON auth_events (user_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("migrate auth_events: %w", err)
	}
	return nil
}

// Record appends one auth event.
func (s *PostgresStore) Record(ctx context.Context, ev models.AuthEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auth_events (user_id, email, kind, succeeded, remote_addr)
		 VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, $4, NULLIF($5, ''))`,
		ev.UserID, ev.Email, ev.Kind, ev.Succeeded, ev.RemoteAddr,
	)
	if err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}
	return nil
}

// RecentEvents returns the latest events for a user, newest first.
func (s *PostgresStore) RecentEvents(ctx context.Context, userID string, limit int) ([]models.AuthEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(user_id, ''), COALESCE(email, ''), kind, succeeded, COALESCE(remote_addr, ''), created_at
		 FROM auth_events WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query auth events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AuthEvent, error) {
		var ev models.AuthEvent
		err := row.Scan(&ev.ID, &ev.UserID, &ev.Email, &ev.Kind, &ev.Succeeded, &ev.RemoteAddr, &ev.CreatedAt)
		return ev, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan auth events: %w", err)
	}
	return events, nil
}
