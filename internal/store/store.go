package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) Close() {
	s.Pool.Close()
}

// EnsureSchema creates the session and match tables when missing. The
// in-memory coordinator is the authority for live matches; these tables
// only need to survive a process restart.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	match_id   TEXT NOT NULL,
	handle     TEXT NOT NULL,
	is_bot     BOOLEAN NOT NULL DEFAULT FALSE,
	issued_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS sessions_name_match_idx ON sessions (name, match_id);
CREATE TABLE IF NOT EXISTS matches (
	id         TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
	return err
}
