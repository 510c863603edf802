package store

import (
	"context"
	"encoding/json"

	"tricktable/internal/match"
)

// SaveMatch snapshots the full match state as jsonb. The coordinator owns the
// live copy; snapshots exist so a restarted process can list what it lost.
func (s *Store) SaveMatch(ctx context.Context, m *match.Match) error {
	blob, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
INSERT INTO matches (id, state, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		m.ID, blob)
	return err
}

func (s *Store) LoadMatch(ctx context.Context, id string) (*match.Match, error) {
	var blob []byte
	err := s.Pool.QueryRow(ctx, `SELECT state FROM matches WHERE id = $1`, id).Scan(&blob)
	if err != nil {
		return nil, mapNotFound(err)
	}
	var m match.Match
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	return err
}
