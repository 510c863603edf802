package store

import (
	"context"
	"time"
)

// Session binds a reconnect token to a stable player name within one match.
// The handle column tracks the player's current connection handle and is
// rewritten on every reconnect.
type Session struct {
	Token    string
	Name     string
	MatchID  string
	Handle   string
	IsBot    bool
	IssuedAt time.Time
	LastSeen time.Time
}

func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO sessions (token, name, match_id, handle, is_bot, issued_at, last_seen)
VALUES ($1, $2, $3, $4, $5, now(), now())`,
		sess.Token, sess.Name, sess.MatchID, sess.Handle, sess.IsBot)
	return err
}

func (s *Store) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	var sess Session
	err := s.Pool.QueryRow(ctx, `
SELECT token, name, match_id, handle, is_bot, issued_at, last_seen
FROM sessions WHERE token = $1`, token).
		Scan(&sess.Token, &sess.Name, &sess.MatchID, &sess.Handle,
			&sess.IsBot, &sess.IssuedAt, &sess.LastSeen)
	if err != nil {
		return Session{}, mapNotFound(err)
	}
	return sess, nil
}

// UpdateSessionActivity bumps last_seen and records the connection handle
// the token is now speaking for.
func (s *Store) UpdateSessionActivity(ctx context.Context, token, handle string) error {
	tag, err := s.Pool.Exec(ctx, `
UPDATE sessions SET handle = $2, last_seen = now() WHERE token = $1`, token, handle)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSessionsByName invalidates every token issued to a player name within
// one match. Used when a seat is handed to a bot or emptied.
func (s *Store) DeleteSessionsByName(ctx context.Context, name, matchID string) error {
	_, err := s.Pool.Exec(ctx, `
DELETE FROM sessions WHERE name = $1 AND match_id = $2`, name, matchID)
	return err
}

// DeleteSessionsByMatch removes every session for a deleted match.
func (s *Store) DeleteSessionsByMatch(ctx context.Context, matchID string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM sessions WHERE match_id = $1`, matchID)
	return err
}

// DeleteSessionsIdleSince removes sessions whose last_seen is older than the
// cutoff. Swept by the janitor.
func (s *Store) DeleteSessionsIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM sessions WHERE last_seen < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
