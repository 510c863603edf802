package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tricktable/internal/store"
)

var ErrInvalidToken = errors.New("invalid_token")

// Record is what a validated token resolves to.
type Record struct {
	Token    string
	Name     string
	MatchID  string
	Handle   string
	LastSeen time.Time
}

// Persister is the slice of the store the manager needs. *store.Store
// satisfies it; tests run with a nil Persister.
type Persister interface {
	CreateSession(ctx context.Context, sess store.Session) error
	GetSessionByToken(ctx context.Context, token string) (store.Session, error)
	UpdateSessionActivity(ctx context.Context, token, handle string) error
	DeleteSessionsByName(ctx context.Context, name, matchID string) error
	DeleteSessionsByMatch(ctx context.Context, matchID string) error
	DeleteSessionsIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// Manager issues reconnect tokens and resolves them back to a player name.
// Every record is kept in memory; the persister is written through when
// available, and a write failure downgrades the record to memory-only rather
// than failing the join.
type Manager struct {
	persist Persister

	mu      sync.Mutex
	records map[string]*Record
}

func NewManager(p Persister) *Manager {
	return &Manager{persist: p, records: make(map[string]*Record)}
}

// Issue mints a token for a seated player and stores it.
func (m *Manager) Issue(ctx context.Context, name, matchID, handle string) string {
	token := uuid.NewString()
	rec := &Record{Token: token, Name: name, MatchID: matchID, Handle: handle, LastSeen: time.Now()}

	m.mu.Lock()
	m.records[token] = rec
	m.mu.Unlock()

	if m.persist != nil {
		err := m.persist.CreateSession(ctx, store.Session{
			Token: token, Name: name, MatchID: matchID, Handle: handle,
		})
		if err != nil {
			log.Warn().Err(err).Str("match_id", matchID).Str("name", name).
				Msg("session persist failed, keeping token in memory only")
		}
	}
	return token
}

// Validate resolves a token. Memory is checked first so a token issued during
// a store outage still reconnects; a store hit repopulates memory after a
// process that lost it.
func (m *Manager) Validate(ctx context.Context, token string) (Record, error) {
	m.mu.Lock()
	rec, ok := m.records[token]
	if ok {
		out := *rec
		m.mu.Unlock()
		return out, nil
	}
	m.mu.Unlock()

	if m.persist == nil {
		return Record{}, ErrInvalidToken
	}
	sess, err := m.persist.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Record{}, ErrInvalidToken
		}
		return Record{}, err
	}
	out := Record{Token: sess.Token, Name: sess.Name, MatchID: sess.MatchID,
		Handle: sess.Handle, LastSeen: sess.LastSeen}
	m.mu.Lock()
	m.records[token] = &out
	m.mu.Unlock()
	return out, nil
}

// Touch records activity and the handle the token now speaks for.
func (m *Manager) Touch(ctx context.Context, token, handle string) {
	m.mu.Lock()
	if rec, ok := m.records[token]; ok {
		rec.Handle = handle
		rec.LastSeen = time.Now()
	}
	m.mu.Unlock()

	if m.persist != nil {
		if err := m.persist.UpdateSessionActivity(ctx, token, handle); err != nil &&
			!errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Msg("session touch failed")
		}
	}
}

// RevokeName invalidates every token a player name holds in one match. The
// name's seat no longer belongs to them after a bot conversion or kick.
func (m *Manager) RevokeName(ctx context.Context, name, matchID string) {
	m.mu.Lock()
	for tok, rec := range m.records {
		if rec.Name == name && rec.MatchID == matchID {
			delete(m.records, tok)
		}
	}
	m.mu.Unlock()

	if m.persist != nil {
		if err := m.persist.DeleteSessionsByName(ctx, name, matchID); err != nil {
			log.Warn().Err(err).Str("name", name).Msg("session revoke failed")
		}
	}
}

// RevokeMatch drops every token for a deleted match.
func (m *Manager) RevokeMatch(ctx context.Context, matchID string) {
	m.mu.Lock()
	for tok, rec := range m.records {
		if rec.MatchID == matchID {
			delete(m.records, tok)
		}
	}
	m.mu.Unlock()

	if m.persist != nil {
		if err := m.persist.DeleteSessionsByMatch(ctx, matchID); err != nil {
			log.Warn().Err(err).Str("match_id", matchID).Msg("session revoke failed")
		}
	}
}

// SweepIdle drops records idle past maxIdle, in memory and in the store.
// Returns how many left memory.
func (m *Manager) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	n := 0
	m.mu.Lock()
	for tok, rec := range m.records {
		if rec.LastSeen.Before(cutoff) {
			delete(m.records, tok)
			n++
		}
	}
	m.mu.Unlock()

	if m.persist != nil {
		if _, err := m.persist.DeleteSessionsIdleSince(context.Background(), cutoff); err != nil {
			log.Warn().Err(err).Msg("session idle sweep failed")
		}
	}
	return n
}
