package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"tricktable/internal/store"
)

type failingPersister struct {
	created int
}

func (f *failingPersister) CreateSession(context.Context, store.Session) error {
	f.created++
	return errors.New("connection refused")
}
func (f *failingPersister) GetSessionByToken(context.Context, string) (store.Session, error) {
	return store.Session{}, store.ErrNotFound
}
func (f *failingPersister) UpdateSessionActivity(context.Context, string, string) error {
	return store.ErrNotFound
}
func (f *failingPersister) DeleteSessionsByName(context.Context, string, string) error { return nil }
func (f *failingPersister) DeleteSessionsByMatch(context.Context, string) error        { return nil }
func (f *failingPersister) DeleteSessionsIdleSince(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestIssueAndValidate(t *testing.T) {
	m := NewManager(nil)
	token := m.Issue(context.Background(), "Alice", "m1", "h1")
	if token == "" {
		t.Fatal("expected a token")
	}
	rec, err := m.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if rec.Name != "Alice" || rec.MatchID != "m1" || rec.Handle != "h1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	m := NewManager(nil)
	if _, err := m.Validate(context.Background(), "nope"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssueSurvivesPersistFailure(t *testing.T) {
	p := &failingPersister{}
	m := NewManager(p)
	token := m.Issue(context.Background(), "Alice", "m1", "h1")
	if p.created != 1 {
		t.Fatalf("expected one persist attempt, got %d", p.created)
	}
	if _, err := m.Validate(context.Background(), token); err != nil {
		t.Fatalf("token should validate from memory: %v", err)
	}
}

func TestRevokeNameOnlyHitsThatMatch(t *testing.T) {
	m := NewManager(nil)
	t1 := m.Issue(context.Background(), "Alice", "m1", "h1")
	t2 := m.Issue(context.Background(), "Alice", "m2", "h2")
	m.RevokeName(context.Background(), "Alice", "m1")
	if _, err := m.Validate(context.Background(), t1); !errors.Is(err, ErrInvalidToken) {
		t.Fatal("m1 token should be revoked")
	}
	if _, err := m.Validate(context.Background(), t2); err != nil {
		t.Fatalf("m2 token should survive: %v", err)
	}
}

func TestSweepIdle(t *testing.T) {
	m := NewManager(nil)
	tok := m.Issue(context.Background(), "Alice", "m1", "h1")
	m.mu.Lock()
	m.records[tok].LastSeen = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()
	if n := m.SweepIdle(time.Hour); n != 1 {
		t.Fatalf("expected 1 swept, got %d", n)
	}
	if _, err := m.Validate(context.Background(), tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatal("swept token should be invalid")
	}
}
