// Package claim provides the short-lived advisory lock taken around a
// seat-claim. Two concurrent claims can both observe an empty seat before
// either commits; the lock closes that window. Holding it grants nothing
// by itself: callers must re-validate the seat after acquiring, and a
// failed acquire is an ordinary retryable rejection, not an error.
package claim

import (
	"context"
	"strconv"
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Second

// Locker hands out per-key leases. Acquire returns ok=false when the key
// is already held and the holder's lease has not gone stale. The release
// func is safe to call from every exit path; releasing a lease that has
// since been taken over is a no-op.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// Key names the lock for one seat of one match or lounge table.
func Key(matchID string, seatIndex int) string {
	return matchID + "/seat/" + strconv.Itoa(seatIndex)
}

type lease struct {
	token     uint64
	expiresAt time.Time
}

// MemoryLocker is the in-process backend. Staleness is handled at acquire
// time: a lease past its TTL is treated as free, so a holder that crashed
// mid-claim cannot wedge the seat forever.
type MemoryLocker struct {
	ttl    time.Duration
	mu     sync.Mutex
	leases map[string]lease
	next   uint64
}

func NewMemoryLocker(ttl time.Duration) *MemoryLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryLocker{ttl: ttl, leases: map[string]lease{}}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string) (func(), bool, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, held := l.leases[key]; held && now.Before(cur.expiresAt) {
		return nil, false, nil
	}
	l.next++
	token := l.next
	l.leases[key] = lease{token: token, expiresAt: now.Add(l.ttl)}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, held := l.leases[key]; held && cur.token == token {
			delete(l.leases, key)
		}
	}
	return release, true, nil
}
