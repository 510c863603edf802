// Package timers owns every live timer in the session layer. Four
// families exist: turn-timeout, disconnect-grace, countdown-tick and
// match-deletion. Each family holds at most one live timer per key, and
// every arm operation cancels the previous holder first, so a forgotten
// cancel cannot leave two timers racing for the same seat.
package timers

import (
	"sync"
	"time"
)

type family int

const (
	familyTurn family = iota
	familyGrace
	familyTick
	familyDeletion
)

type entry struct {
	stop func()
}

type key struct {
	family  family
	matchID string
	scope   string
}

type Registry struct {
	mu      sync.Mutex
	entries map[key]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[key]*entry{}}
}

// SetTurnTimeout arms the turn-timeout for the acting handle, replacing
// any previous timer under the same key.
func (r *Registry) SetTurnTimeout(matchID, handle string, d time.Duration, fn func()) {
	r.set(key{familyTurn, matchID, handle}, d, fn)
}

func (r *Registry) CancelTurnTimeout(matchID, handle string) {
	r.cancel(key{familyTurn, matchID, handle})
}

// SetGrace arms the disconnect-grace expiry for a seat, keyed by the
// handle that was active at disconnect time.
func (r *Registry) SetGrace(matchID, handle string, d time.Duration, fn func()) {
	r.set(key{familyGrace, matchID, handle}, d, fn)
}

func (r *Registry) CancelGrace(matchID, handle string) {
	r.cancel(key{familyGrace, matchID, handle})
}

// StartCountdown runs fn at the given cadence until stopped. fn runs on
// the ticker goroutine; callers re-validate state inside it.
func (r *Registry) StartCountdown(matchID, handle string, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	done := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	e := &entry{stop: func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}}
	r.replace(key{familyTick, matchID, handle}, e)
}

func (r *Registry) StopCountdown(matchID, handle string) {
	r.cancel(key{familyTick, matchID, handle})
}

// SetDeletion arms the match-deletion timer; one per match.
func (r *Registry) SetDeletion(matchID string, d time.Duration, fn func()) {
	r.set(key{familyDeletion, matchID, ""}, d, fn)
}

func (r *Registry) CancelDeletion(matchID string) {
	r.cancel(key{familyDeletion, matchID, ""})
}

// HasDeletion reports whether a deletion timer is currently armed. Used
// by the grace-expiry path to leave a running timer in place.
func (r *Registry) HasDeletion(matchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key{familyDeletion, matchID, ""}]
	return ok
}

// CancelMatch drops every timer of every family belonging to a match.
// Called when a match is deleted.
func (r *Registry) CancelMatch(matchID string) {
	r.mu.Lock()
	var stops []func()
	for k, e := range r.entries {
		if k.matchID == matchID {
			stops = append(stops, e.stop)
			delete(r.entries, k)
		}
	}
	r.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

// Live returns the number of live timers across all families; test hook.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) set(k key, d time.Duration, fn func()) {
	e := &entry{}
	t := time.AfterFunc(d, func() {
		// A fire only counts if this timer is still the registered holder
		// for its key: a timer superseded or cancelled while the callback
		// was queued must be a no-op.
		if r.removeIfCurrent(k, e) {
			fn()
		}
	})
	e.stop = func() { t.Stop() }
	r.replace(k, e)
}

func (r *Registry) replace(k key, e *entry) {
	r.mu.Lock()
	old, ok := r.entries[k]
	r.entries[k] = e
	r.mu.Unlock()
	if ok {
		old.stop()
	}
}

func (r *Registry) cancel(k key) {
	r.mu.Lock()
	e, ok := r.entries[k]
	if ok {
		delete(r.entries, k)
	}
	r.mu.Unlock()
	if ok {
		e.stop()
	}
}

func (r *Registry) removeIfCurrent(k key, e *entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[k] != e {
		return false
	}
	delete(r.entries, k)
	return true
}
