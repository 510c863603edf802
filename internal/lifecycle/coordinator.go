// Package lifecycle is the connection lifecycle coordinator: the event
// handlers for connect, reconnect, disconnect, kick, bot conversion and bot
// takeover. Every handler follows the same shape: validate against the live
// in-memory match, perform one seat transition, migrate identities if a
// handle or name changed, update the timer registry, then hand a deep-copied
// snapshot to the store and the broadcaster. All match mutation happens under
// the coordinator mutex against the live map, re-fetched after any
// persistence await; the live object never leaves the mutex.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tricktable/internal/claim"
	"tricktable/internal/match"
	"tricktable/internal/rules"
	"tricktable/internal/session"
	"tricktable/internal/store"
	"tricktable/internal/timers"
)

const (
	defaultDisconnectGrace = 900 * time.Second
	defaultTurnTimeout     = 30 * time.Second
	defaultAbandonedDelete = 15 * time.Minute
	defaultSoloDelete      = 5 * time.Minute
	defaultCountdownTick   = time.Second
)

// Config carries the lifecycle durations. Tests inject short ones.
type Config struct {
	DisconnectGrace time.Duration
	TurnTimeout     time.Duration
	AbandonedDelete time.Duration
	SoloDelete      time.Duration
	CountdownTick   time.Duration
}

func DefaultConfig() Config {
	return Config{
		DisconnectGrace: defaultDisconnectGrace,
		TurnTimeout:     defaultTurnTimeout,
		AbandonedDelete: defaultAbandonedDelete,
		SoloDelete:      defaultSoloDelete,
		CountdownTick:   defaultCountdownTick,
	}
}

// Snapshots is the slice of the store the coordinator writes through.
// Persistence is best effort; a nil Snapshots disables it.
type Snapshots interface {
	SaveMatch(ctx context.Context, m *match.Match) error
	DeleteMatch(ctx context.Context, id string) error
}

type Coordinator struct {
	cfg      Config
	sessions *session.Manager
	snap     Snapshots
	locker   claim.Locker
	timers   *timers.Registry
	engine   rules.Engine
	bc       Broadcaster

	mu      sync.Mutex
	matches map[string]*match.Match
}

func NewCoordinator(cfg Config, sessions *session.Manager, snap Snapshots,
	locker claim.Locker, engine rules.Engine, bc Broadcaster) *Coordinator {
	if cfg.DisconnectGrace <= 0 {
		cfg = DefaultConfig()
	}
	if bc == nil {
		bc = nopBroadcaster{}
	}
	return &Coordinator{
		cfg:      cfg,
		sessions: sessions,
		snap:     snap,
		locker:   locker,
		timers:   timers.NewRegistry(),
		engine:   engine,
		bc:       bc,
		matches:  map[string]*match.Match{},
	}
}

// SetBroadcaster wires the hub in after construction; the hub needs the
// coordinator first.
func (c *Coordinator) SetBroadcaster(bc Broadcaster) {
	if bc != nil {
		c.bc = bc
	}
}

// Match returns a deep copy of the match, or nil. Readers get a committed
// point-in-time snapshot; mutation stays in here.
func (c *Coordinator) Match(id string) *match.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matches[id].Clone()
}

func (c *Coordinator) Timers() *timers.Registry { return c.timers }

func botHandle() string { return "bot_" + store.NewID() }

func emptyHandle() string { return "empty_" + store.NewID() }

// persistMatch writes a best-effort snapshot after the in-memory commit.
func (c *Coordinator) persistMatch(ctx context.Context, m *match.Match) {
	if c.snap == nil {
		return
	}
	if err := c.snap.SaveMatch(ctx, m); err != nil {
		log.Warn().Err(err).Str("match_id", m.ID).Msg("match snapshot failed")
	}
}

// RunJanitor sweeps idle fallback sessions until ctx is cancelled.
func (c *Coordinator) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.sessions.SweepIdle(maxIdle); n > 0 {
				log.Debug().Int("swept", n).Msg("janitor removed idle sessions")
			}
		}
	}
}
