package lifecycle

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tricktable/internal/match"
)

// HandleDisconnect moves a seat into the disconnect grace window after a
// transport loss. The grace timer and the countdown ticker are keyed by the
// handle active at disconnect time; a later reconnect migrates the handle
// away, which is what makes a stale grace fire a structural no-op.
func (c *Coordinator) HandleDisconnect(matchID, handle string) {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return
	}
	seat := m.SeatByHandle(handle)
	if seat == nil || seat.IsBot || seat.IsEmpty || !seat.Connected {
		c.mu.Unlock()
		return
	}

	now := time.Now()
	seat.Connected = false
	seat.DisconnectedAt = &now
	seat.ReconnectTimeLeft = int(c.cfg.DisconnectGrace / time.Second)
	seatIndex := seat.SeatIndex
	name := seat.Name

	// Only the disconnected player's own turn timer comes down; everyone
	// else's stays armed.
	if m.CurrentTurnHandle == handle {
		c.timers.CancelTurnTimeout(matchID, handle)
	}
	c.timers.SetGrace(matchID, handle, c.cfg.DisconnectGrace, func() {
		c.onGraceExpired(matchID, handle)
	})
	c.timers.StartCountdown(matchID, handle, c.cfg.CountdownTick, func() {
		c.onCountdownTick(matchID, handle)
	})
	snapshot := m.Clone()
	c.mu.Unlock()

	log.Info().Str("match_id", matchID).Str("name", name).
		Str("handle", handle).Msg("player disconnected, grace started")
	c.bc.Notify(matchID, evPlayerDisconnected, map[string]any{
		"seat_index":          seatIndex,
		"name":                name,
		"reconnect_time_left": int(c.cfg.DisconnectGrace / time.Second),
	})
	c.bc.MatchUpdated(matchID, snapshot)
}

// HandleReconnect restores a seat from a valid session token. Token
// validation may suspend on the store, so the match is fetched from the live
// map only after it returns, and the seat is found by stable name: the handle
// the token was issued against may already have been migrated away.
func (c *Coordinator) HandleReconnect(ctx context.Context, token, newHandle string) (*match.Match, error) {
	rec, err := c.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	m := c.matches[rec.MatchID]
	if m == nil {
		c.mu.Unlock()
		return nil, ErrMatchNotFound
	}
	if m.Phase == match.PhaseFinished {
		c.mu.Unlock()
		return nil, ErrMatchFinished
	}
	seat := m.SeatByName(rec.Name)
	if seat == nil || seat.IsEmpty {
		c.mu.Unlock()
		return nil, ErrSeatNotFound
	}
	if seat.IsBot {
		c.mu.Unlock()
		return nil, ErrIsABot
	}

	oldHandle := seat.Handle
	match.Migrate(m, oldHandle, newHandle, rec.Name, rec.Name)
	seat.Connected = true
	seat.DisconnectedAt = nil
	seat.ReconnectTimeLeft = 0
	seatIndex := seat.SeatIndex

	c.timers.CancelGrace(rec.MatchID, oldHandle)
	c.timers.StopCountdown(rec.MatchID, oldHandle)
	if m.CurrentTurnHandle == newHandle {
		c.timers.CancelTurnTimeout(rec.MatchID, oldHandle)
		c.armTurnLocked(m)
	}
	// A returning player saves an abandoned match.
	c.timers.CancelDeletion(rec.MatchID)
	snapshot := m.Clone()
	c.mu.Unlock()

	c.sessions.Touch(ctx, token, newHandle)
	c.persistMatch(ctx, snapshot)
	log.Info().Str("match_id", rec.MatchID).Str("name", rec.Name).
		Str("old_handle", oldHandle).Str("new_handle", newHandle).
		Msg("player reconnected")
	c.bc.Notify(rec.MatchID, evPlayerReconnected, map[string]any{
		"seat_index": seatIndex,
		"name":       rec.Name,
	})
	c.bc.MatchUpdated(rec.MatchID, snapshot)
	return snapshot, nil
}

// onGraceExpired turns a still-disconnected seat into an empty placeholder.
// The seat is re-validated at fire time; anything else is a stale fire.
func (c *Coordinator) onGraceExpired(matchID, handle string) {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return
	}
	seat := m.SeatByHandle(handle)
	if seat == nil || seat.IsBot || seat.IsEmpty || seat.Connected {
		c.mu.Unlock()
		return
	}
	c.timers.StopCountdown(matchID, handle)

	departed := seat.Name
	seatIndex := seat.SeatIndex
	eh := emptyHandle()
	// History stays keyed by the departed name; the handle references must
	// follow the seat so nothing in the match points at a dead connection.
	match.Migrate(m, handle, eh, departed, departed)
	seat.MakeEmpty(eh)

	allEmpty := m.AllSeatsEmpty()
	if allEmpty && !c.timers.HasDeletion(matchID) {
		d := c.cfg.SoloDelete
		if m.LongDeletionWindow() {
			d = c.cfg.AbandonedDelete
		}
		c.timers.SetDeletion(matchID, d, func() { c.onDeletionFire(matchID) })
	}
	snapshot := m.Clone()
	c.mu.Unlock()

	c.sessions.RevokeName(context.Background(), departed, matchID)
	c.persistMatch(context.Background(), snapshot)
	log.Info().Str("match_id", matchID).Str("name", departed).
		Int("seat", seatIndex).Bool("all_empty", allEmpty).
		Msg("grace expired, seat emptied")
	c.bc.Notify(matchID, evSeatBecameEmpty, map[string]any{
		"seat_index":    seatIndex,
		"departed_name": departed,
	})
	c.bc.MatchUpdated(matchID, snapshot)
}

// onDeletionFire removes a match every seat of which is still empty.
func (c *Coordinator) onDeletionFire(matchID string) {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil || !m.AllSeatsEmpty() {
		c.mu.Unlock()
		return
	}
	delete(c.matches, matchID)
	c.mu.Unlock()

	c.timers.CancelMatch(matchID)
	c.sessions.RevokeMatch(context.Background(), matchID)
	if c.snap != nil {
		if err := c.snap.DeleteMatch(context.Background(), matchID); err != nil {
			log.Warn().Err(err).Str("match_id", matchID).Msg("match snapshot delete failed")
		}
	}
	log.Info().Str("match_id", matchID).Msg("abandoned match deleted")
	c.bc.Notify(matchID, evMatchDeleted, map[string]any{"match_id": matchID})
}

// onCountdownTick counts the grace window down and broadcasts the remaining
// time on the throttle schedule.
func (c *Coordinator) onCountdownTick(matchID, handle string) {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		c.timers.StopCountdown(matchID, handle)
		return
	}
	seat := m.SeatByHandle(handle)
	if seat == nil || seat.IsBot || seat.IsEmpty || seat.Connected {
		c.mu.Unlock()
		c.timers.StopCountdown(matchID, handle)
		return
	}
	if seat.ReconnectTimeLeft > 0 {
		seat.ReconnectTimeLeft--
	}
	remaining := seat.ReconnectTimeLeft
	seatIndex := seat.SeatIndex
	name := seat.Name
	c.mu.Unlock()

	if remaining <= 0 {
		// Grace expiry owns the seat transition.
		c.timers.StopCountdown(matchID, handle)
		return
	}
	if shouldBroadcastCountdown(remaining) {
		c.bc.Notify(matchID, evReconnectCountdown, map[string]any{
			"seat_index":          seatIndex,
			"name":                name,
			"reconnect_time_left": remaining,
		})
	}
}

// shouldBroadcastCountdown thins the 1 Hz tick out for the room: the more
// time remains, the less often the table hears about it.
func shouldBroadcastCountdown(remaining int) bool {
	switch {
	case remaining > 300:
		return remaining%60 == 0
	case remaining > 120:
		return remaining%30 == 0
	case remaining > 30:
		return remaining%10 == 0
	case remaining > 10:
		return remaining%5 == 0
	default:
		return true
	}
}
