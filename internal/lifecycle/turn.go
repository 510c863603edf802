package lifecycle

import (
	"github.com/rs/zerolog/log"

	"tricktable/internal/match"
)

// NoteTurnStarted arms the turn timer for whichever handle currently holds
// the turn. The rule-engine boundary calls this after every committed play or
// bet; rescheduling always cancels the previous holder first.
func (c *Coordinator) NoteTurnStarted(matchID string) {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return
	}
	c.armTurnLocked(m)
	c.mu.Unlock()
}

// armTurnLocked arms a turn timer for the current turn holder when that seat
// is a connected human. Bots act immediately instead of waiting a timeout.
func (c *Coordinator) armTurnLocked(m *match.Match) {
	handle := m.CurrentTurnHandle
	if handle == "" {
		return
	}
	seat := m.SeatByHandle(handle)
	if seat == nil || seat.IsEmpty {
		return
	}
	if seat.IsBot {
		c.runBotTurnsLocked(m)
		return
	}
	if !seat.Connected {
		return
	}
	matchID := m.ID
	c.timers.SetTurnTimeout(matchID, handle, c.cfg.TurnTimeout, func() {
		c.onTurnTimeout(matchID, handle)
	})
}

// onTurnTimeout auto-plays for a handle that sat on its turn too long. The
// turn holder is re-checked at fire time; a handle that lost the turn (or was
// migrated away) makes the fire a no-op.
func (c *Coordinator) onTurnTimeout(matchID, handle string) {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil || m.CurrentTurnHandle != handle {
		c.mu.Unlock()
		return
	}
	if err := c.engine.AutoPlay(m, handle); err != nil {
		log.Warn().Err(err).Str("match_id", matchID).Str("handle", handle).
			Msg("auto-play after turn timeout failed")
		c.mu.Unlock()
		return
	}
	log.Info().Str("match_id", matchID).Str("handle", handle).
		Msg("turn timed out, auto-played")
	c.armTurnLocked(m)
	snapshot := m.Clone()
	c.mu.Unlock()

	c.bc.MatchUpdated(matchID, snapshot)
}

// runBotTurnsLocked drains consecutive bot turns. Bounded by the seat count
// so a rule-engine bug cannot spin this loop forever.
func (c *Coordinator) runBotTurnsLocked(m *match.Match) {
	for i := 0; i < match.NumSeats; i++ {
		seat := m.SeatByHandle(m.CurrentTurnHandle)
		if seat == nil || !seat.IsBot {
			break
		}
		if err := c.engine.AutoPlay(m, seat.Handle); err != nil {
			log.Warn().Err(err).Str("match_id", m.ID).Str("handle", seat.Handle).
				Msg("bot auto-play failed")
			return
		}
	}
	if seat := m.SeatByHandle(m.CurrentTurnHandle); seat != nil && !seat.IsBot &&
		!seat.IsEmpty && seat.Connected {
		matchID, handle := m.ID, seat.Handle
		c.timers.SetTurnTimeout(matchID, handle, c.cfg.TurnTimeout, func() {
			c.onTurnTimeout(matchID, handle)
		})
	}
}
