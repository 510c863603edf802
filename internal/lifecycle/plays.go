package lifecycle

import (
	"context"

	"tricktable/internal/match"
)

// ApplyBet routes a bet through the rule engine and reschedules the turn
// timer for whichever handle holds the turn afterwards.
func (c *Coordinator) ApplyBet(ctx context.Context, matchID, handle string, value int) error {
	return c.applyMove(ctx, matchID, handle, func(m *match.Match) error {
		return c.engine.ApplyBet(m, handle, value)
	})
}

// ApplyCardPlay routes a card play through the rule engine.
func (c *Coordinator) ApplyCardPlay(ctx context.Context, matchID, handle string, card match.Card) error {
	return c.applyMove(ctx, matchID, handle, func(m *match.Match) error {
		return c.engine.ApplyCardPlay(m, handle, card)
	})
}

func (c *Coordinator) applyMove(ctx context.Context, matchID, handle string, move func(*match.Match) error) error {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return ErrMatchNotFound
	}
	if m.Phase == match.PhaseFinished {
		c.mu.Unlock()
		return ErrMatchFinished
	}
	if m.SeatByHandle(handle) == nil {
		c.mu.Unlock()
		return ErrSeatNotFound
	}
	if err := move(m); err != nil {
		c.mu.Unlock()
		return err
	}
	c.timers.CancelTurnTimeout(matchID, handle)
	c.armTurnLocked(m)
	snapshot := m.Clone()
	c.mu.Unlock()

	c.persistMatch(ctx, snapshot)
	c.bc.MatchUpdated(matchID, snapshot)
	return nil
}
