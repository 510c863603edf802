package lifecycle

import (
	"context"

	"github.com/rs/zerolog/log"

	"tricktable/internal/claim"
	"tricktable/internal/match"
	"tricktable/internal/store"
)

// CreateMatch opens a new match with the creator seated at seat 0. Quick-play
// fills the remaining seats with bots; otherwise they start empty and await
// claims. Returns the match and the creator's reconnect token.
func (c *Coordinator) CreateMatch(ctx context.Context, creatorName, handle string, quickPlay bool) (*match.Match, string, error) {
	m := match.New(store.NewID(), creatorName, quickPlay)
	m.Seats[0] = match.NewHuman(creatorName, handle, 0)
	for i := 1; i < match.NumSeats; i++ {
		if quickPlay {
			m.Seats[i] = match.NewBot(m.PickBotName(), botHandle(), i, match.BotMedium)
		} else {
			m.Seats[i] = match.NewEmptySeat(emptyHandle(), i)
		}
	}

	c.mu.Lock()
	c.matches[m.ID] = m
	snapshot := m.Clone()
	c.mu.Unlock()

	token := c.sessions.Issue(ctx, creatorName, snapshot.ID, handle)
	c.persistMatch(ctx, snapshot)
	log.Info().Str("match_id", snapshot.ID).Str("creator", creatorName).
		Bool("quick_play", quickPlay).Msg("match created")
	c.bc.MatchUpdated(snapshot.ID, snapshot)
	return snapshot, token, nil
}

// ClaimSeat seats a new stable identity on an empty seat. The claim lock
// closes the race where two requests observe the same empty seat; the seat is
// re-validated against the live match after the lock is held, and the lock is
// released on every exit path.
func (c *Coordinator) ClaimSeat(ctx context.Context, matchID string, seatIndex int, name, handle string) (string, error) {
	if seatIndex < 0 || seatIndex >= match.NumSeats {
		return "", ErrBadSeatIndex
	}
	release, ok, err := c.locker.Acquire(ctx, claim.Key(matchID, seatIndex))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrSeatClaimHeld
	}
	defer release()

	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return "", ErrMatchNotFound
	}
	if m.Phase == match.PhaseFinished {
		c.mu.Unlock()
		return "", ErrMatchFinished
	}
	seat := m.Seats[seatIndex]
	if seat == nil || !seat.IsEmpty {
		c.mu.Unlock()
		return "", ErrSeatNotEmpty
	}
	if m.NameInUse(name, seatIndex) {
		c.mu.Unlock()
		return "", ErrNameTaken
	}

	vacated := seat.Handle
	m.Seats[seatIndex] = match.NewHuman(name, handle, seatIndex)
	// Cards, trick counts and the turn marker left behind by a departed
	// occupant still carry the seat's placeholder handle; they follow the
	// seat to the claimant. History keyed by the departed name stays put.
	match.Migrate(m, vacated, handle, name, name)
	m.NoteHumansSeated()
	if m.CurrentTurnHandle == handle {
		c.armTurnLocked(m)
	}
	// The deletion timer only has meaning while seats sit empty; once the
	// last empty seat is claimed it comes down.
	if !m.AnySeatEmpty() {
		c.timers.CancelDeletion(matchID)
	}
	snapshot := m.Clone()
	c.mu.Unlock()

	token := c.sessions.Issue(ctx, name, matchID, handle)
	c.persistMatch(ctx, snapshot)
	log.Info().Str("match_id", matchID).Int("seat", seatIndex).
		Str("name", name).Msg("seat claimed")
	c.bc.Notify(matchID, evSeatClaimed, map[string]any{
		"seat_index": seatIndex,
		"name":       name,
	})
	c.bc.MatchUpdated(matchID, snapshot)
	return token, nil
}

// MarkReady records a player on the ready list, once.
func (c *Coordinator) MarkReady(matchID, name string) error {
	return c.appendNameList(matchID, name, func(m *match.Match) *[]string { return &m.ReadyList })
}

// VoteRematch records a rematch vote, once.
func (c *Coordinator) VoteRematch(matchID, name string) error {
	return c.appendNameList(matchID, name, func(m *match.Match) *[]string { return &m.RematchVotes })
}

func (c *Coordinator) appendNameList(matchID, name string, pick func(*match.Match) *[]string) error {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return ErrMatchNotFound
	}
	if m.SeatByName(name) == nil {
		c.mu.Unlock()
		return ErrSeatNotFound
	}
	list := pick(m)
	for _, n := range *list {
		if n == name {
			c.mu.Unlock()
			return nil
		}
	}
	*list = append(*list, name)
	snapshot := m.Clone()
	c.mu.Unlock()

	c.bc.MatchUpdated(matchID, snapshot)
	return nil
}
