package lifecycle

import (
	"context"

	"github.com/rs/zerolog/log"

	"tricktable/internal/match"
)

// ReplaceWithBot converts a human seat into a bot. The seat-change rule
// requires at least one human left and at most three bots afterwards; both
// halves are reported separately so the requester knows which one tripped.
func (c *Coordinator) ReplaceWithBot(ctx context.Context, matchID, name, level string) error {
	if level == "" {
		level = match.BotMedium
	}

	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return ErrMatchNotFound
	}
	seat := m.SeatByName(name)
	if seat == nil || seat.IsEmpty {
		c.mu.Unlock()
		return ErrSeatNotFound
	}
	if seat.IsBot {
		c.mu.Unlock()
		return ErrIsABot
	}
	if m.BotCount() >= match.MaxBots {
		c.mu.Unlock()
		return ErrBotLimit
	}
	if m.HumanCount() <= 1 {
		c.mu.Unlock()
		return ErrLastHuman
	}

	oldHandle := seat.Handle
	newHandle := botHandle()
	botName := m.PickBotName()
	match.Migrate(m, oldHandle, newHandle, name, botName)
	seat.IsBot = true
	seat.BotLevel = level
	seat.Connected = false
	seat.DisconnectedAt = nil
	seat.ReconnectTimeLeft = 0
	seatIndex := seat.SeatIndex

	// Bots never disconnect; whatever grace machinery the human left behind
	// comes down and nothing replaces it.
	c.timers.CancelGrace(matchID, oldHandle)
	c.timers.StopCountdown(matchID, oldHandle)
	c.timers.CancelTurnTimeout(matchID, oldHandle)
	if m.CurrentTurnHandle == newHandle {
		c.runBotTurnsLocked(m)
	}
	snapshot := m.Clone()
	c.mu.Unlock()

	c.sessions.RevokeName(ctx, name, matchID)
	c.persistMatch(ctx, snapshot)
	log.Info().Str("match_id", matchID).Str("name", name).
		Str("bot_name", botName).Str("level", level).Msg("seat converted to bot")
	c.bc.Notify(matchID, evPlayerConvertedToBot, map[string]any{
		"seat_index": seatIndex,
		"old_name":   name,
		"bot_name":   botName,
		"bot_level":  level,
	})
	c.bc.MatchUpdated(matchID, snapshot)
	return nil
}

// TakeOverBot hands a bot seat to a new human identity and returns that
// player's reconnect token.
func (c *Coordinator) TakeOverBot(ctx context.Context, matchID string, seatIndex int, newName, newHandle string) (string, error) {
	if seatIndex < 0 || seatIndex >= match.NumSeats {
		return "", ErrBadSeatIndex
	}

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
	if seat == nil || !seat.IsBot {
		c.mu.Unlock()
		return "", ErrNotABot
	}
	if m.NameInUse(newName, seatIndex) {
		c.mu.Unlock()
		return "", ErrNameTaken
	}

	oldHandle := seat.Handle
	botName := seat.Name
	match.Migrate(m, oldHandle, newHandle, botName, newName)
	seat.IsBot = false
	seat.BotLevel = ""
	seat.Connected = true
	m.NoteHumansSeated()
	if m.CurrentTurnHandle == newHandle {
		c.armTurnLocked(m)
	}
	snapshot := m.Clone()
	c.mu.Unlock()

	token := c.sessions.Issue(ctx, newName, matchID, newHandle)
	c.persistMatch(ctx, snapshot)
	log.Info().Str("match_id", matchID).Str("bot_name", botName).
		Str("name", newName).Int("seat", seatIndex).Msg("bot taken over")
	c.bc.Notify(matchID, evBotTakenOver, map[string]any{
		"seat_index": seatIndex,
		"bot_name":   botName,
		"name":       newName,
	})
	c.bc.MatchUpdated(matchID, snapshot)
	return token, nil
}

// KickPlayer lets the match creator force a seat over to a bot. The same
// seat-change rule applies; a kick that would leave no humans is rejected.
func (c *Coordinator) KickPlayer(ctx context.Context, matchID, requesterName, targetName string) error {
	c.mu.Lock()
	m := c.matches[matchID]
	if m == nil {
		c.mu.Unlock()
		return ErrMatchNotFound
	}
	if m.CreatorName != requesterName {
		c.mu.Unlock()
		return ErrNotCreator
	}
	c.mu.Unlock()

	if err := c.ReplaceWithBot(ctx, matchID, targetName, match.BotMedium); err != nil {
		return err
	}
	c.bc.Notify(matchID, evPlayerKicked, map[string]any{
		"name":      targetName,
		"kicked_by": requesterName,
	})
	return nil
}
