// Package rules is the seam between the session layer and the game rule
// engine. The session layer never inspects cards or bets itself; it hands the
// match to an Engine and broadcasts whatever comes back.
package rules

import (
	"errors"

	"tricktable/internal/match"
)

var (
	ErrNotYourTurn = errors.New("not_your_turn")
	ErrInvalidPlay = errors.New("invalid_play")
	ErrInvalidBet  = errors.New("invalid_bet")
)

type Engine interface {
	// ApplyBet validates and records a bet for the seat holding handle,
	// advancing the turn. Transitions the match to the playing phase once
	// every seat has bet.
	ApplyBet(m *match.Match, handle string, value int) error

	// ApplyCardPlay validates and records a card play, resolving the trick
	// when it is the fourth card and advancing the turn.
	ApplyCardPlay(m *match.Match, handle string, card match.Card) error

	// AutoPlay makes the lowest-effort legal move for the seat holding
	// handle. Used when a turn timer fires or a bot must act.
	AutoPlay(m *match.Match, handle string) error

	// StartNextRound deals a fresh round once the previous one is scored.
	StartNextRound(m *match.Match) error
}

// NopEngine accepts every move without validation. Lifecycle tests use it so
// they can drive matches through phases without a real rule set.
type NopEngine struct{}

func (NopEngine) ApplyBet(m *match.Match, handle string, value int) error {
	if p := m.SeatByHandle(handle); p != nil {
		m.Bets = append(m.Bets, match.Bet{Handle: handle, Name: p.Name, Value: value})
	}
	return nil
}

func (NopEngine) ApplyCardPlay(m *match.Match, handle string, card match.Card) error {
	m.CurrentTrick = append(m.CurrentTrick, match.TrickCard{Handle: handle, Card: card})
	return nil
}

func (NopEngine) AutoPlay(m *match.Match, handle string) error { return nil }

func (NopEngine) StartNextRound(m *match.Match) error { return nil }
