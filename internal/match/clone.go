package match

import (
	"maps"
	"slices"
)

// Clone returns a deep copy of m. The coordinator commits every mutation
// under its mutex and hands out clones, never the live object, to anything
// running outside it: the broadcaster, the snapshot store, HTTP readers.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	out := *m
	for i, p := range m.Seats {
		out.Seats[i] = p.clone()
	}
	out.CurrentTrick = slices.Clone(m.CurrentTrick)
	out.PreviousTrick = m.PreviousTrick.clone()
	out.Bets = slices.Clone(m.Bets)
	if m.HighestBet != nil {
		b := *m.HighestBet
		out.HighestBet = &b
	}
	if m.Rounds != nil {
		out.Rounds = make([]Round, len(m.Rounds))
		for i := range m.Rounds {
			out.Rounds[i] = m.Rounds[i].clone()
		}
	}
	out.ReadyList = slices.Clone(m.ReadyList)
	out.RematchVotes = slices.Clone(m.RematchVotes)
	out.RoundStats = cloneStats(m.RoundStats)
	out.TrickCounts = maps.Clone(m.TrickCounts)
	return &out
}

func (p *Player) clone() *Player {
	if p == nil {
		return nil
	}
	out := *p
	out.Hand = slices.Clone(p.Hand)
	if p.DisconnectedAt != nil {
		at := *p.DisconnectedAt
		out.DisconnectedAt = &at
	}
	return &out
}

func (t *CompletedTrick) clone() *CompletedTrick {
	if t == nil {
		return nil
	}
	out := *t
	out.Cards = slices.Clone(t.Cards)
	return &out
}

func (r Round) clone() Round {
	out := r
	if r.Tricks != nil {
		out.Tricks = make([]CompletedTrick, len(r.Tricks))
		for i := range r.Tricks {
			out.Tricks[i] = *r.Tricks[i].clone()
		}
	}
	out.Stats = cloneStats(r.Stats)
	if r.InitialHands != nil {
		out.InitialHands = make(map[string][]Card, len(r.InitialHands))
		for name, hand := range r.InitialHands {
			out.InitialHands[name] = slices.Clone(hand)
		}
	}
	out.Bets = maps.Clone(r.Bets)
	return out
}

func cloneStats(stats map[string]*PlayerRoundStats) map[string]*PlayerRoundStats {
	if stats == nil {
		return nil
	}
	out := make(map[string]*PlayerRoundStats, len(stats))
	for name, s := range stats {
		if s == nil {
			out[name] = nil
			continue
		}
		copied := *s
		out[name] = &copied
	}
	return out
}
