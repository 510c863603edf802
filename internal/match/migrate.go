package match

// Migrate rewrites, in place, every field in m that equals oldHandle to
// newHandle and, only when the stable name also changes (bot conversion or
// takeover, not a plain reconnect), every field that equals oldName to
// newName. Name-keyed maps move the value under the new key and delete the
// old key.
//
// The surfaces below are the complete enumeration; rewriting references
// anywhere else in the codebase is a bug. Re-running with the same
// arguments after completion is a no-op, and nothing outside m is touched.
func Migrate(m *Match, oldHandle, newHandle, oldName, newName string) {
	renamed := oldName != newName

	for _, p := range m.Seats {
		if p == nil {
			continue
		}
		if p.Handle == oldHandle {
			p.Handle = newHandle
		}
		if renamed && p.Name == oldName {
			p.Name = newName
		}
	}

	if m.CurrentTurnHandle == oldHandle {
		m.CurrentTurnHandle = newHandle
	}

	for i := range m.CurrentTrick {
		if m.CurrentTrick[i].Handle == oldHandle {
			m.CurrentTrick[i].Handle = newHandle
		}
	}

	if m.PreviousTrick != nil {
		migrateTrick(m.PreviousTrick, oldHandle, newHandle, oldName, newName)
	}

	for i := range m.Bets {
		migrateBet(&m.Bets[i], oldHandle, newHandle, oldName, newName)
	}
	if m.HighestBet != nil {
		migrateBet(m.HighestBet, oldHandle, newHandle, oldName, newName)
	}

	for r := range m.Rounds {
		round := &m.Rounds[r]
		for t := range round.Tricks {
			migrateTrick(&round.Tricks[t], oldHandle, newHandle, oldName, newName)
		}
		if renamed {
			moveKey(round.Stats, oldName, newName)
			moveKey(round.InitialHands, oldName, newName)
			moveKey(round.Bets, oldName, newName)
		}
	}

	if renamed {
		replaceAll(m.ReadyList, oldName, newName)
		replaceAll(m.RematchVotes, oldName, newName)
		moveKey(m.RoundStats, oldName, newName)
	}
	moveKey(m.TrickCounts, oldHandle, newHandle)
}

func migrateTrick(t *CompletedTrick, oldHandle, newHandle, oldName, newName string) {
	for i := range t.Cards {
		if t.Cards[i].Handle == oldHandle {
			t.Cards[i].Handle = newHandle
		}
	}
	if t.WinnerHandle == oldHandle {
		t.WinnerHandle = newHandle
	}
	if oldName != newName && t.WinnerName == oldName {
		t.WinnerName = newName
	}
}

func migrateBet(b *Bet, oldHandle, newHandle, oldName, newName string) {
	if b.Handle == oldHandle {
		b.Handle = newHandle
	}
	if oldName != newName && b.Name == oldName {
		b.Name = newName
	}
}

// moveKey relocates the value stored under oldKey to newKey and removes
// oldKey. No-op when oldKey is absent, so repeated migration is safe.
func moveKey[V any](m map[string]V, oldKey, newKey string) {
	if m == nil || oldKey == newKey {
		return
	}
	v, ok := m[oldKey]
	if !ok {
		return
	}
	m[newKey] = v
	delete(m, oldKey)
}

func replaceAll(list []string, old, new string) {
	for i := range list {
		if list[i] == old {
			list[i] = new
		}
	}
}
