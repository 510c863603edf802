package match

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// populatedMatch builds a match in which the handle h1 / name Alice appears
// on every surface the migrator must cover.
func populatedMatch() *Match {
	m := New("m1", "Alice", false)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.Seats[0] = &Player{Name: "Alice", Handle: "h1", Team: 0, SeatIndex: 0, Connected: true, Hand: []Card{"AS", "KH"}}
	m.Seats[1] = &Player{Name: "Bob", Handle: "h2", Team: 1, SeatIndex: 1, Connected: true}
	m.Seats[2] = &Player{Name: "Bot Carol", Handle: "b1", Team: 0, SeatIndex: 2, IsBot: true, BotLevel: BotMedium}
	m.Seats[3] = &Player{Name: "Dana", Handle: "h4", Team: 1, SeatIndex: 3, Connected: false, DisconnectedAt: &now}

	m.CurrentTurnHandle = "h1"
	m.CurrentTrick = []TrickCard{{Handle: "h1", Card: "QS"}, {Handle: "h2", Card: "2S"}}
	m.PreviousTrick = &CompletedTrick{
		Cards:        []TrickCard{{Handle: "h1", Card: "3D"}, {Handle: "b1", Card: "4D"}},
		WinnerHandle: "h1",
		WinnerName:   "Alice",
	}
	m.Bets = []Bet{{Handle: "h1", Name: "Alice", Value: 4}, {Handle: "h2", Name: "Bob", Value: 2}}
	m.HighestBet = &Bet{Handle: "h1", Name: "Alice", Value: 4}
	m.Rounds = []Round{{
		Number: 1,
		Tricks: []CompletedTrick{{
			Cards:        []TrickCard{{Handle: "h1", Card: "5C"}, {Handle: "h4", Card: "6C"}},
			WinnerHandle: "h1",
			WinnerName:   "Alice",
		}},
		Stats:        map[string]*PlayerRoundStats{"Alice": {Bet: 4, TricksWon: 5, Points: 4}, "Bob": {Bet: 2}},
		InitialHands: map[string][]Card{"Alice": {"AS", "KH"}, "Bob": {"2C"}},
		Bets:         map[string]int{"Alice": 4, "Bob": 2},
	}}
	m.ReadyList = []string{"Alice", "Bob"}
	m.RematchVotes = []string{"Alice"}
	m.RoundStats = map[string]*PlayerRoundStats{"Alice": {TricksWon: 2}, "Bob": {}}
	m.TrickCounts = map[string]int{"h1": 2, "h2": 1}
	return m
}

// containsToken scans the match's JSON form for a bare string token; used
// to prove no surface was missed.
func containsToken(t *testing.T, m *Match, token string) bool {
	t.Helper()
	blob, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal match: %v", err)
	}
	return strings.Contains(string(blob), `"`+token+`"`)
}

func TestMigrateReconnectLeavesNoOldHandle(t *testing.T) {
	m := populatedMatch()

	Migrate(m, "h1", "h9", "Alice", "Alice")

	if containsToken(t, m, "h1") {
		t.Fatalf("old handle h1 survives somewhere in the match: %+v", m)
	}
	if m.Seats[0].Handle != "h9" {
		t.Fatalf("seat handle = %q, want h9", m.Seats[0].Handle)
	}
	if m.CurrentTurnHandle != "h9" {
		t.Fatalf("current turn handle = %q, want h9", m.CurrentTurnHandle)
	}
	if m.PreviousTrick.WinnerHandle != "h9" {
		t.Fatalf("previous trick winner = %q, want h9", m.PreviousTrick.WinnerHandle)
	}
	if m.HighestBet.Handle != "h9" {
		t.Fatalf("highest bet handle = %q, want h9", m.HighestBet.Handle)
	}
	if got := m.TrickCounts["h9"]; got != 2 {
		t.Fatalf("trick count under h9 = %d, want 2", got)
	}
	if _, stale := m.TrickCounts["h1"]; stale {
		t.Fatal("trick count still keyed by h1")
	}
	// Plain reconnect must not touch names.
	if m.Seats[0].Name != "Alice" || m.Rounds[0].Bets["Alice"] != 4 {
		t.Fatal("reconnect migration changed name-keyed data")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	once := populatedMatch()
	twice := populatedMatch()

	Migrate(once, "h1", "h9", "Alice", "Alice")
	Migrate(twice, "h1", "h9", "Alice", "Alice")
	Migrate(twice, "h1", "h9", "Alice", "Alice")

	a, _ := json.Marshal(once)
	b, _ := json.Marshal(twice)
	if string(a) != string(b) {
		t.Fatalf("second migration changed state:\nonce:  %s\ntwice: %s", a, b)
	}
}

func TestMigrateTakeoverRenamesEverySurface(t *testing.T) {
	m := populatedMatch()
	// Seed bot references across history, as a real mid-game takeover sees.
	m.Rounds[0].Tricks[0].Cards = append(m.Rounds[0].Tricks[0].Cards, TrickCard{Handle: "b1", Card: "7C"})
	m.Rounds[0].Stats["Bot Carol"] = &PlayerRoundStats{Bet: 1, TricksWon: 1}
	m.Rounds[0].InitialHands["Bot Carol"] = []Card{"9H"}
	m.Rounds[0].Bets["Bot Carol"] = 1
	m.ReadyList = append(m.ReadyList, "Bot Carol")
	m.RoundStats["Bot Carol"] = &PlayerRoundStats{}
	m.TrickCounts["b1"] = 1

	Migrate(m, "b1", "h9", "Bot Carol", "Dave")

	if containsToken(t, m, "b1") {
		t.Fatal("old bot handle b1 survives somewhere in the match")
	}
	if containsToken(t, m, "Bot Carol") {
		t.Fatal("old bot name survives somewhere in the match")
	}
	if m.Seats[2].Name != "Dave" || m.Seats[2].Handle != "h9" {
		t.Fatalf("seat 2 = %q/%q, want Dave/h9", m.Seats[2].Name, m.Seats[2].Handle)
	}
	if got := m.Rounds[0].Stats["Dave"]; got == nil || got.TricksWon != 1 {
		t.Fatalf("round stats not moved to Dave: %+v", m.Rounds[0].Stats)
	}
	if _, stale := m.Rounds[0].Stats["Bot Carol"]; stale {
		t.Fatal("round stats old key not deleted")
	}
	if got := m.Rounds[0].Bets["Dave"]; got != 1 {
		t.Fatalf("round bet not moved to Dave: %+v", m.Rounds[0].Bets)
	}
	if string(m.Rounds[0].InitialHands["Dave"][0]) != "9H" {
		t.Fatalf("initial hand not moved to Dave: %+v", m.Rounds[0].InitialHands)
	}
	if m.ReadyList[2] != "Dave" {
		t.Fatalf("ready list entry not replaced in place: %v", m.ReadyList)
	}
}

func TestMigrateDoesNotTouchOtherSeats(t *testing.T) {
	m := populatedMatch()

	Migrate(m, "h1", "h9", "Alice", "Alice")

	if m.Seats[1].Handle != "h2" || m.Seats[3].Handle != "h4" {
		t.Fatal("migration rewrote unrelated seat handles")
	}
	if m.Bets[1].Handle != "h2" || m.Bets[1].Name != "Bob" {
		t.Fatalf("migration rewrote Bob's bet: %+v", m.Bets[1])
	}
	if m.TrickCounts["h2"] != 1 {
		t.Fatal("migration disturbed Bob's trick count")
	}
}
