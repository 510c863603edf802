package match

import (
	"strings"
	"testing"
	"time"
)

func TestSeatStateIsExclusive(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		p    *Player
		want SeatState
	}{
		{"connected human", &Player{Name: "Alice", Connected: true}, SeatConnected},
		{"disconnected human", &Player{Name: "Alice", DisconnectedAt: &now}, SeatDisconnected},
		{"bot", &Player{Name: "Bot Ada", IsBot: true}, SeatBot},
		{"empty", &Player{Name: EmptyName(0, "Alice"), IsEmpty: true}, SeatEmpty},
	}
	for _, tc := range cases {
		if got := tc.p.State(); got != tc.want {
			t.Fatalf("%s: State() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSeatChangeAllowed(t *testing.T) {
	m := New("m1", "Alice", false)
	m.Seats[0] = NewHuman("Alice", "h1", 0)
	m.Seats[1] = NewHuman("Bob", "h2", 1)
	m.Seats[2] = &Player{Name: "Bot Ada", Handle: "b1", SeatIndex: 2, IsBot: true}
	m.Seats[3] = &Player{Name: "Bot Flo", Handle: "b2", SeatIndex: 3, IsBot: true}

	if !m.SeatChangeAllowed(0) {
		t.Fatal("converting Alice should be allowed: 3 bots after, Bob remains human")
	}

	// Converting the last remaining human after Alice goes must fail.
	m.Seats[0].IsBot = true
	if m.SeatChangeAllowed(1) {
		t.Fatal("converting Bob would leave a fully bot match")
	}

	// Three bots present: no further conversion even with two humans.
	m2 := New("m2", "Alice", false)
	m2.Seats[0] = NewHuman("Alice", "h1", 0)
	m2.Seats[1] = &Player{Name: "Bot Ada", IsBot: true, SeatIndex: 1}
	m2.Seats[2] = &Player{Name: "Bot Flo", IsBot: true, SeatIndex: 2}
	m2.Seats[3] = &Player{Name: "Bot Grace", IsBot: true, SeatIndex: 3}
	if m2.SeatChangeAllowed(0) {
		t.Fatal("conversion with 3 bots present must be rejected")
	}

	// Bots and empty seats are never convertible.
	if m.SeatChangeAllowed(2) {
		t.Fatal("a bot seat is not convertible")
	}
}

func TestMakeEmptyKeepsTeamAndSeat(t *testing.T) {
	p := NewHuman("Alice", "h1", 2)
	p.Hand = []Card{"AS"}
	p.TricksWon = 3
	p.Score = 12

	p.MakeEmpty("empty_1")

	if p.State() != SeatEmpty {
		t.Fatalf("State() = %q, want empty", p.State())
	}
	if p.Team != 0 || p.SeatIndex != 2 {
		t.Fatalf("team/seat changed: %d/%d", p.Team, p.SeatIndex)
	}
	if !strings.Contains(p.Name, "Alice") {
		t.Fatalf("placeholder name %q should embed the departed name", p.Name)
	}
	if p.Hand != nil || p.TricksWon != 0 || p.Score != 0 {
		t.Fatal("hand and stats must be cleared")
	}
}

func TestLongDeletionWindow(t *testing.T) {
	m := New("m1", "Alice", false)
	m.Seats[0] = NewHuman("Alice", "h1", 0)
	if m.LongDeletionWindow() {
		t.Fatal("solo match should use the short window")
	}

	m.Seats[1] = NewHuman("Bob", "h2", 1)
	m.NoteHumansSeated()
	if !m.LongDeletionWindow() {
		t.Fatal("match that seated two humans should use the long window")
	}

	// The latch must survive the second human leaving.
	m.Seats[1].MakeEmpty("empty_1")
	if !m.LongDeletionWindow() {
		t.Fatal("EverMultiHuman must latch")
	}

	quick := New("m2", "Alice", true)
	quick.Seats[0] = NewHuman("Alice", "h1", 0)
	if !quick.LongDeletionWindow() {
		t.Fatal("quick play always uses the long window")
	}
}

func TestPickBotNameAvoidsCollisions(t *testing.T) {
	m := New("m1", "Alice", false)
	m.Seats[0] = NewHuman(botNamePool[0], "h1", 0)

	name := m.PickBotName()
	if name == botNamePool[0] {
		t.Fatalf("PickBotName returned a name already seated: %q", name)
	}
	if m.NameInUse(name, -1) {
		t.Fatalf("PickBotName returned in-use name %q", name)
	}
}
