package match

import "fmt"

// Bot difficulty tiers.
const (
	BotEasy   = "easy"
	BotMedium = "medium"
	BotHard   = "hard"
)

var botNamePool = []string{
	"Bot Ada", "Bot Blaise", "Bot Carol", "Bot Dmitri",
	"Bot Edsger", "Bot Flo", "Bot Grace", "Bot Haskell",
}

// NewHuman seats a connected human occupant. Team follows the fixed
// partnership layout: seats 0/2 vs seats 1/3.
func NewHuman(name, handle string, seatIndex int) *Player {
	return &Player{
		Name:      name,
		Handle:    handle,
		Team:      seatIndex % 2,
		SeatIndex: seatIndex,
		Connected: true,
	}
}

// NewBot seats a bot occupant with a synthetic handle.
func NewBot(name, handle string, seatIndex int, level string) *Player {
	return &Player{
		Name:      name,
		Handle:    handle,
		Team:      seatIndex % 2,
		SeatIndex: seatIndex,
		IsBot:     true,
		BotLevel:  level,
	}
}

// NewEmptySeat is a never-occupied placeholder, used at match creation for
// seats awaiting a claim.
func NewEmptySeat(handle string, seatIndex int) *Player {
	return &Player{
		Name:      fmt.Sprintf("Empty Seat %d", seatIndex+1),
		Handle:    handle,
		Team:      seatIndex % 2,
		SeatIndex: seatIndex,
		IsEmpty:   true,
	}
}

// EmptyName builds the placeholder display name for a vacated seat. It
// embeds the departed player's name for the table UI but is never reused
// as an active identity.
func EmptyName(seatIndex int, departedName string) string {
	return fmt.Sprintf("Empty Seat %d (%s)", seatIndex+1, departedName)
}

// MakeEmpty replaces the occupant fields with an empty-seat placeholder.
// Team and SeatIndex survive; identity, hand and stats do not.
func (p *Player) MakeEmpty(emptyHandle string) {
	p.Name = EmptyName(p.SeatIndex, p.Name)
	p.Handle = emptyHandle
	p.IsBot = false
	p.BotLevel = ""
	p.Connected = false
	p.DisconnectedAt = nil
	p.ReconnectTimeLeft = 0
	p.IsEmpty = true
	p.Hand = nil
	p.TricksWon = 0
	p.Score = 0
}

// PickBotName returns a display name from the pool that no seat in m is
// using. Falls back to a numbered name when the pool is exhausted.
func (m *Match) PickBotName() string {
	for _, name := range botNamePool {
		if !m.NameInUse(name, -1) {
			return name
		}
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("Bot %d", i)
		if !m.NameInUse(name, -1) {
			return name
		}
	}
}
