package match

import "time"

type Phase string

const (
	PhaseBidding  Phase = "bidding"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

const (
	NumSeats = 4
	MaxBots  = 3
)

// SeatState is the derived per-seat state. Exactly one of the four holds
// for any occupant at any time.
type SeatState string

const (
	SeatConnected    SeatState = "connected"
	SeatDisconnected SeatState = "disconnected"
	SeatEmpty        SeatState = "empty"
	SeatBot          SeatState = "bot"
)

// Card is opaque to this layer; the rule engine owns its meaning.
type Card string

// Player is a seat occupant. Name is the stable identity that survives
// reconnects and bot swaps; Handle is the transient connection (or
// synthetic bot/empty) identifier and changes on every migration.
type Player struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	Team      int    `json:"team"`
	SeatIndex int    `json:"seat_index"`

	IsBot    bool   `json:"is_bot"`
	BotLevel string `json:"bot_level,omitempty"`

	Connected         bool       `json:"connected"`
	DisconnectedAt    *time.Time `json:"disconnected_at,omitempty"`
	ReconnectTimeLeft int        `json:"reconnect_time_left,omitempty"`
	IsEmpty           bool       `json:"is_empty"`

	Hand      []Card `json:"hand,omitempty"`
	TricksWon int    `json:"tricks_won"`
	Score     int    `json:"score"`
}

// State reports which of the four seat states currently holds.
func (p *Player) State() SeatState {
	switch {
	case p.IsEmpty:
		return SeatEmpty
	case p.IsBot:
		return SeatBot
	case p.Connected:
		return SeatConnected
	default:
		return SeatDisconnected
	}
}

// TrickCard is a card on the table, tagged by the handle that played it.
type TrickCard struct {
	Handle string `json:"handle"`
	Card   Card   `json:"card"`
}

type CompletedTrick struct {
	Cards        []TrickCard `json:"cards"`
	WinnerHandle string      `json:"winner_handle"`
	WinnerName   string      `json:"winner_name"`
}

type Bet struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
	Value  int    `json:"value"`
}

type PlayerRoundStats struct {
	Bet       int `json:"bet"`
	TricksWon int `json:"tricks_won"`
	Points    int `json:"points"`
}

// Round is one completed round of play. Tricks carry handles; the stat,
// initial-hand and bet maps are keyed by stable name.
type Round struct {
	Number       int                          `json:"number"`
	Tricks       []CompletedTrick             `json:"tricks"`
	Stats        map[string]*PlayerRoundStats `json:"stats"`
	InitialHands map[string][]Card            `json:"initial_hands"`
	Bets         map[string]int               `json:"bets"`
}

// Match is the aggregate the coordinator owns. Every handle stored in its
// substructures must equal the Handle currently assigned to the owning
// seat; the migrator is the only code allowed to rewrite them.
type Match struct {
	ID          string `json:"id"`
	Phase       Phase  `json:"phase"`
	CreatorName string `json:"creator_name"`
	QuickPlay   bool   `json:"quick_play"`

	// EverMultiHuman latches once two humans have been seated at the same
	// time; it selects the longer abandoned-match deletion window.
	EverMultiHuman bool `json:"ever_multi_human"`

	Seats [NumSeats]*Player `json:"seats"`

	CurrentTurnHandle string          `json:"current_turn_handle,omitempty"`
	CurrentTrick      []TrickCard     `json:"current_trick"`
	PreviousTrick     *CompletedTrick `json:"previous_trick,omitempty"`
	Bets              []Bet           `json:"bets"`
	HighestBet        *Bet            `json:"highest_bet,omitempty"`
	Rounds            []Round         `json:"rounds"`

	ReadyList    []string `json:"ready_list"`
	RematchVotes []string `json:"rematch_votes"`

	// Live per-round statistics: RoundStats by stable name, TrickCounts by
	// current handle.
	RoundStats  map[string]*PlayerRoundStats `json:"round_stats"`
	TrickCounts map[string]int               `json:"trick_counts"`
}

func New(id, creatorName string, quickPlay bool) *Match {
	return &Match{
		ID:          id,
		Phase:       PhaseBidding,
		CreatorName: creatorName,
		QuickPlay:   quickPlay,
		RoundStats:  map[string]*PlayerRoundStats{},
		TrickCounts: map[string]int{},
	}
}

// SeatByName finds a seat by stable name. Callers that know the name must
// use this, never a handle lookup: the handle may have been migrated away
// while the caller was suspended on I/O.
func (m *Match) SeatByName(name string) *Player {
	for _, p := range m.Seats {
		if p != nil && p.Name == name {
			return p
		}
	}
	return nil
}

// SeatByHandle finds a seat by current connection handle. Only the network
// boundary, where no stable name is known yet, should need this.
func (m *Match) SeatByHandle(handle string) *Player {
	for _, p := range m.Seats {
		if p != nil && p.Handle == handle {
			return p
		}
	}
	return nil
}

func (m *Match) HumanCount() int {
	n := 0
	for _, p := range m.Seats {
		if p != nil && !p.IsBot && !p.IsEmpty {
			n++
		}
	}
	return n
}

func (m *Match) BotCount() int {
	n := 0
	for _, p := range m.Seats {
		if p != nil && p.IsBot {
			n++
		}
	}
	return n
}

func (m *Match) AllSeatsEmpty() bool {
	for _, p := range m.Seats {
		if p == nil || !p.IsEmpty {
			return false
		}
	}
	return true
}

func (m *Match) AnySeatEmpty() bool {
	for _, p := range m.Seats {
		if p != nil && p.IsEmpty {
			return true
		}
	}
	return false
}

// NameInUse reports whether name is already the stable name of a seat other
// than seatIndex. Pass -1 to check all seats.
func (m *Match) NameInUse(name string, excludeSeat int) bool {
	for i, p := range m.Seats {
		if i == excludeSeat || p == nil {
			continue
		}
		if p.Name == name {
			return true
		}
	}
	return false
}

// SeatChangeAllowed is the single bot/human invariant: after converting the
// given seat to a bot the match must still hold at least one human and at
// most MaxBots bots. A fully bot match is never allowed.
func (m *Match) SeatChangeAllowed(seatIndex int) bool {
	p := m.Seats[seatIndex]
	if p == nil || p.IsBot || p.IsEmpty {
		return false
	}
	return m.BotCount() < MaxBots && m.HumanCount() > 1
}

// LongDeletionWindow selects the abandoned-match deletion duration class:
// long for tables that ever seated two or more humans and for quick-play
// matches, short for solo sessions.
func (m *Match) LongDeletionWindow() bool {
	return m.EverMultiHuman || m.QuickPlay
}

// NoteHumansSeated latches EverMultiHuman when two or more humans are
// currently seated.
func (m *Match) NoteHumansSeated() {
	if m.HumanCount() >= 2 {
		m.EverMultiHuman = true
	}
}
