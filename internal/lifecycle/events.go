package lifecycle

import "tricktable/internal/match"

// Broadcaster delivers committed transitions to every connection in the
// match's room. MatchUpdated always receives a detached snapshot, so
// implementations may serialize it without holding any coordinator lock.
// Implemented by the websocket hub; a nop stands in for tests.
type Broadcaster interface {
	MatchUpdated(matchID string, m *match.Match)
	Notify(matchID, event string, payload map[string]any)
}

// Narrow notification names, one per transition.
const (
	evPlayerDisconnected   = "player_disconnected"
	evPlayerReconnected    = "player_reconnected"
	evReconnectCountdown   = "reconnect_countdown"
	evSeatBecameEmpty      = "seat_became_empty"
	evPlayerConvertedToBot = "player_converted_to_bot"
	evBotTakenOver         = "bot_taken_over"
	evPlayerKicked         = "player_kicked"
	evSeatClaimed          = "seat_claimed"
	evMatchDeleted         = "match_deleted"
)

type nopBroadcaster struct{}

func (nopBroadcaster) MatchUpdated(string, *match.Match)     {}
func (nopBroadcaster) Notify(string, string, map[string]any) {}
