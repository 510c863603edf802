package ws

// Client -> server messages. Every frame carries a type discriminator; the
// read loop decodes the envelope first, then the full message.

type CreateMessage struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	QuickPlay bool   `json:"quick_play,omitempty"`
}

type ClaimMessage struct {
	Type      string `json:"type"`
	MatchID   string `json:"match_id"`
	SeatIndex int    `json:"seat_index"`
	Name      string `json:"name"`
}

type ReconnectMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type TakeoverMessage struct {
	Type      string `json:"type"`
	MatchID   string `json:"match_id"`
	SeatIndex int    `json:"seat_index"`
	Name      string `json:"name"`
}

type BetMessage struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type PlayCardMessage struct {
	Type string `json:"type"`
	Card string `json:"card"`
}

type LeaveToBotMessage struct {
	Type     string `json:"type"`
	BotLevel string `json:"bot_level,omitempty"`
}

type KickMessage struct {
	Type       string `json:"type"`
	TargetName string `json:"target_name"`
}

// Server -> client.

type Result struct {
	Type    string `json:"type"`
	Ok      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	MatchID string `json:"match_id,omitempty"`
	Token   string `json:"token,omitempty"`
}

type Event struct {
	Type    string         `json:"type"`
	MatchID string         `json:"match_id"`
	Payload map[string]any `json:"payload,omitempty"`
}
