package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"tricktable/internal/lifecycle"
	"tricktable/internal/match"
	"tricktable/internal/store"
)

type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	handle  string
	name    string
	matchID string
}

// Server is the websocket hub: one room per match, every committed lifecycle
// transition fanned out to the room. It is the coordinator's Broadcaster.
type Server struct {
	coord    *lifecycle.Coordinator
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]map[*Client]bool
}

func NewServer(coord *lifecycle.Coordinator) *Server {
	return &Server{
		coord:    coord,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		rooms:    map[string]map[*Client]bool{},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 16), handle: "conn_" + store.NewID()}

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case "create":
			var m CreateMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handleCreate(c, m)
		case "claim":
			var m ClaimMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handleClaim(c, m)
		case "reconnect":
			var m ReconnectMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handleReconnect(c, m)
		case "takeover":
			var m TakeoverMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			s.handleTakeover(c, m)
		case "bet":
			var m BetMessage
			if c.matchID == "" || json.Unmarshal(msg, &m) != nil {
				continue
			}
			err := s.coord.ApplyBet(context.Background(), c.matchID, c.handle, m.Value)
			s.sendResult(c, "bet_result", err, "", "")
		case "play_card":
			var m PlayCardMessage
			if c.matchID == "" || json.Unmarshal(msg, &m) != nil {
				continue
			}
			err := s.coord.ApplyCardPlay(context.Background(), c.matchID, c.handle, match.Card(m.Card))
			s.sendResult(c, "play_result", err, "", "")
		case "ready":
			if c.matchID == "" {
				continue
			}
			s.sendResult(c, "ready_result", s.coord.MarkReady(c.matchID, c.name), "", "")
		case "rematch":
			if c.matchID == "" {
				continue
			}
			s.sendResult(c, "rematch_result", s.coord.VoteRematch(c.matchID, c.name), "", "")
		case "leave_to_bot":
			var m LeaveToBotMessage
			if c.matchID == "" || json.Unmarshal(msg, &m) != nil {
				continue
			}
			err := s.coord.ReplaceWithBot(context.Background(), c.matchID, c.name, m.BotLevel)
			s.sendResult(c, "leave_result", err, "", "")
			if err == nil {
				s.detach(c)
			}
		case "kick":
			var m KickMessage
			if c.matchID == "" || json.Unmarshal(msg, &m) != nil {
				continue
			}
			err := s.coord.KickPlayer(context.Background(), c.matchID, c.name, m.TargetName)
			s.sendResult(c, "kick_result", err, "", "")
		}
	}
}

func (s *Server) handleCreate(c *Client, m CreateMessage) {
	if c.matchID != "" || m.Name == "" {
		s.sendResult(c, "create_result", lifecycle.ErrSeatNotFound, "", "")
		return
	}
	created, token, err := s.coord.CreateMatch(context.Background(), m.Name, c.handle, m.QuickPlay)
	if err != nil {
		s.sendResult(c, "create_result", err, "", "")
		return
	}
	s.seat(c, m.Name, created.ID)
	s.sendResult(c, "create_result", nil, created.ID, token)
}

func (s *Server) handleClaim(c *Client, m ClaimMessage) {
	token, err := s.coord.ClaimSeat(context.Background(), m.MatchID, m.SeatIndex, m.Name, c.handle)
	if err != nil {
		s.sendResult(c, "claim_result", err, "", "")
		return
	}
	s.seat(c, m.Name, m.MatchID)
	s.sendResult(c, "claim_result", nil, m.MatchID, token)
}

func (s *Server) handleReconnect(c *Client, m ReconnectMessage) {
	got, err := s.coord.HandleReconnect(context.Background(), m.Token, c.handle)
	if err != nil {
		s.sendResult(c, "reconnect_result", err, "", "")
		return
	}
	seat := got.SeatByHandle(c.handle)
	if seat != nil {
		s.seat(c, seat.Name, got.ID)
	}
	s.sendResult(c, "reconnect_result", nil, got.ID, m.Token)
}

func (s *Server) handleTakeover(c *Client, m TakeoverMessage) {
	token, err := s.coord.TakeOverBot(context.Background(), m.MatchID, m.SeatIndex, m.Name, c.handle)
	if err != nil {
		s.sendResult(c, "takeover_result", err, "", "")
		return
	}
	s.seat(c, m.Name, m.MatchID)
	s.sendResult(c, "takeover_result", nil, m.MatchID, token)
}

// seat registers a connection into its match room.
func (s *Server) seat(c *Client, name, matchID string) {
	s.mu.Lock()
	c.name = name
	c.matchID = matchID
	room := s.rooms[matchID]
	if room == nil {
		room = map[*Client]bool{}
		s.rooms[matchID] = room
	}
	room[c] = true
	s.mu.Unlock()
}

// detach removes a connection from its room without a transport loss, used
// when the player hands their seat to a bot.
func (s *Server) detach(c *Client) {
	s.mu.Lock()
	if room := s.rooms[c.matchID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(s.rooms, c.matchID)
		}
	}
	c.matchID = ""
	c.name = ""
	s.mu.Unlock()
}

func (s *Server) unregister(c *Client) {
	matchID, handle := c.matchID, c.handle
	s.detach(c)
	if matchID != "" {
		log.Debug().Str("match_id", matchID).Str("handle", handle).Msg("transport lost")
		s.coord.HandleDisconnect(matchID, handle)
	}
	safeClose(c.send)
}

func (s *Server) sendResult(c *Client, typ string, err error, matchID, token string) {
	res := Result{Type: typ, Ok: err == nil, MatchID: matchID, Token: token}
	if err != nil {
		res.Error = err.Error()
	}
	msg, _ := json.Marshal(res)
	safeSend(c.send, msg)
}

// MatchUpdated and Notify implement lifecycle.Broadcaster.

func (s *Server) MatchUpdated(matchID string, m *match.Match) {
	msg, err := json.Marshal(struct {
		Type    string       `json:"type"`
		MatchID string       `json:"match_id"`
		Match   *match.Match `json:"match"`
	}{Type: "match_updated", MatchID: matchID, Match: m})
	if err != nil {
		return
	}
	s.toRoom(matchID, msg)
}

func (s *Server) Notify(matchID, event string, payload map[string]any) {
	msg, err := json.Marshal(Event{Type: event, MatchID: matchID, Payload: payload})
	if err != nil {
		return
	}
	s.toRoom(matchID, msg)
}

func (s *Server) toRoom(matchID string, msg []byte) {
	s.mu.Lock()
	for c := range s.rooms[matchID] {
		safeSend(c.send, msg)
	}
	s.mu.Unlock()
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}
