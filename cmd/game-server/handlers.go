package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tricktable/internal/lifecycle"
	"tricktable/internal/session"
	"tricktable/internal/store"
)

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// rejectionStatus maps the lifecycle rejection values to HTTP statuses. The
// error text doubles as the wire code.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrMatchNotFound), errors.Is(err, lifecycle.ErrSeatNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, lifecycle.ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, lifecycle.ErrSeatClaimHeld),
		errors.Is(err, lifecycle.ErrSeatNotEmpty),
		errors.Is(err, lifecycle.ErrNameTaken),
		errors.Is(err, lifecycle.ErrMatchFinished),
		errors.Is(err, lifecycle.ErrNotABot),
		errors.Is(err, lifecycle.ErrIsABot),
		errors.Is(err, lifecycle.ErrBotLimit),
		errors.Is(err, lifecycle.ErrLastHuman):
		return http.StatusConflict
	case errors.Is(err, lifecycle.ErrBadSeatIndex):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeRejection(w http.ResponseWriter, err error) {
	writeHTTPError(w, rejectionStatus(err), err.Error())
}

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

// createMatchHandler opens a match over HTTP. The caller gets a token and
// attaches its live connection through the ws reconnect handshake.
func createMatchHandler(coord *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name      string `json:"name"`
			QuickPlay bool   `json:"quick_play"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Name == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		m, token, err := coord.CreateMatch(r.Context(), body.Name, "conn_"+store.NewID(), body.QuickPlay)
		if err != nil {
			writeRejection(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"match_id": m.ID,
			"token":    token,
			"match":    m,
		})
	}
}

func getMatchHandler(coord *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := coord.Match(chi.URLParam(r, "match_id"))
		if m == nil {
			writeRejection(w, lifecycle.ErrMatchNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"match": m})
	}
}

func claimSeatHandler(coord *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SeatIndex int    `json:"seat_index"`
			Name      string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Name == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		matchID := chi.URLParam(r, "match_id")
		token, err := coord.ClaimSeat(r.Context(), matchID, body.SeatIndex, body.Name, "conn_"+store.NewID())
		if err != nil {
			writeRejection(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "token": token})
	}
}

func takeoverHandler(coord *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SeatIndex int    `json:"seat_index"`
			Name      string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		matchID := chi.URLParam(r, "match_id")
		token, err := coord.TakeOverBot(r.Context(), matchID, body.SeatIndex, body.Name, "conn_"+store.NewID())
		if err != nil {
			writeRejection(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "token": token})
	}
}

func botReplaceHandler(coord *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			BotLevel string `json:"bot_level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		matchID := chi.URLParam(r, "match_id")
		if err := coord.ReplaceWithBot(r.Context(), matchID, body.Name, body.BotLevel); err != nil {
			writeRejection(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func kickHandler(coord *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Requester  string `json:"requester"`
			TargetName string `json:"target_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		matchID := chi.URLParam(r, "match_id")
		if err := coord.KickPlayer(r.Context(), matchID, body.Requester, body.TargetName); err != nil {
			writeRejection(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
