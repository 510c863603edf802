package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tricktable/internal/claim"
	"tricktable/internal/lifecycle"
	"tricktable/internal/rules"
	"tricktable/internal/session"
	"tricktable/internal/ws"
)

func testRouter(t *testing.T) (http.Handler, *lifecycle.Coordinator) {
	t.Helper()
	coord := lifecycle.NewCoordinator(lifecycle.DefaultConfig(),
		session.NewManager(nil), nil, claim.NewMemoryLocker(claim.DefaultTTL),
		rules.NopEngine{}, nil)
	hub := ws.NewServer(coord)
	coord.SetBroadcaster(hub)
	return newRouter(nil, coord, hub), coord
}

func TestCreateAndClaimOverHTTP(t *testing.T) {
	r, coord := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/matches",
		strings.NewReader(`{"name":"Alice"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		MatchID string `json:"match_id"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.MatchID == "" || created.Token == "" {
		t.Fatalf("incomplete create response: %+v", created)
	}
	if coord.Match(created.MatchID) == nil {
		t.Fatal("match should be live after create")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/matches/"+created.MatchID+"/claim",
		strings.NewReader(`{"seat_index":1,"name":"Bob"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("claim status = %d body=%s", rec.Code, rec.Body.String())
	}

	// Claiming the creator's seat reports the rejection code.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/matches/"+created.MatchID+"/claim",
		strings.NewReader(`{"seat_index":0,"name":"Carol"}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("claim occupied seat status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "seat_not_empty") {
		t.Fatalf("body should carry the code: %s", rec.Body.String())
	}
}

func TestGetUnknownMatchIs404(t *testing.T) {
	r, _ := testRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matches/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestKickRequiresCreatorOverHTTP(t *testing.T) {
	r, _ := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/matches",
		strings.NewReader(`{"name":"Alice","quick_play":true}`)))
	var created struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/matches/"+created.MatchID+"/kick",
		strings.NewReader(`{"requester":"Mallory","target_name":"Alice"}`)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
