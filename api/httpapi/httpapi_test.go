package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mem "crewkit/adapters/memory"
	"crewkit/engine"
	"crewkit/leaderboard"
)

func TestQuizCompleteSuccess(t *testing.T) {
	svc := newTestService()
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodPost, "/api/users/alice/quiz/complete", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp engine.Evaluation
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Score != 50 {
		t.Fatalf("expected score 50, got %d", resp.Score)
	}
	if resp.Rank.Current.Name != "Navigator" {
		t.Fatalf("expected Navigator, got %q", resp.Rank.Current.Name)
	}
}

func TestRecordTaskValidation(t *testing.T) {
	svc := newTestService()
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	body := strings.NewReader(`{"dimension":"Craft","rating":9}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/alice/tasks", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRecordTaskSuccess(t *testing.T) {
	svc := newTestService()
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	body := strings.NewReader(`{"dimension":"Collaboration","rating":4,"comments":["pairing went well"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/alice/tasks", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp engine.Evaluation
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Score != 20 {
		t.Fatalf("expected score 20, got %d", resp.Score)
	}
}

func TestCompleteUnknownChallenge(t *testing.T) {
	svc := newTestService()
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodPost, "/api/users/alice/challenges/nope/complete", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetUserView(t *testing.T) {
	svc := newTestService()
	handler := NewMux(svc, nil, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp engine.Evaluation
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Score != 0 || len(resp.Badges) == 0 {
		t.Fatalf("unexpected view: %+v", resp)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	svc := newTestService()
	handler := NewMux(svc, nil, Options{
		PathPrefix:      "/api",
		APIKeys:         []string{"secret"},
		AllowCORSOrigin: "*",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/users/alice", nil)
	req2.Header.Set("Authorization", "Bearer secret")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
}

func TestRateLimit(t *testing.T) {
	svc := newTestService()
	handler := NewMux(svc, nil, Options{
		PathPrefix:       "/api",
		APIKeys:          []string{"k"},
		RateLimitEnabled: true,
		RateLimitRPM:     1,
		RateLimitBurst:   1,
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/users/alice", nil)
	req1.Header.Set("X-API-Key", "k")
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected 200 first request, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/users/alice", nil)
	req2.Header.Set("X-API-Key", "k")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec2.Code)
	}
}

func TestLeaderboardRoute(t *testing.T) {
	svc := newTestService()
	board := leaderboard.NewSkipList()
	board.Update("alice", 150)
	board.Update("bob", 300)
	handler := NewMux(svc, nil, Options{PathPrefix: "/api", Board: board})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?n=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []leaderboard.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].User != "bob" || entries[0].Score != 300 {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/leaderboard?n=zero", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad n, got %d", rec.Code)
	}
}

func newTestService() *engine.CrewService {
	storage := mem.New()
	bus := engine.NewEventBus(engine.DispatchSync)
	return engine.NewCrewService(storage, bus, engine.DefaultRuleset())
}
