package sdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"crewkit/core"
)

func TestClient_CompleteAndGetUser(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL+"/api", WithAPIKey("k1"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()

	ev, err := client.CompleteQuiz(ctx, "alice")
	if err != nil {
		t.Fatalf("complete quiz: %v", err)
	}
	if ev.Score != 50 || ev.Rank.Current.Name != "Navigator" {
		t.Fatalf("unexpected evaluation: %+v", ev)
	}

	ev, err = client.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if ev.UserID != "alice" || ev.Score != 50 {
		t.Fatalf("unexpected state: %+v", ev)
	}

	ev, err = client.RecordTask(ctx, "alice", "Collaboration", 4, []string{"ran the morning standup"})
	if err != nil {
		t.Fatalf("record task: %v", err)
	}
	if ev.Score != 70 {
		t.Fatalf("unexpected score after task: %d", ev.Score)
	}

	health, err := client.Health(ctx)
	if err != nil || health.Status != "healthy" {
		t.Fatalf("health: %+v err=%v", health, err)
	}
}

func TestClient_CompleteChallengeNotFound(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CompleteChallenge(context.Background(), "alice", "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "challenge_not_found" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestClient_EmptyUserID(t *testing.T) {
	client, err := NewClient("http://localhost:1/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.GetUser(context.Background(), " "); !errors.Is(err, ErrEmptyUserID) {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestClient_SubscribeEvents(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	events, err := client.SubscribeEvents(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Type != core.EventBadgeUnlocked {
			t.Fatalf("unexpected event type: %s", evt.Type)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

// test server implementing the minimal API surface expected by the SDK.
func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","checks":{"storage":"ok"}}`))
	})
	mux.HandleFunc("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		// /api/users/{id}[/quiz/complete|/tasks|/challenges/{cid}/complete]
		path := r.URL.Path[len("/api/users/"):]
		parts := strings.Split(path, "/")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case len(parts) == 1 && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"user_id":"alice","score":50,"rank":{"current":{"name":"Navigator","point_threshold":0}},"badges":[],"ranked_up":false}`))
		case len(parts) == 3 && parts[1] == "quiz" && r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"user_id":"alice","score":50,"rank":{"current":{"name":"Navigator","point_threshold":0}},"badges":[],"ranked_up":false}`))
		case len(parts) == 2 && parts[1] == "tasks" && r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"user_id":"alice","score":70,"rank":{"current":{"name":"Navigator","point_threshold":0}},"badges":[],"ranked_up":false}`))
		case len(parts) == 4 && parts[1] == "challenges" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"challenge_not_found","message":"unknown challenge"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found","message":"no route"}`))
		}
	})

	upgrader := websocket.Upgrader{}
	mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(core.NewBadgeUnlocked("alice", "explorer"))
	})

	return httptest.NewServer(mux)
}
