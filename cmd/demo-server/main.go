package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	mem "crewkit/adapters/memory"
	ws "crewkit/adapters/websocket"
	"crewkit/core"
	"crewkit/crew"
	"crewkit/realtime"
)

func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	ctx := context.Background()
	hub := realtime.NewHub()
	svc := crew.New(
		crew.WithStorage(mem.New()),
		crew.WithRealtime(hub),
	)

	// Seed a demo crew member with the starter challenge deck
	demoUser := core.UserID("demo")
	now := time.Now().UTC()
	if err := svc.SeedChallenges(ctx, demoUser, []core.Challenge{
		{ID: "meet-the-crew", Deadline: now.Add(7 * 24 * time.Hour), Status: core.ChallengeAvailable},
		{ID: "chart-your-course", Deadline: now.Add(14 * 24 * time.Hour), Status: core.ChallengeAvailable},
		{ID: "first-voyage", Deadline: now.Add(30 * 24 * time.Hour), Status: core.ChallengeLocked},
	}); err != nil {
		slog.Error("seeding demo challenges failed", "error", err)
		os.Exit(1)
	}

	http.Handle("/ws", ws.Handler(hub))
	http.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		// routes: GET /users/{id}, POST /users/{id}/quiz, POST /users/{id}/challenges/{cid}
		parts := split(r.URL.Path, '/')
		if len(parts) < 2 {
			http.NotFound(w, r)
			return
		}
		user := core.UserID(parts[1])
		switch r.Method {
		case http.MethodPost:
			if len(parts) >= 3 && parts[2] == "quiz" {
				ev, err := svc.CompleteQuiz(ctx, user)
				writeJSON(w, map[string]any{"score": ev.Score, "err": errString(err)})
				return
			}
			if len(parts) >= 3 && parts[2] == "assignment" {
				ev, err := svc.CompleteAssignment(ctx, user)
				writeJSON(w, map[string]any{"score": ev.Score, "err": errString(err)})
				return
			}
			if len(parts) >= 4 && parts[2] == "challenges" {
				ev, err := svc.CompleteChallenge(ctx, user, parts[3])
				writeJSON(w, map[string]any{"score": ev.Score, "err": errString(err)})
				return
			}
		case http.MethodGet:
			ev, err := svc.View(ctx, user)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			writeJSON(w, ev)
			return
		}
		http.NotFound(w, r)
	})

	slog.Info("starting demo server on :8080", "demo_user", demoUser)

	if err := http.ListenAndServe(":8080", nil); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

func split(p string, sep rune) []string {
	var parts []string
	current := make([]rune, 0, len(p))

	for _, r := range p {
		if r == sep {
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = current[:0]
			}
			continue
		}
		current = append(current, r)
	}

	if len(current) > 0 {
		parts = append(parts, string(current))
	}

	return parts
}
