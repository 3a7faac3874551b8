package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventScoreRecomputed    EventType = "score_recomputed"
	EventRankUp             EventType = "rank_up"
	EventBadgeUnlocked      EventType = "badge_unlocked"
	EventChallengeCompleted EventType = "challenge_completed"
	EventTaskRated          EventType = "task_rated"
)

// Event represents an immutable domain event.
type Event struct {
	Type      EventType      `json:"type"`
	Time      time.Time      `json:"time"`
	UserID    UserID         `json:"user_id"`
	Score     int64          `json:"score,omitempty"`
	Rank      string         `json:"rank,omitempty"`
	Progress  int            `json:"progress,omitempty"`
	Badge     BadgeID        `json:"badge,omitempty"`
	Challenge string         `json:"challenge,omitempty"`
	Dimension string         `json:"dimension,omitempty"`
	Rating    int            `json:"rating,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewScoreRecomputed(user UserID, score int64, rank string, progress int) Event {
	return Event{Type: EventScoreRecomputed, Time: time.Now().UTC(), UserID: user, Score: score, Rank: rank, Progress: progress}
}

func NewRankUp(user UserID, rank string, score int64) Event {
	return Event{Type: EventRankUp, Time: time.Now().UTC(), UserID: user, Rank: rank, Score: score}
}

func NewBadgeUnlocked(user UserID, badge BadgeID) Event {
	return Event{Type: EventBadgeUnlocked, Time: time.Now().UTC(), UserID: user, Badge: badge}
}

func NewChallengeCompleted(user UserID, challenge string) Event {
	return Event{Type: EventChallengeCompleted, Time: time.Now().UTC(), UserID: user, Challenge: challenge}
}

func NewTaskRated(user UserID, dimension string, rating int) Event {
	return Event{Type: EventTaskRated, Time: time.Now().UTC(), UserID: user, Dimension: dimension, Rating: rating}
}
