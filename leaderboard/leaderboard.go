package leaderboard

import "crewkit/core"

// Entry represents one crew member's onboarding score.
type Entry struct {
	User  core.UserID `json:"user"`
	Score int64       `json:"score"`
}

// Board abstracts leaderboard operations.
type Board interface {
	Update(user core.UserID, score int64)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
}
