package core

import (
	"errors"
	"strings"
	"time"
)

// UserID uniquely identifies a crew member in the onboarding domain.
type UserID string

// BadgeID is a named badge identifier.
type BadgeID string

// ChallengeStatus enumerates the lifecycle of a voyage-manual challenge.
type ChallengeStatus string

const (
	ChallengeAvailable ChallengeStatus = "available"
	ChallengeLocked    ChallengeStatus = "locked"
	ChallengeCompleted ChallengeStatus = "completed"
)

// Challenge is a deadline-bound activity from the voyage manual.
// CompletedAt is stamped when the challenge is marked completed; a zero value
// means the record predates completion stamping and the on-time bucket is
// decided at evaluation time instead.
type Challenge struct {
	ID          string          `json:"id"`
	Deadline    time.Time       `json:"deadline"`
	Status      ChallengeStatus `json:"status"`
	CompletedAt time.Time       `json:"completedAt,omitempty"`
}

// LearningTask is a rated reflection entry in one learning dimension.
// Rating 0 means unrated; valid ratings are 1..5.
type LearningTask struct {
	Dimension string   `json:"dimension"`
	Rating    int      `json:"rating"`
	Comments  []string `json:"comments,omitempty"`
}

// Snapshot is the full set of persisted flags and lists read at the start of
// an evaluation pass. It is immutable per computation; implementations should
// hand out deep copies.
type Snapshot struct {
	QuizCompleted       bool           `json:"quiz_completed"`
	AssignmentCompleted bool           `json:"assignment_completed"`
	Challenges          []Challenge    `json:"challenges"`
	Tasks               []LearningTask `json:"tasks"`
}

// Clone returns a deep copy of the snapshot to uphold immutability.
func (s Snapshot) Clone() Snapshot {
	cp := Snapshot{
		QuizCompleted:       s.QuizCompleted,
		AssignmentCompleted: s.AssignmentCompleted,
		Challenges:          make([]Challenge, len(s.Challenges)),
		Tasks:               make([]LearningTask, len(s.Tasks)),
	}
	copy(cp.Challenges, s.Challenges)
	for i, t := range s.Tasks {
		ct := t
		ct.Comments = append([]string(nil), t.Comments...)
		cp.Tasks[i] = ct
	}
	return cp
}

// BadgeRecord is the persisted unlocked/unlockedAt pair for a badge.
type BadgeRecord struct {
	ID          BadgeID    `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt"`
}

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty user id")
	}
	return UserID(strings.ToLower(s)), nil
}

// ValidateBadgeID ensures non-empty badge id with simple charset check.
func ValidateBadgeID(b BadgeID) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return errors.New("empty badge id")
	}
	// simple check: alnum, dash, underscore
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return errors.New("invalid badge id")
	}
	return nil
}

// ValidateRating rejects ratings outside 0..5. Zero means unrated.
func ValidateRating(rating int) error {
	if rating < 0 || rating > 5 {
		return errors.New("rating must be 0 (unrated) or 1..5")
	}
	return nil
}
