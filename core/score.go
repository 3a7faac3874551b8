package core

import (
	"errors"
	"time"
)

var errNegativeScheme = errors.New("point scheme values must be non-negative")

// PointScheme holds the per-action point values used by ComputeScore.
// Values are configurable but the shape of the rules is fixed.
type PointScheme struct {
	Quiz             int64 `json:"quiz"`
	Assignment       int64 `json:"assignment"`
	ChallengeOnTime  int64 `json:"challenge_on_time"`
	ChallengeLate    int64 `json:"challenge_late"`
	RatingMultiplier int64 `json:"rating_multiplier"`
}

// DefaultPointScheme returns the stock onboarding point values.
func DefaultPointScheme() PointScheme {
	return PointScheme{
		Quiz:             50,
		Assignment:       50,
		ChallengeOnTime:  50,
		ChallengeLate:    25,
		RatingMultiplier: 5,
	}
}

// Validate rejects schemes with negative values, which would break the
// monotonicity guarantee of ComputeScore.
func (p PointScheme) Validate() error {
	if p.Quiz < 0 || p.Assignment < 0 || p.ChallengeOnTime < 0 || p.ChallengeLate < 0 || p.RatingMultiplier < 0 {
		return errNegativeScheme
	}
	return nil
}

// ComputeScore derives the total point score from a snapshot.
//
// now is an explicit input: challenges completed before completion stamping
// was introduced carry a zero CompletedAt and their on-time/late bucket is
// decided against now. Challenges with a stamped CompletedAt are bucketed
// once, at completion, and the result is stable across evaluations.
//
// The result is non-negative and grows monotonically as any snapshot list or
// flag grows. Missing fields contribute nothing.
func ComputeScore(snap Snapshot, now time.Time, scheme PointScheme) int64 {
	var score int64
	if snap.QuizCompleted {
		score += scheme.Quiz
	}
	if snap.AssignmentCompleted {
		score += scheme.Assignment
	}
	for _, c := range snap.Challenges {
		if c.Status != ChallengeCompleted {
			continue
		}
		if challengeOnTime(c, now) {
			score += scheme.ChallengeOnTime
		} else {
			score += scheme.ChallengeLate
		}
	}
	for _, t := range snap.Tasks {
		if t.Rating > 0 {
			score += int64(t.Rating) * scheme.RatingMultiplier
		}
	}
	return score
}

// challengeOnTime buckets a completed challenge. A stamped CompletedAt freezes
// the determination; otherwise the legacy wall-clock comparison applies.
func challengeOnTime(c Challenge, now time.Time) bool {
	if !c.CompletedAt.IsZero() {
		return c.CompletedAt.Before(c.Deadline)
	}
	return now.Before(c.Deadline)
}
