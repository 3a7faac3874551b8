package core

import (
	"testing"
	"time"
)

var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestComputeScoreQuizAndAssignment(t *testing.T) {
	snap := Snapshot{QuizCompleted: true, AssignmentCompleted: true}
	if got := ComputeScore(snap, noon, DefaultPointScheme()); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
}

func TestComputeScoreEmptySnapshot(t *testing.T) {
	if got := ComputeScore(Snapshot{}, noon, DefaultPointScheme()); got != 0 {
		t.Fatalf("empty snapshot should score 0, got %d", got)
	}
}

func TestComputeScoreChallengeBucketing(t *testing.T) {
	deadline := noon
	ch := Challenge{ID: "c1", Deadline: deadline, Status: ChallengeCompleted}
	snap := Snapshot{Challenges: []Challenge{ch}}

	before := deadline.Add(-24 * time.Hour)
	after := deadline.Add(24 * time.Hour)
	if got := ComputeScore(snap, before, DefaultPointScheme()); got != 50 {
		t.Fatalf("on-time challenge should score 50, got %d", got)
	}
	if got := ComputeScore(snap, after, DefaultPointScheme()); got != 25 {
		t.Fatalf("late challenge should score 25, got %d", got)
	}
}

func TestComputeScoreFrozenCompletion(t *testing.T) {
	deadline := noon
	ch := Challenge{
		ID:          "c1",
		Deadline:    deadline,
		Status:      ChallengeCompleted,
		CompletedAt: deadline.Add(-time.Hour),
	}
	snap := Snapshot{Challenges: []Challenge{ch}}

	// the bucket is frozen at completion; evaluating after the deadline
	// must not demote the challenge to late
	after := deadline.Add(24 * time.Hour)
	if got := ComputeScore(snap, after, DefaultPointScheme()); got != 50 {
		t.Fatalf("frozen on-time challenge should score 50, got %d", got)
	}
}

func TestComputeScoreIgnoresIncompleteChallenges(t *testing.T) {
	snap := Snapshot{Challenges: []Challenge{
		{ID: "a", Deadline: noon, Status: ChallengeAvailable},
		{ID: "b", Deadline: noon, Status: ChallengeLocked},
	}}
	if got := ComputeScore(snap, noon, DefaultPointScheme()); got != 0 {
		t.Fatalf("incomplete challenges should score 0, got %d", got)
	}
}

func TestComputeScoreRatedTasks(t *testing.T) {
	snap := Snapshot{Tasks: []LearningTask{
		{Dimension: "Collaboration", Rating: 4},
		{Dimension: "Leadership", Rating: 0},
		{Dimension: "Communication", Rating: 1},
	}}
	if got := ComputeScore(snap, noon, DefaultPointScheme()); got != 25 {
		t.Fatalf("got %d, want 25", got)
	}
}

func TestComputeScoreMonotone(t *testing.T) {
	snap := Snapshot{QuizCompleted: true}
	base := ComputeScore(snap, noon, DefaultPointScheme())

	grown := snap.Clone()
	grown.AssignmentCompleted = true
	grown.Challenges = append(grown.Challenges, Challenge{ID: "c", Deadline: noon.Add(time.Hour), Status: ChallengeCompleted})
	grown.Tasks = append(grown.Tasks, LearningTask{Dimension: "Adaptability", Rating: 3})
	if ComputeScore(grown, noon, DefaultPointScheme()) <= base {
		t.Fatal("growing the snapshot must not decrease the score")
	}
}

func TestPointSchemeValidate(t *testing.T) {
	if err := DefaultPointScheme().Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	bad := DefaultPointScheme()
	bad.ChallengeLate = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected negative scheme error")
	}
}
