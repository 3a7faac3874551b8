package engine

import (
	"context"

	"crewkit/core"
)

// LoadSnapshot reconstructs the event snapshot from storage. Absent keys and
// parse failures degrade to zero values: a snapshot read either fully
// succeeds or is treated as absent, never as a user-visible error.
func LoadSnapshot(ctx context.Context, storage Storage, user core.UserID) (core.Snapshot, error) {
	var snap core.Snapshot

	if raw, ok, err := storage.Get(ctx, user, core.KeyQuizCompleted); err != nil {
		return core.Snapshot{}, err
	} else if ok {
		snap.QuizCompleted = core.ParseFlag(raw)
	}
	if raw, ok, err := storage.Get(ctx, user, core.KeySurveyCompleted); err != nil {
		return core.Snapshot{}, err
	} else if ok {
		snap.AssignmentCompleted = core.ParseFlag(raw)
	}
	if raw, ok, err := storage.Get(ctx, user, core.KeyChallenges); err != nil {
		return core.Snapshot{}, err
	} else if ok {
		snap.Challenges = core.ParseChallenges(raw)
	}
	if raw, ok, err := storage.Get(ctx, user, core.KeyTasks); err != nil {
		return core.Snapshot{}, err
	} else if ok {
		snap.Tasks = core.ParseTasks(raw)
	}
	return snap, nil
}

// loadBadgeRecords reads the persisted badge list, degrading to empty.
func loadBadgeRecords(ctx context.Context, storage Storage, user core.UserID) ([]core.BadgeRecord, error) {
	raw, ok, err := storage.Get(ctx, user, core.KeyBadges)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return core.ParseBadgeRecords(raw), nil
}

// loadLastSeenRank reads the persisted rank-transition guard.
func loadLastSeenRank(ctx context.Context, storage Storage, user core.UserID) (string, error) {
	raw, ok, err := storage.Get(ctx, user, core.KeyRankName)
	if err != nil || !ok {
		return "", err
	}
	return raw, nil
}
