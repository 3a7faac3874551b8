package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewkit/core"
)

// Ruleset bundles the configuration the engine evaluates against.
type Ruleset struct {
	Badges []core.BadgeDef
	Ranks  core.RankTable
	Scheme core.PointScheme
}

// DefaultRuleset returns the stock onboarding rules.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Badges: core.DefaultBadges(),
		Ranks:  core.DefaultRankTable(),
		Scheme: core.DefaultPointScheme(),
	}
}

// Validate rejects malformed rulesets. A bad ruleset is a configuration
// error; callers fail fast at startup.
func (r Ruleset) Validate() error {
	if err := core.ValidateBadgeDefs(r.Badges); err != nil {
		return fmt.Errorf("badges: %w", err)
	}
	if len(r.Ranks.Ranks()) == 0 {
		return errors.New("ranks: table not initialized")
	}
	if err := r.Scheme.Validate(); err != nil {
		return fmt.Errorf("scheme: %w", err)
	}
	return nil
}

// Evaluation is the derived view model produced by an evaluation pass.
type Evaluation struct {
	UserID   core.UserID        `json:"user_id"`
	Score    int64              `json:"score"`
	Rank     core.RankStatus    `json:"rank"`
	Badges   []core.BadgeResult `json:"badges"`
	RankedUp bool               `json:"ranked_up"`
}

// ServiceOption configures a CrewService.
type ServiceOption func(*CrewService)

// WithClock overrides the evaluation clock, keeping the score calculator
// deterministic under test.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *CrewService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLeaderboard wires a leaderboard that receives every recomputed score.
func WithLeaderboard(b Leaderboard) ServiceOption {
	return func(s *CrewService) { s.board = b }
}

// CrewService wires storage, event bus, and rules into a cohesive API.
type CrewService struct {
	storage Storage
	bus     *EventBus
	rules   Ruleset
	clock   func() time.Time
	board   Leaderboard
}

func NewCrewService(storage Storage, bus *EventBus, rules Ruleset, opts ...ServiceOption) *CrewService {
	if storage == nil || bus == nil {
		panic("NewCrewService requires non-nil storage and bus")
	}
	if err := rules.Validate(); err != nil {
		panic("NewCrewService: invalid ruleset: " + err.Error())
	}
	s := &CrewService{storage: storage, bus: bus, rules: rules, clock: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe convenience method.
func (s *CrewService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *CrewService) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

// Rules returns the active ruleset.
func (s *CrewService) Rules() Ruleset { return s.rules }

// Snapshot returns the current event snapshot for a user.
func (s *CrewService) Snapshot(ctx context.Context, user core.UserID) (core.Snapshot, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return core.Snapshot{}, err
	}
	return LoadSnapshot(ctx, s.storage, normalized)
}

// EvaluateAll runs a full evaluation pass: load snapshot, compute score,
// resolve rank, evaluate badges, persist the derived state, then publish
// events. Persistence strictly precedes publication so each unlock and each
// rank-up notifies at most once.
func (s *CrewService) EvaluateAll(ctx context.Context, user core.UserID) (Evaluation, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return Evaluation{}, err
	}
	return s.evaluate(ctx, normalized, true)
}

// View computes the derived state without persisting or publishing anything.
// Badge latch state reflects storage; nothing is reported as just unlocked.
func (s *CrewService) View(ctx context.Context, user core.UserID) (Evaluation, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return Evaluation{}, err
	}
	return s.evaluate(ctx, normalized, false)
}

func (s *CrewService) evaluate(ctx context.Context, user core.UserID, persist bool) (Evaluation, error) {
	snap, err := LoadSnapshot(ctx, s.storage, user)
	if err != nil {
		return Evaluation{}, err
	}
	now := s.clock()

	score := core.ComputeScore(snap, now, s.rules.Scheme)
	status := s.rules.Ranks.Resolve(score)

	records, err := loadBadgeRecords(ctx, s.storage, user)
	if err != nil {
		return Evaluation{}, err
	}
	unlocked := make(map[core.BadgeID]struct{}, len(records))
	unlockedAt := make(map[core.BadgeID]*time.Time, len(records))
	for _, r := range records {
		if r.Unlocked {
			unlocked[r.ID] = struct{}{}
			unlockedAt[r.ID] = r.UnlockedAt
		}
	}

	results := core.EvaluateBadges(snap, s.rules.Badges, unlocked)
	if !persist {
		for i := range results {
			results[i].JustUnlocked = false
		}
	}

	lastSeen, err := loadLastSeenRank(ctx, s.storage, user)
	if err != nil {
		return Evaluation{}, err
	}
	rankedUp := core.DetectRankUp(lastSeen, status, s.rules.Ranks)

	ev := Evaluation{UserID: user, Score: score, Rank: status, Badges: results, RankedUp: persist && rankedUp}
	if !persist {
		return ev, nil
	}

	// union-only merge of the badge records; UnlockedAt is stamped once
	merged := make([]core.BadgeRecord, 0, len(s.rules.Badges))
	for i, d := range s.rules.Badges {
		rec := core.BadgeRecord{ID: d.ID, Name: d.Name, Description: d.Description}
		if results[i].Unlocked {
			rec.Unlocked = true
			if at, ok := unlockedAt[d.ID]; ok && at != nil {
				rec.UnlockedAt = at
			} else {
				stamp := now
				rec.UnlockedAt = &stamp
			}
		}
		merged = append(merged, rec)
	}

	if err := s.storage.Set(ctx, user, core.KeyPoints, core.FormatPoints(score)); err != nil {
		return Evaluation{}, err
	}
	if err := s.storage.Set(ctx, user, core.KeyBadges, core.EncodeBadgeRecords(merged)); err != nil {
		return Evaluation{}, err
	}
	if err := s.storage.Set(ctx, user, core.KeyRankName, status.Current.Name); err != nil {
		return Evaluation{}, err
	}

	if s.board != nil {
		s.board.Update(user, score)
	}

	s.bus.Publish(ctx, core.NewScoreRecomputed(user, score, status.Current.Name, status.Progress))
	for _, r := range results {
		if r.JustUnlocked {
			s.bus.Publish(ctx, core.NewBadgeUnlocked(user, r.ID))
		}
	}
	if ev.RankedUp {
		s.bus.Publish(ctx, core.NewRankUp(user, status.Current.Name, score))
	}
	return ev, nil
}

// CompleteQuiz marks the welcome quiz done and re-evaluates.
func (s *CrewService) CompleteQuiz(ctx context.Context, user core.UserID) (Evaluation, error) {
	return s.setFlag(ctx, user, core.KeyQuizCompleted)
}

// CompleteAssignment marks the first assignment done and re-evaluates.
func (s *CrewService) CompleteAssignment(ctx context.Context, user core.UserID) (Evaluation, error) {
	return s.setFlag(ctx, user, core.KeySurveyCompleted)
}

func (s *CrewService) setFlag(ctx context.Context, user core.UserID, key string) (Evaluation, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return Evaluation{}, err
	}
	if err := s.storage.Set(ctx, normalized, key, core.FormatFlag(true)); err != nil {
		return Evaluation{}, err
	}
	return s.evaluate(ctx, normalized, true)
}

// ErrChallengeNotFound is returned when completing an unknown challenge.
var ErrChallengeNotFound = errors.New("challenge not found")

// ErrChallengeLocked is returned when completing a challenge that has not
// been made available yet.
var ErrChallengeLocked = errors.New("challenge is locked")

// CompleteChallenge marks a challenge completed, stamping CompletedAt so the
// on-time/late bucket is frozen at completion time, then re-evaluates.
// Completing an already-completed challenge is a no-op re-evaluation.
func (s *CrewService) CompleteChallenge(ctx context.Context, user core.UserID, challengeID string) (Evaluation, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return Evaluation{}, err
	}
	snap, err := LoadSnapshot(ctx, s.storage, normalized)
	if err != nil {
		return Evaluation{}, err
	}
	idx := -1
	for i, c := range snap.Challenges {
		if c.ID == challengeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Evaluation{}, fmt.Errorf("%w: %s", ErrChallengeNotFound, challengeID)
	}
	switch snap.Challenges[idx].Status {
	case core.ChallengeLocked:
		return Evaluation{}, fmt.Errorf("%w: %s", ErrChallengeLocked, challengeID)
	case core.ChallengeCompleted:
		return s.evaluate(ctx, normalized, true)
	}
	snap.Challenges[idx].Status = core.ChallengeCompleted
	snap.Challenges[idx].CompletedAt = s.clock()
	if err := s.storage.Set(ctx, normalized, core.KeyChallenges, core.EncodeChallenges(snap.Challenges)); err != nil {
		return Evaluation{}, err
	}
	s.bus.Publish(ctx, core.NewChallengeCompleted(normalized, challengeID))
	return s.evaluate(ctx, normalized, true)
}

// SeedChallenges replaces the user's challenge list. Intended for onboarding
// setup and demos; completion state on existing entries is preserved by ID.
func (s *CrewService) SeedChallenges(ctx context.Context, user core.UserID, challenges []core.Challenge) error {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return err
	}
	snap, err := LoadSnapshot(ctx, s.storage, normalized)
	if err != nil {
		return err
	}
	existing := make(map[string]core.Challenge, len(snap.Challenges))
	for _, c := range snap.Challenges {
		existing[c.ID] = c
	}
	for i, c := range challenges {
		if prev, ok := existing[c.ID]; ok && prev.Status == core.ChallengeCompleted {
			challenges[i].Status = core.ChallengeCompleted
			challenges[i].CompletedAt = prev.CompletedAt
		}
	}
	return s.storage.Set(ctx, normalized, core.KeyChallenges, core.EncodeChallenges(challenges))
}

// RecordTask appends a validated learning task and re-evaluates. Invalid
// input aborts with no partial state change.
func (s *CrewService) RecordTask(ctx context.Context, user core.UserID, task core.LearningTask) (Evaluation, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return Evaluation{}, err
	}
	if task.Dimension == "" {
		return Evaluation{}, errors.New("task dimension is required")
	}
	if err := core.ValidateRating(task.Rating); err != nil {
		return Evaluation{}, err
	}
	for _, c := range task.Comments {
		if c == "" {
			return Evaluation{}, errors.New("empty comment")
		}
	}
	snap, err := LoadSnapshot(ctx, s.storage, normalized)
	if err != nil {
		return Evaluation{}, err
	}
	tasks := append(snap.Tasks, task)
	if err := s.storage.Set(ctx, normalized, core.KeyTasks, core.EncodeTasks(tasks)); err != nil {
		return Evaluation{}, err
	}
	s.bus.Publish(ctx, core.NewTaskRated(normalized, task.Dimension, task.Rating))
	return s.evaluate(ctx, normalized, true)
}

func (s *CrewService) Close() { s.bus.Close() }
