package crew

import (
	"context"
	"sync"
	"time"

	"crewkit/core"
	"crewkit/engine"
	"crewkit/realtime"
)

// Option configures the Crew service builder.
type Option func(*config)

type config struct {
	storage engine.Storage
	mode    engine.DispatchMode
	rules   engine.Ruleset
	hub     *realtime.Hub
	clock   func() time.Time
	board   engine.Leaderboard
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *config) { c.storage = s } }

// WithRuleset sets the badge/rank/point rules.
func WithRuleset(r engine.Ruleset) Option { return func(c *config) { c.rules = r } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all engine events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithClock overrides the evaluation clock.
func WithClock(clock func() time.Time) Option { return func(c *config) { c.clock = clock } }

// WithLeaderboard wires a leaderboard fed by every evaluation pass.
func WithLeaderboard(b engine.Leaderboard) Option { return func(c *config) { c.board = b } }

// New builds a configured CrewService. If not provided, defaults are used:
//   - storage: in-memory
//   - rules: DefaultRuleset
//   - dispatch: async
func New(opts ...Option) *engine.CrewService {
	cfg := &config{mode: engine.DispatchAsync, rules: engine.DefaultRuleset()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.storage == nil {
		// lazy local store to keep New() usable without external deps;
		// pass explicit storage in prod
		cfg.storage = &memStore{}
	}
	bus := engine.NewEventBus(cfg.mode)
	var svcOpts []engine.ServiceOption
	if cfg.clock != nil {
		svcOpts = append(svcOpts, engine.WithClock(cfg.clock))
	}
	if cfg.board != nil {
		svcOpts = append(svcOpts, engine.WithLeaderboard(cfg.board))
	}
	svc := engine.NewCrewService(cfg.storage, bus, cfg.rules, svcOpts...)
	if cfg.hub != nil {
		// Bridge all primary events to realtime
		for _, typ := range []core.EventType{
			core.EventScoreRecomputed,
			core.EventRankUp,
			core.EventBadgeUnlocked,
			core.EventChallengeCompleted,
			core.EventTaskRated,
		} {
			bus.Subscribe(typ, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
		}
	}
	return svc
}

// memStore mirrors adapters/memory to avoid an import cycle in the builder.
type memStore struct {
	mu   sync.Mutex
	data map[core.UserID]map[string]string
}

func (s *memStore) Get(_ context.Context, user core.UserID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[user]
	if !ok {
		return "", false, nil
	}
	v, ok := rec[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, user core.UserID, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[core.UserID]map[string]string{}
	}
	rec, ok := s.data[user]
	if !ok {
		rec = map[string]string{}
		s.data[user] = rec
	}
	rec[key] = value
	return nil
}
