package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	jsonfileAdapter "crewkit/adapters/jsonfile"
	mem "crewkit/adapters/memory"
	redisAdapter "crewkit/adapters/redis"
	sqlxAdapter "crewkit/adapters/sqlx"
	"crewkit/analytics"
	"crewkit/api/httpapi"
	"crewkit/config"
	"crewkit/core"
	"crewkit/crew"
	"crewkit/engine"
	"crewkit/integrations/webhook"
	"crewkit/leaderboard"
	"crewkit/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Hub       *realtime.Hub
	Analytics *analytics.Service
	Board     *leaderboard.SkipList
	Service   *engine.CrewService
	Handler   http.Handler
	Server    *http.Server
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Environment == config.EnvProduction {
		if err := cfg.LoadSecretsFromEnv(ctx); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideAnalytics(logger *slog.Logger) *analytics.Service {
	return analytics.NewService(logger)
}

func provideBoard() *leaderboard.SkipList {
	return leaderboard.NewSkipList()
}

func provideStorage(ctx context.Context, cfg *config.Config) (engine.Storage, error) {
	return setupStorage(ctx, cfg)
}

func provideService(cfg *config.Config, hub *realtime.Hub, storage engine.Storage, board *leaderboard.SkipList, metrics *analytics.Service) (*engine.CrewService, error) {
	table, err := cfg.Engine.RankTable()
	if err != nil {
		return nil, err
	}
	rules := engine.Ruleset{
		Badges: core.DefaultBadges(),
		Ranks:  table,
		Scheme: cfg.Engine.Scheme(),
	}

	svc := crew.New(
		crew.WithRealtime(hub),
		crew.WithStorage(storage),
		crew.WithRuleset(rules),
		crew.WithLeaderboard(board),
		crew.WithDispatchMode(engine.DispatchAsync),
	)

	hook := metrics.Hook()
	for _, typ := range []core.EventType{
		core.EventScoreRecomputed,
		core.EventRankUp,
		core.EventBadgeUnlocked,
		core.EventChallengeCompleted,
		core.EventTaskRated,
	} {
		svc.Subscribe(typ, func(_ context.Context, ev core.Event) {
			hook.OnEvent(ev)
		})
	}

	if len(cfg.Webhooks.Endpoints) > 0 {
		sink := webhook.New(cfg.Webhooks.Endpoints)
		for _, typ := range []core.EventType{core.EventBadgeUnlocked, core.EventRankUp} {
			svc.Subscribe(typ, func(_ context.Context, ev core.Event) {
				sink.OnEvent(ev)
			})
		}
	}

	return svc, nil
}

func provideHandler(svc *engine.CrewService, hub *realtime.Hub, board *leaderboard.SkipList, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
		Board:            board,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the appropriate storage adapter based on configuration.
func setupStorage(ctx context.Context, cfg *config.Config) (engine.Storage, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "file":
		return jsonfileAdapter.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
