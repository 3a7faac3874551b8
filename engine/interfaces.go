package engine

import (
	"context"

	"crewkit/core"
)

// Storage abstracts the per-user key-value store the engine persists to.
// Get reports ok=false when the key is absent; parse failures at higher
// layers degrade to defaults rather than surfacing to the user.
type Storage interface {
	Get(ctx context.Context, user core.UserID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, user core.UserID, key string, value string) error
}

// Leaderboard receives score updates after each evaluation pass.
type Leaderboard interface {
	Update(user core.UserID, score int64)
}
