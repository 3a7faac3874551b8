package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewkit/core"
)

// newTestClient spins up a miniredis server and returns a client plus cleanup.
func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestStore_GetAbsent(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	_, ok, err := store.Get(context.Background(), "test-user", core.KeyQuizCompleted)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetGet(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()
	userID := core.UserID("test-user")

	require.NoError(t, store.Set(ctx, userID, core.KeyQuizCompleted, "true"))
	require.NoError(t, store.Set(ctx, userID, core.KeyPoints, "235"))

	v, ok, err := store.Get(ctx, userID, core.KeyQuizCompleted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", v)

	v, ok, err = store.Get(ctx, userID, core.KeyPoints)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "235", v)

	// overwrite
	require.NoError(t, store.Set(ctx, userID, core.KeyPoints, "260"))
	v, _, err = store.Get(ctx, userID, core.KeyPoints)
	require.NoError(t, err)
	assert.Equal(t, "260", v)
}

func TestStore_UsersIsolated(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alice", core.KeyRankName, "Captain"))
	_, ok, err := store.Get(ctx, "bob", core.KeyRankName)
	require.NoError(t, err)
	assert.False(t, ok)
}
