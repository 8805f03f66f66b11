//go:build integration

package game

import (
	"context"
	"os"
	"testing"
	"time"

	"example.com/codebreaker/internal/code"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, rdb.Ping(ctx).Err(), "redis is not reachable")
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisPersistence_CreateSaveLoad(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	persist := NewRedisSessionStore(rdb, time.Hour)
	cfg := Config{Source: code.NewSequenceSource(1, 2, 3, 4)}

	svc1 := NewSessionService(cfg, persist, nil, nil)
	sess, err := svc1.Create(ctx, "s_test_1", nil, "u1")
	require.NoError(t, err)

	_, err = sess.SubmitGuess("4321")
	require.NoError(t, err)
	_, err = sess.SubmitGuess("1234")
	require.NoError(t, err)

	// restart: new service with an empty in-memory cache
	svc2 := NewSessionService(cfg, persist, nil, nil)
	got, ok, err := svc2.GetOrLoad(ctx, "s_test_1")
	require.NoError(t, err)
	require.True(t, ok)

	st := got.View()
	require.Equal(t, PhaseFinished, st.Phase)
	require.True(t, st.Won)
	require.Len(t, st.History, 2)
	require.Equal(t, "u1", got.Owner())

	ttl, err := rdb.TTL(ctx, persist.key("s_test_1")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}

func TestRedisPersistence_RestoreActiveGame(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	persist := NewRedisSessionStore(rdb, time.Hour)
	cfg := Config{Source: code.NewSequenceSource(1, 2, 3, 4)}

	svc := NewSessionService(cfg, persist, nil, nil)
	sess, err := svc.Create(ctx, "s_test_2", nil, "")
	require.NoError(t, err)
	_, err = sess.SubmitGuess("5678")
	require.NoError(t, err)

	svc2 := NewSessionService(cfg, persist, nil, nil)
	got, ok, err := svc2.GetOrLoad(ctx, "s_test_2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, PhasePlaying, got.View().Phase)

	a, err := got.SubmitGuess("1234")
	require.NoError(t, err)
	require.True(t, a.Solved(4))

	require.NoError(t, svc2.Delete(ctx, "s_test_2"))
	_, found, err := persist.Load(ctx, "s_test_2")
	require.NoError(t, err)
	require.False(t, found)
}
