package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procoachmastery/website/internal/config"
)

func newMiniRedisStore(t *testing.T) (*miniredis.Miniredis, Store) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := Open(context.Background(), config.StoreConfig{
		Driver: DriverRedis,
		Addr:   mr.Addr(),
		Prefix: "procoach-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return mr, s
}

func TestRedisTake(t *testing.T) {
	ctx := context.Background()
	mr, s := newMiniRedisStore(t)
	require.Equal(t, DriverRedis, s.Driver())
	require.NoError(t, s.Ping(ctx))

	now := time.Now().UTC()
	for i := 1; i <= 5; i++ {
		entry, allowed, err := s.Take(ctx, "contact:203.0.113.7", 5, 15*time.Minute, now)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, i, entry.Count)
		assert.WithinDuration(t, now.Add(15*time.Minute), entry.ResetAt, time.Second)
	}

	t.Run("RejectsOverMax", func(t *testing.T) {
		entry, allowed, err := s.Take(ctx, "contact:203.0.113.7", 5, 15*time.Minute, now)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 5, entry.Count)

		stored, err := mr.Get("procoach-test:contact:203.0.113.7")
		require.NoError(t, err)
		assert.Equal(t, "5", stored)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		entry, allowed, err := s.Take(ctx, "waitlist:203.0.113.7", 5, 15*time.Minute, now)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, entry.Count)
	})

	t.Run("ResetsAfterExpiry", func(t *testing.T) {
		mr.FastForward(15*time.Minute + time.Millisecond)

		later := now.Add(15*time.Minute + time.Millisecond)
		entry, allowed, err := s.Take(ctx, "contact:203.0.113.7", 5, 15*time.Minute, later)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, entry.Count)
		assert.WithinDuration(t, later.Add(15*time.Minute), entry.ResetAt, time.Second)
	})
}

func TestRedisTakeConcurrentBurst(t *testing.T) {
	ctx := context.Background()
	_, s := newMiniRedisStore(t)

	const callers = 40
	var admitted atomic.Int32
	var wg sync.WaitGroup
	now := time.Now().UTC()
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, allowed, err := s.Take(ctx, "waitlist:198.51.100.1", 5, time.Minute, now)
			if assert.NoError(t, err) && allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), admitted.Load())

	entry, err := s.Get(ctx, "waitlist:198.51.100.1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 5, entry.Count)
}

func TestRedisListAndReset(t *testing.T) {
	ctx := context.Background()
	mr, s := newMiniRedisStore(t)

	now := time.Now().UTC()
	for _, key := range []string{"contact:a", "contact:b", "waitlist:a"} {
		_, _, err := s.Take(ctx, key, 5, time.Minute, now)
		require.NoError(t, err)
	}

	entries, err := s.List(ctx, "contact:")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "contact:a", entries[0].Key)
	assert.Equal(t, "contact:b", entries[1].Key)

	missing, err := s.Get(ctx, "contact:zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exact, err := Lookup(ctx, s, RateLimitQuery{Form: "contact", Client: "a"})
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "contact:a", exact[0].Key)

	deleted, err := Clear(ctx, s, RateLimitQuery{Form: "contact", Client: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.False(t, mr.Exists("procoach-test:contact:a"))
	assert.True(t, mr.Exists("procoach-test:contact:b"))

	deleted, err = s.Reset(ctx, "contact:")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.False(t, mr.Exists("procoach-test:contact:b"))
	assert.True(t, mr.Exists("procoach-test:waitlist:a"))
}

func TestRedisTakeUnreachable(t *testing.T) {
	mr, s := newMiniRedisStore(t)
	mr.Close()

	_, allowed, err := s.Take(context.Background(), "contact:x", 5, time.Minute, time.Now())
	require.Error(t, err)
	assert.True(t, allowed)
}
