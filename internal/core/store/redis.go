package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/procoachmastery/website/internal/core"
)

// takeScript performs the fixed-window admission server-side so concurrent
// callers across processes cannot over-admit. Returns {allowed, count, pttl}.
var takeScript = redis.NewScript(`
local count = redis.call('GET', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if (not count) or ttl < 0 then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
  return {1, 1, tonumber(ARGV[2])}
end
count = tonumber(count)
if count >= tonumber(ARGV[1]) then
  return {0, count, ttl}
end
count = redis.call('INCR', KEYS[1])
return {1, count, ttl}
`)

// Redis keeps windows in Redis with key expiry matching the window.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix namespaces every key written by the store.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if p := strings.Trim(strings.TrimSpace(prefix), ":"); p != "" {
			r.prefix = p
		}
	}
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "procoach:ratelimit",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Take applies one fixed-window admission atomically in Redis.
func (r *Redis) Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (core.RateLimitEntry, bool, error) {
	if r == nil || r.client == nil {
		return core.RateLimitEntry{}, true, errors.New("redis store is not initialized")
	}

	windowMs := window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}

	res, err := takeScript.Run(ctx, r.client, []string{r.redisKey(key)}, max, windowMs).Int64Slice()
	if err != nil {
		return core.RateLimitEntry{}, true, fmt.Errorf("redis rate limit take: %w", err)
	}
	if len(res) != 3 {
		return core.RateLimitEntry{}, true, fmt.Errorf("redis rate limit take: unexpected reply length %d", len(res))
	}

	entry := core.RateLimitEntry{
		Key:     key,
		Count:   int(res[1]),
		ResetAt: now.Add(time.Duration(res[2]) * time.Millisecond),
	}
	return entry, res[0] == 1, nil
}

// Get returns the stored window for key, or nil when absent or expired.
func (r *Redis) Get(ctx context.Context, key string) (*core.RateLimitEntry, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("redis store is not initialized")
	}

	entries, err := r.load(ctx, []string{r.redisKey(key)})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// List returns windows whose key starts with prefix, sorted by key.
func (r *Redis) List(ctx context.Context, prefix string) ([]core.RateLimitEntry, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("redis store is not initialized")
	}

	keys, err := r.scan(ctx, prefix)
	if err != nil {
		return nil, err
	}
	entries, err := r.load(ctx, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Reset deletes windows whose key starts with prefix.
func (r *Redis) Reset(ctx context.Context, prefix string) (int64, error) {
	if r == nil || r.client == nil {
		return 0, errors.New("redis store is not initialized")
	}

	keys, err := r.scan(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	deleted, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis rate limit reset: %w", err)
	}
	return deleted, nil
}

// Delete removes the window stored under exactly key.
func (r *Redis) Delete(ctx context.Context, key string) (int64, error) {
	if r == nil || r.client == nil {
		return 0, errors.New("redis store is not initialized")
	}
	deleted, err := r.client.Del(ctx, r.redisKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis rate limit delete: %w", err)
	}
	return deleted, nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return errors.New("redis store is not initialized")
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Driver() string { return DriverRedis }

func (r *Redis) redisKey(key string) string {
	return r.prefix + ":" + key
}

func (r *Redis) scan(ctx context.Context, prefix string) ([]string, error) {
	pattern := r.prefix + ":" + escapeGlob(prefix) + "*"
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis rate limit scan: %w", err)
	}
	return keys, nil
}

func (r *Redis) load(ctx context.Context, redisKeys []string) ([]core.RateLimitEntry, error) {
	if len(redisKeys) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	gets := make([]*redis.StringCmd, len(redisKeys))
	ttls := make([]*redis.DurationCmd, len(redisKeys))
	for i, key := range redisKeys {
		gets[i] = pipe.Get(ctx, key)
		ttls[i] = pipe.PTTL(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis rate limit load: %w", err)
	}

	now := time.Now().UTC()
	entries := make([]core.RateLimitEntry, 0, len(redisKeys))
	for i, key := range redisKeys {
		count, err := gets[i].Int()
		if err != nil {
			continue
		}
		ttl := ttls[i].Val()
		if ttl <= 0 {
			continue
		}
		entries = append(entries, core.RateLimitEntry{
			Key:     strings.TrimPrefix(key, r.prefix+":"),
			Count:   count,
			ResetAt: now.Add(ttl),
		})
	}
	return entries, nil
}

func escapeGlob(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return replacer.Replace(value)
}
