package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/procoachmastery/website/internal/config"
	"github.com/procoachmastery/website/internal/core"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Store holds fixed-window rate limit state.
type Store interface {
	Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (core.RateLimitEntry, bool, error)
	Get(ctx context.Context, key string) (*core.RateLimitEntry, error)
	List(ctx context.Context, prefix string) ([]core.RateLimitEntry, error)
	Reset(ctx context.Context, prefix string) (int64, error)
	Delete(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
	Driver() string
}

// Open initializes a store using the provided configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverMemory
	}

	if ctx == nil {
		ctx = context.Background()
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		opts, err := redisOptions(cfg)
		if err != nil {
			return nil, err
		}

		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis store: %w", err)
		}

		return NewRedis(client, WithPrefix(cfg.Prefix)), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

func redisOptions(cfg config.StoreConfig) (*redis.Options, error) {
	if url := strings.TrimSpace(cfg.URL); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("store.addr or store.url is required for the redis driver")
	}
	return &redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// RateLimitQuery selects stored windows for listing or reset.
type RateLimitQuery struct {
	All    bool
	Form   string
	Client string
	Prefix string
}

// Validate ensures a query names at least one selector.
func (q RateLimitQuery) Validate() error {
	if q.All {
		return nil
	}
	if strings.TrimSpace(q.Form) != "" || strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	if strings.TrimSpace(q.Client) != "" {
		return errors.New("--client requires --form")
	}
	return errors.New("must specify --all, --form, or --prefix")
}

// ExactKey returns the single key selected by --form with --client.
func (q RateLimitQuery) ExactKey() (string, bool) {
	if q.All {
		return "", false
	}
	form, client := strings.TrimSpace(q.Form), strings.TrimSpace(q.Client)
	if form == "" || client == "" {
		return "", false
	}
	return form + ":" + client, true
}

// Lookup returns the windows selected by q. A single client is fetched by
// key so "contact:10.0.0.1" never matches "contact:10.0.0.10".
func Lookup(ctx context.Context, s Store, q RateLimitQuery) ([]core.RateLimitEntry, error) {
	prefix, err := q.KeyPrefix()
	if err != nil {
		return nil, err
	}
	if key, ok := q.ExactKey(); ok {
		entry, err := s.Get(ctx, key)
		if err != nil || entry == nil {
			return nil, err
		}
		return []core.RateLimitEntry{*entry}, nil
	}
	return s.List(ctx, prefix)
}

// Clear deletes the windows selected by q and reports how many were removed.
func Clear(ctx context.Context, s Store, q RateLimitQuery) (int64, error) {
	prefix, err := q.KeyPrefix()
	if err != nil {
		return 0, err
	}
	if key, ok := q.ExactKey(); ok {
		return s.Delete(ctx, key)
	}
	return s.Reset(ctx, prefix)
}

// KeyPrefix turns the query into a key prefix. An exact client match returns
// the full key.
func (q RateLimitQuery) KeyPrefix() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	if q.All {
		return "", nil
	}
	if form := strings.TrimSpace(q.Form); form != "" {
		if client := strings.TrimSpace(q.Client); client != "" {
			return form + ":" + client, nil
		}
		return form + ":", nil
	}
	return strings.TrimSpace(q.Prefix), nil
}
