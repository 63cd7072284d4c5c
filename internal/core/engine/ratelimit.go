package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/observability"
)

// RateLimiter enforces a fixed-window limit per (form, client) pair.
type RateLimiter struct {
	Store  RateLimitStore
	Limits map[core.FormKind]RateLimit
	Clock  func() time.Time

	mu sync.RWMutex
}

// RateLimit represents a rate limit window.
type RateLimit struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// DefaultLimit applies to every form without an explicit override.
var DefaultLimit = RateLimit{RequestsPerWindow: 5, WindowDuration: 15 * time.Minute}

// RateLimitStore holds window state. Take must be atomic per key: it either
// starts a fresh window (count 1), increments an open window below max, or
// rejects without incrementing.
type RateLimitStore interface {
	Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (core.RateLimitEntry, bool, error)
}

// RateLimitKey builds the store key for a form and client identifier.
func RateLimitKey(form core.FormKind, clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = UnknownClient
	}
	return string(form) + ":" + clientID
}

// UnknownClient is the shared bucket for requests without a client address.
const UnknownClient = "unknown"

// Admit charges one request against the client's window for form. Store
// failures admit the request and return the error for logging.
func (r *RateLimiter) Admit(ctx context.Context, form core.FormKind, clientID string) (core.RateLimitDecision, error) {
	limit := r.getLimit(form)
	decision := core.RateLimitDecision{Allowed: true, Limit: limit.RequestsPerWindow}

	if r == nil || r.Store == nil {
		return decision, nil
	}

	now := r.now()
	entry, allowed, err := r.Store.Take(ctx, RateLimitKey(form, clientID), limit.RequestsPerWindow, limit.WindowDuration, now)
	if err != nil {
		return decision, err
	}

	decision.Allowed = allowed
	decision.Count = entry.Count
	decision.ResetAt = entry.ResetAt
	if !allowed {
		decision.RetryAfter = entry.ResetAt.Sub(now)
		if decision.RetryAfter < 0 {
			decision.RetryAfter = 0
		}
	}
	return decision, nil
}

// ApplyOverrides replaces the limit for individual forms. Non-positive values
// keep the default for that field. Safe to call while requests are admitted.
func (r *RateLimiter) ApplyOverrides(overrides map[core.FormKind]RateLimit) {
	if r == nil || len(overrides) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Limits == nil {
		r.Limits = make(map[core.FormKind]RateLimit, len(overrides))
	}
	for form, limit := range overrides {
		base := r.limitLocked(form)
		if limit.RequestsPerWindow > 0 {
			base.RequestsPerWindow = limit.RequestsPerWindow
		}
		if limit.WindowDuration > 0 {
			base.WindowDuration = limit.WindowDuration
		}
		r.Limits[form] = base
	}
}

func (r *RateLimiter) getLimit(form core.FormKind) RateLimit {
	if r == nil {
		return DefaultLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limitLocked(form)
}

func (r *RateLimiter) limitLocked(form core.FormKind) RateLimit {
	if r.Limits != nil {
		if limit, ok := r.Limits[form]; ok && limit.RequestsPerWindow > 0 && limit.WindowDuration > 0 {
			return limit
		}
	}
	return DefaultLimit
}

func (r *RateLimiter) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

func logRateLimitStoreError(form core.FormKind, err error) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Rate limit store unavailable, admitting request",
			zap.String("form", string(form)),
			zap.Error(err))
	}
}
