package core

import "time"

// RateLimitEntry is the fixed-window counter for one (form, client) key.
type RateLimitEntry struct {
	Key     string    `json:"key" yaml:"key"`
	Count   int       `json:"count" yaml:"count"`
	ResetAt time.Time `json:"reset_at" yaml:"reset_at"`
}

// Expired reports whether the window has elapsed at now.
func (e RateLimitEntry) Expired(now time.Time) bool {
	return !now.Before(e.ResetAt)
}

// RateLimitDecision is the result of one admission attempt.
type RateLimitDecision struct {
	Allowed    bool
	Count      int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Remaining returns how many more requests fit in the current window.
func (d RateLimitDecision) Remaining() int {
	if d.Count >= d.Limit {
		return 0
	}
	return d.Limit - d.Count
}
