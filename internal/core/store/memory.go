package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/procoachmastery/website/internal/core"
)

// Memory keeps windows in process memory. Entries live until Reset.
type Memory struct {
	mu      sync.Mutex
	entries map[string]core.RateLimitEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]core.RateLimitEntry)}
}

// Take applies one fixed-window admission under the store lock.
func (m *Memory) Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (core.RateLimitEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		m.entries = make(map[string]core.RateLimitEntry)
	}

	entry, ok := m.entries[key]
	if !ok || entry.Expired(now) {
		entry = core.RateLimitEntry{Key: key, Count: 1, ResetAt: now.Add(window)}
		m.entries[key] = entry
		return entry, true, nil
	}

	if entry.Count >= max {
		return entry, false, nil
	}

	entry.Count++
	m.entries[key] = entry
	return entry, true, nil
}

// Get returns the stored window for key, or nil.
func (m *Memory) Get(ctx context.Context, key string) (*core.RateLimitEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// List returns windows whose key starts with prefix, sorted by key.
func (m *Memory) List(ctx context.Context, prefix string) ([]core.RateLimitEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]core.RateLimitEntry, 0, len(m.entries))
	for key, entry := range m.entries {
		if strings.HasPrefix(key, prefix) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Reset deletes windows whose key starts with prefix.
func (m *Memory) Reset(ctx context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Delete removes the window stored under exactly key.
func (m *Memory) Delete(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return 0, nil
	}
	delete(m.entries, key)
	return 1, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) Driver() string { return DriverMemory }
