package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procoachmastery/website/internal/core"
)

func TestSendWaitlist(t *testing.T) {
	var got map[string]any
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	err := NewClient(srv.URL).SendWaitlist(context.Background(), core.WaitlistEvent{
		Name:      "An de Boer",
		Email:     "an@example.com",
		Consent:   true,
		Timestamp: ts,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "An de Boer", got["name"])
	assert.Equal(t, "an@example.com", got["email"])
	assert.Equal(t, true, got["consent"])
	assert.Equal(t, "2026-03-01T10:00:00Z", got["timestamp"])
	assert.Equal(t, DefaultSource, got["source"])
	_, hasNote := got["note"]
	assert.False(t, hasNote)
}

func TestSendWaitlistStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SendWaitlist(context.Background(), core.WaitlistEvent{Email: "a@b.nl"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "nope", statusErr.Body)
}

func TestSendWaitlistUnconfigured(t *testing.T) {
	client := NewClient("  ")
	assert.False(t, client.Configured())
	require.Error(t, client.SendWaitlist(context.Background(), core.WaitlistEvent{}))

	var nilClient *Client
	assert.False(t, nilClient.Configured())
}

func TestSendWaitlistTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.Timeout = 20 * time.Millisecond
	require.Error(t, client.SendWaitlist(context.Background(), core.WaitlistEvent{}))
}

func TestWithRateLimit(t *testing.T) {
	client := NewClient("https://hooks.example.com").WithRateLimit(4, 0)
	require.NotNil(t, client.Limiter)
	assert.Equal(t, 1, client.Limiter.Burst())

	assert.Nil(t, NewClient("https://hooks.example.com").WithRateLimit(0, 3).Limiter)
}

func TestSendWaitlistPacesDeliveries(t *testing.T) {
	var mu sync.Mutex
	var arrivals []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithRateLimit(5, 1)
	for i := 0; i < 2; i++ {
		require.NoError(t, client.SendWaitlist(context.Background(), core.WaitlistEvent{Email: "a@b.nl"}))
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, arrivals, 2)
	assert.GreaterOrEqual(t, arrivals[1].Sub(arrivals[0]), 150*time.Millisecond)
}

func TestSendWaitlistPacingHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithRateLimit(0.1, 1)
	require.NoError(t, client.SendWaitlist(context.Background(), core.WaitlistEvent{Email: "a@b.nl"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.SendWaitlist(ctx, core.WaitlistEvent{Email: "a@b.nl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}
