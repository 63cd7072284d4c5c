package brevo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procoachmastery/website/internal/core"
)

type recordedCall struct {
	Method string
	Path   string
	APIKey string
	Body   map[string]any
}

type fakeBrevo struct {
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]func(w http.ResponseWriter)
}

func newFakeBrevo(t *testing.T) (*fakeBrevo, *httptest.Server) {
	t.Helper()
	f := &fakeBrevo{handlers: map[string]func(w http.ResponseWriter){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.EscapedPath(), APIKey: r.Header.Get("api-key"), Body: body})
		handler := f.handlers[r.Method+" "+r.URL.EscapedPath()]
		f.mu.Unlock()

		if handler != nil {
			handler(w)
			return
		}
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":42}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeBrevo) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (f *fakeBrevo) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func TestSyncContactCreateListAndTag(t *testing.T) {
	fake, srv := newFakeBrevo(t)
	client := NewClient(srv.URL, "key-123")

	err := client.SyncContact(context.Background(), core.CRMContact{
		Email:     "jan@example.nl",
		FirstName: "Jan",
		LastName:  "de Vries",
		Note:      "cohort 3",
		Tags:      []string{"waitlist", "website"},
		ListID:    7,
	})
	require.NoError(t, err)

	calls := fake.recorded()
	require.Len(t, calls, 3)

	assert.Equal(t, "POST", calls[0].Method)
	assert.Equal(t, "/contacts", calls[0].Path)
	assert.Equal(t, "key-123", calls[0].APIKey)
	assert.Equal(t, "jan@example.nl", calls[0].Body["email"])
	attrs := calls[0].Body["attributes"].(map[string]any)
	assert.Equal(t, "Jan", attrs["FIRSTNAME"])
	assert.Equal(t, "de Vries", attrs["LASTNAME"])
	assert.Equal(t, "cohort 3", attrs["NOTE"])

	assert.Equal(t, "/contacts/lists/7/contacts/add", calls[1].Path)
	assert.Equal(t, []any{"jan@example.nl"}, calls[1].Body["emails"])

	assert.Equal(t, "PUT", calls[2].Method)
	assert.Equal(t, "/contacts/jan@example.nl", calls[2].Path)
	assert.Equal(t, []any{"waitlist", "website"}, calls[2].Body["tags"])
}

func TestSyncContactDuplicateRetriesAsUpdate(t *testing.T) {
	fake, srv := newFakeBrevo(t)
	fake.on("POST", "/contacts", http.StatusBadRequest, `{"code":"duplicate_parameter","message":"Contact already exist"}`)
	client := NewClient(srv.URL, "key")

	err := client.SyncContact(context.Background(), core.CRMContact{
		Email:     "an@example.com",
		FirstName: "An",
		Tags:      []string{"contact-form", "website"},
		ListID:    3,
	})
	require.NoError(t, err)

	calls := fake.recorded()
	require.Len(t, calls, 2, "duplicate should skip list add and send a single update")
	assert.Equal(t, "PUT", calls[1].Method)
	assert.Equal(t, []any{"contact-form", "website"}, calls[1].Body["tags"])
	attrs := calls[1].Body["attributes"].(map[string]any)
	assert.Equal(t, "An", attrs["FIRSTNAME"])
}

func TestSyncContactListConflictIgnored(t *testing.T) {
	fake, srv := newFakeBrevo(t)
	fake.on("POST", "/contacts/lists/9/contacts/add", http.StatusBadRequest, `{"code":"invalid_parameter","message":"Contact already in list"}`)
	client := NewClient(srv.URL, "key")

	err := client.SyncContact(context.Background(), core.CRMContact{Email: "a@b.nl", Tags: []string{"website"}, ListID: 9})
	require.NoError(t, err)
	require.Len(t, fake.recorded(), 3)
}

func TestSyncContactCreateFailure(t *testing.T) {
	fake, srv := newFakeBrevo(t)
	fake.on("POST", "/contacts", http.StatusUnauthorized, `{"code":"unauthorized","message":"Key not found"}`)
	client := NewClient(srv.URL, "bad")

	err := client.SyncContact(context.Background(), core.CRMContact{Email: "a@b.nl"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.False(t, IsDuplicate(err))
	assert.Contains(t, err.Error(), "unauthorized")
	require.Len(t, fake.recorded(), 1)
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	assert.False(t, client.Configured())
	assert.Equal(t, defaultBaseURL, client.BaseURL)

	err := client.SyncContact(context.Background(), core.CRMContact{Email: "a@b.nl"})
	require.Error(t, err)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	client.Timeout = 20 * time.Millisecond

	_, err := client.CreateContact(context.Background(), "a@b.nl", nil)
	require.Error(t, err)
}

func TestIsDuplicateMessageFallback(t *testing.T) {
	assert.True(t, IsDuplicate(&APIError{StatusCode: 400, Message: "Contact already exists"}))
	assert.False(t, IsDuplicate(&APIError{StatusCode: 409, Message: "Contact already exists"}))
	assert.False(t, IsDuplicate(nil))
}

func TestMailerPlainBodyEscapesInput(t *testing.T) {
	fake, srv := newFakeBrevo(t)
	mailer := NewMailer(NewClient(srv.URL, "key"), "", 0)

	err := mailer.NotifyContact(context.Background(), core.ContactSubmission{
		Name:    "Jan <script>",
		Email:   "jan@example.nl",
		Message: "regel 1\nregel <b>2</b>",
	})
	require.NoError(t, err)

	calls := fake.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/smtp/email", calls[0].Path)
	body := calls[0].Body
	assert.Equal(t, "Nieuw contactformulier bericht van Jan <script>", body["subject"])
	assert.Equal(t, []any{map[string]any{"email": DefaultNotificationEmail}}, body["to"])
	assert.Equal(t, map[string]any{"email": DefaultSenderEmail, "name": DefaultSenderName}, body["sender"])

	html := body["htmlContent"].(string)
	assert.Contains(t, html, "Jan &lt;script&gt;")
	assert.Contains(t, html, "regel 1<br>regel &lt;b&gt;2&lt;/b&gt;")
	assert.False(t, strings.Contains(html, "<script>"))
}

func TestMailerTemplate(t *testing.T) {
	fake, srv := newFakeBrevo(t)
	mailer := NewMailer(NewClient(srv.URL, "key"), "owner@example.nl", 12)

	err := mailer.NotifyContact(context.Background(), core.ContactSubmission{Name: "An", Email: "an@example.com", Message: "Hoi"})
	require.NoError(t, err)

	body := fake.recorded()[0].Body
	assert.Equal(t, float64(12), body["templateId"])
	assert.Equal(t, map[string]any{"name": "An", "email": "an@example.com", "message": "Hoi"}, body["params"])
	assert.Equal(t, []any{map[string]any{"email": "owner@example.nl"}}, body["to"])
	assert.Nil(t, body["htmlContent"])
}

func TestMailerUnconfigured(t *testing.T) {
	mailer := NewMailer(NewClient("", ""), "", 0)
	require.Error(t, mailer.NotifyContact(context.Background(), core.ContactSubmission{}))
}

func TestWithRateLimit(t *testing.T) {
	client := NewClient("", "key").WithRateLimit(5, 0)
	require.NotNil(t, client.Limiter)
	assert.Equal(t, 1, client.Limiter.Burst())

	unpaced := NewClient("", "key").WithRateLimit(0, 5)
	assert.Nil(t, unpaced.Limiter)
}
