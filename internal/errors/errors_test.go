package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procoachmastery/website/internal/server/middleware"
)

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[string]int{
		CodeInvalidInput:     http.StatusBadRequest,
		CodeValidationFailed: http.StatusBadRequest,
		CodeNotFound:         http.StatusNotFound,
		CodeMethodNotAllowed: http.StatusMethodNotAllowed,
		CodeRateLimited:      http.StatusTooManyRequests,
		CodeExternalService:  http.StatusBadGateway,
		CodeUnavailable:      http.StatusServiceUnavailable,
		CodeInternal:         http.StatusInternalServerError,
		"SOMETHING_ELSE":     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromEnvelope(nil))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatusFromEnvelope(WrapWithContext(context.Background(), CodeRateLimited, nil, "slow down", nil)))
}

func TestEnsureEnvelope(t *testing.T) {
	env := EnsureEnvelope(stderrors.New("boom"))
	require.NotNil(t, env)
	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "boom", env.Context["wrapped_error"])

	existing := NewNotFoundError("missing")
	assert.Same(t, existing, EnsureEnvelope(existing))

	assert.Equal(t, CodeInternal, EnsureEnvelope(nil).Code)
}

func TestWrapWithContextKeepsAllFields(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDContextKey, "req-123")

	env := WrapWithContext(ctx, CodeRateLimited, stderrors.New("window full"), "rate limit exceeded",
		map[string]interface{}{"form": "contact", "client_id": "192.0.2.1"})

	assert.Equal(t, CodeRateLimited, env.Code)
	assert.Equal(t, "req-123", env.CorrelationID)
	assert.Equal(t, "contact", env.Context["form"])
	assert.Equal(t, "192.0.2.1", env.Context["client_id"])
	assert.Equal(t, "window full", env.Context["wrapped_error"])
}

func TestEnsureCorrelationIDFallback(t *testing.T) {
	env := EnsureCorrelationID(NewInternalError("x"), context.Background())
	assert.Contains(t, env.CorrelationID, "fallback-")
	assert.Nil(t, EnsureCorrelationID(nil, context.Background()))
}

func TestRespondWithEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nl/nergens", nil)
	rec := httptest.NewRecorder()

	RespondWithEnvelope(rec, req, NewNotFoundError("The requested page was not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
}

func TestRespondWithMessageHidesContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	rec := httptest.NewRecorder()

	env := WrapWithContext(req.Context(), CodeValidationFailed, stderrors.New("email: invalid"), "submission failed validation", nil)
	RespondWithMessage(rec, req, env, "Ongeldige gegevens")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"error":"Ongeldige gegevens"}`, rec.Body.String())
}

func TestRespondWithMessageFallsBackToEnvelopeMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithMessage(rec, nil, WrapWithContext(context.Background(), CodeRateLimited, nil, "rate limit exceeded", nil), "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestRespondWithErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
