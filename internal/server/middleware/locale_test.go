package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocaleRedirect(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := LocaleRedirect(nil)(next)

	tests := []struct {
		name     string
		target   string
		status   int
		location string
	}{
		{"root", "/", http.StatusTemporaryRedirect, "/nl"},
		{"page without locale", "/programma", http.StatusTemporaryRedirect, "/nl/programma"},
		{"nested page", "/over-ons/team", http.StatusTemporaryRedirect, "/nl/over-ons/team"},
		{"query preserved", "/contact?ref=mail", http.StatusTemporaryRedirect, "/nl/contact?ref=mail"},
		{"unsupported locale", "/de/start", http.StatusTemporaryRedirect, "/nl/de/start"},
		{"locale prefix lookalike", "/nlx", http.StatusTemporaryRedirect, "/nl/nlx"},
		{"dutch root", "/nl", http.StatusNoContent, ""},
		{"english page", "/en/contact", http.StatusNoContent, ""},
		{"api", "/api/contact", http.StatusNoContent, ""},
		{"static", "/static/app.css", http.StatusNoContent, ""},
		{"img", "/img/logo", http.StatusNoContent, ""},
		{"favicon", "/favicon.ico", http.StatusNoContent, ""},
		{"robots", "/robots.txt", http.StatusNoContent, ""},
		{"health", "/health/ready", http.StatusNoContent, ""},
		{"version", "/version", http.StatusNoContent, ""},
		{"metrics", "/metrics", http.StatusNoContent, ""},
		{"file-like path", "/downloads/brochure.pdf", http.StatusNoContent, ""},
		{"dot in earlier segment", "/v1.2/page", http.StatusNoContent, ""},
		{"api prefix without slash", "/apix", http.StatusNoContent, ""},
		{"img prefix without slash", "/images/hero", http.StatusNoContent, ""},
		{"healthz probe", "/healthz", http.StatusNoContent, ""},
		{"page sharing no bypass prefix", "/start", http.StatusTemporaryRedirect, "/nl/start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestLocaleRedirectCustomBypass(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := LocaleRedirect([]string{"/webhooks"})(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhooks/brevo", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contact", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}
