package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procoachmastery/website/internal/i18n"
)

func pageRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/{locale}", PageHandler)
	r.Get("/{locale}/{slug}", PageHandler)
	return r
}

func TestPageHandlerRendersLocalizedPage(t *testing.T) {
	rec := httptest.NewRecorder()
	pageRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nl/contact", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nl", rec.Header().Get("Content-Language"))
	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="nl">`)
	assert.Contains(t, body, `action="/api/contact"`)
	assert.Contains(t, body, `href="/en/contact"`)
	assert.Contains(t, body, `href="/nl/programma"`)
}

func TestPageHandlerEnglishWaitlist(t *testing.T) {
	rec := httptest.NewRecorder()
	pageRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/en/start", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/api/waitlist"`)
	assert.Contains(t, body, `name="website"`)
	assert.Contains(t, body, `href="/nl/start"`)
}

func TestPageHandlerNotFound(t *testing.T) {
	for _, path := range []string{"/de", "/nl/unknown", "/fr/contact"} {
		rec := httptest.NewRecorder()
		pageRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestBuildPageViewHome(t *testing.T) {
	home, ok := FindPage("")
	require.True(t, ok)

	view := BuildPageView(i18n.English, home, "/en")
	assert.Equal(t, "/en", view.HomeHref)
	assert.Equal(t, "Home", view.Title)
	require.Len(t, view.Nav, len(SitePages))
	assert.True(t, view.Nav[0].Active)
	assert.Equal(t, "/en/over-ons", view.Nav[2].Href)

	require.Len(t, view.Alternates, 2)
	assert.Equal(t, Link{Href: "/nl", Label: "Nederlands", Locale: "nl"}, view.Alternates[0])
	assert.Equal(t, Link{Href: "/en", Label: "English", Locale: "en", Active: true}, view.Alternates[1])
}
