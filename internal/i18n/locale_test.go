package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Locale
	}{
		{"/en/contact", English},
		{"/nl", Dutch},
		{"/en", English},
		{"/", Default},
		{"", Default},
		{"/contact", Default},
		{"/EN/contact", Default},
		{"/english/contact", Default},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FromPath(tt.path))
		})
	}
}

func TestMissingLocale(t *testing.T) {
	tests := []struct {
		path    string
		missing bool
	}{
		{"/nl", false},
		{"/en", false},
		{"/nl/", false},
		{"/en/programma", false},
		{"/", true},
		{"/contact", true},
		{"/nlx", true},
		{"/enterprise/foo", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.missing, MissingLocale(tt.path))
		})
	}
}

func TestLocalize(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		locale Locale
		want   string
	}{
		{"root", "/", English, "/en"},
		{"root dutch", "/", Dutch, "/nl"},
		{"swap locale", "/nl/contact", English, "/en/contact"},
		{"same locale", "/en/contact", English, "/en/contact"},
		{"unprefixed", "/programma", English, "/en/programma"},
		{"bare locale", "/nl", English, "/en"},
		{"empty", "", Dutch, "/nl"},
		{"no leading slash", "contact", English, "/en/contact"},
		{"trailing slash kept", "/nl/over-ons/", English, "/en/over-ons/"},
		{"lookalike segment kept", "/nlx/page", English, "/en/nlx/page"},
		{"unknown locale falls back", "/en/contact", Locale("de"), "/nl/contact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Localize(tt.path, tt.locale))
		})
	}
}

func TestLocalizeIsIdempotent(t *testing.T) {
	paths := []string{"/", "/nl", "/en/contact", "/programma", "/nl/a/b/c", "/en/"}
	for _, p := range paths {
		for _, l := range Supported() {
			once := Localize(p, l)
			require.Equal(t, once, Localize(once, l), "path=%s locale=%s", p, l)
			assert.Equal(t, l, FromPath(once))
			assert.False(t, MissingLocale(once))
		}
	}
}

func TestSupportedReturnsCopy(t *testing.T) {
	locales := Supported()
	require.Equal(t, []Locale{Dutch, English}, locales)
	locales[0] = "xx"
	assert.Equal(t, Dutch, Supported()[0])
}

func TestTextUsesCatalog(t *testing.T) {
	assert.Equal(t, "Ongeldige gegevens", Text(Dutch, KeyInvalidInput))
	assert.Equal(t, "Invalid data", Text(English, KeyInvalidInput))
	assert.Equal(t, "Te veel verzoeken. Probeer het later opnieuw.", Text(Dutch, KeyRateLimited))
	assert.Equal(t, "Nieuw contactformulier bericht van Jan", Text(Dutch, KeyNotifySubject, "Jan"))
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/contact", nil)
	assert.Equal(t, Dutch, FromRequest(req))

	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	assert.Equal(t, English, FromRequest(req))

	req.Header.Set("Accept-Language", "fr-FR")
	assert.Equal(t, Dutch, FromRequest(req))

	req = httptest.NewRequest("GET", "/en/contact", nil)
	req.Header.Set("Accept-Language", "nl")
	assert.Equal(t, English, FromRequest(req))

	assert.Equal(t, Default, FromRequest(nil))
}
