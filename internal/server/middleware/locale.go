package middleware

import (
	"net/http"
	"strings"

	"github.com/procoachmastery/website/internal/i18n"
)

// DefaultLocaleBypass lists path prefixes that are served without a locale.
var DefaultLocaleBypass = []string{
	"/api",
	"/static",
	"/img",
	"/health",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
	"/manifest.json",
	"/version",
	"/metrics",
}

// LocaleRedirect sends any page request without a supported locale prefix to
// the same path under the default locale. Paths starting with a bypass
// prefix, and any path containing a dot, pass through untouched.
func LocaleRedirect(bypass []string) func(http.Handler) http.Handler {
	if bypass == nil {
		bypass = DefaultLocaleBypass
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if skipLocale(path, bypass) || !i18n.MissingLocale(path) {
				next.ServeHTTP(w, r)
				return
			}

			target := i18n.Localize(path, i18n.Default)
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
		})
	}
}

// skipLocale matches bypass entries as plain string prefixes, so "/api" also
// covers "/apix" and "/health" covers "/healthz".
func skipLocale(path string, bypass []string) bool {
	for _, prefix := range bypass {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return strings.Contains(path, ".")
}
