package middleware

import (
	"net/http"
	"strings"
)

// UnknownClient is used when no client address header is present.
const UnknownClient = "unknown"

// ClientID identifies the submitter for rate limiting: the first address in
// X-Forwarded-For, then X-Real-IP, else UnknownClient. Clients behind the
// same proxy share one identifier.
func ClientID(r *http.Request) string {
	if r == nil {
		return UnknownClient
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}
