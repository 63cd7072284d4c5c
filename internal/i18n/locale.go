// Package i18n owns the site's closed locale set: resolving a locale from a
// request path, rewriting paths into a target locale, and the message
// catalogs used for page copy and API error text.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported content language, used as the leading path segment.
type Locale string

const (
	Dutch   Locale = "nl"
	English Locale = "en"
)

// Default is served when a path carries no supported locale.
const Default = Dutch

var supported = []Locale{Dutch, English}

var tags = map[Locale]language.Tag{
	Dutch:   language.Dutch,
	English: language.English,
}

// Supported returns the supported locales, default first.
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// Parse returns the locale for an exact, case-sensitive segment match.
func Parse(value string) (Locale, bool) {
	for _, l := range supported {
		if string(l) == value {
			return l, true
		}
	}
	return "", false
}

// Tag returns the language tag backing the locale's message catalog.
func (l Locale) Tag() language.Tag {
	if tag, ok := tags[l]; ok {
		return tag
	}
	return tags[Default]
}

func (l Locale) String() string {
	return string(l)
}

// FromPath returns the locale named by the first path segment, or Default.
func FromPath(path string) Locale {
	if l, ok := Parse(firstSegment(path)); ok {
		return l
	}
	return Default
}

// MissingLocale reports whether path lacks a "/<locale>" or "/<locale>/..." prefix.
func MissingLocale(path string) bool {
	for _, l := range supported {
		prefix := "/" + string(l)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return false
		}
	}
	return true
}

// Localize rewrites path so its leading segment is locale, replacing any
// supported locale already present. Localize(Localize(p, l), l) == Localize(p, l).
func Localize(path string, locale Locale) string {
	if _, ok := Parse(string(locale)); !ok {
		locale = Default
	}

	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	rest := path
	if seg := firstSegment(path); seg != "" {
		if _, ok := Parse(seg); ok {
			rest = path[len(seg)+1:]
		}
	}

	if rest == "" || rest == "/" {
		return "/" + string(locale)
	}
	return "/" + string(locale) + rest
}

func firstSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
