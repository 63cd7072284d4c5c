package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by the API, pages and notification mail.
const (
	KeyInvalidInput     = "api.invalid_input"
	KeyRateLimited      = "api.rate_limited"
	KeyInternalError    = "api.internal_error"
	KeyNotFound         = "api.not_found"
	KeyMethodNotAllowed = "api.method_not_allowed"

	KeyNotifySubject = "notify.subject"

	KeySiteName      = "site.name"
	KeyNavSwitch     = "nav.switch_locale"
	KeyPageHome      = "page.home"
	KeyPageProgram   = "page.programma"
	KeyPageAbout     = "page.over-ons"
	KeyPageStart     = "page.start"
	KeyPageTerms     = "page.algemene-voorwaarden"
	KeyPageContact   = "page.contact"
	KeyPagePrivacy   = "page.privacy"
	KeyHomeTagline   = "home.tagline"
	KeyWaitlistIntro = "waitlist.intro"
	KeyContactIntro  = "contact.intro"
	KeyLocaleNameNL  = "locale.nl"
	KeyLocaleNameEN  = "locale.en"

	KeyFormName    = "form.name"
	KeyFormEmail   = "form.email"
	KeyFormMessage = "form.message"
	KeyFormNote    = "form.note"
	KeyFormConsent = "form.consent"
	KeyFormSubmit  = "form.submit"
	KeyFormThanks  = "form.thanks"
)

var matcher = language.NewMatcher([]language.Tag{language.Dutch, language.English})

// Printer returns a catalog printer for the locale.
func Printer(l Locale) *message.Printer {
	return message.NewPrinter(l.Tag())
}

// Text looks up key in the locale's catalog.
func Text(l Locale, key string, args ...any) string {
	return Printer(l).Sprintf(key, args...)
}

// FromRequest picks the response language for r: a locale path prefix wins,
// then Accept-Language, then Default.
func FromRequest(r *http.Request) Locale {
	if r == nil {
		return Default
	}
	if l, ok := Parse(firstSegment(r.URL.Path)); ok {
		return l
	}
	return FromAcceptLanguage(r.Header.Get("Accept-Language"))
}

// FromAcceptLanguage matches an Accept-Language header against the supported set.
func FromAcceptLanguage(header string) Locale {
	header = strings.TrimSpace(header)
	if header == "" {
		return Default
	}
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return Default
	}
	tag, _, confidence := matcher.Match(prefs...)
	if confidence == language.No {
		return Default
	}
	base, _ := tag.Base()
	if l, ok := Parse(base.String()); ok {
		return l
	}
	return Default
}
