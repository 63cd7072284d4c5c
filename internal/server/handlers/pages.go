package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/procoachmastery/website/internal/errors"
	"github.com/procoachmastery/website/internal/i18n"
	"github.com/procoachmastery/website/internal/observability"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// PageDef describes one content page. Slug is empty for the locale home.
type PageDef struct {
	Slug     string
	TitleKey string
	IntroKey string
	Form     string
}

// SitePages is the page catalog, in navigation order.
var SitePages = []PageDef{
	{Slug: "", TitleKey: i18n.KeyPageHome, IntroKey: i18n.KeyHomeTagline},
	{Slug: "programma", TitleKey: i18n.KeyPageProgram},
	{Slug: "over-ons", TitleKey: i18n.KeyPageAbout},
	{Slug: "start", TitleKey: i18n.KeyPageStart, IntroKey: i18n.KeyWaitlistIntro, Form: "waitlist"},
	{Slug: "contact", TitleKey: i18n.KeyPageContact, IntroKey: i18n.KeyContactIntro, Form: "contact"},
	{Slug: "algemene-voorwaarden", TitleKey: i18n.KeyPageTerms},
	{Slug: "privacy", TitleKey: i18n.KeyPagePrivacy},
}

// FindPage looks up a page by slug.
func FindPage(slug string) (PageDef, bool) {
	for _, page := range SitePages {
		if page.Slug == slug {
			return page, true
		}
	}
	return PageDef{}, false
}

// Link is a rendered navigation entry.
type Link struct {
	Href   string
	Label  string
	Locale string
	Active bool
}

// FormLabels holds the localized form copy.
type FormLabels struct {
	Name, Email, Message, Note, Consent, Submit, Thanks string
}

// PageView is the template model for one page.
type PageView struct {
	Locale      string
	SiteName    string
	Title       string
	Intro       string
	Form        string
	HomeHref    string
	SwitchLabel string
	Nav         []Link
	Alternates  []Link
	Labels      FormLabels
}

// PageHandler handles GET /{locale} and GET /{locale}/{slug}.
func PageHandler(w http.ResponseWriter, r *http.Request) {
	locale, ok := i18n.Parse(chi.URLParam(r, "locale"))
	if !ok {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("The requested page was not found"))
		return
	}

	page, ok := FindPage(strings.Trim(chi.URLParam(r, "slug"), "/"))
	if !ok {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("The requested page was not found"))
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, BuildPageView(locale, page, r.URL.Path)); err != nil {
		if observability.ServerLogger != nil {
			observability.ServerLogger.Error("Failed to render page",
				zap.String("slug", page.Slug),
				zap.String("locale", locale.String()),
				zap.Error(err))
		}
		apperrors.RespondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "page rendering failed"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", locale.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// BuildPageView assembles the template model. currentPath drives the locale
// switcher so it keeps the visitor on the same page.
func BuildPageView(locale i18n.Locale, page PageDef, currentPath string) PageView {
	view := PageView{
		Locale:      locale.String(),
		SiteName:    i18n.Text(locale, i18n.KeySiteName),
		Title:       i18n.Text(locale, page.TitleKey),
		Form:        page.Form,
		HomeHref:    i18n.Localize("/", locale),
		SwitchLabel: i18n.Text(locale, i18n.KeyNavSwitch),
		Labels: FormLabels{
			Name:    i18n.Text(locale, i18n.KeyFormName),
			Email:   i18n.Text(locale, i18n.KeyFormEmail),
			Message: i18n.Text(locale, i18n.KeyFormMessage),
			Note:    i18n.Text(locale, i18n.KeyFormNote),
			Consent: i18n.Text(locale, i18n.KeyFormConsent),
			Submit:  i18n.Text(locale, i18n.KeyFormSubmit),
			Thanks:  i18n.Text(locale, i18n.KeyFormThanks),
		},
	}
	if page.IntroKey != "" {
		view.Intro = i18n.Text(locale, page.IntroKey)
	}

	for _, p := range SitePages {
		view.Nav = append(view.Nav, Link{
			Href:   i18n.Localize("/"+p.Slug, locale),
			Label:  i18n.Text(locale, p.TitleKey),
			Locale: locale.String(),
			Active: p.Slug == page.Slug,
		})
	}

	for _, alt := range i18n.Supported() {
		view.Alternates = append(view.Alternates, Link{
			Href:   i18n.Localize(currentPath, alt),
			Label:  i18n.Text(alt, localeNameKey(alt)),
			Locale: alt.String(),
			Active: alt == locale,
		})
	}

	return view
}

func localeNameKey(l i18n.Locale) string {
	if l == i18n.English {
		return i18n.KeyLocaleNameEN
	}
	return i18n.KeyLocaleNameNL
}
