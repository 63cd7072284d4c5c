package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/procoachmastery/website/internal/i18n"
	"github.com/procoachmastery/website/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	health := s.deps.Health
	s.router.Get("/health", health.HealthHandler)
	s.router.Get("/health/live", health.LivenessHandler)
	s.router.Get("/health/ready", health.ReadinessHandler)
	s.router.Get("/health/startup", health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Method(http.MethodGet, "/metrics", NewMetricsProxy())

	forms := handlers.NewFormHandler(s.deps.Intake)
	if s.deps.BodyLimit > 0 {
		forms.BodyLimit = s.deps.BodyLimit
	}
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/contact", forms.Contact)
		r.Post("/waitlist", forms.Waitlist)
	})

	// "/" and other unprefixed pages are redirected by LocaleRedirect.
	s.router.Get("/{locale}", handlers.PageHandler)
	s.router.Get("/{locale}/{slug}", handlers.PageHandler)
}

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method  string `json:"method" yaml:"method"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// Routes lists the router's routes sorted by pattern then method.
func (s *Server) Routes() ([]RouteInfo, error) {
	var routes []RouteInfo
	err := chi.Walk(s.router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		routes = append(routes, RouteInfo{Method: method, Pattern: route})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern == routes[j].Pattern {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Pattern < routes[j].Pattern
	})
	return routes, nil
}

// PagePaths expands the page catalog into concrete localized paths.
func PagePaths() []string {
	var paths []string
	for _, locale := range i18n.Supported() {
		for _, page := range handlers.SitePages {
			paths = append(paths, i18n.Localize("/"+page.Slug, locale))
		}
	}
	return paths
}
