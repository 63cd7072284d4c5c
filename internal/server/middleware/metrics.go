package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/i18n"
	"github.com/procoachmastery/website/internal/metrics"
	"github.com/procoachmastery/website/internal/observability"
)

// statusRecorder captures the status code and body size written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// routeLabel returns the chi route pattern, or a coarse bucket for requests
// that never matched a route, so raw paths never become label values.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	path := r.URL.Path
	switch {
	case path == "/":
		return "/"
	case path == "/version", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/health"):
		return "/health/*"
	case strings.HasPrefix(path, "/api/"):
		return "/api/*"
	case !i18n.MissingLocale(path):
		return "/{locale}/*"
	default:
		return "/unknown"
	}
}

// localeLabel names the page locale; API and operational routes have none.
func localeLabel(path string) string {
	if i18n.MissingLocale(path) {
		return ""
	}
	return i18n.FromPath(path).String()
}

// RequestMetrics records every request through the metrics package and logs
// a completion line with the request id.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.TelemetrySystem == nil && observability.ServerLogger == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		var requestSize int64
		if cl := r.Header.Get("Content-Length"); cl != "" {
			if size, err := strconv.ParseInt(cl, 10, 64); err == nil {
				requestSize = size
			}
		}

		next.ServeHTTP(rec, r)

		req := metrics.HTTPRequest{
			Method:       r.Method,
			Endpoint:     routeLabel(r),
			Locale:       localeLabel(r.URL.Path),
			Status:       rec.status,
			Duration:     time.Since(start),
			RequestSize:  requestSize,
			ResponseSize: rec.bytes,
		}
		metrics.RecordHTTPRequest(req)

		if observability.ServerLogger != nil {
			observability.ServerLogger.Info("HTTP request completed",
				zap.String("method", req.Method),
				zap.String("path", r.URL.Path),
				zap.String("endpoint", req.Endpoint),
				zap.Int("status", req.Status),
				zap.Duration("duration", req.Duration),
				zap.Int64("request_size", req.RequestSize),
				zap.Int64("response_size", req.ResponseSize),
				zap.String("request_id", GetRequestID(r.Context())),
			)
		}
	})
}
