package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/config"
	apperrors "github.com/procoachmastery/website/internal/errors"
	"github.com/procoachmastery/website/internal/observability"
)

const defaultMetricsPort = 9090

// MetricsProxy serves /metrics on the main listener by fetching the
// Prometheus exporter's local endpoint.
type MetricsProxy struct {
	Client *http.Client
	// Port reports the exporter port; zero means unknown.
	Port func() int
}

// NewMetricsProxy returns a proxy bound to the process exporter.
func NewMetricsProxy() *MetricsProxy {
	return &MetricsProxy{
		Client: &http.Client{Timeout: 5 * time.Second},
		Port:   exporterPort,
	}
}

func exporterPort() int {
	if port := observability.GetMetricsPort(); port != 0 {
		return port
	}
	if cfg := config.GetConfig(); cfg != nil && cfg.Metrics.Port != 0 {
		return cfg.Metrics.Port
	}
	return defaultMetricsPort
}

// Hop-by-hop headers stay with the exporter connection.
var hopByHop = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

func (p *MetricsProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if observability.PrometheusExporter == nil {
		HandleError(w, r, errors.NewErrorEnvelope(apperrors.CodeUnavailable, "Metrics exporter not initialized"))
		return
	}

	target := fmt.Sprintf("http://127.0.0.1:%d/metrics", p.Port())
	upstream, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		HandleError(w, r, proxyError(apperrors.CodeInternal, "Unable to construct metrics request", target, err))
		return
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		upstream.Header.Set("Accept", accept)
	}

	resp, err := p.Client.Do(upstream)
	if err != nil {
		HandleError(w, r, proxyError(apperrors.CodeExternalService, "Prometheus exporter unavailable", target, err))
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	for key, values := range resp.Header {
		if hopByHop[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if resp.Header.Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to copy metrics response", zap.Error(err))
	}
}

func proxyError(code, message, target string, cause error) *errors.ErrorEnvelope {
	envelope, _ := errors.NewErrorEnvelope(code, message).WithContext(map[string]interface{}{
		"metrics_url":    target,
		"original_error": cause.Error(),
	})
	return envelope
}
