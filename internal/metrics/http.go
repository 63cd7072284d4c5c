package metrics

import (
	"strconv"
	"time"
)

// HTTPRequest describes one served request. Endpoint must be a route
// pattern, never a raw path.
type HTTPRequest struct {
	Method       string
	Endpoint     string
	Locale       string
	Status       int
	Duration     time.Duration
	RequestSize  int64
	ResponseSize int64
}

// RecordHTTPRequest emits the request counter, latency, sizes and, for 4xx
// and 5xx responses, the error counter.
func RecordHTTPRequest(req HTTPRequest) {
	status := strconv.Itoa(req.Status)
	labels := map[string]string{
		"method":   req.Method,
		"endpoint": req.Endpoint,
		"status":   status,
	}
	if req.Locale != "" {
		labels["locale"] = req.Locale
	}

	count(HTTPRequestsTotal, labels)
	observe(HTTPRequestDurationMs, req.Duration, labels)

	sizeLabels := map[string]string{"method": req.Method, "endpoint": req.Endpoint}
	gauge(HTTPRequestSizeBytes, float64(req.RequestSize), sizeLabels)
	gauge(HTTPResponseSizeBytes, float64(req.ResponseSize), sizeLabels)

	if req.Status < 400 {
		return
	}
	count(HTTPErrorsTotal, map[string]string{
		"method":     req.Method,
		"endpoint":   req.Endpoint,
		"status":     status,
		"error_type": outcomeLabel(req.Status >= 500, "server_error", "client_error"),
	})
}
