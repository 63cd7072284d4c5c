package output

import (
	"encoding/json"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/server"
)

// JSONFormatter renders listings as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatRoutes renders routes as a JSON array.
func (f *JSONFormatter) FormatRoutes(routes []server.RouteInfo) (string, error) {
	if routes == nil {
		routes = []server.RouteInfo{}
	}
	return f.marshal(routes)
}

// FormatRateLimits renders entries as a JSON array.
func (f *JSONFormatter) FormatRateLimits(entries []core.RateLimitEntry) (string, error) {
	if entries == nil {
		entries = []core.RateLimitEntry{}
	}
	return f.marshal(entries)
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
