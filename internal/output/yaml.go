package output

import (
	"gopkg.in/yaml.v3"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/server"
)

// YAMLFormatter renders listings as YAML sequences.
type YAMLFormatter struct{}

// FormatRoutes renders routes as YAML.
func (f *YAMLFormatter) FormatRoutes(routes []server.RouteInfo) (string, error) {
	if routes == nil {
		routes = []server.RouteInfo{}
	}
	data, err := yaml.Marshal(routes)
	return string(data), err
}

// FormatRateLimits renders entries as YAML.
func (f *YAMLFormatter) FormatRateLimits(entries []core.RateLimitEntry) (string, error) {
	if entries == nil {
		entries = []core.RateLimitEntry{}
	}
	data, err := yaml.Marshal(entries)
	return string(data), err
}
