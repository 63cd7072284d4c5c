package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/server"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func sampleRoutes() []server.RouteInfo {
	return []server.RouteInfo{
		{Method: "POST", Pattern: "/api/contact"},
		{Method: "GET", Pattern: "/{locale}/{slug}"},
	}
}

func sampleEntries() []core.RateLimitEntry {
	return []core.RateLimitEntry{
		{Key: "contact:192.0.2.1", Count: 3, ResetAt: time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)},
	}
}

func TestFormatters(t *testing.T) {
	for _, format := range []Format{FormatTable, FormatJSON, FormatYAML, FormatMarkdown} {
		formatter := NewFormatter(format)

		routes, err := formatter.FormatRoutes(sampleRoutes())
		require.NoError(t, err, format)
		require.Contains(t, routes, "/api/contact", format)
		require.Contains(t, routes, "POST", format)

		limits, err := formatter.FormatRateLimits(sampleEntries())
		require.NoError(t, err, format)
		require.Contains(t, limits, "192.0.2.1", format)
		require.Contains(t, limits, "2026-03-01T10:15:00Z", format)
	}
}

func TestJSONFormatterEmpty(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatRateLimits(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", rendered)
}

func TestYAMLRoutesRoundTripFields(t *testing.T) {
	rendered, err := NewFormatter(FormatYAML).FormatRoutes(sampleRoutes())
	require.NoError(t, err)

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "/api/contact", decoded[0]["pattern"])
}

func TestTableRateLimitsEmpty(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatRateLimits(nil)
	require.NoError(t, err)
	require.True(t, strings.Contains(rendered, "no stored rate limit state"))
}

func TestSplitRateLimitKey(t *testing.T) {
	form, client := SplitRateLimitKey("waitlist:2001:db8::1")
	require.Equal(t, "waitlist", form)
	require.Equal(t, "2001:db8::1", client)

	form, client = SplitRateLimitKey("orphan")
	require.Equal(t, "orphan", form)
	require.Empty(t, client)
}

func TestExtension(t *testing.T) {
	require.Equal(t, "json", Extension(FormatJSON))
	require.Equal(t, "yaml", Extension(FormatYAML))
	require.Equal(t, "md", Extension(FormatMarkdown))
	require.Equal(t, "txt", Extension(FormatTable))
}
