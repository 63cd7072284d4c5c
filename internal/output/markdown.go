package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/server"
)

// MarkdownFormatter renders listings as markdown tables.
type MarkdownFormatter struct{}

// FormatRoutes renders routes as a markdown table.
func (f *MarkdownFormatter) FormatRoutes(routes []server.RouteInfo) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Method | Pattern |\n")
	sb.WriteString("|--------|---------|\n")
	for _, route := range routes {
		sb.WriteString(fmt.Sprintf("| %s | `%s` |\n",
			escapeMarkdownCell(route.Method),
			escapeMarkdownCell(route.Pattern),
		))
	}
	return sb.String(), nil
}

// FormatRateLimits renders entries as a markdown table.
func (f *MarkdownFormatter) FormatRateLimits(entries []core.RateLimitEntry) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Form | Client | Count | Resets At |\n")
	sb.WriteString("|------|--------|-------|-----------|\n")
	for _, entry := range entries {
		form, client := SplitRateLimitKey(entry.Key)
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n",
			escapeMarkdownCell(form),
			escapeMarkdownCell(client),
			entry.Count,
			entry.ResetAt.UTC().Format(time.RFC3339),
		))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
