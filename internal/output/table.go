package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/server"
)

// TableFormatter renders listings as an ASCII table.
type TableFormatter struct{}

// FormatRoutes renders the route table.
func (f *TableFormatter) FormatRoutes(routes []server.RouteInfo) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Method", "Pattern"})

	for _, route := range routes {
		t.AppendRow(table.Row{route.Method, route.Pattern})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d routes", len(routes))})

	return t.Render(), nil
}

// FormatRateLimits renders stored windows.
func (f *TableFormatter) FormatRateLimits(entries []core.RateLimitEntry) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Form", "Client", "Count", "Resets At"})

	if len(entries) == 0 {
		t.AppendRow(table.Row{"(no stored rate limit state)", "", "", ""})
		return t.Render(), nil
	}

	for _, entry := range entries {
		form, client := SplitRateLimitKey(entry.Key)
		t.AppendRow(table.Row{
			form,
			client,
			entry.Count,
			entry.ResetAt.UTC().Format(time.RFC3339),
		})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d entries", len(entries))})

	return t.Render(), nil
}
