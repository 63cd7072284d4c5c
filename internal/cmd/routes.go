package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procoachmastery/website/internal/output"
	"github.com/procoachmastery/website/internal/server"
)

var routesReport reportFlags

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the HTTP routes served by the site",
	Long: `List every method and pattern registered on the router, including the
localized page routes, the form API and the operational endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := routesReport.parse()
		if err != nil {
			return err
		}

		routes, err := server.New("localhost", 0, server.Dependencies{}).Routes()
		if err != nil {
			return fmt.Errorf("walk routes: %w", err)
		}

		rendered, err := output.NewFormatter(format).FormatRoutes(routes)
		if err != nil {
			return err
		}

		return routesReport.write(cmd.OutOrStdout(), format, "routes", rendered)
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesReport.register(routesCmd, "table|json|yaml|markdown")
}
