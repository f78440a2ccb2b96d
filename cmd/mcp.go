package cmd

import (
	"github.com/autoops/kpiscope/internal/mcp"

	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the KPI analysis MCP server",
	Long:  `Launch an MCP server that allows AI agents to run KPI analysis via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The analyze tool supplies its own CSV path per request, so skip
		// the positional-argument handling of the normal setup.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
