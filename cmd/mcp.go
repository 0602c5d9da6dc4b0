package cmd

import (
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Recon MCP server",
	Long: `Launch an MCP server on stdio so AI agents can scan codebases and read git
history through the scan_codebase and git_history tools.

Global flags and config set the defaults for every tool call.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, contract.NewLocalGitClient(), cacheManager)
	},
}
