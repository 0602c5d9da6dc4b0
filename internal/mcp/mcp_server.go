// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Recon MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Recon Codebase Scanner",
		schema.ScannerVersion,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	// --- 1. Tool: scan_codebase ---
	s.AddTool(mcp.NewTool("scan_codebase",
		mcp.WithDescription("Scan a directory and return a JSON map of its files, token counts, entrypoints, config surface, duplicates and git signals."),
		mcp.WithString("path", mcp.Description("Directory to scan (defaults to the server's working directory).")),
		mcp.WithNumber("max_tokens", mcp.Description("Skip files with more tokens than this.")),
		mcp.WithNumber("top", mcp.Description("Return only the top N files after sorting.")),
		mcp.WithString("sort", mcp.Description("Sort files by tokens or churn. Defaults to 'tokens'."), mcp.Enum("tokens", "churn")),
		mcp.WithString("ext", mcp.Description("Comma-separated extensions to keep, e.g. '.go,.md'.")),
		mcp.WithString("include", mcp.Description("Comma-separated glob patterns a path must match, e.g. 'src/**'.")),
		mcp.WithString("exclude", mcp.Description("Comma-separated glob patterns that drop a path, e.g. '**/*_test.go'.")),
	), h.handleScanCodebase)

	// --- 2. Tool: git_history ---
	s.AddTool(mcp.NewTool("git_history",
		mcp.WithDescription("Summarize git history for a directory: hotspots, stale files and co-change clusters."),
		mcp.WithString("path", mcp.Description("Directory inside a git work tree.")),
		mcp.WithNumber("churn_days", mcp.Description("Churn window in days. Defaults to 90.")),
	), h.handleGitHistory)

	return s
}

// StartMCPServer starts the Recon MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, client, mgr)
	return server.ServeStdio(s)
}
