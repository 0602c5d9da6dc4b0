package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/recon/core/scan"
	"github.com/huangsam/recon/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.CacheManager
}

func (h *toolHandler) handleScanCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateRoot(cfg, request.GetString("path", cfg.RootPath)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}
	err := contract.RevalidateScan(cfg,
		request.GetInt("max_tokens", 0),
		request.GetInt("top", 0),
		request.GetString("sort", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scan parameters: %v", err)), nil
	}
	if ext := request.GetString("ext", ""); ext != "" {
		cfg.Extensions = contract.ParseList(ext)
	}
	if include := request.GetString("include", ""); include != "" {
		cfg.IncludePatterns = contract.ParseList(include)
	}
	if exclude := request.GetString("exclude", ""); exclude != "" {
		cfg.ExcludePatterns = contract.ParseList(exclude)
	}

	scanner, err := scan.NewScanner(cfg, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scanner setup failed: %v", err)), nil
	}
	report, err := scanner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGitHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateRoot(cfg, request.GetString("path", cfg.RootPath)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}
	days := request.GetInt("churn_days", 0)
	if days < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("churn_days must be greater than 0 (received %d)", days)), nil
	}
	if days > 0 {
		cfg.ChurnDays = days
	}
	cfg.NoGit = false

	stats := scan.LoadHistory(ctx, cfg, h.client, h.mgr).Stats(time.Now())
	if !stats.Available {
		return mcp.NewToolResultError(fmt.Sprintf("git history is unavailable for %s", cfg.RootPath)), nil
	}

	jsonData, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
