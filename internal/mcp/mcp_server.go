// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/autoops/kpiscope/internal/contract"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the KPI analysis MCP server
// without starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"KPI Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
	}

	// --- 1. Tool: analyze_kpis ---
	s.AddTool(mcp.NewTool("analyze_kpis",
		mcp.WithDescription("Run the full KPI analysis pipeline on a CSV of business metrics."),
		mcp.WithString("csv_path", mcp.Description("Path to the input CSV with Date, Revenue, Customers, Conversion_Rate and Marketing_Spend columns."), mcp.Required()),
		mcp.WithNumber("window", mcp.Description("Moving average window in days. Defaults to 7.")),
		mcp.WithString("anomaly_method", mcp.Description("Anomaly detection method (zscore, iqr). Defaults to 'zscore'."), mcp.Enum("zscore", "iqr")),
		mcp.WithNumber("lookback", mcp.Description("Historical comparison window in days. Defaults to 30.")),
	), h.handleAnalyzeKPIs)

	// --- 2. Tool: get_kpi_history ---
	s.AddTool(mcp.NewTool("get_kpi_history",
		mcp.WithDescription("Return recent analysis sessions from the persistent memory store."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of sessions returned. Defaults to 10.")),
	), h.handleGetKPIHistory)

	// --- 3. Tool: compare_with_history ---
	s.AddTool(mcp.NewTool("compare_with_history",
		mcp.WithDescription("Compare the KPI averages of a CSV against the stored history."),
		mcp.WithString("csv_path", mcp.Description("Path to the input CSV."), mcp.Required()),
		mcp.WithNumber("lookback", mcp.Description("Historical comparison window in days. Defaults to 30.")),
	), h.handleCompareWithHistory)

	// --- 4. Tool: forecast_kpi ---
	s.AddTool(mcp.NewTool("forecast_kpi",
		mcp.WithDescription("Project one KPI forward 7 and 30 days from its observed trend."),
		mcp.WithString("csv_path", mcp.Description("Path to the input CSV."), mcp.Required()),
		mcp.WithString("kpi", mcp.Description("KPI column to forecast (e.g. Revenue)."), mcp.Required()),
	), h.handleForecastKPI)

	return s
}

// StartMCPServer starts the KPI analysis MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
