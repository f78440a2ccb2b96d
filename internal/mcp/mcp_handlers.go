package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autoops/kpiscope/core"
	"github.com/autoops/kpiscope/core/stats"
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/internal/dataset"
	"github.com/autoops/kpiscope/internal/memstore"
	"github.com/autoops/kpiscope/internal/outwriter"
	"github.com/autoops/kpiscope/internal/tracer"
	"github.com/autoops/kpiscope/schema"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

func (h *toolHandler) handleAnalyzeKPIs(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = request.GetString("csv_path", "")
	if w := request.GetInt("window", 0); w > 0 {
		cfg.MAWindow = w
	}
	if m := request.GetString("anomaly_method", ""); m != "" {
		cfg.AnomalyMethod = schema.AnomalyMethod(m)
	}
	if l := request.GetInt("lookback", 0); l > 0 {
		cfg.LookbackDays = l
	}

	runID := uuid.NewString()
	memory := memstore.Open(cfg.MemoryPath)
	final, state, err := core.ExecuteAnalysis(runID, cfg, memory, outwriter.BuildReport, tracer.New(runID, false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	result := struct {
		RunID           string                          `json:"run_id"`
		SessionID       string                          `json:"session_id"`
		State           string                          `json:"state"`
		KeyFindings     []string                        `json:"key_findings"`
		Trends          map[string]schema.TrendRecord   `json:"trends"`
		Anomalies       []schema.AnomalyRecord          `json:"anomalies"`
		Hypotheses      []schema.Hypothesis             `json:"hypotheses"`
		Comparison      map[string]schema.KPIComparison `json:"historical_comparison"`
		Recommendations []schema.Recommendation         `json:"recommendations"`
		Forecasts       []schema.ForecastProjection     `json:"forecasts"`
		Evaluation      *schema.EvaluationScore         `json:"evaluation"`
	}{
		RunID:           final.RunID,
		SessionID:       final.SessionID,
		State:           state.String(),
		KeyFindings:     final.KeyFindings,
		Trends:          final.Trends,
		Anomalies:       final.Anomalies,
		Hypotheses:      final.Hypotheses,
		Comparison:      final.Comparison,
		Recommendations: final.Recommendations,
		Forecasts:       final.Forecasts,
		Evaluation:      final.Evaluation,
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetKPIHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	memory := memstore.Open(h.baseCfg.MemoryPath)
	sessions, err := memory.RecentSessions(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read memory: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(sessions, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareWithHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csvPath := request.GetString("csv_path", "")
	lookback := request.GetInt("lookback", h.baseCfg.LookbackDays)

	frame, _, err := dataset.Load(csvPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load CSV: %v", err)), nil
	}

	memory := memstore.Open(h.baseCfg.MemoryPath)
	comparison, err := memory.CompareWithHistory(frame.Averages(), lookback)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(comparison, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleForecastKPI(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csvPath := request.GetString("csv_path", "")
	kpi := request.GetString("kpi", "")

	frame, _, err := dataset.Load(csvPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load CSV: %v", err)), nil
	}

	values := frame.Series(kpi)
	if values == nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown KPI %q, expected one of %v", kpi, frame.KPINames())), nil
	}

	trend, err := stats.DescribeTrend(kpi, values, h.baseCfg.MAWindow, h.baseCfg.FlatThresholdPct)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend analysis failed: %v", err)), nil
	}

	windowDays := frame.Rows()
	if windowDays < 1 {
		windowDays = 1
	}
	projection := stats.Project(kpi, frame.TailAverage(kpi, 7), trend, windowDays)

	result := struct {
		Trend    schema.TrendRecord        `json:"trend"`
		Forecast schema.ForecastProjection `json:"forecast"`
	}{Trend: trend, Forecast: projection}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
