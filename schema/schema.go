// Package schema has configs, models and shared constants for all parts of kpiscope.
package schema

import "time"

// TrendRecord describes the overall movement of one KPI series.
// Direction is a pure function of GrowthPct and the configured flat threshold.
type TrendRecord struct {
	KPI        string         `json:"kpi"`
	Direction  TrendDirection `json:"direction"`
	GrowthPct  float64        `json:"growth_pct"`  // (last - first) / |first| * 100
	Volatility float64        `json:"volatility"`  // coefficient of variation, percent
	MovingAvg  []float64      `json:"moving_avg"`  // simple moving average over Window
	Window     int            `json:"window"`      // moving average window size
	AvgChange  float64        `json:"avg_change"`  // mean period-over-period change, percent
	LastValue  float64        `json:"last_value"`  // final observation in the window
	MeanValue  float64        `json:"mean_value"`  // series mean
}

// AnomalyRecord flags one observation as an outlier. At most one record
// exists per (KPI, date) pair.
type AnomalyRecord struct {
	KPI    string        `json:"kpi"`
	Date   time.Time     `json:"date"`
	Value  float64       `json:"value"`
	Score  float64       `json:"score"` // z-score, or distance beyond the IQR fence
	Method AnomalyMethod `json:"method"`
	Lower  float64       `json:"lower,omitempty"` // IQR fence, zero for z-score
	Upper  float64       `json:"upper,omitempty"` // IQR fence, zero for z-score
}

// CorrelationRecord holds the coefficient for one unordered KPI pair.
// KPIA is always lexically smaller than KPIB.
type CorrelationRecord struct {
	KPIA        string            `json:"kpi_a"`
	KPIB        string            `json:"kpi_b"`
	Coefficient float64           `json:"coefficient"`
	Method      CorrelationMethod `json:"method"`
	Strength    Strength          `json:"strength"`
}

// Hypothesis is a directional causal narrative derived from a strong
// correlation. Confidence equals the absolute coefficient.
type Hypothesis struct {
	Driver     string  `json:"driver"`
	Outcome    string  `json:"outcome"`
	Narrative  string  `json:"narrative"`
	Confidence float64 `json:"confidence"`
}

// ActionPlan is the concrete follow-through attached to a recommendation.
type ActionPlan struct {
	Actions        []string `json:"actions"`
	SuccessMetrics []string `json:"success_metrics"`
	Timeline       string   `json:"timeline"`
}

// Recommendation is a prioritized strategic suggestion tied to one KPI.
// Plan is non-nil whenever the priority is medium or higher.
type Recommendation struct {
	Priority       Priority    `json:"priority"`
	Category       string      `json:"category"`
	KPI            string      `json:"kpi"`
	Description    string      `json:"description"`
	ExpectedImpact string      `json:"expected_impact"`
	Timeframe      string      `json:"timeframe"`
	Plan           *ActionPlan `json:"plan,omitempty"`
}

// Risk describes a negative or unstable trend worth executive attention.
type Risk struct {
	Severity    string `json:"severity"`
	KPI         string `json:"kpi"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// Opportunity describes a positive trend worth doubling down on.
type Opportunity struct {
	Potential      string `json:"potential"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	ExpectedValue  string `json:"expected_value"`
}

// ForecastProjection is a linear extrapolation of one KPI.
type ForecastProjection struct {
	KPI          string          `json:"kpi"`
	CurrentAvg   float64         `json:"current_avg"`
	Projected7d  float64         `json:"projected_7d"`
	Projected30d float64         `json:"projected_30d"`
	Confidence   ConfidenceLabel `json:"confidence"`
}

// KPIComparison contrasts a current KPI average against its stored history.
type KPIComparison struct {
	Current       float64 `json:"current"`
	HistoricalAvg float64 `json:"historical_avg"`
	Change        float64 `json:"change"`
	ChangePct     float64 `json:"change_pct"`
	DataPoints    int     `json:"data_points"`
}

// EvaluationScore is the self-assessed quality of one pipeline run.
// Overall is the mean of Clarity, Consistency and Actionability.
type EvaluationScore struct {
	Clarity       float64  `json:"clarity"`
	Consistency   float64  `json:"consistency"`
	Actionability float64  `json:"actionability"`
	Confidence    float64  `json:"confidence"`
	Overall       float64  `json:"overall"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Suggestions   []string `json:"suggestions"`
}

// ChannelStat summarizes performance for one sales/marketing channel.
type ChannelStat struct {
	Records       int     `json:"records"`
	AvgRevenue    float64 `json:"avg_revenue"`
	AvgCustomers  float64 `json:"avg_customers"`
	AvgConversion float64 `json:"avg_conversion"`
}

// DateRange is an inclusive calendar-date span.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
