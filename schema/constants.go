package schema

// Custom string types for type safety.
type (
	// TrendDirection classifies the overall movement of a KPI series.
	TrendDirection string

	// AnomalyMethod selects the outlier detection algorithm.
	AnomalyMethod string

	// CorrelationMethod selects the correlation coefficient algorithm.
	CorrelationMethod string

	// Strength labels the magnitude of a correlation coefficient.
	Strength string

	// Priority ranks a recommendation.
	Priority string

	// ConfidenceLabel grades a forecast by series volatility.
	ConfidenceLabel string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the archive.
	DatabaseBackend string

	// StageName identifies one step of the analysis pipeline.
	StageName string
)

// All trend directions.
const (
	UpwardTrend   TrendDirection = "upward"
	DownwardTrend TrendDirection = "downward"
	FlatTrend     TrendDirection = "flat"
)

// All anomaly detection methods.
const (
	ZScoreMethod AnomalyMethod = "zscore" // default
	IQRMethod    AnomalyMethod = "iqr"
)

// All correlation methods.
const (
	PearsonMethod  CorrelationMethod = "pearson" // default
	SpearmanMethod CorrelationMethod = "spearman"
)

// Correlation strength labels with their fixed policy cutoffs.
const (
	StrongCorrelation   Strength = "strong"   // |r| >= 0.7
	ModerateCorrelation Strength = "moderate" // 0.4 <= |r| < 0.7
	WeakCorrelation     Strength = "weak"     // |r| < 0.4
)

// Correlation policy constants.
const (
	StrongThreshold   = 0.7
	ModerateThreshold = 0.4

	// MinCorrelationPoints is the minimum number of paired points
	// required before a coefficient is considered defined.
	MinCorrelationPoints = 3
)

// All recommendation priorities.
const (
	HighPriority   Priority = "high"
	MediumPriority Priority = "medium"
	LowPriority    Priority = "low"
)

// All forecast confidence labels with their volatility cutoffs.
const (
	HighConfidence   ConfidenceLabel = "high"   // volatility < 2%
	MediumConfidence ConfidenceLabel = "medium" // volatility < 5%
	LowConfidence    ConfidenceLabel = "low"
)

// Forecast confidence volatility cutoffs, in percent.
const (
	HighConfidenceVolatility   = 2.0
	MediumConfidenceVolatility = 5.0
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All archive backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// The seven pipeline stages, in execution order.
const (
	IntakeStage         StageName = "Intake"
	TrendDetectionStage StageName = "TrendDetection"
	RootCauseStage      StageName = "RootCause"
	MemoryStage         StageName = "Memory"
	StrategyStage       StageName = "Strategy"
	ReportingStage      StageName = "Reporting"
	EvaluationStage     StageName = "Evaluation"
)

// StageOrder lists the pipeline stages in their fixed execution order.
var StageOrder = []StageName{
	IntakeStage,
	TrendDetectionStage,
	RootCauseStage,
	MemoryStage,
	StrategyStage,
	ReportingStage,
	EvaluationStage,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidAnomalyMethods lists all valid anomaly methods.
var ValidAnomalyMethods = map[AnomalyMethod]struct{}{
	ZScoreMethod: {},
	IQRMethod:    {},
}

// ValidCorrelationMethods lists all valid correlation methods.
var ValidCorrelationMethods = map[CorrelationMethod]struct{}{
	PearsonMethod:  {},
	SpearmanMethod: {},
}

// ValidDatabaseBackends lists all valid archive backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// DateFormat is the canonical calendar-date representation used for
// KPI snapshots and session date ranges.
const DateFormat = "2006-01-02"
