package contract

import (
	"fmt"
	"strings"

	"github.com/autoops/kpiscope/schema"
)

// Default values for configuration.
const (
	DefaultMAWindow      = 7
	DefaultFlatThreshold = 1.0 // growth magnitude below this is a flat trend, percent
	DefaultZThreshold    = 2.5
	DefaultLookbackDays  = 30
	DefaultMaxHypotheses = 5
	DefaultPrecision     = 2
	MaxLookbackDays      = 3650
)

// Config holds the runtime configuration for one invocation.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath  string // Path to the input CSV (set by positional arg)
	ReportPath string // Where the markdown report is written
	TracePath  string // Where the JSON run trace is written; derived from ReportPath when empty
	MemoryPath string // Path to the JSON memory file

	MAWindow          int
	FlatThresholdPct  float64
	ZThreshold        float64
	AnomalyMethod     schema.AnomalyMethod
	CorrelationMethod schema.CorrelationMethod
	LookbackDays      int
	MaxHypotheses     int

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	ArchiveBackend   schema.DatabaseBackend
	ArchiveDBConnect string // Please use env var as this is plaintext
}

// Clone returns a copy of the config that is safe to mutate per request.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	Report            string  `mapstructure:"report"`
	Trace             string  `mapstructure:"trace"`
	Memory            string  `mapstructure:"memory"`
	Window            int     `mapstructure:"window"`
	FlatThreshold     float64 `mapstructure:"flat-threshold"`
	ZThreshold        float64 `mapstructure:"z-threshold"`
	AnomalyMethod     string  `mapstructure:"anomaly-method"`
	CorrelationMethod string  `mapstructure:"correlation-method"`
	Lookback          int     `mapstructure:"lookback"`
	MaxHypotheses     int     `mapstructure:"max-hypotheses"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Precision         int     `mapstructure:"precision"`
	Width             int     `mapstructure:"width"`
	Color             string  `mapstructure:"color"`
	ArchiveBackend    string  `mapstructure:"archive-backend"`
	ArchiveDBConnect  string  `mapstructure:"archive-db-connect"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = input.InputPathStr

	cfg.ReportPath = input.Report
	cfg.TracePath = input.Trace
	if cfg.TracePath == "" && cfg.ReportPath != "" {
		cfg.TracePath = strings.TrimSuffix(cfg.ReportPath, ".md") + "_trace.json"
	}
	cfg.MemoryPath = input.Memory
	if cfg.MemoryPath == "" {
		cfg.MemoryPath = GetMemoryFilePath()
	}

	if input.Window < 2 {
		return fmt.Errorf("window must be at least 2 (received %d)", input.Window)
	}
	cfg.MAWindow = input.Window

	if input.FlatThreshold < 0 {
		return fmt.Errorf("flat-threshold cannot be negative (received %g)", input.FlatThreshold)
	}
	cfg.FlatThresholdPct = input.FlatThreshold

	if input.ZThreshold <= 0 {
		return fmt.Errorf("z-threshold must be positive (received %g)", input.ZThreshold)
	}
	cfg.ZThreshold = input.ZThreshold

	cfg.AnomalyMethod = schema.AnomalyMethod(strings.ToLower(input.AnomalyMethod))
	if _, ok := schema.ValidAnomalyMethods[cfg.AnomalyMethod]; !ok {
		return fmt.Errorf("invalid anomaly method '%s'. must be zscore or iqr", input.AnomalyMethod)
	}

	cfg.CorrelationMethod = schema.CorrelationMethod(strings.ToLower(input.CorrelationMethod))
	if _, ok := schema.ValidCorrelationMethods[cfg.CorrelationMethod]; !ok {
		return fmt.Errorf("invalid correlation method '%s'. must be pearson or spearman", input.CorrelationMethod)
	}

	if input.Lookback <= 0 || input.Lookback > MaxLookbackDays {
		return fmt.Errorf("lookback must be between 1 and %d days (received %d)", MaxLookbackDays, input.Lookback)
	}
	cfg.LookbackDays = input.Lookback

	if input.MaxHypotheses <= 0 {
		return fmt.Errorf("max-hypotheses must be positive (received %d)", input.MaxHypotheses)
	}
	cfg.MaxHypotheses = input.MaxHypotheses

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	if input.Precision < 0 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 0 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	cfg.UseColors = parseBoolish(input.Color, true)

	cfg.ArchiveBackend = schema.DatabaseBackend(strings.ToLower(input.ArchiveBackend))
	if cfg.ArchiveBackend == "" {
		cfg.ArchiveBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.ArchiveBackend]; !ok {
		return fmt.Errorf("invalid archive backend '%s'. must be sqlite, mysql, postgresql, or none", input.ArchiveBackend)
	}
	cfg.ArchiveDBConnect = input.ArchiveDBConnect
	if (cfg.ArchiveBackend == schema.MySQLBackend || cfg.ArchiveBackend == schema.PostgreSQLBackend) && cfg.ArchiveDBConnect == "" {
		return fmt.Errorf("archive-db-connect is required for the %s backend", cfg.ArchiveBackend)
	}

	return nil
}

// parseBoolish interprets yes/no style flag values.
func parseBoolish(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return fallback
	}
}
