// Package cmd defines the command-line interface for kpiscope.
package cmd

import (
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the memory subcommands to the parent memory command
	memoryCmd.AddCommand(memoryStatusCmd)
	memoryCmd.AddCommand(memorySessionsCmd)
	memoryCmd.AddCommand(memoryPruneCmd)

	// Add the archive subcommands to the parent archive command
	archiveCmd.AddCommand(archiveStatusCmd)
	archiveCmd.AddCommand(archiveRunsCmd)
	archiveCmd.AddCommand(archiveExportCmd)
	archiveCmd.AddCommand(archiveClearCmd)
	archiveCmd.AddCommand(archiveMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("report", "r", "kpi_report.md", "Path to write the markdown report")
	rootCmd.PersistentFlags().String("trace", "", "Path to write the JSON run trace (defaults next to the report)")
	rootCmd.PersistentFlags().StringP("memory", "m", "", "Path to the JSON memory file")
	rootCmd.PersistentFlags().IntP("window", "w", contract.DefaultMAWindow, "Moving average window in days")
	rootCmd.PersistentFlags().Float64("flat-threshold", contract.DefaultFlatThreshold, "Growth magnitude below this is a flat trend (percent)")
	rootCmd.PersistentFlags().Float64("z-threshold", contract.DefaultZThreshold, "Z-score magnitude above which a value is anomalous")
	rootCmd.PersistentFlags().String("anomaly-method", string(schema.ZScoreMethod), "Anomaly detection method: zscore or iqr")
	rootCmd.PersistentFlags().String("correlation-method", string(schema.PearsonMethod), "Correlation method: pearson or spearman")
	rootCmd.PersistentFlags().Int("lookback", contract.DefaultLookbackDays, "Historical comparison window in days")
	rootCmd.PersistentFlags().Int("max-hypotheses", contract.DefaultMaxHypotheses, "Maximum number of root-cause hypotheses")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("archive-backend", "", "Run archive backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("archive-db-connect", "", "Database connection string for mysql/postgresql archives")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of memorySessionsCmd to Viper
	memorySessionsCmd.Flags().IntP("limit", "l", 10, "Number of sessions to display")
	if err := viper.BindPFlags(memorySessionsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding memory sessions flags", err)
	}

	// Bind all flags of memoryPruneCmd to Viper
	memoryPruneCmd.Flags().Int("days", 90, "Remove sessions and insights older than this many days")
	if err := viper.BindPFlags(memoryPruneCmd.Flags()); err != nil {
		contract.LogFatal("Error binding memory prune flags", err)
	}

	// Bind all flags of archiveMigrateCmd to Viper
	archiveMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(archiveMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding archive migrate flags", err)
	}
}
