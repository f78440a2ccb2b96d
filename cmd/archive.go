package cmd

import (
	"fmt"

	"github.com/autoops/kpiscope/internal/archive"
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/internal/outwriter"
	"github.com/autoops/kpiscope/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// archiveSetup loads minimal configuration needed for archive operations.
// This avoids the CSV-oriented validation in the full shared setup.
func archiveSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("archive-backend")

	// Handle empty backend as the default SQLite file so inspection works
	// without flags after a tracked run.
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.SQLiteBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid archive backend '%s'. must be sqlite, mysql, postgresql, or none", backendStr)
	}

	cfg.ArchiveBackend = backend
	cfg.ArchiveDBConnect = viper.GetString("archive-db-connect")

	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// archiveSetupWrapper wraps archiveSetup to provide PreRunE for archive commands.
func archiveSetupWrapper(_ *cobra.Command, _ []string) error {
	return archiveSetup()
}

// archiveCmd manages the SQL-backed record of pipeline runs.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the SQL-backed record of analysis runs",
	Long: `Manage the optional SQL archive of pipeline runs and KPI observations.

When an archive backend is enabled, every analyze run stores:
- Run metadata (timing, terminal state, self-assessed scores)
- Per-date KPI observations seen by the run

This enables longitudinal tracking and data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show archive statistics
  runs    - List archived runs
  export  - Export data to Parquet for analytics
  clear   - Remove all archived data
  migrate - Run database schema migrations

Examples:
  # Check archive contents
  kpiscope archive status

  # Export for analysis in pandas/DuckDB
  kpiscope archive export --output-file kpi-data`,
}

// archiveStatusCmd shows archive statistics.
var archiveStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show archive statistics",
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := archive.New(cfg.ArchiveBackend, cfg.ArchiveDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open archive", err)
		}
		defer func() { _ = store.Close() }()

		runs, err := store.Runs()
		if err != nil {
			contract.LogFatal("Cannot read archive", err)
		}
		observations, err := store.Observations()
		if err != nil {
			contract.LogFatal("Cannot read archive", err)
		}

		fmt.Printf("Archive Backend: %s\n", store.Backend())
		fmt.Printf("Total Runs: %d\n", len(runs))
		fmt.Printf("Total Observations: %d\n", len(observations))
		if len(runs) > 0 {
			fmt.Printf("Last Run: %s (%s)\n", runs[0].Started.Format("2006-01-02 15:04:05"), runs[0].State)
			fmt.Printf("Oldest Run: %s\n", runs[len(runs)-1].Started.Format("2006-01-02 15:04:05"))
		}
	},
}

// archiveRunsCmd lists archived runs.
var archiveRunsCmd = &cobra.Command{
	Use:     "runs",
	Short:   "List archived analysis runs",
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := archive.New(cfg.ArchiveBackend, cfg.ArchiveDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open archive", err)
		}
		defer func() { _ = store.Close() }()

		runs, err := store.Runs()
		if err != nil {
			contract.LogFatal("Cannot read archive", err)
		}
		if err := outwriter.WriteArchiveRuns(runs, cfg); err != nil {
			contract.LogFatal("Cannot write archive runs", err)
		}
	},
}

// archiveExportCmd exports the archive to Parquet files.
var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived data to Parquet for BI tools and analytics",
	Long: `Export all archived runs and observations to Parquet format.

Exports two datasets:
- Runs - metadata about each pipeline execution
- Observations - the per-date KPI values each run analyzed

Requires: --output-file parameter (used as a filename prefix)

Examples:
  # Export all data
  kpiscope archive export --output-file kpi-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('kpi-data.runs.parquet') LIMIT 10"`,
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := archive.New(cfg.ArchiveBackend, cfg.ArchiveDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open archive", err)
		}
		defer func() { _ = store.Close() }()

		if err := archive.Export(store, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export archive", err)
		}
	},
}

// archiveClearCmd clears the archived data.
var archiveClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all archived runs and observations",
	Long: `Delete all stored runs and KPI observations from the archive.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := archive.New(cfg.ArchiveBackend, cfg.ArchiveDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open archive", err)
		}
		defer func() { _ = store.Close() }()

		if err := store.Clear(); err != nil {
			contract.LogFatal("Failed to clear archive", err)
		}
		fmt.Println("Archive cleared")
	},
}

// archiveMigrateCmd runs database migrations for the archive store.
var archiveMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the archive store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  kpiscope archive migrate

  # Rollback everything
  kpiscope archive migrate --target-version 0`,
	PreRunE: archiveSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := archive.Migrate(cfg.ArchiveBackend, cfg.ArchiveDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
