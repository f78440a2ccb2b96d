package cmd

import (
	"fmt"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/internal/memstore"
	"github.com/autoops/kpiscope/internal/outwriter"
	"github.com/autoops/kpiscope/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// memorySetup loads minimal configuration needed for memory operations.
// This is used by commands that need memory access without full shared setup.
func memorySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	cfg.MemoryPath = viper.GetString("memory")
	if cfg.MemoryPath == "" {
		cfg.MemoryPath = contract.GetMemoryFilePath()
	}

	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// memorySetupWrapper wraps memorySetup to provide PreRunE for memory commands.
func memorySetupWrapper(_ *cobra.Command, _ []string) error {
	return memorySetup()
}

// memoryCmd manages the persistent JSON memory store.
var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and maintain the persistent analysis memory",
	Long: `Manage the JSON memory file that carries context across analysis runs.

Every analyze run appends a session record, per-date KPI snapshots and the
strongest hypotheses as insights. Later runs compare fresh data against
this history.

Subcommands:
  status   - Show memory store statistics
  sessions - List recent analysis sessions
  prune    - Remove sessions and insights older than a cutoff

Examples:
  # Check what the store has accumulated
  kpiscope memory status

  # Inspect the last five runs
  kpiscope memory sessions --limit 5

  # Drop everything older than a quarter
  kpiscope memory prune --days 90`,
}

// memoryStatusCmd shows memory store statistics.
var memoryStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show memory store statistics",
	PreRunE: memorySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := memstore.Open(cfg.MemoryPath)
		stats, err := store.Stats()
		if err != nil {
			contract.LogFatal("Cannot read memory store", err)
		}
		if err := outwriter.WriteMemoryStats(stats, cfg); err != nil {
			contract.LogFatal("Cannot write memory status", err)
		}
	},
}

// memorySessionsCmd lists recent analysis sessions.
var memorySessionsCmd = &cobra.Command{
	Use:     "sessions",
	Short:   "List recent analysis sessions",
	PreRunE: memorySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := memstore.Open(cfg.MemoryPath)
		sessions, err := store.RecentSessions(viper.GetInt("limit"))
		if err != nil {
			contract.LogFatal("Cannot read memory store", err)
		}
		if err := outwriter.WriteSessions(sessions, cfg); err != nil {
			contract.LogFatal("Cannot write sessions", err)
		}
	},
}

// memoryPruneCmd removes old sessions and insights.
var memoryPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove sessions and insights older than a cutoff",
	Long: `Delete sessions and insights whose timestamp falls outside the retention window.

KPI snapshots are kept regardless of age; they are the raw history that
future comparisons anchor on.`,
	PreRunE: memorySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		days := viper.GetInt("days")
		store := memstore.Open(cfg.MemoryPath)
		if err := store.PruneOlderThan(days); err != nil {
			contract.LogFatal("Cannot prune memory store", err)
		}
		fmt.Printf("Pruned sessions and insights older than %d days\n", days)
	},
}
