package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "kpiscope",
	Short:              "Analyze business KPI data to find trends, anomalies and drivers.",
	Long:               `Kpiscope turns a CSV of daily business metrics into an executive report with trends, anomalies, root-cause hypotheses and forecasts.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".kpiscope") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("KPISCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("report", "kpi_report.md")
	viper.SetDefault("window", contract.DefaultMAWindow)
	viper.SetDefault("flat-threshold", contract.DefaultFlatThreshold)
	viper.SetDefault("z-threshold", contract.DefaultZThreshold)
	viper.SetDefault("anomaly-method", schema.ZScoreMethod)
	viper.SetDefault("correlation-method", schema.PearsonMethod)
	viper.SetDefault("lookback", contract.DefaultLookbackDays)
	viper.SetDefault("max-hypotheses", contract.DefaultMaxHypotheses)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("archive-backend", "")
	viper.SetDefault("archive-db-connect", "")
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.InputPathStr = args[0]
	}

	// 4. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	return contract.ProcessAndValidate(cfg, input)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	// Handle config file
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".kpiscope")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
