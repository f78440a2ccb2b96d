package archive

import (
	"errors"
	"fmt"

	"github.com/autoops/kpiscope/internal/parquet"
)

// Export writes all archived runs and observations to Parquet files.
func Export(store *Store, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	runs, err := store.Runs()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	if len(runs) == 0 {
		return errors.New("no archived runs found to export")
	}

	observations, err := store.Observations()
	if err != nil {
		return fmt.Errorf("failed to retrieve observations: %w", err)
	}

	fmt.Printf("Exporting data from %s backend...\n", store.Backend())
	fmt.Printf("Total runs: %d\n", len(runs))
	fmt.Printf("Total observations: %d\n", len(observations))

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.FromArchiveRuns(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	obsFile := outputFile + ".observations.parquet"
	if err := parquet.WriteObservationsParquet(parquet.FromArchiveObservations(observations), obsFile); err != nil {
		return fmt.Errorf("failed to write observations: %w", err)
	}
	fmt.Printf("Exported %d observations to: %s\n", len(observations), obsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
