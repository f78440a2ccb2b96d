package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"

	"github.com/olekukonko/tablewriter"
)

// WriteArchiveRuns prints archived pipeline runs, dispatching based on the
// output format configured.
func WriteArchiveRuns(runs []schema.ArchiveRun, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeArchiveRunsCSV(w, runs)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeArchiveRunsTable(w, runs)
		}, "Wrote table")
	}
}

func writeArchiveRunsCSV(w io.Writer, runs []schema.ArchiveRun) error {
	header := []string{"run_id", "session_id", "started", "duration_ms", "state", "rows_analyzed", "overall_score", "confidence_score"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range runs {
			row := []string{
				r.RunID,
				r.SessionID,
				r.Started.Format("2006-01-02 15:04:05"),
				strconv.FormatInt(r.DurationMs, 10),
				r.State,
				strconv.Itoa(r.RowsAnalyzed),
				fmt.Sprintf("%.1f", r.OverallScore),
				fmt.Sprintf("%.1f", r.Confidence),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

func writeArchiveRunsTable(w io.Writer, runs []schema.ArchiveRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No archived runs.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Session", "Started", "Duration", "State", "Rows", "Score"})

	var data [][]string
	for _, r := range runs {
		data = append(data, []string{
			shortRunID(r.RunID),
			r.SessionID,
			r.Started.Format("2006-01-02 15:04"),
			fmt.Sprintf("%dms", r.DurationMs),
			r.State,
			strconv.Itoa(r.RowsAnalyzed),
			fmt.Sprintf("%.1f", r.OverallScore),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d runs\n", len(runs))
	return err
}

// shortRunID keeps the first UUID segment so the table stays narrow.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
