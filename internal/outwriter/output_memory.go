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

// WriteMemoryStats prints the memory store summary, dispatching based on
// the output format configured.
func WriteMemoryStats(stats schema.MemoryStats, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMemoryStatsText(w, stats, cfg)
		}, "Wrote summary")
	}
}

func writeMemoryStatsText(w io.Writer, stats schema.MemoryStats, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "🧠 Memory Store\n===============\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Path:          %s\n", cfg.MemoryPath); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions:      %d\n", stats.TotalSessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Insights:      %d\n", stats.TotalInsights); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Dates tracked: %d\n", stats.KPIDatesTracked); err != nil {
		return err
	}
	if !stats.CreatedAt.IsZero() {
		if _, err := fmt.Fprintf(w, "Created:       %s\n", stats.CreatedAt.Format("2006-01-02 15:04")); err != nil {
			return err
		}
	}
	if !stats.LastUpdated.IsZero() {
		if _, err := fmt.Fprintf(w, "Last updated:  %s\n", stats.LastUpdated.Format("2006-01-02 15:04")); err != nil {
			return err
		}
	}
	return nil
}

// WriteSessions prints stored sessions, dispatching based on the output
// format configured.
func WriteSessions(sessions []schema.Session, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, sessions)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSessionsCSV(w, sessions)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSessionsTable(w, sessions)
		}, "Wrote table")
	}
}

func writeSessionsCSV(w io.Writer, sessions []schema.Session) error {
	header := []string{"session_id", "timestamp", "period_start", "period_end", "kpis", "hypotheses"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range sessions {
			row := []string{
				s.ID,
				s.Timestamp.Format("2006-01-02 15:04:05"),
				s.Payload.DateRange.Start,
				s.Payload.DateRange.End,
				strconv.Itoa(len(s.Payload.KPIs)),
				strconv.Itoa(len(s.Payload.Hypotheses)),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

func writeSessionsTable(w io.Writer, sessions []schema.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions stored yet.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Session", "Timestamp", "Period", "KPIs", "Hypotheses"})

	var data [][]string
	for _, s := range sessions {
		data = append(data, []string{
			s.ID,
			s.Timestamp.Format("2006-01-02 15:04"),
			fmt.Sprintf("%s to %s", s.Payload.DateRange.Start, s.Payload.DateRange.End),
			strconv.Itoa(len(s.Payload.KPIs)),
			strconv.Itoa(len(s.Payload.Hypotheses)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d sessions\n", len(sessions))
	return err
}
