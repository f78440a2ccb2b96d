// Package dataset loads, validates and cleans the input KPI table.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// Column names the loader understands.
const (
	DateColumn    = "Date"
	ChannelColumn = "Channel"
	UnknownValue  = "Unknown"
)

// RequiredColumns must all be present for the analysis to proceed.
var RequiredColumns = []string{DateColumn, "Revenue", "Customers", "Conversion_Rate", "Marketing_Spend"}

// KPIColumns are the numeric columns the engine analyzes.
var KPIColumns = []string{"Revenue", "Customers", "Conversion_Rate", "Marketing_Spend"}

// acceptedDateLayouts are tried in order when parsing the Date column.
var acceptedDateLayouts = []string{
	schema.DateFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// row is one raw record before cleaning. nil values mark nulls.
type row struct {
	date    time.Time
	values  map[string]*float64
	channel string
}

// Load reads a CSV file and returns the cleaned frame plus the intake
// report. Missing required columns or a non-numeric required column is a
// fatal validation error; nulls and duplicate dates are cleaned and noted
// in the report.
func Load(path string) (*schema.Frame, schema.IntakeReport, error) {
	report := schema.IntakeReport{
		SourcePath: path,
		Required:   RequiredColumns,
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, report, fmt.Errorf("%w: cannot open %s: %v", contract.ErrValidation, path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, report, fmt.Errorf("%w: malformed CSV %s: %v", contract.ErrValidation, path, err)
	}
	if len(records) < 2 {
		return nil, report, fmt.Errorf("%w: %s has no data rows", contract.ErrValidation, path)
	}

	header := records[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}
	report.Columns = make([]string, 0, len(header))
	for _, name := range header {
		report.Columns = append(report.Columns, strings.TrimSpace(name))
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := colIndex[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, report, fmt.Errorf("%w: missing required columns: %s",
			contract.ErrValidation, strings.Join(missing, ", "))
	}
	_, hasChannel := colIndex[ChannelColumn]

	rows, nullCells, totalCells, err := parseRows(records[1:], colIndex, hasChannel)
	if err != nil {
		return nil, report, err
	}

	rows, actions := clean(rows, hasChannel)
	report.Actions = actions
	report.Rows = len(rows)
	if len(rows) == 0 {
		return nil, report, fmt.Errorf("%w: no usable rows after cleaning", contract.ErrValidation)
	}

	frame := buildFrame(rows, hasChannel)
	report.DateRange = frame.DateRange()
	if totalCells > 0 {
		report.QualityScore = schema.RoundTo(1-float64(nullCells)/float64(totalCells), 4)
	} else {
		report.QualityScore = 0
	}
	report.QualityGrade = gradeFor(report.QualityScore)

	return frame, report, nil
}

func parseRows(records [][]string, colIndex map[string]int, hasChannel bool) ([]row, int, int, error) {
	var rows []row
	var nullCells, totalCells int

	for lineNo, rec := range records {
		dateField := strings.TrimSpace(rec[colIndex[DateColumn]])
		date, ok := parseDate(dateField)
		if !ok {
			return nil, 0, 0, fmt.Errorf("%w: row %d has unparseable date %q",
				contract.ErrValidation, lineNo+2, dateField)
		}

		r := row{date: date, values: make(map[string]*float64, len(KPIColumns))}
		for _, col := range KPIColumns {
			totalCells++
			field := strings.TrimSpace(rec[colIndex[col]])
			if field == "" {
				nullCells++
				r.values[col] = nil
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("%w: row %d column %s is not numeric: %q",
					contract.ErrValidation, lineNo+2, col, field)
			}
			r.values[col] = &v
		}
		if hasChannel {
			totalCells++
			r.channel = strings.TrimSpace(rec[colIndex[ChannelColumn]])
			if r.channel == "" {
				nullCells++
			}
		}
		rows = append(rows, r)
	}
	return rows, nullCells, totalCells, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clean sorts by date, drops duplicate dates keeping the first, forward
// then backward fills numeric nulls, and fills missing channels.
func clean(rows []row, hasChannel bool) ([]row, []string) {
	var actions []string

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	actions = append(actions, "Sorted data by Date")

	deduped := rows[:0]
	seen := make(map[string]struct{}, len(rows))
	var duplicates int
	for _, r := range rows {
		key := r.date.Format(schema.DateFormat)
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, r)
	}
	rows = deduped
	if duplicates > 0 {
		actions = append(actions, fmt.Sprintf("Removed %d duplicate rows", duplicates))
	}

	for _, col := range KPIColumns {
		filled := fillNulls(rows, col)
		if filled > 0 {
			actions = append(actions, fmt.Sprintf("Filled %d nulls in %s", filled, col))
		}
	}

	if hasChannel {
		var filled int
		for i := range rows {
			if rows[i].channel == "" {
				rows[i].channel = UnknownValue
				filled++
			}
		}
		if filled > 0 {
			actions = append(actions, fmt.Sprintf("Filled %d nulls in %s", filled, ChannelColumn))
		}
	}

	return rows, actions
}

// fillNulls forward fills then backward fills one numeric column in place.
func fillNulls(rows []row, col string) int {
	var filled int
	var last *float64
	for i := range rows {
		if rows[i].values[col] == nil {
			if last != nil {
				v := *last
				rows[i].values[col] = &v
				filled++
			}
		} else {
			last = rows[i].values[col]
		}
	}
	var next *float64
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].values[col] == nil {
			if next != nil {
				v := *next
				rows[i].values[col] = &v
				filled++
			} else {
				// Whole column is null; zero is the only safe value.
				zero := 0.0
				rows[i].values[col] = &zero
				filled++
			}
		} else {
			next = rows[i].values[col]
		}
	}
	return filled
}

func buildFrame(rows []row, hasChannel bool) *schema.Frame {
	frame := &schema.Frame{
		Dates:   make([]time.Time, len(rows)),
		Columns: make(map[string][]float64, len(KPIColumns)),
	}
	for _, col := range KPIColumns {
		frame.Columns[col] = make([]float64, len(rows))
	}
	if hasChannel {
		frame.Channels = make([]string, len(rows))
	}
	for i, r := range rows {
		frame.Dates[i] = r.date
		for _, col := range KPIColumns {
			frame.Columns[col][i] = *r.values[col]
		}
		if hasChannel {
			frame.Channels[i] = r.channel
		}
	}
	return frame
}

func gradeFor(score float64) string {
	switch {
	case score >= 0.95:
		return "A"
	case score >= 0.85:
		return "B"
	case score >= 0.70:
		return "C"
	default:
		return "D"
	}
}
