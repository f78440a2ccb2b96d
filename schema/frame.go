package schema

import (
	"sort"
	"time"
)

// Frame is a cleaned, date-indexed table of KPI values. Dates are strictly
// increasing with no duplicates; every numeric column has exactly one value
// per date (cleaning happens in the dataset loader).
type Frame struct {
	Dates    []time.Time          `json:"dates"`
	Columns  map[string][]float64 `json:"columns"`
	Channels []string             `json:"channels,omitempty"` // optional categorical column, empty if absent
}

// Rows returns the number of observations in the frame.
func (f *Frame) Rows() int {
	return len(f.Dates)
}

// KPINames returns the numeric column names in lexical order.
func (f *Frame) KPINames() []string {
	names := make([]string, 0, len(f.Columns))
	for name := range f.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Series returns the values for one KPI column, or nil if absent.
func (f *Frame) Series(name string) []float64 {
	return f.Columns[name]
}

// DateRange returns the inclusive calendar span of the frame.
// The zero DateRange is returned for an empty frame.
func (f *Frame) DateRange() DateRange {
	if len(f.Dates) == 0 {
		return DateRange{}
	}
	return DateRange{
		Start: f.Dates[0].Format(DateFormat),
		End:   f.Dates[len(f.Dates)-1].Format(DateFormat),
	}
}

// Averages returns the mean of every KPI column.
func (f *Frame) Averages() map[string]float64 {
	out := make(map[string]float64, len(f.Columns))
	for name, values := range f.Columns {
		if len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		out[name] = sum / float64(len(values))
	}
	return out
}

// TailAverage returns the mean of the last n values of one KPI column.
// It falls back to the whole series when fewer than n values exist.
func (f *Frame) TailAverage(name string, n int) float64 {
	values := f.Columns[name]
	if len(values) == 0 {
		return 0
	}
	if n > len(values) {
		n = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// IntakeReport is the loader's account of what it validated and cleaned.
type IntakeReport struct {
	SourcePath   string    `json:"source_path"`
	Rows         int       `json:"rows"`
	Columns      []string  `json:"columns"`
	DateRange    DateRange `json:"date_range"`
	QualityScore float64   `json:"quality_score"` // [0,1]
	QualityGrade string    `json:"quality_grade"`
	Required     []string  `json:"required_columns"`
	Actions      []string  `json:"cleaning_actions"`
}
