// Package tracer collects per-stage observability records from the
// pipeline and writes them as a JSON run trace.
package tracer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// Collector accumulates stage traces for one pipeline run. It is not safe
// for concurrent use; the pipeline invokes it from a single goroutine.
type Collector struct {
	trace  schema.RunTrace
	stdout bool
}

var _ contract.TraceSink = (*Collector)(nil)

// New returns a collector for one run. When logProgress is set, each
// completed stage is also echoed to stderr as it finishes.
func New(runID string, logProgress bool) *Collector {
	return &Collector{
		trace:  schema.RunTrace{RunID: runID},
		stdout: logProgress,
	}
}

// StageCompleted records one finished stage.
func (c *Collector) StageCompleted(trace schema.StageTrace) {
	c.trace.Stages = append(c.trace.Stages, trace)
	if c.stdout {
		if trace.Status == schema.TraceFailure {
			fmt.Fprintf(os.Stderr, "[%s] failed after %s: %s\n", trace.Stage, trace.Duration.Round(time.Microsecond), trace.Error)
		} else {
			fmt.Fprintf(os.Stderr, "[%s] completed in %s\n", trace.Stage, trace.Duration.Round(time.Microsecond))
		}
	}
}

// RunCompleted records the run's terminal state and timing.
func (c *Collector) RunCompleted(state string, started, finished time.Time) {
	c.trace.Started = started
	c.trace.Finished = finished
	c.trace.State = state
}

// Trace returns the accumulated run trace.
func (c *Collector) Trace() schema.RunTrace {
	return c.trace
}

// Save writes the run trace as indented JSON to the given path.
func (c *Collector) Save(path string) error {
	data, err := json.MarshalIndent(c.trace, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}
