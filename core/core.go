// Package core has the pipeline orchestrator, its seven analysis stages
// and the evaluation scorer.
package core

import (
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// ReportRenderer produces the executive report text from the completed
// analysis context. Rendering happens inside the Reporting stage so the
// Evaluation stage can check the rendered sections.
type ReportRenderer func(Context) (string, error)

// runner carries the collaborators the stages need.
type runner struct {
	cfg    *contract.Config
	memory contract.Memory
	render ReportRenderer
}

// NewPipeline assembles the seven-stage pipeline with its collaborators.
func NewPipeline(cfg *contract.Config, memory contract.Memory, render ReportRenderer, sink contract.TraceSink) *Pipeline {
	r := &runner{cfg: cfg, memory: memory, render: render}
	return &Pipeline{
		state: NotStarted,
		sink:  sink,
		stages: []stage{
			{name: schema.IntakeStage, run: r.runIntake},
			{name: schema.TrendDetectionStage, run: r.runTrendDetection},
			{name: schema.RootCauseStage, run: r.runRootCause},
			{name: schema.MemoryStage, run: r.runMemory},
			{name: schema.StrategyStage, run: r.runStrategy},
			{name: schema.ReportingStage, run: r.runReporting},
			{name: schema.EvaluationStage, run: r.runEvaluation},
		},
	}
}

// ExecuteAnalysis runs one full pipeline pass and returns the final
// context together with the terminal machine state. The returned error,
// if any, is a StageError naming the stage that halted the run.
func ExecuteAnalysis(runID string, cfg *contract.Config, memory contract.Memory, render ReportRenderer, sink contract.TraceSink) (Context, State, error) {
	p := NewPipeline(cfg, memory, render, sink)
	final, err := p.Execute(Context{
		RunID:  runID,
		Config: cfg,
	})
	return final, p.State(), err
}
