package core

import (
	"fmt"
	"time"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// stateKind enumerates the orchestrator's closed set of machine states.
type stateKind int

const (
	stateNotStarted stateKind = iota
	stateRunning
	stateSucceeded
	stateFailed
)

// State is the orchestrator's position in its single-pass state machine:
// NotStarted, one of the seven stages, Succeeded, or Failed(stage). The
// only transitions are forward-advance-on-success and halt-on-failure.
type State struct {
	kind  stateKind
	stage schema.StageName // set for Running and Failed
}

// NotStarted is the initial pipeline state.
var NotStarted = State{kind: stateNotStarted}

// Succeeded reports whether the pipeline completed all stages.
func (s State) Succeeded() bool { return s.kind == stateSucceeded }

// Failed reports whether the pipeline halted, and at which stage.
func (s State) Failed() (schema.StageName, bool) {
	if s.kind != stateFailed {
		return "", false
	}
	return s.stage, true
}

func (s State) String() string {
	switch s.kind {
	case stateNotStarted:
		return "NotStarted"
	case stateRunning:
		return string(s.stage)
	case stateSucceeded:
		return "Succeeded"
	default:
		return fmt.Sprintf("Failed(%s)", s.stage)
	}
}

// stageFunc consumes the context and returns an enriched copy.
type stageFunc func(Context) (Context, error)

// stage pairs a pipeline step with its name for tracing.
type stage struct {
	name schema.StageName
	run  stageFunc
}

// Pipeline executes the seven analysis stages in fixed order against one
// shared context. A stage failure halts the run: no downstream stage sees
// partial data, nothing is retried, and memory writes from earlier stages
// are not rolled back.
type Pipeline struct {
	stages []stage
	sink   contract.TraceSink
	state  State
}

// State returns the pipeline's current machine state.
func (p *Pipeline) State() State { return p.state }

// Execute runs all stages sequentially. On failure it returns the context
// as of the last successful stage together with a StageError naming the
// stage that halted the run.
func (p *Pipeline) Execute(ctx Context) (Context, error) {
	started := time.Now()

	for _, st := range p.stages {
		p.state = State{kind: stateRunning, stage: st.name}

		next, err := p.runStage(st, ctx)
		if err != nil {
			p.state = State{kind: stateFailed, stage: st.name}
			if p.sink != nil {
				p.sink.RunCompleted(p.state.String(), started, time.Now())
			}
			return ctx, &contract.StageError{Stage: st.name, Err: err}
		}
		ctx = next
	}

	p.state = State{kind: stateSucceeded}
	if p.sink != nil {
		p.sink.RunCompleted(p.state.String(), started, time.Now())
	}
	return ctx, nil
}

// runStage executes one stage under a scoped timer, guaranteeing a trace
// record on every exit path. A panic inside a stage is converted into a
// stage failure instead of tearing down the process.
func (p *Pipeline) runStage(st stage, ctx Context) (next Context, err error) {
	start := time.Now()
	trace := schema.StageTrace{
		Stage:        st.name,
		Start:        start,
		InputSummary: ctx.summary(),
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		end := time.Now()
		trace.End = end
		trace.Duration = end.Sub(start)
		if err != nil {
			trace.Status = schema.TraceFailure
			trace.Error = err.Error()
		} else {
			trace.Status = schema.TraceSuccess
			trace.OutputSummary = next.summary()
		}
		if p.sink != nil {
			p.sink.StageCompleted(trace)
		}
	}()

	next, err = st.run(ctx)
	if err != nil {
		return Context{}, err
	}
	return next, nil
}
