package core

import (
	"github.com/autoops/kpiscope/internal/dataset"
)

// runIntake loads, validates and cleans the input CSV. Everything
// downstream consumes the frame it produces; a validation failure here
// halts the run before any analysis happens.
func (r *runner) runIntake(ctx Context) (Context, error) {
	frame, report, err := dataset.Load(r.cfg.InputPath)
	if err != nil {
		return ctx, err
	}
	ctx.Frame = frame
	ctx.Intake = &report
	return ctx, nil
}
