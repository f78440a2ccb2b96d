package core

// runReporting renders the executive markdown report from everything the
// earlier stages produced. The renderer is injected so the orchestrator
// stays independent of the output formatting packages.
func (r *runner) runReporting(ctx Context) (Context, error) {
	report, err := r.render(ctx)
	if err != nil {
		return ctx, err
	}
	ctx.Report = report
	return ctx, nil
}
