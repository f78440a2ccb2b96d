package core

import (
	"github.com/autoops/kpiscope/schema"
)

// insightLimit caps the hypotheses persisted as insights per run.
const insightLimit = 3

// runMemory compares the current averages against stored history, then
// persists the session record, per-date KPI snapshots and the strongest
// hypotheses. The comparison runs before the snapshots are stored so the
// current run never compares against itself.
func (r *runner) runMemory(ctx Context) (Context, error) {
	averages := ctx.Frame.Averages()

	comparison, err := r.memory.CompareWithHistory(averages, r.cfg.LookbackDays)
	if err != nil {
		return ctx, err
	}

	sessionID, err := r.memory.StoreSession(schema.SessionPayload{
		DateRange:  ctx.Frame.DateRange(),
		KPIs:       averages,
		TopTrends:  ctx.TopTrends,
		Hypotheses: ctx.Hypotheses,
	})
	if err != nil {
		return ctx, err
	}

	snapshots := make(map[string]map[string]float64, ctx.Frame.Rows())
	for i, date := range ctx.Frame.Dates {
		kpis := make(map[string]float64, len(ctx.Frame.Columns))
		for name, values := range ctx.Frame.Columns {
			kpis[name] = values[i]
		}
		snapshots[date.Format(schema.DateFormat)] = kpis
	}
	if err := r.memory.StoreKPISnapshotBatch(snapshots); err != nil {
		return ctx, err
	}

	for i, h := range ctx.Hypotheses {
		if i >= insightLimit {
			break
		}
		if err := r.memory.StoreInsight(schema.Insight{
			Category:  "correlation",
			Text:      h.Narrative,
			SessionID: sessionID,
		}); err != nil {
			return ctx, err
		}
	}

	stats, err := r.memory.Stats()
	if err != nil {
		return ctx, err
	}

	ctx.SessionID = sessionID
	ctx.Comparison = comparison
	ctx.MemoryStats = &stats
	return ctx, nil
}
