package core

import (
	"github.com/autoops/kpiscope/core/stats"
	"github.com/autoops/kpiscope/schema"
)

// runRootCause computes the pairwise correlation matrix and develops
// directional hypotheses from the strongest relationships. An input too
// short or too flat to correlate produces an empty matrix, not a failure;
// the report states the absence instead.
func (r *runner) runRootCause(ctx Context) (Context, error) {
	ctx.Correlations = stats.CorrelationMatrix(ctx.Frame.Columns, r.cfg.CorrelationMethod)
	ctx.Hypotheses = stats.TopHypotheses(ctx.Correlations, r.cfg.MaxHypotheses)

	if len(ctx.Frame.Channels) > 0 {
		ctx.ChannelStats = channelBreakdown(ctx.Frame)
	}
	return ctx, nil
}

// channelBreakdown aggregates per-channel averages for the customer-facing
// KPIs. The channel column is optional; callers only reach here when it
// was present in the input.
func channelBreakdown(frame *schema.Frame) map[string]schema.ChannelStat {
	type acc struct {
		n          int
		revenue    float64
		customers  float64
		conversion float64
	}
	byChannel := make(map[string]*acc)

	revenue := frame.Series("Revenue")
	customers := frame.Series("Customers")
	conversion := frame.Series("Conversion_Rate")

	for i, ch := range frame.Channels {
		a, ok := byChannel[ch]
		if !ok {
			a = &acc{}
			byChannel[ch] = a
		}
		a.n++
		if i < len(revenue) {
			a.revenue += revenue[i]
		}
		if i < len(customers) {
			a.customers += customers[i]
		}
		if i < len(conversion) {
			a.conversion += conversion[i]
		}
	}

	out := make(map[string]schema.ChannelStat, len(byChannel))
	for ch, a := range byChannel {
		n := float64(a.n)
		out[ch] = schema.ChannelStat{
			Records:       a.n,
			AvgRevenue:    schema.RoundTo(a.revenue/n, 2),
			AvgCustomers:  schema.RoundTo(a.customers/n, 2),
			AvgConversion: schema.RoundTo(a.conversion/n, 4),
		}
	}
	return out
}
