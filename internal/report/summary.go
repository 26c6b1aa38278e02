package report

import (
	"github.com/montanaflynn/stats"
)

// Summary condenses a report scope into the figures the till display and
// the end-of-day log line both use.
type Summary struct {
	Scope        Scope   `json:"scope"`
	Transactions int     `json:"transactions"`
	Revenue      int64   `json:"revenue"`
	ItemsSold    int64   `json:"items_sold"`
	MeanTotal    float64 `json:"mean_total"`
	MedianTotal  float64 `json:"median_total"`
	MaxTotal     float64 `json:"max_total"`
}

// Summarize computes revenue figures over the scoped ledger slice.
func (e *Exporter) Summarize(scope Scope) Summary {
	txns := e.scoped(scope)
	summary := Summary{Scope: scope, Transactions: len(txns)}
	if len(txns) == 0 {
		return summary
	}
	totals := make([]float64, 0, len(txns))
	for _, t := range txns {
		summary.Revenue += t.Total
		totals = append(totals, float64(t.Total))
		for _, it := range t.Items {
			summary.ItemsSold += it.Qty
		}
	}
	summary.MeanTotal, _ = stats.Mean(totals)
	summary.MedianTotal, _ = stats.Median(totals)
	summary.MaxTotal, _ = stats.Max(totals)
	return summary
}
