package analytics

import (
	"math"

	"lead-insights/internal/leads"
)

// KPIs computes the scalar summary in a single pass.
func KPIs(ls []leads.Lead) KPISet {
	k := KPISet{TotalLeads: len(ls)}

	var responseSum, closeSum, scoreSum float64
	for _, l := range ls {
		if l.IsSold() {
			k.SoldLeads++
		}
		if l.IsLost() {
			k.LostLeads++
		}
		if v, ok := l.Revenue(); ok {
			k.TotalRevenue += v
		}
		if l.ResponseTime != nil {
			responseSum += *l.ResponseTime
		}
		if l.HasOpenDeal() {
			k.ActiveDeals++
			if l.CloseProbability != nil {
				closeSum += *l.CloseProbability
			}
		}
		if l.LeadScoring != nil {
			scoreSum += *l.LeadScoring
		}
	}

	total := float64(k.TotalLeads)
	k.ConversionRate = round1(safeDiv(float64(k.SoldLeads), total) * 100)
	// Revenue is spread over sold leads, not over leads carrying a deal value.
	k.AvgDealValue = safeDiv(k.TotalRevenue, float64(k.SoldLeads))
	k.AvgResponseTime = int(math.Round(safeDiv(responseSum, total)))
	k.AvgCloseProbability = int(math.Round(safeDiv(closeSum, float64(k.ActiveDeals))))
	k.AvgLeadScore = round1(safeDiv(scoreSum, total))
	return k
}
