// Package analytics turns a snapshot of leads into chart-ready distributions,
// grouped statistics and a KPI summary. Everything here is pure: no I/O, no
// shared state, and the input slice is never modified.
package analytics

import "lead-insights/internal/leads"

// Aggregate computes every sub-aggregate for ls. It never fails; missing optional
// fields contribute nothing and empty denominators yield 0.
func Aggregate(ls []leads.Lead, opts Options) Result {
	dist := func(key leads.ColumnKey) []CategoryCount {
		return Distribute(ls, key, false)
	}

	return Result{
		KPIs: KPIs(ls),

		StatusDistribution:       sortByCountDesc(dist(leads.ColLeadStatus)),
		SourceDistribution:       sortByCountDesc(dist(leads.ColLeadSource)),
		DealStageDistribution:    sortByFunnel(dist(leads.ColDealStage)),
		DealStatusDistribution:   dist(leads.ColDealStatus),
		VehicleMakeDistribution:  top(sortByCountDesc(dist(leads.ColVehicleMake)), TopVehicleMakes),
		VehicleModelDistribution: top(sortByCountDesc(dist(leads.ColVehicleModel)), TopVehicleModels),
		CityDistribution:         top(sortByCountDesc(dist(leads.ColCity)), TopCities),
		CustomerTypeDistribution: dist(leads.ColCustomerType),
		NewUsedDistribution:      dist(leads.ColNewUsed),
		LostReasonDistribution:   Distribute(ls, leads.ColLostReason, true),
		PaymentTypeDistribution:  Distribute(ls, leads.ColPaymentType, true),

		SalespersonPerformance: SalespersonPerformance(ls),
		MonthlyTrend:           MonthlyTrend(ls, opts.ChronologicalMonths),
		ChannelPerformance:     ChannelPerformance(ls),

		LeadScoreDistribution:   LeadScoreDistribution(ls),
		ResponseTimeBuckets:     ResponseTimeBuckets(ls),
		CloseProbabilityBuckets: CloseProbabilityBuckets(ls),
	}
}
