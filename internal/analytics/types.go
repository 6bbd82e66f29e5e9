package analytics

import "lead-insights/internal/leads"

// CategoryCount is one distinct category value and how many leads carry it.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// GroupedStat accumulates lead volume and sales per group (salesperson or month).
type GroupedStat struct {
	Key     string  `json:"key"`
	Leads   int     `json:"leads"`
	Sold    int     `json:"sold"`
	Revenue float64 `json:"revenue"`
}

// ChannelStat is marketing channel performance. Rate is a percentage with one decimal.
type ChannelStat struct {
	Name        string `json:"name"`
	Leads       int    `json:"leads"`
	Conversions int    `json:"conversions"`
	Rate        string `json:"rate"`
}

// RangeBucket is a fixed, pre-declared numeric range and its count.
type RangeBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// KPISet is the scalar summary. Every average or ratio whose denominator is zero is 0.
type KPISet struct {
	TotalLeads          int     `json:"totalLeads"`
	SoldLeads           int     `json:"soldLeads"`
	LostLeads           int     `json:"lostLeads"`
	ConversionRate      float64 `json:"conversionRate"`
	AvgDealValue        float64 `json:"avgDealValue"`
	TotalRevenue        float64 `json:"totalRevenue"`
	AvgResponseTime     int     `json:"avgResponseTime"`
	ActiveDeals         int     `json:"activeDeals"`
	AvgCloseProbability int     `json:"avgCloseProbability"`
	AvgLeadScore        float64 `json:"avgLeadScore"`
}

// Result holds every sub-aggregate. Slices are never nil.
type Result struct {
	KPIs KPISet `json:"kpis"`

	StatusDistribution       []CategoryCount `json:"statusDistribution"`
	SourceDistribution       []CategoryCount `json:"sourceDistribution"`
	DealStageDistribution    []CategoryCount `json:"dealStageDistribution"`
	DealStatusDistribution   []CategoryCount `json:"dealStatusDistribution"`
	VehicleMakeDistribution  []CategoryCount `json:"vehicleMakeDistribution"`
	VehicleModelDistribution []CategoryCount `json:"vehicleModelDistribution"`
	CityDistribution         []CategoryCount `json:"cityDistribution"`
	CustomerTypeDistribution []CategoryCount `json:"customerTypeDistribution"`
	NewUsedDistribution      []CategoryCount `json:"newUsedDistribution"`
	LostReasonDistribution   []CategoryCount `json:"lostReasonDistribution"`
	PaymentTypeDistribution  []CategoryCount `json:"paymentTypeDistribution"`

	SalespersonPerformance []GroupedStat `json:"salespersonPerformance"`
	MonthlyTrend           []GroupedStat `json:"monthlyTrend"`
	ChannelPerformance     []ChannelStat `json:"channelPerformance"`

	LeadScoreDistribution   []CategoryCount `json:"leadScoreDistribution"`
	ResponseTimeBuckets     []RangeBucket   `json:"responseTimeBuckets"`
	CloseProbabilityBuckets []RangeBucket   `json:"closeProbabilityBuckets"`
}

// Distribution returns the presentation-ordered categorical distribution for key.
func (r Result) Distribution(key leads.ColumnKey) ([]CategoryCount, bool) {
	switch key {
	case leads.ColLeadStatus:
		return r.StatusDistribution, true
	case leads.ColLeadSource:
		return r.SourceDistribution, true
	case leads.ColDealStage:
		return r.DealStageDistribution, true
	case leads.ColDealStatus:
		return r.DealStatusDistribution, true
	case leads.ColVehicleMake:
		return r.VehicleMakeDistribution, true
	case leads.ColVehicleModel:
		return r.VehicleModelDistribution, true
	case leads.ColCity:
		return r.CityDistribution, true
	case leads.ColCustomerType:
		return r.CustomerTypeDistribution, true
	case leads.ColNewUsed:
		return r.NewUsedDistribution, true
	case leads.ColLostReason:
		return r.LostReasonDistribution, true
	case leads.ColPaymentType:
		return r.PaymentTypeDistribution, true
	case leads.ColLeadScoring:
		return r.LeadScoreDistribution, true
	}
	return nil, false
}

// DistributionKeys lists the keys Distribution answers for.
func DistributionKeys() []leads.ColumnKey {
	return []leads.ColumnKey{
		leads.ColLeadStatus,
		leads.ColLeadSource,
		leads.ColDealStage,
		leads.ColDealStatus,
		leads.ColVehicleMake,
		leads.ColVehicleModel,
		leads.ColCity,
		leads.ColCustomerType,
		leads.ColNewUsed,
		leads.ColLostReason,
		leads.ColPaymentType,
		leads.ColLeadScoring,
	}
}

// Options tunes presentation behavior. The zero value reproduces the dashboard exactly.
type Options struct {
	// ChronologicalMonths sorts the monthly trend by calendar month before keeping
	// the most recent twelve, instead of first-appearance order.
	ChronologicalMonths bool
}
