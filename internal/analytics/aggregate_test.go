package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lead-insights/internal/leads"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func names(counts []CategoryCount) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Name
	}
	return out
}

// fixture is a small, varied snapshot with every measured field present.
func fixture() []leads.Lead {
	return []leads.Lead{
		{ID: "1", LeadStatus: "Sold", LeadSource: "Web", LeadChannel: "Google Ads", LeadScoring: leads.Float(4.6), DealStage: "Sold", DealStatus: "Closed", DealValue: leads.Float(32000), CloseProbability: leads.Float(100), VehicleMake: "Toyota", VehicleModel: "Camry", NewUsed: "New", City: "Austin", DateOfInquiry: day(2024, 1, 3), AssignedSalesperson: "Dana", ResponseTime: leads.Float(12), PaymentType: "Finance", CustomerType: "Individual"},
		{ID: "2", LeadStatus: "Lost", LeadSource: "Referral", LeadChannel: "Facebook", LeadScoring: leads.Float(1.2), DealStage: "Lost", DealStatus: "Closed", CloseProbability: leads.Float(0), VehicleMake: "Ford", VehicleModel: "F-150", NewUsed: "Used", City: "Dallas", DateOfInquiry: day(2024, 1, 9), AssignedSalesperson: "Eli", ResponseTime: leads.Float(95), LostReason: "Price", CustomerType: "Individual"},
		{ID: "3", LeadStatus: "New", LeadSource: "Web", LeadChannel: "Google Ads", LeadScoring: leads.Float(3.1), DealStage: "Inquiry", DealStatus: "Open", DealValue: leads.Float(18000), CloseProbability: leads.Float(30), VehicleMake: "Toyota", VehicleModel: "RAV4", NewUsed: "New", City: "Austin", DateOfInquiry: day(2024, 2, 14), AssignedSalesperson: "Dana", ResponseTime: leads.Float(45), CustomerType: "Business"},
		{ID: "4", LeadStatus: "Contacted", LeadSource: "Walk-in", LeadChannel: "Organic", LeadScoring: leads.Float(2.9), DealStage: "Negotiation", DealStatus: "Open", DealValue: leads.Float(26000), CloseProbability: leads.Float(70), VehicleMake: "Honda", VehicleModel: "Civic", NewUsed: "Used", City: "Houston", DateOfInquiry: day(2024, 2, 20), AssignedSalesperson: "Eli", ResponseTime: leads.Float(150), PaymentType: "Cash", CustomerType: "Individual"},
		{ID: "5", LeadStatus: "Sold", LeadSource: "Referral", LeadChannel: "Facebook", LeadScoring: leads.Float(4.0), DealStage: "Sold", DealStatus: "Closed", DealValue: leads.Float(41000), CloseProbability: leads.Float(100), VehicleMake: "Ford", VehicleModel: "Explorer", NewUsed: "New", City: "Dallas", DateOfInquiry: day(2024, 3, 2), AssignedSalesperson: "Fay", ResponseTime: leads.Float(30), PaymentType: "Lease", CustomerType: "Business"},
		{ID: "6", LeadStatus: "Lost", LeadSource: "Web", LeadChannel: "Organic", LeadScoring: leads.Float(0.4), DealStage: "Qualified", DealStatus: "Closed", CloseProbability: leads.Float(51), VehicleMake: "Honda", VehicleModel: "Accord", NewUsed: "Used", City: "Austin", DateOfInquiry: day(2024, 3, 28), AssignedSalesperson: "Fay", ResponseTime: leads.Float(61), LostReason: "Timing", CustomerType: "Individual"},
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	r := Aggregate(nil, Options{})

	if diff := cmp.Diff(KPISet{}, r.KPIs); diff != "" {
		t.Errorf("KPIs mismatch (-want +got):\n%s", diff)
	}

	for _, key := range DistributionKeys() {
		d, _ := r.Distribution(key)
		if d == nil || len(d) != 0 {
			t.Errorf("%s: expected empty non-nil distribution, got %v", key, d)
		}
	}
	if r.SalespersonPerformance == nil || r.MonthlyTrend == nil || r.ChannelPerformance == nil {
		t.Error("grouped stats must be non-nil")
	}

	wantResponse := []RangeBucket{{"0-30 min", 0}, {"31-60 min", 0}, {"61-120 min", 0}, {"120+ min", 0}}
	if diff := cmp.Diff(wantResponse, r.ResponseTimeBuckets); diff != "" {
		t.Errorf("response buckets mismatch (-want +got):\n%s", diff)
	}
	wantClose := []RangeBucket{{"0-25%", 0}, {"26-50%", 0}, {"51-75%", 0}, {"76-100%", 0}}
	if diff := cmp.Diff(wantClose, r.CloseProbabilityBuckets); diff != "" {
		t.Errorf("close buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	ls := fixture()
	before := fixture()

	first := Aggregate(ls, Options{})
	second := Aggregate(ls, Options{})

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, ls); diff != "" {
		t.Errorf("input was mutated (-before +after):\n%s", diff)
	}
}

func TestDistribute_SumEqualsTotal(t *testing.T) {
	ls := fixture()
	keys := []leads.ColumnKey{
		leads.ColLeadStatus, leads.ColLeadSource, leads.ColDealStage, leads.ColDealStatus,
		leads.ColVehicleMake, leads.ColVehicleModel, leads.ColCity, leads.ColCustomerType,
		leads.ColNewUsed, leads.ColLeadChannel, leads.ColAssignedSalesperson,
	}
	for _, key := range keys {
		sum := 0
		for _, c := range Distribute(ls, key, false) {
			sum += c.Value
		}
		if sum != len(ls) {
			t.Errorf("%s: sum %d, want %d", key, sum, len(ls))
		}
	}
}

func TestAggregate_UntruncatedDistributionsSumToTotal(t *testing.T) {
	r := Aggregate(fixture(), Options{})
	dists := map[string][]CategoryCount{
		"status":       r.StatusDistribution,
		"source":       r.SourceDistribution,
		"dealStage":    r.DealStageDistribution,
		"dealStatus":   r.DealStatusDistribution,
		"customerType": r.CustomerTypeDistribution,
		"newUsed":      r.NewUsedDistribution,
	}
	for name, d := range dists {
		sum := 0
		for _, c := range d {
			sum += c.Value
		}
		if sum != r.KPIs.TotalLeads {
			t.Errorf("%s: sum %d, want %d", name, sum, r.KPIs.TotalLeads)
		}
	}
}

func TestAggregate_RevenueInvariant(t *testing.T) {
	ls := fixture()
	// Deal value on a non-sold lead still counts toward total revenue.
	ls = append(ls, leads.Lead{LeadStatus: "New", DealValue: leads.Float(500)}, leads.Lead{LeadStatus: "Sold", DealValue: leads.Float(0)})

	want := 0.0
	for _, l := range ls {
		if l.DealValue != nil && *l.DealValue != 0 {
			want += *l.DealValue
		}
	}

	r := Aggregate(ls, Options{})
	if r.KPIs.TotalRevenue != want {
		t.Errorf("totalRevenue = %v, want %v", r.KPIs.TotalRevenue, want)
	}
}

func TestAggregate_BucketCompleteness(t *testing.T) {
	r := Aggregate(fixture(), Options{})

	for name, buckets := range map[string][]RangeBucket{
		"response": r.ResponseTimeBuckets,
		"close":    r.CloseProbabilityBuckets,
	} {
		sum := 0
		for _, b := range buckets {
			sum += b.Value
		}
		if sum != r.KPIs.TotalLeads {
			t.Errorf("%s buckets sum %d, want %d", name, sum, r.KPIs.TotalLeads)
		}
	}
}

func TestBuckets_InclusiveBoundaries(t *testing.T) {
	var ls []leads.Lead
	for _, v := range []float64{0, 30, 31, 60, 61, 120, 121} {
		ls = append(ls, leads.Lead{ResponseTime: leads.Float(v)})
	}
	for _, v := range []float64{25, 26, 50, 75, 76, 100} {
		ls = append(ls, leads.Lead{CloseProbability: leads.Float(v)})
	}
	ls = append(ls, leads.Lead{})

	wantResponse := []RangeBucket{{"0-30 min", 2}, {"31-60 min", 2}, {"61-120 min", 2}, {"120+ min", 1}}
	if diff := cmp.Diff(wantResponse, ResponseTimeBuckets(ls)); diff != "" {
		t.Errorf("response buckets mismatch (-want +got):\n%s", diff)
	}
	wantClose := []RangeBucket{{"0-25%", 1}, {"26-50%", 2}, {"51-75%", 1}, {"76-100%", 2}}
	if diff := cmp.Diff(wantClose, CloseProbabilityBuckets(ls)); diff != "" {
		t.Errorf("close buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_DealStageFunnelOrder(t *testing.T) {
	var ls []leads.Lead
	for _, stage := range []string{"Sold", "Inquiry", "UnknownStage", "Negotiation"} {
		ls = append(ls, leads.Lead{DealStage: stage})
	}

	got := names(Aggregate(ls, Options{}).DealStageDistribution)
	want := []string{"UnknownStage", "Inquiry", "Negotiation", "Sold"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_UnknownStagesKeepAppearanceOrder(t *testing.T) {
	var ls []leads.Lead
	for _, stage := range []string{"Lost", "Zeta", "Inquiry", "Alpha"} {
		ls = append(ls, leads.Lead{DealStage: stage})
	}

	got := names(Aggregate(ls, Options{}).DealStageDistribution)
	want := []string{"Zeta", "Alpha", "Inquiry", "Lost"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthlyTrend_FirstAppearanceOrder(t *testing.T) {
	ls := []leads.Lead{
		{DateOfInquiry: day(2024, 3, 10)},
		{DateOfInquiry: day(2024, 1, 5)},
		{DateOfInquiry: day(2024, 3, 20), LeadStatus: "Sold", DealValue: leads.Float(900)},
		{DateOfInquiry: day(2024, 2, 1)},
		{},
	}

	want := []GroupedStat{
		{Key: "Mar '24", Leads: 2, Sold: 1, Revenue: 900},
		{Key: "Jan '24", Leads: 1},
		{Key: "Feb '24", Leads: 1},
	}
	if diff := cmp.Diff(want, MonthlyTrend(ls, false)); diff != "" {
		t.Errorf("monthly trend mismatch (-want +got):\n%s", diff)
	}

	chronological := []string{"Jan '24", "Feb '24", "Mar '24"}
	var got []string
	for _, g := range MonthlyTrend(ls, true) {
		got = append(got, g.Key)
	}
	if diff := cmp.Diff(chronological, got); diff != "" {
		t.Errorf("chronological order mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthlyTrend_KeepsLastTwelve(t *testing.T) {
	// Newest month first, so first-appearance order runs backwards in time.
	var ls []leads.Lead
	start := day(2024, 2, 1)
	for i := 0; i < 14; i++ {
		ls = append(ls, leads.Lead{DateOfInquiry: start.AddDate(0, -i, 0)})
	}

	tests := []struct {
		name          string
		chronological bool
		first, last   string
	}{
		{"first appearance keeps the tail", false, "Dec '23", "Jan '23"},
		{"chronological keeps the most recent", true, "Mar '23", "Feb '24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyTrend(ls, tt.chronological)
			if len(got) != MonthsInTrend {
				t.Fatalf("expected %d months, got %d", MonthsInTrend, len(got))
			}
			if got[0].Key != tt.first || got[len(got)-1].Key != tt.last {
				t.Errorf("range = %s..%s, want %s..%s", got[0].Key, got[len(got)-1].Key, tt.first, tt.last)
			}
		})
	}
}

func TestAggregate_VehicleMakeTopTen(t *testing.T) {
	var ls []leads.Lead
	for i := 0; i < 15; i++ {
		for n := 0; n <= i; n++ {
			ls = append(ls, leads.Lead{VehicleMake: fmt.Sprintf("Make%02d", i)})
		}
	}

	got := Aggregate(ls, Options{}).VehicleMakeDistribution
	if len(got) != TopVehicleMakes {
		t.Fatalf("expected %d makes, got %d", TopVehicleMakes, len(got))
	}
	for i, c := range got {
		want := CategoryCount{Name: fmt.Sprintf("Make%02d", 14-i), Value: 15 - i}
		if c != want {
			t.Errorf("position %d = %+v, want %+v", i, c, want)
		}
	}
}

func TestSalespersonPerformance_SortedByRevenue(t *testing.T) {
	ls := []leads.Lead{
		{AssignedSalesperson: "A", LeadStatus: "Sold", DealValue: leads.Float(1000)},
		{AssignedSalesperson: "A", LeadStatus: "Open", DealValue: leads.Float(500)},
		{AssignedSalesperson: "B", LeadStatus: "Sold", DealValue: leads.Float(2000)},
	}

	want := []GroupedStat{
		{Key: "B", Leads: 1, Sold: 1, Revenue: 2000},
		{Key: "A", Leads: 2, Sold: 1, Revenue: 1000},
	}
	if diff := cmp.Diff(want, SalespersonPerformance(ls)); diff != "" {
		t.Errorf("salesperson mismatch (-want +got):\n%s", diff)
	}
}

func TestSalespersonPerformance_TopEight(t *testing.T) {
	var ls []leads.Lead
	for i := 0; i < 10; i++ {
		ls = append(ls, leads.Lead{AssignedSalesperson: fmt.Sprintf("S%d", i), LeadStatus: "Sold", DealValue: leads.Float(float64(i * 100))})
	}

	got := SalespersonPerformance(ls)
	if len(got) != TopSalespeople {
		t.Fatalf("expected %d salespeople, got %d", TopSalespeople, len(got))
	}
	if got[0].Key != "S9" || got[7].Key != "S2" {
		t.Errorf("unexpected range %s..%s", got[0].Key, got[7].Key)
	}
}

func TestChannelPerformance(t *testing.T) {
	ls := []leads.Lead{
		{LeadChannel: "Web", LeadStatus: "Sold"},
		{LeadChannel: "Web"},
		{LeadChannel: "Web"},
		{LeadChannel: "Web"},
		{LeadChannel: "Phone", LeadStatus: "Sold"},
		{LeadChannel: "Phone", LeadStatus: "Sold"},
		{LeadChannel: "Email"},
	}

	want := []ChannelStat{
		{Name: "Phone", Leads: 2, Conversions: 2, Rate: "100.0"},
		{Name: "Web", Leads: 4, Conversions: 1, Rate: "25.0"},
		{Name: "Email", Leads: 1, Conversions: 0, Rate: "0.0"},
	}
	if diff := cmp.Diff(want, ChannelPerformance(ls)); diff != "" {
		t.Errorf("channel mismatch (-want +got):\n%s", diff)
	}
}

func TestLeadScoreDistribution(t *testing.T) {
	ls := []leads.Lead{
		{LeadScoring: leads.Float(4.7)},
		{LeadScoring: leads.Float(1.2)},
		{LeadScoring: leads.Float(4.0)},
		{LeadScoring: leads.Float(0.5)},
		{},
	}

	want := []CategoryCount{{"0", 1}, {"1", 1}, {"4", 2}}
	if diff := cmp.Diff(want, LeadScoreDistribution(ls)); diff != "" {
		t.Errorf("score distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_OptionalCategoriesSkipEmpty(t *testing.T) {
	r := Aggregate(fixture(), Options{})

	if diff := cmp.Diff([]string{"Price", "Timing"}, names(r.LostReasonDistribution)); diff != "" {
		t.Errorf("lost reasons mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Finance", "Cash", "Lease"}, names(r.PaymentTypeDistribution)); diff != "" {
		t.Errorf("payment types mismatch (-want +got):\n%s", diff)
	}
}

func TestKPIs(t *testing.T) {
	tests := []struct {
		name  string
		leads []leads.Lead
		want  KPISet
	}{
		{
			name: "mixed",
			leads: []leads.Lead{
				{LeadStatus: "Sold", DealStatus: "Closed", DealValue: leads.Float(1000), ResponseTime: leads.Float(10), LeadScoring: leads.Float(4)},
				{LeadStatus: "Sold", DealValue: leads.Float(3000), ResponseTime: leads.Float(20), LeadScoring: leads.Float(3)},
				{LeadStatus: "Lost", ResponseTime: leads.Float(30), LeadScoring: leads.Float(2)},
				{LeadStatus: "New", DealStatus: "Open", DealValue: leads.Float(500), CloseProbability: leads.Float(40)},
				{LeadStatus: "New", DealStatus: "Open", DealValue: leads.Float(0), CloseProbability: leads.Float(61)},
			},
			want: KPISet{
				TotalLeads:          5,
				SoldLeads:           2,
				LostLeads:           1,
				ConversionRate:      40,
				AvgDealValue:        2250,
				TotalRevenue:        4500,
				AvgResponseTime:     12,
				ActiveDeals:         2,
				AvgCloseProbability: 51,
				AvgLeadScore:        1.8,
			},
		},
		{
			name: "no sold leads and no open deals",
			leads: []leads.Lead{
				{LeadStatus: "New", DealValue: leads.Float(700), ResponseTime: leads.Float(5)},
				{LeadStatus: "Lost", DealStatus: "Closed"},
			},
			want: KPISet{
				TotalLeads:      2,
				LostLeads:       1,
				TotalRevenue:    700,
				AvgResponseTime: 3,
			},
		},
		{
			name: "conversion rounds to one decimal",
			leads: []leads.Lead{
				{LeadStatus: "Sold"},
				{LeadStatus: "New"},
				{LeadStatus: "New"},
			},
			want: KPISet{TotalLeads: 3, SoldLeads: 1, ConversionRate: 33.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, KPIs(tt.leads)); diff != "" {
				t.Errorf("KPIs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResult_Distribution(t *testing.T) {
	r := Aggregate(fixture(), Options{})

	if d, ok := r.Distribution(leads.ColCity); !ok || len(d) != 3 {
		t.Errorf("expected 3 cities, got %v (ok=%v)", d, ok)
	}
	if _, ok := r.Distribution(leads.ColEmail); ok {
		t.Error("email is not a distribution")
	}
}
