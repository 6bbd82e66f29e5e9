package analytics

import (
	"cmp"
	"slices"
	"time"

	"lead-insights/internal/leads"
)

// MonthKeyLayout renders month keys such as "Jan '24".
const MonthKeyLayout = "Jan '06"

// MonthKey derives the monthly trend key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// groupAccumulator keeps groups in first-appearance order.
type groupAccumulator struct {
	stats []GroupedStat
	index map[string]int
	// first inquiry date per group, used only for chronological ordering
	firstSeen []time.Time
}

func newGroupAccumulator() *groupAccumulator {
	return &groupAccumulator{
		stats: make([]GroupedStat, 0),
		index: make(map[string]int),
	}
}

func (g *groupAccumulator) add(key string, at time.Time, l leads.Lead) {
	i, ok := g.index[key]
	if !ok {
		i = len(g.stats)
		g.index[key] = i
		g.stats = append(g.stats, GroupedStat{Key: key})
		g.firstSeen = append(g.firstSeen, at)
	}
	g.stats[i].Leads++
	if l.IsSold() {
		g.stats[i].Sold++
		if l.DealValue != nil {
			g.stats[i].Revenue += *l.DealValue
		}
	}
}

// SalespersonPerformance groups by assigned salesperson, sorted by revenue descending, top 8.
func SalespersonPerformance(ls []leads.Lead) []GroupedStat {
	acc := newGroupAccumulator()
	for _, l := range ls {
		acc.add(l.AssignedSalesperson, time.Time{}, l)
	}
	out := acc.stats
	slices.SortStableFunc(out, func(a, b GroupedStat) int {
		return cmp.Compare(b.Revenue, a.Revenue)
	})
	return top(out, TopSalespeople)
}

// MonthlyTrend groups by inquiry month. Months keep first-appearance order and only the
// last twelve are returned. Leads without an inquiry date are skipped.
func MonthlyTrend(ls []leads.Lead, chronological bool) []GroupedStat {
	acc := newGroupAccumulator()
	for _, l := range ls {
		if l.DateOfInquiry.IsZero() {
			continue
		}
		d := l.DateOfInquiry
		month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		acc.add(MonthKey(d), month, l)
	}

	out := acc.stats
	if chronological {
		order := make([]int, len(out))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return acc.firstSeen[a].Compare(acc.firstSeen[b])
		})
		sorted := make([]GroupedStat, len(out))
		for i, j := range order {
			sorted[i] = out[j]
		}
		out = sorted
	}

	if len(out) > MonthsInTrend {
		out = out[len(out)-MonthsInTrend:]
	}
	return out
}

// ChannelPerformance groups by lead channel, sorted by conversions descending.
func ChannelPerformance(ls []leads.Lead) []ChannelStat {
	out := make([]ChannelStat, 0)
	index := make(map[string]int)
	for _, l := range ls {
		i, ok := index[l.LeadChannel]
		if !ok {
			i = len(out)
			index[l.LeadChannel] = i
			out = append(out, ChannelStat{Name: l.LeadChannel})
		}
		out[i].Leads++
		if l.IsSold() {
			out[i].Conversions++
		}
	}

	for i := range out {
		out[i].Rate = percent1(out[i].Conversions, out[i].Leads)
	}

	slices.SortStableFunc(out, func(a, b ChannelStat) int {
		return cmp.Compare(b.Conversions, a.Conversions)
	})
	return out
}
