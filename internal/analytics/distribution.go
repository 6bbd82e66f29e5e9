package analytics

import (
	"cmp"
	"slices"

	"lead-insights/internal/leads"
)

// Top-N limits applied after presentation sorting.
const (
	TopVehicleMakes  = 10
	TopVehicleModels = 8
	TopCities        = 8
	TopSalespeople   = 8
	MonthsInTrend    = 12
)

// FunnelOrder is the fixed deal-stage sequence used for chart ordering.
var FunnelOrder = []string{"Inquiry", "Contacted", "Qualified", "Negotiation", "Financing", "Sold", "Lost"}

// Distribute counts leads per exact value of the attribute named by key, in order of
// first appearance. When skipEmpty is set, leads with an empty value are not counted.
func Distribute(ls []leads.Lead, key leads.ColumnKey, skipEmpty bool) []CategoryCount {
	get, err := leads.Accessor(key)
	if err != nil {
		return []CategoryCount{}
	}
	return countBy(ls, get, skipEmpty)
}

func countBy(ls []leads.Lead, get func(leads.Lead) string, skipEmpty bool) []CategoryCount {
	out := make([]CategoryCount, 0)
	index := make(map[string]int)
	for _, l := range ls {
		v := get(l)
		if skipEmpty && v == "" {
			continue
		}
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, CategoryCount{Name: v})
		}
		out[i].Value++
	}
	return out
}

// sortByCountDesc orders by descending count; ties keep their incoming order.
func sortByCountDesc(counts []CategoryCount) []CategoryCount {
	slices.SortStableFunc(counts, func(a, b CategoryCount) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return counts
}

// funnelIndex mirrors indexOf: stages outside the funnel rank -1 and sort first.
func funnelIndex(stage string) int {
	return slices.Index(FunnelOrder, stage)
}

// sortByFunnel orders deal stages by their funnel position.
func sortByFunnel(counts []CategoryCount) []CategoryCount {
	slices.SortStableFunc(counts, func(a, b CategoryCount) int {
		return cmp.Compare(funnelIndex(a.Name), funnelIndex(b.Name))
	})
	return counts
}

func top[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
