package analytics

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"lead-insights/internal/leads"
)

// rangeSpec is an upper-inclusive bucket boundary. The last spec has no bound.
type rangeSpec struct {
	label string
	max   float64
}

var responseTimeRanges = []rangeSpec{
	{"0-30 min", 30},
	{"31-60 min", 60},
	{"61-120 min", 120},
	{"120+ min", math.Inf(1)},
}

var closeProbabilityRanges = []rangeSpec{
	{"0-25%", 25},
	{"26-50%", 50},
	{"51-75%", 75},
	{"76-100%", math.Inf(1)},
}

// bucketize zero-initializes every range so empty buckets still appear.
func bucketize(ls []leads.Lead, ranges []rangeSpec, value func(leads.Lead) *float64) []RangeBucket {
	out := make([]RangeBucket, len(ranges))
	for i, r := range ranges {
		out[i] = RangeBucket{Name: r.label}
	}
	for _, l := range ls {
		v := value(l)
		if v == nil {
			continue
		}
		for i, r := range ranges {
			if *v <= r.max {
				out[i].Value++
				break
			}
		}
	}
	return out
}

// ResponseTimeBuckets counts leads per response-time range in minutes.
func ResponseTimeBuckets(ls []leads.Lead) []RangeBucket {
	return bucketize(ls, responseTimeRanges, func(l leads.Lead) *float64 { return l.ResponseTime })
}

// CloseProbabilityBuckets counts leads per close-probability range in percent.
func CloseProbabilityBuckets(ls []leads.Lead) []RangeBucket {
	return bucketize(ls, closeProbabilityRanges, func(l leads.Lead) *float64 { return l.CloseProbability })
}

// LeadScoreDistribution buckets floor(leadScoring) and sorts by the numeric label.
func LeadScoreDistribution(ls []leads.Lead) []CategoryCount {
	out := countBy(ls, func(l leads.Lead) string {
		if l.LeadScoring == nil {
			return ""
		}
		return strconv.Itoa(int(math.Floor(*l.LeadScoring)))
	}, true)

	slices.SortStableFunc(out, func(a, b CategoryCount) int {
		x, _ := strconv.Atoi(a.Name)
		y, _ := strconv.Atoi(b.Name)
		return cmp.Compare(x, y)
	})
	return out
}
