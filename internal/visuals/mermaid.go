package visuals

import (
	"fmt"
	"math"
	"strings"

	"lead-insights/internal/analytics"
)

// label quotes a category for Mermaid. Empty categories render as "(none)".
func label(s string) string {
	if s == "" {
		s = "(none)"
	}
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(s, "\"", "'"))
}

// axisMax leaves some headroom above the tallest bar.
func axisMax(maxVal float64) int {
	return int(math.Ceil(maxVal + math.Max(1, maxVal*0.2)))
}

// GenerateStatusPie creates a Mermaid pie chart of the lead status distribution.
func GenerateStatusPie(dist []analytics.CategoryCount) string {
	if len(dist) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie showData\n")
	sb.WriteString("    title \"Lead Status\"\n")
	for _, c := range dist {
		sb.WriteString(fmt.Sprintf("    %s : %d\n", label(c.Name), c.Value))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateMonthlyTrendChart creates a Mermaid xychart-beta with lead volume as bars and
// sales as a line, in the order the trend was computed.
func GenerateMonthlyTrendChart(trend []analytics.GroupedStat) string {
	if len(trend) == 0 {
		return ""
	}

	var labels, volume, sold []string
	maxVal := 0
	for _, g := range trend {
		labels = append(labels, label(g.Key))
		volume = append(volume, fmt.Sprintf("%d", g.Leads))
		sold = append(sold, fmt.Sprintf("%d", g.Sold))
		if g.Leads > maxVal {
			maxVal = g.Leads
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Monthly Leads and Sales\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Leads\" 0 --> %d\n", axisMax(float64(maxVal))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(volume, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(sold, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSalespersonRevenueChart creates a Mermaid bar chart of revenue per salesperson.
func GenerateSalespersonRevenueChart(perf []analytics.GroupedStat) string {
	if len(perf) == 0 {
		return ""
	}

	var labels, values []string
	maxVal := 0.0
	for _, g := range perf {
		labels = append(labels, label(g.Key))
		values = append(values, fmt.Sprintf("%.0f", g.Revenue))
		maxVal = math.Max(maxVal, g.Revenue)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Revenue by Salesperson\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Revenue\" 0 --> %d\n", axisMax(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateBucketChart creates a Mermaid bar chart for fixed-range buckets.
// All-zero buckets render nothing.
func GenerateBucketChart(title, axis string, buckets []analytics.RangeBucket) string {
	var labels, values []string
	maxVal := 0
	for _, b := range buckets {
		labels = append(labels, label(b.Name))
		values = append(values, fmt.Sprintf("%d", b.Value))
		if b.Value > maxVal {
			maxVal = b.Value
		}
	}
	if maxVal == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %d\n", axis, axisMax(float64(maxVal))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateCategoryChart creates a Mermaid bar chart of a categorical distribution,
// keeping its presentation order.
func GenerateCategoryChart(title string, dist []analytics.CategoryCount) string {
	if len(dist) == 0 {
		return ""
	}
	buckets := make([]analytics.RangeBucket, len(dist))
	for i, c := range dist {
		buckets[i] = analytics.RangeBucket{Name: c.Name, Value: c.Value}
	}
	return GenerateBucketChart(title, "Leads", buckets)
}

// Report renders every chart that has data, separated by blank lines.
func Report(res analytics.Result) string {
	charts := []string{
		GenerateStatusPie(res.StatusDistribution),
		GenerateCategoryChart("Deal Stage Funnel", res.DealStageDistribution),
		GenerateMonthlyTrendChart(res.MonthlyTrend),
		GenerateSalespersonRevenueChart(res.SalespersonPerformance),
		GenerateBucketChart("Response Time", "Leads", res.ResponseTimeBuckets),
		GenerateBucketChart("Close Probability", "Open and Closed Deals", res.CloseProbabilityBuckets),
	}

	var out []string
	for _, c := range charts {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, "\n\n")
}
