package mcp

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name: "analyze_leads",
		Description: "Aggregate the current lead snapshot into KPIs, categorical distributions, salesperson and channel performance, " +
			"the monthly trend and fixed-range buckets. Guidance: use 'get_lead_kpis' or 'get_lead_distribution' when only one figure is needed.",
	}, s.handleAnalyzeLeads)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_lead_kpis",
		Description: "Return the scalar lead KPIs (totals, conversion rate, revenue, averages). Averages over an empty population are 0.",
	}, s.handleGetKPIs)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "get_lead_distribution",
		Description: "Return the presentation-ordered distribution of one lead attribute (e.g. 'leadStatus', 'dealStage', 'city'). " +
			"Deal stages follow the sales funnel order; vehicle makes, models and cities are limited to the top entries.",
	}, s.handleGetDistribution)

	if s.opts.EnableCharts {
		sdk.AddTool(s.server, &sdk.Tool{
			Name:        "render_lead_charts",
			Description: "Render the lead dashboard as Mermaid charts (status pie, funnel, monthly trend, revenue by salesperson, response time and close probability).",
		}, s.handleRenderCharts)
	}

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "export_leads_csv",
		Description: "Export the current lead snapshot as CSV. Optionally pass 'columns' (attribute keys) to choose and order the exported columns.",
	}, s.handleExportCSV)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "refresh_leads",
		Description: "Refetch leads from the configured source, bypassing caches. The previous snapshot is kept if the fetch fails.",
	}, s.handleRefresh)
}
