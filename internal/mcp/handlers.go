package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"lead-insights/internal/analytics"
	"lead-insights/internal/export"
	"lead-insights/internal/leads"
	"lead-insights/internal/visuals"
)

type noArgs struct{}

type distributionArgs struct {
	Field string `json:"field" jsonschema:"lead attribute key, e.g. leadStatus, dealStage, city, vehicleMake"`
}

type distributionResult struct {
	Field  leads.ColumnKey           `json:"field"`
	Values []analytics.CategoryCount `json:"values"`
}

type exportArgs struct {
	Columns []string `json:"columns,omitempty" jsonschema:"optional ordered list of attribute keys to export"`
}

func (s *Server) handleAnalyzeLeads(ctx context.Context, _ *sdk.CallToolRequest, _ noArgs) (*sdk.CallToolResult, analytics.Result, error) {
	res, err := s.dash.Analyze(ctx)
	if err != nil {
		return nil, analytics.Result{}, err
	}
	return nil, res, nil
}

func (s *Server) handleGetKPIs(ctx context.Context, _ *sdk.CallToolRequest, _ noArgs) (*sdk.CallToolResult, analytics.KPISet, error) {
	res, err := s.dash.Analyze(ctx)
	if err != nil {
		return nil, analytics.KPISet{}, err
	}
	return nil, res.KPIs, nil
}

func (s *Server) handleGetDistribution(ctx context.Context, _ *sdk.CallToolRequest, args distributionArgs) (*sdk.CallToolResult, distributionResult, error) {
	key, err := leads.ParseColumnKey(args.Field)
	if err == nil {
		if _, ok := (analytics.Result{}).Distribution(key); !ok {
			err = fmt.Errorf("no distribution for column %q", key)
		}
	}
	if err != nil {
		return nil, distributionResult{}, fmt.Errorf("%w; available fields: %s", err, distributionFields())
	}

	res, err := s.dash.Analyze(ctx)
	if err != nil {
		return nil, distributionResult{}, err
	}
	dist, _ := res.Distribution(key)
	return nil, distributionResult{Field: key, Values: dist}, nil
}

func distributionFields() string {
	keys := analytics.DistributionKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func (s *Server) handleRenderCharts(ctx context.Context, _ *sdk.CallToolRequest, _ noArgs) (*sdk.CallToolResult, any, error) {
	res, err := s.dash.Analyze(ctx)
	if err != nil {
		return nil, nil, err
	}
	report := visuals.Report(res)
	if report == "" {
		report = "No lead data to chart."
	}
	return textResult(report), nil, nil
}

func (s *Server) handleExportCSV(ctx context.Context, _ *sdk.CallToolRequest, args exportArgs) (*sdk.CallToolResult, any, error) {
	cols := s.opts.ExportColumns
	if len(args.Columns) > 0 {
		parsed, err := export.ParseList(strings.Join(args.Columns, ","))
		if err != nil {
			return nil, nil, err
		}
		cols = parsed
	}

	ls, _, err := s.dash.Leads(ctx)
	if err != nil {
		return nil, nil, err
	}

	var sb strings.Builder
	if err := export.WriteCSV(&sb, ls, cols); err != nil {
		return nil, nil, err
	}
	return textResult(sb.String()), nil, nil
}

func (s *Server) handleRefresh(ctx context.Context, _ *sdk.CallToolRequest, _ noArgs) (*sdk.CallToolResult, any, error) {
	st, err := s.dash.Refresh(ctx)
	if err != nil {
		log.Warn().Err(err).Str("source", st.Source).Msg("Lead refresh failed via MCP")
		return nil, nil, err
	}
	return textResult(s.formatResult(st)), nil, nil
}
