// Package mcp exposes lead analytics as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"lead-insights/internal/dashboard"
	"lead-insights/internal/export"
)

type Options struct {
	Version       string
	EnableCharts  bool
	ExportColumns export.Columns
}

// Server holds the state for the MCP server.
type Server struct {
	dash   *dashboard.Dashboard
	opts   Options
	server *sdk.Server
}

// NewServer creates a new MCP server with every lead tool registered.
func NewServer(d *dashboard.Dashboard, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		dash: d,
		opts: opts,
		server: sdk.NewServer(&sdk.Implementation{
			Name:    "lead-insights",
			Version: opts.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the MCP session over stdio until the client disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("source", s.dash.Source()).Msg("MCP server starting stdio loop")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Connect serves a single session over t. Used for in-process clients.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}
