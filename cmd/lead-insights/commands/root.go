package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lead-insights/internal/config"
	"lead-insights/internal/logging"
	"lead-insights/internal/mcp"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	cfg      *config.AppConfig
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "lead-insights",
	Short: "Lead analytics for automotive dealership CRMs",
	Long: `Aggregates dealership lead records into KPIs, distributions, salesperson and channel
performance, monthly trends and fixed-range buckets. Without a subcommand it serves the
analytics as an MCP server over stdio.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		closeLog = logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("source", cfg.Provider.Source).
			Msg("lead-insights starting")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	RunE: runMCP,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lead analytics as an MCP server over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := newSession()
	if err != nil {
		return err
	}
	server := mcp.NewServer(s.dash, mcp.Options{
		Version:       Version,
		EnableCharts:  cfg.EnableMermaidCharts,
		ExportColumns: s.columns,
	})
	return server.Serve(ctx)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(serveCmd, httpCmd, reportCmd, exportCmd, schemaCmd)
}
