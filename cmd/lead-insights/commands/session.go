package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"lead-insights/internal/analytics"
	"lead-insights/internal/config"
	"lead-insights/internal/dashboard"
	"lead-insights/internal/export"
	"lead-insights/internal/metrics"
	"lead-insights/internal/provider"
	"lead-insights/internal/store"
)

// session is the wiring every command shares.
type session struct {
	dash    *dashboard.Dashboard
	metrics *metrics.Recorder
	columns export.Columns
}

func newSession() (*session, error) {
	return buildSession(cfg)
}

func buildSession(c *config.AppConfig) (*session, error) {
	p, err := provider.New(c.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to configure lead source: %w", err)
	}

	cols := export.DefaultColumns()
	if c.ExportColumnsFile != "" {
		cols, err = export.LoadFile(c.ExportColumnsFile)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", c.ExportColumnsFile).Int("columns", len(cols)).Msg("Loaded export column set")
	}

	rec := metrics.New()
	dash := dashboard.New(p, store.NewLeadStore(), dashboard.Options{
		CacheDir:  c.CacheDir,
		MaxAge:    c.SnapshotMaxAge,
		Analytics: analytics.Options{ChronologicalMonths: c.ChronologicalMonths},
		Metrics:   rec,
	})
	return &session{dash: dash, metrics: rec, columns: cols}, nil
}
