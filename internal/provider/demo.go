package provider

import (
	"context"
	"time"

	"lead-insights/internal/demo"
	"lead-insights/internal/leads"
)

// DemoProvider serves deterministic synthetic leads.
type DemoProvider struct {
	cfg DemoConfig
	now func() time.Time
}

func NewDemoProvider(cfg DemoConfig) *DemoProvider {
	if cfg.Count <= 0 {
		cfg.Count = 250
	}
	if cfg.Scenario == "" {
		cfg.Scenario = demo.ScenarioSteady
	}
	return &DemoProvider{cfg: cfg, now: time.Now}
}

func (p *DemoProvider) Name() string { return "demo" }

// Fetch generates the snapshot. Inquiry dates are anchored to the start of the current day
// so repeated fetches on the same day return identical leads.
func (p *DemoProvider) Fetch(ctx context.Context) ([]leads.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := p.now().UTC().Truncate(24 * time.Hour)
	return demo.Generate(demo.Config{
		Scenario: p.cfg.Scenario,
		Count:    p.cfg.Count,
		Seed:     p.cfg.Seed,
		Now:      now,
	}), nil
}
