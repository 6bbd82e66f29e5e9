// Package dashboard wires a lead provider, the snapshot store and the memoized aggregator
// into the session every presentation surface shares.
package dashboard

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lead-insights/internal/analytics"
	"lead-insights/internal/leads"
	"lead-insights/internal/metrics"
	"lead-insights/internal/provider"
	"lead-insights/internal/store"
)

// invalidator is implemented by providers that cache responses.
type invalidator interface {
	Invalidate()
}

type Options struct {
	// CacheDir persists snapshots as JSONL; empty disables persistence.
	CacheDir string
	// MaxAge refetches snapshots (and ignores cache files) older than this; zero never expires.
	MaxAge    time.Duration
	Analytics analytics.Options
	Metrics   *metrics.Recorder
}

// Status summarizes the snapshot currently served.
type Status struct {
	Source    string    `json:"source"`
	Count     int       `json:"count"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Dashboard struct {
	provider provider.LeadProvider
	store    *store.LeadStore
	memo     *analytics.Memo
	opts     Options

	mu  sync.Mutex // serializes hydration and refresh
	now func() time.Time
}

func New(p provider.LeadProvider, s *store.LeadStore, opts Options) *Dashboard {
	return &Dashboard{
		provider: p,
		store:    s,
		memo:     analytics.NewMemo(opts.Analytics),
		opts:     opts,
		now:      time.Now,
	}
}

// Source is the snapshot partition served by this dashboard.
func (d *Dashboard) Source() string { return d.provider.Name() }

// Refresh fetches a new snapshot from the provider, bypassing provider caches.
func (d *Dashboard) Refresh(ctx context.Context) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshLocked(ctx)
}

func (d *Dashboard) refreshLocked(ctx context.Context) (Status, error) {
	source := d.Source()
	if inv, ok := d.provider.(invalidator); ok {
		inv.Invalidate()
	}

	start := d.now()
	ls, err := d.provider.Fetch(ctx)
	d.opts.Metrics.ObserveFetch(source, d.now().Sub(start), err)
	if err != nil {
		return d.status(), fmt.Errorf("fetch leads from %s: %w", source, err)
	}

	version := d.store.Replace(source, ls)
	d.memo.Invalidate(source)
	count := d.store.Count(source)
	d.opts.Metrics.ObserveSnapshot(source, count)
	log.Info().Str("source", source).Int("count", count).Uint64("version", version).Msg("Lead snapshot refreshed")

	if d.opts.CacheDir != "" {
		if err := d.store.Save(d.opts.CacheDir, source); err != nil {
			log.Warn().Err(err).Str("source", source).Msg("Failed to save snapshot cache")
		}
	}
	return d.status(), nil
}

// Leads returns the current snapshot, hydrating it on first use:
// cache file first, then the provider. Stale snapshots are refetched; if that fails the
// stale snapshot is served.
func (d *Dashboard) Leads(ctx context.Context) ([]leads.Lead, uint64, error) {
	source := d.Source()
	if ls, v := d.store.Snapshot(source); v != 0 && !d.stale(d.store.UpdatedAt(source)) {
		return ls, v, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Another caller may have hydrated while we waited.
	if ls, v := d.store.Snapshot(source); v != 0 && !d.stale(d.store.UpdatedAt(source)) {
		return ls, v, nil
	}

	if d.store.Version(source) == 0 {
		d.loadCache(source)
		if ls, v := d.store.Snapshot(source); v != 0 {
			return ls, v, nil
		}
	}

	if _, err := d.refreshLocked(ctx); err != nil {
		if ls, v := d.store.Snapshot(source); v != 0 {
			log.Warn().Err(err).Str("source", source).Msg("Refresh failed, serving stale snapshot")
			return ls, v, nil
		}
		return nil, 0, err
	}
	ls, v := d.store.Snapshot(source)
	return ls, v, nil
}

// loadCache hydrates from the JSONL cache unless the file is older than MaxAge.
func (d *Dashboard) loadCache(source string) {
	if d.opts.CacheDir == "" {
		return
	}
	path := store.CachePath(d.opts.CacheDir, source)
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if d.stale(info.ModTime()) {
		log.Info().Str("source", source).Time("modified", info.ModTime()).Msg("Snapshot cache is stale, evicting")
		_ = store.DeleteCache(d.opts.CacheDir, source)
		return
	}
	if err := d.store.Load(d.opts.CacheDir, source); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Failed to load snapshot cache")
		return
	}
	if d.store.Version(source) != 0 {
		d.opts.Metrics.ObserveSnapshot(source, d.store.Count(source))
	}
}

func (d *Dashboard) stale(updated time.Time) bool {
	return d.opts.MaxAge > 0 && d.now().Sub(updated) > d.opts.MaxAge
}

// Analyze returns the memoized aggregation of the current snapshot.
func (d *Dashboard) Analyze(ctx context.Context) (analytics.Result, error) {
	ls, version, err := d.Leads(ctx)
	if err != nil {
		return analytics.Result{}, err
	}

	start := d.now()
	res, hit := d.memo.Get(d.Source(), version, ls)
	d.opts.Metrics.ObserveAggregation(d.Source(), hit, d.now().Sub(start))
	if !hit {
		log.Debug().Str("source", d.Source()).Uint64("version", version).Int("leads", len(ls)).Msg("Aggregated lead snapshot")
	}
	return res, nil
}

// Status reports the snapshot currently held, without hydrating.
func (d *Dashboard) Status() Status {
	return d.status()
}

func (d *Dashboard) status() Status {
	source := d.Source()
	return Status{
		Source:    source,
		Count:     d.store.Count(source),
		Version:   d.store.Version(source),
		UpdatedAt: d.store.UpdatedAt(source),
	}
}
