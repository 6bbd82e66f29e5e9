package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"lead-insights/internal/leads"
)

// RESTProvider reads leads from a PostgREST-style hosted backend table.
// The first page is fetched alone to learn the row count; the rest are fetched concurrently.
type RESTProvider struct {
	cfg        RESTConfig
	httpClient *http.Client
	cache      *responseCache
}

func NewRESTProvider(cfg RESTConfig) (*RESTProvider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rest source requires LEADS_REST_URL")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid LEADS_REST_URL: %w", err)
	}
	if cfg.Table == "" {
		cfg.Table = "leads"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &RESTProvider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		cache: newResponseCache(),
	}, nil
}

func (p *RESTProvider) Name() string { return p.cfg.Table }

// Invalidate drops cached snapshots so the next Fetch hits the backend.
func (p *RESTProvider) Invalidate() { p.cache.purge() }

func (p *RESTProvider) Fetch(ctx context.Context) ([]leads.Lead, error) {
	endpoint := p.endpoint()
	if ls, ok := p.cache.get(endpoint); ok {
		return ls, nil
	}

	start := time.Now()

	// 1. First page, also yields the exact total
	records, total, err := p.fetchPage(ctx, endpoint, 0)
	if err != nil {
		return nil, err
	}

	// 2. Remaining pages
	step := len(records)
	switch {
	case step == 0:
		// empty table
	case total < 0:
		// Backend did not report a count: walk pages until a short one.
		for offset := step; ; {
			page, _, err := p.fetchPage(ctx, endpoint, offset)
			if err != nil {
				return nil, err
			}
			records = append(records, page...)
			offset += len(page)
			if len(page) < step {
				break
			}
		}
	case total > step:
		var offsets []int
		for offset := step; offset < total; offset += step {
			offsets = append(offsets, offset)
		}
		pages := make([][]leads.Record, len(offsets))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Concurrency)
		for i, offset := range offsets {
			g.Go(func() error {
				page, _, err := p.fetchPage(gctx, endpoint, offset)
				if err != nil {
					return fmt.Errorf("page at offset %d: %w", offset, err)
				}
				pages[i] = page
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, page := range pages {
			records = append(records, page...)
		}
	}

	// 3. Convert wire records
	out := make([]leads.Lead, 0, len(records))
	skipped := 0
	for _, r := range records {
		l, err := r.Lead()
		if err != nil {
			skipped++
			log.Warn().Err(err).Str("id", r.ID).Msg("Skipping lead with unreadable fields")
			continue
		}
		out = append(out, l)
	}

	p.cache.put(endpoint, out, p.cfg.CacheTTL)
	log.Info().
		Str("table", p.cfg.Table).
		Int("count", len(out)).
		Int("skipped", skipped).
		Dur("took", time.Since(start)).
		Msg("Fetched leads from backend")
	return out, nil
}

func (p *RESTProvider) endpoint() string {
	base := strings.TrimRight(p.cfg.BaseURL, "/")
	if !strings.HasSuffix(base, "/rest/v1") {
		base += "/rest/v1"
	}

	params := url.Values{}
	params.Set("select", "*")
	if p.cfg.Order != "" {
		params.Set("order", p.cfg.Order)
	}
	return fmt.Sprintf("%s/%s?%s", base, url.PathEscape(p.cfg.Table), params.Encode())
}

func (p *RESTProvider) authenticateRequest(req *http.Request) {
	if p.cfg.APIKey != "" {
		req.Header.Set("apikey", p.cfg.APIKey)
	}
	bearer := p.cfg.Token
	if bearer == "" {
		bearer = p.cfg.APIKey
	}
	if bearer != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	}
}

// fetchPage requests rows [offset, offset+PageSize). The returned total is -1 when unknown.
func (p *RESTProvider) fetchPage(ctx context.Context, endpoint string, offset int) ([]leads.Record, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}

	p.authenticateRequest(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Range-Unit", "items")
	req.Header.Set("Range", fmt.Sprintf("%d-%d", offset, offset+p.cfg.PageSize-1))
	req.Header.Set("Prefer", "count=exact")

	log.Debug().Str("url", endpoint).Int("offset", offset).Msg("Requesting leads page")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	total := parseContentRange(resp.Header.Get("Content-Range"))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
	case http.StatusRequestedRangeNotSatisfiable:
		return nil, total, nil
	default:
		return nil, 0, newStatusError(resp, p.cfg.Table)
	}

	var records []leads.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode backend response: %w", err)
	}
	return records, total, nil
}

// parseContentRange extracts the total from "0-999/5234" or "*/0". Unknown totals are -1.
func parseContentRange(h string) int {
	i := strings.LastIndex(h, "/")
	if i < 0 {
		return -1
	}
	total, err := strconv.Atoi(strings.TrimSpace(h[i+1:]))
	if err != nil {
		return -1
	}
	return total
}

// StatusError describes a non-success backend response.
type StatusError struct {
	StatusCode int
	RetryAfter string
	Table      string
	Message    string
}

func newStatusError(resp *http.Response, table string) *StatusError {
	e := &StatusError{
		StatusCode: resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
		Table:      table,
	}
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) == nil {
		e.Message = body.Message
	}
	return e
}

func (e *StatusError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("backend authentication failed (%d). Please check LEADS_REST_API_KEY and LEADS_REST_TOKEN", e.StatusCode)
	case http.StatusNotFound:
		return fmt.Sprintf("table %q not found on backend (404)", e.Table)
	case http.StatusTooManyRequests:
		if e.RetryAfter != "" {
			return fmt.Sprintf("backend rate limit exceeded (429). Retry after %s seconds", e.RetryAfter)
		}
		return "backend rate limit exceeded (429)"
	default:
		msg := fmt.Sprintf("backend returned status %d", e.StatusCode)
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	}
}
