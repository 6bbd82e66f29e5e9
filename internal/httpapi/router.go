// Package httpapi serves lead analytics to browser dashboards as JSON, CSV and Mermaid.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"lead-insights/internal/dashboard"
	"lead-insights/internal/export"
	"lead-insights/internal/leads"
	"lead-insights/internal/metrics"
	"lead-insights/internal/visuals"
)

type Options struct {
	AllowedOrigins []string
	// ExportColumns is used when a CSV request names no columns.
	ExportColumns export.Columns
	EnableCharts  bool
	Metrics       *metrics.Recorder
	Logger        zerolog.Logger
}

type server struct {
	dash *dashboard.Dashboard
	opts Options
}

// NewRouter builds the HTTP surface over a dashboard session.
func NewRouter(d *dashboard.Dashboard, opts Options) http.Handler {
	s := &server{dash: d, opts: opts}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(opts.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(Instrument(opts.Metrics))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(CORS(opts.AllowedOrigins))
	}

	r.Get("/health", s.health)
	r.Handle("/metrics", opts.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", s.analytics)
			r.Get("/kpis", s.kpis)
			r.Get("/distribution/{field}", s.distribution)
			r.Get("/charts", s.charts)
		})
		r.Get("/leads/export.csv", s.exportCSV)
		r.Post("/leads/refresh", s.refresh)
	})

	return r
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "lead-insights", "source": s.dash.Source()})
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Status())
}

func (s *server) analytics(w http.ResponseWriter, r *http.Request) {
	res, err := s.dash.Analyze(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) kpis(w http.ResponseWriter, r *http.Request) {
	res, err := s.dash.Analyze(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, res.KPIs)
}

func (s *server) distribution(w http.ResponseWriter, r *http.Request) {
	key, err := leads.ParseColumnKey(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	res, err := s.dash.Analyze(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	dist, ok := res.Distribution(key)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no distribution for column %q", key))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"field": key, "values": dist})
}

func (s *server) charts(w http.ResponseWriter, r *http.Request) {
	if !s.opts.EnableCharts {
		writeError(w, http.StatusNotFound, errors.New("charts are disabled"))
		return
	}
	res, err := s.dash.Analyze(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(visuals.Report(res)))
}

func (s *server) exportCSV(w http.ResponseWriter, r *http.Request) {
	cols := s.opts.ExportColumns
	if q := r.URL.Query().Get("columns"); q != "" {
		parsed, err := export.ParseList(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cols = parsed
	}
	if moves := r.URL.Query()["move"]; len(moves) > 0 {
		if len(cols) == 0 {
			cols = export.DefaultColumns()
		}
		moved, err := cols.ApplyMoves(moves...)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cols = moved
	}

	ls, _, err := s.dash.Leads(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	filename := fmt.Sprintf("leads-%s-%s.csv", s.dash.Source(), time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteCSV(w, ls, cols); err != nil {
		// Headers are already sent; the truncated body is all we can do.
		s.opts.Logger.Error().Err(err).Msg("CSV export failed")
	}
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	st, err := s.dash.Refresh(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "status": st})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
