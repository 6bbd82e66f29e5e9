package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lead-insights/internal/httpapi"
)

var (
	httpAddr string
	httpOpen bool
)

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the lead analytics JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		s, err := newSession()
		if err != nil {
			return err
		}

		addr := cfg.HTTPAddr
		if httpAddr != "" {
			addr = httpAddr
		}

		srv := &http.Server{
			Addr: addr,
			Handler: httpapi.NewRouter(s.dash, httpapi.Options{
				AllowedOrigins: cfg.AllowedOrigins,
				ExportColumns:  s.columns,
				EnableCharts:   cfg.EnableMermaidCharts,
				Metrics:        s.metrics,
				Logger:         log.Logger,
			}),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", addr).Msg("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		if httpOpen {
			url := localURL(addr) + "/api/analytics"
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
			}
		}

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info().Msg("HTTP server stopped")
		return nil
	},
}

// localURL turns a listen address such as ":8080" into a browsable URL.
func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func init() {
	httpCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	httpCmd.Flags().BoolVar(&httpOpen, "open", false, "open the analytics endpoint in a browser")
}
