package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"helpengine/internal/domain"

	"github.com/spf13/cobra"
)

func metricsCmd() *cobra.Command {
	var (
		addr    string
		queries []string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print engine metrics, or serve them over HTTP",
		Long: `Loads the engine, optionally runs the given warm-up queries, and prints
the metrics in Prometheus text format. With --listen the same text is served
at /metrics until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				for _, q := range queries {
					s.engine.Search(q, domain.NewSearchOptions())
				}
				m := s.engine.Metrics()
				if addr == "" {
					return m.WriteText(os.Stdout)
				}

				mux := http.NewServeMux()
				mux.Handle("/metrics", m.Handler())
				mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
					q := strings.TrimSpace(r.URL.Query().Get("q"))
					if s.engine.RebuildIfNeeded() {
						logger.Info("search index rebuilt")
					}
					resp := s.engine.Search(q, domain.NewSearchOptions())
					w.Header().Set("Content-Type", "text/plain; charset=utf-8")
					for _, res := range resp.Results {
						w.Write([]byte(res.Entry.Key + "\n"))
					}
				})
				srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

				sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				go func() {
					<-sigCtx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()

				logger.Info("serving metrics", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "listen", "", "serve /metrics on this address (e.g. :9090)")
	cmd.Flags().StringSliceVarP(&queries, "query", "q", nil, "queries to run before reporting")
	return cmd
}
