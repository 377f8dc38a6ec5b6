package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/xraph/feeledger"
	"github.com/xraph/feeledger/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Hold the ledger open and export Prometheus metrics",
	Long: `Restores the ledger and keeps it running until SIGINT or SIGTERM,
serving /metrics and /healthz and writing a snapshot every
--snapshot-interval. Do not run mutating commands against the same
ledger while serve holds it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		interval, _ := cmd.Flags().GetDuration("snapshot-interval")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))

		l, err := openLedger(ctx, feeledger.WithPlugin(metrics))
		if err != nil {
			return err
		}
		if err := l.Start(ctx); err != nil {
			return errors.Join(err, l.Store().Close())
		}

		srv := &http.Server{
			Addr:              listen,
			Handler:           serveMux(l, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		serveErr := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()
		logger.Info("serving metrics", "listen", listen, "ledger", l.ID())

		runErr := snapshotLoop(ctx, l, interval, serveErr)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return errors.Join(runErr, srv.Shutdown(shutdownCtx), l.Stop())
	},
}

// snapshotLoop writes periodic snapshots until ctx ends or the server
// fails. A failed snapshot is logged and retried on the next tick.
func snapshotLoop(ctx context.Context, l *feeledger.Ledger, interval time.Duration, serveErr <-chan error) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		case <-tick:
			if _, err := l.Snapshot(ctx); err != nil {
				logger.Error("periodic snapshot failed", "error", err)
			}
		}
	}
}

func serveMux(l *feeledger.Ledger, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := l.Store().Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if !l.Reconciled() {
			http.Error(w, "balances do not add up to the supply", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func init() {
	serveCmd.Flags().String("listen", ":9464", "metrics listen address")
	serveCmd.Flags().Duration("snapshot-interval", 5*time.Minute, "how often to snapshot the ledger")

	RootCmd.AddCommand(serveCmd)
}
