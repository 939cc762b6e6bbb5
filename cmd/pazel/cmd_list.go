package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/astropenguin/pazel/internal/logging"
	"github.com/astropenguin/pazel/internal/observability"
	"github.com/astropenguin/pazel/monitor"
)

func newListCmd() *cobra.Command {
	var timezone, tolerance, metricsAddr string
	var bell bool

	cmd := &cobra.Command{
		Use:   "list [location query...]",
		Short: "Continuously list current object positions",
		Long: `List redraws the current azimuth, elevation and equatorial coordinates
of every catalog object once per second until interrupted. Objects whose
names carry the alert marker blink and ring the terminal bell while their
elevation falls outside the tolerance window.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx, args, "", timezone)
			if err != nil {
				return err
			}
			defer s.persist(ctx)

			window, err := monitor.ParseWindow(tolerance)
			if err != nil {
				return err
			}

			var collector *observability.MonitorCollector
			if metricsAddr != "" {
				collector, err = observability.NewMonitorCollector(nil)
				if err != nil {
					return err
				}
				srv := serveMetrics(metricsAddr, collector, s.log)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			m := monitor.New(monitor.Config{
				Location: s.loc,
				Timezone: s.tz,
				Objects:  s.objects,
				Window:   window,
				Bell:     bell,
			}, s.engine, monitor.NewScreen(cmd.OutOrStdout()),
				monitor.WithLogger(s.log),
				monitor.WithMetrics(collector),
			)
			return m.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "", `timezone: a location query, "UTC" or "LST" (default: the site's own)`)
	cmd.Flags().StringVar(&tolerance, "tolerance", "", `elevation window "lower:upper" in degrees (default "0:90")`)
	cmd.Flags().BoolVar(&bell, "bell", false, "ring the terminal bell while an alert is active")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9105)")
	return cmd
}

func serveMetrics(addr string, collector *observability.MonitorCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()
	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
