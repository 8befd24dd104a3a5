package main

import (
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/halcyon-audio/halcyon/internal/config"
	"github.com/halcyon-audio/halcyon/state"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [store...]",
		Short: "Follow store values as the daemon pushes changes",
		Long: `watch subscribes to the named stores (all of them by default) and prints
one JSON line per value change until interrupted. The daemon's connect
event triggers an initial full refresh, so current values arrive shortly
after startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			client, reg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck

			// Optional Prometheus endpoint for long-running watches.
			if cfg.Metrics.Addr != "" {
				go serveMetrics(cfg.Metrics.Addr)
			}

			// Hot-reload watcher. Log level changes apply to the live
			// session unless the --log-level flag pinned it; the watcher
			// itself reports that player settings only apply on next run.
			if flagConfig != "" {
				go func() {
					err := config.Watch(ctx, flagConfig, func(updated *config.Config) {
						if flagLogLevel == "" {
							logLevel.Set(updated.Log.SlogLevel())
						}
					})
					if err != nil {
						slog.Error("config watcher stopped", "err", err)
					}
				}()
			}

			names := args
			if len(names) == 0 {
				names = reg.Names()
			}

			var wg sync.WaitGroup
			for _, name := range names {
				sub, err := reg.Select(state.Name(name))
				if err != nil {
					reg.Destroy()
					return err
				}
				wg.Add(1)
				go func(name string, sub *state.Subscription) {
					defer wg.Done()
					for v := range sub.C {
						if err := printJSON(map[string]any{"store": name, "value": v}); err != nil {
							slog.Warn("watch: print failed", "store", name, "err", err)
						}
					}
				}(name, sub)
			}

			slog.Info("watching", "stores", names)
			<-ctx.Done()

			reg.Destroy() // closes every subscription, ending the printers
			wg.Wait()
			return nil
		},
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("metrics endpoint listening", "addr", addr)
	if err := (&http.Server{Addr: addr, Handler: mux}).ListenAndServe(); err != nil {
		slog.Error("metrics endpoint stopped", "err", err)
	}
}
