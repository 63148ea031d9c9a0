package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/optimistic/metrics"
	"github.com/vango-dev/optimistic/server"
	"github.com/vango-dev/optimistic/store"
	"github.com/vango-dev/optimistic/tracing"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		initial  int64
		failRate float64
		latency  time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo counter server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if failRate < 0 || failRate > 1 {
				return fmt.Errorf("fail-rate must be between 0 and 1, got %v", failRate)
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			backend := simulatedBackend(initial, failRate, latency)

			srv := server.New(initial, backend, &server.Config{
				Address: addr,
				Logger:  logger,
			},
				store.WithObserver(metrics.New()),
				store.WithObserver(tracing.New()),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().Int64Var(&initial, "initial", 0, "Initial counter value")
	cmd.Flags().Float64Var(&failRate, "fail-rate", 0.2, "Fraction of increments the backend rejects")
	cmd.Flags().DurationVar(&latency, "latency", 500*time.Millisecond, "Simulated backend latency")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// simulatedBackend returns a Backend that sleeps for the configured
// latency, rejects a fraction of increments, and otherwise tracks the
// authoritative counter itself.
func simulatedBackend(initial int64, failRate float64, latency time.Duration) server.Backend {
	var confirmed atomic.Int64
	confirmed.Store(initial)
	return func(delta int64) (int64, error) {
		time.Sleep(latency)
		if rand.Float64() < failRate {
			return 0, fmt.Errorf("simulated backend failure")
		}
		return confirmed.Add(delta), nil
	}
}
