// Command dedupq-stress runs concurrent producers and consumers against a
// dedupq queue and checks that no value is ever pending twice.
//
// Usage:
//
//	go run ./cmd/dedupq-stress --variant tracked --workers 8 --universe 64 --ops 100000
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Err(err).Msg("stress failed")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg   config
		debug bool
	)
	cmd := &cobra.Command{
		Use:           "dedupq-stress",
		Short:         "Stress a de-duplicating queue with concurrent push and pop",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			log.Info().
				Str("variant", cfg.Variant).
				Int("workers", cfg.Workers).
				Int("universe", cfg.Universe).
				Int("ops", cfg.Ops).
				Msg("starting")

			start := time.Now()
			rep, err := run(cmd.Context(), cfg, log.Logger)
			if err != nil {
				return err
			}
			log.Info().
				Int64("pushes", rep.Pushes).
				Int64("pops", rep.Pops).
				Int("max_len", rep.MaxLen).
				Int("remaining", rep.Remaining).
				Dur("elapsed", time.Since(start)).
				Msg("invariants held")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Variant, "variant", variantTracked, "queue implementation: tracked or unified")
	flags.IntVar(&cfg.Workers, "workers", runtime.GOMAXPROCS(0), "number of concurrent workers")
	flags.IntVar(&cfg.Universe, "universe", 64, "number of distinct values")
	flags.IntVar(&cfg.Ops, "ops", 100_000, "operations per worker")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
