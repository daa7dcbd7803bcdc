// Command authcore-sweeper deletes refresh-token records that are expired or
// revoked. It runs one pass immediately and then one per AUTHCORE_SWEEP_INTERVAL
// until interrupted.
//
// Configuration comes from the AUTHCORE_* environment variables, optionally
// layered over a .env file (see internal/envconfig).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/internal/envconfig"
)

func main() {
	var (
		envFile = flag.String("env-file", ".env", "optional dotenv file")
		once    = flag.Bool("once", false, "run a single pass and exit")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile, *once); err != nil {
		fmt.Fprintf(os.Stderr, "authcore-sweeper: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string, once bool) error {
	cfg, err := envconfig.Load(envFile)
	if err != nil {
		return err
	}
	log := cfg.NewLogger(os.Stdout)

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	s, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close store", "error", err)
		}
	}()

	engine, err := authcore.New().
		WithConfig(engineCfg).
		WithStore(s).
		WithLogger(log).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if once {
		return sweep(ctx, engine, log)
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("AUTHCORE_SWEEP_INTERVAL must be > 0, got %s", cfg.SweepInterval)
	}

	log.Info("sweeper started", "store", cfg.Store, "interval", cfg.SweepInterval.String())
	return loop(ctx, engine, log, cfg.SweepInterval)
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// loop sweeps until ctx is cancelled. A failed pass is logged and retried on
// the next tick.
func loop(ctx context.Context, p purger, log *slog.Logger, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if err := sweep(ctx, p, log); err != nil && ctx.Err() == nil {
			log.Error("sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func sweep(ctx context.Context, p purger, log *slog.Logger) error {
	start := time.Now()
	n, err := p.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	log.Info("sweep complete", "purged", n, "took", time.Since(start).String())
	return nil
}
