// Command oahash-workload runs randomized put/remove workloads against an
// oahash.Table and a reference mapping, and fails on the first divergence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theflywheel/oahash/internal/logutil"
	"github.com/theflywheel/oahash/internal/reference"
	"github.com/theflywheel/oahash/internal/workload"
)

// fileConfig is the layout of the -config file.
type fileConfig struct {
	Log      logutil.LogConfig  `toml:"log"`
	Profiles []workload.Profile `toml:"profile"`
}

var (
	configPath = flag.String("config", "", "TOML file with [log] and [[profile]] sections; the built-in profiles run when empty")
	refKind    = flag.String("reference", "builtin", "reference mapping: builtin, pb or xsync")
	parallel   = flag.Int("parallel", runtime.NumCPU(), "number of profiles run at once")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oahash-workload: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		cfg.Profiles = workload.DefaultProfiles()
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "decode %s", path)
	}
	if len(cfg.Profiles) == 0 {
		return cfg, errors.Errorf("%s: no [[profile]] sections", path)
	}
	return cfg, nil
}

func run() error {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if _, err := reference.New[int, int](*refKind); err != nil {
		return err
	}
	for _, p := range cfg.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if *parallel < 1 {
		return errors.Errorf("-parallel must be at least 1, got %d", *parallel)
	}

	logger, err := logutil.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*parallel)
	for _, p := range cfg.Profiles {
		g.Go(func() error {
			rep, err := workload.Run(ctx, p, *refKind, logger)
			if err != nil {
				logger.Error("workload failed", zap.String("profile", p.Name), zap.Error(err))
				return err
			}
			logger.Info("workload passed",
				zap.String("profile", rep.Profile),
				zap.String("reference", rep.Reference),
				zap.Int("operations", rep.Operations),
				zap.Int("puts", rep.Puts),
				zap.Int("removes", rep.Removes),
				zap.Int("size", rep.Stats.Size),
				zap.Int("capacity", rep.Stats.Capacity),
				zap.Int("growths", rep.Stats.Growths),
				zap.Int("max-probe", rep.Stats.MaxProbe),
				zap.Duration("elapsed", rep.Elapsed),
			)
			return nil
		})
	}
	return g.Wait()
}
