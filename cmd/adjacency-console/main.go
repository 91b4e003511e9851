package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/adjacency/internal/console"
	"github.com/hailam/adjacency/internal/engine"
	"github.com/hailam/adjacency/internal/storage"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to this directory")
	logLevel   = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	seed       = flag.Uint64("seed", 0, "random seed for tie-breaks (0 = random)")
	noStore    = flag.Bool("no-store", false, "do not load or save preferences and statistics (kept under $ADJACENCY_DATA_DIR if set)")
)

func main() {
	flag.Parse()

	// Logs go to stderr so they never interleave with protocol output.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if level, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profilePath), profile.NoShutdownHook).Stop()
	}

	var store *storage.Storage
	if !*noStore {
		var err error
		if store, err = storage.NewStorage(); err != nil {
			log.Warn().Err(err).Msg("storage unavailable, preferences will not persist")
			store = nil
		} else {
			defer store.Close()
		}
	}

	eng := engine.NewEngine(engine.Options{Seed: *seed})

	protocol, err := console.New(eng, store, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start console")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := protocol.Run(ctx); err != nil {
		log.Error().Err(err).Msg("console stopped")
	}
}
