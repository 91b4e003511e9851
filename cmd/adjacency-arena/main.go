package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/adjacency/internal/arena"
	"github.com/hailam/adjacency/internal/board"
	"github.com/hailam/adjacency/internal/engine"
	"github.com/hailam/adjacency/internal/storage"
)

var (
	playerA    = flag.String("a", engine.NameMinimax, "first strategy")
	playerB    = flag.String("b", engine.NameGreedy, "second strategy")
	games      = flag.Int("games", 10, "number of games; colours alternate")
	rounds     = flag.Int("rounds", 10, "rounds per game")
	first      = flag.String("first", "x", "player to move first (x or o)")
	difficulty = flag.String("difficulty", "easy", "search difficulty (easy, medium, hard)")
	moveTime   = flag.Duration("movetime", 0, "time per move, overrides the difficulty preset")
	parallel   = flag.Int("parallel", runtime.NumCPU(), "games played at once")
	seed       = flag.Uint64("seed", 0, "random seed (0 = random)")
	record     = flag.Bool("record", true, "add results to the stored statistics (kept under $ADJACENCY_DATA_DIR if set)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to this directory")
	logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if level, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if *cpuprofile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuprofile), profile.NoShutdownHook).Stop()
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("arena failed")
		os.Exit(1)
	}
}

func run() error {
	firstMark, err := board.ParseMark(*first)
	if err != nil {
		return err
	}
	diff, err := engine.ParseDifficulty(*difficulty)
	if err != nil {
		return err
	}
	for _, name := range []string{*playerA, *playerB} {
		if !lo.Contains(engine.StrategyNames(), name) || name == engine.NameHuman {
			return errors.Errorf("unknown bot %q, choose from %v", name, lo.Without(engine.StrategyNames(), engine.NameHuman))
		}
	}

	newEngine := func() *engine.Engine {
		e := engine.NewEngine(engine.Options{Seed: *seed})
		e.SetDifficulty(diff)
		if *moveTime > 0 {
			limits := e.Limits()
			limits.MoveTime = *moveTime
			e.SetLimits(limits)
		}
		return e
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	schedule := arena.Schedule(*playerA, *playerB, *games, *rounds, firstMark)
	outcomes, err := arena.RunMatch(ctx, schedule, *parallel, newEngine)
	if err != nil {
		return err
	}

	wins := map[string]int{}
	draws := 0
	for _, out := range outcomes {
		switch out.Winner() {
		case board.MarkX:
			wins[out.Game.PlayerX]++
		case board.MarkO:
			wins[out.Game.PlayerO]++
		default:
			draws++
		}
	}
	fmt.Printf("%s %d - %d %s (%d draws)\n", *playerA, wins[*playerA], wins[*playerB], *playerB, draws)

	if !*record {
		return nil
	}

	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, out := range outcomes {
		if err := store.RecordMatch(out.MatchResult()); err != nil {
			return err
		}
	}
	return nil
}
