// Package console implements a line-oriented text protocol for playing
// against the engine's strategies.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/adjacency/internal/board"
	"github.com/hailam/adjacency/internal/engine"
	"github.com/hailam/adjacency/internal/storage"
)

// Console owns the authoritative game position and answers commands read
// from an input stream.
type Console struct {
	engine *engine.Engine
	store  *storage.Storage // optional
	prefs  *storage.Preferences

	in    io.Reader
	outMu sync.Mutex
	out   io.Writer

	mu       sync.Mutex
	position *board.Position
	players  [3]string // strategy name per mark
	started  time.Time

	// Search state
	searching  bool
	searchDone chan struct{}
	cancel     context.CancelFunc
}

// New creates a console driver. store may be nil, in which case preferences
// are not persisted and statistics are unavailable.
func New(eng *engine.Engine, store *storage.Storage, in io.Reader, out io.Writer) (*Console, error) {
	prefs := storage.DefaultPreferences()
	if store != nil {
		var err error
		if prefs, err = store.LoadPreferences(); err != nil {
			return nil, err
		}
	}

	c := &Console{
		engine: eng,
		store:  store,
		prefs:  prefs,
		in:     in,
		out:    out,
	}
	c.applyPreferences()

	first, err := board.ParseMark(prefs.First)
	if err != nil {
		first = board.MarkX
	}
	if err := c.newGame(prefs.Rounds, first); err != nil {
		return nil, err
	}

	eng.OnInfo = c.sendInfo
	return c, nil
}

// Run reads commands until "quit" or the end of input, then waits for any
// running search to report.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "hello":
			c.handleHello()
		case "isready":
			c.waitSearch()
			c.println("readyok")
		case "newgame":
			c.handleNewGame(args)
		case "layout":
			c.handleLayout(args)
		case "play":
			c.handlePlay(args)
		case "go":
			c.handleGo(ctx, args)
		case "stop":
			c.handleStop()
		case "d":
			c.handleDisplay()
		case "setoption":
			c.handleSetOption(args)
		case "stats":
			c.handleStats(args)
		case "quit":
			c.handleStop()
			return nil
		default:
			c.printf("info string unknown command %q\n", cmd)
		}
	}

	c.waitSearch()
	return errors.Wrap(scanner.Err(), "reading commands")
}

func (c *Console) println(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// handleHello responds to the "hello" command.
func (c *Console) handleHello() {
	c.println("id name Adjacency")
	c.println("id author Adjacency Team")
	c.println("")
	c.printf("option name PlayerX type combo default %s vars %s\n", c.prefs.PlayerX, strings.Join(engine.StrategyNames(), " "))
	c.printf("option name PlayerO type combo default %s vars %s\n", c.prefs.PlayerO, strings.Join(engine.StrategyNames(), " "))
	c.printf("option name Rounds type spin default %d min 1 max %d\n", c.prefs.Rounds, board.DefaultRows*board.DefaultCols/2)
	c.println("option name First type combo default x vars x o")
	c.println("option name Difficulty type combo default hard vars easy medium hard")
	c.printf("option name MoveTime type spin default %d min 0\n", c.prefs.MoveTime.Milliseconds())
	c.println("option name LogLevel type combo default info vars debug info warn error")
	c.println("hellook")
}

func (c *Console) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searching {
		c.printf("info string search in progress\n")
	}
	return c.searching
}

func (c *Console) newGame(rounds int, first board.Mark) error {
	pos, err := board.NewStandardPosition(rounds, first)
	if err != nil {
		return err
	}
	c.setPosition(pos)
	return nil
}

func (c *Console) setPosition(pos *board.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
	c.players[board.MarkX] = c.prefs.PlayerX
	c.players[board.MarkO] = c.prefs.PlayerO
	c.started = time.Now()
}

// handleNewGame starts the standard opening: newgame [rounds] [x|o]
func (c *Console) handleNewGame(args []string) {
	if c.busy() {
		return
	}

	rounds := c.prefs.Rounds
	first, err := board.ParseMark(c.prefs.First)
	if err != nil {
		first = board.MarkX
	}

	if len(args) > 0 {
		if rounds, err = strconv.Atoi(args[0]); err != nil {
			c.printf("info string invalid rounds %q\n", args[0])
			return
		}
	}
	if len(args) > 1 {
		if first, err = board.ParseMark(args[1]); err != nil {
			c.printf("info string %v\n", err)
			return
		}
	}

	if err := c.newGame(rounds, first); err != nil {
		c.printf("info string %v\n", err)
	}
}

// handleLayout replaces the position: layout <rows> <side> <plies>
func (c *Console) handleLayout(args []string) {
	if c.busy() {
		return
	}

	pos, err := board.ParseLayout(strings.Join(args, " "))
	if err != nil {
		c.printf("info string %v\n", err)
		return
	}
	c.setPosition(pos)
}

// handlePlay applies a human move: play <row> <col>
func (c *Console) handlePlay(args []string) {
	if c.busy() {
		return
	}

	m, err := board.ParseMove(strings.Join(args, " "))
	if err != nil {
		c.printf("info string %v\n", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.position.InBounds(m.Row(), m.Col()) {
		c.printf("info string move %v is off the board\n", m)
		return
	}
	mover := c.position.SideToMove()
	if err := c.position.Apply(m); err != nil {
		c.printf("info string %v\n", err)
		return
	}
	c.players[mover] = engine.NameHuman
	c.afterMove()
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Strategy string
	Depth    int
	MoveTime time.Duration
	Infinite bool
}

// handleGo starts a search with the given parameters and plays the result.
func (c *Console) handleGo(ctx context.Context, args []string) {
	if c.busy() {
		return
	}

	opts := c.parseGoOptions(args)

	c.mu.Lock()
	if c.position.IsTerminal() {
		c.mu.Unlock()
		c.println("bestmove none")
		return
	}
	pos := c.position.Copy()
	if opts.Strategy == "" {
		opts.Strategy = c.defaultStrategy(pos.SideToMove())
	}
	ctx, cancel := context.WithCancel(ctx)
	c.searching = true
	c.searchDone = make(chan struct{})
	c.cancel = cancel
	done := c.searchDone
	c.mu.Unlock()

	limits := c.calculateLimits(opts)

	go func() {
		defer close(done)
		defer cancel()

		d, err := c.engine.ProposeMoveWithLimits(ctx, pos, opts.Strategy, limits)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.searching = false

		if err != nil {
			c.printf("info string %v\n", err)
			c.println("bestmove none")
			return
		}

		// The console position is only changed while no search is running,
		// so it still matches pos.
		if err := c.position.Apply(d.Move); err != nil {
			log.Error().Err(err).Str("move", d.Move.String()).Msg("strategy proposed an illegal move")
			c.println("bestmove none")
			return
		}
		c.players[pos.SideToMove()] = opts.Strategy

		c.printf("bestmove %d %d score x %d o %d\n", d.Move.Row(), d.Move.Col(), c.position.ScoreX(), c.position.ScoreO())
		c.afterMove()
	}()
}

// defaultStrategy returns the configured strategy for the side to move. A
// human seat falls back to the alpha-beta bot, so "go" always produces a move.
func (c *Console) defaultStrategy(side board.Mark) string {
	name := c.prefs.PlayerX
	if side == board.MarkO {
		name = c.prefs.PlayerO
	}
	if name == engine.NameHuman {
		return engine.NameMinimax
	}
	return name
}

// parseGoOptions parses "go" command arguments.
func (c *Console) parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		default:
			opts.Strategy = args[i]
		}
	}

	return opts
}

// calculateLimits merges GoOptions into the engine's current limits.
func (c *Console) calculateLimits(opts GoOptions) engine.SearchLimits {
	limits := c.engine.Limits()

	if opts.Infinite {
		limits.Infinite = true
	}
	if opts.Depth > 0 {
		limits.Depth = opts.Depth
	}
	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
	}

	return limits
}

// afterMove reports the end of the game. c.mu must be held.
func (c *Console) afterMove() {
	if !c.position.IsTerminal() {
		return
	}

	x, o := c.position.ScoreX(), c.position.ScoreO()
	winner := "draw"
	switch {
	case x > o:
		winner = "x"
	case o > x:
		winner = "o"
	}
	c.printf("gameover x %d o %d winner %s\n", x, o, winner)

	if c.store == nil {
		return
	}
	err := c.store.RecordMatch(storage.MatchResult{
		PlayerX:  c.players[board.MarkX],
		PlayerO:  c.players[board.MarkO],
		ScoreX:   x,
		ScoreO:   o,
		Duration: time.Since(c.started),
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not record match")
	}
}

// sendInfo outputs one search iteration.
func (c *Console) sendInfo(info engine.SearchInfo) {
	c.printf("info depth %d score %d leaves %d prunes %d tthits %d pvhits %d time %d complete %t pv %d %d\n",
		info.Depth, info.Score, info.Leaves, info.Prunes, info.TTHits, info.PVHits,
		info.Time.Milliseconds(), info.Completed, info.BestMove.Row(), info.BestMove.Col())
}

// handleStop stops the current search and waits for its report.
func (c *Console) handleStop() {
	c.mu.Lock()
	searching, cancel := c.searching, c.cancel
	c.mu.Unlock()

	if searching {
		cancel()
		c.engine.Stop()
	}
	c.waitSearch()
}

func (c *Console) waitSearch() {
	c.mu.Lock()
	done := c.searchDone
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

// handleDisplay prints the board.
func (c *Console) handleDisplay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println(c.position.String())
	c.printf("layout %s\n", c.position.Layout())
	c.printf("score x %d o %d\n", c.position.ScoreX(), c.position.ScoreO())
}

// handleSetOption processes "setoption" commands.
func (c *Console) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	if err := c.setOption(strings.ToLower(name), value); err != nil {
		c.printf("info string %v\n", err)
		return
	}
	c.applyPreferences()

	if c.store != nil {
		if err := c.store.SavePreferences(c.prefs); err != nil {
			log.Warn().Err(err).Msg("could not save preferences")
		}
	}
}

func (c *Console) setOption(name, value string) error {
	switch name {
	case "playerx", "playero":
		if _, err := engine.NewStrategy(value, engine.Options{}); err != nil {
			return err
		}
		if name == "playerx" {
			c.prefs.PlayerX = strings.ToLower(value)
		} else {
			c.prefs.PlayerO = strings.ToLower(value)
		}
	case "rounds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return errors.Errorf("invalid rounds %q", value)
		}
		c.prefs.Rounds = n
	case "first":
		if _, err := board.ParseMark(value); err != nil {
			return err
		}
		c.prefs.First = strings.ToLower(value)
	case "difficulty":
		value = strings.ToLower(value)
		d, err := engine.ParseDifficulty(value)
		if err != nil {
			return err
		}
		c.prefs.Difficulty = value
		c.prefs.MoveTime = engine.DifficultySettings[d].MoveTime
	case "movetime":
		ms, err := strconv.Atoi(value)
		if err != nil || ms < 0 {
			return errors.Errorf("invalid move time %q", value)
		}
		c.prefs.MoveTime = time.Duration(ms) * time.Millisecond
	case "loglevel":
		if _, err := zerolog.ParseLevel(value); err != nil {
			return errors.Wrapf(err, "invalid log level %q", value)
		}
		c.prefs.LogLevel = value
	default:
		return errors.Errorf("unknown option %q", name)
	}
	return nil
}

// applyPreferences pushes the difficulty, move time and log level to the
// engine and the global logger.
func (c *Console) applyPreferences() {
	d, err := engine.ParseDifficulty(c.prefs.Difficulty)
	if err != nil {
		d = engine.Hard
	}
	c.engine.SetDifficulty(d)

	limits := engine.DifficultySettings[d]
	if c.prefs.MoveTime > 0 {
		limits.MoveTime = c.prefs.MoveTime
	}
	c.engine.SetLimits(limits)

	if level, err := zerolog.ParseLevel(c.prefs.LogLevel); err == nil && c.prefs.LogLevel != "" {
		zerolog.SetGlobalLevel(level)
	}
}

// handleStats prints the aggregate match statistics, or discards them
// with "stats reset".
func (c *Console) handleStats(args []string) {
	if c.store == nil {
		c.println("info string statistics unavailable")
		return
	}

	if len(args) > 0 {
		if args[0] != "reset" {
			c.printf("info string unknown stats command %q\n", args[0])
			return
		}
		if err := c.store.ResetStats(); err != nil {
			c.printf("info string %v\n", err)
			return
		}
		c.println("info string statistics reset")
		return
	}

	stats, err := c.store.LoadStats()
	if err != nil {
		c.printf("info string %v\n", err)
		return
	}

	c.printf("stats games %d xwins %d owins %d draws %d xwinrate %.1f\n",
		stats.Games, stats.WinsX, stats.WinsO, stats.Draws, stats.WinRate())
	for _, name := range engine.StrategyNames() {
		r, ok := stats.ByStrategy[name]
		if !ok {
			continue
		}
		c.printf("stats strategy %s wins %d losses %d draws %d\n", name, r.Wins, r.Losses, r.Draws)
	}
}
