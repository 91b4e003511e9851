package engine

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/hailam/adjacency/internal/board"
)

// ErrHumanPlayer is returned when the engine is asked to move for a human.
var ErrHumanPlayer = errors.New("engine: strategy is played by a human")

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum alpha-beta depth (0 = to the end of the game)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, 500ms
	Medium                   // 4 ply, 2s
	Hard                     // full depth, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 4, MoveTime: 2 * time.Second},
	Hard:   {Depth: 0, MoveTime: 5 * time.Second},
}

// ParseDifficulty maps "easy", "medium" or "hard" to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Hard, errors.Errorf("engine: unknown difficulty %q", s)
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	}
	return "hard"
}

// Decision is the engine's answer to one move request.
type Decision struct {
	Move     board.Move
	Strategy string
	Elapsed  time.Duration
	TimedOut bool // the search ran for its whole budget
}

// Engine builds strategies by name and runs them under a time budget.
// At most one move is being computed at a time.
type Engine struct {
	mu         sync.Mutex
	active     Strategy
	difficulty Difficulty
	limits     *SearchLimits
	options    Options
	cancel     context.CancelFunc

	// starting, if set, runs once the search is registered and before the
	// strategy begins.
	starting func()

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine whose strategies are built with opts.
func NewEngine(opts Options) *Engine {
	return &Engine{
		difficulty: Hard,
		options:    opts,
	}
}

// SetDifficulty sets the engine difficulty and drops any explicit limits.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.difficulty = d
	e.limits = nil
}

// SetLimits overrides the difficulty preset.
func (e *Engine) SetLimits(l SearchLimits) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.limits = &l
}

// Limits returns the limits the next move will be searched under.
func (e *Engine) Limits() SearchLimits {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.limits != nil {
		return *e.limits
	}
	return DifficultySettings[e.difficulty]
}

// ProposeMove asks the named strategy for a move in pos. The search ends
// when the move time runs out, ctx is done, or Stop is called, whichever
// comes first.
func (e *Engine) ProposeMove(ctx context.Context, pos *board.Position, name string) (Decision, error) {
	return e.ProposeMoveWithLimits(ctx, pos, name, e.Limits())
}

// ProposeMoveWithLimits is ProposeMove with explicit search limits.
func (e *Engine) ProposeMoveWithLimits(ctx context.Context, pos *board.Position, name string, limits SearchLimits) (Decision, error) {
	opts := e.options
	opts.MaxDepth = limits.Depth
	if e.OnInfo != nil {
		opts.OnInfo = e.OnInfo
	}

	strategy, err := NewStrategy(name, opts)
	if err != nil {
		return Decision{}, err
	}
	if strategy == nil {
		return Decision{}, errors.Wrapf(ErrHumanPlayer, "%q", name)
	}

	tm := NewTimeManager()
	tm.Init(limits)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if budget := tm.Budget(); budget > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, budget)
		defer cancelTimeout()
	}

	e.mu.Lock()
	e.active = strategy
	e.cancel = cancel
	starting := e.starting
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active = nil
		e.cancel = nil
		e.mu.Unlock()
	}()

	if starting != nil {
		starting()
	}

	move, err := strategy.ProposeMove(ctx, pos)
	if err != nil {
		return Decision{}, errors.Wrapf(err, "%s", strategy.Name())
	}

	d := Decision{
		Move:     move,
		Strategy: strategy.Name(),
		Elapsed:  tm.Elapsed(),
		TimedOut: tm.ShouldStop(),
	}
	log.Debug().
		Str("strategy", d.Strategy).
		Str("move", d.Move.String()).
		Dur("elapsed", d.Elapsed).
		Dur("budget", tm.Budget()).
		Dur("remaining", tm.Remaining()).
		Bool("timed_out", d.TimedOut).
		Msg("decision")
	return d, nil
}

// Stop stops the current search, if any. The pending ProposeMove returns
// its best move so far. A stop that arrives before the strategy has started
// is kept through the search context.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	if e.active != nil {
		e.active.Stop()
	}
}

// Searching reports whether a move is being computed.
func (e *Engine) Searching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}
