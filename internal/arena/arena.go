// Package arena plays complete games between engine strategies.
package arena

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/adjacency/internal/board"
	"github.com/hailam/adjacency/internal/engine"
	"github.com/hailam/adjacency/internal/storage"
)

var (
	// ErrHumanSeat is returned when a game seats a human player.
	ErrHumanSeat = errors.New("arena: games are bot versus bot")
	// ErrIllegalMove is returned when a strategy proposes an illegal move.
	ErrIllegalMove = errors.New("arena: illegal move")
)

// Game describes one game to play.
type Game struct {
	PlayerX string
	PlayerO string
	Rounds  int
	First   board.Mark

	// Layout, if set, replaces the standard opening.
	Layout string
}

// Outcome is the result of a finished game.
type Outcome struct {
	Game     Game
	Moves    []board.Move
	ScoreX   int
	ScoreO   int
	Final    string // layout of the final position
	Duration time.Duration
}

// Winner returns the mark with more cells, or Empty for a draw.
func (o *Outcome) Winner() board.Mark {
	switch {
	case o.ScoreX > o.ScoreO:
		return board.MarkX
	case o.ScoreO > o.ScoreX:
		return board.MarkO
	}
	return board.Empty
}

// MatchResult converts the outcome for the statistics store.
func (o *Outcome) MatchResult() storage.MatchResult {
	return storage.MatchResult{
		PlayerX:  o.Game.PlayerX,
		PlayerO:  o.Game.PlayerO,
		ScoreX:   o.ScoreX,
		ScoreO:   o.ScoreO,
		Duration: o.Duration,
	}
}

func (g Game) start() (*board.Position, error) {
	if g.Layout != "" {
		return board.ParseLayout(g.Layout)
	}
	return board.NewStandardPosition(g.Rounds, g.First)
}

// Play runs g to completion with eng computing every move. The engine's
// position is never shared: each proposal works on the arena's copy, and
// every move is checked before it is applied.
func Play(ctx context.Context, eng *engine.Engine, g Game) (*Outcome, error) {
	pos, err := g.start()
	if err != nil {
		return nil, err
	}

	players := map[board.Mark]string{
		board.MarkX: g.PlayerX,
		board.MarkO: g.PlayerO,
	}
	for _, name := range players {
		if name == engine.NameHuman {
			return nil, ErrHumanSeat
		}
	}

	start := time.Now()
	out := &Outcome{Game: g}

	for !pos.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "game interrupted")
		}

		side := pos.SideToMove()
		d, err := eng.ProposeMove(ctx, pos, players[side])
		if err != nil {
			return nil, errors.Wrapf(err, "%s to move in %s", side, pos.Layout())
		}
		if !pos.IsLegal(d.Move) {
			return nil, errors.Wrapf(ErrIllegalMove, "%s proposed %v in %s", d.Strategy, d.Move, pos.Layout())
		}
		if err := pos.Apply(d.Move); err != nil {
			return nil, err
		}
		out.Moves = append(out.Moves, d.Move)

		log.Debug().
			Str("side", side.String()).
			Str("strategy", d.Strategy).
			Str("move", d.Move.String()).
			Int("x", pos.ScoreX()).
			Int("o", pos.ScoreO()).
			Msg("move played")
	}

	out.ScoreX, out.ScoreO = pos.ScoreX(), pos.ScoreO()
	out.Final = pos.Layout()
	out.Duration = time.Since(start)

	log.Info().
		Str("x", g.PlayerX).
		Str("o", g.PlayerO).
		Int("score_x", out.ScoreX).
		Int("score_o", out.ScoreO).
		Dur("took", out.Duration).
		Msg("game over")

	return out, nil
}

// RunMatch plays every game, at most parallel at a time, each with its own
// engine from newEngine. Outcomes are returned in the order of games. The
// first failing game cancels the rest.
func RunMatch(ctx context.Context, games []Game, parallel int, newEngine func() *engine.Engine) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(games))

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, game := range games {
		i, game := i, game
		g.Go(func() error {
			out, err := Play(ctx, newEngine(), game)
			if err != nil {
				return errors.Wrapf(err, "game %d (%s vs %s)", i+1, game.PlayerX, game.PlayerO)
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Schedule builds n games between a and b, swapping colours every game.
func Schedule(a, b string, n, rounds int, first board.Mark) []Game {
	games := make([]Game, 0, n)
	for i := 0; i < n; i++ {
		g := Game{PlayerX: a, PlayerO: b, Rounds: rounds, First: first}
		if i%2 == 1 {
			g.PlayerX, g.PlayerO = b, a
		}
		games = append(games, g)
	}
	return games
}
