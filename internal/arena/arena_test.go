package arena

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/adjacency/internal/board"
	"github.com/hailam/adjacency/internal/engine"
)

func fastEngine() *engine.Engine {
	e := engine.NewEngine(engine.Options{Seed: 5, Generations: 10, Population: 8, BeamWidth: 4})
	e.SetLimits(engine.SearchLimits{Depth: 2, MoveTime: 2 * time.Second})
	return e
}

func TestPlay(t *testing.T) {
	tests := []struct {
		name string
		game Game
	}{
		{"minimax vs random", Game{PlayerX: engine.NameMinimax, PlayerO: engine.NameRandom, Rounds: 3, First: board.MarkX}},
		{"greedy vs beam", Game{PlayerX: engine.NameGreedy, PlayerO: engine.NameLocalBeam, Rounds: 2, First: board.MarkO}},
		{"genetic on layout", Game{PlayerX: engine.NameGenetic, PlayerO: engine.NameGreedy, Layout: "X.../..../..../...O x 4"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Play(context.Background(), fastEngine(), tc.game)
			if err != nil {
				t.Fatal(err)
			}

			start, err := tc.game.start()
			if err != nil {
				t.Fatal(err)
			}
			if len(out.Moves) != start.PliesLeft() {
				t.Errorf("played %d moves, want %d", len(out.Moves), start.PliesLeft())
			}

			// Replaying the moves must reproduce the final position.
			for _, m := range out.Moves {
				if err := start.Apply(m); err != nil {
					t.Fatalf("replaying %v: %v", m, err)
				}
			}
			if start.Layout() != out.Final {
				t.Errorf("final layout %s, replay gives %s", out.Final, start.Layout())
			}
			if out.ScoreX != start.ScoreX() || out.ScoreO != start.ScoreO() {
				t.Errorf("scores %d-%d, replay gives %d-%d", out.ScoreX, out.ScoreO, start.ScoreX(), start.ScoreO())
			}
		})
	}
}

func TestPlayRejectsHuman(t *testing.T) {
	g := Game{PlayerX: engine.NameHuman, PlayerO: engine.NameRandom, Rounds: 1, First: board.MarkX}
	if _, err := Play(context.Background(), fastEngine(), g); !errors.Is(err, ErrHumanSeat) {
		t.Errorf("expected ErrHumanSeat, got %v", err)
	}
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := Game{PlayerX: engine.NameRandom, PlayerO: engine.NameRandom, Rounds: 2, First: board.MarkX}
	if _, err := Play(ctx, fastEngine(), g); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunMatch(t *testing.T) {
	games := Schedule(engine.NameMinimax, engine.NameRandom, 4, 2, board.MarkX)

	outcomes, err := RunMatch(context.Background(), games, 2, fastEngine)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != len(games) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(games))
	}
	for i, out := range outcomes {
		if out.Game != games[i] {
			t.Errorf("outcome %d is for %+v, want %+v", i, out.Game, games[i])
		}
		r := out.MatchResult()
		if r.PlayerX != games[i].PlayerX || r.ScoreX != out.ScoreX {
			t.Errorf("match result %+v does not match outcome", r)
		}
	}
}

func TestRunMatchFails(t *testing.T) {
	games := []Game{
		{PlayerX: engine.NameRandom, PlayerO: engine.NameRandom, Rounds: 1, First: board.MarkX},
		{PlayerX: "nobody", PlayerO: engine.NameRandom, Rounds: 1, First: board.MarkX},
	}
	if _, err := RunMatch(context.Background(), games, 0, fastEngine); !errors.Is(err, engine.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestSchedule(t *testing.T) {
	games := Schedule("a", "b", 3, 5, board.MarkO)
	want := [][2]string{{"a", "b"}, {"b", "a"}, {"a", "b"}}
	for i, g := range games {
		if g.PlayerX != want[i][0] || g.PlayerO != want[i][1] || g.Rounds != 5 || g.First != board.MarkO {
			t.Errorf("game %d = %+v", i, g)
		}
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		x, o int
		want board.Mark
	}{
		{10, 4, board.MarkX},
		{4, 10, board.MarkO},
		{7, 7, board.Empty},
	}
	for _, tc := range tests {
		o := &Outcome{ScoreX: tc.x, ScoreO: tc.o}
		if got := o.Winner(); got != tc.want {
			t.Errorf("Winner(%d, %d) = %v, want %v", tc.x, tc.o, got, tc.want)
		}
	}
}
